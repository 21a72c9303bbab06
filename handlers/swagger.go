package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the mock backend.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>slotlist mock API - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "slotlist-mockapi", "version": "v1" },
  "components": { "securitySchemes": { "jwt": { "type": "apiKey", "in": "header", "name": "Authorization", "description": "JWT <token>" } } },
  "paths": {
    "/v1/auth/steam": {
      "get": { "summary": "Steam OpenID login redirect URL", "responses": { "200": { "description": "{url}" } } },
      "post": { "summary": "Complete Steam login", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"url":{"type":"string"}}}}}}, "responses": { "200": { "description": "{token}" }, "403": { "description": "invalid OpenID response" } } }
    },
    "/v1/auth/refresh": { "post": { "summary": "Refresh session token", "security": [{"jwt": []}], "responses": { "200": { "description": "{token}" }, "401": { "description": "invalid token" } } } },
    "/v1/auth/account": {
      "get": { "summary": "Account details", "security": [{"jwt": []}], "responses": { "200": { "description": "{user}" } } },
      "patch": { "summary": "Edit account", "security": [{"jwt": []}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"nickname":{"type":"string"}}}}}}, "responses": { "200": { "description": "{user}" } } }
    },
    "/v1/communities": {
      "get": { "summary": "List or search communities", "parameters": [{"name":"limit","in":"query"},{"name":"offset","in":"query"},{"name":"search","in":"query"}], "responses": { "200": { "description": "{communities, limit, offset, total, moreAvailable}" } } },
      "post": { "summary": "Create community", "security": [{"jwt": []}], "responses": { "200": { "description": "{community}" }, "409": { "description": "slug taken" } } }
    },
    "/v1/communities/slugAvailable": { "get": { "summary": "Check slug availability", "parameters": [{"name":"slug","in":"query"}], "responses": { "200": { "description": "{available}" } } } },
    "/v1/communities/{slug}": {
      "get": { "summary": "Community details", "responses": { "200": { "description": "{community}" }, "404": { "description": "not found" } } },
      "patch": { "summary": "Edit community (leader)", "security": [{"jwt": []}], "responses": { "200": { "description": "{community}" }, "403": { "description": "forbidden" } } },
      "delete": { "summary": "Delete community (leader)", "security": [{"jwt": []}], "responses": { "200": { "description": "{success}" } } }
    },
    "/v1/communities/{slug}/applications": {
      "get": { "summary": "List applications (leader)", "security": [{"jwt": []}], "responses": { "200": { "description": "{applications, ...}" } } },
      "post": { "summary": "Apply to community", "security": [{"jwt": []}], "responses": { "200": { "description": "{status}" }, "409": { "description": "already applied" } } }
    },
    "/v1/communities/{slug}/applications/{applicationUid}": { "patch": { "summary": "Accept or deny application (leader)", "security": [{"jwt": []}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"status":{"type":"string","enum":["accepted","denied"]}}}}}}, "responses": { "200": { "description": "{application}" } } } },
    "/v1/communities/{slug}/members/{memberUid}": { "delete": { "summary": "Remove member (leader)", "security": [{"jwt": []}], "responses": { "200": { "description": "{success}" } } } },
    "/v1/communities/{slug}/missions": { "get": { "summary": "List community missions", "responses": { "200": { "description": "{missions, ...}" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
