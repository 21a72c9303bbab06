package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/slotlist/slotlist/frontend/go-client/internal/communities/repository"
	"github.com/slotlist/slotlist/frontend/go-client/internal/config"
	"github.com/slotlist/slotlist/frontend/go-client/internal/tokens"
	"github.com/slotlist/slotlist/frontend/go-client/internal/users"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/middleware"
)

// Deps are the collaborators of the mock backend router.
type Deps struct {
	Config      *config.Config
	Users       *users.Service
	Communities *repository.MemoryRepo
	// Redis, when set, backs the rate limiter.
	Redis *redis.Client
	// Gatherer serves /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

var startTime = time.Now()

// cors is a permissive CORS policy for local development.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// NewRouter wires the mock backend.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), cors())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "uptime": time.Since(startTime).Round(time.Second).String()})
	})
	g := d.Gatherer
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	RegisterSwagger(r)

	v1 := r.Group("/v1")
	if m := d.Config.Mock; m.RateLimitEnabled {
		if d.Redis != nil {
			v1.Use(middleware.RedisRateLimitMiddleware(d.Redis, m.RateLimitRPS, m.RateLimitBurst, m.RateLimitWindow))
		} else {
			v1.Use(middleware.RateLimitMiddleware(m.RateLimitRPS, m.RateLimitBurst))
		}
	}

	auth := middleware.AuthMiddleware(tokens.NewVerifier(d.Config.Mock.JWTSecret))
	NewAuthHandler(d.Config, d.Users).Register(v1, auth)
	NewCommunityHandler(d.Communities, d.Users).Register(v1, auth)
	return r
}
