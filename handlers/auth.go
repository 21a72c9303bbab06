package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slotlist/slotlist/frontend/go-client/internal/config"
	"github.com/slotlist/slotlist/frontend/go-client/internal/models"
	"github.com/slotlist/slotlist/frontend/go-client/internal/tokens"
	"github.com/slotlist/slotlist/frontend/go-client/internal/users"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/logger"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/middleware"
)

// LoginRequest carries the OpenID callback URL the browser returned to.
type LoginRequest struct {
	URL string `json:"url" binding:"required"`
}

// AccountPatch lists the account fields a user may change.
type AccountPatch struct {
	Nickname *string `json:"nickname"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg      *config.Config
	usersSvc *users.Service
}

func NewAuthHandler(cfg *config.Config, u *users.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u}
}

// Register routes under /auth. Account and refresh routes require auth.
func (h *AuthHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.GET("/steam", h.LoginRedirect)
	a.POST("/steam", h.Login)
	a.POST("/refresh", auth, h.Refresh)
	a.GET("/account", auth, h.Account)
	a.PATCH("/account", auth, h.EditAccount)
}

func (h *AuthHandler) LoginRedirect(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"url": h.cfg.Mock.LoginRedirectURL})
}

var steamIDPattern = regexp.MustCompile(`^[0-9]{5,20}$`)

// steamIDFromCallback extracts the SteamID64 from openid.claimed_id
// ("https://steamcommunity.com/openid/id/<steamid>").
func steamIDFromCallback(raw string) (string, url.Values, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", nil, err
	}
	q := u.Query()
	claimed := q.Get("openid.claimed_id")
	if claimed == "" {
		return "", nil, errors.New("missing openid.claimed_id")
	}
	id := claimed[strings.LastIndex(claimed, "/")+1:]
	if !steamIDPattern.MatchString(id) {
		return "", nil, errors.New("invalid claimed id")
	}
	return id, q, nil
}

// Login accepts the Steam OpenID callback and returns a session token. The
// mock trusts the callback; a "nickname" query parameter names new users.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing OpenID callback URL"})
		return
	}
	steamID, q, err := steamIDFromCallback(req.URL)
	if err != nil {
		logger.Warnf("login: bad callback: %v", err)
		c.JSON(http.StatusForbidden, gin.H{"message": "Invalid Steam OpenID response"})
		return
	}
	u, err := h.usersSvc.UpsertFromSteam(c.Request.Context(), steamID, q.Get("nickname"))
	if err != nil {
		logger.Errorf("login: upsert user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}
	h.issueToken(c, u)
}

// Refresh issues a new token for the authenticated user, picking up
// permission changes since the last token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	h.issueToken(c, u)
}

func (h *AuthHandler) Account(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) EditAccount(c *gin.Context) {
	var patch AccountPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid account payload"})
		return
	}
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	if patch.Nickname != nil {
		updated, err := h.usersSvc.UpdateNickname(c.Request.Context(), u.UID, *patch.Nickname)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		u = updated
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) currentUser(c *gin.Context) (*models.User, bool) {
	uid := middleware.UserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token carries no user"})
		return nil, false
	}
	u, err := h.usersSvc.Get(c.Request.Context(), uid)
	if errors.Is(err, users.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return nil, false
	}
	if err != nil {
		logger.Errorf("load user %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load user"})
		return nil, false
	}
	return u, true
}

func (h *AuthHandler) issueToken(c *gin.Context, u *models.User) {
	ttl := h.cfg.Mock.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	tok, err := tokens.GenerateAccessToken(h.cfg, u, ttl)
	if err != nil {
		logger.Errorf("sign token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok})
}
