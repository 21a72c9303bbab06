package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/slotlist/slotlist/frontend/go-client/internal/acl"
	"github.com/slotlist/slotlist/frontend/go-client/internal/communities"
	"github.com/slotlist/slotlist/frontend/go-client/internal/communities/repository"
	"github.com/slotlist/slotlist/frontend/go-client/internal/users"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/logger"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/middleware"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/uid"
)

// AdminPermission grants every community operation.
const AdminPermission = communities.AdminPermission

const (
	defaultLimit = 10
	maxLimit     = 100
)

type createCommunityRequest struct {
	Name    string `json:"name" binding:"required"`
	Slug    string `json:"slug" binding:"required"`
	Tag     string `json:"tag" binding:"required"`
	Website string `json:"website"`
}

type processApplicationRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted denied"`
}

// CommunityHandler serves /v1/communities.
type CommunityHandler struct {
	repo     *repository.MemoryRepo
	usersSvc *users.Service
}

func NewCommunityHandler(repo *repository.MemoryRepo, u *users.Service) *CommunityHandler {
	return &CommunityHandler{repo: repo, usersSvc: u}
}

func (h *CommunityHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	g := rg.Group("/communities")
	g.GET("", h.List)
	g.POST("", auth, h.Create)
	g.GET("/slugAvailable", h.SlugAvailable)
	g.GET("/:slug", h.Get)
	g.PATCH("/:slug", auth, h.Edit)
	g.DELETE("/:slug", auth, h.Delete)
	g.POST("/:slug/applications", auth, h.Apply)
	g.GET("/:slug/applications", auth, h.Applications)
	g.PATCH("/:slug/applications/:applicationUid", auth, h.ProcessApplication)
	g.DELETE("/:slug/members/:memberUid", auth, h.RemoveMember)
	g.GET("/:slug/missions", h.Missions)
}

// page reads limit/offset query parameters.
func page(c *gin.Context) (limit, offset int, ok bool) {
	limit, offset = defaultLimit, 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			c.JSON(http.StatusBadRequest, gin.H{"message": "limit must be between 1 and 100"})
			return 0, 0, false
		}
		limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "offset must not be negative"})
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}

func listBody(key string, items any, limit, offset, total int) gin.H {
	return gin.H{
		key:             items,
		"limit":         limit,
		"offset":        offset,
		"total":         total,
		"moreAvailable": offset+limit < total,
	}
}

func (h *CommunityHandler) notFound(c *gin.Context, err error) bool {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Community not found"})
		return true
	}
	return false
}

// requireLeader aborts unless the caller leads slug or is an admin.
func (h *CommunityHandler) requireLeader(c *gin.Context, slug string) bool {
	if _, err := h.repo.Get(slug); err != nil {
		h.notFound(c, err)
		return false
	}
	u, err := h.usersSvc.Get(c.Request.Context(), middleware.UserUID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unknown user"})
		return false
	}
	perms := acl.New()
	perms.Parse(u.PermissionNames())
	if !perms.CanAny(communities.LeaderPermission(slug), AdminPermission) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		return false
	}
	return true
}

func (h *CommunityHandler) currentMember(c *gin.Context) (communities.Member, bool) {
	u, err := h.usersSvc.Get(c.Request.Context(), middleware.UserUID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unknown user"})
		return communities.Member{}, false
	}
	return communities.Member{UID: u.UID, Nickname: u.Nickname}, true
}

// List serves both the paged listing and ?search=.
func (h *CommunityHandler) List(c *gin.Context) {
	limit, offset, ok := page(c)
	if !ok {
		return
	}
	items, total := h.repo.List(c.Query("search"), limit, offset)
	c.JSON(http.StatusOK, listBody("communities", items, limit, offset, total))
}

func (h *CommunityHandler) SlugAvailable(c *gin.Context) {
	slug := c.Query("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "slug is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": h.repo.SlugAvailable(slug)})
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req createCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid community payload"})
		return
	}
	creator, ok := h.currentMember(c)
	if !ok {
		return
	}
	created, err := h.repo.Create(&communities.Community{Name: req.Name, Slug: req.Slug, Tag: req.Tag, Website: req.Website}, creator)
	if errors.Is(err, repository.ErrSlugTaken) {
		c.JSON(http.StatusConflict, gin.H{"message": "Community slug already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err := h.usersSvc.Grant(c.Request.Context(), creator.UID, communities.LeaderPermission(created.Slug)); err != nil {
		logger.Errorf("grant leader permission for %s: %v", created.Slug, err)
	}
	c.JSON(http.StatusOK, gin.H{"community": created})
}

func (h *CommunityHandler) Get(c *gin.Context) {
	com, err := h.repo.Get(c.Param("slug"))
	if h.notFound(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": com})
}

func (h *CommunityHandler) Edit(c *gin.Context) {
	slug := c.Param("slug")
	var patch communities.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid community payload"})
		return
	}
	if !h.requireLeader(c, slug) {
		return
	}
	com, err := h.repo.Update(slug, patch)
	if h.notFound(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": com})
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	slug := c.Param("slug")
	if !h.requireLeader(c, slug) {
		return
	}
	com, err := h.repo.Get(slug)
	if h.notFound(c, err) {
		return
	}
	if err := h.repo.Delete(slug); h.notFound(c, err) {
		return
	}
	for _, l := range com.Leaders {
		if err := h.usersSvc.Revoke(c.Request.Context(), l.UID, communities.LeaderPermission(com.Slug)); err != nil {
			logger.Warnf("revoke leader permission of %s: %v", l.UID, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CommunityHandler) Apply(c *gin.Context) {
	member, ok := h.currentMember(c)
	if !ok {
		return
	}
	app, err := h.repo.Apply(c.Param("slug"), member)
	switch {
	case h.notFound(c, err):
	case errors.Is(err, repository.ErrApplicationExists), errors.Is(err, repository.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"status": app.Status})
	}
}

func (h *CommunityHandler) Applications(c *gin.Context) {
	limit, offset, ok := page(c)
	if !ok {
		return
	}
	slug := c.Param("slug")
	if !h.requireLeader(c, slug) {
		return
	}
	apps, total, err := h.repo.Applications(slug, limit, offset)
	if h.notFound(c, err) {
		return
	}
	c.JSON(http.StatusOK, listBody("applications", apps, limit, offset, total))
}

func (h *CommunityHandler) ProcessApplication(c *gin.Context) {
	var req processApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status must be accepted or denied"})
		return
	}
	appUID := c.Param("applicationUid")
	if !uid.IsValid(appUID) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid application uid"})
		return
	}
	slug := c.Param("slug")
	if !h.requireLeader(c, slug) {
		return
	}
	app, err := h.repo.ProcessApplication(slug, appUID, req.Status == communities.StatusAccepted)
	switch {
	case h.notFound(c, err):
	case errors.Is(err, repository.ErrApplicationMissing):
		c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"application": app})
	}
}

func (h *CommunityHandler) RemoveMember(c *gin.Context) {
	slug := c.Param("slug")
	if !h.requireLeader(c, slug) {
		return
	}
	err := h.repo.RemoveMember(slug, c.Param("memberUid"))
	switch {
	case h.notFound(c, err):
	case errors.Is(err, repository.ErrMemberMissing):
		c.JSON(http.StatusNotFound, gin.H{"message": "Member not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func (h *CommunityHandler) Missions(c *gin.Context) {
	limit, offset, ok := page(c)
	if !ok {
		return
	}
	ms, total, err := h.repo.Missions(c.Param("slug"), limit, offset)
	if h.notFound(c, err) {
		return
	}
	c.JSON(http.StatusOK, listBody("missions", ms, limit, offset, total))
}
