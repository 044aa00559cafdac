package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/keel-trb-api/internal/repository"
	"github.com/rs/zerolog"
)

// AdminHandler serves the read-only admin listings backing the console
type AdminHandler struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(repos *repository.Repositories, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		repos: repos,
		log:   log.With().Str("handler", "admin").Logger(),
	}
}

// pagination reads limit/offset query params with sane bounds
func pagination(c *gin.Context) (limit, offset int) {
	limit, offset = 100, 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

func (h *AdminHandler) serverError(c *gin.Context, err error, what string) {
	h.log.Error().Err(err).Msg("Failed to " + what)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to " + what})
}

// ListCadets handles GET /api/v1/admin/cadets
func (h *AdminHandler) ListCadets(c *gin.Context) {
	ctx := c.Request.Context()
	limit, offset := pagination(c)

	cadets, err := h.repos.Cadet.List(ctx, limit, offset)
	if err != nil {
		h.serverError(c, err, "list cadets")
		return
	}
	total, err := h.repos.Cadet.Count(ctx)
	if err != nil {
		h.serverError(c, err, "count cadets")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"cadets": cadets, "total": total}})
}

// GetCadet handles GET /api/v1/admin/cadets/:id
func (h *AdminHandler) GetCadet(c *gin.Context) {
	cadet, err := h.repos.Cadet.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serverError(c, err, "get cadet")
		return
	}
	if cadet == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "cadet not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": cadet})
}

// ListVessels handles GET /api/v1/admin/vessels
func (h *AdminHandler) ListVessels(c *gin.Context) {
	ctx := c.Request.Context()
	limit, offset := pagination(c)

	vessels, err := h.repos.Vessel.List(ctx, limit, offset)
	if err != nil {
		h.serverError(c, err, "list vessels")
		return
	}
	total, err := h.repos.Vessel.Count(ctx)
	if err != nil {
		h.serverError(c, err, "count vessels")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"vessels": vessels, "total": total}})
}

// GetVessel handles GET /api/v1/admin/vessels/:id
func (h *AdminHandler) GetVessel(c *gin.Context) {
	vessel, err := h.repos.Vessel.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serverError(c, err, "get vessel")
		return
	}
	if vessel == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "vessel not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": vessel})
}

// ListTasks handles GET /api/v1/admin/tasks
func (h *AdminHandler) ListTasks(c *gin.Context) {
	ctx := c.Request.Context()
	limit, offset := pagination(c)

	tasks, err := h.repos.Task.List(ctx, limit, offset)
	if err != nil {
		h.serverError(c, err, "list tasks")
		return
	}
	total, err := h.repos.Task.Count(ctx)
	if err != nil {
		h.serverError(c, err, "count tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"tasks": tasks, "total": total}})
}

// ListAssignments handles GET /api/v1/admin/assignments
func (h *AdminHandler) ListAssignments(c *gin.Context) {
	ctx := c.Request.Context()
	limit, offset := pagination(c)

	assignments, err := h.repos.Assignment.List(ctx, limit, offset)
	if err != nil {
		h.serverError(c, err, "list assignments")
		return
	}
	total, err := h.repos.Assignment.Count(ctx)
	if err != nil {
		h.serverError(c, err, "count assignments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"assignments": assignments, "total": total}})
}

// ListAudit handles GET /api/v1/admin/audit
func (h *AdminHandler) ListAudit(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	entries, err := h.repos.Audit.List(ctx, limit)
	if err != nil {
		h.serverError(c, err, "list audit entries")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"entries": entries, "count": len(entries)}})
}
