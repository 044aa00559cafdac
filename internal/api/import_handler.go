package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/keel-trb-api/internal/auth"
	"github.com/keel-trb-api/internal/config"
	"github.com/keel-trb-api/internal/importer"
	"github.com/keel-trb-api/internal/previewtoken"
	"github.com/keel-trb-api/internal/repository"
	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImportHandler handles the per-entity template/preview/commit endpoints
type ImportHandler struct {
	engine  *importer.Engine
	tokens  previewtoken.Store
	batches repository.ImportBatchRepository
	cfg     *config.Config
	log     zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(deps *Deps, cfg *config.Config, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		engine:  deps.Engine,
		tokens:  deps.Tokens,
		batches: deps.Repos.Batch,
		cfg:     cfg,
		log:     log.With().Str("handler", "import").Logger(),
	}
}

// Template handles GET /api/v1/admin/imports/:entity/template
func (h *ImportHandler) Template(c *gin.Context) {
	entity := c.Param("entity")

	data, err := h.engine.Template(entity)
	if err != nil {
		h.respondError(c, entity, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_import_template.xlsx", entity))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Preview handles POST /api/v1/admin/imports/:entity/preview
func (h *ImportHandler) Preview(c *gin.Context) {
	ctx := c.Request.Context()
	entity := c.Param("entity")

	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.engine.Preview(ctx, entity, filename, data)
	if err != nil {
		h.respondError(c, entity, err)
		return
	}

	payload := gin.H{
		"summary": result.Summary,
		"rows":    result.Rows,
		"notes":   result.Notes,
	}
	if h.tokens.Enforced() {
		token, err := h.tokens.Issue(ctx, entity, previewtoken.Digest(data))
		if err != nil {
			h.log.Error().Err(err).Str("entity", entity).Msg("Failed to issue preview token")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to issue preview token"})
			return
		}
		payload["preview_token"] = token
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": payload})
}

// Commit handles POST /api/v1/admin/imports/:entity/commit
func (h *ImportHandler) Commit(c *gin.Context) {
	ctx := c.Request.Context()
	entity := c.Param("entity")

	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	if h.tokens.Enforced() {
		valid, err := h.tokens.Validate(ctx, entity, previewtoken.Digest(data), c.GetHeader("X-Preview-Token"))
		if err != nil {
			h.log.Error().Err(err).Str("entity", entity).Msg("Failed to validate preview token")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to validate preview token"})
			return
		}
		if !valid {
			c.JSON(http.StatusPreconditionFailed, gin.H{
				"success": false,
				"message": "a valid X-Preview-Token from a preview of this exact file is required before commit",
			})
			return
		}
	}

	result, err := h.engine.Commit(ctx, entity, filename, data, auth.Actor(c))
	if err != nil {
		h.respondError(c, entity, err)
		return
	}

	if result.Refused {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": fmt.Sprintf("commit refused: %d row(s) failed validation", result.Summary.Fail),
			"data": gin.H{
				"summary": result.Summary,
				"rows":    result.Rows,
				"notes":   result.Notes,
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// ListBatches handles GET /api/v1/admin/imports/batches
func (h *ImportHandler) ListBatches(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	batches, err := h.batches.List(ctx, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list import batches")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to list import batches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"batches": batches,
		"count":   len(batches),
	}})
}

// readUpload extracts the multipart "file" upload, enforcing the size limit.
// On failure it writes the error response and returns ok=false.
func (h *ImportHandler) readUpload(c *gin.Context) (string, []byte, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "file upload is required (multipart field \"file\")",
		})
		return "", nil, false
	}
	defer file.Close()

	if header.Size > h.cfg.Import.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": fmt.Sprintf("file too large, max size is %d MB", h.cfg.Import.MaxUploadSize/(1024*1024)),
		})
		return "", nil, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read upload")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to read uploaded file"})
		return "", nil, false
	}

	return header.Filename, data, true
}

// respondError maps engine errors to structured responses
func (h *ImportHandler) respondError(c *gin.Context, entity string, err error) {
	switch {
	case errors.Is(err, importer.ErrUnknownEntity):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": fmt.Sprintf("unknown import entity %q", entity),
		})
	case errors.Is(err, importer.ErrBadFile):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": err.Error(),
		})
	default:
		h.log.Error().Err(err).Str("entity", entity).Msg("Import request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "internal server error",
		})
	}
}
