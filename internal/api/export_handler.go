package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/keel-trb-api/internal/exporter"
	"github.com/rs/zerolog"
)

// ExportHandler handles roster export endpoints
type ExportHandler struct {
	exporter *exporter.Exporter
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(ex *exporter.Exporter, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		exporter: ex,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// Export handles GET /api/v1/admin/exports/:entity?format=csv|xlsx
func (h *ExportHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	entity := c.Param("entity")
	format := c.DefaultQuery("format", "csv")

	err := h.exporter.Export(ctx, c.Writer, entity, format)
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, exporter.ErrUnknownEntity):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": fmt.Sprintf("unknown export entity %q", entity),
		})
	case errors.Is(err, exporter.ErrUnknownFormat):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": fmt.Sprintf("unsupported export format %q, use csv or xlsx", format),
		})
	default:
		// The response may be partially written by now; log and abort
		h.log.Error().Err(err).Str("entity", entity).Str("format", format).Msg("Export failed")
		c.Abort()
	}
}
