package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LodestarLearning/lodestar-go/internal/application/services"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/performance"
	"github.com/LodestarLearning/lodestar-go/internal/presentation/http/middleware"
)

// FragmentHandlers serves rendered block fragments and the static export.
type FragmentHandlers struct {
	fragments   *services.FragmentService
	export      *services.ExportService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewFragmentHandlers creates fragment handlers with injected dependencies.
func NewFragmentHandlers(fragments *services.FragmentService, export *services.ExportService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *FragmentHandlers {
	return &FragmentHandlers{fragments: fragments, export: export, logger: logger, perfTracker: perfTracker}
}

// GetFragment handles GET /api/v1/fragments/:blockId. Editor mode is
// requested with ?editor=true.
func (h *FragmentHandlers) GetFragment(c *gin.Context) {
	editorMode := c.Query("editor") == "true"
	html, err := h.fragments.RenderBlock(middleware.GetSessionID(c), c.Param("blockId"), editorMode)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// GetLessonView handles GET /api/v1/lesson. The full document rendered for
// this session, used for initial page load.
func (h *FragmentHandlers) GetLessonView(c *gin.Context) {
	editorMode := c.Query("editor") == "true"
	html, err := h.fragments.RenderDocument(middleware.GetSessionID(c), editorMode)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// GetExport handles GET /api/v1/export: static markup with pending edits
// applied.
func (h *FragmentHandlers) GetExport(c *gin.Context) {
	html, err := h.export.ExportDocument(middleware.GetSessionID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// GetExportWidgets handles GET /api/v1/export/widgets: every widget
// configuration recovered from the exported markup.
func (h *FragmentHandlers) GetExportWidgets(c *gin.Context) {
	widgets, err := h.export.ExportWidgets(middleware.GetSessionID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"widgets": widgets})
}
