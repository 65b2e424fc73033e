package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LodestarLearning/lodestar-go/internal/application/services"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/internal/presentation/http/middleware"
)

// EditingHandlers serves the author editing lifecycle.
type EditingHandlers struct {
	editing *services.EditingService
	logger  *logging.ChanneledLogger
}

// NewEditingHandlers creates editing handlers with injected dependencies.
func NewEditingHandlers(editing *services.EditingService, logger *logging.ChanneledLogger) *EditingHandlers {
	return &EditingHandlers{editing: editing, logger: logger}
}

// editorTarget addresses one widget. BlockID may be empty: widgets with no
// ancestor block carry a degraded identity with an empty block id.
type editorTarget struct {
	Kind        editing.WidgetKind `json:"kind" binding:"required"`
	BlockID     string             `json:"blockId"`
	ElementPath string             `json:"elementPath" binding:"required"`
}

func (t editorTarget) identity() editing.Identity {
	return editing.Identity{BlockID: t.BlockID, ElementPath: t.ElementPath}
}

type openRequest struct {
	editorTarget
	// CurrentProps is the widget's codec-encoded effective configuration,
	// read by the client from the rendered markup.
	CurrentProps string `json:"currentProps"`
}

// PostOpen handles POST /api/v1/edit/open
func (h *EditingHandlers) PostOpen(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	editor, err := h.editing.OpenEditor(middleware.GetSessionID(c), req.Kind, req.identity(), req.CurrentProps)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"editor": editor})
}

type saveRequest struct {
	editorTarget
	NewProps json.RawMessage `json:"newProps" binding:"required"`
}

// PostSave handles POST /api/v1/edit/save. Validation failures return 422
// with the editor left open; a save with no matching open editor returns
// 200 with saved=false.
func (h *EditingHandlers) PostSave(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	patch, err := services.DecodePatch(req.Kind, req.NewProps)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.editing.SaveEdit(middleware.GetSessionID(c), req.Kind, req.identity(), patch)
	if err != nil {
		if errors.Is(err, editing.ErrValidation) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"saved": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// PostClose handles POST /api/v1/edit/close
func (h *EditingHandlers) PostClose(c *gin.Context) {
	if err := h.editing.CloseEditor(middleware.GetSessionID(c)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"closed": true})
}

// GetCurrent handles GET /api/v1/edit/current
func (h *EditingHandlers) GetCurrent(c *gin.Context) {
	editor, err := h.editing.CurrentEditor(middleware.GetSessionID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"editor": editor})
}

// GetEdits handles GET /api/v1/edits
func (h *EditingHandlers) GetEdits(c *gin.Context) {
	edits, err := h.editing.PendingEdits(middleware.GetSessionID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"edits": edits})
}
