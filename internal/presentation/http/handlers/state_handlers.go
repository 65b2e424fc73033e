package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LodestarLearning/lodestar-go/internal/application/services"
	"github.com/LodestarLearning/lodestar-go/internal/domain/codec"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/variables"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/performance"
	"github.com/LodestarLearning/lodestar-go/internal/presentation/http/middleware"
)

// StateHandlers serves session variable reads and writes.
type StateHandlers struct {
	state       *services.StateService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewStateHandlers creates state handlers with injected dependencies.
func NewStateHandlers(state *services.StateService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *StateHandlers {
	return &StateHandlers{state: state, logger: logger, perfTracker: perfTracker}
}

// GetState handles GET /api/v1/state
func (h *StateHandlers) GetState(c *gin.Context) {
	snapshot, err := h.state.GetState(middleware.GetSessionID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": snapshot})
}

// PostState handles POST /api/v1/state. The body is a SetRequest; the value
// arrives in its natural JSON form.
func (h *StateHandlers) PostState(c *gin.Context) {
	var req services.SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	result, err := h.state.SetVariable(middleware.GetSessionID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// triggerRequest is the payload posted when a trigger widget fires. The
// value arrives codec-encoded exactly as rendered into the markup.
type triggerRequest struct {
	VarName      string `json:"varName" binding:"required"`
	EncodedValue string `json:"value"`
	BlockID      string `json:"blockId"`
	GotoBlockID  string `json:"gotoBlockId"`
}

// PostTrigger handles POST /api/v1/state/trigger
func (h *StateHandlers) PostTrigger(c *gin.Context) {
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	var value variables.Value
	if req.EncodedValue != "" {
		if err := codec.Decode(req.EncodedValue, &value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trigger value: " + err.Error()})
			return
		}
	} else {
		value = variables.Bool(true)
	}

	result, err := h.state.SetVariable(middleware.GetSessionID(c), services.SetRequest{
		Name:        req.VarName,
		Value:       value,
		BlockID:     req.BlockID,
		GotoBlockID: req.GotoBlockID,
		Source:      "trigger",
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
