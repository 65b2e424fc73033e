// Package handlers provides HTTP handlers for the lesson engine API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LodestarLearning/lodestar-go/internal/application/services"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/performance"
	"github.com/LodestarLearning/lodestar-go/internal/presentation/http/middleware"
)

// DocumentHandlers serves lesson document metadata and session bootstrap.
type DocumentHandlers struct {
	documents   *services.DocumentService
	state       *services.StateService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewDocumentHandlers creates document handlers with injected dependencies.
func NewDocumentHandlers(documents *services.DocumentService, state *services.StateService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *DocumentHandlers {
	return &DocumentHandlers{documents: documents, state: state, logger: logger, perfTracker: perfTracker}
}

// ListDocuments handles GET /api/v1/documents
func (h *DocumentHandlers) ListDocuments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"documents": h.documents.ListDocuments()})
}

// GetDocument handles GET /api/v1/documents/:id
func (h *DocumentHandlers) GetDocument(c *gin.Context) {
	doc, ok := h.documents.GetDocument(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// PostSession handles POST /api/v1/documents/:id/session. It establishes a
// session against the document, creating one when the client supplies no id,
// and returns the session id and seeded state.
func (h *DocumentHandlers) PostSession(c *gin.Context) {
	marker := h.perfTracker.StartOperation("state:ensure_session", middleware.GetSessionID(c))
	defer h.perfTracker.CompleteOperation(marker)

	session, err := h.state.EnsureSession(middleware.GetSessionID(c), c.Param("id"))
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.Header(middleware.SessionHeader, session.ID)
	c.JSON(http.StatusOK, gin.H{
		"sessionId":  session.ID,
		"documentId": session.DocumentID,
		"state":      session.Vars.Snapshot(),
	})
}
