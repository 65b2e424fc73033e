package handlers

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/messaging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/performance"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/state"
	"github.com/LodestarLearning/lodestar-go/internal/presentation/http/middleware"
	"github.com/LodestarLearning/lodestar-go/pkg/config"
)

// Global SSE connection counter across all sessions.
var activeSSEConnections int64

const maxSSEConnections = 1000

// SSEHandlers serves the live update stream that pushes blocks_updated
// events to connected lesson views.
type SSEHandlers struct {
	broadcaster messaging.Broadcaster
	sessions    *state.SessionsStore
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSSEHandlers creates SSE handlers with injected dependencies.
func NewSSEHandlers(broadcaster messaging.Broadcaster, sessions *state.SessionsStore, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SSEHandlers {
	return &SSEHandlers{broadcaster: broadcaster, sessions: sessions, logger: logger, perfTracker: perfTracker}
}

// GetUpdates handles GET /api/v1/updates/sse. It registers the connection
// with the broadcaster and streams blocks_updated events until the client
// disconnects.
func (h *SSEHandlers) GetUpdates(c *gin.Context) {
	start := time.Now()
	sessionID := middleware.GetSessionID(c)
	marker := h.perfTracker.StartOperation("sse:connect", sessionID)
	defer marker.Complete()

	if _, ok := h.sessions.Get(sessionID); !ok {
		h.logger.SSE().Warn("SSE connection for unknown session", "sessionId", sessionID)
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	if atomic.LoadInt64(&activeSSEConnections) >= maxSSEConnections {
		h.logger.SSE().Warn("SSE connection limit reached",
			"sessionId", sessionID, "maxConnections", maxSSEConnections)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "connection limit reached, try again later"})
		return
	}

	if h.broadcaster.ConnectionCount(sessionID) >= config.MaxSessionConnections {
		h.logger.SSE().Warn("Per-session SSE connection limit reached",
			"sessionId", sessionID, "maxConnections", config.MaxSessionConnections)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many connections for this session"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ch := h.broadcaster.AddClient(sessionID)
	atomic.AddInt64(&activeSSEConnections, 1)
	defer func() {
		atomic.AddInt64(&activeSSEConnections, -1)
		h.broadcaster.RemoveClient(ch, sessionID)
	}()

	// Initial confirmation so the client knows the stream is live.
	if _, err := fmt.Fprintf(c.Writer,
		"data: {\"type\":\"connected\",\"sessionId\":\"%s\",\"timestamp\":\"%s\"}\n\n",
		sessionID, time.Now().Format(time.RFC3339)); err != nil {
		return
	}
	c.Writer.Flush()

	h.logger.SSE().Info("SSE connection established",
		"sessionId", sessionID,
		"totalConnections", atomic.LoadInt64(&activeSSEConnections),
		"setupDuration", time.Since(start))
	marker.SetSuccess(true)

	clientCtx := c.Request.Context()
	heartbeat := time.NewTicker(time.Duration(config.SSEHeartbeatIntervalSeconds) * time.Second)
	defer heartbeat.Stop()

	connectionStart := time.Now()
	for {
		select {
		case <-clientCtx.Done():
			h.logger.SSE().Info("SSE client disconnected",
				"sessionId", sessionID, "connectionDuration", time.Since(connectionStart))
			return

		case message, ok := <-ch:
			if !ok {
				h.logger.SSE().Info("SSE channel closed",
					"sessionId", sessionID, "connectionDuration", time.Since(connectionStart))
				return
			}
			if _, err := c.Writer.WriteString(message); err != nil {
				h.logger.SSE().Error("SSE write failed",
					"sessionId", sessionID, "error", err.Error())
				return
			}
			c.Writer.Flush()
			h.sessions.Touch(sessionID)

		case <-heartbeat.C:
			if _, err := fmt.Fprintf(c.Writer, ": heartbeat %s\n\n",
				time.Now().Format(time.RFC3339)); err != nil {
				h.logger.SSE().Debug("SSE heartbeat write failed, closing",
					"sessionId", sessionID)
				return
			}
			c.Writer.Flush()
		}
	}
}
