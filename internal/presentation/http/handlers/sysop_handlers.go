package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/LodestarLearning/lodestar-go/internal/application/container"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/messaging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/pkg/config"
)

// SysOpHandlers handles the operator dashboard: auth, live session map,
// log streaming, log levels, and performance metrics.
type SysOpHandlers struct {
	container *container.Container
}

// NewSysOpHandlers creates new SysOp handlers
func NewSysOpHandlers(container *container.Container) *SysOpHandlers {
	return &SysOpHandlers{
		container: container,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard is served same-origin or from a dev port already allowed by CORS.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// AuthCheck checks if SysopPassword is set and validates the session token.
func (h *SysOpHandlers) AuthCheck(c *gin.Context) {
	sysopPassword := config.SysopPassword
	response := map[string]any{
		"passwordRequired": sysopPassword != "",
		"authenticated":    false,
	}
	if sysopPassword == "" {
		response["message"] = "Set SYSOP_PASSWORD to protect the dashboard"
	}

	auth := c.GetHeader("Authorization")
	if sysopPassword != "" && auth == "Bearer "+sysopPassword {
		response["authenticated"] = true
	}
	c.JSON(http.StatusOK, response)
}

// Login handles SysOp authentication
func (h *SysOpHandlers) Login(c *gin.Context) {
	var request struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	sysopPassword := config.SysopPassword
	if sysopPassword == "" {
		c.JSON(http.StatusOK, gin.H{"success": true, "token": "no-auth-required"})
		return
	}
	if request.Password != sysopPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": sysopPassword})
}

// SysOpAuthMiddleware protects SysOp-specific endpoints.
func (h *SysOpHandlers) SysOpAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sysopPassword := config.SysopPassword
		if sysopPassword == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		token := ""
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = authHeader[7:]
		} else {
			// Browser websockets cannot set headers; the dashboard passes
			// the token as a query parameter instead.
			token = c.Query("token")
		}
		if token != sysopPassword {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSessionMap handles GET /api/sysop/sessions/ws. It upgrades to a
// websocket and streams session state payloads from the SysOp broadcaster.
func (h *SysOpHandlers) GetSessionMap(c *gin.Context) {
	logger := h.container.Logger

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.SSE().Error("SysOp websocket upgrade failed", "error", err.Error())
		return
	}

	client := &messaging.SysOpClient{
		Conn: conn,
		Send: make(chan []byte, 8),
	}
	h.container.SysOpBroadcaster.Register(client)

	go h.writePump(client)
	go h.readPump(client)
}

// writePump pushes broadcast payloads and pings to the dashboard client.
func (h *SysOpHandlers) writePump(client *messaging.SysOpClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the client; the dashboard never sends meaningful data, so
// this exists to notice disconnects and answer pongs.
func (h *SysOpHandlers) readPump(client *messaging.SysOpClient) {
	defer func() {
		h.container.SysOpBroadcaster.Unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(512)
	client.Conn.SetReadDeadline(time.Now().Add(wsPongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

// StreamLogs handles the SSE connection for live log streaming.
func (h *SysOpHandlers) StreamLogs(c *gin.Context) {
	broadcaster := h.container.LogBroadcaster
	if broadcaster == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Log broadcaster not available"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	channelFilter := c.DefaultQuery("channel", "all")
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(c.DefaultQuery("level", "INFO"))); err != nil {
		logLevel = slog.LevelInfo
	}

	filters := logging.AppliedFilters{
		Channel: logging.Channel(channelFilter),
		Level:   logLevel,
	}

	client := broadcaster.NewClient(filters)
	broadcaster.RegisterClient(client)
	defer broadcaster.UnregisterClient(client)

	fmt.Fprintf(c.Writer, ": connection established\n\n")
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-client.Channel:
			if !ok {
				return false
			}
			fmt.Fprintf(w, "data: %s\n\n", message)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// GetLogLevels handles GET /api/sysop/logs/levels - returns current log levels for all channels.
func (h *SysOpHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.container.Logger.GetChannelLevels())
}

// SetLogLevel handles POST /api/sysop/logs/levels - sets the log level for a specific channel.
func (h *SysOpHandlers) SetLogLevel(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(req.Level)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid log level specified"})
		return
	}

	if err := h.container.Logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set log level", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": fmt.Sprintf("Log level for channel '%s' set to '%s'", req.Channel, req.Level)})
}

// GetPerformance handles GET /api/sysop/performance - overall tracker stats.
func (h *SysOpHandlers) GetPerformance(c *gin.Context) {
	tracker := h.container.PerfTracker
	c.JSON(http.StatusOK, gin.H{
		"stats":            tracker.GetOverallStats(),
		"activeOperations": tracker.GetActiveOperations(),
		"alerts":           tracker.GetAlerts(),
	})
}

// GetHealth handles GET /health - liveness plus tracker health.
func (h *SysOpHandlers) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    string(h.container.PerfTracker.Health()),
		"sessions":  h.container.Sessions.Count(),
		"documents": len(h.container.DocumentService.ListDocuments()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
