// Concrete SSE broadcaster implementation.
package messaging

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
)

// SSEBroadcaster manages session-scoped SSE connections. A session may hold
// several connections (multiple tabs) and each gets every event.
type SSEBroadcaster struct {
	sessions map[string][]chan string // sessionId -> open connections
	mu       sync.Mutex
	logger   *logging.ChanneledLogger
}

var (
	globalBroadcaster *SSEBroadcaster
	once              sync.Once
)

// NewSSEBroadcaster creates the singleton SSEBroadcaster instance.
func NewSSEBroadcaster(logger *logging.ChanneledLogger) *SSEBroadcaster {
	once.Do(func() {
		globalBroadcaster = &SSEBroadcaster{
			sessions: make(map[string][]chan string),
			logger:   logger,
		}
	})
	return globalBroadcaster
}

// AddClient registers a new SSE connection for a session.
func (b *SSEBroadcaster) AddClient(sessionID string) chan string {
	ch := make(chan string, 10)

	b.mu.Lock()
	b.sessions[sessionID] = append(b.sessions[sessionID], ch)
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.SSE().Debug("SSE client registered", "sessionId", sessionID)
	}
	return ch
}

// RemoveClient removes an SSE connection from a session.
func (b *SSEBroadcaster) RemoveClient(ch chan string, sessionID string) {
	b.mu.Lock()
	if clients, exists := b.sessions[sessionID]; exists {
		remaining := make([]chan string, 0, len(clients))
		for _, client := range clients {
			if client != ch {
				remaining = append(remaining, client)
			}
		}
		if len(remaining) == 0 {
			delete(b.sessions, sessionID)
		} else {
			b.sessions[sessionID] = remaining
		}
	}
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.SSE().Debug("SSE client unregistered", "sessionId", sessionID)
	}
}

// ConnectionCount returns the connection count for a session.
func (b *SSEBroadcaster) ConnectionCount(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions[sessionID])
}

// BroadcastBlocksUpdated tells a session's connections which blocks need
// re-rendering, optionally asking the client to scroll to one of them.
func (b *SSEBroadcaster) BroadcastBlocksUpdated(sessionID, documentID string, blockIDs []string, gotoBlockID *string) {
	defer func() {
		if r := recover(); r != nil && b.logger != nil {
			b.logger.SSE().Error("Panic recovered in BroadcastBlocksUpdated", "error", r, "sessionId", sessionID)
		}
	}()

	blockIDsJSON, _ := json.Marshal(blockIDs)
	var message string
	if gotoBlockID != nil && *gotoBlockID != "" {
		message = fmt.Sprintf("event: blocks_updated\ndata: {\"documentId\":\"%s\",\"affectedBlocks\":%s,\"gotoBlockId\":\"%s\"}\n\n",
			documentID, blockIDsJSON, *gotoBlockID)
	} else {
		message = fmt.Sprintf("event: blocks_updated\ndata: {\"documentId\":\"%s\",\"affectedBlocks\":%s}\n\n",
			documentID, blockIDsJSON)
	}

	if b.logger != nil {
		b.logger.SSE().Debug("Broadcasting to session",
			"message", strings.ReplaceAll(message, "\n", "\\n"), "sessionId", sessionID)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.sessions[sessionID] {
		select {
		case ch <- message:
		default:
			if b.logger != nil {
				b.logger.SSE().Warn("SSE channel full, message dropped", "sessionId", sessionID)
			}
		}
	}
}

// HasListeners checks whether a session has any open SSE connections.
func (b *SSEBroadcaster) HasListeners(sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions[sessionID]) > 0
}
