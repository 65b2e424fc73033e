package messaging

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/state"
)

// SysOpClient represents a single connected operator dashboard client.
type SysOpClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// SessionState is the per-session snapshot sent to the dashboard.
type SessionState struct {
	SessionID    string    `json:"sessionId"`
	DocumentID   string    `json:"documentId,omitempty"`
	PendingEdits int       `json:"pendingEdits"`
	EditorOpen   bool      `json:"editorOpen"`
	LastActivity time.Time `json:"lastActivity"`
}

// SessionStatePayload is the complete data structure sent on each tick.
type SessionStatePayload struct {
	SessionStates []SessionState `json:"sessionStates"`
	TotalCount    int            `json:"totalCount"`
	ActiveCount   int            `json:"activeCount"`
	DormantCount  int            `json:"dormantCount"`
	EditingCount  int            `json:"editingCount"`
}

// activeWindow separates active sessions from dormant ones in the payload.
const activeWindow = 45 * time.Minute

// SysOpBroadcaster pushes periodic session-state snapshots to all connected
// operator dashboards over websockets.
type SysOpBroadcaster struct {
	clients    map[*SysOpClient]bool
	register   chan *SysOpClient
	unregister chan *SysOpClient
	done       chan struct{}
	sessions   *state.SessionsStore
	mu         sync.RWMutex
}

// NewSysOpBroadcaster creates a new broadcaster instance.
func NewSysOpBroadcaster(sessions *state.SessionsStore) *SysOpBroadcaster {
	return &SysOpBroadcaster{
		clients:    make(map[*SysOpClient]bool),
		register:   make(chan *SysOpClient),
		unregister: make(chan *SysOpClient),
		done:       make(chan struct{}),
		sessions:   sessions,
	}
}

// Run drives the broadcaster's main loop until stop is closed, then closes
// every connected client's send channel. Run as a goroutine.
func (b *SysOpBroadcaster) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			close(b.done)
			b.mu.Lock()
			for client := range b.clients {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			return

		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
			log.Printf("SysOp client registered")

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			log.Printf("SysOp client unregistered")

		case <-ticker.C:
			b.broadcastSessionMap()
		}
	}
}

// Register queues a client for registration. No-op after shutdown.
func (b *SysOpBroadcaster) Register(client *SysOpClient) {
	select {
	case b.register <- client:
	case <-b.done:
	}
}

// Unregister queues a client for unregistration. No-op after shutdown, when
// the loop has already closed every client.
func (b *SysOpBroadcaster) Unregister(client *SysOpClient) {
	select {
	case b.unregister <- client:
	case <-b.done:
	}
}

// broadcastSessionMap gathers and sends the current session state.
func (b *SysOpBroadcaster) broadcastSessionMap() {
	b.mu.RLock()
	hasClients := len(b.clients) > 0
	b.mu.RUnlock()
	if !hasClients {
		return
	}

	payload := b.buildPayload()
	message, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling session state: %v", err)
		return
	}

	b.mu.RLock()
	for client := range b.clients {
		select {
		case client.Send <- message:
		default:
		}
	}
	b.mu.RUnlock()
}

// buildPayload snapshots all sessions into the dashboard payload.
func (b *SysOpBroadcaster) buildPayload() SessionStatePayload {
	now := time.Now().UTC()
	states := make([]SessionState, 0, b.sessions.Count())

	payload := SessionStatePayload{}
	for _, session := range b.sessions.All() {
		s := SessionState{
			SessionID:    session.ID,
			DocumentID:   session.DocumentID,
			PendingEdits: session.Edits.Len(),
			EditorOpen:   session.CurrentEditor() != nil,
			LastActivity: session.LastActivity,
		}
		states = append(states, s)

		if s.EditorOpen {
			payload.EditingCount++
		}
		if now.Sub(s.LastActivity) <= activeWindow {
			payload.ActiveCount++
		} else {
			payload.DormantCount++
		}
	}

	payload.SessionStates = states
	payload.TotalCount = len(states)
	return payload
}
