// Package messaging defines interfaces for real-time client communication.
package messaging

// Broadcaster manages SSE client connections and pushes block update events.
type Broadcaster interface {
	AddClient(sessionID string) chan string
	RemoveClient(ch chan string, sessionID string)
	ConnectionCount(sessionID string) int
	BroadcastBlocksUpdated(sessionID, documentID string, blockIDs []string, gotoBlockID *string)
	HasListeners(sessionID string) bool
}
