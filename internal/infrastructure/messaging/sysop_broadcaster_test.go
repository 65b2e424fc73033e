package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/state"
)

func TestSysOpBroadcasterStops(t *testing.T) {
	sessions := state.NewSessionsStore(time.Hour, nil)
	b := NewSysOpBroadcaster(sessions)

	stop := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		b.Run(stop)
		close(finished)
	}()

	client := &SysOpClient{Send: make(chan []byte, 8)}
	b.Register(client)

	close(stop)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("broadcaster did not stop")
	}

	// The loop closes every connected client's send channel on the way out.
	_, open := <-client.Send
	assert.False(t, open)

	// Late pump exits must not block once the loop is gone.
	unblocked := make(chan struct{})
	go func() {
		b.Unregister(client)
		b.Register(&SysOpClient{Send: make(chan []byte, 8)})
		close(unblocked)
	}()
	select {
	case <-unblocked:
	case <-time.After(time.Second):
		t.Fatal("register/unregister blocked after shutdown")
	}
}

func TestSysOpBroadcasterPayloadCounts(t *testing.T) {
	sessions := state.NewSessionsStore(time.Hour, nil)
	b := NewSysOpBroadcaster(sessions)

	active := sessions.Ensure("", "lesson-1")
	dormant := sessions.Ensure("", "lesson-1")
	dormant.LastActivity = time.Now().UTC().Add(-2 * activeWindow)

	payload := b.buildPayload()
	require.Equal(t, 2, payload.TotalCount)
	assert.Equal(t, 1, payload.ActiveCount)
	assert.Equal(t, 1, payload.DormantCount)
	assert.Equal(t, 0, payload.EditingCount)

	var found bool
	for _, s := range payload.SessionStates {
		if s.SessionID == active.ID {
			found = true
			assert.Equal(t, "lesson-1", s.DocumentID)
			assert.False(t, s.EditorOpen)
		}
	}
	assert.True(t, found)
}
