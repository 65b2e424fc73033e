// Custom io.Writer that feeds log output into the live log stream.
package logging

import (
	"encoding/json"
	"log/slog"
	"time"
)

// SSEWriter intercepts log messages and forwards them to the LogBroadcaster.
type SSEWriter struct {
	broadcaster *LogBroadcaster
}

// NewSSEWriter creates a writer that sends log data to the singleton broadcaster.
func NewSSEWriter() *SSEWriter {
	return &SSEWriter{
		broadcaster: GetBroadcaster(),
	}
}

// Write receives log messages as JSON bytes, parses them, and submits them
// to the broadcaster for distribution.
func (w *SSEWriter) Write(p []byte) (n int, err error) {
	var rawLog map[string]any
	if err := json.Unmarshal(p, &rawLog); err != nil {
		// Non-JSON output from a text handler ends up here.
		go w.broadcaster.SubmitLog(LogEntry{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Level:     slog.LevelError.String(),
			Channel:   string(ChannelSystem),
			Message:   "sse_writer: failed to parse incoming log message",
		})
		return len(p), nil
	}

	// Project the structured record down to the fields the stream exposes.
	entry := LogEntry{
		Timestamp: w.getString(rawLog, "time"),
		Level:     w.getString(rawLog, "level"),
		Channel:   w.getString(rawLog, "channel"),
		Message:   w.getString(rawLog, "msg"),
		SessionID: w.getString(rawLog, "sessionId"),
	}

	// Submitted in a goroutine so a slow broadcaster never blocks a log call.
	go w.broadcaster.SubmitLog(entry)

	return len(p), nil
}

func (w *SSEWriter) getString(data map[string]any, key string) string {
	if val, ok := data[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return ""
}
