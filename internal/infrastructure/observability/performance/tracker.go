package performance

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	markers map[string]*Marker
	alerts  []*Alert
	mu      sync.RWMutex
	started time.Time
	config  *TrackerConfig
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers   int           `json:"maxMarkers"`
	MaxAlerts    int           `json:"maxAlerts"`
	EnableAlerts bool          `json:"enableAlerts"`
	Retention    time.Duration `json:"retention"`

	// Thresholds for alert generation.
	SlowResponseThreshold     time.Duration `json:"slowResponseThreshold"`
	CriticalResponseThreshold time.Duration `json:"criticalResponseThreshold"`
	RenderThreshold           time.Duration `json:"renderThreshold"`
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:                10000,
		MaxAlerts:                 500,
		EnableAlerts:              true,
		Retention:                 time.Hour,
		SlowResponseThreshold:     time.Second * 2,
		CriticalResponseThreshold: time.Second * 5,
		RenderThreshold:           time.Millisecond * 100,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}
	return &Tracker{
		markers: make(map[string]*Marker),
		started: time.Now(),
		config:  config,
	}
}

// StartOperation creates and tracks a new performance marker
func (t *Tracker) StartOperation(operation, sessionID string) *Marker {
	marker := &Marker{
		Operation: operation,
		SessionID: sessionID,
		StartTime: time.Now(),
		Success:   true, // Assume success until proven otherwise
	}

	markerID := fmt.Sprintf("%s_%s_%d", sessionID, operation, time.Now().UnixNano())

	t.mu.Lock()
	t.markers[markerID] = marker
	t.mu.Unlock()

	return marker
}

// StartOperationWithContext creates a marker with context cancellation support
func (t *Tracker) StartOperationWithContext(ctx context.Context, operation, sessionID string) *Marker {
	marker := t.StartOperation(operation, sessionID)

	go func() {
		<-ctx.Done()
		if !marker.Completed {
			marker.SetError(ctx.Err())
			marker.Complete()
		}
	}()

	return marker
}

// CompleteOperation completes an operation and checks for alerts
func (t *Tracker) CompleteOperation(marker *Marker) {
	if marker == nil || marker.Completed {
		return
	}

	marker.Complete()

	if t.config.EnableAlerts {
		t.checkForAlerts(marker)
	}
}

func (t *Tracker) checkForAlerts(marker *Marker) {
	var alerts []*Alert

	switch {
	case marker.Duration > t.config.CriticalResponseThreshold:
		alerts = append(alerts, t.newAlert(marker, AlertCritical,
			"Operation exceeded critical response time threshold"))
	case marker.Duration > t.config.SlowResponseThreshold:
		alerts = append(alerts, t.newAlert(marker, AlertWarning,
			"Operation exceeded slow response time threshold"))
	case strings.HasPrefix(marker.Operation, "render:") && marker.Duration > t.config.RenderThreshold:
		alerts = append(alerts, t.newAlert(marker, AlertWarning,
			"Render operation exceeded threshold"))
	}

	if len(alerts) == 0 {
		return
	}

	t.mu.Lock()
	t.alerts = append(t.alerts, alerts...)
	if len(t.alerts) > t.config.MaxAlerts {
		t.alerts = t.alerts[len(t.alerts)-t.config.MaxAlerts:]
	}
	t.mu.Unlock()
}

func (t *Tracker) newAlert(marker *Marker, severity AlertSeverity, message string) *Alert {
	return &Alert{
		ID:        fmt.Sprintf("alert_%d", time.Now().UnixNano()),
		Timestamp: time.Now(),
		Severity:  severity,
		Operation: marker.Operation,
		Actual:    marker.Duration,
		Message:   message,
	}
}

// GetRecentMetrics returns completed markers within the given duration.
func (t *Tracker) GetRecentMetrics(within time.Duration) []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cutoff := time.Now().Add(-within)
	var metrics []Marker
	for _, marker := range t.markers {
		if marker.Completed && marker.EndTime.After(cutoff) {
			metrics = append(metrics, *marker)
		}
	}
	return metrics
}

// GetActiveOperations returns currently running operations.
func (t *Tracker) GetActiveOperations() []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var active []Marker
	for _, marker := range t.markers {
		if !marker.Completed {
			snapshot := *marker
			snapshot.Duration = time.Since(marker.StartTime)
			active = append(active, snapshot)
		}
	}
	return active
}

// GetAlerts returns the retained performance alerts.
func (t *Tracker) GetAlerts() []*Alert {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Alert(nil), t.alerts...)
}

// Health summarizes recent operations into a health status.
func (t *Tracker) Health() HealthStatus {
	metrics := t.GetRecentMetrics(time.Minute * 5)
	active := t.GetActiveOperations()

	total := len(metrics) + len(active)
	if total == 0 {
		return HealthUnknown
	}

	critical, warning := 0, 0
	for _, op := range append(metrics, active...) {
		duration := op.Duration
		if !op.Completed {
			duration = time.Since(op.StartTime)
		}
		if duration > t.config.CriticalResponseThreshold || !op.Success {
			critical++
		} else if duration > t.config.SlowResponseThreshold {
			warning++
		}
	}

	criticalRatio := float64(critical) / float64(total)
	warningRatio := float64(warning) / float64(total)

	if criticalRatio > 0.1 {
		return HealthUnhealthy
	}
	if criticalRatio > 0.05 || warningRatio > 0.2 {
		return HealthDegraded
	}
	return HealthHealthy
}

// Cleanup removes old completed markers to bound memory.
func (t *Tracker) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-t.config.Retention)
	for id, marker := range t.markers {
		if marker.Completed && marker.EndTime.Before(cutoff) {
			delete(t.markers, id)
		}
	}

	if len(t.markers) > t.config.MaxMarkers {
		count := 0
		for id := range t.markers {
			if count > t.config.MaxMarkers/2 {
				delete(t.markers, id)
			}
			count++
		}
	}
}

// GetOverallStats returns overall tracker statistics
func (t *Tracker) GetOverallStats() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	activeCount, completedCount := 0, 0
	for _, marker := range t.markers {
		if marker.Completed {
			completedCount++
		} else {
			activeCount++
		}
	}

	return map[string]any{
		"trackerUptime":       time.Since(t.started).String(),
		"totalMarkers":        len(t.markers),
		"activeOperations":    activeCount,
		"completedOperations": completedCount,
		"totalAlerts":         len(t.alerts),
		"memoryUsageMB":       memStats.Alloc / (1024 * 1024),
		"systemMemoryMB":      memStats.Sys / (1024 * 1024),
	}
}
