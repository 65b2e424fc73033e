// Package events provides event types
package events

import "github.com/LodestarLearning/lodestar-go/internal/domain/entities/variables"

// VariableEvent describes one variable write flowing through the system:
// a student interaction, a trigger firing, or a computed re-evaluation.
type VariableEvent struct {
	Name    string          `json:"name"`
	Value   variables.Value `json:"value"`
	BlockID string          `json:"blockId,omitempty"`
	Source  string          `json:"source,omitempty"` // widget, trigger, computed, api
}
