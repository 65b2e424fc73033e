package services

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/LodestarLearning/lodestar-go/internal/domain/codec"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/performance"
)

// ExportService produces the static export of a session's lesson view and
// recovers widget configurations back out of exported markup. Because every
// widget wrapper carries its codec-encoded effective props, an export is a
// complete record: re-importing it loses nothing an author changed.
type ExportService struct {
	fragments   *FragmentService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewExportService creates a new export service.
func NewExportService(fragments *FragmentService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ExportService {
	return &ExportService{
		fragments:   fragments,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// ExportDocument renders the session's full document as static markup with
// pending edits applied. Editor affordances are never exported.
func (s *ExportService) ExportDocument(sessionID string) (string, error) {
	marker := s.perfTracker.StartOperation("render:export", sessionID)
	defer s.perfTracker.CompleteOperation(marker)
	return s.fragments.RenderDocument(sessionID, false)
}

// RecoveredWidget is one widget configuration pulled back out of markup.
type RecoveredWidget struct {
	Kind     editing.WidgetKind `json:"kind"`
	WidgetID string             `json:"widgetId"`
	Props    any                `json:"props,omitempty"`
	Error    string             `json:"error,omitempty"`
}

var widgetAttrPattern = regexp.MustCompile(
	`data-widget="([^"]+)" data-widget-id="([^"]*)" data-widget-props="([^"]*)"`)

// RecoverWidgets scans markup for widget wrappers and decodes each one's
// configuration. Wrappers whose encoding failed soft at render time carry
// empty props and are reported with an error rather than dropped.
func (s *ExportService) RecoverWidgets(markup string) []RecoveredWidget {
	matches := widgetAttrPattern.FindAllStringSubmatch(markup, -1)
	recovered := make([]RecoveredWidget, 0, len(matches))

	for _, m := range matches {
		kind := editing.WidgetKind(m[1])
		widget := RecoveredWidget{Kind: kind, WidgetID: m[2]}

		props, err := decodeProps(kind, m[3])
		if err != nil {
			widget.Error = err.Error()
			s.logger.Content().Warn("Widget recovery failed",
				"kind", m[1], "widgetId", m[2], "error", err.Error())
		} else {
			widget.Props = props
		}
		recovered = append(recovered, widget)
	}
	return recovered
}

// ExportWidgets renders a session's document and recovers every widget
// configuration from the result in one pass.
func (s *ExportService) ExportWidgets(sessionID string) ([]RecoveredWidget, error) {
	markup, err := s.ExportDocument(sessionID)
	if err != nil {
		return nil, err
	}
	return s.RecoverWidgets(markup), nil
}

func decodeProps(kind editing.WidgetKind, encoded string) (any, error) {
	switch kind {
	case editing.KindClozeInput:
		var p editing.ClozeInputProps
		if err := codec.Decode(encoded, &p); err != nil {
			return nil, err
		}
		return p, nil
	case editing.KindClozeChoice:
		var p editing.ClozeChoiceProps
		if err := codec.Decode(encoded, &p); err != nil {
			return nil, err
		}
		return p, nil
	case editing.KindToggle:
		var p editing.ToggleProps
		if err := codec.Decode(encoded, &p); err != nil {
			return nil, err
		}
		return p, nil
	case editing.KindTooltip:
		var p editing.TooltipProps
		if err := codec.Decode(encoded, &p); err != nil {
			return nil, err
		}
		return p, nil
	case editing.KindTrigger:
		var p editing.TriggerProps
		if err := codec.Decode(encoded, &p); err != nil {
			return nil, err
		}
		return p, nil
	case editing.KindHyperlink:
		var p editing.HyperlinkProps
		if err := codec.Decode(encoded, &p); err != nil {
			return nil, err
		}
		return p, nil
	}
	// Unknown kinds still round-trip as raw JSON.
	var raw json.RawMessage
	if err := codec.Decode(encoded, &raw); err != nil {
		return nil, fmt.Errorf("unknown widget kind %q: %w", kind, err)
	}
	return raw, nil
}
