// Package lesson provides domain entities for authored lesson documents:
// a document is a tree of content blocks whose nodes mix plain text with
// inline interactive widgets.
package lesson

import (
	"fmt"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/editing"
	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/variables"
)

// Document is one loaded lesson: metadata, the variable definitions that
// seed every session's store, and the ordered content blocks.
type Document struct {
	ID        string                           `json:"id" yaml:"id"`
	Title     string                           `json:"title" yaml:"title"`
	Variables map[string]*variables.Definition `json:"variables,omitempty" yaml:"variables,omitempty"`
	Blocks    []*Block                         `json:"blocks" yaml:"blocks"`
}

// Block is one content block. Blocks carry the stable ids that widget
// identities are scoped to.
type Block struct {
	ID    string  `json:"id" yaml:"id"`
	Kind  string  `json:"kind,omitempty" yaml:"kind,omitempty"` // paragraph, heading, callout
	Nodes []*Node `json:"nodes" yaml:"nodes"`
}

// NodeType discriminates block content nodes.
type NodeType string

const (
	NodeText   NodeType = "text"
	NodeWidget NodeType = "widget"
)

// Node is one inline segment of a block: plain text or a widget.
type Node struct {
	ID     string      `json:"id,omitempty" yaml:"id,omitempty"`
	Type   NodeType    `json:"type" yaml:"type"`
	Text   string      `json:"text,omitempty" yaml:"text,omitempty"`
	Widget *WidgetSpec `json:"widget,omitempty" yaml:"widget,omitempty"`
}

// Widget kinds renderable inside a block. The editable kinds mirror
// editing.WidgetKind; scrubber and spot-color are render-only.
const (
	WidgetScrubber  = "scrubber"
	WidgetSpotColor = "spotColor"
)

// WidgetSpec is the authored configuration of one inline widget, as written
// in the lesson file. Fields are a union across kinds; the per-kind Props
// projections select what applies.
type WidgetSpec struct {
	Kind          string           `json:"kind" yaml:"kind"`
	VarName       string           `json:"varName,omitempty" yaml:"varName,omitempty"`
	CorrectAnswer string           `json:"correctAnswer,omitempty" yaml:"correctAnswer,omitempty"`
	Options       []string         `json:"options,omitempty" yaml:"options,omitempty"`
	Placeholder   string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	CaseSensitive *bool            `json:"caseSensitive,omitempty" yaml:"caseSensitive,omitempty"`
	Text          string           `json:"text,omitempty" yaml:"text,omitempty"`
	Tooltip       string           `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
	Position      string           `json:"position,omitempty" yaml:"position,omitempty"`
	MaxWidth      int              `json:"maxWidth,omitempty" yaml:"maxWidth,omitempty"`
	Value         *variables.Value `json:"value,omitempty" yaml:"value,omitempty"`
	Href          string           `json:"href,omitempty" yaml:"href,omitempty"`
	TargetBlockID string           `json:"targetBlockId,omitempty" yaml:"targetBlockId,omitempty"`
	Color         string           `json:"color,omitempty" yaml:"color,omitempty"`
	BgColor       string           `json:"bgColor,omitempty" yaml:"bgColor,omitempty"`
	Min           *float64         `json:"min,omitempty" yaml:"min,omitempty"`
	Max           *float64         `json:"max,omitempty" yaml:"max,omitempty"`
	Step          *float64         `json:"step,omitempty" yaml:"step,omitempty"`
}

// ClozeInputProps projects the authored spec onto cloze-input configuration.
func (w *WidgetSpec) ClozeInputProps() editing.ClozeInputProps {
	p := editing.ClozeInputProps{
		VarName:       w.VarName,
		CorrectAnswer: w.CorrectAnswer,
		Placeholder:   w.Placeholder,
		Color:         w.Color,
		BgColor:       w.BgColor,
	}
	if w.CaseSensitive != nil {
		p.CaseSensitive = *w.CaseSensitive
	}
	return p
}

// ClozeChoiceProps projects the authored spec onto cloze-choice configuration.
func (w *WidgetSpec) ClozeChoiceProps() editing.ClozeChoiceProps {
	return editing.ClozeChoiceProps{
		VarName:       w.VarName,
		CorrectAnswer: w.CorrectAnswer,
		Options:       w.Options,
		Placeholder:   w.Placeholder,
		Color:         w.Color,
		BgColor:       w.BgColor,
	}
}

// ToggleProps projects the authored spec onto toggle configuration.
func (w *WidgetSpec) ToggleProps() editing.ToggleProps {
	return editing.ToggleProps{
		VarName: w.VarName,
		Options: w.Options,
		Color:   w.Color,
		BgColor: w.BgColor,
	}
}

// TooltipProps projects the authored spec onto tooltip configuration.
func (w *WidgetSpec) TooltipProps() editing.TooltipProps {
	return editing.TooltipProps{
		Text:     w.Text,
		Tooltip:  w.Tooltip,
		Position: w.Position,
		MaxWidth: w.MaxWidth,
		Color:    w.Color,
		BgColor:  w.BgColor,
	}
}

// TriggerProps projects the authored spec onto trigger configuration.
func (w *WidgetSpec) TriggerProps() editing.TriggerProps {
	return editing.TriggerProps{
		Text:    w.Text,
		VarName: w.VarName,
		Value:   w.Value,
		Color:   w.Color,
		BgColor: w.BgColor,
	}
}

// HyperlinkProps projects the authored spec onto hyperlink configuration.
func (w *WidgetSpec) HyperlinkProps() editing.HyperlinkProps {
	return editing.HyperlinkProps{
		Text:          w.Text,
		Href:          w.Href,
		TargetBlockID: w.TargetBlockID,
		Color:         w.Color,
		BgColor:       w.BgColor,
	}
}

// Block returns the block with the given id, or nil.
func (d *Document) Block(id string) *Block {
	for _, b := range d.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Registry builds the document's variable definition registry.
func (d *Document) Registry() *variables.Registry {
	return variables.NewRegistry(d.Variables)
}

// AncestorLookup builds the node-ancestry index used for boundary identity
// resolution when no block scope is threaded through a renderer.
func (d *Document) AncestorLookup() editing.AncestorLookup {
	lookup := editing.AncestorLookup{
		Parents:  make(map[string]string),
		BlockIDs: make(map[string]bool),
	}
	for _, block := range d.Blocks {
		lookup.BlockIDs[block.ID] = true
		for _, node := range block.Nodes {
			if node.ID != "" {
				lookup.Parents[node.ID] = block.ID
			}
		}
	}
	return lookup
}

// Validate checks structural integrity: ids present and unique, widget nodes
// carrying a widget spec. Authored widget configuration itself is permissive;
// rendering degrades rather than failing on partial configs.
func (d *Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("document id is required")
	}
	seen := make(map[string]bool, len(d.Blocks))
	for i, block := range d.Blocks {
		if block.ID == "" {
			return fmt.Errorf("block %d: id is required", i)
		}
		if seen[block.ID] {
			return fmt.Errorf("block %q: duplicate id", block.ID)
		}
		seen[block.ID] = true
		for j, node := range block.Nodes {
			if node.Type == NodeWidget && node.Widget == nil {
				return fmt.Errorf("block %q node %d: widget node without widget spec", block.ID, j)
			}
		}
	}
	return nil
}
