package editing

import "github.com/LodestarLearning/lodestar-go/internal/domain/entities/variables"

// Full configuration records, one per widget kind. These are the effective
// props a renderer consumes and the payload the codec round-trips through
// rendered markup. The matching Patch types carry an author's edit: a nil
// field means "leave the authored value alone" and a present field
// overrides, including a present empty VarName, which unbinds the widget
// from the store.

// ClozeInputProps configures a fill-in-the-blank text input.
type ClozeInputProps struct {
	VarName       string `json:"varName,omitempty"`
	CorrectAnswer string `json:"correctAnswer"`
	Placeholder   string `json:"placeholder,omitempty"`
	CaseSensitive bool   `json:"caseSensitive,omitempty"`
	Color         string `json:"color,omitempty"`
	BgColor       string `json:"bgColor,omitempty"`
}

// ClozeChoiceProps configures a dropdown-choice cloze.
type ClozeChoiceProps struct {
	VarName       string   `json:"varName,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
	Options       []string `json:"options"`
	Placeholder   string   `json:"placeholder,omitempty"`
	Color         string   `json:"color,omitempty"`
	BgColor       string   `json:"bgColor,omitempty"`
}

// ToggleProps configures a click-to-cycle toggle.
type ToggleProps struct {
	VarName string   `json:"varName,omitempty"`
	Options []string `json:"options"`
	Color   string   `json:"color,omitempty"`
	BgColor string   `json:"bgColor,omitempty"`
}

// TooltipProps configures an inline hover tooltip.
type TooltipProps struct {
	Text     string `json:"text,omitempty"`
	Tooltip  string `json:"tooltip"`
	Position string `json:"position,omitempty"`
	MaxWidth int    `json:"maxWidth,omitempty"`
	Color    string `json:"color,omitempty"`
	BgColor  string `json:"bgColor,omitempty"`
}

// TriggerProps configures a click trigger that writes a value to a variable.
type TriggerProps struct {
	Text    string           `json:"text,omitempty"`
	VarName string           `json:"varName,omitempty"`
	Value   *variables.Value `json:"value,omitempty"`
	Color   string           `json:"color,omitempty"`
	BgColor string           `json:"bgColor,omitempty"`
}

// HyperlinkProps configures an inline link, external or block-targeted.
type HyperlinkProps struct {
	Text          string `json:"text,omitempty"`
	Href          string `json:"href,omitempty"`
	TargetBlockID string `json:"targetBlockId,omitempty"`
	Color         string `json:"color,omitempty"`
	BgColor       string `json:"bgColor,omitempty"`
}

// Identity helpers derive the widget's stable identity from its authored
// configuration: the bound variable name when present, else a literal key.

func (p ClozeInputProps) Identity(scope BlockScope) Identity {
	return ResolveIdentity(KindClozeInput, scope, p.VarName, p.CorrectAnswer)
}

func (p ClozeChoiceProps) Identity(scope BlockScope) Identity {
	return ResolveIdentity(KindClozeChoice, scope, p.VarName, p.CorrectAnswer)
}

func (p ToggleProps) Identity(scope BlockScope) Identity {
	fallback := ""
	if len(p.Options) > 0 {
		fallback = p.Options[0]
	}
	return ResolveIdentity(KindToggle, scope, p.VarName, fallback)
}

func (p TooltipProps) Identity(scope BlockScope) Identity {
	return ResolveIdentity(KindTooltip, scope, "", p.Text)
}

func (p TriggerProps) Identity(scope BlockScope) Identity {
	return ResolveIdentity(KindTrigger, scope, p.VarName, p.Text)
}

func (p HyperlinkProps) Identity(scope BlockScope) Identity {
	return ResolveIdentity(KindHyperlink, scope, "", p.Text)
}

// Patch is a partial, kind-specific configuration carried by a pending edit.
type Patch interface {
	Kind() WidgetKind
}

// ClozeInputPatch is a partial ClozeInputProps.
type ClozeInputPatch struct {
	VarName       *string `json:"varName,omitempty"`
	CorrectAnswer *string `json:"correctAnswer,omitempty"`
	Placeholder   *string `json:"placeholder,omitempty"`
	CaseSensitive *bool   `json:"caseSensitive,omitempty"`
	Color         *string `json:"color,omitempty"`
	BgColor       *string `json:"bgColor,omitempty"`
}

func (ClozeInputPatch) Kind() WidgetKind { return KindClozeInput }

// ClozeChoicePatch is a partial ClozeChoiceProps.
type ClozeChoicePatch struct {
	VarName       *string  `json:"varName,omitempty"`
	CorrectAnswer *string  `json:"correctAnswer,omitempty"`
	Options       []string `json:"options,omitempty"`
	Placeholder   *string  `json:"placeholder,omitempty"`
	Color         *string  `json:"color,omitempty"`
	BgColor       *string  `json:"bgColor,omitempty"`
}

func (ClozeChoicePatch) Kind() WidgetKind { return KindClozeChoice }

// TogglePatch is a partial ToggleProps.
type TogglePatch struct {
	VarName *string  `json:"varName,omitempty"`
	Options []string `json:"options,omitempty"`
	Color   *string  `json:"color,omitempty"`
	BgColor *string  `json:"bgColor,omitempty"`
}

func (TogglePatch) Kind() WidgetKind { return KindToggle }

// TooltipPatch is a partial TooltipProps.
type TooltipPatch struct {
	Text     *string `json:"text,omitempty"`
	Tooltip  *string `json:"tooltip,omitempty"`
	Position *string `json:"position,omitempty"`
	MaxWidth *int    `json:"maxWidth,omitempty"`
	Color    *string `json:"color,omitempty"`
	BgColor  *string `json:"bgColor,omitempty"`
}

func (TooltipPatch) Kind() WidgetKind { return KindTooltip }

// TriggerPatch is a partial TriggerProps.
type TriggerPatch struct {
	Text    *string          `json:"text,omitempty"`
	VarName *string          `json:"varName,omitempty"`
	Value   *variables.Value `json:"value,omitempty"`
	Color   *string          `json:"color,omitempty"`
	BgColor *string          `json:"bgColor,omitempty"`
}

func (TriggerPatch) Kind() WidgetKind { return KindTrigger }

// HyperlinkPatch is a partial HyperlinkProps.
type HyperlinkPatch struct {
	Text          *string `json:"text,omitempty"`
	Href          *string `json:"href,omitempty"`
	TargetBlockID *string `json:"targetBlockId,omitempty"`
	Color         *string `json:"color,omitempty"`
	BgColor       *string `json:"bgColor,omitempty"`
}

func (HyperlinkPatch) Kind() WidgetKind { return KindHyperlink }

// PendingEdit records one confirmed author edit, not yet merged into the
// base document. Edits accumulate in arrival order and are never removed
// within a session; resolution takes the last matching record.
type PendingEdit struct {
	EditKind    WidgetKind `json:"kind"`
	BlockID     string     `json:"blockId"`
	ElementPath string     `json:"elementPath"`
	NewProps    Patch      `json:"newProps"`
}

// Identity returns the edit's target identity.
func (e PendingEdit) Identity() Identity {
	return Identity{BlockID: e.BlockID, ElementPath: e.ElementPath}
}

// Matches reports whether the edit targets the given kind and identity.
func (e PendingEdit) Matches(kind WidgetKind, id Identity) bool {
	return e.EditKind == kind && e.BlockID == id.BlockID && e.ElementPath == id.ElementPath
}
