// Package editing provides domain entities for the inline edit overlay:
// widget identities, pending edit records, per-kind configuration records
// with their merge rules, and pre-save validation.
package editing

import "fmt"

// WidgetKind tags a widget family for identity and edit matching.
type WidgetKind string

const (
	KindClozeInput  WidgetKind = "clozeInput"
	KindClozeChoice WidgetKind = "clozeChoice"
	KindToggle      WidgetKind = "toggle"
	KindTooltip     WidgetKind = "tooltip"
	KindTrigger     WidgetKind = "trigger"
	KindHyperlink   WidgetKind = "hyperlink"
)

// pathPrefixes are the element-path prefixes baked into rendered markup.
// They are part of the round-trip format and must stay stable.
var pathPrefixes = map[WidgetKind]string{
	KindClozeInput:  "cloze",
	KindClozeChoice: "choice",
	KindToggle:      "toggle",
	KindTooltip:     "tooltip",
	KindTrigger:     "trigger",
	KindHyperlink:   "link",
}

// PathPrefix returns the element-path prefix for a widget kind. Unknown
// kinds fall back to the kind string itself rather than failing.
func PathPrefix(kind WidgetKind) string {
	if p, ok := pathPrefixes[kind]; ok {
		return p
	}
	return string(kind)
}

// Identity addresses one widget instance for editing: the containing block
// plus a deterministic element path inside it.
type Identity struct {
	BlockID     string `json:"blockId"`
	ElementPath string `json:"elementPath"`
}

// BlockScope is the ambient block identity a renderer passes down to the
// widgets it contains. An empty ID means the widget renders standalone.
type BlockScope struct {
	ID string
}

// ResolveIdentity computes the stable identity for a widget instance.
// The semantic key is the bound variable name when set, else the widget's
// own literal (correct answer, display text). Resolution never fails: a
// missing block scope degrades to an empty block id, grouping unparented
// widgets of a kind under one identity bucket.
//
// Two same-kind widgets in one block bound to the same variable share an
// identity on purpose: they are the same logical question.
func ResolveIdentity(kind WidgetKind, scope BlockScope, varName, fallback string) Identity {
	key := varName
	if key == "" {
		key = fallback
	}
	return Identity{
		BlockID:     scope.ID,
		ElementPath: fmt.Sprintf("%s-%s-%s", PathPrefix(kind), scope.ID, key),
	}
}

// AncestorLookup walks a node graph toward the root and reports the nearest
// ancestor carrying a block id. It is the system-boundary fallback used when
// no BlockScope is threaded through the renderer.
type AncestorLookup struct {
	// Parents maps node id -> parent node id ("" at the root).
	Parents map[string]string
	// BlockIDs holds the ids of nodes that are blocks.
	BlockIDs map[string]bool
}

// ResolveFromDocument resolves a widget identity by ancestry search from the
// widget's node. Missing nodes and cycles degrade to an empty block id.
func ResolveFromDocument(kind WidgetKind, lookup AncestorLookup, nodeID, varName, fallback string) Identity {
	blockID := ""
	seen := make(map[string]bool)
	for id := nodeID; id != "" && !seen[id]; id = lookup.Parents[id] {
		seen[id] = true
		if lookup.BlockIDs[id] {
			blockID = id
			break
		}
	}
	return ResolveIdentity(kind, BlockScope{ID: blockID}, varName, fallback)
}
