package editing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation marks recoverable pre-save validation failures. A failed
// validation blocks the commit transition only: the editor stays open and
// the ledger is untouched.
var ErrValidation = errors.New("edit validation failed")

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Validate checks a patch against its kind's pre-save rules. Validation
// sees the patch alone because the editor modals always submit the complete
// field set they surface.
func Validate(patch Patch) error {
	switch p := patch.(type) {
	case ClozeInputPatch:
		return validateClozeInput(p)
	case ClozeChoicePatch:
		return validateClozeChoice(p)
	case TogglePatch:
		return validateToggle(p)
	case TooltipPatch:
		return validateTooltip(p)
	case TriggerPatch, HyperlinkPatch:
		return nil
	case nil:
		return validationErrorf("no edit payload")
	}
	return validationErrorf("unknown widget kind %q", patch.Kind())
}

func validateClozeInput(p ClozeInputPatch) error {
	if p.CorrectAnswer == nil || strings.TrimSpace(*p.CorrectAnswer) == "" {
		return validationErrorf("correct answer is required")
	}
	return nil
}

func validateClozeChoice(p ClozeChoicePatch) error {
	if p.CorrectAnswer == nil || strings.TrimSpace(*p.CorrectAnswer) == "" {
		return validationErrorf("correct answer is required")
	}
	options := nonEmpty(p.Options)
	if len(options) < 2 {
		return validationErrorf("at least 2 options are required")
	}
	answer := strings.TrimSpace(*p.CorrectAnswer)
	for _, o := range options {
		if o == answer {
			return nil
		}
	}
	return validationErrorf("correct answer must be one of the options")
}

func validateToggle(p TogglePatch) error {
	if len(p.Options) < 2 {
		return validationErrorf("at least 2 options are required")
	}
	for _, o := range p.Options {
		if strings.TrimSpace(o) == "" {
			return validationErrorf("all options must have text")
		}
	}
	return nil
}

func validateTooltip(p TooltipPatch) error {
	if p.Tooltip == nil || strings.TrimSpace(*p.Tooltip) == "" {
		return validationErrorf("tooltip content is required")
	}
	return nil
}

func nonEmpty(options []string) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
