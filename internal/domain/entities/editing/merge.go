package editing

// Pure merge functions: authored base props overridden field-by-field by a
// pending edit's patch. Merging is side-effect free, so identical inputs
// always produce identical effective props.

func override(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func overrideBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func overrideInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// MergeClozeInput applies a patch over authored cloze-input props.
func MergeClozeInput(base ClozeInputProps, patch ClozeInputPatch) ClozeInputProps {
	out := base
	override(&out.VarName, patch.VarName)
	override(&out.CorrectAnswer, patch.CorrectAnswer)
	override(&out.Placeholder, patch.Placeholder)
	overrideBool(&out.CaseSensitive, patch.CaseSensitive)
	override(&out.Color, patch.Color)
	override(&out.BgColor, patch.BgColor)
	return out
}

// MergeClozeChoice applies a patch over authored cloze-choice props.
func MergeClozeChoice(base ClozeChoiceProps, patch ClozeChoicePatch) ClozeChoiceProps {
	out := base
	override(&out.VarName, patch.VarName)
	override(&out.CorrectAnswer, patch.CorrectAnswer)
	if patch.Options != nil {
		out.Options = append([]string(nil), patch.Options...)
	}
	override(&out.Placeholder, patch.Placeholder)
	override(&out.Color, patch.Color)
	override(&out.BgColor, patch.BgColor)
	return out
}

// MergeToggle applies a patch over authored toggle props.
func MergeToggle(base ToggleProps, patch TogglePatch) ToggleProps {
	out := base
	override(&out.VarName, patch.VarName)
	if patch.Options != nil {
		out.Options = append([]string(nil), patch.Options...)
	}
	override(&out.Color, patch.Color)
	override(&out.BgColor, patch.BgColor)
	return out
}

// MergeTooltip applies a patch over authored tooltip props.
func MergeTooltip(base TooltipProps, patch TooltipPatch) TooltipProps {
	out := base
	override(&out.Text, patch.Text)
	override(&out.Tooltip, patch.Tooltip)
	override(&out.Position, patch.Position)
	overrideInt(&out.MaxWidth, patch.MaxWidth)
	override(&out.Color, patch.Color)
	override(&out.BgColor, patch.BgColor)
	return out
}

// MergeTrigger applies a patch over authored trigger props.
func MergeTrigger(base TriggerProps, patch TriggerPatch) TriggerProps {
	out := base
	override(&out.Text, patch.Text)
	override(&out.VarName, patch.VarName)
	if patch.Value != nil {
		v := *patch.Value
		out.Value = &v
	}
	override(&out.Color, patch.Color)
	override(&out.BgColor, patch.BgColor)
	return out
}

// MergeHyperlink applies a patch over authored hyperlink props.
func MergeHyperlink(base HyperlinkProps, patch HyperlinkPatch) HyperlinkProps {
	out := base
	override(&out.Text, patch.Text)
	override(&out.Href, patch.Href)
	override(&out.TargetBlockID, patch.TargetBlockID)
	override(&out.Color, patch.Color)
	override(&out.BgColor, patch.BgColor)
	return out
}
