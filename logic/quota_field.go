package logic

// QuotaMode says whether the quota field tracks the computed share or holds a
// value the user typed.
type QuotaMode int

const (
	QuotaAuto QuotaMode = iota
	QuotaManual
)

func (m QuotaMode) String() string {
	switch m {
	case QuotaAuto:
		return "auto"
	case QuotaManual:
		return "manual"
	default:
		return "unknown"
	}
}

// QuotaField is the editable per-guest amount. It enters Manual only on a user
// edit and returns to Auto only on an explicit reset; recomputation never
// changes the mode.
type QuotaField struct {
	mode    QuotaMode
	display string
}

// Mode returns the current mode.
func (f *QuotaField) Mode() QuotaMode { return f.mode }

// Display returns the value bound to the text field.
func (f *QuotaField) Display() string { return f.display }

// Recompute applies a new computed share. It returns the new display value
// and true when the field was overwritten.
func (f *QuotaField) Recompute(share float64) (string, bool) {
	if f.mode == QuotaManual {
		return f.display, false
	}
	if !ShouldAutoUpdateDisplay(f.display, share) {
		return f.display, false
	}
	f.display = FormatForInput(share)
	return f.display, true
}

// Edit records a user keystroke, sanitized to digits, and switches to Manual.
func (f *QuotaField) Edit(text string) string {
	f.mode = QuotaManual
	f.display = ParseManualEdit(text)
	return f.display
}

// Reset switches back to Auto and overwrites the field with share.
func (f *QuotaField) Reset(share float64) string {
	f.mode = QuotaAuto
	f.display = FormatForInput(share)
	return f.display
}
