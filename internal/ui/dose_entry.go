package ui

import (
	"strings"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// DoseEntry is an Entry that only accepts a positive decimal amount, like "500" or "2.5".
type DoseEntry struct {
	widget.Entry
}

// NewDoseEntry creates a new DoseEntry.
func NewDoseEntry() *DoseEntry {
	entry := &DoseEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune keeps digits and a single decimal point. A comma is read as the point.
// Pasted text bypasses this filter.
func (e *DoseEntry) TypedRune(r rune) {
	switch {
	case r >= '0' && r <= '9':
		e.Entry.TypedRune(r)
	case r == '.' || r == ',':
		if !strings.Contains(e.Text, ".") {
			e.Entry.TypedRune('.')
		}
	}
}

// Keyboard requests the numeric keypad on mobile drivers.
func (e *DoseEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}
