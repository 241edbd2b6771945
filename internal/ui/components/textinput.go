package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/testdrill/internal/ui/theme"
)

// TextInput is a free-form answer field. After Mark it shows the verdict
// and ignores further typing until Reset.
type TextInput struct {
	Model  textinput.Model
	marked bool
	ok     bool
}

// NewTextInput creates a focused answer field limited to charLimit runes.
func NewTextInput(placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return TextInput{Model: ti}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.marked {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.marked {
		if t.ok {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the trimmed input.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// Mark freezes the input with a verdict.
func (t *TextInput) Mark(correct bool) {
	t.marked = true
	t.ok = correct
}

// Marked reports whether a verdict is shown.
func (t TextInput) Marked() bool {
	return t.marked
}

// Reset clears the value and verdict for the next question.
func (t *TextInput) Reset() {
	t.Model.Reset()
	t.marked = false
	t.ok = false
}
