package components

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/testdrill/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. Several options may be
// correct and the answer counts only when exactly the correct set is
// chosen. After submission every correct option is highlighted.
type MultiChoice struct {
	Question string
	Options  []string
	Correct  []bool
	Selected int

	// Chosen marks the options toggled on, indexed like Options.
	Chosen []bool

	submitted bool
}

// NewMultiChoice creates a multiple-choice selector. correct is indexed
// like options.
func NewMultiChoice(question string, options []string, correct []bool) MultiChoice {
	return MultiChoice{
		Question: question,
		Options:  options,
		Correct:  correct,
		Chosen:   make([]bool, len(options)),
	}
}

// Submitted reports whether the choice was submitted.
func (m MultiChoice) Submitted() bool {
	return m.submitted
}

// Update handles keyboard navigation and selection. Space and the digits
// 1..n toggle an option; Enter submits. Enter with nothing toggled submits
// the highlighted option alone.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.submitted {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "space", " ":
		m.toggle(m.Selected)
	case "enter":
		if !slices.Contains(m.Chosen, true) {
			m.toggle(m.Selected)
		}
		m.submitted = true
	default:
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(m.Options) {
			m.Selected = int(key[0] - '1')
			m.toggle(m.Selected)
		}
	}
	return m, nil
}

func (m *MultiChoice) toggle(i int) {
	// Copy so values returned by earlier Updates keep their marks.
	m.Chosen = slices.Clone(m.Chosen)
	m.Chosen[i] = !m.Chosen[i]
}

// View renders the selector.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.submitted {
			prefix = "▸ "
		}
		mark := "[ ]"
		if m.Chosen[i] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s%s %d)  %s", prefix, mark, i+1, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.submitted && m.Correct[i]:
			style = theme.Correct
		case m.submitted && m.Chosen[i]:
			style = theme.Incorrect
		case m.submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// IsCorrect reports whether the submitted options are exactly the correct
// ones.
func (m MultiChoice) IsCorrect() bool {
	return m.submitted && slices.Equal(m.Chosen, m.Correct)
}
