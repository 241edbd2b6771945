// Package trainer drills randomly generated quadratic equations, either as
// multiple-choice questions or with typed roots. Nothing is recorded.
package trainer

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/testdrill/internal/answer"
	"github.com/abhisek/testdrill/internal/equation"
	"github.com/abhisek/testdrill/internal/screen"
	"github.com/abhisek/testdrill/internal/ui/components"
	"github.com/abhisek/testdrill/internal/ui/layout"
	"github.com/abhisek/testdrill/internal/ui/theme"
)

// modes is the order the m key cycles through.
var modes = []equation.Mode{equation.ModeRandom, equation.ModeFull, equation.ModeIncomplete}

// typedCharLimit bounds a typed answer such as "x1 = -12.5, x2 = 3".
const typedCharLimit = 48

// TrainerScreen shows one generated equation at a time.
type TrainerScreen struct {
	gen  *equation.Generator
	mode equation.Mode

	drill  equation.Drill
	choice components.MultiChoice

	// typed switches from options to a free-form answer checked with
	// answer.Verify.
	typed   bool
	input   components.TextInput
	verdict answer.Result

	asked, correct, streak int
}

var _ screen.Screen = (*TrainerScreen)(nil)
var _ screen.KeyHintProvider = (*TrainerScreen)(nil)
var _ screen.StatusProvider = (*TrainerScreen)(nil)

// New creates a TrainerScreen generating equations of mode.
func New(gen *equation.Generator, mode equation.Mode) *TrainerScreen {
	s := &TrainerScreen{
		gen:   gen,
		mode:  mode,
		input: components.NewTextInput("Roots, e.g. 1, 1.5", typedCharLimit),
	}
	s.next()
	return s
}

func (s *TrainerScreen) Init() tea.Cmd { return nil }

func (s *TrainerScreen) Title() string {
	return "Trainer · " + string(s.mode)
}

func (s *TrainerScreen) Status() string {
	return lipgloss.NewStyle().Foreground(theme.Secondary).
		Render(fmt.Sprintf("%d/%d  streak %d", s.correct, s.asked, s.streak)) + "  "
}

func (s *TrainerScreen) KeyHints() []layout.KeyHint {
	if s.answered() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	if s.typed {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Check"},
			{Key: "Tab", Description: "Options"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Space/1-4", Description: "Toggle"},
		{Key: "Enter", Description: "Check"},
		{Key: "Tab", Description: "Type"},
		{Key: "M", Description: "Mode"},
		{Key: "Esc", Description: "Quit"},
	}
}

// answered reports whether the current equation has a verdict.
func (s *TrainerScreen) answered() bool {
	if s.typed {
		return s.input.Marked()
	}
	return s.choice.Submitted()
}

func (s *TrainerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if s.typed {
			var cmd tea.Cmd
			s.input, cmd = s.input.Update(msg)
			return s, cmd
		}
		return s, nil
	}

	k := kmsg.String()
	if s.answered() {
		if k == "enter" {
			s.next()
		}
		return s, nil
	}

	if k == "tab" {
		s.typed = !s.typed
		s.next()
		if s.typed {
			return s, s.input.Init()
		}
		return s, nil
	}

	if s.typed {
		return s, s.updateTyped(msg, k)
	}

	if k == "m" || k == "M" {
		s.mode = nextMode(s.mode)
		s.next()
		return s, nil
	}

	s.choice, _ = s.choice.Update(msg)
	if s.choice.Submitted() {
		s.score(s.choice.IsCorrect())
	}
	return s, nil
}

func (s *TrainerScreen) updateTyped(msg tea.Msg, key string) tea.Cmd {
	if key != "enter" {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	}
	if s.input.Value() == "" {
		return nil
	}
	sol := s.drill.Solution
	s.verdict = answer.Verify(s.input.Value(), answer.EquationSpec{A: sol.A, B: sol.B, C: sol.C})
	s.input.Mark(s.verdict.Correct)
	s.score(s.verdict.Correct)
	return nil
}

func (s *TrainerScreen) score(correct bool) {
	s.asked++
	if correct {
		s.correct++
		s.streak++
	} else {
		s.streak = 0
	}
}

func (s *TrainerScreen) View(width, height int) string {
	var b strings.Builder
	correct := s.choice.IsCorrect()
	if s.typed {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(s.choice.Question))
		b.WriteString("\n\n")
		b.WriteString(s.input.View())
		b.WriteString("\n")
		correct = s.verdict.Correct
	} else {
		b.WriteString(s.choice.View())
	}

	if s.answered() {
		b.WriteString("\n")
		if correct {
			b.WriteString(theme.Correct.Render("Correct!"))
		} else {
			b.WriteString(theme.Incorrect.Render("Not quite."))
		}
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(explain(s.drill.Solution)))
	}

	card := theme.Card.Width(min(width-4, 64)).Render(b.String())
	return lipgloss.NewStyle().Padding(1, 2).Render(card)
}

func (s *TrainerScreen) next() {
	s.drill = s.gen.Generate(s.mode)
	labels := make([]string, len(s.drill.Options))
	correct := make([]bool, len(s.drill.Options))
	for i, o := range s.drill.Options {
		labels[i] = o.Label
		correct[i] = o.Correct
	}
	s.choice = components.NewMultiChoice("Solve "+s.drill.Solution.String(), labels, correct)
	s.input.Reset()
	s.verdict = answer.Result{}
}

func nextMode(m equation.Mode) equation.Mode {
	for i, v := range modes {
		if v == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

// explain shows the discriminant and the canonical answer.
func explain(sol equation.Solution) string {
	return fmt.Sprintf("D = %d, answer: %s", sol.Discriminant, sol.Canonical())
}
