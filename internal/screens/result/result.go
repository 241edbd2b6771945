// Package result shows a finished session with its answer review.
package result

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/testdrill/internal/assessment"
	"github.com/abhisek/testdrill/internal/router"
	"github.com/abhisek/testdrill/internal/screen"
	"github.com/abhisek/testdrill/internal/ui/layout"
	"github.com/abhisek/testdrill/internal/ui/theme"
)

// linesPerItem is how many lines one review item takes.
const linesPerItem = 3

// ResultScreen renders the outcome of a session.
type ResultScreen struct {
	res    *assessment.Result
	offset int
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a ResultScreen for res.
func New(res *assessment.Result) *ResultScreen {
	return &ResultScreen{res: res}
}

func (s *ResultScreen) Init() tea.Cmd { return nil }

func (s *ResultScreen) Title() string {
	if s.res.TestTitle != "" {
		return s.res.TestTitle + " · Result"
	}
	return "Result"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Back"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if s.offset > 0 {
			s.offset--
		}
	case "down", "j":
		if s.offset < len(s.res.Answers)-1 {
			s.offset++
		}
	case "enter", "q":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	summary := theme.Card.Width(min(width-4, 72)).Render(s.summary())

	var b strings.Builder
	b.WriteString(summary)
	b.WriteString("\n\n")

	if len(s.res.Answers) == 0 {
		b.WriteString(theme.Hint.Render("  No answers were submitted."))
		return b.String()
	}

	room := max((height-lipgloss.Height(summary)-2)/linesPerItem, 1)
	end := min(s.offset+room, len(s.res.Answers))
	for i := s.offset; i < end; i++ {
		b.WriteString(renderItem(i+1, s.res.Answers[i]))
	}
	if end < len(s.res.Answers) {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  … %d more", len(s.res.Answers)-end)))
	}
	return b.String()
}

func (s *ResultScreen) summary() string {
	sess := s.res.Session

	statusStyle := theme.Correct
	if sess.Status != assessment.StatusCompleted {
		statusStyle = theme.Incorrect
	}

	lines := []string{
		theme.Title.Render(s.res.TestTitle),
		"",
		"Status:  " + statusStyle.Render(sess.Status.Label()),
		fmt.Sprintf("Correct: %d of %d", sess.CorrectCount, sess.TotalQuestions),
		fmt.Sprintf("Errors:  %d", sess.ErrorCount),
	}
	if sess.ScorePercent != nil {
		lines = append(lines, fmt.Sprintf("Score:   %.1f%%", *sess.ScorePercent))
	}
	if sess.Grade != nil {
		lines = append(lines, theme.Title.Render(fmt.Sprintf("Grade:   %d", *sess.Grade)))
	}
	return strings.Join(lines, "\n")
}

func renderItem(n int, item assessment.ReviewItem) string {
	prompt := fmt.Sprintf("question %d", item.QuestionID)
	if item.Question != nil {
		prompt = item.Question.Prompt()
	}

	verdict := theme.Correct.Render("✓")
	if !item.Correct {
		verdict = theme.Incorrect.Render("✗")
	}

	given := item.Answer
	if given == "" {
		given = "(empty)"
	}

	line := fmt.Sprintf("  %d. %s\n     %s %s", n, theme.Body.Render(prompt), verdict, given)
	if !item.Correct {
		line += theme.Hint.Render("   expected: " + item.Expected)
	}
	return line + "\n\n"
}
