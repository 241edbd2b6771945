package runner

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/testdrill/internal/assessment"
	"github.com/abhisek/testdrill/internal/ui/components"
	"github.com/abhisek/testdrill/internal/ui/theme"
)

func (s *RunnerScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return center(width, height, theme.Incorrect.Render("Something went wrong")+"\n\n"+
			theme.Body.Render(s.errMsg)+"\n\n"+theme.Hint.Render("Press Enter to go back"))
	case s.phase == phaseLoading:
		return center(width, height, theme.Hint.Render("Loading test..."))
	case s.phase == phaseFinishing:
		return center(width, height, theme.Hint.Render("Finishing..."))
	case s.confirmQuit:
		return center(width, height, theme.Body.Render("Finish the test now?")+"\n\n"+
			theme.Hint.Render("Unanswered questions count as incorrect. [Y/N]"))
	}

	q := s.question()
	cardWidth := min(width-4, 76)

	var b strings.Builder
	b.WriteString(components.NewProgressBar(len(s.answered), len(s.test.Questions), cardWidth).View())
	b.WriteString("\n\n")

	body := theme.Hint.Render(fmt.Sprintf("Question %d of %d", s.current+1, len(s.test.Questions))) +
		"\n\n" + theme.Body.Bold(true).Render(q.Prompt())
	if q.Hint != "" {
		body += "\n" + theme.Hint.Render(q.Hint)
	}
	body += "\n\n" + s.input.View()
	if fb := s.feedback(); fb != "" {
		body += "\n\n" + fb
	}
	b.WriteString(theme.Card.Width(cardWidth).Render(body))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// feedback describes the last submission, if any.
func (s *RunnerScreen) feedback() string {
	sub := s.last
	if sub == nil {
		return ""
	}

	var lines []string
	switch {
	case sub.Terminal == assessment.StatusFailedTime:
		lines = append(lines, theme.Incorrect.Render("Time is up. This answer was not counted."))
	case sub.Correct:
		lines = append(lines, theme.Correct.Render("Correct!"))
	default:
		lines = append(lines, theme.Incorrect.Render("Incorrect."))
		if sub.Expected != "" {
			lines = append(lines, theme.Body.Render("Expected: "+sub.Expected))
		}
	}
	if sub.Terminal == assessment.StatusFailedErrors {
		lines = append(lines, theme.Incorrect.Render(
			fmt.Sprintf("Error limit of %d reached. The test is over.", s.test.MaxErrors)))
	}
	return strings.Join(lines, "\n")
}

func renderErrorBudget(errs, limit int) string {
	style := lipgloss.NewStyle().Foreground(theme.TextDim)
	if errs >= limit-1 {
		style = lipgloss.NewStyle().Foreground(theme.Warning).Bold(true)
	}
	return style.Render(fmt.Sprintf("✗ %d/%d", errs, limit)) + "  "
}

func center(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
