// Package testlist shows the published tests a student can take.
package testlist

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/testdrill/internal/assessment"
	"github.com/abhisek/testdrill/internal/router"
	"github.com/abhisek/testdrill/internal/screen"
	"github.com/abhisek/testdrill/internal/screens/result"
	"github.com/abhisek/testdrill/internal/screens/runner"
	"github.com/abhisek/testdrill/internal/ui/components"
	"github.com/abhisek/testdrill/internal/ui/layout"
	"github.com/abhisek/testdrill/internal/ui/theme"
)

type loadedMsg struct {
	Tests []assessment.AvailableTest
	Err   error
}

// openMsg carries the screen to open for a chosen test.
type openMsg struct {
	Screen screen.Screen
	Err    error
}

// TestListScreen lists tests and opens a runner or a result for each.
type TestListScreen struct {
	engine    *assessment.Engine
	studentID string

	tests  []assessment.AvailableTest
	menu   components.Menu
	loaded bool
	errMsg string
}

var _ screen.Screen = (*TestListScreen)(nil)
var _ screen.KeyHintProvider = (*TestListScreen)(nil)

// New creates a TestListScreen for studentID.
func New(engine *assessment.Engine, studentID string) *TestListScreen {
	return &TestListScreen{engine: engine, studentID: studentID}
}

func (s *TestListScreen) Init() tea.Cmd {
	return s.load()
}

func (s *TestListScreen) Title() string {
	return "Tests for " + s.studentID
}

func (s *TestListScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *TestListScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ResumedMsg:
		return s, s.load()
	case loadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.tests = msg.Tests
		s.menu = s.buildMenu()
		return s, nil
	case openMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: msg.Screen} }
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *TestListScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Available tests"))
	b.WriteString("\n\n")

	switch {
	case !s.loaded:
		b.WriteString(theme.Hint.Render("Loading..."))
	case len(s.tests) == 0:
		b.WriteString(theme.Hint.Render("No tests are published yet."))
	default:
		b.WriteString(s.menu.View())
	}
	if s.errMsg != "" {
		b.WriteString("\n" + theme.Incorrect.Render(s.errMsg))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (s *TestListScreen) buildMenu() components.Menu {
	items := make([]components.MenuItem, len(s.tests))
	for i, at := range s.tests {
		items[i] = components.MenuItem{
			Label:  at.Test.Title,
			Detail: describe(at),
			Action: s.open(at.Test.ID),
		}
	}
	return components.NewMenu(items)
}

// open starts or resumes the test. A finished attempt opens its result.
func (s *TestListScreen) open(testID int64) func() tea.Cmd {
	engine, student := s.engine, s.studentID
	return func() tea.Cmd {
		return func() tea.Msg {
			ctx := context.Background()
			sess, err := engine.Start(ctx, testID, student)
			if prior, ok := assessment.IsAlreadyAttempted(err); ok {
				res, err := engine.Result(ctx, prior.ID)
				if err != nil {
					return openMsg{Err: err}
				}
				return openMsg{Screen: result.New(res)}
			}
			if err != nil {
				return openMsg{Err: err}
			}
			return openMsg{Screen: runner.New(engine, sess)}
		}
	}
}

func (s *TestListScreen) load() tea.Cmd {
	engine, student := s.engine, s.studentID
	return func() tea.Msg {
		tests, err := engine.Available(context.Background(), student)
		return loadedMsg{Tests: tests, Err: err}
	}
}

func describe(at assessment.AvailableTest) string {
	parts := []string{"untimed"}
	if at.Test.TimeLimitSecs > 0 {
		parts[0] = layout.FormatClock(at.Test.TimeLimitSecs)
	}
	if at.Test.MaxErrors > 0 {
		parts = append(parts, fmt.Sprintf("max %d errors", at.Test.MaxErrors))
	}
	if at.Session != nil {
		if at.Session.Grade != nil {
			parts = append(parts, fmt.Sprintf("%s, grade %d", at.Session.Status.Label(), *at.Session.Grade))
		} else {
			parts = append(parts, at.Session.Status.Label())
		}
	}
	return strings.Join(parts, " · ")
}
