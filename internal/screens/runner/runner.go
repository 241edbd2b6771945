// Package runner is the screen a student takes a test on.
package runner

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/testdrill/internal/assessment"
	"github.com/abhisek/testdrill/internal/router"
	"github.com/abhisek/testdrill/internal/screen"
	"github.com/abhisek/testdrill/internal/screens/result"
	"github.com/abhisek/testdrill/internal/ui/components"
	"github.com/abhisek/testdrill/internal/ui/layout"
	"github.com/abhisek/testdrill/internal/ui/theme"
)

// answerCharLimit bounds what a student can type for one answer.
const answerCharLimit = 200

type phase int

const (
	phaseLoading phase = iota
	phaseQuestion
	phaseFeedback
	phaseEnded // a policy ended the session; waiting for a key
	phaseFinishing
)

// RunnerScreen walks a student through the questions of one session.
type RunnerScreen struct {
	engine  *assessment.Engine
	session *assessment.Session
	now     func() time.Time

	test     *assessment.Test
	answered map[int64]bool
	current  int

	phase       phase
	input       components.TextInput
	last        *assessment.Submission
	confirmQuit bool
	errMsg      string
}

var _ screen.Screen = (*RunnerScreen)(nil)
var _ screen.KeyHintProvider = (*RunnerScreen)(nil)
var _ screen.StatusProvider = (*RunnerScreen)(nil)
var _ screen.EscCapturer = (*RunnerScreen)(nil)

// New creates a RunnerScreen for an in-progress session.
func New(engine *assessment.Engine, session *assessment.Session) *RunnerScreen {
	return &RunnerScreen{
		engine:   engine,
		session:  session,
		now:      time.Now,
		answered: make(map[int64]bool),
		input:    components.NewTextInput("Type your answer...", answerCharLimit),
	}
}

func (s *RunnerScreen) Init() tea.Cmd {
	return tea.Batch(s.load(), s.input.Init(), tick())
}

func (s *RunnerScreen) Title() string {
	if s.test == nil {
		return "Test"
	}
	return s.test.Title
}

// CapturesEsc keeps Esc from leaving a running test without confirmation.
func (s *RunnerScreen) CapturesEsc() bool {
	return s.errMsg == ""
}

func (s *RunnerScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Finish test"},
			{Key: "N", Description: "Keep going"},
		}
	case s.phase == phaseFeedback, s.phase == phaseEnded:
		return []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
	case s.phase == phaseQuestion:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Finish"},
		}
	}
	return nil
}

// Status is the countdown, or the error count when the test is untimed.
func (s *RunnerScreen) Status() string {
	if s.test == nil {
		return ""
	}
	if s.test.TimeLimitSecs > 0 {
		left := s.remaining()
		return theme.StatusColor(left).Render("⏱ "+layout.FormatClock(left)) + "  "
	}
	if s.test.MaxErrors > 0 {
		return renderErrorBudget(s.session.ErrorCount, s.test.MaxErrors)
	}
	return ""
}

func (s *RunnerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return s.handleLoaded(msg)
	case timerTickMsg:
		return s.handleTick()
	case submittedMsg:
		return s.handleSubmitted(msg)
	case finishedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: result.New(msg.Result)} }
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.phase == phaseQuestion && !s.confirmQuit {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *RunnerScreen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.test = msg.Test
	s.session = msg.Result.Session
	for _, a := range msg.Result.Answers {
		s.answered[a.QuestionID] = true
	}
	if s.session.Status.Terminal() {
		return s, s.finish()
	}
	s.current = s.nextUnanswered(0)
	if s.current >= len(s.test.Questions) {
		return s, s.finish()
	}
	s.phase = phaseQuestion
	return s, nil
}

func (s *RunnerScreen) handleTick() (screen.Screen, tea.Cmd) {
	if s.phase == phaseFinishing || s.phase == phaseEnded || s.errMsg != "" {
		return s, nil
	}
	// The engine only enforces the limit on submission; the screen closes
	// the session itself once the countdown runs out.
	if s.test != nil && s.test.TimeLimitSecs > 0 && s.remaining() <= 0 && s.phase != phaseLoading {
		return s, s.finish()
	}
	return s, tick()
}

func (s *RunnerScreen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, assessment.ErrSessionTerminal) {
			return s, s.finish()
		}
		s.errMsg = msg.Err.Error()
		return s, nil
	}

	sub := msg.Submission
	s.last = sub
	s.session = sub.Session
	if sub.Terminal != "" {
		if sub.Scored {
			s.input.Mark(sub.Correct)
		}
		s.phase = phaseEnded
		return s, nil
	}

	s.answered[s.question().ID] = true
	s.input.Mark(sub.Correct)
	s.phase = phaseFeedback
	return s, nil
}

func (s *RunnerScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		if key == "enter" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s, s.finish()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	switch s.phase {
	case phaseQuestion:
		switch key {
		case "esc":
			s.confirmQuit = true
			return s, nil
		case "enter":
			return s, s.submit(s.question().ID, s.input.Value())
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case phaseFeedback:
		if key != "enter" {
			return s, nil
		}
		s.current = s.nextUnanswered(s.current + 1)
		if s.current >= len(s.test.Questions) {
			return s, s.finish()
		}
		s.input.Reset()
		s.last = nil
		s.phase = phaseQuestion
		return s, nil

	case phaseEnded:
		if key == "enter" {
			return s, s.finish()
		}
	}
	return s, nil
}

func (s *RunnerScreen) question() *assessment.Question {
	return &s.test.Questions[s.current]
}

// nextUnanswered returns the index of the first unanswered question at or
// after from, or len(questions) when none is left.
func (s *RunnerScreen) nextUnanswered(from int) int {
	for i := from; i < len(s.test.Questions); i++ {
		if !s.answered[s.test.Questions[i].ID] {
			return i
		}
	}
	return len(s.test.Questions)
}

func (s *RunnerScreen) remaining() int {
	elapsed := s.now().Sub(s.session.StartedAt)
	return int((s.test.TimeLimit() - elapsed).Round(time.Second) / time.Second)
}

func (s *RunnerScreen) load() tea.Cmd {
	engine, sessionID, testID := s.engine, s.session.ID, s.session.TestID
	return func() tea.Msg {
		ctx := context.Background()
		t, err := engine.Test(ctx, testID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		res, err := engine.Result(ctx, sessionID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Test: t, Result: res}
	}
}

func (s *RunnerScreen) submit(questionID int64, raw string) tea.Cmd {
	engine, sessionID := s.engine, s.session.ID
	return func() tea.Msg {
		sub, err := engine.SubmitAnswer(context.Background(), sessionID, questionID, raw)
		return submittedMsg{Submission: sub, Err: err}
	}
}

// finish closes the session if it is still open and loads its result.
func (s *RunnerScreen) finish() tea.Cmd {
	s.phase = phaseFinishing
	engine, sessionID := s.engine, s.session.ID
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := engine.Finish(ctx, sessionID); err != nil {
			return finishedMsg{Err: err}
		}
		res, err := engine.Result(ctx, sessionID)
		return finishedMsg{Result: res, Err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
