package trainer

import (
	"math/rand/v2"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/testdrill/internal/equation"
)

func testTrainer(mode equation.Mode) *TrainerScreen {
	return New(equation.NewGenerator(rand.NewPCG(1, 2)), mode)
}

func wrongIndex(s *TrainerScreen) int {
	for i, ok := range s.choice.Correct {
		if !ok {
			return i
		}
	}
	return -1
}

func press(s *TrainerScreen, r rune) {
	s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
}

func enter(s *TrainerScreen) {
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
}

// chooseCorrect toggles every correct option and submits.
func chooseCorrect(s *TrainerScreen) {
	for i, ok := range s.choice.Correct {
		if ok {
			press(s, rune('1'+i))
		}
	}
	enter(s)
}

func typeAnswer(s *TrainerScreen, text string) {
	for _, r := range text {
		press(s, r)
	}
	enter(s)
}

// untilTwoRoots regenerates the drill of s until it has two real roots.
func untilTwoRoots(t *testing.T, s *TrainerScreen) *TrainerScreen {
	t.Helper()
	for i := 0; i < 100; i++ {
		if s.drill.Solution.RootCount() == 2 {
			return s
		}
		s.next()
	}
	t.Fatal("no two-root equation generated")
	return nil
}

func TestTrainerScreen_Title(t *testing.T) {
	s := testTrainer(equation.ModeFull)
	if s.Title() != "Trainer · full" {
		t.Errorf("Title = %q", s.Title())
	}
}

func TestTrainerScreen_CorrectChoiceBuildsStreak(t *testing.T) {
	s := testTrainer(equation.ModeRandom)

	chooseCorrect(s)
	if s.correct != 1 || s.streak != 1 || s.asked != 1 {
		t.Fatalf("got correct=%d streak=%d asked=%d", s.correct, s.streak, s.asked)
	}
	if !strings.Contains(s.View(100, 30), "Correct!") {
		t.Error("expected verdict in view")
	}

	enter(s)
	if s.choice.Submitted() {
		t.Fatal("expected a fresh question after Enter")
	}

	press(s, rune('1'+wrongIndex(s)))
	enter(s)
	if s.streak != 0 || s.asked != 2 {
		t.Errorf("got streak=%d asked=%d", s.streak, s.asked)
	}
	if !strings.Contains(s.View(100, 30), "D = ") {
		t.Error("expected explanation after a wrong choice")
	}
}

func TestTrainerScreen_ModeCycles(t *testing.T) {
	s := testTrainer(equation.ModeRandom)
	s.Update(tea.KeyPressMsg{Code: 'm', Text: "m"})
	if s.mode != equation.ModeFull {
		t.Errorf("mode = %s, want full", s.mode)
	}
	s.Update(tea.KeyPressMsg{Code: 'm', Text: "m"})
	if s.mode != equation.ModeIncomplete || s.drill.Solution.B != 0 {
		t.Errorf("mode = %s b = %d, want incomplete with b = 0", s.mode, s.drill.Solution.B)
	}
}

func TestTrainerScreen_Status(t *testing.T) {
	s := testTrainer(equation.ModeFull)
	chooseCorrect(s)
	if !strings.Contains(s.Status(), "1/1  streak 1") {
		t.Errorf("Status = %q", s.Status())
	}
}

func TestTrainerScreen_OneOfTwoRootsIsWrong(t *testing.T) {
	s := untilTwoRoots(t, testTrainer(equation.ModeFull))
	for i, ok := range s.choice.Correct {
		if ok {
			press(s, rune('1'+i))
			break
		}
	}
	enter(s)
	if s.asked != 1 || s.correct != 0 {
		t.Errorf("got correct=%d asked=%d, want a miss", s.correct, s.asked)
	}
	if !strings.Contains(s.View(100, 30), "Not quite.") {
		t.Error("expected a miss verdict in view")
	}
}

func TestTrainerScreen_TypedAnswer(t *testing.T) {
	s := testTrainer(equation.ModeFull)
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if !s.typed {
		t.Fatal("expected Tab to switch to typed answers")
	}
	s = untilTwoRoots(t, s)

	typeAnswer(s, s.drill.Solution.Canonical())
	if !s.input.Marked() || s.correct != 1 {
		t.Fatalf("got correct=%d marked=%v for %q", s.correct, s.input.Marked(), s.drill.Solution.Canonical())
	}
	if !strings.Contains(s.View(100, 30), "Correct!") {
		t.Error("expected verdict in view")
	}

	enter(s)
	if s.input.Marked() || s.input.Value() != "" {
		t.Fatal("expected a cleared input after Enter")
	}
	s = untilTwoRoots(t, s)

	typeAnswer(s, equation.FormatNumber(s.drill.Solution.Roots[0]))
	if s.correct != 1 || s.asked != 2 || s.streak != 0 {
		t.Errorf("got correct=%d asked=%d streak=%d, a single root must be wrong",
			s.correct, s.asked, s.streak)
	}
}

func TestTrainerScreen_TypedModeIgnoresModeKey(t *testing.T) {
	s := testTrainer(equation.ModeRandom)
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	press(s, 'm')
	if s.mode != equation.ModeRandom {
		t.Errorf("mode = %s, typing m must not cycle modes", s.mode)
	}
	if s.input.Value() != "m" {
		t.Errorf("input = %q, want %q", s.input.Value(), "m")
	}
}
