package result

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/testdrill/internal/assessment"
	"github.com/abhisek/testdrill/internal/router"
)

func testResult() *assessment.Result {
	score, grade := 50.0, 2
	return &assessment.Result{
		TestTitle: "Quadratics",
		Session: &assessment.Session{
			ID:             "s1",
			Status:         assessment.StatusCompleted,
			TotalQuestions: 2,
			CorrectCount:   1,
			ErrorCount:     1,
			ScorePercent:   &score,
			Grade:          &grade,
		},
		Answers: []assessment.ReviewItem{
			{
				AnswerRecord: assessment.AnswerRecord{QuestionID: 1, Answer: "2, 3", Correct: true, Expected: "2, 3"},
				Question:     &assessment.Question{Kind: assessment.KindEquation, A: 1, B: -5, C: 6},
			},
			{
				AnswerRecord: assessment.AnswerRecord{QuestionID: 2, Answer: "", Expected: "discriminant"},
				Question:     &assessment.Question{Kind: assessment.KindTheory, Text: "What is b²-4ac called?"},
			},
		},
	}
}

func TestResultScreen_Title(t *testing.T) {
	s := New(testResult())
	if s.Title() != "Quadratics · Result" {
		t.Errorf("Title = %q", s.Title())
	}
}

func TestResultScreen_View(t *testing.T) {
	view := New(testResult()).View(100, 30)
	for _, want := range []string{"Completed", "Score:   50.0%", "Grade:   2", "Solve x² - 5x + 6 = 0", "expected: discriminant", "(empty)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestResultScreen_ViewWithoutAnswers(t *testing.T) {
	res := testResult()
	res.Answers = nil
	res.Session.Status = assessment.StatusFailedTime
	view := New(res).View(100, 30)
	if !strings.Contains(view, "Time limit exceeded") || !strings.Contains(view, "No answers") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestResultScreen_Scroll(t *testing.T) {
	s := New(testResult())
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.offset != 1 {
		t.Errorf("offset = %d, want 1", s.offset)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if s.offset != 0 {
		t.Errorf("offset = %d, want 0", s.offset)
	}
}

func TestResultScreen_EnterPops(t *testing.T) {
	_, cmd := New(testResult()).Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("expected PopScreenMsg, got %T", cmd())
	}
}
