package assessment

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/abhisek/testdrill/internal/grading"
)

// HardQuestionLimit caps the number of questions reported by TestStats.
const HardQuestionLimit = 10

// Overview summarizes the finished sessions of a test.
type Overview struct {
	Total        int         `json:"total_sessions"`
	Completed    int         `json:"completed"`
	FailedTime   int         `json:"failed_time"`
	FailedErrors int         `json:"failed_errors"`
	AvgScore     *float64    `json:"avg_score"`
	AvgGrade     *float64    `json:"avg_grade"`
	Grades       map[int]int `json:"grades"`
}

// QuestionStats is the answer tally of one question.
type QuestionStats struct {
	Question *Question `json:"question"`
	Answers  int       `json:"total_answers"`
	Wrong    int       `json:"wrong_answers"`

	// ErrorRate is a percentage rounded to one decimal, nil when the
	// question was never answered.
	ErrorRate *float64 `json:"error_rate"`
}

// TestStats is the teacher-facing report for one test.
type TestStats struct {
	TestID   int64           `json:"test_id"`
	Title    string          `json:"title"`
	Overview Overview        `json:"overview"`
	Hardest  []QuestionStats `json:"hard_questions"`
	Sessions []*Session      `json:"sessions"`
}

// TestStats reports how students did on a test. Sessions still in progress
// are ignored by the overview.
func (e *Engine) TestStats(ctx context.Context, testID int64) (*TestStats, error) {
	test, err := e.tests.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	sessions, err := e.sessions.ListTerminal(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	answers, err := e.answers.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	st := &TestStats{
		TestID:   test.ID,
		Title:    test.Title,
		Overview: overview(sessions),
		Sessions: sessions,
	}

	tally := make(map[int64]*QuestionStats, len(test.Questions))
	order := make([]*QuestionStats, 0, len(test.Questions))
	for i := range test.Questions {
		qs := &QuestionStats{Question: &test.Questions[i]}
		tally[test.Questions[i].ID] = qs
		order = append(order, qs)
	}
	for _, a := range answers {
		qs, ok := tally[a.QuestionID]
		if !ok {
			continue
		}
		qs.Answers++
		if !a.Correct {
			qs.Wrong++
		}
	}
	for _, qs := range order {
		if qs.Answers > 0 {
			r := round1(float64(qs.Wrong) / float64(qs.Answers) * 100)
			qs.ErrorRate = &r
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i].ErrorRate, order[j].ErrorRate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return *a > *b
	})
	if len(order) > HardQuestionLimit {
		order = order[:HardQuestionLimit]
	}
	st.Hardest = make([]QuestionStats, len(order))
	for i, qs := range order {
		st.Hardest[i] = *qs
	}
	return st, nil
}

func overview(sessions []*Session) Overview {
	ov := Overview{Grades: map[int]int{
		grading.GradeExcellent:    0,
		grading.GradeGood:         0,
		grading.GradeSatisfactory: 0,
		grading.GradeFail:         0,
	}}

	var scoreSum, gradeSum float64
	var scored, graded int
	for _, s := range sessions {
		ov.Total++
		switch s.Status {
		case StatusCompleted:
			ov.Completed++
		case StatusFailedTime:
			ov.FailedTime++
		case StatusFailedErrors:
			ov.FailedErrors++
		}
		if s.ScorePercent != nil {
			scoreSum += *s.ScorePercent
			scored++
		}
		if s.Grade != nil {
			gradeSum += float64(*s.Grade)
			graded++
			ov.Grades[*s.Grade]++
		}
	}
	if scored > 0 {
		v := round1(scoreSum / float64(scored))
		ov.AvgScore = &v
	}
	if graded > 0 {
		v := round1(gradeSum / float64(graded))
		ov.AvgGrade = &v
	}
	return ov
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
