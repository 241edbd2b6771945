package grading

import "math"

// Grade values on the five-point scale.
const (
	GradeFail         = 2
	GradeSatisfactory = 3
	GradeGood         = 4
	GradeExcellent    = 5
)

// Thresholds are the minimum score percentages for grades 5, 4 and 3.
// Excellent >= Good >= Satisf is expected.
type Thresholds struct {
	Excellent float64 `json:"grade_excellent"`
	Good      float64 `json:"grade_good"`
	Satisf    float64 `json:"grade_satisf"`
}

// DefaultThresholds returns 90/75/60.
func DefaultThresholds() Thresholds {
	return Thresholds{Excellent: 90, Good: 75, Satisf: 60}
}

// Status is the terminal status a session is graded in.
type Status string

const (
	Completed    Status = "completed"
	FailedTime   Status = "failed_time"
	FailedErrors Status = "failed_errors"
)

// Outcome is the final score of a session.
type Outcome struct {
	ScorePercent float64
	Grade        int
}

// Grade converts a session's counts into a score and a grade.
//
// Only a Completed session is graded against the thresholds. Any other
// status, including one that ended on the time or error limit, gets
// GradeFail. Thresholds are inclusive and are compared against the rounded
// percentage that is stored and displayed.
func Grade(correct, total int, status Status, th Thresholds) Outcome {
	if total < 1 {
		total = 1
	}
	score := math.Round(float64(correct)/float64(total)*100*100) / 100

	out := Outcome{ScorePercent: score, Grade: GradeFail}
	if status != Completed {
		return out
	}

	switch {
	case score >= th.Excellent:
		out.Grade = GradeExcellent
	case score >= th.Good:
		out.Grade = GradeGood
	case score >= th.Satisf:
		out.Grade = GradeSatisfactory
	}
	return out
}
