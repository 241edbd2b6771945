package assessment

import (
	"time"

	"github.com/abhisek/testdrill/internal/answer"
	"github.com/abhisek/testdrill/internal/equation"
	"github.com/abhisek/testdrill/internal/grading"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusInProgress   Status = "in_progress"
	StatusCompleted    Status = Status(grading.Completed)
	StatusFailedTime   Status = Status(grading.FailedTime)
	StatusFailedErrors Status = Status(grading.FailedErrors)
)

// Terminal reports whether no further transitions can happen from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailedTime, StatusFailedErrors:
		return true
	}
	return false
}

// Label is a human readable form of s.
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	case StatusFailedTime:
		return "Time limit exceeded"
	case StatusFailedErrors:
		return "Too many errors"
	}
	return string(s)
}

// QuestionKind is the type of a test question.
type QuestionKind string

const (
	KindEquation QuestionKind = "equation"
	KindTheory   QuestionKind = "theory"
	KindOpen     QuestionKind = "open"
)

// Test is a published set of questions with its limits and grade
// thresholds. Tests are read-only for the engine.
type Test struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// TimeLimitSecs is the session time budget; 0 means unlimited.
	TimeLimitSecs int `json:"time_limit,omitempty"`

	// MaxErrors ends the session when reached; 0 means unlimited.
	MaxErrors int `json:"max_errors,omitempty"`

	Thresholds grading.Thresholds `json:"thresholds"`
	Published  bool               `json:"is_published"`
	CreatedAt  time.Time          `json:"created_at"`

	// Questions are ordered by SortOrder.
	Questions []Question `json:"questions,omitempty"`
}

// TimeLimit returns the time budget as a duration.
func (t *Test) TimeLimit() time.Duration {
	return time.Duration(t.TimeLimitSecs) * time.Second
}

// Question is a single test question.
type Question struct {
	ID     int64        `json:"id"`
	TestID int64        `json:"test_id"`
	Kind   QuestionKind `json:"question_type"`

	// A, B, C are the coefficients of an equation question.
	A int `json:"eq_a,omitempty"`
	B int `json:"eq_b,omitempty"`
	C int `json:"eq_c,omitempty"`

	// Text, AnswerMask and Strategy describe a theory or open question.
	Text       string          `json:"question_text,omitempty"`
	AnswerMask string          `json:"answer_mask,omitempty"`
	Strategy   answer.Strategy `json:"answer_type,omitempty"`

	Hint      string `json:"hint,omitempty"`
	SortOrder int    `json:"sort_order"`

	// Points is informational; sessions are scored by answer count.
	Points int `json:"points"`
}

// Spec returns how answers to this question are checked.
func (q *Question) Spec() answer.Spec {
	if q.Kind == KindEquation {
		return answer.EquationSpec{A: q.A, B: q.B, C: q.C}
	}
	return answer.TextSpec{Mask: q.AnswerMask, Strategy: q.Strategy}
}

// Prompt is the text shown to the student: the rendered equation or the
// question text.
func (q *Question) Prompt() string {
	if q.Kind == KindEquation {
		return "Solve " + equation.Format(q.A, q.B, q.C)
	}
	return q.Text
}

// Session is one student's single attempt at one test.
type Session struct {
	ID        string `json:"id"`
	TestID    int64  `json:"test_id"`
	StudentID string `json:"student_id"`
	Status    Status `json:"status"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// TotalQuestions is snapshotted when the session is created.
	TotalQuestions int `json:"total_questions"`
	CorrectCount   int `json:"correct_count"`
	ErrorCount     int `json:"error_count"`

	// ScorePercent and Grade are set once, on the terminal transition.
	ScorePercent *float64 `json:"score_percent,omitempty"`
	Grade        *int     `json:"grade,omitempty"`
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	c := *s
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		c.FinishedAt = &t
	}
	if s.ScorePercent != nil {
		v := *s.ScorePercent
		c.ScorePercent = &v
	}
	if s.Grade != nil {
		v := *s.Grade
		c.Grade = &v
	}
	return &c
}

// Counts is the pair of answer counters of a session as last read.
// Conditional updates compare it against the stored row.
type Counts struct {
	Correct int
	Errors  int
}

// Counts returns the answer counters of s.
func (s *Session) Counts() Counts {
	return Counts{Correct: s.CorrectCount, Errors: s.ErrorCount}
}

// AnswerRecord is an append-only log entry for one submitted answer.
type AnswerRecord struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	QuestionID int64     `json:"question_id"`
	Answer     string    `json:"student_answer"`
	Correct    bool      `json:"is_correct"`
	Expected   string    `json:"expected"`
	AnsweredAt time.Time `json:"answered_at"`
}

// Submission is the outcome of SubmitAnswer.
type Submission struct {
	answer.Result

	// Terminal is set when this submission ended the session, either by
	// the time limit (the answer was not scored) or by the error limit.
	Terminal Status `json:"status,omitempty"`

	// Scored is false when the answer arrived after the time limit.
	Scored bool `json:"scored"`

	Session *Session `json:"session"`
}

// ReviewItem pairs an answer with the question it answered.
type ReviewItem struct {
	AnswerRecord
	Question *Question `json:"question,omitempty"`
}

// Result is a session with its full answer history.
type Result struct {
	Session   *Session     `json:"session"`
	TestTitle string       `json:"test_title"`
	Answers   []ReviewItem `json:"answers"`
}

// AvailableTest is a published test as seen by one student.
type AvailableTest struct {
	Test    *Test    `json:"test"`
	Session *Session `json:"session,omitempty"`
}

// StudentView returns a copy of t without answer masks, safe to hand to the
// student taking the test.
func (t *Test) StudentView() *Test {
	c := *t
	c.Questions = make([]Question, len(t.Questions))
	for i, q := range t.Questions {
		q.AnswerMask = ""
		c.Questions[i] = q
	}
	return &c
}
