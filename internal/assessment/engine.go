package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/testdrill/internal/answer"
	"github.com/abhisek/testdrill/internal/grading"
	"github.com/abhisek/testdrill/internal/logging"
)

// Engine runs test sessions: it starts attempts, verifies answers, enforces
// the time and error limits and grades finished sessions.
//
// All mutations of one session are serialized through a per-session lock,
// and the repository only accepts updates to sessions that are still in
// progress, so a session reaches a terminal state exactly once.
type Engine struct {
	tests    TestRepo
	sessions SessionRepo
	answers  AnswerRepo

	now   func() time.Time
	newID func() string

	sessionLocks *keyedMutex
	startLocks   *keyedMutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for start, answer and finish times
// and for the time limit check.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator sets the session id generator.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// NewEngine creates an engine over the given repositories.
func NewEngine(repos Repos, opts ...Option) *Engine {
	e := &Engine{
		tests:        repos.Tests,
		sessions:     repos.Sessions,
		answers:      repos.Answers,
		now:          time.Now,
		newID:        uuid.NewString,
		sessionLocks: newKeyedMutex(),
		startLocks:   newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins a student's attempt at a test. An attempt still in progress
// is resumed and returned unchanged. A finished attempt yields an
// *AlreadyAttemptedError carrying that session.
func (e *Engine) Start(ctx context.Context, testID int64, studentID string) (*Session, error) {
	unlock := e.startLocks.Lock(fmt.Sprintf("%d/%s", testID, studentID))
	defer unlock()

	prior, err := e.sessions.FindByStudent(ctx, testID, studentID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if prior != nil {
		return resume(prior)
	}

	test, err := e.tests.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if !test.Published {
		return nil, ErrTestNotFound
	}

	s := &Session{
		ID:             e.newID(),
		TestID:         testID,
		StudentID:      studentID,
		Status:         StatusInProgress,
		StartedAt:      e.now().UTC(),
		TotalQuestions: len(test.Questions),
	}
	if err := e.sessions.Create(ctx, s); err != nil {
		if !errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("create session: %w", err)
		}
		// Another process started the same attempt first.
		prior, ferr := e.sessions.FindByStudent(ctx, testID, studentID)
		if ferr != nil || prior == nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		return resume(prior)
	}

	logging.WithContext(ctx).WithFields(logrus.Fields{
		"session_id": s.ID,
		"test_id":    testID,
		"student_id": studentID,
		"questions":  s.TotalQuestions,
	}).Info("session started")
	return s.Clone(), nil
}

func resume(prior *Session) (*Session, error) {
	if prior.Status.Terminal() {
		return nil, &AlreadyAttemptedError{Prior: prior}
	}
	return prior, nil
}

// maxUpdateAttempts bounds how often a submission re-reads a session that
// another engine changed between read and write.
const maxUpdateAttempts = 8

// SubmitAnswer verifies an answer and records it. When the time limit has
// passed the session ends as failed_time and the answer is neither recorded
// nor scored. When the error limit is reached the session ends as
// failed_errors. Either way the returned Submission carries the terminal
// status; ending a session is not an error.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID string, questionID int64, raw string) (*Submission, error) {
	unlock := e.sessionLocks.Lock(sessionID)
	defer unlock()

	for range maxUpdateAttempts {
		sub, err := e.submit(ctx, sessionID, questionID, raw)
		if !errors.Is(err, ErrConflict) {
			return sub, err
		}
		logging.WithContext(ctx).WithField("session_id", sessionID).
			Debug("session changed concurrently, retrying submission")
	}
	return nil, fmt.Errorf("submit answer to %s: %w", sessionID, ErrConflict)
}

// submit runs one read-verify-write round of SubmitAnswer. It returns
// ErrConflict when the session changed after it was read.
func (e *Engine) submit(ctx context.Context, sessionID string, questionID int64, raw string) (*Submission, error) {
	s, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Status.Terminal() {
		return nil, ErrSessionTerminal
	}

	test, err := e.tests.GetTest(ctx, s.TestID)
	if err != nil {
		return nil, fmt.Errorf("load test %d: %w", s.TestID, err)
	}

	now := e.now().UTC()
	prev := s.Counts()
	if e.expired(test, s, now) {
		if err := e.finalize(ctx, s, prev, test, StatusFailedTime, now); err != nil {
			return nil, err
		}
		return &Submission{Terminal: StatusFailedTime, Session: s.Clone()}, nil
	}

	q, err := e.tests.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q.TestID != s.TestID {
		return nil, ErrQuestionNotFound
	}

	res := answer.Verify(raw, q.Spec())
	if res.Correct {
		s.CorrectCount++
	} else {
		s.ErrorCount++
	}

	sub := &Submission{Result: res, Scored: true}
	if !res.Correct && test.MaxErrors > 0 && s.ErrorCount >= test.MaxErrors {
		if err := e.finalize(ctx, s, prev, test, StatusFailedErrors, now); err != nil {
			return nil, err
		}
		sub.Terminal = StatusFailedErrors
	} else if err := e.update(ctx, s, prev); err != nil {
		return nil, err
	}

	// The counters are committed first so that a lost race records nothing.
	rec := &AnswerRecord{
		SessionID:  s.ID,
		QuestionID: q.ID,
		Answer:     raw,
		Correct:    res.Correct,
		Expected:   res.Expected,
		AnsweredAt: now,
	}
	if err := e.answers.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}

	sub.Session = s.Clone()
	return sub, nil
}

// Finish ends the session as completed. Finishing an already finished
// session returns it unchanged.
func (e *Engine) Finish(ctx context.Context, sessionID string) (*Session, error) {
	unlock := e.sessionLocks.Lock(sessionID)
	defer unlock()

	for range maxUpdateAttempts {
		s, err := e.sessions.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if s.Status.Terminal() {
			return s, nil
		}
		test, err := e.tests.GetTest(ctx, s.TestID)
		if err != nil {
			return nil, fmt.Errorf("load test %d: %w", s.TestID, err)
		}
		err = e.finalize(ctx, s, s.Counts(), test, StatusCompleted, e.now().UTC())
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return s.Clone(), nil
	}
	return nil, fmt.Errorf("finish %s: %w", sessionID, ErrConflict)
}

// Test returns a published test as shown to students, without answer
// masks.
func (e *Engine) Test(ctx context.Context, testID int64) (*Test, error) {
	t, err := e.tests.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if !t.Published {
		return nil, ErrTestNotFound
	}
	return t.StudentView(), nil
}

// Session returns a session by id.
func (e *Engine) Session(ctx context.Context, sessionID string) (*Session, error) {
	return e.sessions.Get(ctx, sessionID)
}

// Result returns the session with its answers in submission order. It never
// modifies the session.
func (e *Engine) Result(ctx context.Context, sessionID string) (*Result, error) {
	s, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	res := &Result{Session: s, Answers: []ReviewItem{}}
	test, err := e.tests.GetTest(ctx, s.TestID)
	switch {
	case err == nil:
		res.TestTitle = test.Title
	case !errors.Is(err, ErrTestNotFound):
		return nil, fmt.Errorf("load test %d: %w", s.TestID, err)
	}

	byID := make(map[int64]*Question)
	if test != nil {
		for i := range test.Questions {
			byID[test.Questions[i].ID] = &test.Questions[i]
		}
	}

	recs, err := e.answers.ListBySession(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	for _, r := range recs {
		res.Answers = append(res.Answers, ReviewItem{AnswerRecord: *r, Question: byID[r.QuestionID]})
	}
	return res, nil
}

// Available lists the published tests together with the student's session
// for each, if any.
func (e *Engine) Available(ctx context.Context, studentID string) ([]AvailableTest, error) {
	tests, err := e.tests.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	sessions, err := e.sessions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	byTest := make(map[int64]*Session, len(sessions))
	for _, s := range sessions {
		byTest[s.TestID] = s
	}

	out := make([]AvailableTest, 0, len(tests))
	for _, t := range tests {
		out = append(out, AvailableTest{Test: t, Session: byTest[t.ID]})
	}
	return out, nil
}

func (e *Engine) expired(test *Test, s *Session, now time.Time) bool {
	return test.TimeLimitSecs > 0 && now.Sub(s.StartedAt) > test.TimeLimit()
}

// finalize moves s into a terminal status, grades it and persists it. prev
// holds the counters s was read with.
func (e *Engine) finalize(ctx context.Context, s *Session, prev Counts, test *Test, status Status, now time.Time) error {
	out := grading.Grade(s.CorrectCount, s.TotalQuestions, grading.Status(status), test.Thresholds)
	s.Status = status
	s.FinishedAt = &now
	s.ScorePercent = &out.ScorePercent
	s.Grade = &out.Grade

	if err := e.update(ctx, s, prev); err != nil {
		return err
	}

	logging.WithContext(ctx).WithFields(logrus.Fields{
		"session_id": s.ID,
		"status":     status,
		"correct":    s.CorrectCount,
		"errors":     s.ErrorCount,
		"score":      out.ScorePercent,
		"grade":      out.Grade,
	}).Info("session finished")
	return nil
}

// update persists s. A lost compare-and-swap is returned as ErrConflict
// unwrapped so callers can re-read and retry.
func (e *Engine) update(ctx context.Context, s *Session, prev Counts) error {
	if err := e.sessions.Update(ctx, s, prev); err != nil {
		if errors.Is(err, ErrConflict) {
			return ErrConflict
		}
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}
