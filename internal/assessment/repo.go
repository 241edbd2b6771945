package assessment

import "context"

// TestRepo provides read access to tests and their questions.
type TestRepo interface {
	// GetTest returns the test with its ordered questions, or
	// ErrTestNotFound.
	GetTest(ctx context.Context, id int64) (*Test, error)

	// GetQuestion returns a single question, or ErrQuestionNotFound.
	GetQuestion(ctx context.Context, id int64) (*Question, error)

	// ListPublished returns all published tests without their questions.
	ListPublished(ctx context.Context) ([]*Test, error)
}

// SessionRepo persists sessions.
type SessionRepo interface {
	// Create inserts a new session. At most one session may exist per
	// (test, student); a duplicate returns ErrConflict.
	Create(ctx context.Context, s *Session) error

	// Get returns the session, or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// FindByStudent returns the session of a student for a test, or nil.
	FindByStudent(ctx context.Context, testID int64, studentID string) (*Session, error)

	// ListByStudent returns all sessions of a student.
	ListByStudent(ctx context.Context, studentID string) ([]*Session, error)

	// Update writes counters, status and score of s, but only while the
	// stored session is still in progress and its counters still equal
	// prev. Otherwise it returns ErrConflict.
	Update(ctx context.Context, s *Session, prev Counts) error

	// ListTerminal returns the finished sessions of a test.
	ListTerminal(ctx context.Context, testID int64) ([]*Session, error)
}

// AnswerRepo is the append-only answer log.
type AnswerRepo interface {
	// Append stores rec and assigns its ID.
	Append(ctx context.Context, rec *AnswerRecord) error

	// ListBySession returns the answers of a session in submission order.
	ListBySession(ctx context.Context, sessionID string) ([]*AnswerRecord, error)

	// ListByTest returns all answers given in sessions of a test.
	ListByTest(ctx context.Context, testID int64) ([]*AnswerRecord, error)
}

// Repos bundles the storage ports used by the Engine.
type Repos struct {
	Tests    TestRepo
	Sessions SessionRepo
	Answers  AnswerRepo
}
