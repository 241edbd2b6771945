package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/testdrill/internal/assessment"
)

// Memory is an in-process backend. State is lost on Close.
type Memory struct {
	mu sync.Mutex

	tests     map[int64]*assessment.Test
	questions map[int64]*assessment.Question
	sessions  map[string]*assessment.Session
	answers   []*assessment.AnswerRecord

	nextTestID     int64
	nextQuestionID int64
	nextAnswerID   int64
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		tests:     make(map[int64]*assessment.Test),
		questions: make(map[int64]*assessment.Question),
		sessions:  make(map[string]*assessment.Session),
	}
}

// Catalog returns the in-memory test catalog.
func (m *Memory) Catalog() CatalogRepo {
	return memTests{m}
}

// Repos returns the in-memory repositories.
func (m *Memory) Repos() assessment.Repos {
	return assessment.Repos{
		Tests:    memTests{m},
		Sessions: memSessions{m},
		Answers:  memAnswers{m},
	}
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

type memTests struct{ m *Memory }

func (r memTests) GetTest(_ context.Context, id int64) (*assessment.Test, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	t, ok := r.m.tests[id]
	if !ok {
		return nil, assessment.ErrTestNotFound
	}
	return copyTest(t, true), nil
}

func (r memTests) GetQuestion(_ context.Context, id int64) (*assessment.Question, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	q, ok := r.m.questions[id]
	if !ok {
		return nil, assessment.ErrQuestionNotFound
	}
	c := *q
	return &c, nil
}

func (r memTests) ListPublished(_ context.Context) ([]*assessment.Test, error) {
	return r.list(func(t *assessment.Test) bool { return t.Published }), nil
}

func (r memTests) ListTests(_ context.Context) ([]*assessment.Test, error) {
	return r.list(func(*assessment.Test) bool { return true }), nil
}

func (r memTests) list(keep func(*assessment.Test) bool) []*assessment.Test {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var out []*assessment.Test
	for _, t := range r.m.tests {
		if keep(t) {
			out = append(out, copyTest(t, false))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r memTests) SaveTest(_ context.Context, t *assessment.Test) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	r.m.nextTestID++
	t.ID = r.m.nextTestID
	for i := range t.Questions {
		r.m.nextQuestionID++
		t.Questions[i].ID = r.m.nextQuestionID
		t.Questions[i].TestID = t.ID
	}

	stored := copyTest(t, true)
	sort.SliceStable(stored.Questions, func(i, j int) bool {
		return stored.Questions[i].SortOrder < stored.Questions[j].SortOrder
	})
	r.m.tests[t.ID] = stored
	for i := range stored.Questions {
		q := stored.Questions[i]
		r.m.questions[q.ID] = &q
	}
	return nil
}

func (r memTests) SetPublished(_ context.Context, id int64, published bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	t, ok := r.m.tests[id]
	if !ok {
		return assessment.ErrTestNotFound
	}
	t.Published = published
	return nil
}

func copyTest(t *assessment.Test, withQuestions bool) *assessment.Test {
	c := *t
	c.Questions = nil
	if withQuestions {
		c.Questions = append([]assessment.Question{}, t.Questions...)
	}
	return &c
}

type memSessions struct{ m *Memory }

func (r memSessions) Create(_ context.Context, s *assessment.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, existing := range r.m.sessions {
		if existing.TestID == s.TestID && existing.StudentID == s.StudentID {
			return assessment.ErrConflict
		}
	}
	if _, ok := r.m.sessions[s.ID]; ok {
		return assessment.ErrConflict
	}
	r.m.sessions[s.ID] = s.Clone()
	return nil
}

func (r memSessions) Get(_ context.Context, id string) (*assessment.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	s, ok := r.m.sessions[id]
	if !ok {
		return nil, assessment.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (r memSessions) FindByStudent(_ context.Context, testID int64, studentID string) (*assessment.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, s := range r.m.sessions {
		if s.TestID == testID && s.StudentID == studentID {
			return s.Clone(), nil
		}
	}
	return nil, nil
}

func (r memSessions) ListByStudent(_ context.Context, studentID string) ([]*assessment.Session, error) {
	out := r.list(func(s *assessment.Session) bool { return s.StudentID == studentID })
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (r memSessions) ListTerminal(_ context.Context, testID int64) ([]*assessment.Session, error) {
	out := r.list(func(s *assessment.Session) bool { return s.TestID == testID && s.Status.Terminal() })
	sort.Slice(out, func(i, j int) bool { return out[i].FinishedAt.After(*out[j].FinishedAt) })
	return out, nil
}

func (r memSessions) list(keep func(*assessment.Session) bool) []*assessment.Session {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var out []*assessment.Session
	for _, s := range r.m.sessions {
		if keep(s) {
			out = append(out, s.Clone())
		}
	}
	return out
}

func (r memSessions) Update(_ context.Context, s *assessment.Session, prev assessment.Counts) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	cur, ok := r.m.sessions[s.ID]
	if !ok || cur.Status != assessment.StatusInProgress || cur.Counts() != prev {
		return assessment.ErrConflict
	}
	next := s.Clone()
	next.TestID = cur.TestID
	next.StudentID = cur.StudentID
	next.StartedAt = cur.StartedAt
	next.TotalQuestions = cur.TotalQuestions
	r.m.sessions[s.ID] = next
	return nil
}

type memAnswers struct{ m *Memory }

func (r memAnswers) Append(_ context.Context, rec *assessment.AnswerRecord) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	r.m.nextAnswerID++
	rec.ID = r.m.nextAnswerID
	c := *rec
	r.m.answers = append(r.m.answers, &c)
	return nil
}

func (r memAnswers) ListBySession(_ context.Context, sessionID string) ([]*assessment.AnswerRecord, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var out []*assessment.AnswerRecord
	for _, a := range r.m.answers {
		if a.SessionID == sessionID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memAnswers) ListByTest(_ context.Context, testID int64) ([]*assessment.AnswerRecord, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var out []*assessment.AnswerRecord
	for _, a := range r.m.answers {
		if s, ok := r.m.sessions[a.SessionID]; ok && s.TestID == testID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}
