package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"

	"github.com/abhisek/testdrill/internal/assessment"
)

var sessionColumns = []string{
	"id", "test_id", "student_id", "status", "started_at", "finished_at",
	"total_questions", "correct_count", "error_count", "score_percent", "grade",
}

// sessionRepo implements assessment.SessionRepo on SQLite.
type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Create(ctx context.Context, s *assessment.Session) error {
	query, args := builder.Insert(sessionsTable).
		Columns(sessionColumns...).
		Values(s.ID, s.TestID, s.StudentID, string(s.Status), s.StartedAt.UTC(), nullTime(s.FinishedAt),
			s.TotalQuestions, s.CorrectCount, s.ErrorCount, nullFloat(s.ScorePercent), nullInt(s.Grade)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if sqlgraph.IsUniqueConstraintError(err) {
			return assessment.ErrConflict
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*assessment.Session, error) {
	query, args := builder.Select(sessionColumns...).
		From(builder.Table(sessionsTable)).
		Where(entsql.EQ("id", id)).
		Query()
	s, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, assessment.ErrSessionNotFound
		}
		return nil, fmt.Errorf("query session %s: %w", id, err)
	}
	return s, nil
}

func (r *sessionRepo) FindByStudent(ctx context.Context, testID int64, studentID string) (*assessment.Session, error) {
	query, args := builder.Select(sessionColumns...).
		From(builder.Table(sessionsTable)).
		Where(entsql.And(entsql.EQ("test_id", testID), entsql.EQ("student_id", studentID))).
		OrderBy(entsql.Desc("started_at")).
		Limit(1).
		Query()
	s, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	return s, nil
}

func (r *sessionRepo) ListByStudent(ctx context.Context, studentID string) ([]*assessment.Session, error) {
	return r.list(ctx, entsql.EQ("student_id", studentID), entsql.Desc("started_at"))
}

func (r *sessionRepo) ListTerminal(ctx context.Context, testID int64) ([]*assessment.Session, error) {
	return r.list(ctx,
		entsql.And(entsql.EQ("test_id", testID), entsql.NEQ("status", string(assessment.StatusInProgress))),
		entsql.Desc("finished_at"))
}

func (r *sessionRepo) list(ctx context.Context, where *entsql.Predicate, order string) ([]*assessment.Session, error) {
	query, args := builder.Select(sessionColumns...).
		From(builder.Table(sessionsTable)).
		Where(where).
		OrderBy(order).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []*assessment.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update writes the mutable fields of s, guarded on the stored status
// still being in progress and the counters still matching prev.
func (r *sessionRepo) Update(ctx context.Context, s *assessment.Session, prev assessment.Counts) error {
	query, args := builder.Update(sessionsTable).
		Set("status", string(s.Status)).
		Set("finished_at", nullTime(s.FinishedAt)).
		Set("correct_count", s.CorrectCount).
		Set("error_count", s.ErrorCount).
		Set("score_percent", nullFloat(s.ScorePercent)).
		Set("grade", nullInt(s.Grade)).
		Where(entsql.And(
			entsql.EQ("id", s.ID),
			entsql.EQ("status", string(assessment.StatusInProgress)),
			entsql.EQ("correct_count", prev.Correct),
			entsql.EQ("error_count", prev.Errors),
		)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update session %s: %w", s.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session %s: %w", s.ID, err)
	}
	if n == 0 {
		return assessment.ErrConflict
	}
	return nil
}

func scanSession(row scanner) (*assessment.Session, error) {
	var (
		s        assessment.Session
		status   string
		finished sql.NullTime
		score    sql.NullFloat64
		grade    sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.TestID, &s.StudentID, &status, &s.StartedAt, &finished,
		&s.TotalQuestions, &s.CorrectCount, &s.ErrorCount, &score, &grade)
	if err != nil {
		return nil, err
	}
	s.Status = assessment.Status(status)
	if finished.Valid {
		t := finished.Time
		s.FinishedAt = &t
	}
	if score.Valid {
		v := score.Float64
		s.ScorePercent = &v
	}
	if grade.Valid {
		v := int(grade.Int64)
		s.Grade = &v
	}
	return &s, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
