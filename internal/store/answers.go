package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/testdrill/internal/assessment"
)

var answerColumns = []string{
	"id", "session_id", "question_id", "student_answer", "is_correct", "expected", "answered_at",
}

// answerRepo implements assessment.AnswerRepo on SQLite.
type answerRepo struct {
	db *sql.DB
}

func (r *answerRepo) Append(ctx context.Context, rec *assessment.AnswerRecord) error {
	query, args := builder.Insert(answersTable).
		Columns(answerColumns[1:]...).
		Values(rec.SessionID, rec.QuestionID, rec.Answer, rec.Correct, rec.Expected, rec.AnsweredAt.UTC()).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	if rec.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("answer id: %w", err)
	}
	return nil
}

func (r *answerRepo) ListBySession(ctx context.Context, sessionID string) ([]*assessment.AnswerRecord, error) {
	query, args := builder.Select(answerColumns...).
		From(builder.Table(answersTable)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("id").
		Query()
	return r.query(ctx, query, args)
}

func (r *answerRepo) ListByTest(ctx context.Context, testID int64) ([]*assessment.AnswerRecord, error) {
	a := builder.Table(answersTable)
	s := builder.Table(sessionsTable)
	cols := make([]string, len(answerColumns))
	for i, c := range answerColumns {
		cols[i] = a.C(c)
	}
	query, args := builder.Select(cols...).
		From(a).
		Join(s).On(a.C("session_id"), s.C("id")).
		Where(entsql.EQ(s.C("test_id"), testID)).
		OrderBy(a.C("id")).
		Query()
	return r.query(ctx, query, args)
}

func (r *answerRepo) query(ctx context.Context, query string, args []any) ([]*assessment.AnswerRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var out []*assessment.AnswerRecord
	for rows.Next() {
		var rec assessment.AnswerRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.QuestionID, &rec.Answer,
			&rec.Correct, &rec.Expected, &rec.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
