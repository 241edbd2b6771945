package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/testdrill/internal/answer"
	"github.com/abhisek/testdrill/internal/assessment"
)

// builder renders SQLite statements.
var builder = entsql.Dialect(dialect.SQLite)

var testColumns = []string{
	"id", "title", "description", "time_limit", "max_errors",
	"grade_excellent", "grade_good", "grade_satisf", "is_published", "created_at",
}

var questionColumns = []string{
	"id", "test_id", "question_type", "eq_a", "eq_b", "eq_c",
	"question_text", "answer_mask", "answer_type", "hint", "sort_order", "points",
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// testRepo implements CatalogRepo on SQLite.
type testRepo struct {
	db *sql.DB
}

func (r *testRepo) GetTest(ctx context.Context, id int64) (*assessment.Test, error) {
	query, args := builder.Select(testColumns...).
		From(builder.Table(testsTable)).
		Where(entsql.EQ("id", id)).
		Query()
	t, err := scanTest(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, assessment.ErrTestNotFound
		}
		return nil, fmt.Errorf("query test %d: %w", id, err)
	}

	t.Questions, err = r.questions(ctx, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *testRepo) questions(ctx context.Context, testID int64) ([]assessment.Question, error) {
	query, args := builder.Select(questionColumns...).
		From(builder.Table(questionsTable)).
		Where(entsql.EQ("test_id", testID)).
		OrderBy("sort_order", "id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	qs := []assessment.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		qs = append(qs, *q)
	}
	return qs, rows.Err()
}

func (r *testRepo) GetQuestion(ctx context.Context, id int64) (*assessment.Question, error) {
	query, args := builder.Select(questionColumns...).
		From(builder.Table(questionsTable)).
		Where(entsql.EQ("id", id)).
		Query()
	q, err := scanQuestion(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, assessment.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("query question %d: %w", id, err)
	}
	return q, nil
}

func (r *testRepo) ListPublished(ctx context.Context) ([]*assessment.Test, error) {
	return r.list(ctx, entsql.EQ("is_published", true))
}

func (r *testRepo) ListTests(ctx context.Context) ([]*assessment.Test, error) {
	return r.list(ctx, nil)
}

func (r *testRepo) list(ctx context.Context, where *entsql.Predicate) ([]*assessment.Test, error) {
	sel := builder.Select(testColumns...).
		From(builder.Table(testsTable)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if where != nil {
		sel = sel.Where(where)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tests: %w", err)
	}
	defer rows.Close()

	var out []*assessment.Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan test: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *testRepo) SaveTest(ctx context.Context, t *assessment.Test) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query, args := builder.Insert(testsTable).
		Columns(testColumns[1:]...).
		Values(t.Title, t.Description, t.TimeLimitSecs, t.MaxErrors,
			t.Thresholds.Excellent, t.Thresholds.Good, t.Thresholds.Satisf,
			t.Published, t.CreatedAt).
		Query()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert test: %w", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("test id: %w", err)
	}

	for i := range t.Questions {
		q := &t.Questions[i]
		q.TestID = t.ID
		if err := insertQuestion(ctx, tx, q); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertQuestion(ctx context.Context, db querier, q *assessment.Question) error {
	query, args := builder.Insert(questionsTable).
		Columns(questionColumns[1:]...).
		Values(q.TestID, string(q.Kind), q.A, q.B, q.C,
			q.Text, q.AnswerMask, string(q.Strategy), q.Hint, q.SortOrder, q.Points).
		Query()
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	if q.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("question id: %w", err)
	}
	return nil
}

func (r *testRepo) SetPublished(ctx context.Context, id int64, published bool) error {
	query, args := builder.Update(testsTable).
		Set("is_published", published).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("publish test %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assessment.ErrTestNotFound
	}
	return nil
}

func scanTest(row scanner) (*assessment.Test, error) {
	var t assessment.Test
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.TimeLimitSecs, &t.MaxErrors,
		&t.Thresholds.Excellent, &t.Thresholds.Good, &t.Thresholds.Satisf,
		&t.Published, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanQuestion(row scanner) (*assessment.Question, error) {
	var (
		q              assessment.Question
		kind, strategy string
	)
	err := row.Scan(&q.ID, &q.TestID, &kind, &q.A, &q.B, &q.C,
		&q.Text, &q.AnswerMask, &strategy, &q.Hint, &q.SortOrder, &q.Points)
	if err != nil {
		return nil, err
	}
	q.Kind = assessment.QuestionKind(kind)
	q.Strategy = answer.Strategy(strategy)
	return &q, nil
}
