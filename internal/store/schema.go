package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	testsTable     = "tests"
	questionsTable = "questions"
	sessionsTable  = "sessions"
	answersTable   = "answers"
)

// Tables returns the schema of the database, in creation order.
func Tables() []*schema.Table {
	testColumns := []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "title", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "time_limit", Type: field.TypeInt, Default: 0},
		{Name: "max_errors", Type: field.TypeInt, Default: 0},
		{Name: "grade_excellent", Type: field.TypeFloat64, Default: 90},
		{Name: "grade_good", Type: field.TypeFloat64, Default: 75},
		{Name: "grade_satisf", Type: field.TypeFloat64, Default: 60},
		{Name: "is_published", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
	}
	tests := &schema.Table{
		Name:       testsTable,
		Columns:    testColumns,
		PrimaryKey: []*schema.Column{testColumns[0]},
	}

	questionColumns := []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "test_id", Type: field.TypeInt64},
		{Name: "question_type", Type: field.TypeString},
		{Name: "eq_a", Type: field.TypeInt, Default: 0},
		{Name: "eq_b", Type: field.TypeInt, Default: 0},
		{Name: "eq_c", Type: field.TypeInt, Default: 0},
		{Name: "question_text", Type: field.TypeString, Default: ""},
		{Name: "answer_mask", Type: field.TypeString, Default: ""},
		{Name: "answer_type", Type: field.TypeString, Default: ""},
		{Name: "hint", Type: field.TypeString, Default: ""},
		{Name: "sort_order", Type: field.TypeInt, Default: 0},
		{Name: "points", Type: field.TypeInt, Default: 1},
	}
	questions := &schema.Table{
		Name:       questionsTable,
		Columns:    questionColumns,
		PrimaryKey: []*schema.Column{questionColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "questions_tests_questions",
			Columns:    []*schema.Column{questionColumns[1]},
			RefColumns: []*schema.Column{testColumns[0]},
			RefTable:   tests,
			OnDelete:   schema.Cascade,
		}},
		Indexes: []*schema.Index{{
			Name:    "question_test_id_sort_order",
			Columns: []*schema.Column{questionColumns[1], questionColumns[10]},
		}},
	}

	sessionColumns := []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "test_id", Type: field.TypeInt64},
		{Name: "student_id", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "finished_at", Type: field.TypeTime, Nullable: true},
		{Name: "total_questions", Type: field.TypeInt, Default: 0},
		{Name: "correct_count", Type: field.TypeInt, Default: 0},
		{Name: "error_count", Type: field.TypeInt, Default: 0},
		{Name: "score_percent", Type: field.TypeFloat64, Nullable: true},
		{Name: "grade", Type: field.TypeInt, Nullable: true},
	}
	sessions := &schema.Table{
		Name:       sessionsTable,
		Columns:    sessionColumns,
		PrimaryKey: []*schema.Column{sessionColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "sessions_tests_sessions",
			Columns:    []*schema.Column{sessionColumns[1]},
			RefColumns: []*schema.Column{testColumns[0]},
			RefTable:   tests,
			OnDelete:   schema.Cascade,
		}},
		Indexes: []*schema.Index{
			{
				// One attempt per student and test.
				Name:    "session_test_id_student_id",
				Unique:  true,
				Columns: []*schema.Column{sessionColumns[1], sessionColumns[2]},
			},
			{
				Name:    "session_student_id",
				Columns: []*schema.Column{sessionColumns[2]},
			},
		},
	}

	answerColumns := []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "session_id", Type: field.TypeString, Size: 36},
		{Name: "question_id", Type: field.TypeInt64},
		{Name: "student_answer", Type: field.TypeString, Default: ""},
		{Name: "is_correct", Type: field.TypeBool},
		{Name: "expected", Type: field.TypeString, Default: ""},
		{Name: "answered_at", Type: field.TypeTime},
	}
	answers := &schema.Table{
		Name:       answersTable,
		Columns:    answerColumns,
		PrimaryKey: []*schema.Column{answerColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "answers_sessions_answers",
				Columns:    []*schema.Column{answerColumns[1]},
				RefColumns: []*schema.Column{sessionColumns[0]},
				RefTable:   sessions,
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "answers_questions_answers",
				Columns:    []*schema.Column{answerColumns[2]},
				RefColumns: []*schema.Column{questionColumns[0]},
				RefTable:   questions,
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{{
			Name:    "answer_session_id",
			Columns: []*schema.Column{answerColumns[1]},
		}},
	}

	return []*schema.Table{tests, questions, sessions, answers}
}
