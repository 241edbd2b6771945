// Package catalog reads test definitions from JSON and stores them.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/testdrill/internal/answer"
	"github.com/abhisek/testdrill/internal/assessment"
	"github.com/abhisek/testdrill/internal/grading"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://testdrill/test.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Definition is the JSON form of a test.
type Definition struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	TimeLimit   int    `json:"time_limit" validate:"gte=0"`
	MaxErrors   int    `json:"max_errors" validate:"gte=0"`

	GradeExcellent float64 `json:"grade_excellent" validate:"gte=0,lte=100"`
	GradeGood      float64 `json:"grade_good" validate:"gte=0,lte=100,ltefield=GradeExcellent"`
	GradeSatisf    float64 `json:"grade_satisf" validate:"gte=0,lte=100,ltefield=GradeGood"`

	Published bool          `json:"is_published"`
	Questions []QuestionDef `json:"questions" validate:"required,min=1,dive"`
}

// QuestionDef is the JSON form of a question. Questions are ordered as
// listed.
type QuestionDef struct {
	Type string `json:"question_type" validate:"oneof=equation theory open"`

	// A must be non-zero for equations.
	A int `json:"eq_a" validate:"required_if=Type equation"`
	B int `json:"eq_b"`
	C int `json:"eq_c"`

	Text       string `json:"question_text" validate:"required_unless=Type equation"`
	AnswerMask string `json:"answer_mask" validate:"required_unless=Type equation"`
	AnswerType string `json:"answer_type" validate:"omitempty,oneof=exact keywords regex numeric"`
	Hint       string `json:"hint"`
	Points     int    `json:"points" validate:"gte=0"`
}

// ValidationError lists everything wrong with a definition.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid test definition: " + strings.Join(e.Problems, "; ")
}

// Load reads a test definition, validates it and returns the test it
// describes. The test has no IDs yet.
func Load(r io.Reader) (*assessment.Test, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("invalid JSON: %v", err)}}
	}
	sch, err := schema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}

	var def Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}
	def.applyDefaults()
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def.Test(), nil
}

// Saver stores a loaded test.
type Saver interface {
	SaveTest(ctx context.Context, t *assessment.Test) error
}

// Import loads a definition from r and saves it. publish overrides the
// definition's is_published flag when true.
func Import(ctx context.Context, s Saver, r io.Reader, publish bool) (*assessment.Test, error) {
	t, err := Load(r)
	if err != nil {
		return nil, err
	}
	if publish {
		t.Published = true
	}
	if err := s.SaveTest(ctx, t); err != nil {
		return nil, fmt.Errorf("save test: %w", err)
	}
	return t, nil
}

func (d *Definition) applyDefaults() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)

	def := grading.DefaultThresholds()
	if d.GradeExcellent == 0 {
		d.GradeExcellent = def.Excellent
	}
	if d.GradeGood == 0 {
		d.GradeGood = def.Good
	}
	if d.GradeSatisf == 0 {
		d.GradeSatisf = def.Satisf
	}

	for i := range d.Questions {
		q := &d.Questions[i]
		if q.AnswerType == "" {
			q.AnswerType = string(answer.StrategyExact)
		}
		if q.Points == 0 {
			q.Points = 1
		}
	}
}

// Validate checks the struct rules of d.
func (d *Definition) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Problems = append(ve.Problems, describe(fe))
	}
	return ve
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Definition.")
	switch fe.Tag() {
	case "required_if":
		return field + " must be non-zero for equations"
	case "required_unless":
		return field + " is required for theory and open questions"
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	case "required", "min":
		return field + " is required"
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// Test converts d into an assessment test.
func (d *Definition) Test() *assessment.Test {
	t := &assessment.Test{
		Title:         d.Title,
		Description:   d.Description,
		TimeLimitSecs: d.TimeLimit,
		MaxErrors:     d.MaxErrors,
		Thresholds: grading.Thresholds{
			Excellent: d.GradeExcellent,
			Good:      d.GradeGood,
			Satisf:    d.GradeSatisf,
		},
		Published: d.Published,
		Questions: make([]assessment.Question, len(d.Questions)),
	}
	for i, q := range d.Questions {
		t.Questions[i] = assessment.Question{
			Kind:       assessment.QuestionKind(q.Type),
			A:          q.A,
			B:          q.B,
			C:          q.C,
			Text:       strings.TrimSpace(q.Text),
			AnswerMask: q.AnswerMask,
			Strategy:   answer.Strategy(q.AnswerType),
			Hint:       q.Hint,
			SortOrder:  i,
			Points:     q.Points,
		}
	}
	return t
}

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var doc any
		if err := json.Unmarshal(schemaJSON, &doc); err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}
