package assessment_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/testdrill/internal/answer"
	"github.com/abhisek/testdrill/internal/assessment"
	"github.com/abhisek/testdrill/internal/grading"
	"github.com/abhisek/testdrill/internal/store"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	engine *assessment.Engine
	clock  *fakeClock
	test   *assessment.Test
}

func quadraticsTest(timeLimit, maxErrors int) *assessment.Test {
	return &assessment.Test{
		Title:         "Quadratics",
		TimeLimitSecs: timeLimit,
		MaxErrors:     maxErrors,
		Thresholds:    grading.DefaultThresholds(),
		Published:     true,
		Questions: []assessment.Question{
			{Kind: assessment.KindEquation, A: 1, B: -5, C: 6, SortOrder: 1, Points: 1},
			{Kind: assessment.KindEquation, A: 1, B: 0, C: 1, SortOrder: 2, Points: 1},
			{Kind: assessment.KindTheory, Text: "What is b²-4ac called?", AnswerMask: "discriminant, D", Strategy: answer.StrategyExact, SortOrder: 3, Points: 1},
			{Kind: assessment.KindOpen, Text: "Vieta for x²+px+q", AnswerMask: "sum, product", Strategy: answer.StrategyKeywords, SortOrder: 4, Points: 1},
		},
	}
}

func newFixture(t *testing.T, b store.Backend, test *assessment.Test) *fixture {
	t.Helper()
	require.NoError(t, b.Catalog().SaveTest(context.Background(), test))
	clock := &fakeClock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
	return &fixture{
		engine: assessment.NewEngine(b.Repos(), assessment.WithClock(clock.Now)),
		clock:  clock,
		test:   test,
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, b store.Backend)) {
	t.Run("memory", func(t *testing.T) { fn(t, store.NewMemory()) })
	t.Run("sqlite", func(t *testing.T) {
		s, err := store.Open(filepath.Join(t.TempDir(), "engine.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

func (f *fixture) question(i int) int64 {
	return f.test.Questions[i].ID
}

func TestStartCreatesAndResumes(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b store.Backend) {
		f := newFixture(t, b, quadraticsTest(0, 0))
		ctx := context.Background()

		s, err := f.engine.Start(ctx, f.test.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, assessment.StatusInProgress, s.Status)
		assert.Equal(t, 4, s.TotalQuestions)
		assert.Len(t, s.ID, 36)
		assert.True(t, s.StartedAt.Equal(f.clock.Now()))

		_, err = f.engine.SubmitAnswer(ctx, s.ID, f.question(0), "2, 3")
		require.NoError(t, err)

		resumed, err := f.engine.Start(ctx, f.test.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, s.ID, resumed.ID)
		assert.Equal(t, 1, resumed.CorrectCount)

		other, err := f.engine.Start(ctx, f.test.ID, "bob")
		require.NoError(t, err)
		assert.NotEqual(t, s.ID, other.ID)
	})
}

func TestStartAfterFinishIsAlreadyAttempted(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b store.Backend) {
		f := newFixture(t, b, quadraticsTest(0, 0))
		ctx := context.Background()

		s, err := f.engine.Start(ctx, f.test.ID, "alice")
		require.NoError(t, err)
		_, err = f.engine.Finish(ctx, s.ID)
		require.NoError(t, err)

		_, err = f.engine.Start(ctx, f.test.ID, "alice")
		prior, ok := assessment.IsAlreadyAttempted(err)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, s.ID, prior.ID)
		assert.Equal(t, assessment.StatusCompleted, prior.Status)
	})
}

func TestStartUnknownOrUnpublishedTest(t *testing.T) {
	b := store.NewMemory()
	draft := quadraticsTest(0, 0)
	draft.Published = false
	f := newFixture(t, b, draft)

	_, err := f.engine.Start(context.Background(), 9999, "alice")
	assert.ErrorIs(t, err, assessment.ErrTestNotFound)

	_, err = f.engine.Start(context.Background(), draft.ID, "alice")
	assert.ErrorIs(t, err, assessment.ErrTestNotFound)
}

func TestSubmitAnswerVerifiesAndCounts(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b store.Backend) {
		f := newFixture(t, b, quadraticsTest(600, 0))
		ctx := context.Background()
		s, err := f.engine.Start(ctx, f.test.ID, "alice")
		require.NoError(t, err)

		tests := []struct {
			question int
			raw      string
			correct  bool
			expected string
		}{
			{0, "x1 = 3; x2 = 2", true, "2, 3"},
			{1, "нет корней", true, "no roots"},
			{2, "Discriminant", true, "discriminant"},
			{3, "only the sum", false, "answer must contain: sum, product"},
		}
		for _, tt := range tests {
			sub, err := f.engine.SubmitAnswer(ctx, s.ID, f.question(tt.question), tt.raw)
			require.NoError(t, err, tt.raw)
			assert.Equal(t, tt.correct, sub.Correct, tt.raw)
			assert.Equal(t, tt.expected, sub.Expected, tt.raw)
			assert.True(t, sub.Scored)
			assert.Empty(t, sub.Terminal)
		}

		cur, err := f.engine.Session(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, cur.CorrectCount)
		assert.Equal(t, 1, cur.ErrorCount)
		assert.Equal(t, assessment.StatusInProgress, cur.Status)
		assert.Nil(t, cur.Grade)
	})
}

func TestSubmitAnswerRejectsForeignQuestion(t *testing.T) {
	b := store.NewMemory()
	f := newFixture(t, b, quadraticsTest(0, 0))
	other := quadraticsTest(0, 0)
	require.NoError(t, b.Catalog().SaveTest(context.Background(), other))
	ctx := context.Background()

	s, err := f.engine.Start(ctx, f.test.ID, "alice")
	require.NoError(t, err)

	_, err = f.engine.SubmitAnswer(ctx, s.ID, other.Questions[0].ID, "2, 3")
	assert.ErrorIs(t, err, assessment.ErrQuestionNotFound)
	_, err = f.engine.SubmitAnswer(ctx, s.ID, 9999, "2, 3")
	assert.ErrorIs(t, err, assessment.ErrQuestionNotFound)
	_, err = f.engine.SubmitAnswer(ctx, "missing", f.question(0), "2, 3")
	assert.ErrorIs(t, err, assessment.ErrSessionNotFound)

	res, err := f.engine.Result(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Answers)
}

func TestErrorLimitEndsSession(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b store.Backend) {
		f := newFixture(t, b, quadraticsTest(0, 2))
		ctx := context.Background()
		s, err := f.engine.Start(ctx, f.test.ID, "alice")
		require.NoError(t, err)

		sub, err := f.engine.SubmitAnswer(ctx, s.ID, f.question(0), "2, 3")
		require.NoError(t, err)
		assert.True(t, sub.Correct)

		sub, err = f.engine.SubmitAnswer(ctx, s.ID, f.question(1), "1")
		require.NoError(t, err)
		assert.Empty(t, sub.Terminal)

		sub, err = f.engine.SubmitAnswer(ctx, s.ID, f.question(2), "b")
		require.NoError(t, err)
		assert.False(t, sub.Correct)
		assert.Equal(t, "discriminant", sub.Expected)
		assert.Equal(t, assessment.StatusFailedErrors, sub.Terminal)
		assert.Equal(t, assessment.StatusFailedErrors, sub.Session.Status)
		require.NotNil(t, sub.Session.Grade)
		assert.Equal(t, grading.GradeFail, *sub.Session.Grade)
		assert.Equal(t, 25.0, *sub.Session.ScorePercent)
		require.NotNil(t, sub.Session.FinishedAt)

		_, err = f.engine.SubmitAnswer(ctx, s.ID, f.question(3), "sum product")
		assert.ErrorIs(t, err, assessment.ErrSessionTerminal)
	})
}

func TestTimeLimit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b store.Backend) {
		f := newFixture(t, b, quadraticsTest(60, 0))
		ctx := context.Background()
		s, err := f.engine.Start(ctx, f.test.ID, "alice")
		require.NoError(t, err)

		f.clock.Advance(60 * time.Second)
		sub, err := f.engine.SubmitAnswer(ctx, s.ID, f.question(0), "2, 3")
		require.NoError(t, err)
		assert.True(t, sub.Scored, "answer exactly at the limit still counts")

		f.clock.Advance(time.Second)
		sub, err = f.engine.SubmitAnswer(ctx, s.ID, f.question(1), "no roots")
		require.NoError(t, err)
		assert.False(t, sub.Scored)
		assert.False(t, sub.Correct)
		assert.Equal(t, assessment.StatusFailedTime, sub.Terminal)
		assert.Equal(t, 1, sub.Session.CorrectCount)
		assert.Equal(t, grading.GradeFail, *sub.Session.Grade)
		assert.Equal(t, 25.0, *sub.Session.ScorePercent)

		res, err := f.engine.Result(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, res.Answers, 1, "late answer is not recorded")

		_, err = f.engine.SubmitAnswer(ctx, s.ID, f.question(1), "no roots")
		assert.ErrorIs(t, err, assessment.ErrSessionTerminal)
	})
}

func TestFinishGradesOnceAndIsIdempotent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b store.Backend) {
		f := newFixture(t, b, quadraticsTest(0, 0))
		ctx := context.Background()
		s, err := f.engine.Start(ctx, f.test.ID, "alice")
		require.NoError(t, err)

		for i, raw := range []string{"2, 3", "no roots", "D"} {
			_, err := f.engine.SubmitAnswer(ctx, s.ID, f.question(i), raw)
			require.NoError(t, err)
		}

		f.clock.Advance(time.Minute)
		done, err := f.engine.Finish(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, assessment.StatusCompleted, done.Status)
		assert.Equal(t, 75.0, *done.ScorePercent)
		assert.Equal(t, grading.GradeGood, *done.Grade)
		finishedAt := *done.FinishedAt

		f.clock.Advance(time.Hour)
		again, err := f.engine.Finish(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, assessment.StatusCompleted, again.Status)
		assert.True(t, again.FinishedAt.Equal(finishedAt))
		assert.Equal(t, 75.0, *again.ScorePercent)

		_, err = f.engine.Finish(ctx, "missing")
		assert.ErrorIs(t, err, assessment.ErrSessionNotFound)
	})
}

func TestFinishWithoutAnswers(t *testing.T) {
	f := newFixture(t, store.NewMemory(), quadraticsTest(0, 0))
	ctx := context.Background()
	s, err := f.engine.Start(ctx, f.test.ID, "alice")
	require.NoError(t, err)

	done, err := f.engine.Finish(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, *done.ScorePercent)
	assert.Equal(t, grading.GradeFail, *done.Grade)
}

func TestConcurrentWrongAnswersStopAtErrorLimit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b store.Backend) {
		f := newFixture(t, b, quadraticsTest(0, 3))
		ctx := context.Background()
		s, err := f.engine.Start(ctx, f.test.ID, "alice")
		require.NoError(t, err)

		const n = 12
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			terminals int
			rejected  int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sub, err := f.engine.SubmitAnswer(ctx, s.ID, f.question(0), "42")
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err != nil:
					assert.ErrorIs(t, err, assessment.ErrSessionTerminal)
					rejected++
				case sub.Terminal != "":
					terminals++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, terminals, "exactly one submission ends the session")
		assert.Equal(t, n-3, rejected)

		cur, err := f.engine.Session(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, assessment.StatusFailedErrors, cur.Status)
		assert.Equal(t, 3, cur.ErrorCount)

		res, err := f.engine.Result(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, res.Answers, 3)
	})
}

func TestTwoEnginesShareSessionCounters(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b store.Backend) {
		f := newFixture(t, b, quadraticsTest(0, 0))
		other := assessment.NewEngine(b.Repos(), assessment.WithClock(f.clock.Now))
		ctx := context.Background()
		s, err := f.engine.Start(ctx, f.test.ID, "alice")
		require.NoError(t, err)

		const perEngine = 5
		var wg sync.WaitGroup
		for _, e := range []*assessment.Engine{f.engine, other} {
			for i := 0; i < perEngine; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := e.SubmitAnswer(ctx, s.ID, f.question(0), "2, 3")
					assert.NoError(t, err)
				}()
			}
		}
		wg.Wait()

		cur, err := f.engine.Session(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, assessment.StatusInProgress, cur.Status)
		assert.Equal(t, 2*perEngine, cur.CorrectCount, "no increment is lost")

		res, err := f.engine.Result(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, res.Answers, 2*perEngine)
	})
}

func TestTwoEnginesStopAtErrorLimit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b store.Backend) {
		f := newFixture(t, b, quadraticsTest(0, 3))
		other := assessment.NewEngine(b.Repos(), assessment.WithClock(f.clock.Now))
		ctx := context.Background()
		s, err := f.engine.Start(ctx, f.test.ID, "alice")
		require.NoError(t, err)

		const perEngine = 4
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			accepted  int
			terminals int
		)
		for _, e := range []*assessment.Engine{f.engine, other} {
			for i := 0; i < perEngine; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					sub, err := e.SubmitAnswer(ctx, s.ID, f.question(0), "42")
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						assert.ErrorIs(t, err, assessment.ErrSessionTerminal)
						return
					}
					accepted++
					if sub.Terminal != "" {
						terminals++
					}
				}()
			}
		}
		wg.Wait()

		assert.Equal(t, 3, accepted)
		assert.Equal(t, 1, terminals, "exactly one submission ends the session")

		cur, err := f.engine.Session(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, assessment.StatusFailedErrors, cur.Status)
		assert.Equal(t, 3, cur.ErrorCount)

		res, err := f.engine.Result(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, res.Answers, cur.ErrorCount, "one record per counted answer")
	})
}

func TestConcurrentStartCreatesOneSession(t *testing.T) {
	f := newFixture(t, store.NewMemory(), quadraticsTest(0, 0))
	ctx := context.Background()

	ids := make(chan string, 8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := f.engine.Start(ctx, f.test.ID, "alice")
			if assert.NoError(t, err) {
				ids <- s.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1)
}

func TestResultIncludesQuestions(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b store.Backend) {
		f := newFixture(t, b, quadraticsTest(0, 0))
		ctx := context.Background()
		s, err := f.engine.Start(ctx, f.test.ID, "alice")
		require.NoError(t, err)

		_, err = f.engine.SubmitAnswer(ctx, s.ID, f.question(2), "root")
		require.NoError(t, err)
		_, err = f.engine.SubmitAnswer(ctx, s.ID, f.question(0), "3,2")
		require.NoError(t, err)

		res, err := f.engine.Result(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, "Quadratics", res.TestTitle)
		require.Len(t, res.Answers, 2)
		assert.Equal(t, "root", res.Answers[0].Answer)
		assert.False(t, res.Answers[0].Correct)
		require.NotNil(t, res.Answers[0].Question)
		assert.Equal(t, assessment.KindTheory, res.Answers[0].Question.Kind)
		assert.True(t, res.Answers[1].Correct)
		assert.Equal(t, assessment.StatusInProgress, res.Session.Status, "result does not finish the session")
	})
}

func TestAvailable(t *testing.T) {
	b := store.NewMemory()
	f := newFixture(t, b, quadraticsTest(0, 0))
	draft := quadraticsTest(0, 0)
	draft.Published = false
	require.NoError(t, b.Catalog().SaveTest(context.Background(), draft))
	ctx := context.Background()

	list, err := f.engine.Available(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Session)

	s, err := f.engine.Start(ctx, f.test.ID, "alice")
	require.NoError(t, err)

	list, err = f.engine.Available(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Session)
	assert.Equal(t, s.ID, list[0].Session.ID)
}

func TestTestHidesAnswerMasks(t *testing.T) {
	f := newFixture(t, store.NewMemory(), quadraticsTest(0, 0))

	view, err := f.engine.Test(context.Background(), f.test.ID)
	require.NoError(t, err)
	for _, q := range view.Questions {
		assert.Empty(t, q.AnswerMask)
	}
	assert.Equal(t, -5, view.Questions[0].B)
}

func TestTestStats(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b store.Backend) {
		f := newFixture(t, b, quadraticsTest(0, 0))
		ctx := context.Background()

		run := func(student string, answers map[int]string) {
			s, err := f.engine.Start(ctx, f.test.ID, student)
			require.NoError(t, err)
			for i := 0; i < len(f.test.Questions); i++ {
				raw, ok := answers[i]
				if !ok {
					continue
				}
				_, err := f.engine.SubmitAnswer(ctx, s.ID, f.question(i), raw)
				require.NoError(t, err)
			}
			_, err = f.engine.Finish(ctx, s.ID)
			require.NoError(t, err)
		}
		run("alice", map[int]string{0: "2, 3", 1: "no roots", 2: "D", 3: "sum and product"})
		run("bob", map[int]string{0: "2, 3", 1: "1", 2: "x"})

		// In progress sessions are left out of the overview.
		_, err := f.engine.Start(ctx, f.test.ID, "carol")
		require.NoError(t, err)

		st, err := f.engine.TestStats(ctx, f.test.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, st.Overview.Total)
		assert.Equal(t, 2, st.Overview.Completed)
		require.NotNil(t, st.Overview.AvgScore)
		assert.Equal(t, 62.5, *st.Overview.AvgScore)
		assert.Equal(t, 3.5, *st.Overview.AvgGrade)
		assert.Equal(t, 1, st.Overview.Grades[grading.GradeExcellent])
		assert.Equal(t, 1, st.Overview.Grades[grading.GradeFail])

		require.Len(t, st.Hardest, 4)
		assert.Equal(t, 50.0, *st.Hardest[0].ErrorRate)
		assert.Equal(t, 0.0, *st.Hardest[2].ErrorRate)
		assert.Equal(t, f.question(0), st.Hardest[2].Question.ID)
		assert.Equal(t, f.question(3), st.Hardest[3].Question.ID)
		assert.Len(t, st.Sessions, 2)

		_, err = f.engine.TestStats(ctx, 9999)
		assert.ErrorIs(t, err, assessment.ErrTestNotFound)
	})
}
