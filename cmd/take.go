package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/testdrill/internal/app"
	"github.com/abhisek/testdrill/internal/assessment"
	"github.com/abhisek/testdrill/internal/equation"
	"github.com/abhisek/testdrill/internal/logging"
	"github.com/abhisek/testdrill/internal/screen"
	"github.com/abhisek/testdrill/internal/screens/result"
	"github.com/abhisek/testdrill/internal/screens/runner"
	"github.com/abhisek/testdrill/internal/screens/testlist"
	"github.com/abhisek/testdrill/internal/screens/trainer"
)

var takeCmd = &cobra.Command{
	Use:   "take [TEST_ID]",
	Short: "Take a test in the terminal",
	Long:  "Take a test in the terminal. Without TEST_ID the published tests are listed to choose from.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		student, _ := cmd.Flags().GetString("student")
		if student == "" {
			return fmt.Errorf("--student is required")
		}

		closeLog, err := quietLogs(cmd)
		if err != nil {
			return err
		}
		defer closeLog()

		engine, backend, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		var initial screen.Screen = testlist.New(engine, student)
		if len(args) == 1 {
			id, err := parseTestID(args[0])
			if err != nil {
				return err
			}
			initial, err = openTest(cmd.Context(), engine, id, student)
			if err != nil {
				return err
			}
		}
		return app.Run(initial)
	},
}

var trainerCmd = &cobra.Command{
	Use:   "trainer",
	Short: "Practice solving generated equations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _ := cmd.Flags().GetString("mode")
		mode, err := equation.ParseMode(m)
		if err != nil {
			return err
		}
		return app.Run(trainer.New(equation.NewGenerator(nil), mode))
	},
}

func init() {
	takeCmd.Flags().String("student", os.Getenv("USER"), "Student id the session belongs to")
	takeCmd.Flags().String("log-file", "", "Write logs to this file while the test runs (default: discard)")
	trainerCmd.Flags().String("mode", string(equation.ModeRandom), "Equation kind: full, incomplete or random")
}

// openTest starts or resumes a test. A finished attempt opens its result.
func openTest(ctx context.Context, engine *assessment.Engine, testID int64, student string) (screen.Screen, error) {
	sess, err := engine.Start(ctx, testID, student)
	if prior, ok := assessment.IsAlreadyAttempted(err); ok {
		res, err := engine.Result(ctx, prior.ID)
		if err != nil {
			return nil, err
		}
		return result.New(res), nil
	}
	if err != nil {
		return nil, err
	}
	return runner.New(engine, sess), nil
}

// quietLogs keeps log lines off the terminal while the TUI owns it.
func quietLogs(cmd *cobra.Command) (func(), error) {
	path, _ := cmd.Flags().GetString("log-file")
	if path == "" {
		logging.SetOutput(io.Discard)
		return func() { logging.SetOutput(os.Stderr) }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logging.SetOutput(f)
	return func() {
		logging.SetOutput(os.Stderr)
		f.Close()
	}, nil
}
