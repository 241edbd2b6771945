package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/testdrill/internal/assessment"
)

var statsCmd = &cobra.Command{
	Use:   "stats TEST_ID",
	Short: "Show how students did on a test",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTestID(args[0])
		if err != nil {
			return err
		}
		engine, backend, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		st, err := engine.TestStats(cmd.Context(), id)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), st)
		}
		return printStats(cmd.OutOrStdout(), st)
	},
}

var resultCmd = &cobra.Command{
	Use:   "result SESSION_ID",
	Short: "Show a session with its answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, backend, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		res, err := engine.Result(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), res)
		}
		return printResult(cmd.OutOrStdout(), res)
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print JSON")
	resultCmd.Flags().Bool("json", false, "Print JSON")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStats(w io.Writer, st *assessment.TestStats) error {
	o := st.Overview
	fmt.Fprintf(w, "%s (test %d)\n\n", st.Title, st.TestID)
	fmt.Fprintf(w, "Finished sessions: %d\n", o.Total)
	fmt.Fprintf(w, "  completed:       %d\n", o.Completed)
	fmt.Fprintf(w, "  time exceeded:   %d\n", o.FailedTime)
	fmt.Fprintf(w, "  too many errors: %d\n", o.FailedErrors)
	fmt.Fprintf(w, "Average score:     %s\n", optional(o.AvgScore, "%.1f%%"))
	fmt.Fprintf(w, "Average grade:     %s\n", optional(o.AvgGrade, "%.1f"))

	grades := make([]int, 0, len(o.Grades))
	for g := range o.Grades {
		grades = append(grades, g)
	}
	slices.Sort(grades)
	for _, g := range slices.Backward(grades) {
		fmt.Fprintf(w, "  grade %d: %d\n", g, o.Grades[g])
	}

	if len(st.Hardest) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nHardest questions:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUESTION\tANSWERS\tWRONG\tERROR RATE")
	for _, q := range st.Hardest {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", q.Question.Prompt(), q.Answers, q.Wrong, optional(q.ErrorRate, "%.1f%%"))
	}
	return tw.Flush()
}

func printResult(w io.Writer, res *assessment.Result) error {
	s := res.Session
	fmt.Fprintf(w, "%s: %s, student %s\n", res.TestTitle, s.Status.Label(), s.StudentID)
	fmt.Fprintf(w, "Correct %d of %d, %d errors\n", s.CorrectCount, s.TotalQuestions, s.ErrorCount)
	if s.ScorePercent != nil && s.Grade != nil {
		fmt.Fprintf(w, "Score %.1f%%, grade %d\n", *s.ScorePercent, *s.Grade)
	}

	if len(res.Answers) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUESTION\tANSWER\tOK\tEXPECTED")
	for _, a := range res.Answers {
		prompt := fmt.Sprintf("#%d", a.QuestionID)
		if a.Question != nil {
			prompt = a.Question.Prompt()
		}
		ok := "no"
		if a.Correct {
			ok = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", prompt, a.Answer, ok, a.Expected)
	}
	return tw.Flush()
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
