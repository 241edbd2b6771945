package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/testdrill/internal/catalog"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a test definition from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		publish, _ := cmd.Flags().GetBool("publish")

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		t, err := catalog.Import(cmd.Context(), st.Catalog(), f, publish)
		if err != nil {
			return err
		}
		state := "draft"
		if t.Published {
			state = "published"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported test %d %q with %d questions (%s)\n", t.ID, t.Title, len(t.Questions), state)
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish TEST_ID",
	Short: "Make a test available to students",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTestID(args[0])
		if err != nil {
			return err
		}
		unpublish, _ := cmd.Flags().GetBool("unpublish")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Catalog().SetPublished(cmd.Context(), id, !unpublish); err != nil {
			return err
		}
		verb := "Published"
		if unpublish {
			verb = "Unpublished"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s test %d\n", verb, id)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tests, published or not",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		tests, err := st.Catalog().ListTests(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tTIME LIMIT\tMAX ERRORS\tPUBLISHED")
		for _, t := range tests {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", t.ID, t.Title, limit(t.TimeLimitSecs, "s"), limit(t.MaxErrors, ""), t.Published)
		}
		return w.Flush()
	},
}

func init() {
	importCmd.Flags().Bool("publish", false, "Publish the test right away")
	publishCmd.Flags().Bool("unpublish", false, "Hide the test from students instead")
}

func parseTestID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid test id %q", s)
	}
	return id, nil
}

// limit renders a 0-means-unlimited setting.
func limit(n int, unit string) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n) + unit
}
