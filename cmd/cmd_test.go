package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestImportListPublishStats(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out := run(t, "import", "--db", db, "testdata/quadratics.json")
	assert.Contains(t, out, `Imported test 1 "Quadratic equations" with 5 questions (draft)`)

	out = run(t, "list", "--db", db)
	assert.Contains(t, out, "Quadratic equations")
	assert.Contains(t, out, "900s")
	assert.Contains(t, out, "false")

	out = run(t, "publish", "--db", db, "1")
	assert.Contains(t, out, "Published test 1")

	out = run(t, "stats", "--db", db, "1")
	assert.Contains(t, out, "Finished sessions: 0")
	assert.Contains(t, out, "Average score:     -")
}

func TestParseTestID(t *testing.T) {
	id, err := parseTestID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-1", "x"} {
		_, err := parseTestID(bad)
		assert.Error(t, err, bad)
	}
}

func TestVersion(t *testing.T) {
	assert.Contains(t, run(t, "version"), "testdrill (devel)")
}
