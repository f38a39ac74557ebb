package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestExtract_SmallFileReturnedWhole(t *testing.T) {
	dir := t.TempDir()
	content := "fn main() { spawn_entity(); } // 50 chars or so"
	writeFile(t, dir, "small.rs", content)

	e := New(dir, 3000)
	excerpt := e.Extract("small.rs", "spawn entity")

	assert.Equal(t, content, excerpt.Content)
	assert.False(t, excerpt.Truncated)
}

func TestExtract_MissingFileIsDiagnosticNotError(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, 3000)

	excerpt := e.Extract("does/not/exist.rs", "query")

	assert.Contains(t, excerpt.Content, "File not found")
	assert.Contains(t, excerpt.Content, "exist.rs")
	assert.False(t, excerpt.Truncated)
}

func TestExtract_WindowsAroundMatches(t *testing.T) {
	dir := t.TempDir()

	// 200 lines, each ~40 chars, one match at line 100 (0-based).
	var b strings.Builder
	for i := 0; i < 200; i++ {
		if i == 100 {
			b.WriteString("fn spawn_entity() { // the needle line\n")
		} else {
			fmt.Fprintf(&b, "// filler line %03d aaaaaaaaaaaaaaaaaaaaa\n", i)
		}
	}
	writeFile(t, dir, "big.rs", b.String())

	e := New(dir, 3000)
	excerpt := e.Extract("big.rs", "spawn_entity")

	assert.True(t, excerpt.Truncated)
	assert.Contains(t, excerpt.Content, "the needle line")
	// Window is ±20 lines around the match.
	assert.Contains(t, excerpt.Content, "filler line 081")
	assert.Contains(t, excerpt.Content, "filler line 119")
	assert.NotContains(t, excerpt.Content, "filler line 000")
	assert.NotContains(t, excerpt.Content, "filler line 199")
}

func TestExtract_DisjointWindowsMergedIntoOneExcerpt(t *testing.T) {
	dir := t.TempDir()

	var b strings.Builder
	for i := 0; i < 300; i++ {
		switch i {
		case 30:
			b.WriteString("first needle occurrence here\n")
		case 250:
			b.WriteString("second needle occurrence here\n")
		default:
			fmt.Fprintf(&b, "// filler line %03d aaaaaaaaaaaaaaaaaaaaa\n", i)
		}
	}
	writeFile(t, dir, "two.rs", b.String())

	e := New(dir, 5000)
	excerpt := e.Extract("two.rs", "needle")

	// Both windows land in a single excerpt, in original order.
	first := strings.Index(excerpt.Content, "first needle")
	second := strings.Index(excerpt.Content, "second needle")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
	// The gap between windows is elided.
	assert.NotContains(t, excerpt.Content, "filler line 150")
}

func TestExtract_WindowedExcerptHardTruncated(t *testing.T) {
	dir := t.TempDir()

	// Every line matches, so the window union covers the whole file and the
	// joined excerpt must be cut at the budget.
	var b strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "needle line %03d padding padding padding padding\n", i)
	}
	writeFile(t, dir, "all.rs", b.String())

	budget := 500
	e := New(dir, budget)
	excerpt := e.Extract("all.rs", "needle")

	assert.True(t, excerpt.Truncated)
	assert.True(t, strings.HasSuffix(excerpt.Content, "... (truncated)"))
	// Budget bounds the excerpt body; the marker is appended after the cut.
	body := strings.TrimSuffix(excerpt.Content, "\n\n... (truncated)")
	assert.LessOrEqual(t, len(body), budget)
}

func TestExtract_NoMatchesTruncatesFromStart(t *testing.T) {
	dir := t.TempDir()

	content := strings.Repeat("const FILLER: u32 = 0;\n", 300)
	writeFile(t, dir, "dense.rs", content)

	budget := 1000
	e := New(dir, budget)
	excerpt := e.Extract("dense.rs", "zzz_not_present")

	assert.True(t, excerpt.Truncated)
	assert.True(t, strings.HasPrefix(excerpt.Content, "const FILLER"))
	omitted := len(content) - budget
	assert.Contains(t, excerpt.Content, fmt.Sprintf("(truncated, %d more characters)", omitted))
}

func TestExtract_TruncationPreservesRuneBoundaries(t *testing.T) {
	dir := t.TempDir()

	t.Run("no matches", func(t *testing.T) {
		// 600 two-byte runes; an odd budget lands inside one.
		content := strings.Repeat("é", 600)
		writeFile(t, dir, "runes.rs", content)

		budget := 1001
		e := New(dir, budget)
		excerpt := e.Extract("runes.rs", "zzz_not_present")

		assert.True(t, excerpt.Truncated)
		assert.True(t, utf8.ValidString(excerpt.Content))
		body, _, found := strings.Cut(excerpt.Content, "\n\n... (truncated,")
		require.True(t, found)
		assert.LessOrEqual(t, len(body), budget)
		// The omitted count reflects the actual cut point.
		assert.Contains(t, excerpt.Content, fmt.Sprintf("%d more characters)", len(content)-len(body)))
	})

	t.Run("windowed", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 100; i++ {
			b.WriteString("needle " + strings.Repeat("é", 40) + "\n")
		}
		writeFile(t, dir, "runes_windowed.rs", b.String())

		budget := 502
		e := New(dir, budget)
		excerpt := e.Extract("runes_windowed.rs", "needle")

		assert.True(t, excerpt.Truncated)
		assert.True(t, utf8.ValidString(excerpt.Content))
		body := strings.TrimSuffix(excerpt.Content, "\n\n... (truncated)")
		assert.LessOrEqual(t, len(body), budget)
	})
}

func TestExtract_QueryTokensCaseInsensitive(t *testing.T) {
	dir := t.TempDir()

	var b strings.Builder
	for i := 0; i < 200; i++ {
		if i == 150 {
			b.WriteString("struct SpawnEntity;\n")
		} else {
			fmt.Fprintf(&b, "// filler line %03d aaaaaaaaaaaaaaaaaaaaa\n", i)
		}
	}
	writeFile(t, dir, "case.rs", b.String())

	e := New(dir, 2000)
	excerpt := e.Extract("case.rs", "SPAWNENTITY")

	assert.Contains(t, excerpt.Content, "struct SpawnEntity;")
}

func TestNew_BudgetDefaulting(t *testing.T) {
	e := New(t.TempDir(), 0)
	assert.Equal(t, DefaultBudget, e.Budget())

	e = New(t.TempDir(), -5)
	assert.Equal(t, DefaultBudget, e.Budget())
}
