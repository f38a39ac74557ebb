// Package extract reads source files and produces bounded excerpts focused on
// the lines that mention query terms.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultBudget is the character budget for a single excerpt.
	DefaultBudget = 3000
	// contextRadius is the number of lines kept around each matching line.
	contextRadius = 20
	// maxMatchWindows caps how many matching lines grow context windows.
	maxMatchWindows = 5
)

// Excerpt is a bounded slice of a file's content. When the file could not be
// read, Content holds a human-readable diagnostic instead; extraction never
// fails hard, because one unreadable file must not abort a whole request.
type Excerpt struct {
	Content   string
	Truncated bool
}

// Extractor loads files under a fixed source root.
type Extractor struct {
	root   string
	budget int
}

// New creates an Extractor rooted at root with the given character budget.
func New(root string, budget int) *Extractor {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Extractor{root: root, budget: budget}
}

// Budget returns the configured character budget.
func (e *Extractor) Budget() int {
	return e.budget
}

// Extract loads the file at the corpus-relative path and returns an excerpt
// focused on lines matching the query's whitespace-separated tokens.
//
// Files within budget are returned whole. Larger files are reduced to merged
// ±20-line windows around the first few matching lines; disjoint windows are
// unioned into one ascending, deduplicated excerpt, never returned as
// separate fragments. With no matching lines the file is truncated from the
// start.
func (e *Extractor) Extract(path, query string) Excerpt {
	fullPath := filepath.Join(e.root, path)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return Excerpt{Content: fmt.Sprintf("*File not found at %s*", fullPath)}
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return Excerpt{Content: fmt.Sprintf("*Error reading file: %v*", err)}
	}
	content := string(data)

	if len(content) <= e.budget {
		return Excerpt{Content: content, Truncated: false}
	}

	lines := strings.Split(content, "\n")
	matches := matchingLines(lines, query)

	if len(matches) > 0 {
		joined := joinWindows(lines, matches)
		if len(joined) < e.budget {
			return Excerpt{Content: joined, Truncated: true}
		}
		return Excerpt{
			Content:   cutAtRuneBoundary(joined, e.budget) + "\n\n... (truncated)",
			Truncated: true,
		}
	}

	cut := cutAtRuneBoundary(content, e.budget)
	omitted := len(content) - len(cut)
	return Excerpt{
		Content:   cut + fmt.Sprintf("\n\n... (truncated, %d more characters)", omitted),
		Truncated: true,
	}
}

// cutAtRuneBoundary truncates s to at most n bytes, backing off so a
// multi-byte rune is never split.
func cutAtRuneBoundary(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// matchingLines returns the indices of lines containing any query token,
// case-insensitively.
func matchingLines(lines []string, query string) []int {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return nil
	}

	var matches []int
	for i, line := range lines {
		lineLower := strings.ToLower(line)
		for _, tok := range tokens {
			if strings.Contains(lineLower, tok) {
				matches = append(matches, i)
				break
			}
		}
	}
	return matches
}

// joinWindows unions the context windows around the first maxMatchWindows
// matches into a single excerpt preserving original line order.
func joinWindows(lines []string, matches []int) string {
	if len(matches) > maxMatchWindows {
		matches = matches[:maxMatchWindows]
	}

	keep := make(map[int]struct{})
	for _, idx := range matches {
		start := idx - contextRadius
		if start < 0 {
			start = 0
		}
		end := idx + contextRadius
		if end > len(lines) {
			end = len(lines)
		}
		for i := start; i < end; i++ {
			keep[i] = struct{}{}
		}
	}

	indices := make([]int, 0, len(keep))
	for i := range keep {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	selected := make([]string, len(indices))
	for i, idx := range indices {
		selected[i] = lines[idx]
	}
	return strings.Join(selected, "\n")
}
