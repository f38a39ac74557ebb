// Package logscan extracts notable lines from render debug logs by keyword.
package logscan

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[mK]`)

// DefaultKeywords mark the lines worth surfacing from a client render log.
var DefaultKeywords = []string{
	"ERROR", "WARN",
	"zone_render_validation_system",
	"aabb_diagnostic_system",
	"shader", "material", "mesh", "camera", "visibility",
	"AABB", "frustum", "culling", "black screen",
	"RENDER STATUS", "ACTIVE CAMERA", "VISIBILITY STATE",
	"MATERIAL DIAGNOSTICS", "RENDER PIPELINE DIAGNOSTICS",
	"AABB VALIDATION DIAGNOSTICS", "RENDER LAYER DIAGNOSTICS",
	"RENDER STAGE DIAGNOSTICS", "TRANSFORM PROPAGATION DIAGNOSTICS",
	"[ZONE VISIBILITY DEBUG]", "No entities are ready to render!",
}

// Scanner prints log lines containing any of its keywords.
type Scanner struct {
	Keywords []string
}

// New returns a Scanner with the default keyword set.
func New() *Scanner {
	return &Scanner{Keywords: DefaultKeywords}
}

// ScanFile scans one file, writing a header followed by every matching line.
// A missing file is reported in the output, not returned as an error, so a
// batch of files keeps going.
func (s *Scanner) ScanFile(path string, w io.Writer) error {
	fmt.Fprintf(w, "--- Parsing %s ---\n", path)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(w, "File %s not found.\n", path)
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return s.Scan(f, w)
}

// Scan filters r into w, keeping keyword-matching lines with ANSI escapes
// stripped.
func (s *Scanner) Scan(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !s.matches(line) {
			continue
		}
		clean := strings.TrimSpace(ansiPattern.ReplaceAllString(line, ""))
		if clean != "" {
			fmt.Fprintln(w, clean)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func (s *Scanner) matches(line string) bool {
	for _, kw := range s.Keywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}
