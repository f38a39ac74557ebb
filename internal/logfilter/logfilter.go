// Package logfilter performs offline line-oriented cleanup of client debug
// logs: ANSI escapes are stripped, tracing noise is dropped, and lines
// carrying the client prefix are reduced to their message content.
package logfilter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// clientPrefix marks log lines produced by the game client itself.
const clientPrefix = "rose_offline_client:"

var (
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[mK]`)

	// Timestamped DEBUG tracing lines, e.g.
	// "2026-02-02T04:27:07.407063Z DEBUG naga::front:".
	debugLinePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d+Z\s+DEBUG\s+`)
)

// Filter rewrites a log stream line by line.
type Filter struct {
	// Prefix is the marker whose trailing content is kept. Lines without it
	// pass through unchanged.
	Prefix string
}

// New returns a Filter for the default client prefix.
func New() *Filter {
	return &Filter{Prefix: clientPrefix}
}

// CleanLine rewrites one line (without its newline) and reports whether it
// should be kept. The last prefix occurrence wins, so nested or repeated
// prefixes reduce to the innermost message.
func (f *Filter) CleanLine(line string) (string, bool) {
	line = ansiPattern.ReplaceAllString(line, "")

	if strings.TrimSpace(line) == "" {
		return "", false
	}
	if debugLinePattern.MatchString(line) {
		return "", false
	}

	if idx := strings.LastIndex(line, f.Prefix); idx != -1 {
		content := strings.TrimLeft(line[idx+len(f.Prefix):], ": \t")
		if content == "" {
			return "", false
		}
		return content, true
	}

	return line, true
}

// Run filters r into w.
func (f *Filter) Run(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	bw := bufio.NewWriter(w)
	for scanner.Scan() {
		out, keep := f.CleanLine(scanner.Text())
		if !keep {
			continue
		}
		if _, err := bw.WriteString(out + "\n"); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return bw.Flush()
}

// FilterFile filters inPath into outPath. Input may be UTF-16 (the Windows
// client writes it); a BOM selects the decoder, anything else is read as
// UTF-8.
func (f *Filter) FilterFile(inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	decoded := transform.NewReader(in, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	if err := f.Run(decoded, out); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
