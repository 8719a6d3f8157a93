package check

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"wscheck/internal/cli"
)

type Checker struct {
	out io.Writer
}

func New(out io.Writer) *Checker {
	return &Checker{out: out}
}

type finding struct {
	line    int // 0 for file-level findings
	message string
}

// Run checks every file named by the positional arguments (literal
// paths or doublestar glob patterns) for whitespace hygiene. It
// satisfies cli.RunFunc: the completion carries an error for expansion
// or read failures, otherwise exit code 1 when findings exist and 0
// when everything is clean.
func (c *Checker) Run(opts cli.RunOptions, done cli.Callback) {
	paths, err := expandPaths(opts.Files)
	if err != nil {
		done(err, 0)
		return
	}
	if len(paths) == 0 {
		done(&cli.ExitError{
			Message: fmt.Sprintf("no files match %s", strings.Join(opts.Files, ", ")),
		}, 0)
		return
	}

	total := 0
	for _, path := range paths {
		findings, err := checkFile(path)
		if err != nil {
			done(err, 0)
			return
		}
		total += len(findings)
		c.report(path, findings, opts.Verbosity)
	}
	if opts.Verbosity >= 0 {
		fmt.Fprintf(c.out, "checked %s: %s\n", plural(len(paths), "file"), plural(total, "issue"))
	}

	if total > 0 {
		done(nil, 1)
		return
	}
	done(nil, 0)
}

func expandPaths(patterns []string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			out = append(out, pattern)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		out = append(out, matches...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func checkFile(path string) ([]finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("invalid UTF-8 encoding in %s", path)
	}
	content := string(b)
	if content == "" {
		return nil, nil
	}

	lines := strings.Split(content, "\n")
	missingFinal := !strings.HasSuffix(content, "\n")
	if !missingFinal {
		// Split leaves one empty trailing element for a newline-terminated file.
		lines = lines[:len(lines)-1]
	}

	var findings []finding
	for i, line := range lines {
		if strings.HasSuffix(line, "\r") {
			findings = append(findings, finding{line: i + 1, message: "CRLF line ending"})
			line = strings.TrimSuffix(line, "\r")
		}
		if trimmed := strings.TrimRight(line, " \t"); trimmed != line {
			findings = append(findings, finding{line: i + 1, message: "trailing whitespace"})
		}
	}
	if missingFinal {
		findings = append(findings, finding{message: "missing final newline"})
	}
	return findings, nil
}

func (c *Checker) report(path string, findings []finding, verbosity int) {
	switch {
	case verbosity <= -1:
	case verbosity >= 1:
		for _, f := range findings {
			if f.line > 0 {
				fmt.Fprintf(c.out, "%s:%d: %s\n", path, f.line, f.message)
			} else {
				fmt.Fprintf(c.out, "%s: %s\n", path, f.message)
			}
		}
		if len(findings) == 0 && verbosity >= 2 {
			fmt.Fprintf(c.out, "%s: ok\n", path)
		}
	default:
		if len(findings) > 0 {
			fmt.Fprintf(c.out, "%s: %s\n", path, plural(len(findings), "issue"))
		}
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
