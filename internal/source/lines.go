package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/agis/acgrid/internal/timeparse"
)

// Lines reads one timestamp per line. Blank lines and lines starting with #
// are ignored. With Strict set, an unparsable line fails the load; otherwise
// it becomes a warning.
type Lines struct {
	Path   string
	Strict bool
	Stdin  io.Reader
}

func (l Lines) Name() string {
	if strings.TrimSpace(l.Path) == "-" {
		return "dates:stdin"
	}
	return "dates:" + l.Path
}

func (l Lines) Load(_ context.Context, r Range) (Result, error) {
	raw, err := readInput(l.Path, l.Stdin)
	if err != nil {
		return Result{}, err
	}
	return parseLines(string(raw), r, l.Strict)
}

func parseLines(raw string, r Range, strict bool) (Result, error) {
	var out Result
	loc := r.location()
	for i, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		ts, err := timeparse.ParseTimestamp(s, loc)
		if err != nil {
			if strict {
				return Result{}, fmt.Errorf("line %d: %w", i+1, err)
			}
			out.Warnings = append(out.Warnings, fmt.Sprintf("line %d: %v", i+1, err))
			continue
		}
		out.Dates = append(out.Dates, ts)
	}
	return out, nil
}
