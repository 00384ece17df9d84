// Package source loads event dates for the grid from files, calendars,
// databases and repositories.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agis/acgrid/internal/grid"
)

// Range bounds what a source needs to read. Sources may return dates outside
// it; the grid drops those.
type Range struct {
	From     time.Time
	To       time.Time
	Location *time.Location
}

func (r Range) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// end is the first instant after the last day of the range.
func (r Range) end() time.Time {
	loc := r.location()
	y, m, d := r.To.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

// start is midnight of the first day of the range.
func (r Range) start() time.Time {
	loc := r.location()
	y, m, d := r.From.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

type Result struct {
	Dates    []time.Time
	Weighted []grid.Weighted
	Warnings []string
}

func (r *Result) merge(o Result) {
	r.Dates = append(r.Dates, o.Dates...)
	r.Weighted = append(r.Weighted, o.Weighted...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// Events is the number of events in the result, counting weights.
func (r Result) Events() int {
	n := len(r.Dates)
	for _, w := range r.Weighted {
		if w.Count > 0 {
			n += w.Count
		}
	}
	return n
}

type Source interface {
	Name() string
	Load(ctx context.Context, r Range) (Result, error)
}

// NotFoundError marks a source whose input does not exist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *NotFoundError) Unwrap() error { return e.Err }

// Multi loads every source in order. The first error aborts.
type Multi []Source

func (m Multi) Name() string {
	names := make([]string, 0, len(m))
	for _, s := range m {
		names = append(names, s.Name())
	}
	return strings.Join(names, ",")
}

func (m Multi) Load(ctx context.Context, r Range) (Result, error) {
	var out Result
	for _, s := range m {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		res, err := s.Load(ctx, r)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", s.Name(), err)
		}
		zerolog.Ctx(ctx).Debug().
			Str("source", s.Name()).
			Int("dates", len(res.Dates)).
			Int("weighted", len(res.Weighted)).
			Int("warnings", len(res.Warnings)).
			Msg("source loaded")
		out.merge(res)
	}
	return out, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if strings.TrimSpace(path) == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Path: path, Err: err}
	}
	return b, err
}
