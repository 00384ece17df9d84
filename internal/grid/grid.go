// Package grid builds week-bucketed contribution grids and folds event dates
// into per-day counts.
//
// A Grid keeps every cell in one backing slice in week-major order. Weeks are
// offset ranges into that slice, so a count written through the day index is
// the same cell the weeks expose.
package grid

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/agis/acgrid/internal/calendar"
)

// Calendar supplies the day and week arithmetic. calendar.Calendar satisfies it.
type Calendar interface {
	StartOfDay(time.Time) time.Time
	WeeksBetween(from, to time.Time) []time.Time
	DaysInWeek(time.Time) []time.Time
}

// AxisMode decides whether weeks are laid out oldest-first or newest-first.
type AxisMode int

const (
	Horizontal AxisMode = iota
	Vertical
)

func (a AxisMode) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

func (a AxisMode) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func ParseAxisMode(v string) (AxisMode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	default:
		return Horizontal, fmt.Errorf("invalid axis: %s", v)
	}
}

// Configuration is the inclusive date range covered by a grid.
type Configuration struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Cell is one calendar day and the number of events that fell on it.
type Cell struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Weighted is a date that counts Count times, for sources that report
// pre-aggregated rows.
type Weighted struct {
	Date  time.Time
	Count int
}

type span struct {
	start, end int
}

type Grid struct {
	cal   Calendar
	cfg   Configuration
	axis  AxisMode
	cells []Cell
	weeks []span
	index map[calendar.Day]int
}

// Build partitions cfg into calendar weeks and creates one zero-count cell per
// day of every week. An inverted range yields an empty grid.
func Build(cal Calendar, cfg Configuration, axis AxisMode) *Grid {
	anchors := cal.WeeksBetween(cfg.From, cfg.To)
	if axis == Vertical {
		anchors = lo.Reverse(anchors)
	}
	g := &Grid{
		cal:   cal,
		cfg:   cfg,
		axis:  axis,
		cells: make([]Cell, 0, len(anchors)*calendar.DaysPerWeek),
		weeks: make([]span, 0, len(anchors)),
		index: make(map[calendar.Day]int, len(anchors)*calendar.DaysPerWeek),
	}
	for _, anchor := range anchors {
		start := len(g.cells)
		for _, day := range cal.DaysInWeek(anchor) {
			key := calendar.DayOf(day)
			if _, dup := g.index[key]; dup {
				continue
			}
			g.index[key] = len(g.cells)
			g.cells = append(g.cells, Cell{Date: day})
		}
		g.weeks = append(g.weeks, span{start: start, end: len(g.cells)})
	}
	return g
}

// Aggregate increments the cell of every date's day. Dates without a cell are
// dropped. Duplicates accumulate.
func (g *Grid) Aggregate(dates []time.Time) (matched, dropped int) {
	if len(g.cells) == 0 {
		return 0, len(dates)
	}
	for _, d := range dates {
		if g.Add(d, 1) {
			matched++
		} else {
			dropped++
		}
	}
	return matched, dropped
}

// Add increments the cell for date's day by n. It reports whether a cell
// exists for that day; n <= 0 never changes a count.
func (g *Grid) Add(date time.Time, n int) bool {
	i, ok := g.index[calendar.DayOf(g.cal.StartOfDay(date))]
	if !ok {
		return false
	}
	if n > 0 {
		g.cells[i].Count += n
	}
	return true
}

func (g *Grid) Configuration() Configuration { return g.cfg }

func (g *Grid) Axis() AxisMode { return g.axis }

func (g *Grid) Empty() bool { return len(g.cells) == 0 }

// Len is the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

func (g *Grid) WeekCount() int { return len(g.weeks) }

// Week returns a copy of the i-th week in layout order.
func (g *Grid) Week(i int) []Cell {
	w := g.weeks[i]
	return slices.Clone(g.cells[w.start:w.end])
}

// Weeks returns a copy of every week in layout order.
func (g *Grid) Weeks() [][]Cell {
	return lo.Map(g.weeks, func(w span, _ int) []Cell {
		return slices.Clone(g.cells[w.start:w.end])
	})
}

// Cells returns a copy of the flat, week-major cell sequence.
func (g *Grid) Cells() []Cell {
	return slices.Clone(g.cells)
}

// Lookup returns the cell for date's day.
func (g *Grid) Lookup(date time.Time) (Cell, bool) {
	i, ok := g.index[calendar.DayOf(g.cal.StartOfDay(date))]
	if !ok {
		return Cell{}, false
	}
	return g.cells[i], true
}

// Chronological returns a copy of all cells oldest first, whatever the axis.
func (g *Grid) Chronological() []Cell {
	out := make([]Cell, 0, len(g.cells))
	for i := range g.weeks {
		w := g.weeks[i]
		if g.axis == Vertical {
			w = g.weeks[len(g.weeks)-1-i]
		}
		out = append(out, g.cells[w.start:w.end]...)
	}
	return out
}
