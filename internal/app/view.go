package app

import (
	"time"

	"github.com/samber/lo"

	"github.com/agis/acgrid/internal/contract"
	"github.com/agis/acgrid/internal/grid"
	"github.com/agis/acgrid/internal/store"
)

const dayLayout = "2006-01-02"

func cellView(c grid.Cell) contract.Cell {
	return contract.Cell{Date: c.Date.Format(dayLayout), Weekday: c.Date.Weekday().String(), Count: c.Count}
}

// gridView converts a snapshot to its wire form. Weeks keep the snapshot's
// axis order.
func gridView(snap store.Snapshot) contract.Grid {
	weeks := make([]contract.Week, 0, len(snap.Weeks))
	for _, w := range snap.Weeks {
		if len(w) == 0 {
			continue
		}
		weeks = append(weeks, contract.Week{
			Start: w[0].Date.Format(dayLayout),
			Total: lo.SumBy(w, func(c grid.Cell) int { return c.Count }),
			Cells: lo.Map(w, func(c grid.Cell, _ int) contract.Cell { return cellView(c) }),
		})
	}
	return contract.Grid{
		ID:        snap.ID,
		Version:   snap.Version,
		State:     snap.State.String(),
		From:      formatDay(snap.Configuration.From),
		To:        formatDay(snap.Configuration.To),
		Axis:      snap.Axis.String(),
		WeekStart: snap.WeekStart,
		Timezone:  snap.Timezone,
		Matched:   snap.Matched,
		Dropped:   snap.Dropped,
		Stats:     statsView(snap.Stats),
		Weeks:     weeks,
	}
}

func statsView(s grid.Stats) contract.Stats {
	return contract.Stats{
		Days:          s.Days,
		Total:         s.Total,
		Max:           s.Max,
		ActiveDays:    s.ActiveDays,
		LongestStreak: s.LongestStreak,
		CurrentStreak: s.CurrentStreak,
		FirstDay:      formatDay(s.FirstDay),
		LastDay:       formatDay(s.LastDay),
	}
}

// dayRows lists every cell oldest first, optionally dropping empty days.
func dayRows(snap store.Snapshot, nonZero bool) []contract.Cell {
	n := len(snap.Weeks)
	rows := make([]contract.Cell, 0, n*7)
	for i := range snap.Weeks {
		w := snap.Weeks[i]
		if snap.Axis == grid.Vertical {
			w = snap.Weeks[n-1-i]
		}
		for _, c := range w {
			if nonZero && c.Count == 0 {
				continue
			}
			rows = append(rows, cellView(c))
		}
	}
	return rows
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dayLayout)
}
