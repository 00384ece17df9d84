package grid

import (
	"time"

	"github.com/samber/lo"

	"github.com/agis/acgrid/internal/calendar"
)

// Stats summarizes a grid's counts. Streaks run over consecutive days with a
// non-zero count, in chronological order.
type Stats struct {
	Days          int       `json:"days"`
	Total         int       `json:"total"`
	Max           int       `json:"max"`
	ActiveDays    int       `json:"active_days"`
	LongestStreak int       `json:"longest_streak"`
	CurrentStreak int       `json:"current_streak"`
	FirstDay      time.Time `json:"first_day"`
	LastDay       time.Time `json:"last_day"`
}

func (g *Grid) Stats() Stats {
	cells := g.Chronological()
	if len(cells) == 0 {
		return Stats{}
	}
	st := Stats{
		Days:     len(cells),
		Total:    lo.SumBy(cells, func(c Cell) int { return c.Count }),
		FirstDay: cells[0].Date,
		LastDay:  cells[len(cells)-1].Date,
	}
	run := 0
	for _, c := range cells {
		if c.Count > st.Max {
			st.Max = c.Count
		}
		if c.Count == 0 {
			run = 0
			continue
		}
		st.ActiveDays++
		run++
		if run > st.LongestStreak {
			st.LongestStreak = run
		}
	}

	// The current streak ends at the configured last day; padding days after it
	// belong to the future.
	last := calendar.DayOf(g.cal.StartOfDay(g.cfg.To))
	end := len(cells) - 1
	for end >= 0 && last.Before(calendar.DayOf(cells[end].Date)) {
		end--
	}
	for i := end; i >= 0 && cells[i].Count > 0; i-- {
		st.CurrentStreak++
	}
	return st
}
