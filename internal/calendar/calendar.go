// Package calendar holds the day and week arithmetic the grid builder relies on.
//
// Every function works at day granularity in a single location and with a
// fixed first day of the week. Days are represented by their start (00:00 in
// the calendar's location).
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const DaysPerWeek = 7

// DefaultWeekStart is Monday, so a Monday to Sunday range is exactly one week.
const DefaultWeekStart = time.Monday

// Calendar is a week-start convention bound to a location.
type Calendar struct {
	weekStart time.Weekday
	loc       *time.Location
}

// New returns a Calendar. A nil loc means time.Local.
func New(weekStart time.Weekday, loc *time.Location) Calendar {
	if loc == nil {
		loc = time.Local
	}
	if weekStart < time.Sunday || weekStart > time.Saturday {
		weekStart = DefaultWeekStart
	}
	return Calendar{weekStart: weekStart, loc: loc}
}

func (c Calendar) WeekStart() time.Weekday { return c.weekStart }

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// StartOfDay converts t to the calendar's location and truncates it to midnight.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	loc := c.Location()
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// StartOfWeek returns the first day of the week containing t.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.StartOfDay(t)
	delta := (int(day.Weekday()) - int(c.weekStart) + DaysPerWeek) % DaysPerWeek
	return c.addDays(day, -delta)
}

// WeeksBetween returns the first day of every week that touches the inclusive
// day range [from, to], oldest first. It returns nil when from falls on a later
// day than to.
func (c Calendar) WeeksBetween(from, to time.Time) []time.Time {
	first := c.StartOfDay(from)
	last := c.StartOfDay(to)
	if first.After(last) {
		return nil
	}
	out := make([]time.Time, 0, int(last.Sub(first)/(DaysPerWeek*24*time.Hour))+2)
	for w := c.StartOfWeek(first); !w.After(last); w = c.addDays(w, DaysPerWeek) {
		out = append(out, w)
	}
	return out
}

// DaysInWeek returns the seven days of the week containing t.
func (c Calendar) DaysInWeek(t time.Time) []time.Time {
	start := c.StartOfWeek(t)
	out := make([]time.Time, DaysPerWeek)
	for i := range out {
		out[i] = c.addDays(start, i)
	}
	return out
}

// DayBounds returns the first and last second of the day containing t.
func (c Calendar) DayBounds(t time.Time) (time.Time, time.Time) {
	start := c.StartOfDay(t)
	return start, c.addDays(start, 1).Add(-time.Second)
}

// WeekBounds returns the first and last second of the week containing t.
func (c Calendar) WeekBounds(t time.Time) (time.Time, time.Time) {
	start := c.StartOfWeek(t)
	return start, c.addDays(start, DaysPerWeek).Add(-time.Second)
}

// MonthBounds returns the first and last second of the month containing t.
func (c Calendar) MonthBounds(t time.Time) (time.Time, time.Time) {
	loc := c.Location()
	y, m, _ := t.In(loc).Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0).Add(-time.Second)
}

// addDays steps by calendar days and re-anchors at midnight so DST shifts
// never leak into the wall clock.
func (c Calendar) addDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, c.Location())
}

// Day identifies a calendar day independent of location and clock time.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// Before reports whether d is an earlier day than o.
func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ParseWeekStart accepts full or abbreviated English weekday names.
func ParseWeekStart(v string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	case "tuesday", "tue", "tues":
		return time.Tuesday, nil
	case "wednesday", "wed":
		return time.Wednesday, nil
	case "thursday", "thu", "thurs":
		return time.Thursday, nil
	case "friday", "fri":
		return time.Friday, nil
	case "saturday", "sat":
		return time.Saturday, nil
	default:
		return DefaultWeekStart, fmt.Errorf("invalid week start: %s", v)
	}
}

// ResolveLocation loads an IANA zone, falling back to time.Local for an empty
// name.
func ResolveLocation(tz string) (*time.Location, error) {
	if strings.TrimSpace(tz) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(tz))
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}
