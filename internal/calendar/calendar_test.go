package calendar

import (
	"testing"
	"time"
)

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	cal := New(time.Sunday, loc)
	start, end := cal.DayBounds(time.Date(2026, 2, 10, 14, 30, 0, 0, loc))
	if got, want := start.Format(time.RFC3339), "2026-02-10T00:00:00+02:00"; got != want {
		t.Fatalf("start=%s want=%s", got, want)
	}
	if got, want := end.Format(time.RFC3339), "2026-02-10T23:59:59+02:00"; got != want {
		t.Fatalf("end=%s want=%s", got, want)
	}
}

func TestStartOfDayConvertsLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	cal := New(time.Sunday, loc)
	got := cal.StartOfDay(time.Date(2026, 2, 10, 3, 0, 0, 0, time.UTC))
	if want := "2026-02-09T00:00:00-05:00"; got.Format(time.RFC3339) != want {
		t.Fatalf("StartOfDay=%s want=%s", got.Format(time.RFC3339), want)
	}
}

func TestWeekBoundsMondayStart(t *testing.T) {
	cal := New(time.Monday, time.UTC)
	start, end := cal.WeekBounds(time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)) // Wednesday
	if got, want := start.Format(time.RFC3339), "2026-02-09T00:00:00Z"; got != want {
		t.Fatalf("start=%s want=%s", got, want)
	}
	if got, want := end.Format(time.RFC3339), "2026-02-15T23:59:59Z"; got != want {
		t.Fatalf("end=%s want=%s", got, want)
	}
}

func TestWeekBoundsSundayStart(t *testing.T) {
	cal := New(time.Sunday, time.UTC)
	start, end := cal.WeekBounds(time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)) // Wednesday
	if got, want := start.Format(time.RFC3339), "2026-02-08T00:00:00Z"; got != want {
		t.Fatalf("start=%s want=%s", got, want)
	}
	if got, want := end.Format(time.RFC3339), "2026-02-14T23:59:59Z"; got != want {
		t.Fatalf("end=%s want=%s", got, want)
	}
}

func TestMonthBounds(t *testing.T) {
	cal := New(time.Sunday, time.UTC)
	start, end := cal.MonthBounds(time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC))
	if got, want := start.Format(time.RFC3339), "2026-02-01T00:00:00Z"; got != want {
		t.Fatalf("start=%s want=%s", got, want)
	}
	if got, want := end.Format(time.RFC3339), "2026-02-28T23:59:59Z"; got != want {
		t.Fatalf("end=%s want=%s", got, want)
	}
}

func TestWeeksBetween(t *testing.T) {
	cal := New(time.Monday, time.UTC)
	cases := []struct {
		name     string
		from, to time.Time
		want     []string
	}{
		{
			name: "single full week",
			from: time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
			want: []string{"2026-02-09"},
		},
		{
			name: "partial weeks on both ends",
			from: time.Date(2026, 2, 12, 8, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 2, 17, 23, 0, 0, 0, time.UTC),
			want: []string{"2026-02-09", "2026-02-16"},
		},
		{
			name: "same day",
			from: time.Date(2026, 2, 11, 8, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC),
			want: []string{"2026-02-09"},
		},
		{
			name: "inverted",
			from: time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC),
			want: nil,
		},
	}
	for _, tc := range cases {
		got := cal.WeeksBetween(tc.from, tc.to)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %d weeks, want %d", tc.name, len(got), len(tc.want))
		}
		for i := range got {
			if got[i].Format("2006-01-02") != tc.want[i] {
				t.Fatalf("%s: week %d = %s, want %s", tc.name, i, got[i].Format("2006-01-02"), tc.want[i])
			}
		}
	}
}

func TestDaysInWeekAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	cal := New(time.Monday, loc)
	// 2026-03-29 is the spring-forward Sunday in Berlin.
	days := cal.DaysInWeek(time.Date(2026, 3, 25, 12, 0, 0, 0, loc))
	if len(days) != DaysPerWeek {
		t.Fatalf("expected %d days, got %d", DaysPerWeek, len(days))
	}
	for i, d := range days {
		if d.Hour() != 0 || d.Minute() != 0 {
			t.Fatalf("day %d not at midnight: %s", i, d)
		}
		if want := 23 + i; d.Day() != want {
			t.Fatalf("day %d = %d, want %d", i, d.Day(), want)
		}
	}
	next := cal.WeeksBetween(days[0], days[6].AddDate(0, 0, 1))
	if len(next) != 2 || next[1].Format("2006-01-02") != "2026-03-30" {
		t.Fatalf("unexpected weeks after DST change: %v", next)
	}
}

func TestParseWeekStart(t *testing.T) {
	wd, err := ParseWeekStart("monday")
	if err != nil || wd != time.Monday {
		t.Fatalf("expected monday, got %v err=%v", wd, err)
	}
	wd, err = ParseWeekStart("Sun")
	if err != nil || wd != time.Sunday {
		t.Fatalf("expected sunday, got %v err=%v", wd, err)
	}
	if _, err := ParseWeekStart("someday"); err == nil {
		t.Fatalf("expected error for invalid week start")
	}
}

func TestDayString(t *testing.T) {
	if got := DayOf(time.Date(2026, 1, 5, 23, 0, 0, 0, time.UTC)).String(); got != "2026-01-05" {
		t.Fatalf("Day.String() = %q", got)
	}
}

func TestDefaultWeekStartIsMonday(t *testing.T) {
	cal := New(DefaultWeekStart, time.UTC)
	weeks := cal.WeeksBetween(time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC))
	if len(weeks) != 1 || weeks[0].Format("2006-01-02") != "2026-02-09" {
		t.Fatalf("expected one week starting 2026-02-09, got %v", weeks)
	}
}

func TestDayBefore(t *testing.T) {
	cases := []struct {
		a, b Day
		want bool
	}{
		{Day{2026, time.February, 10}, Day{2026, time.February, 11}, true},
		{Day{2026, time.February, 10}, Day{2026, time.February, 10}, false},
		{Day{2026, time.March, 1}, Day{2026, time.February, 28}, false},
		{Day{2025, time.December, 31}, Day{2026, time.January, 1}, true},
	}
	for _, tc := range cases {
		if got := tc.a.Before(tc.b); got != tc.want {
			t.Fatalf("%s.Before(%s) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
