package timeparse

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 2, 8, 15, 0, 0, 0, loc)

	cases := []struct {
		in   string
		want string
	}{
		{"today", "2026-02-08T00:00:00Z"},
		{"tomorrow", "2026-02-09T00:00:00Z"},
		{"yesterday", "2026-02-07T00:00:00Z"},
		{"+7d", "2026-02-15T00:00:00Z"},
		{"-2w", "2026-01-25T00:00:00Z"},
		{"-52w", "2025-02-09T00:00:00Z"},
		{"-1m", "2026-01-08T00:00:00Z"},
		{"-1y", "2025-02-08T00:00:00Z"},
		{"2026-02-20", "2026-02-20T00:00:00Z"},
		{"20260220", "2026-02-20T00:00:00Z"},
		{"2026-02-20 09:30", "2026-02-20T09:30:00Z"},
	}

	for _, tc := range cases {
		got, err := ParseDate(tc.in, now, loc)
		if err != nil {
			t.Fatalf("ParseDate(%q) error: %v", tc.in, err)
		}
		if got.UTC().Format(time.RFC3339) != tc.want {
			t.Fatalf("ParseDate(%q) = %s, want %s", tc.in, got.UTC().Format(time.RFC3339), tc.want)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	now := time.Date(2026, 2, 8, 15, 0, 0, 0, time.UTC)
	for _, in := range []string{"", "+", "-3q", "+xd", "next tuesday", "2026/02/20"} {
		if _, err := ParseDate(in, now, time.UTC); err == nil {
			t.Fatalf("ParseDate(%q) expected error", in)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1770681600", "2026-02-10T00:00:00Z"},
		{"2026-02-10T08:00:00+01:00", "2026-02-10T07:00:00Z"},
		{"2026-02-10", "2026-02-10T00:00:00Z"},
		{"20260210", "2026-02-10T00:00:00Z"},
	}
	for _, tc := range cases {
		got, err := ParseTimestamp(tc.in, time.UTC)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q) error: %v", tc.in, err)
		}
		if got.UTC().Format(time.RFC3339) != tc.want {
			t.Fatalf("ParseTimestamp(%q) = %s, want %s", tc.in, got.UTC().Format(time.RFC3339), tc.want)
		}
	}
	if _, err := ParseTimestamp("today", time.UTC); err == nil {
		t.Fatalf("expected relative input to be rejected")
	}
}
