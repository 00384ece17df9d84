// Package timeparse turns user input into dates: relative offsets such as
// "-52w", named days, and the handful of absolute layouts event logs use.
package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"20060102",
}

// ParseDate accepts today, yesterday, tomorrow, signed offsets with a d, w, m
// or y unit, and absolute dates. Named and relative inputs resolve to midnight
// in loc.
func ParseDate(input string, now time.Time, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	y, m, d := now.In(loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	switch s {
	case "today", "now":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		sign := 1
		if s[0] == '-' {
			sign = -1
		}
		raw := s[1:]
		if len(raw) < 2 {
			return time.Time{}, fmt.Errorf("invalid relative date: %s", input)
		}
		n, err := strconv.Atoi(raw[:len(raw)-1])
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("invalid relative date: %s", input)
		}
		n *= sign
		switch raw[len(raw)-1] {
		case 'd':
			return today.AddDate(0, 0, n), nil
		case 'w':
			return today.AddDate(0, 0, 7*n), nil
		case 'm':
			return today.AddDate(0, n, 0), nil
		case 'y':
			return today.AddDate(n, 0, 0), nil
		default:
			return time.Time{}, fmt.Errorf("invalid relative unit: %s", input)
		}
	}

	input = strings.TrimSpace(input)
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, input, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %s", input)
}

// ParseTimestamp is for values read from event logs: absolute layouts plus
// unix seconds. Relative and named inputs are rejected.
func ParseTimestamp(input string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) != len("20060102") {
		return time.Unix(n, 0).In(loc), nil
	}
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp: %s", input)
}
