package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
)

// ICS takes the DTSTART of every VEVENT in an iCalendar file. Recurring
// events are expanded across the range.
type ICS struct {
	Path  string
	Stdin io.Reader
}

func (s ICS) Name() string { return "ics:" + s.Path }

func (s ICS) Load(_ context.Context, r Range) (Result, error) {
	raw, err := readInput(s.Path, s.Stdin)
	if err != nil {
		return Result{}, err
	}
	cal, err := ics.ParseCalendar(bytes.NewReader(raw))
	if err != nil {
		return Result{}, fmt.Errorf("parse calendar: %w", err)
	}
	return eventDates(cal.Events(), r), nil
}

func eventDates(events []*ics.VEvent, r Range) Result {
	var out Result
	loc := r.location()
	for _, e := range events {
		start, ok := dtstart(e.GetProperty(ics.ComponentPropertyDtStart), loc)
		if !ok {
			summary := "Untitled"
			if p := e.GetProperty(ics.ComponentPropertySummary); p != nil && strings.TrimSpace(p.Value) != "" {
				summary = strings.TrimSpace(p.Value)
			}
			out.Warnings = append(out.Warnings, fmt.Sprintf("skipped VEVENT %q with invalid DTSTART", summary))
			continue
		}
		p := e.GetProperty(ics.ComponentPropertyRrule)
		if p == nil || strings.TrimSpace(p.Value) == "" {
			out.Dates = append(out.Dates, start)
			continue
		}
		rule := strings.TrimSpace(p.Value)
		dates, err := expandRule(rule, start, r)
		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("skipped RRULE %q: %v", rule, err))
			out.Dates = append(out.Dates, start)
			continue
		}
		out.Dates = append(out.Dates, dates...)
	}
	return out
}

// dtstart reads a DTSTART value. All-day values and floating times are taken
// in loc; a TZID parameter names the zone of a local time.
func dtstart(p *ics.IANAProperty, loc *time.Location) (time.Time, bool) {
	if p == nil {
		return time.Time{}, false
	}
	val := strings.TrimSpace(p.Value)
	if strings.EqualFold(param(p, "VALUE"), "DATE") || len(val) == len("20060102") {
		t, err := time.ParseInLocation("20060102", val, loc)
		return t, err == nil
	}
	if strings.HasSuffix(val, "Z") {
		t, err := time.Parse("20060102T150405Z", val)
		return t, err == nil
	}
	if tzid := param(p, "TZID"); tzid != "" {
		zone, err := time.LoadLocation(tzid)
		if err != nil {
			return time.Time{}, false
		}
		loc = zone
	}
	t, err := time.ParseInLocation("20060102T150405", val, loc)
	return t, err == nil
}

// param returns the first value of a property parameter. Names match
// case-insensitively; values are returned as written.
func param(p *ics.IANAProperty, name string) string {
	for k, vals := range p.ICalParameters {
		if strings.EqualFold(k, name) && len(vals) > 0 {
			return strings.Trim(strings.TrimSpace(vals[0]), `"`)
		}
	}
	return ""
}

// expandRule returns the occurrences of an RRULE value anchored at start that
// fall inside the range.
func expandRule(rule string, start time.Time, r Range) ([]time.Time, error) {
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, err
	}
	opt.Dtstart = start
	rr, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, err
	}
	return rr.Between(r.start(), r.end().Add(-time.Second), true), nil
}
