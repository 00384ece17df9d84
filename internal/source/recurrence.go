package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Recurrence produces synthetic dates from RRULE expressions such as
// "FREQ=WEEKLY;BYDAY=MO,WE". A rule without its own DTSTART is anchored at the
// start of the range.
type Recurrence struct {
	Rules []string
}

func (s Recurrence) Name() string { return "rrule" }

func (s Recurrence) Load(_ context.Context, r Range) (Result, error) {
	var out Result
	for _, rule := range s.Rules {
		rule = strings.TrimSpace(strings.ReplaceAll(rule, `\n`, "\n"))
		if rule == "" {
			continue
		}
		if strings.Contains(strings.ToUpper(rule), "DTSTART") {
			set, err := rrule.StrToRRuleSet(rule)
			if err != nil {
				return Result{}, fmt.Errorf("invalid rule %q: %w", rule, err)
			}
			out.Dates = append(out.Dates, set.Between(r.start(), r.end().Add(-time.Second), true)...)
			continue
		}
		dates, err := expandRule(strings.TrimPrefix(rule, "RRULE:"), r.start(), r)
		if err != nil {
			return Result{}, fmt.Errorf("invalid rule %q: %w", rule, err)
		}
		out.Dates = append(out.Dates, dates...)
	}
	return out, nil
}
