package app

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agis/acgrid/internal/source"
)

type sourceFlags struct {
	Dates        []string
	ICS          []string
	RRules       []string
	SQLite       string
	SQLiteTable  string
	SQLiteColumn string
	SQLiteCount  string
	Git          []string
	Calendar     bool
	CalendarDB   string
	CalendarName []string
	Author       string
	AllRefs      bool
	Strict       bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.Dates, "dates", nil, "File of timestamps, one per line (- for stdin)")
	cmd.Flags().StringArrayVar(&f.ICS, "ics", nil, "iCalendar file (- for stdin)")
	cmd.Flags().StringArrayVar(&f.RRules, "rrule", nil, "RRULE expression, e.g. FREQ=WEEKLY;BYDAY=MO,WE")
	cmd.Flags().StringVar(&f.SQLite, "sqlite", "", "SQLite database file")
	cmd.Flags().StringVar(&f.SQLiteTable, "sqlite-table", "events", "SQLite table")
	cmd.Flags().StringVar(&f.SQLiteColumn, "sqlite-column", "created_at", "SQLite timestamp column")
	cmd.Flags().StringVar(&f.SQLiteCount, "sqlite-count", "", "SQLite column holding a per-row count")
	cmd.Flags().BoolVar(&f.Calendar, "calendar", false, "Read the macOS Calendar cache")
	cmd.Flags().StringVar(&f.CalendarDB, "calendar-db", "", "Calendar cache database path (implies --calendar)")
	cmd.Flags().StringArrayVar(&f.CalendarName, "calendar-name", nil, "Only these calendars, by title or UUID")
	cmd.Flags().StringArrayVar(&f.Git, "git", nil, "Git repository path")
	cmd.Flags().StringVar(&f.Author, "author", "", "Only commits whose author matches")
	cmd.Flags().BoolVar(&f.AllRefs, "all", false, "Walk all refs, not just HEAD")
	cmd.Flags().BoolVar(&f.Strict, "strict", false, "Fail on unparsable date lines instead of warning")
}

// sourceFactory turns source flags into a loader. Tests swap it out.
var sourceFactory = func(cmd *cobra.Command, f *sourceFlags) (source.Multi, error) {
	return f.build(cmd)
}

// build turns the flags into one source. Stdin may back at most one input.
func (f *sourceFlags) build(cmd *cobra.Command) (source.Multi, error) {
	var out source.Multi
	stdinUsed := false
	claimStdin := func(path string) error {
		if strings.TrimSpace(path) != "-" {
			return nil
		}
		if stdinUsed {
			return errors.New("stdin (-) can back only one --dates or --ics input")
		}
		stdinUsed = true
		return nil
	}
	for _, p := range f.Dates {
		if err := claimStdin(p); err != nil {
			return nil, err
		}
		out = append(out, source.Lines{Path: p, Strict: f.Strict, Stdin: cmd.InOrStdin()})
	}
	for _, p := range f.ICS {
		if err := claimStdin(p); err != nil {
			return nil, err
		}
		out = append(out, source.ICS{Path: p, Stdin: cmd.InOrStdin()})
	}
	if len(f.RRules) > 0 {
		out = append(out, source.Recurrence{Rules: f.RRules})
	}
	if f.SQLite != "" {
		out = append(out, source.SQLite{
			Path:        f.SQLite,
			Table:       f.SQLiteTable,
			Column:      f.SQLiteColumn,
			CountColumn: f.SQLiteCount,
		})
	}
	if f.Calendar || f.CalendarDB != "" {
		out = append(out, source.AppleCalendar{Path: f.CalendarDB, Calendars: f.CalendarName})
	}
	for _, repo := range f.Git {
		out = append(out, source.Git{Repo: repo, Author: f.Author, All: f.AllRefs})
	}
	return out, nil
}
