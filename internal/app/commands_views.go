package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agis/acgrid/internal/grid"
	"github.com/agis/acgrid/internal/timeparse"
)

func newWeekCmd(opts *globalOptions) *cobra.Command {
	var sf sourceFlags
	var of string
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the grid for the week containing a day",
		RunE: func(c *cobra.Command, _ []string) error {
			run, err := loadGrid(c, opts, "week", &sf, func(rc *runContext, now time.Time) (grid.Configuration, error) {
				anchor, err := timeparse.ParseDate(of, now, rc.loc)
				if err != nil {
					return grid.Configuration{}, fmt.Errorf("--of: %w", err)
				}
				start, end := rc.cal.WeekBounds(anchor)
				return grid.Configuration{From: start, To: end}, nil
			})
			if err != nil {
				return err
			}
			run.meta["view"] = "week"
			return renderGrid(run)
		},
	}
	cmd.Flags().StringVar(&of, "of", "today", "Day inside the target week")
	sf.register(cmd)
	return cmd
}

func newMonthCmd(opts *globalOptions) *cobra.Command {
	var sf sourceFlags
	var of string
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Print the grid for the month containing a day",
		RunE: func(c *cobra.Command, _ []string) error {
			run, err := loadGrid(c, opts, "month", &sf, func(rc *runContext, now time.Time) (grid.Configuration, error) {
				anchor, err := parseMonthOrDate(of, now, rc.loc)
				if err != nil {
					return grid.Configuration{}, fmt.Errorf("--of: %w", err)
				}
				start, end := rc.cal.MonthBounds(anchor)
				return grid.Configuration{From: start, To: end}, nil
			})
			if err != nil {
				return err
			}
			run.meta["view"] = "month"
			run.meta["month"] = run.snap.Configuration.From.Format("2006-01")
			return renderGrid(run)
		},
	}
	cmd.Flags().StringVar(&of, "of", "today", "Month as YYYY-MM, or any day inside it")
	sf.register(cmd)
	return cmd
}

func parseMonthOrDate(input string, now time.Time, loc *time.Location) (time.Time, error) {
	v := strings.TrimSpace(input)
	if t, err := time.ParseInLocation("2006-01", v, loc); err == nil {
		return t, nil
	}
	return timeparse.ParseDate(v, now, loc)
}
