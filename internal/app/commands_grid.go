package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agis/acgrid/internal/calendar"
	"github.com/agis/acgrid/internal/contract"
	"github.com/agis/acgrid/internal/grid"
	"github.com/agis/acgrid/internal/output"
	"github.com/agis/acgrid/internal/source"
	"github.com/agis/acgrid/internal/store"
	"github.com/agis/acgrid/internal/timeparse"
)

// gridRun is one loaded and published grid, ready to render.
type gridRun struct {
	rc       *runContext
	snap     store.Snapshot
	warnings []string
	meta     map[string]any
}

type rangeFunc func(rc *runContext, now time.Time) (grid.Configuration, error)

// explicitRange reads --from and --to.
func explicitRange(rc *runContext, now time.Time) (grid.Configuration, error) {
	from, err := timeparse.ParseDate(rc.opts.From, now, rc.loc)
	if err != nil {
		return grid.Configuration{}, fmt.Errorf("--from: %w", err)
	}
	to, err := timeparse.ParseDate(rc.opts.To, now, rc.loc)
	if err != nil {
		return grid.Configuration{}, fmt.Errorf("--to: %w", err)
	}
	return grid.Configuration{From: from, To: to}, nil
}

// loadGrid resolves the range, loads every configured source under the
// command timeout and publishes the aggregated grid.
func loadGrid(c *cobra.Command, opts *globalOptions, command string, sf *sourceFlags, resolve rangeFunc) (*gridRun, error) {
	rc, err := buildContext(c, opts, command)
	if err != nil {
		return nil, err
	}
	cfg, err := resolve(rc, time.Now())
	if err != nil {
		return nil, failWithHint(rc.printer, contract.ErrInvalidUsage, err, "Use today, yesterday, +Nd, -Nw, -Nm, YYYY-MM-DD or RFC3339", 2)
	}
	srcs, err := sourceFactory(c, sf)
	if err != nil {
		return nil, failWithHint(rc.printer, contract.ErrInvalidUsage, err, "Read stdin from a single input", 2)
	}

	ctx, cancel := commandContext(rc)
	defer cancel()

	st := store.New(rc.cal)
	if rc.opts.Verbose {
		unsubscribe := st.Subscribe(store.ObserverFunc(func(s store.Snapshot) {
			rc.logger.Debug().
				Str("id", s.ID).
				Uint64("version", s.Version).
				Str("state", s.State.String()).
				Int("weeks", len(s.Weeks)).
				Int("matched", s.Matched).
				Int("dropped", s.Dropped).
				Msg("snapshot published")
		}))
		defer unsubscribe()
	}

	var warnings []string
	inverted := calendar.DayOf(rc.cal.StartOfDay(cfg.To)).Before(calendar.DayOf(rc.cal.StartOfDay(cfg.From)))
	if inverted {
		warnings = append(warnings, "--to is before --from; the grid is empty")
	}

	var snap store.Snapshot
	if len(srcs) == 0 {
		rc.logger.Debug().Msg("no sources configured; publishing an empty grid")
		snap = st.Rebuild(cfg, rc.axis)
	} else {
		rng := sourceRange(rc, cfg, inverted)
		res, err := withTimeout(ctx, func() (source.Result, error) {
			started := time.Now()
			defer func() { recordTiming(ctx, "sources", time.Since(started)) }()
			return srcs.Load(ctx, rng)
		})
		if err != nil {
			return nil, failSource(rc.printer, annotateSourceError(ctx, "loading "+srcs.Name(), err))
		}
		rc.logger.Debug().Int("events", res.Events()).Int("warnings", len(res.Warnings)).Msg("sources loaded")
		warnings = append(warnings, res.Warnings...)
		snap = st.SetupWeighted(cfg, res.Dates, res.Weighted, rc.axis)
	}

	meta := map[string]any{
		"id":         snap.ID,
		"version":    snap.Version,
		"state":      snap.State.String(),
		"from":       formatDay(cfg.From),
		"to":         formatDay(cfg.To),
		"week_start": snap.WeekStart,
		"timezone":   snap.Timezone,
		"matched":    snap.Matched,
		"dropped":    snap.Dropped,
	}
	if len(srcs) > 0 {
		meta["sources"] = srcs.Name()
	}
	if t := timings(ctx); rc.opts.Verbose && len(t) > 0 {
		meta["timings"] = t
	}
	return &gridRun{rc: rc, snap: snap, warnings: warnings, meta: meta}, nil
}

// sourceRange widens the configured range to whole weeks so every source fills
// the padding days of the first and last week alike.
func sourceRange(rc *runContext, cfg grid.Configuration, inverted bool) source.Range {
	if inverted {
		return source.Range{From: cfg.From, To: cfg.To, Location: rc.loc}
	}
	_, last := rc.cal.WeekBounds(cfg.To)
	return source.Range{From: rc.cal.StartOfWeek(cfg.From), To: last, Location: rc.loc}
}

func newGridCmd(opts *globalOptions) *cobra.Command {
	var sf sourceFlags
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print the contribution grid, one row per week",
		RunE: func(c *cobra.Command, _ []string) error {
			run, err := loadGrid(c, opts, "grid", &sf, explicitRange)
			if err != nil {
				return err
			}
			return renderGrid(run)
		},
	}
	registerRangeFlags(cmd, opts)
	sf.register(cmd)
	return cmd
}

func newSummaryCmd(opts *globalOptions) *cobra.Command {
	var sf sourceFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print totals and streaks for a range",
		RunE: func(c *cobra.Command, _ []string) error {
			run, err := loadGrid(c, opts, "summary", &sf, explicitRange)
			if err != nil {
				return err
			}
			return renderSummary(run)
		},
	}
	registerRangeFlags(cmd, opts)
	sf.register(cmd)
	return cmd
}

func newDaysCmd(opts *globalOptions) *cobra.Command {
	var sf sourceFlags
	var nonZero bool
	cmd := &cobra.Command{
		Use:   "days",
		Short: "List every day of the grid with its count, oldest first",
		RunE: func(c *cobra.Command, _ []string) error {
			run, err := loadGrid(c, opts, "days", &sf, explicitRange)
			if err != nil {
				return err
			}
			rows := dayRows(run.snap, nonZero)
			run.meta["count"] = len(rows)
			p := run.rc.printer
			if p.EffectiveSuccessMode() == output.ModePlain && len(p.Fields) == 0 {
				p.Fields = []string{"date", "weekday", "count"}
			}
			run.rc.printer = p
			return successWithMeta(run.rc, rows, run.meta, run.warnings)
		},
	}
	registerRangeFlags(cmd, opts)
	sf.register(cmd)
	cmd.Flags().BoolVar(&nonZero, "nonzero", false, "Only days with at least one event")
	return cmd
}

func registerRangeFlags(cmd *cobra.Command, opts *globalOptions) {
	cmd.Flags().StringVar(&opts.From, "from", "-52w", "First day: today, -Nd, -Nw, -Nm, -Ny, YYYY-MM-DD, RFC3339")
	cmd.Flags().StringVar(&opts.To, "to", "today", "Last day, same syntax as --from")
}

func renderGrid(run *gridRun) error {
	view := gridView(run.snap)
	p := run.rc.printer
	if p.EffectiveSuccessMode() == output.ModePlain && len(p.Fields) == 0 {
		p.Warn(run.warnings)
		return p.GridTable(view)
	}
	return successWithMeta(run.rc, view, run.meta, run.warnings)
}

func renderSummary(run *gridRun) error {
	stats := statsView(run.snap.Stats)
	p := run.rc.printer
	if p.EffectiveSuccessMode() == output.ModePlain && len(p.Fields) == 0 {
		p.Warn(run.warnings)
		if p.Quiet {
			return nil
		}
		_, err := fmt.Fprintln(p.Out, output.SummaryLine(stats))
		return err
	}
	return successWithMeta(run.rc, stats, run.meta, run.warnings)
}
