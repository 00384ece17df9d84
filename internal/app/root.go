package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agis/acgrid/internal/calendar"
	"github.com/agis/acgrid/internal/contract"
	"github.com/agis/acgrid/internal/grid"
	"github.com/agis/acgrid/internal/output"
)

type globalOptions struct {
	JSON          bool
	JSONL         bool
	Plain         bool
	Fields        string
	Quiet         bool
	Verbose       bool
	NoColor       bool
	Profile       string
	Config        string
	TZ            string
	WeekStart     string
	Axis          string
	From          string
	To            string
	Timeout       time.Duration
	SchemaVersion string
}

// runContext is everything a command needs after flags and config are merged.
type runContext struct {
	printer   output.Printer
	opts      *globalOptions
	cal       calendar.Calendar
	axis      grid.AxisMode
	logger    zerolog.Logger
	loc       *time.Location
	startedAt time.Time
}

func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err != nil {
		renderTopLevelError(cmd, err)
	}
	return ExitCode(err)
}

func NewRootCommand() *cobra.Command {
	opts := &globalOptions{
		Profile:       "default",
		WeekStart:     "monday",
		Axis:          "horizontal",
		From:          "-52w",
		To:            "today",
		Timeout:       30 * time.Second,
		SchemaVersion: contract.SchemaVersion,
	}

	root := &cobra.Command{
		Use:           "acgrid",
		Short:         "Build contribution grids from dated events",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       BuildVersionString(),
	}
	root.SetVersionTemplate("acgrid {{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return Wrap(2, err)
	})

	root.PersistentFlags().BoolVar(&opts.JSON, "json", false, "Output structured JSON")
	root.PersistentFlags().BoolVar(&opts.JSONL, "jsonl", false, "Output newline-delimited JSON")
	root.PersistentFlags().BoolVar(&opts.Plain, "plain", false, "Output stable plain text")
	root.PersistentFlags().StringVar(&opts.Fields, "fields", "", "Projected fields, comma-separated")
	root.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Reduce success output")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose diagnostics")
	root.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "Disable color in diagnostics")
	root.PersistentFlags().StringVar(&opts.Profile, "profile", "default", "Config profile")
	root.PersistentFlags().StringVar(&opts.Config, "config", "", "Config file path")
	root.PersistentFlags().StringVar(&opts.TZ, "tz", "", "IANA timezone used to bucket days")
	root.PersistentFlags().StringVar(&opts.WeekStart, "week-start", "monday", "First day of the week")
	root.PersistentFlags().StringVar(&opts.Axis, "axis", "horizontal", "Week order: horizontal|vertical")
	root.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "Source load timeout (e.g. 10s, 1m, 0 to disable)")
	root.PersistentFlags().StringVar(&opts.SchemaVersion, "schema-version", contract.SchemaVersion, "Output schema version")

	root.AddCommand(newGridCmd(opts))
	root.AddCommand(newSummaryCmd(opts))
	root.AddCommand(newDaysCmd(opts))
	root.AddCommand(newWeekCmd(opts))
	root.AddCommand(newMonthCmd(opts))
	root.AddCommand(newVersionCmd())
	root.AddCommand(newCompletionCmd(root))

	return root
}

func buildContext(cmd *cobra.Command, opts *globalOptions, command string) (*runContext, error) {
	resolved, err := resolveGlobalOptions(cmd, opts)
	if err != nil {
		return nil, Wrap(2, err)
	}
	printer := output.Printer{
		Command:       command,
		Fields:        splitCSV(resolved.Fields),
		Quiet:         resolved.Quiet,
		NoColor:       resolved.NoColor,
		SchemaVersion: resolved.SchemaVersion,
		Out:           cmd.OutOrStdout(),
		Err:           cmd.ErrOrStderr(),
	}
	if conflictCount(resolved.JSON, resolved.JSONL, resolved.Plain) > 1 {
		return nil, failWithHint(printer, contract.ErrInvalidUsage, errors.New("--json, --jsonl, and --plain are mutually exclusive"), "Pick one output mode", 2)
	}
	printer.Mode = output.ModeAuto
	if resolved.JSON {
		printer.Mode = output.ModeJSON
	} else if resolved.JSONL {
		printer.Mode = output.ModeJSONL
	} else if resolved.Plain {
		printer.Mode = output.ModePlain
	}

	loc, err := calendar.ResolveLocation(resolved.TZ)
	if err != nil {
		return nil, failWithHint(printer, contract.ErrInvalidUsage, err, "Use an IANA name such as Europe/Athens", 2)
	}
	ws, err := calendar.ParseWeekStart(resolved.WeekStart)
	if err != nil {
		return nil, failWithHint(printer, contract.ErrInvalidUsage, err, "Use --week-start sunday|monday|...", 2)
	}
	axis, err := grid.ParseAxisMode(resolved.Axis)
	if err != nil {
		return nil, failWithHint(printer, contract.ErrInvalidUsage, err, "Use --axis horizontal|vertical", 2)
	}

	logger := newLogger(printer.Err, resolved.Verbose, resolved.NoColor)
	logger.Debug().
		Str("command", command).
		Str("mode", string(printer.Mode)).
		Str("tz", loc.String()).
		Str("week_start", ws.String()).
		Str("axis", axis.String()).
		Str("profile", resolved.Profile).
		Dur("timeout", resolved.Timeout).
		Msg("resolved options")

	return &runContext{
		printer:   printer,
		opts:      resolved,
		cal:       calendar.New(ws, loc),
		axis:      axis,
		logger:    logger,
		loc:       loc,
		startedAt: time.Now(),
	}, nil
}

func commandContext(rc *runContext) (context.Context, context.CancelFunc) {
	timing := &timingRecorder{calls: map[string]time.Duration{}}
	base := context.WithValue(context.Background(), timingContextKey{}, timing)
	base = rc.logger.WithContext(base)
	if rc.opts == nil || rc.opts.Timeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, rc.opts.Timeout)
}

type timeoutResult[T any] struct {
	val T
	err error
}

type timingContextKey struct{}

type timingRecorder struct {
	mu    sync.Mutex
	calls map[string]time.Duration
}

func (r *timingRecorder) add(name string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[name] += d
}

func recordTiming(ctx context.Context, name string, d time.Duration) {
	rec, _ := ctx.Value(timingContextKey{}).(*timingRecorder)
	if rec == nil {
		return
	}
	rec.add(name, d)
}

func timings(ctx context.Context) map[string]string {
	rec, _ := ctx.Value(timingContextKey{}).(*timingRecorder)
	if rec == nil {
		return nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) == 0 {
		return nil
	}
	keys := make([]string, 0, len(rec.calls))
	for k := range rec.calls {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = rec.calls[k].String()
	}
	return out
}

func withTimeout[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	ch := make(chan timeoutResult[T], 1)
	go func() {
		v, err := fn()
		ch <- timeoutResult[T]{val: v, err: err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		return res.val, res.err
	}
}

func successWithMeta(rc *runContext, data any, meta map[string]any, warnings []string) error {
	rc.logger.Debug().Dur("elapsed", time.Since(rc.startedAt)).Msg("done")
	return rc.printer.Success(data, meta, warnings)
}

func renderTopLevelError(cmd *cobra.Command, err error) {
	var appErr AppError
	if errors.As(err, &appErr) && appErr.Printed {
		return
	}
	if wantsStructuredErrorOutput(os.Args[1:]) {
		printer := output.Printer{
			Mode:          output.ModeJSON,
			SchemaVersion: contract.SchemaVersion,
			Err:           cmd.ErrOrStderr(),
		}
		_ = printer.Error(errorCodeForExit(ExitCode(err)), err.Error(), "")
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err.Error())
}

func wantsStructuredErrorOutput(args []string) bool {
	for _, arg := range args {
		switch {
		case arg == "--":
			return false
		case arg == "--json", arg == "--jsonl":
			return true
		case strings.HasPrefix(arg, "--json="), strings.HasPrefix(arg, "--jsonl="):
			return true
		}
	}
	return false
}

func conflictCount(vals ...bool) int {
	total := 0
	for _, v := range vals {
		if v {
			total++
		}
	}
	return total
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		v := strings.TrimSpace(p)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
