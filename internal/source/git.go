package source

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

type runFunc func(ctx context.Context, dir string, args ...string) ([]byte, error)

// Git takes the author date of every commit reachable from HEAD in Repo.
type Git struct {
	Repo   string
	Author string
	All    bool

	run runFunc
}

func (g Git) Name() string { return "git:" + g.Repo }

func (g Git) args(r Range) []string {
	args := []string{"log", "--format=%aI"}
	if g.All {
		args = append(args, "--all")
	}
	if strings.TrimSpace(g.Author) != "" {
		args = append(args, "--author="+strings.TrimSpace(g.Author))
	}
	if !r.From.IsZero() {
		args = append(args, "--since="+r.start().Format(time.RFC3339))
	}
	if !r.To.IsZero() {
		args = append(args, "--until="+r.end().Format(time.RFC3339))
	}
	return args
}

func (g Git) Load(ctx context.Context, r Range) (Result, error) {
	run := g.run
	if run == nil {
		run = runGit
	}
	out, err := run(ctx, g.Repo, g.args(r)...)
	if err != nil {
		return Result{}, err
	}
	var res Result
	for _, line := range strings.Split(string(out), "\n") {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("unparsable commit date %q", s))
			continue
		}
		res.Dates = append(res.Dates, ts)
	}
	return res, nil
}

func runGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("git log failed: %s", msg)
	}
	return out, nil
}
