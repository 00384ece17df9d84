package app

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/agis/acgrid/internal/contract"
	"github.com/agis/acgrid/internal/source"
)

func TestExitCode(t *testing.T) {
	if code := ExitCode(nil); code != 0 {
		t.Fatalf("expected 0, got %d", code)
	}
	if code := ExitCode(errors.New("x")); code != 1 {
		t.Fatalf("expected 1, got %d", code)
	}
	if code := ExitCode(Wrap(7, errors.New("x"))); code != 7 {
		t.Fatalf("expected 7, got %d", code)
	}
	if code := ExitCode(WrapPrinted(4, errors.New("x"))); code != 4 {
		t.Fatalf("expected 4, got %d", code)
	}
}

func TestErrorCodeForExit(t *testing.T) {
	cases := map[int]contract.ErrorCode{
		1: contract.ErrGeneric,
		2: contract.ErrInvalidUsage,
		4: contract.ErrNotFound,
		6: contract.ErrSourceUnavailable,
		7: contract.ErrTimeout,
	}
	for code, want := range cases {
		if got := errorCodeForExit(code); got != want {
			t.Fatalf("errorCodeForExit(%d) = %s, want %s", code, got, want)
		}
	}
}

func TestAnnotateSourceErrorTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	err := annotateSourceError(ctx, "loading dates:x", ctx.Err())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("annotated error lost its cause: %v", err)
	}
	if !strings.Contains(err.Error(), "loading dates:x timed out after deadline") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestFailSourceExitCodes(t *testing.T) {
	p := quietPrinter()
	nf := &source.NotFoundError{Path: "missing.txt", Err: os.ErrNotExist}
	if code := ExitCode(failSource(p, nf)); code != 4 {
		t.Fatalf("not found: expected 4, got %d", code)
	}
	if code := ExitCode(failSource(p, context.DeadlineExceeded)); code != 7 {
		t.Fatalf("timeout: expected 7, got %d", code)
	}
	if code := ExitCode(failSource(p, errors.New("git: exit status 128"))); code != 6 {
		t.Fatalf("unavailable: expected 6, got %d", code)
	}
}
