package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agis/acgrid/internal/contract"
	"github.com/agis/acgrid/internal/output"
	"github.com/agis/acgrid/internal/source"
)

type AppError struct {
	Code    int
	Err     error
	Printed bool
}

func (e AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e AppError) Unwrap() error { return e.Err }

func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return AppError{Code: code, Err: err}
}

func WrapPrinted(code int, err error) error {
	if err == nil {
		return nil
	}
	return AppError{Code: code, Err: err, Printed: true}
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e AppError
	if errors.As(err, &e) {
		return e.Code
	}
	return 1
}

func errorCodeForExit(code int) contract.ErrorCode {
	switch code {
	case 2:
		return contract.ErrInvalidUsage
	case 4:
		return contract.ErrNotFound
	case 6:
		return contract.ErrSourceUnavailable
	case 7:
		return contract.ErrTimeout
	default:
		return contract.ErrGeneric
	}
}

func failWithHint(printer output.Printer, code contract.ErrorCode, err error, hint string, exitCode int) error {
	if err == nil {
		err = errors.New("unknown error")
	}
	_ = printer.Error(code, err.Error(), hint)
	return WrapPrinted(exitCode, err)
}

// sourceContextError records which phase hit a deadline or cancellation.
type sourceContextError struct {
	Phase    string
	Kind     string
	Deadline *time.Time
	Err      error
}

func (e *sourceContextError) Error() string {
	switch e.Kind {
	case "timeout":
		if e.Deadline != nil {
			return fmt.Sprintf("%s timed out after deadline %s: %v", e.Phase, e.Deadline.Format(time.RFC3339), e.Err)
		}
		return fmt.Sprintf("%s timed out: %v", e.Phase, e.Err)
	case "canceled":
		return fmt.Sprintf("%s canceled: %v", e.Phase, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *sourceContextError) Unwrap() error { return e.Err }

func annotateSourceError(ctx context.Context, phase string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		var dl *time.Time
		if deadline, ok := ctx.Deadline(); ok {
			deadline = deadline.UTC()
			dl = &deadline
		}
		return &sourceContextError{Phase: phase, Kind: "timeout", Deadline: dl, Err: err}
	case errors.Is(err, context.Canceled):
		return &sourceContextError{Phase: phase, Kind: "canceled", Err: err}
	}
	return err
}

// failSource maps a source load error to its exit code and prints it.
func failSource(printer output.Printer, err error) error {
	var nf *source.NotFoundError
	switch {
	case errors.As(err, &nf):
		return failWithHint(printer, contract.ErrNotFound, err, "Check the --dates, --ics and --sqlite paths", 4)
	case errors.Is(err, context.DeadlineExceeded):
		return failWithHint(printer, contract.ErrTimeout, err, "Raise --timeout or narrow --from/--to", 7)
	default:
		return failWithHint(printer, contract.ErrSourceUnavailable, err, "Run with --verbose to see which source failed", 6)
	}
}
