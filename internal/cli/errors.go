package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/syssam/cryptcol"
)

const (
	ExitCodeSuccess       = 0
	ExitCodeGeneric       = 1
	ExitCodeUsage         = 2
	ExitCodeConfiguration = 3
	ExitCodeMissingKey    = 4
	ExitCodeIO            = 5
)

type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ExitError) ExitCode() int {
	if e == nil {
		return ExitCodeGeneric
	}
	return e.Code
}

func usageErrorf(format string, args ...any) error {
	return &ExitError{Code: ExitCodeUsage, Err: fmt.Errorf(format, args...)}
}

func mapCommandError(err error) error {
	if err == nil {
		return nil
	}
	var withExit interface{ ExitCode() int }
	if errors.As(err, &withExit) {
		return err
	}
	var pathErr *fs.PathError
	switch {
	case errors.As(err, &pathErr):
		return &ExitError{Code: ExitCodeIO, Err: err}
	case cryptcol.IsMissingKey(err):
		return &ExitError{Code: ExitCodeMissingKey, Err: err}
	case cryptcol.IsConfigurationError(err), cryptcol.IsValidationError(err):
		return &ExitError{Code: ExitCodeConfiguration, Err: err}
	default:
		return &ExitError{Code: ExitCodeGeneric, Err: err}
	}
}
