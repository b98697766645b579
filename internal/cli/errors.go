package cli

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nodeattrs/internal/sqlite"
	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError pins an error to an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// userErrors are failures caused by the request rather than the system.
var userErrors = []error{
	types.ErrKeyNotFound,
	types.ErrInvalidKey,
	types.ErrUnsupportedValue,
	types.ErrTypeMismatch,
	types.ErrNodeNotFound,
	types.ErrNodeExists,
	types.ErrInvalidPath,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	sqlite.ErrFormatUnknown,
	fs.ErrNotExist,
}

// ExitCode maps a command error to a process exit code. Errors pinned
// with userError or sysError keep their code; known request failures are
// user errors; everything else, including corrupt records, is a system
// error.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}

// exactArgs is cobra.ExactArgs with argument errors reported as user errors.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return userError(err)
		}
		return nil
	}
}

func flagError(cmd *cobra.Command, err error) error {
	return userError(err)
}
