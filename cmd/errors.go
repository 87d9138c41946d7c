package cmd

import (
	"errors"
	"fmt"
)

// Exit codes.
const (
	exitUser    = 1
	exitStorage = 2
)

// exitError carries the process exit code for err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error {
	return &exitError{code: exitUser, err: err}
}

func userErrorf(format string, args ...any) error {
	return userError(fmt.Errorf(format, args...))
}

func storageError(err error) error {
	return &exitError{code: exitStorage, err: err}
}

// exitCode maps err to a process exit code. Errors without a code, such as
// cobra's argument errors, are user errors.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUser
}
