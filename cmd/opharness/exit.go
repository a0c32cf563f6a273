package main

import "errors"

// Exit codes: 0 when everything the command did succeeded, 1 for any
// failure, including prerequisite checks that abort before a case runs.
const (
	exitSuccess = 0
	exitFailure = 1
)

// exitError carries a process exit code out of a command handler. An
// empty message means the command already reported the failure through
// its reporter and main should exit quietly.
type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string { return e.message }

func newExitError(code int, message string) *exitError {
	return &exitError{code: code, message: message}
}

// exitCode extracts the exit code from an error. Errors without a code
// default to failure.
func exitCode(err error) int {
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return exitFailure
}
