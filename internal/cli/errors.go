package cli

import "errors"

// ExitError is an error that can carry an explicit exit code plus any
// output the failing operation had buffered before it gave up. A zero
// Code means no explicit code was set and the default of 1 applies.
type ExitError struct {
	Message string
	Code    int
	Stdout  string
	Stderr  string
}

func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) ExitCode() int {
	if e.Code != 0 {
		return e.Code
	}
	return 1
}

func exitCodeFor(err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}
