package provider

import "fmt"

// TransientError is a retry-eligible invocation failure: a non-zero
// exit code or a timeout. The retry loop backs off and tries again.
type TransientError struct {
	msg string
}

func (e *TransientError) Error() string { return e.msg }

// transientf builds a TransientError from a format string.
func transientf(format string, args ...any) *TransientError {
	return &TransientError{msg: fmt.Sprintf(format, args...)}
}

// FatalError is an invocation failure that is never retried,
// such as the provider executable not being found.
type FatalError struct {
	msg string
}

func (e *FatalError) Error() string { return e.msg }

// fatalf builds a FatalError from a format string.
func fatalf(format string, args ...any) *FatalError {
	return &FatalError{msg: fmt.Sprintf(format, args...)}
}
