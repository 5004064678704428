package compute

import (
	"errors"
	"fmt"
	"os/exec"
)

// TemplateError is returned when a job template can't be parsed or executed.
type TemplateError struct {
	Name string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("rendering template for %s: %v", e.Name, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// ExitError is returned when an external command fails. Code is used as the
// exit status of the process.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code of a command's error: 0 for nil, the
// process exit status for an *exec.ExitError, and 1 otherwise or when the
// process was killed by a signal.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if code := ee.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}
