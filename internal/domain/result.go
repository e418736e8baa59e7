package domain

import (
	"errors"
	"fmt"
)

const (
	ExitPass = 0
	ExitFail = 1
)

var ErrInconsistentResult = errors.New("inconsistent check result")

// ElapsedSeconds reports the measured time as float seconds.
func (r CheckResult) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// HasStatus reports whether a response status was observed.
func (r CheckResult) HasStatus() bool {
	return r.StatusCode != nil
}

// ExitCode maps the outcome onto the process exit status.
func (r CheckResult) ExitCode() int {
	if r.Succeeded {
		return ExitPass
	}
	return ExitFail
}

// Validate checks that Succeeded, StatusCode and FailureReason agree:
// a result succeeds iff a status below 400 was seen without a fetch error,
// and carries a reason iff it failed.
func (r CheckResult) Validate() error {
	wantSuccess := r.StatusCode != nil && *r.StatusCode < 400 && r.Error == ""
	if r.Succeeded != wantSuccess {
		return fmt.Errorf("%w: succeeded=%v status=%s error=%q",
			ErrInconsistentResult, r.Succeeded, r.StatusText(), r.Error)
	}
	if r.Succeeded == (r.FailureReason != "") {
		return fmt.Errorf("%w: succeeded=%v reason=%q", ErrInconsistentResult, r.Succeeded, r.FailureReason)
	}
	return nil
}

// StatusText renders the status code, or "n/a" when none was observed.
func (r CheckResult) StatusText() string {
	if r.StatusCode == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *r.StatusCode)
}
