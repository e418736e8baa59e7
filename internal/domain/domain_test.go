package domain

import (
	"errors"
	"testing"
	"time"
)

func intp(i int) *int { return &i }

func TestCheckResult_Validate(t *testing.T) {
	cases := []struct {
		name string
		in   CheckResult
		ok   bool
	}{
		{"pass", CheckResult{StatusCode: intp(200), Succeeded: true}, true},
		{"redirect pass", CheckResult{StatusCode: intp(302), Succeeded: true}, true},
		{"http error", CheckResult{StatusCode: intp(404), FailureReason: ReasonHTTPError}, true},
		{"no response", CheckResult{FailureReason: ReasonNoResponse}, true},
		{"network error", CheckResult{FailureReason: ReasonNetworkError, Error: "connection refused"}, true},
		{"success without status", CheckResult{Succeeded: true}, false},
		{"success on 500", CheckResult{StatusCode: intp(500), Succeeded: true}, false},
		{"failure without reason", CheckResult{StatusCode: intp(500)}, false},
		{"success with reason", CheckResult{StatusCode: intp(200), Succeeded: true, FailureReason: ReasonTimeout}, false},
		{"success with error", CheckResult{StatusCode: intp(200), Succeeded: true, Error: "boom"}, false},
	}
	for _, c := range cases {
		err := c.in.Validate()
		if c.ok && err != nil {
			t.Fatalf("%s: want valid, got %v", c.name, err)
		}
		if !c.ok && !errors.Is(err, ErrInconsistentResult) {
			t.Fatalf("%s: want ErrInconsistentResult, got %v", c.name, err)
		}
	}
}

func TestCheckResult_ExitCodeAndStatusText(t *testing.T) {
	pass := CheckResult{StatusCode: intp(200), Succeeded: true, Elapsed: 1500 * time.Millisecond}
	if pass.ExitCode() != ExitPass {
		t.Fatalf("want exit 0, got %d", pass.ExitCode())
	}
	if pass.StatusText() != "200" {
		t.Fatalf("want 200, got %q", pass.StatusText())
	}
	if pass.ElapsedSeconds() != 1.5 {
		t.Fatalf("want 1.5s, got %v", pass.ElapsedSeconds())
	}

	fail := CheckResult{FailureReason: ReasonNoResponse}
	if fail.ExitCode() != ExitFail {
		t.Fatalf("want exit 1, got %d", fail.ExitCode())
	}
	if fail.HasStatus() || fail.StatusText() != "n/a" {
		t.Fatalf("want absent status, got %q", fail.StatusText())
	}
}
