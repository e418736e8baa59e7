package notify

import (
	"fmt"

	"github.com/hamed0406/smokecheck/internal/domain"
	"github.com/hamed0406/smokecheck/internal/probe"
)

type Style string

const (
	Verbose Style = "verbose"
	Compact Style = "compact"
)

// Format renders the chat message for res.
func Format(style Style, res domain.CheckResult) string {
	if style == Compact {
		return compact(res)
	}
	return verbose(res)
}

func verbose(res domain.CheckResult) string {
	switch {
	case res.Succeeded:
		return fmt.Sprintf("✅ Smoke test passed: %s responded with %s in %.2f seconds.",
			res.URL, res.StatusText(), res.ElapsedSeconds())
	case res.FailureReason == domain.ReasonHTTPError:
		return fmt.Sprintf("❌ Smoke test failed: HTTP %s for %s.", res.StatusText(), res.URL)
	case res.FailureReason == domain.ReasonNoResponse:
		return fmt.Sprintf("❌ Smoke test failed: no response for %s.", res.URL)
	default:
		return fmt.Sprintf("❌ Smoke test error while requesting %s: %s", res.URL, res.Error)
	}
}

// compact renders the verdict, status and hostname on one line.
func compact(res domain.CheckResult) string {
	label := "ERR"
	switch {
	case res.Succeeded:
		label = "OK"
	case res.FailureReason == domain.ReasonHTTPError:
		label = "FAIL"
	}
	return fmt.Sprintf("%s — %s — %s", label, res.StatusText(), probe.ExtractHost(res.URL))
}
