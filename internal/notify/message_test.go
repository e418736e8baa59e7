package notify

import (
	"testing"
	"time"

	"github.com/hamed0406/smokecheck/internal/domain"
)

func intp(i int) *int { return &i }

func TestFormat(t *testing.T) {
	pass := domain.CheckResult{URL: "https://example.com", StatusCode: intp(200), Succeeded: true, Elapsed: 1234 * time.Millisecond}
	httpErr := domain.CheckResult{URL: "https://example.com", StatusCode: intp(404), FailureReason: domain.ReasonHTTPError}
	noResp := domain.CheckResult{URL: "https://example.com/a", FailureReason: domain.ReasonNoResponse}
	netErr := domain.CheckResult{URL: "http://127.0.0.1:1", FailureReason: domain.ReasonNetworkError, Error: "connection refused"}

	cases := []struct {
		style Style
		in    domain.CheckResult
		want  string
	}{
		{Verbose, pass, "✅ Smoke test passed: https://example.com responded with 200 in 1.23 seconds."},
		{Verbose, httpErr, "❌ Smoke test failed: HTTP 404 for https://example.com."},
		{Verbose, noResp, "❌ Smoke test failed: no response for https://example.com/a."},
		{Verbose, netErr, "❌ Smoke test error while requesting http://127.0.0.1:1: connection refused"},
		{Compact, pass, "OK — 200 — example.com"},
		{Compact, httpErr, "FAIL — 404 — example.com"},
		{Compact, noResp, "ERR — n/a — example.com"},
		{Compact, netErr, "ERR — n/a — 127.0.0.1"},
	}
	for _, c := range cases {
		if got := Format(c.style, c.in); got != c.want {
			t.Fatalf("Format(%s)\n got: %q\nwant: %q", c.style, got, c.want)
		}
	}
}
