package runner

import (
	"fmt"
	"io"

	"github.com/hamed0406/smokecheck/internal/domain"
	"github.com/hamed0406/smokecheck/internal/probe"
)

// Report narrates res for a human: the status line first, then failure
// details, then a one-line verdict.
func Report(w io.Writer, res domain.CheckResult) {
	fmt.Fprintf(w, "HTTP %s returned for %s (time: %.2fs)\n", res.StatusText(), res.URL, res.ElapsedSeconds())

	switch res.FailureReason {
	case "":
	case domain.ReasonHTTPError:
		reportDiagnostics(w, res.Diagnostics)
	case domain.ReasonNoResponse:
		fmt.Fprintf(w, "No HTTP response received for %s; treating as failure.\n", res.URL)
	default:
		fmt.Fprintf(w, "Request error while requesting %s: %s\n", res.URL, res.Error)
		if res.Diagnostics != nil && res.Diagnostics.DNSClass != "" {
			fmt.Fprintf(w, "DNS: %s is %s\n", probe.ExtractHost(res.URL), res.Diagnostics.DNSClass)
		}
	}

	if res.Succeeded {
		fmt.Fprintln(w, "✅ Smoke check passed.")
		fmt.Fprintf(w, "⏲️ Page responded with %s in %.2f seconds.\n", res.StatusText(), res.ElapsedSeconds())
		return
	}
	fmt.Fprintf(w, "❌ Smoke check failed: %s\n", res.FailureReason)
}

func reportDiagnostics(w io.Writer, d *domain.Diagnostics) {
	if d == nil {
		return
	}
	fmt.Fprintln(w, "--- Response headers ---")
	for _, k := range probe.SortedKeys(d.Headers) {
		fmt.Fprintf(w, "%s: %s\n", k, d.Headers[k])
	}
	if d.BodyExcerpt != nil {
		fmt.Fprintln(w, "--- Response body (truncated) ---")
		fmt.Fprintln(w, *d.BodyExcerpt)
	}
}
