package runner

import (
	"context"
	"time"

	"github.com/hamed0406/smokecheck/internal/domain"
	"github.com/hamed0406/smokecheck/internal/probe"
)

// DefaultBodyLimit is how many characters of an error body are kept.
const DefaultBodyLimit = 1000

// Evaluate classifies one fetch. Rules, in order:
//  1. a fetch error or no response fails with no status
//  2. status >= 400 fails as an HTTP error, with headers and a body excerpt
//  3. anything else passes
//
// The body is read through nav.Body while the session is still open.
func Evaluate(ctx context.Context, req domain.CheckRequest, nav *probe.Navigation, fetchErr error, bodyLimit int) domain.CheckResult {
	res := domain.CheckResult{URL: req.URL, CheckedAt: time.Now().UTC()}
	if nav != nil {
		res.Elapsed = nav.Elapsed
	}

	if fetchErr != nil || nav == nil || nav.StatusCode == 0 {
		if fetchErr == nil {
			fetchErr = probe.ErrNoResponse
		}
		res.FailureReason = probe.Classify(fetchErr)
		res.Error = fetchErr.Error()
		return res
	}

	code := nav.StatusCode
	res.StatusCode = &code
	if code >= 400 {
		res.FailureReason = domain.ReasonHTTPError
		res.Diagnostics = &domain.Diagnostics{
			Headers:     nav.Headers,
			BodyExcerpt: captureBody(ctx, nav, bodyLimit),
		}
		return res
	}

	res.Succeeded = true
	return res
}

// captureBody returns nil when the body cannot be read.
func captureBody(ctx context.Context, nav *probe.Navigation, limit int) *string {
	if nav.Body == nil {
		return nil
	}
	if limit <= 0 {
		limit = DefaultBodyLimit
	}
	body, err := nav.Body(ctx)
	if err != nil {
		return nil
	}
	excerpt := probe.Truncate(body, limit)
	return &excerpt
}
