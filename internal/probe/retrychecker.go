package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultRetryStatuses are the server-side and rate-limit codes worth retrying.
var DefaultRetryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

type RetryPolicy struct {
	MaxRetries     int           // extra attempts after the first
	InitialBackoff time.Duration // doubled after each retry
	Statuses       []int         // nil means DefaultRetryStatuses
}

func (p RetryPolicy) retryable(code int) bool {
	statuses := p.Statuses
	if statuses == nil {
		statuses = DefaultRetryStatuses
	}
	for _, s := range statuses {
		if s == code {
			return true
		}
	}
	return false
}

// RetryTransport repeats idempotent requests that come back with a retryable
// status. The caller sees a single response: the first non-retryable one, or
// the last one once retries run out. Transport errors are not retried.
type RetryTransport struct {
	Base           http.RoundTripper
	Policy         RetryPolicy
	AttemptTimeout time.Duration // per attempt; 0 means no limit
	Logger         *zap.Logger
}

type retryableStatusError struct{ code int }

func (e *retryableStatusError) Error() string {
	return fmt.Sprintf("retryable status %d", e.code)
}

func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.canRetry(req) {
		return t.attempt(req)
	}

	var (
		resp  *http.Response
		tries int
	)
	op := func() error {
		if resp != nil {
			discard(resp)
			resp = nil
		}
		tries++
		r, err := t.attempt(req)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp = r
		if t.Policy.retryable(r.StatusCode) {
			return &retryableStatusError{code: r.StatusCode}
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		t.logger().Info("http_retry",
			zap.String("url", req.URL.String()),
			zap.Int("attempt", tries),
			zap.Duration("wait", wait),
			zap.String("reason", err.Error()),
		)
	}

	err := backoff.RetryNotify(op, t.schedule(req.Context()), notify)
	if resp != nil {
		return resp, nil
	}
	return nil, err
}

func (t *RetryTransport) canRetry(req *http.Request) bool {
	if t.Policy.MaxRetries <= 0 {
		return false
	}
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete, http.MethodTrace:
	default:
		return false
	}
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func (t *RetryTransport) schedule(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if t.Policy.InitialBackoff > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = t.Policy.InitialBackoff
		exp.RandomizationFactor = 0
		exp.Multiplier = 2
		exp.MaxElapsedTime = 0
		exp.Reset()
		b = exp
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(t.Policy.MaxRetries)), ctx)
}

// attempt sends one copy of req, bounded by AttemptTimeout. The timeout
// stays armed until the response body is closed.
func (t *RetryTransport) attempt(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	cancel := context.CancelFunc(func() {})
	if t.AttemptTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, t.AttemptTimeout)
	}

	out := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			cancel()
			return nil, err
		}
		out.Body = body
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (t *RetryTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *RetryTransport) logger() *zap.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return zap.NewNop()
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
