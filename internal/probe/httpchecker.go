package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// HTTPOpener opens plain HTTP client sessions. No JavaScript runs and no
// console output is captured.
type HTTPOpener struct {
	Logger    *zap.Logger
	Timeout   time.Duration // per attempt
	Retry     RetryPolicy
	UserAgent string // empty keeps Go's default
	BodyLimit int    // characters kept for diagnostics

	// Transport is the base round tripper; nil clones http.DefaultTransport.
	Transport http.RoundTripper
}

func NewHTTPOpener(logger *zap.Logger, timeout time.Duration, retry RetryPolicy) *HTTPOpener {
	return &HTTPOpener{
		Logger:    logger,
		Timeout:   timeout,
		Retry:     retry,
		BodyLimit: 1000,
	}
}

func (o *HTTPOpener) Name() string { return "http" }

func (o *HTTPOpener) Open(ctx context.Context) (Session, error) {
	base := o.Transport
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}
	limit := o.BodyLimit
	if limit <= 0 {
		limit = 1000
	}
	return &httpSession{
		client: &http.Client{
			Transport: &RetryTransport{
				Base:           base,
				Policy:         o.Retry,
				AttemptTimeout: o.Timeout,
				Logger:         o.Logger,
			},
		},
		userAgent: o.UserAgent,
		readLimit: int64(limit * utf8.UTFMax),
	}, nil
}

type httpSession struct {
	client    *http.Client
	userAgent string
	readLimit int64
	closeOnce sync.Once
}

func (s *httpSession) Navigate(ctx context.Context, target string) (*Navigation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return &Navigation{Elapsed: elapsed}, err
	}
	defer resp.Body.Close()

	nav := &Navigation{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeader(resp.Header),
		Elapsed:    elapsed,
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, s.readLimit))
	nav.Body = func(context.Context) (string, error) {
		if readErr != nil {
			return "", fmt.Errorf("%w: %v", ErrBodyUnavailable, readErr)
		}
		return string(raw), nil
	}
	return nav, nil
}

func (s *httpSession) Close() error {
	s.closeOnce.Do(s.client.CloseIdleConnections)
	return nil
}

func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[strings.ToLower(k)] = strings.Join(vs, ", ")
	}
	return out
}
