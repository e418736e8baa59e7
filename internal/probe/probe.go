package probe

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"time"
	"unicode/utf8"
)

var (
	// ErrNoResponse means the fetch finished without a response object.
	ErrNoResponse = errors.New("no response received")
	// ErrBodyUnavailable means the response body could not be captured.
	ErrBodyUnavailable = errors.New("response body unavailable")
)

// Navigation is what a single request or page load produced.
//
// On a fetch error a Navigation may still be returned so the caller can
// report Elapsed; StatusCode is 0 in that case.
type Navigation struct {
	StatusCode int
	Headers    map[string]string
	Elapsed    time.Duration

	// Body fetches the response body. It may fail; callers must treat
	// the body as optional. Nil when no body can be offered at all.
	Body func(ctx context.Context) (string, error)
}

// Session is one acquired network resource: a browser or an HTTP client.
// Close must be called exactly once, on every path.
type Session interface {
	Navigate(ctx context.Context, target string) (*Navigation, error)
	Close() error
}

// Opener acquires sessions. Implementations: HTTPOpener, BrowserOpener.
type Opener interface {
	Open(ctx context.Context) (Session, error)
	Name() string
}

// Truncate keeps at most limit characters of s.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// SortedKeys returns header names in a stable order for printing.
func SortedKeys(h map[string]string) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ExtractHost pulls the hostname from a URL string.
func ExtractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
