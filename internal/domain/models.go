package domain

import "time"

// FailureReason explains why a check did not pass. Empty on success.
type FailureReason string

const (
	ReasonTimeout      FailureReason = "timeout"
	ReasonNetworkError FailureReason = "network_error"
	ReasonHTTPError    FailureReason = "http_error"
	ReasonNoResponse   FailureReason = "no_response"
)

// CheckRequest is built once per invocation from configuration.
type CheckRequest struct {
	URL        string `json:"url"`
	WebhookURL string `json:"webhook_url,omitempty"` // empty means notifications are disabled
}

// Diagnostics is collected on the failure path only.
type Diagnostics struct {
	Headers     map[string]string `json:"headers,omitempty"`
	BodyExcerpt *string           `json:"body_excerpt"` // nil when the body could not be captured
	DNSClass    string            `json:"dns_class,omitempty"`
}

type CheckResult struct {
	URL           string        `json:"url"`
	StatusCode    *int          `json:"status_code"` // pointer to allow nil
	Elapsed       time.Duration `json:"elapsed"`
	Succeeded     bool          `json:"succeeded"`
	Diagnostics   *Diagnostics  `json:"diagnostics,omitempty"`
	FailureReason FailureReason `json:"failure_reason,omitempty"`
	Error         string        `json:"error,omitempty"`
	CheckedAt     time.Time     `json:"checked_at"`
}
