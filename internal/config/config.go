package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hamed0406/smokecheck/internal/domain"
)

type Mode string

const (
	ModeBrowser Mode = "browser" // headless Chrome navigation
	ModeHTTP    Mode = "http"    // plain GET with retries
)

const (
	StyleVerbose = "verbose"
	StyleCompact = "compact"
)

// DefaultUserAgent is a desktop Chrome string; some targets block headless agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Viper keys.
const (
	KeyURL               = "url"
	KeyWebhookURL        = "webhook_url"
	KeyMode              = "mode"
	KeyMessageStyle      = "message_style"
	KeyUserAgent         = "user_agent"
	KeyChromePath        = "chrome_path"
	KeyNavigationTimeout = "navigation_timeout"
	KeyLoadTimeout       = "load_timeout"
	KeyHTTPTimeout       = "http_timeout"
	KeyNotifyTimeout     = "notify_timeout"
	KeyRetryAttempts     = "retry_attempts"
	KeyRetryBackoff      = "retry_backoff"
	KeyBodyLimit         = "body_limit"
	KeyLogDir            = "log_dir"
	KeyLogLevel          = "log_level"
)

// envNames maps each key to the environment variable it is read from.
var envNames = map[string]string{
	KeyURL:               "URL",
	KeyWebhookURL:        "SLACK_WEBHOOK_URL",
	KeyMode:              "SMOKE_MODE",
	KeyMessageStyle:      "SMOKE_MESSAGE_STYLE",
	KeyUserAgent:         "SMOKE_USER_AGENT",
	KeyChromePath:        "CHROME_PATH",
	KeyNavigationTimeout: "NAVIGATION_TIMEOUT",
	KeyLoadTimeout:       "LOAD_TIMEOUT",
	KeyHTTPTimeout:       "HTTP_TIMEOUT",
	KeyNotifyTimeout:     "NOTIFY_TIMEOUT",
	KeyRetryAttempts:     "RETRY_ATTEMPTS",
	KeyRetryBackoff:      "RETRY_BACKOFF",
	KeyBodyLimit:         "BODY_LIMIT",
	KeyLogDir:            "LOG_DIR",
	KeyLogLevel:          "LOG_LEVEL",
}

type Config struct {
	URL               string        // target to check
	WebhookURL        string        // Slack-compatible incoming webhook; empty disables notifications
	Mode              Mode          // browser or http
	MessageStyle      string        // verbose or compact
	UserAgent         string        // sent in both modes
	ChromePath        string        // empty searches PATH
	NavigationTimeout time.Duration // browser navigation budget
	LoadTimeout       time.Duration // best-effort wait for the load event
	HTTPTimeout       time.Duration // http mode client timeout
	NotifyTimeout     time.Duration // webhook POST budget
	RetryAttempts     int           // extra attempts on retryable statuses (http mode)
	RetryBackoff      time.Duration // first backoff interval, doubled per retry
	BodyLimit         int           // characters of body kept for diagnostics
	LogDir            string        // empty logs JSON to stderr
	LogLevel          string
}

var (
	ErrMissingURL   = errors.New("URL is required")
	ErrInvalidURL   = errors.New("URL must be an absolute http(s) URL")
	ErrInvalidMode  = errors.New("mode must be browser or http")
	ErrInvalidStyle = errors.New("message style must be verbose or compact")
)

// Error is returned for any invalid or missing configuration value.
// It is fatal and always reported before any network call.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", envNames[e.Key], e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyWebhookURL, "")
	v.SetDefault(KeyMode, string(ModeBrowser))
	v.SetDefault(KeyMessageStyle, StyleVerbose)
	v.SetDefault(KeyUserAgent, DefaultUserAgent)
	v.SetDefault(KeyChromePath, "")
	v.SetDefault(KeyNavigationTimeout, 45*time.Second)
	v.SetDefault(KeyLoadTimeout, 30*time.Second)
	v.SetDefault(KeyHTTPTimeout, 30*time.Second)
	v.SetDefault(KeyNotifyTimeout, 15*time.Second)
	v.SetDefault(KeyRetryAttempts, 2)
	v.SetDefault(KeyRetryBackoff, 500*time.Millisecond)
	v.SetDefault(KeyBodyLimit, 1000)
	v.SetDefault(KeyLogDir, "")
	v.SetDefault(KeyLogLevel, "info")
}

// New returns a viper instance with defaults and environment bindings.
// Empty environment variables count as unset.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	for key, env := range envNames {
		_ = v.BindEnv(key, env)
	}
	return v
}

// EnvName returns the environment variable backing key.
func EnvName(key string) string { return envNames[key] }

// FromEnv loads configuration from the process environment only.
func FromEnv() (Config, error) {
	return Load(New())
}

// Load resolves and validates configuration from v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		URL:               strings.TrimSpace(v.GetString(KeyURL)),
		WebhookURL:        strings.TrimSpace(v.GetString(KeyWebhookURL)),
		Mode:              Mode(strings.ToLower(strings.TrimSpace(v.GetString(KeyMode)))),
		MessageStyle:      strings.ToLower(strings.TrimSpace(v.GetString(KeyMessageStyle))),
		UserAgent:         v.GetString(KeyUserAgent),
		ChromePath:        strings.TrimSpace(v.GetString(KeyChromePath)),
		NavigationTimeout: v.GetDuration(KeyNavigationTimeout),
		LoadTimeout:       v.GetDuration(KeyLoadTimeout),
		HTTPTimeout:       v.GetDuration(KeyHTTPTimeout),
		NotifyTimeout:     v.GetDuration(KeyNotifyTimeout),
		RetryAttempts:     v.GetInt(KeyRetryAttempts),
		RetryBackoff:      v.GetDuration(KeyRetryBackoff),
		BodyLimit:         v.GetInt(KeyBodyLimit),
		LogDir:            v.GetString(KeyLogDir),
		LogLevel:          v.GetString(KeyLogLevel),
	}

	if cfg.URL == "" {
		return cfg, &Error{Key: KeyURL, Err: ErrMissingURL}
	}
	if !IsValidHTTPURL(cfg.URL) {
		return cfg, &Error{Key: KeyURL, Err: fmt.Errorf("%w: %q", ErrInvalidURL, cfg.URL)}
	}
	switch cfg.Mode {
	case ModeBrowser, ModeHTTP:
	default:
		return cfg, &Error{Key: KeyMode, Err: fmt.Errorf("%w: %q", ErrInvalidMode, cfg.Mode)}
	}
	switch cfg.MessageStyle {
	case StyleVerbose, StyleCompact:
	default:
		return cfg, &Error{Key: KeyMessageStyle, Err: fmt.Errorf("%w: %q", ErrInvalidStyle, cfg.MessageStyle)}
	}

	// Non-positive budgets fall back to the defaults rather than disabling timeouts.
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = 30 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 15 * time.Second
	}
	if cfg.RetryAttempts < 0 {
		cfg.RetryAttempts = 0
	}
	if cfg.RetryBackoff < 0 {
		cfg.RetryBackoff = 0
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 1000
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return cfg, nil
}

// Request builds the immutable per-invocation request.
func (c Config) Request() domain.CheckRequest {
	return domain.CheckRequest{URL: c.URL, WebhookURL: c.WebhookURL}
}

// NotificationsEnabled reports whether a webhook is configured.
func (c Config) NotificationsEnabled() bool {
	return c.WebhookURL != ""
}

func IsValidHTTPURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
