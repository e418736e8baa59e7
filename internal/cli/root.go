package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hamed0406/smokecheck/internal/config"
	"github.com/hamed0406/smokecheck/internal/domain"
	"github.com/hamed0406/smokecheck/internal/logging"
	"github.com/hamed0406/smokecheck/internal/notify"
	"github.com/hamed0406/smokecheck/internal/probe"
	"github.com/hamed0406/smokecheck/internal/runner"
)

// Version is set at build time.
var Version = "dev"

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"url":                config.KeyURL,
	"webhook":            config.KeyWebhookURL,
	"mode":               config.KeyMode,
	"style":              config.KeyMessageStyle,
	"user-agent":         config.KeyUserAgent,
	"chrome-path":        config.KeyChromePath,
	"navigation-timeout": config.KeyNavigationTimeout,
	"load-timeout":       config.KeyLoadTimeout,
	"http-timeout":       config.KeyHTTPTimeout,
	"notify-timeout":     config.KeyNotifyTimeout,
	"retry-attempts":     config.KeyRetryAttempts,
	"retry-backoff":      config.KeyRetryBackoff,
	"log-dir":            config.KeyLogDir,
	"log-level":          config.KeyLogLevel,
}

// NewRootCmd creates the smokecheck command. The check outcome is written
// to exitCode; returned errors are configuration or setup failures.
func NewRootCmd(exitCode *int) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "smokecheck",
		Short: "Run one smoke check against a URL",
		Long: "smokecheck fetches a URL once, with headless Chrome or a plain HTTP client,\n" +
			"passes when the status is below 400, and optionally posts the outcome to a\n" +
			"Slack-compatible webhook. Exit code 0 means pass, 1 means fail.",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			*exitCode = run(cmd.Context(), cfg, cmd.OutOrStdout())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "Optional YAML config file")
	f.String("url", "", "Target URL (env URL)")
	f.String("webhook", "", "Slack-compatible webhook URL (env SLACK_WEBHOOK_URL)")
	f.String("mode", string(config.ModeBrowser), "Fetch strategy: browser or http (env SMOKE_MODE)")
	f.String("style", config.StyleVerbose, "Notification style: verbose or compact (env SMOKE_MESSAGE_STYLE)")
	f.String("user-agent", config.DefaultUserAgent, "User-Agent sent to the target")
	f.String("chrome-path", "", "Chrome/Chromium binary; empty searches PATH (env CHROME_PATH)")
	f.Duration("navigation-timeout", 45*time.Second, "Browser navigation timeout")
	f.Duration("load-timeout", 30*time.Second, "Best-effort wait for the page load event")
	f.Duration("http-timeout", 30*time.Second, "HTTP mode timeout per attempt")
	f.Duration("notify-timeout", 15*time.Second, "Webhook POST timeout")
	f.Int("retry-attempts", 2, "HTTP mode retries on 429/500/502/503/504")
	f.Duration("retry-backoff", 500*time.Millisecond, "First retry backoff, doubled per retry")
	f.String("log-dir", "", "Directory for rotating JSON logs; empty logs to stderr")
	f.String("log-level", "info", "Log level: debug, info, warn, error")

	return cmd
}

func newViper(flags *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := config.New()
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return v, nil
}

// run performs the check and returns the exit code.
func run(ctx context.Context, cfg config.Config, out io.Writer) int {
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(out, "Error: cannot initialize logging: %v\n", err)
		return domain.ExitFail
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	r := runner.New(logger, newOpener(cfg, logger), notify.New(cfg.WebhookURL, cfg.NotifyTimeout, out, logger), out)
	r.Style = notify.Style(cfg.MessageStyle)
	r.BodyLimit = cfg.BodyLimit
	r.NotifyTimeout = cfg.NotifyTimeout
	r.DNS = probe.NewDNSChecker().Check

	return r.Run(ctx, cfg.Request()).ExitCode()
}

func newOpener(cfg config.Config, logger *zap.Logger) probe.Opener {
	if cfg.Mode == config.ModeHTTP {
		o := probe.NewHTTPOpener(logger, cfg.HTTPTimeout, probe.RetryPolicy{
			MaxRetries:     cfg.RetryAttempts,
			InitialBackoff: cfg.RetryBackoff,
		})
		o.UserAgent = cfg.UserAgent
		o.BodyLimit = cfg.BodyLimit
		return o
	}
	o := probe.NewBrowserOpener(logger, cfg.UserAgent, cfg.NavigationTimeout, cfg.LoadTimeout)
	o.ExecPath = cfg.ChromePath
	return o
}

// Run executes the command with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	code := domain.ExitPass // unchanged when only --help or --version ran
	cmd := NewRootCmd(&code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) && errors.Is(err, config.ErrMissingURL) {
			fmt.Fprintln(stderr, "Error: Please provide the URL as environment variable 'URL'.")
		} else {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return domain.ExitFail
	}
	return code
}

// Execute runs the root command against the process environment.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
