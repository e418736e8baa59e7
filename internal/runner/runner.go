package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/smokecheck/internal/domain"
	"github.com/hamed0406/smokecheck/internal/notify"
	"github.com/hamed0406/smokecheck/internal/probe"
)

// Runner performs exactly one check: fetch, evaluate, report, notify.
type Runner struct {
	Logger        *zap.Logger
	Opener        probe.Opener
	Notifier      notify.Notifier
	Style         notify.Style
	Out           io.Writer
	BodyLimit     int
	NotifyTimeout time.Duration

	// DNS, when set, explains transport failures. It never changes the outcome.
	DNS func(ctx context.Context, target string) probe.DNSStatus
}

func New(
	logger *zap.Logger,
	opener probe.Opener,
	notifier notify.Notifier,
	out io.Writer,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		Logger:        logger,
		Opener:        opener,
		Notifier:      notifier,
		Style:         notify.Verbose,
		Out:           out,
		BodyLimit:     DefaultBodyLimit,
		NotifyTimeout: 15 * time.Second,
	}
}

// Run checks req.URL once. The session is released before the notification
// goes out, and a failed notification never changes the returned result.
func (r *Runner) Run(ctx context.Context, req domain.CheckRequest) domain.CheckResult {
	r.Logger.Info("check_started",
		zap.String("url", req.URL),
		zap.String("mode", r.Opener.Name()),
		zap.Bool("notify", req.WebhookURL != ""),
	)

	res := r.check(ctx, req)
	Report(r.Out, res)

	fields := []zap.Field{
		zap.String("url", res.URL),
		zap.Bool("up", res.Succeeded),
		zap.Float64("elapsed_s", res.ElapsedSeconds()),
		zap.String("reason", string(res.FailureReason)),
	}
	if res.StatusCode != nil {
		fields = append(fields, zap.Int("status", *res.StatusCode))
	}
	if res.Error != "" {
		fields = append(fields, zap.String("error", res.Error))
	}
	r.Logger.Info("check_finished", fields...)

	r.notify(ctx, res)
	return res
}

func (r *Runner) check(ctx context.Context, req domain.CheckRequest) domain.CheckResult {
	sess, err := r.Opener.Open(ctx)
	if err != nil {
		err = fmt.Errorf("open %s session: %w", r.Opener.Name(), err)
		return r.explain(ctx, Evaluate(ctx, req, nil, err, r.BodyLimit))
	}
	defer func() {
		if err := sess.Close(); err != nil {
			r.Logger.Warn("session_close_error", zap.String("mode", r.Opener.Name()), zap.Error(err))
		}
	}()

	nav, err := sess.Navigate(ctx, req.URL)
	return r.explain(ctx, Evaluate(ctx, req, nav, err, r.BodyLimit))
}

// explain attaches DNS diagnostics to transport failures.
func (r *Runner) explain(ctx context.Context, res domain.CheckResult) domain.CheckResult {
	if r.DNS == nil {
		return res
	}
	if res.FailureReason != domain.ReasonNetworkError && res.FailureReason != domain.ReasonTimeout {
		return res
	}
	dns := r.DNS(ctx, res.URL)
	r.Logger.Info("dns_check",
		zap.String("domain", dns.Domain),
		zap.String("class", dns.Class),
		zap.Bool("has_a_or_aaaa", dns.HasAOrAAAA),
		zap.Strings("nameservers", dns.Nameservers),
		zap.String("cname", dns.CNAME),
		zap.String("resolver_error", dns.ResolverError),
	)
	if res.Diagnostics == nil {
		res.Diagnostics = &domain.Diagnostics{}
	}
	res.Diagnostics.DNSClass = dns.Class
	return res
}

func (r *Runner) notify(ctx context.Context, res domain.CheckResult) {
	if r.Notifier == nil {
		return
	}
	msg := notify.Format(r.Style, res)

	nctx, cancel := ctx, context.CancelFunc(func() {})
	if r.NotifyTimeout > 0 {
		nctx, cancel = context.WithTimeout(ctx, r.NotifyTimeout)
	}
	defer cancel()
	if err := r.Notifier.Notify(nctx, msg); err != nil {
		fmt.Fprintf(r.Out, "Error sending Slack notification: %v\n", err)
		r.Logger.Warn("notify_failed", zap.String("url", res.URL), zap.Error(err))
		return
	}
	r.Logger.Debug("notify_done", zap.String("url", res.URL))
}
