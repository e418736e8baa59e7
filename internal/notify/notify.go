package notify

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Notifier delivers a human-readable message. Delivery failures are
// returned to the caller, which logs them and moves on.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// New returns a Slack notifier, or Disabled when webhook is empty.
func New(webhook string, timeout time.Duration, out io.Writer, logger *zap.Logger) Notifier {
	if s := NewSlack(webhook, timeout); s != nil {
		return s
	}
	return Disabled{Out: out, Logger: logger}
}

// Disabled is used when no webhook is configured. It makes no network call.
type Disabled struct {
	Out    io.Writer
	Logger *zap.Logger
}

func (d Disabled) Notify(ctx context.Context, text string) error {
	if d.Out != nil {
		fmt.Fprintln(d.Out, "Slack webhook not configured; skipping Slack notification.")
	}
	if d.Logger != nil {
		d.Logger.Info("notify_skipped", zap.String("reason", "webhook_not_configured"))
	}
	return nil
}
