package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const contentTimeout = 10 * time.Second

// BrowserOpener launches headless Chrome through the DevTools protocol.
// Each session owns one browser process.
type BrowserOpener struct {
	Logger            *zap.Logger
	UserAgent         string
	NavigationTimeout time.Duration
	LoadTimeout       time.Duration // best-effort; missing it is not a failure
	ExecPath          string        // empty lets chromedp search PATH
}

func NewBrowserOpener(logger *zap.Logger, userAgent string, nav, load time.Duration) *BrowserOpener {
	return &BrowserOpener{
		Logger:            logger,
		UserAgent:         userAgent,
		NavigationTimeout: nav,
		LoadTimeout:       load,
	}
}

func (o *BrowserOpener) Name() string { return "browser" }

func (o *BrowserOpener) Open(ctx context.Context) (Session, error) {
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.UserAgent(o.UserAgent))
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	if os.Geteuid() == 0 {
		// Chrome refuses to start as root with the sandbox on, which is the norm in CI containers.
		opts = append(opts, chromedp.NoSandbox)
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, _ := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar().Debugf),
		chromedp.WithErrorf(logger.Sugar().Debugf),
	)

	// Start the browser now so a missing binary fails here, not mid-navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		return nil, multierr.Append(fmt.Errorf("launch browser: %w", err), release(tabCtx, cancelAlloc))
	}
	logger.Debug("browser_started", zap.String("user_agent", o.UserAgent))

	return &browserSession{
		logger:      logger,
		tab:         tabCtx,
		cancelAlloc: cancelAlloc,
		navTimeout:  o.NavigationTimeout,
		loadTimeout: o.LoadTimeout,
	}, nil
}

type browserSession struct {
	logger      *zap.Logger
	tab         context.Context
	cancelAlloc context.CancelFunc
	navTimeout  time.Duration
	loadTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

func (s *browserSession) Navigate(ctx context.Context, target string) (*Navigation, error) {
	navCtx, cancel := s.bounded(ctx, s.navTimeout)
	defer cancel()

	start := time.Now()
	resp, err := chromedp.RunResponse(navCtx, chromedp.Navigate(target))
	if err != nil {
		return &Navigation{Elapsed: time.Since(start)}, fmt.Errorf("navigate %s: %w", target, err)
	}

	loadCtx, cancelLoad := s.bounded(ctx, s.loadTimeout)
	var ready bool
	if err := chromedp.Run(loadCtx, chromedp.Poll(`document.readyState === "complete"`, &ready)); err != nil {
		s.logger.Info("load_wait_incomplete", zap.String("url", target), zap.Error(err))
	}
	cancelLoad()

	elapsed := time.Since(start)
	if resp == nil {
		return &Navigation{Elapsed: elapsed}, ErrNoResponse
	}
	return &Navigation{
		StatusCode: int(resp.Status),
		Headers:    flattenNetworkHeaders(resp.Headers),
		Elapsed:    elapsed,
		Body:       s.content,
	}, nil
}

// content returns the rendered document, which is what a browser user would see.
func (s *browserSession) content(ctx context.Context) (string, error) {
	cctx, cancel := s.bounded(ctx, contentTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(cctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBodyUnavailable, err)
	}
	return html, nil
}

// bounded derives a timeout context from the tab that also ends with ctx.
func (s *browserSession) bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	c, cancel := context.WithTimeout(s.tab, d)
	stop := context.AfterFunc(ctx, cancel)
	return c, func() {
		stop()
		cancel()
	}
}

func (s *browserSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = release(s.tab, s.cancelAlloc)
		s.logger.Debug("browser_closed", zap.Error(s.closeErr))
	})
	return s.closeErr
}

// release closes the tab and then the allocator that owns the browser
// process. chromedp.Cancel cancels the tab context itself; the tab's own
// cancel func must not run after it, since it would wait on the allocation a
// second time and block when the browser never started.
func release(tab context.Context, cancelAlloc context.CancelFunc) error {
	err := ignoreCanceled(chromedp.Cancel(tab))
	cancelAlloc()
	return err
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func flattenNetworkHeaders(h network.Headers) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = fmt.Sprint(v)
	}
	return out
}
