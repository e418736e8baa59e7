package runner

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/smokecheck/internal/domain"
	"github.com/hamed0406/smokecheck/internal/notify"
	"github.com/hamed0406/smokecheck/internal/probe"
)

func newRunner(o probe.Opener, n notify.Notifier, out *bytes.Buffer) *Runner {
	return New(zap.NewNop(), o, n, out)
}

func TestRun_PassNotifiesAndReleasesOnce(t *testing.T) {
	sess := &fakeSession{nav: &probe.Navigation{StatusCode: 200, Elapsed: 10 * time.Millisecond}}
	n := &recordingNotifier{}
	var out bytes.Buffer

	res := newRunner(&fakeOpener{sess: sess}, n, &out).Run(context.Background(), req)

	assert.True(t, res.Succeeded)
	assert.Equal(t, domain.ExitPass, res.ExitCode())
	assert.Equal(t, 1, sess.closes)
	assert.Equal(t, req.URL, sess.navigated)
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "passed")
	assert.Contains(t, out.String(), "HTTP 200 returned for https://example.com")
}

func TestRun_HTTPErrorReadsBodyBeforeRelease(t *testing.T) {
	sess := &fakeSession{}
	sess.nav = &probe.Navigation{
		StatusCode: 404,
		Headers:    map[string]string{"server": "test"},
		Body: func(context.Context) (string, error) {
			if sess.closes > 0 {
				return "", errors.New("session already closed")
			}
			return "not here", nil
		},
	}
	n := &recordingNotifier{}
	var out bytes.Buffer

	res := newRunner(&fakeOpener{sess: sess}, n, &out).Run(context.Background(), req)

	assert.Equal(t, domain.ReasonHTTPError, res.FailureReason)
	require.NotNil(t, res.Diagnostics.BodyExcerpt)
	assert.Equal(t, "not here", *res.Diagnostics.BodyExcerpt)
	assert.Equal(t, 1, sess.closes)
	require.Len(t, n.msgs, 1)
	assert.Equal(t, "❌ Smoke test failed: HTTP 404 for https://example.com.", n.msgs[0])
}

func TestRun_FetchErrorStillNotifies(t *testing.T) {
	sess := &fakeSession{nav: &probe.Navigation{}, err: errRefused}
	n := &recordingNotifier{}
	var out bytes.Buffer

	res := newRunner(&fakeOpener{sess: sess}, n, &out).Run(context.Background(), req)

	assert.False(t, res.Succeeded)
	assert.Nil(t, res.StatusCode)
	assert.Equal(t, domain.ReasonNetworkError, res.FailureReason)
	assert.Equal(t, 1, sess.closes)
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "error while requesting")
}

func TestRun_OpenFailureIsAFailedResult(t *testing.T) {
	o := &fakeOpener{openErr: errors.New("exec: \"google-chrome\": executable file not found in $PATH")}
	n := &recordingNotifier{}
	var out bytes.Buffer

	res := newRunner(o, n, &out).Run(context.Background(), req)

	assert.Equal(t, domain.ReasonNetworkError, res.FailureReason)
	assert.Contains(t, res.Error, "open fake session")
	assert.Len(t, n.msgs, 1)
}

func TestRun_PanicMidNavigationStillReleases(t *testing.T) {
	sess := &fakeSession{panicMsg: "driver crashed"}
	r := newRunner(&fakeOpener{sess: sess}, nil, &bytes.Buffer{})

	assert.Panics(t, func() { r.Run(context.Background(), req) })
	assert.Equal(t, 1, sess.closes)
}

func TestRun_NotifierErrorDoesNotMaskOutcome(t *testing.T) {
	for _, code := range []int{200, 503} {
		sess := &fakeSession{nav: &probe.Navigation{StatusCode: code}}
		n := &recordingNotifier{err: notify.ErrWebhookStatus}
		var out bytes.Buffer

		res := newRunner(&fakeOpener{sess: sess}, n, &out).Run(context.Background(), req)

		assert.Equal(t, code < 400, res.Succeeded)
		assert.Contains(t, out.String(), "Error sending Slack notification")
	}
}

func TestRun_DisabledNotifierMakesNoCall(t *testing.T) {
	sess := &fakeSession{nav: &probe.Navigation{StatusCode: 500}}
	var out bytes.Buffer
	r := newRunner(&fakeOpener{sess: sess}, notify.Disabled{Out: &out}, &out)

	res := r.Run(context.Background(), req)

	assert.Equal(t, domain.ExitFail, res.ExitCode())
	assert.Contains(t, out.String(), "skipping Slack notification")
}

func TestRun_CompactStyle(t *testing.T) {
	sess := &fakeSession{nav: &probe.Navigation{StatusCode: 200}}
	n := &recordingNotifier{}
	r := newRunner(&fakeOpener{sess: sess}, n, &bytes.Buffer{})
	r.Style = notify.Compact

	r.Run(context.Background(), req)

	require.Len(t, n.msgs, 1)
	assert.Equal(t, "OK — 200 — example.com", n.msgs[0])
}

func TestRun_DNSOnlyForTransportFailures(t *testing.T) {
	calls := 0
	dns := func(context.Context, string) probe.DNSStatus {
		calls++
		return probe.DNSStatus{Domain: "example.com", Class: probe.DNSNXDomain}
	}

	r := newRunner(&fakeOpener{sess: &fakeSession{nav: &probe.Navigation{StatusCode: 404}}}, nil, &bytes.Buffer{})
	r.DNS = dns
	r.Run(context.Background(), req)
	assert.Equal(t, 0, calls)

	r = newRunner(&fakeOpener{sess: &fakeSession{err: errRefused}}, nil, &bytes.Buffer{})
	r.DNS = dns
	res := r.Run(context.Background(), req)
	assert.Equal(t, 1, calls)
	require.NotNil(t, res.Diagnostics)
	assert.Equal(t, probe.DNSNXDomain, res.Diagnostics.DNSClass)
}

func TestRun_Idempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		sess := &fakeSession{nav: &probe.Navigation{StatusCode: 404}}
		res := newRunner(&fakeOpener{sess: sess}, nil, &bytes.Buffer{}).Run(context.Background(), req)
		assert.Equal(t, domain.ExitFail, res.ExitCode())
	}
}
