package runner

import (
	"context"
	"errors"

	"github.com/hamed0406/smokecheck/internal/probe"
)

type fakeSession struct {
	nav       *probe.Navigation
	err       error
	panicMsg  string
	closes    int
	navigated string
}

func (s *fakeSession) Navigate(_ context.Context, target string) (*probe.Navigation, error) {
	s.navigated = target
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.nav, s.err
}

func (s *fakeSession) Close() error {
	s.closes++
	return nil
}

type fakeOpener struct {
	sess    *fakeSession
	openErr error
	opens   int
}

func (o *fakeOpener) Name() string { return "fake" }

func (o *fakeOpener) Open(context.Context) (probe.Session, error) {
	o.opens++
	if o.openErr != nil {
		return nil, o.openErr
	}
	return o.sess, nil
}

type recordingNotifier struct {
	msgs []string
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	n.msgs = append(n.msgs, text)
	return n.err
}

var errRefused = errors.New("dial tcp 127.0.0.1:1: connect: connection refused")

func bodyOf(s string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return s, nil }
}

func failingBody(context.Context) (string, error) {
	return "", probe.ErrBodyUnavailable
}
