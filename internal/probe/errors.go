package probe

import (
	"context"
	"errors"
	"net"

	"github.com/hamed0406/smokecheck/internal/domain"
)

// Classify maps a fetch error onto a failure reason.
func Classify(err error) domain.FailureReason {
	if err == nil || errors.Is(err, ErrNoResponse) {
		return domain.ReasonNoResponse
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ReasonTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return domain.ReasonTimeout
	}
	return domain.ReasonNetworkError
}
