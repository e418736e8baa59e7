package probe

import (
	"context"
	"net"
	"time"
)

type DNSChecker struct {
	Resolver Resolver
	Timeout  time.Duration
}

func NewDNSChecker() *DNSChecker {
	return &DNSChecker{
		Resolver: &net.Resolver{}, // OS resolver
		Timeout:  3 * time.Second,
	}
}

// Check classifies the host part of target.
func (d *DNSChecker) Check(ctx context.Context, target string) DNSStatus {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	return LookupDNS(ctx, d.Resolver, ExtractHost(target))
}
