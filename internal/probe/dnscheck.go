package probe

import (
	"context"
	"errors"
	"net"
	"strings"
)

const (
	DNSResolves    = "RESOLVES"
	DNSNXDomain    = "NXDOMAIN"
	DNSNoARecord   = "NO_A_RECORD"
	DNSServfail    = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName = "INVALID_NAME"
)

type DNSStatus struct {
	Domain        string
	HasAOrAAAA    bool
	IPs           []net.IP
	CNAME         string
	HasNS         bool
	Nameservers   []string
	Class         string
	ResolverError string
}

// Resolver is the subset of *net.Resolver used for classification.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupNS(ctx context.Context, name string) ([]*net.NS, error)
}

// LookupDNS classifies how domain resolves. It explains transport failures;
// it never decides pass or fail on its own.
func LookupDNS(ctx context.Context, r Resolver, domain string) DNSStatus {
	s := DNSStatus{Domain: strings.TrimSpace(domain)}
	switch {
	case s.Domain == "" || strings.Contains(s.Domain, "://"):
		s.Class = DNSInvalidName
		return s
	case net.ParseIP(s.Domain) != nil:
		s.IPs = []net.IP{net.ParseIP(s.Domain)}
		s.HasAOrAAAA = true
		s.Class = DNSResolves
		return s
	}

	ips, ipErr := r.LookupIP(ctx, "ip", s.Domain)
	if ipErr != nil {
		s.ResolverError = ipErr.Error()
	}
	s.IPs = ips
	s.HasAOrAAAA = ipErr == nil && len(ips) > 0

	if cname, err := r.LookupCNAME(ctx, s.Domain); err == nil {
		if cname = strings.TrimSuffix(cname, "."); !strings.EqualFold(cname, s.Domain) {
			s.CNAME = cname
		}
	}
	if ns, err := r.LookupNS(ctx, s.Domain); err == nil {
		for _, n := range ns {
			s.Nameservers = append(s.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
		s.HasNS = len(s.Nameservers) > 0
	}

	s.Class = dnsClass(s, ipErr)
	return s
}

// dnsClass picks the class from what the lookups found. A name with
// nameservers but no addresses is NO_A_RECORD rather than NXDOMAIN; a
// temporary resolver failure stays SERVFAIL_or_TIMEOUT either way.
func dnsClass(s DNSStatus, ipErr error) string {
	var de *net.DNSError
	isDNS := errors.As(ipErr, &de)
	notFound := isDNS && de.IsNotFound
	switch {
	case s.HasAOrAAAA:
		return DNSResolves
	case isDNS && !notFound && (de.IsTemporary || de.Timeout()):
		return DNSServfail
	case s.HasNS:
		return DNSNoARecord
	case ipErr != nil && !notFound:
		return DNSServfail
	default:
		return DNSNXDomain
	}
}
