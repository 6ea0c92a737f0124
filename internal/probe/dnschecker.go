package probe

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"
)

// DNS classes reported in CheckResult.Message.
const (
	DNSResolves     = "RESOLVES"
	DNSNXDomain     = "NXDOMAIN"
	DNSTemporary    = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName  = "INVALID_NAME"
	defaultDNSLimit = 3 * time.Second
)

// Resolver is the subset of *net.Resolver the DNS checker needs.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

type DNSChecker struct {
	Resolver Resolver
	Timeout  time.Duration
}

func NewDNSChecker() *DNSChecker {
	return &DNSChecker{Resolver: net.DefaultResolver, Timeout: defaultDNSLimit}
}

// Check passes when the target's host resolves to at least one address.
func (d *DNSChecker) Check(ctx context.Context, target string) CheckResult {
	start := time.Now()
	host := extractHost(target)
	if host == "" || strings.Contains(host, "://") {
		return CheckResult{Name: "DNS", Message: DNSInvalidName, CheckedAt: start}
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultDNSLimit
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ips, err := d.Resolver.LookupIP(ctx, "ip", host)
	res := CheckResult{
		Name:      "DNS",
		LatencyMS: time.Since(start).Seconds() * 1000,
		CheckedAt: start,
	}
	switch {
	case err == nil && len(ips) > 0:
		res.Success = true
		res.Message = DNSResolves
	case err != nil:
		res.Message = classifyDNSError(err)
	default:
		res.Message = DNSNXDomain
	}
	return res
}

func classifyDNSError(err error) string {
	var de *net.DNSError
	if errors.As(err, &de) && de.IsNotFound {
		return DNSNXDomain
	}
	return DNSTemporary
}

func extractHost(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Hostname() == "" {
		return strings.TrimSpace(raw)
	}
	return u.Hostname()
}
