package alias

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const (
	// defaultUpstream is the default recursive resolver for DNSSEC queries.
	defaultUpstream = "8.8.8.8:53"

	// dnssecTimeout is the timeout for DNSSEC queries.
	dnssecTimeout = 10 * time.Second

	// edns0BufSize is the EDNS0 UDP buffer size.
	edns0BufSize = 4096
)

// DNSResolver looks up TXT records. Tests substitute their own.
type DNSResolver interface {
	LookupTXT(name string) ([]string, error)
}

// defaultDNSResolver wraps the standard net package.
type defaultDNSResolver struct{}

func (defaultDNSResolver) LookupTXT(name string) ([]string, error) {
	return net.LookupTXT(name)
}

// DefaultDNSResolver is the system resolver. It performs no DNSSEC check.
var DefaultDNSResolver DNSResolver = defaultDNSResolver{}

// DNSSECResolver implements DNSResolver against a validating recursive
// resolver and refuses answers without the AD (Authenticated Data) flag.
type DNSSECResolver struct {
	// Upstream is the recursive resolver address (e.g., "8.8.8.8:53").
	Upstream string
	Timeout  time.Duration
}

var _ DNSResolver = (*DNSSECResolver)(nil)

// NewDNSSECResolver creates a DNSSECResolver. An empty upstream means
// 8.8.8.8:53.
func NewDNSSECResolver(upstream string) *DNSSECResolver {
	if upstream == "" {
		upstream = defaultUpstream
	}
	return &DNSSECResolver{Upstream: upstream, Timeout: dnssecTimeout}
}

// LookupTXT queries name with the DO bit set and joins split strings of
// each TXT record.
func (r *DNSSECResolver) LookupTXT(name string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeTXT)
	msg.RecursionDesired = true
	msg.SetEdns0(edns0BufSize, true)

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = dnssecTimeout
	}
	client := &dns.Client{Timeout: timeout}
	resp, _, err := client.Exchange(msg, r.Upstream)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s TXT: %w", ErrDNSLookupFailed, name, err)
	}
	if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
		return nil, fmt.Errorf("%w: query %s TXT: rcode %s",
			ErrDNSLookupFailed, name, dns.RcodeToString[resp.Rcode])
	}
	if !resp.AuthenticatedData {
		return nil, fmt.Errorf("%w: AD flag not set for %s TXT", ErrDNSSECValidationFailed, name)
	}

	var txts []string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			txts = append(txts, strings.Join(txt.Txt, ""))
		}
	}
	if len(txts) == 0 {
		return nil, fmt.Errorf("%w: no TXT records for %s", ErrDNSLookupFailed, name)
	}
	return txts, nil
}

// Resolve returns the first OpenAlias record for asset published at alias,
// using DefaultDNSResolver.
func Resolve(alias, asset string) (*Record, error) {
	return ResolveWithResolver(alias, asset, DefaultDNSResolver)
}

// ResolveWithResolver is Resolve with an explicit resolver. Malformed oa1:
// records are skipped when a later record for the same asset is valid.
func ResolveWithResolver(alias, asset string, resolver DNSResolver) (*Record, error) {
	name, err := dnsName(alias)
	if err != nil {
		return nil, err
	}
	asset = strings.ToLower(asset)

	txts, err := resolver.LookupTXT(name)
	if err != nil {
		return nil, fmt.Errorf("%w: TXT lookup for %s: %w", ErrDNSLookupFailed, name, err)
	}

	var firstErr error
	for _, txt := range txts {
		if !IsOpenAliasRecord(txt) {
			continue
		}
		rec, err := ParseRecord(txt)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if rec.Asset == asset {
			return rec, nil
		}
	}
	if firstErr != nil {
		return nil, fmt.Errorf("%s: %w", name, firstErr)
	}
	return nil, fmt.Errorf("%w: %s has no oa1:%s record", ErrNoRecord, name, asset)
}
