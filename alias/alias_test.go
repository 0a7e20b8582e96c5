package alias

import (
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddr = "DH5yaieqoZN36fDVciNyRueRGvGLR3mr7L"

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord(`oa1:doge recipient_address=` + testAddr + `; recipient_name="Shiba; Inu"; tx_description=tips;`)
	require.NoError(t, err)
	assert.Equal(t, AssetDoge, rec.Asset)
	assert.Equal(t, testAddr, rec.Address)
	assert.Equal(t, "Shiba; Inu", rec.Name)
	assert.Equal(t, "tips", rec.Description)
	assert.Len(t, rec.Fields, 3)
}

func TestParseRecord_Invalid(t *testing.T) {
	tests := []string{
		"",
		"v=spf1 -all",
		"oa1:",
		"oa1:doge",
		"oa1:doge recipient_name=x;",
		"oa1:doge recipient_address",
		`oa1:doge recipient_address="` + testAddr,
		"oa1:doge =x; recipient_address=" + testAddr,
	}
	for _, txt := range tests {
		_, err := ParseRecord(txt)
		assert.ErrorIs(t, err, ErrInvalidRecord, "record %q", txt)
	}
}

func TestIsAlias(t *testing.T) {
	assert.True(t, IsAlias("donate.example.com"))
	assert.True(t, IsAlias("tips@example.com"))
	assert.False(t, IsAlias(testAddr))
}

func TestDNSName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"Donate.Example.com.", "donate.example.com", false},
		{"tips@example.com", "tips.example.com", false},
		{"a@b@example.com", "", true},
		{"localhost", "", true},
		{".example.com", "", true},
		{"a..com", "", true},
	}
	for _, tt := range tests {
		got, err := dnsName(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidAlias, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

type mapResolver map[string][]string

func (m mapResolver) LookupTXT(name string) ([]string, error) {
	txts, ok := m[name]
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
	}
	return txts, nil
}

func TestResolveWithResolver(t *testing.T) {
	r := mapResolver{
		"tips.example.com": {
			"v=spf1 -all",
			"oa1:btc recipient_address=1BoatSLRHtKNngkdXEeobR76b53LETtpyT;",
			"oa1:doge recipient_address=" + testAddr + "; recipient_name=Tips;",
		},
		"btc.example.com": {"oa1:btc recipient_address=1BoatSLRHtKNngkdXEeobR76b53LETtpyT;"},
		"bad.example.com": {"oa1:doge recipient_name=nobody;"},
	}

	rec, err := ResolveWithResolver("tips@example.com", "DOGE", r)
	require.NoError(t, err)
	assert.Equal(t, testAddr, rec.Address)
	assert.Equal(t, "Tips", rec.Name)

	_, err = ResolveWithResolver("btc.example.com", AssetDoge, r)
	assert.ErrorIs(t, err, ErrNoRecord)

	_, err = ResolveWithResolver("bad.example.com", AssetDoge, r)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = ResolveWithResolver("missing.example.com", AssetDoge, r)
	assert.ErrorIs(t, err, ErrDNSLookupFailed)

	_, err = ResolveWithResolver("nodots", AssetDoge, r)
	assert.ErrorIs(t, err, ErrInvalidAlias)
}

// startDNSServer serves TXT answers from records over UDP on localhost,
// setting the AD flag when authenticated is true.
func startDNSServer(t *testing.T, records map[string]string, authenticated bool) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &dns.Server{
		PacketConn:        pc,
		NotifyStartedFunc: func() { close(started) },
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(req)
			m.AuthenticatedData = authenticated
			q := req.Question[0]
			if txt, ok := records[q.Name]; ok && q.Qtype == dns.TypeTXT {
				m.Answer = append(m.Answer, &dns.TXT{
					Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeTXT, Class: dns.ClassINET, Ttl: 60},
					Txt: []string{txt[:10], txt[10:]},
				})
			} else {
				m.Rcode = dns.RcodeNameError
			}
			_ = w.WriteMsg(m)
		}),
	}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("dns server did not start")
	}
	return pc.LocalAddr().String()
}

func TestDNSSECResolver_Authenticated(t *testing.T) {
	record := fmt.Sprintf("oa1:doge recipient_address=%s;", testAddr)
	addr := startDNSServer(t, map[string]string{"donate.example.com.": record}, true)

	r := NewDNSSECResolver(addr)
	r.Timeout = 2 * time.Second

	txts, err := r.LookupTXT("donate.example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{record}, txts, "split strings are joined")

	rec, err := ResolveWithResolver("donate.example.com", AssetDoge, r)
	require.NoError(t, err)
	assert.Equal(t, testAddr, rec.Address)

	_, err = r.LookupTXT("nobody.example.com")
	assert.ErrorIs(t, err, ErrDNSLookupFailed)
}

func TestDNSSECResolver_RequiresADFlag(t *testing.T) {
	record := fmt.Sprintf("oa1:doge recipient_address=%s;", testAddr)
	addr := startDNSServer(t, map[string]string{"donate.example.com.": record}, false)

	r := NewDNSSECResolver(addr)
	r.Timeout = 2 * time.Second

	_, err := r.LookupTXT("donate.example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDNSSECValidationFailed))
}

func TestNewDNSSECResolver_Defaults(t *testing.T) {
	r := NewDNSSECResolver("")
	assert.Equal(t, "8.8.8.8:53", r.Upstream)
	assert.Equal(t, 10*time.Second, r.Timeout)
}
