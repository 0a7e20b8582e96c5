// Package alias resolves OpenAlias names (for example donate.example.com
// or tips@example.com) to Dogecoin addresses published in DNS TXT records
// of the form
//
//	oa1:doge recipient_address=D...; recipient_name=Example;
//
// The resolved address still has to be validated against the wallet's
// network by the caller.
package alias

import (
	"fmt"
	"strings"
)

const (
	recordPrefix = "oa1:"

	// AssetDoge is the OpenAlias asset tag for Dogecoin.
	AssetDoge = "doge"
)

// Record is one parsed OpenAlias TXT record.
type Record struct {
	Asset       string
	Address     string
	Name        string
	Description string
	Fields      map[string]string
}

// IsOpenAliasRecord reports whether txt starts with the oa1: prefix.
func IsOpenAliasRecord(txt string) bool {
	return strings.HasPrefix(strings.TrimSpace(txt), recordPrefix)
}

// ParseRecord parses an "oa1:<asset> key=value; ..." TXT string. Values
// may be double-quoted to carry ';'. recipient_address is required.
func ParseRecord(txt string) (*Record, error) {
	txt = strings.TrimSpace(txt)
	if !strings.HasPrefix(txt, recordPrefix) {
		return nil, fmt.Errorf("%w: missing %s prefix", ErrInvalidRecord, recordPrefix)
	}
	body := txt[len(recordPrefix):]

	asset, rest, _ := strings.Cut(body, " ")
	asset = strings.ToLower(strings.TrimSpace(asset))
	if asset == "" {
		return nil, fmt.Errorf("%w: missing asset", ErrInvalidRecord)
	}

	fields, err := parseFields(rest)
	if err != nil {
		return nil, err
	}
	rec := &Record{
		Asset:       asset,
		Address:     fields["recipient_address"],
		Name:        fields["recipient_name"],
		Description: fields["tx_description"],
		Fields:      fields,
	}
	if rec.Address == "" {
		return nil, fmt.Errorf("%w: no recipient_address", ErrInvalidRecord)
	}
	return rec, nil
}

// parseFields splits `k=v; k="v;v"; ...` into a map. Later keys win.
func parseFields(s string) (map[string]string, error) {
	fields := make(map[string]string)
	for {
		s = strings.TrimLeft(s, " \t;")
		if s == "" {
			return fields, nil
		}
		key, rest, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("%w: field %q has no value", ErrInvalidRecord, s)
		}
		key = strings.TrimSpace(key)
		if key == "" || strings.ContainsAny(key, " ;\"") {
			return nil, fmt.Errorf("%w: bad key %q", ErrInvalidRecord, key)
		}
		rest = strings.TrimLeft(rest, " \t")

		var value string
		if strings.HasPrefix(rest, `"`) {
			end := strings.IndexByte(rest[1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated quote in %s", ErrInvalidRecord, key)
			}
			value = rest[1 : 1+end]
			rest = rest[2+end:]
		} else {
			value, rest, _ = strings.Cut(rest, ";")
			value = strings.TrimSpace(value)
		}
		fields[key] = value
		s = rest
	}
}

// IsAlias reports whether dest looks like an OpenAlias name rather than a
// base58 address. Base58 never contains '.' or '@'.
func IsAlias(dest string) bool {
	return strings.ContainsAny(dest, ".@")
}

// dnsName maps an alias to the DNS name holding its records:
// user@example.com becomes user.example.com.
func dnsName(alias string) (string, error) {
	alias = strings.TrimSuffix(strings.TrimSpace(alias), ".")
	if strings.Count(alias, "@") > 1 {
		return "", fmt.Errorf("%w: %q", ErrInvalidAlias, alias)
	}
	name := strings.ToLower(strings.Replace(alias, "@", ".", 1))
	if !strings.Contains(name, ".") || strings.HasPrefix(name, ".") || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidAlias, alias)
	}
	return name, nil
}
