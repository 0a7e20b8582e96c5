package alias

import "errors"

var (
	// ErrDNSLookupFailed indicates the TXT query could not be answered.
	ErrDNSLookupFailed = errors.New("alias: DNS lookup failed")

	// ErrDNSSECValidationFailed indicates the upstream resolver did not set
	// the AD flag on its answer.
	ErrDNSSECValidationFailed = errors.New("alias: DNSSEC validation failed")

	// ErrNoRecord indicates the name publishes no OpenAlias record for the asset.
	ErrNoRecord = errors.New("alias: no OpenAlias record")

	// ErrInvalidRecord indicates a malformed OpenAlias TXT record.
	ErrInvalidRecord = errors.New("alias: invalid OpenAlias record")

	// ErrInvalidAlias indicates a name that cannot be an OpenAlias.
	ErrInvalidAlias = errors.New("alias: invalid alias")
)
