package wallet

import "errors"

var (
	// ErrInvalidKey indicates a malformed, checksum-invalid or wrong-network secret.
	ErrInvalidKey = errors.New("wallet: invalid private key")

	// ErrInvalidAddress indicates a malformed or wrong-network address.
	ErrInvalidAddress = errors.New("wallet: invalid address")

	// ErrInvalidNetwork indicates an unknown or missing network configuration.
	ErrInvalidNetwork = errors.New("wallet: invalid network")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("wallet: required parameter is nil")

	// ErrDecryptionFailed indicates wrong password or corrupted export data.
	ErrDecryptionFailed = errors.New("wallet: secret decryption failed (wrong password or corrupted data)")

	// ErrChecksumMismatch indicates the export checksum did not verify after decryption.
	ErrChecksumMismatch = errors.New("wallet: secret checksum mismatch")

	// ErrEmptySecret indicates an empty secret was passed for export.
	ErrEmptySecret = errors.New("wallet: empty secret")
)
