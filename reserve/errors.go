package reserve

import "errors"

var (
	// ErrReserved indicates an outpoint already held by an unexpired reservation.
	ErrReserved = errors.New("reserve: outpoint already reserved")

	// ErrInvalidOutpoint indicates an empty or malformed "txid:vout" key.
	ErrInvalidOutpoint = errors.New("reserve: invalid outpoint")
)
