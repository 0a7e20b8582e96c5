package network

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// CoinDecimals is the number of fractional digits of one DOGE.
const CoinDecimals = 8

var koinuPerCoin = decimal.New(1, CoinDecimals)

// ParseAmount converts a decimal DOGE amount ("1.5", "0.00000001") into
// koinu. Negative values and values with more than eight fractional
// digits are rejected.
func ParseAmount(s string) (uint64, error) {
	v, err := parseKoinu(s)
	if err != nil {
		return 0, err
	}
	if v.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %q", ErrInvalidResponse, s)
	}
	return v.BigInt().Uint64(), nil
}

// ParseSignedAmount is ParseAmount for values that may be negative, such
// as an unconfirmed balance.
func ParseSignedAmount(s string) (int64, error) {
	v, err := parseKoinu(s)
	if err != nil {
		return 0, err
	}
	return v.IntPart(), nil
}

func parseKoinu(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q: %w", ErrInvalidResponse, s, err)
	}
	v := d.Mul(koinuPerCoin)
	if !v.IsInteger() {
		return decimal.Zero, fmt.Errorf("%w: amount %q has more than %d decimals", ErrInvalidResponse, s, CoinDecimals)
	}
	if v.Abs().GreaterThan(decimal.NewFromInt(1<<62)) {
		return decimal.Zero, fmt.Errorf("%w: amount %q out of range", ErrInvalidResponse, s)
	}
	return v, nil
}

// FormatAmount renders koinu as a DOGE decimal string with eight digits.
func FormatAmount(koinu uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(koinu), -CoinDecimals).StringFixed(CoinDecimals)
}

// FormatSignedAmount is FormatAmount for balances that may be negative.
func FormatSignedAmount(koinu int64) string {
	return decimal.New(koinu, -CoinDecimals).StringFixed(CoinDecimals)
}
