package tx

const (
	// DefaultFixedFee is the flat per-transaction fee: 0.1 DOGE.
	DefaultFixedFee = uint64(10_000_000)

	// DefaultDustLimit is the change threshold in koinu. Change at or below
	// it is left to the fee instead of creating an output.
	DefaultDustLimit = uint64(5460)

	// Legacy P2PKH size estimates in bytes.
	txOverheadSize  = 10
	p2pkhInputSize  = 148
	p2pkhOutputSize = 34
)

// FeePolicy computes the fee for a transaction shape.
type FeePolicy interface {
	Fee(numInputs, numOutputs int) uint64
}

// FixedFee charges the same fee regardless of size. It may overpay large
// transactions and underpay during congestion.
type FixedFee uint64

// Fee implements FeePolicy.
func (f FixedFee) Fee(int, int) uint64 {
	return uint64(f)
}

// RateFee charges PerKB koinu for every started kilobyte of the estimated
// size, the way Dogecoin's relay fee rounds.
type RateFee struct {
	PerKB uint64
}

// Fee implements FeePolicy.
func (r RateFee) Fee(numInputs, numOutputs int) uint64 {
	size := uint64(EstimateTxSize(numInputs, numOutputs))
	return (size + 999) / 1000 * r.PerKB
}

// EstimateTxSize returns the approximate serialized size of a legacy
// P2PKH transaction with compressed keys.
func EstimateTxSize(numInputs, numOutputs int) int {
	return txOverheadSize + numInputs*p2pkhInputSize + numOutputs*p2pkhOutputSize
}
