package tx

import (
	"fmt"
	"sort"
)

// SelectInputs picks UTXOs by descending value until their total reaches
// target (payment plus fee). Ties are ordered by txid then vout so the
// result is deterministic. A duplicated outpoint is considered once.
//
// When all candidates together fall short it returns an
// *InsufficientFundsError carrying target and the available total.
func SelectInputs(utxos []*UTXO, target uint64) ([]*UTXO, error) {
	if target == 0 {
		return nil, fmt.Errorf("%w: zero selection target", ErrInvalidParams)
	}

	candidates, err := sortedCandidates(utxos)
	if err != nil {
		return nil, err
	}

	var total uint64
	for i, u := range candidates {
		total += u.Value
		if total >= target {
			return candidates[:i+1], nil
		}
	}
	return nil, &InsufficientFundsError{Required: target, Available: total}
}

// SelectWithFee selects inputs for amount under policy, assuming
// numOutputs outputs. The fee is re-evaluated as inputs are added, so a
// size-based policy accounts for each input it pulls in. It returns the
// selection and the fee it was sized for.
//
// For a FixedFee this is SelectInputs(utxos, amount+fee).
func SelectWithFee(utxos []*UTXO, amount uint64, policy FeePolicy, numOutputs int) ([]*UTXO, uint64, error) {
	if policy == nil {
		return nil, 0, fmt.Errorf("%w: fee policy", ErrNilParam)
	}
	if amount == 0 {
		return nil, 0, fmt.Errorf("%w: zero amount", ErrInvalidParams)
	}

	candidates, err := sortedCandidates(utxos)
	if err != nil {
		return nil, 0, err
	}

	var total uint64
	for i, u := range candidates {
		total += u.Value
		fee := policy.Fee(i+1, numOutputs)
		need := amount + fee
		if need < amount {
			return nil, 0, fmt.Errorf("%w: amount plus fee overflows", ErrInvalidParams)
		}
		if total >= need {
			return candidates[:i+1], fee, nil
		}
	}

	n := len(candidates)
	if n == 0 {
		n = 1
	}
	return nil, 0, &InsufficientFundsError{
		Required:  amount + policy.Fee(n, numOutputs),
		Available: total,
	}
}

// sortedCandidates returns a de-duplicated copy of utxos ordered by value
// descending. The caller's slice is not reordered.
func sortedCandidates(utxos []*UTXO) ([]*UTXO, error) {
	seen := make(map[string]struct{}, len(utxos))
	out := make([]*UTXO, 0, len(utxos))
	for i, u := range utxos {
		if u == nil {
			return nil, fmt.Errorf("%w: utxo[%d]", ErrNilParam, i)
		}
		key := u.Outpoint()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}

	if _, ok := SumValues(out); !ok {
		return nil, fmt.Errorf("%w: utxo values overflow", ErrInvalidParams)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		if out[i].TxID != out[j].TxID {
			return out[i].TxID < out[j].TxID
		}
		return out[i].Vout < out[j].Vout
	})
	return out, nil
}
