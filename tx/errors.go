package tx

import (
	"errors"
	"fmt"
)

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("tx: required parameter is nil")

	// ErrInsufficientFunds indicates the candidate UTXOs cannot cover the payment plus fee.
	ErrInsufficientFunds = errors.New("tx: insufficient funds")

	// ErrSigning indicates an input could not be signed, usually because its
	// parent transaction data is missing, stale or does not match the key.
	ErrSigning = errors.New("tx: signing failed")

	// ErrIncompleteTransaction indicates finalization was attempted without a
	// signature for every input. Always a defect.
	ErrIncompleteTransaction = errors.New("tx: incomplete transaction")

	// ErrConservation indicates inputs != outputs + fee.
	ErrConservation = errors.New("tx: value not conserved")

	// ErrScriptBuild indicates script construction failed.
	ErrScriptBuild = errors.New("tx: script build failed")

	// ErrInvalidParams indicates invalid parameters were provided.
	ErrInvalidParams = errors.New("tx: invalid parameters")
)

// InsufficientFundsError carries the required and available amounts in koinu.
// It matches ErrInsufficientFunds under errors.Is.
type InsufficientFundsError struct {
	Required  uint64
	Available uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: need %d koinu, have %d koinu", ErrInsufficientFunds, e.Required, e.Available)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// SigningError reports which input failed to sign and why.
// It matches ErrSigning under errors.Is.
type SigningError struct {
	Input  int
	Reason string
	Err    error
}

func (e *SigningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: input %d: %s: %v", ErrSigning, e.Input, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: input %d: %s", ErrSigning, e.Input, e.Reason)
}

func (e *SigningError) Is(target error) bool {
	return target == ErrSigning
}

func (e *SigningError) Unwrap() error {
	return e.Err
}
