// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific RuleError.
const (
	// ErrDuplicateBlock indicates a block with the same hash already
	// exists.
	ErrDuplicateBlock ErrorCode = iota

	// ErrPrevBlockMismatch indicates the block's previous hash does not
	// reference the current chain tip.  Competing forks are not handled;
	// only blocks extending the tip are accepted.
	ErrPrevBlockMismatch

	// ErrBlockTooBig indicates the serialized block size exceeds the
	// maximum allowed size.
	ErrBlockTooBig

	// ErrTooManyTransactions indicates the block carries more
	// transactions than the maximum allowed.
	ErrTooManyTransactions

	// ErrNoTransactions indicates the block does not have at least one
	// transaction.  A valid block must have at least the coinbase
	// transaction.
	ErrNoTransactions

	// ErrFirstTxNotCoinbase indicates the first transaction in a block
	// is not a coinbase transaction.
	ErrFirstTxNotCoinbase

	// ErrMultipleCoinbases indicates a block contains more than one
	// coinbase transaction.
	ErrMultipleCoinbases

	// ErrHighHash indicates the block does not hash to a value which is
	// lower than the required target difficultly.
	ErrHighHash

	// ErrBadBlockHash indicates the stored block hash does not match the
	// hash recomputed from the header fields.
	ErrBadBlockHash

	// ErrUnknownInput indicates a transaction input references a
	// transaction that could not be resolved from the chain or from the
	// surrounding block context.
	ErrUnknownInput

	// ErrMissingTxOut indicates a transaction input references an output
	// index that does not exist in the referenced transaction, or an
	// output already spent by another transaction of the same block.
	ErrMissingTxOut

	// ErrEmptyInputs indicates a non-coinbase transaction has no inputs.
	ErrEmptyInputs

	// ErrEmptyOutputs indicates a transaction has no outputs.
	ErrEmptyOutputs

	// ErrInvalidSignature indicates an input signature failed to parse or
	// verify against the referenced output's pubkey hash.
	ErrInvalidSignature
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrDuplicateBlock:      "ErrDuplicateBlock",
	ErrPrevBlockMismatch:   "ErrPrevBlockMismatch",
	ErrBlockTooBig:         "ErrBlockTooBig",
	ErrTooManyTransactions: "ErrTooManyTransactions",
	ErrNoTransactions:      "ErrNoTransactions",
	ErrFirstTxNotCoinbase:  "ErrFirstTxNotCoinbase",
	ErrMultipleCoinbases:   "ErrMultipleCoinbases",
	ErrHighHash:            "ErrHighHash",
	ErrBadBlockHash:        "ErrBadBlockHash",
	ErrUnknownInput:        "ErrUnknownInput",
	ErrMissingTxOut:        "ErrMissingTxOut",
	ErrEmptyInputs:         "ErrEmptyInputs",
	ErrEmptyOutputs:        "ErrEmptyOutputs",
	ErrInvalidSignature:    "ErrInvalidSignature",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a rule violation.  It is used to indicate that
// processing of a block or transaction failed due to one of the many
// validation rules.  The caller can use type assertions to determine if a
// failure was specifically due to a rule violation and access the ErrorCode
// field to ascertain the specific reason for the rule violation.
type RuleError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human-readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}

// IsRuleError returns whether err is a RuleError with the given code.
func IsRuleError(err error, code ErrorCode) bool {
	var rerr RuleError
	if errors.As(err, &rerr) {
		return rerr.ErrorCode == code
	}
	return false
}

var (
	// ErrNoChain indicates no chain database exists at the configured
	// data path.  Operations needing the chain fail with this error until
	// one is created.
	ErrNoChain = errors.New("no existing blockchain found, create one first")

	// ErrChainExists indicates an attempt to create a chain database
	// where one already exists.
	ErrChainExists = errors.New("blockchain already exists")

	// ErrBlockNotFound indicates a block hash is not present in the
	// store.
	ErrBlockNotFound = errors.New("block not found")

	// ErrTxNotFound indicates a transaction id is not present on the
	// chain.
	ErrTxNotFound = errors.New("transaction not found")

	// ErrInsufficientFunds indicates an address does not own enough
	// unspent outputs to fund a transaction.
	ErrInsufficientFunds = errors.New("not enough funds")

	// ErrEmptyTransactions indicates a merkle tree was requested for an
	// empty transaction list.
	ErrEmptyTransactions = errors.New("cannot build merkle tree with no transactions")
)
