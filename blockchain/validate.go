// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"encoding/hex"
	"fmt"

	"github.com/rafaeljabbour/gochain/chaincfg"
	"github.com/rafaeljabbour/gochain/wire"
)

// CheckBlockSanity performs context-free validation on a block: it must
// carry at least one transaction, the first and only the first must be a
// coinbase, the serialized size and transaction count must be within the
// consensus limits, and the stored hash must be a valid proof of work over
// the header fields.
func CheckBlockSanity(block *wire.MsgBlock, params *chaincfg.Params) error {
	numTx := len(block.Transactions)
	if numTx == 0 {
		return ruleError(ErrNoTransactions, "block does not contain any transactions")
	}
	if uint32(numTx) > params.MaxBlockTxs {
		str := fmt.Sprintf("block contains too many transactions - "+
			"got %d, max %d", numTx, params.MaxBlockTxs)
		return ruleError(ErrTooManyTransactions, str)
	}

	if size := uint32(block.SerializeSize()); size > params.MaxBlockSize {
		str := fmt.Sprintf("serialized block is too big - got %d, "+
			"max %d", size, params.MaxBlockSize)
		return ruleError(ErrBlockTooBig, str)
	}

	if !block.Transactions[0].IsCoinbase() {
		return ruleError(ErrFirstTxNotCoinbase, "first transaction in "+
			"block is not the coinbase")
	}
	for i, tx := range block.Transactions[1:] {
		if tx.IsCoinbase() {
			str := fmt.Sprintf("block contains second coinbase at "+
				"index %d", i+1)
			return ruleError(ErrMultipleCoinbases, str)
		}
	}

	return CheckProofOfWork(block)
}

// ClaimOutpoints records every outpoint tx spends into the spent set,
// erroring when one of them is already claimed.  It keeps conflicting
// spends of the same output out of a single candidate block.
func ClaimOutpoints(tx *wire.MsgTx, spent map[string]struct{}) error {
	if tx.IsCoinbase() {
		return nil
	}
	for _, in := range tx.Vin {
		outpoint := fmt.Sprintf("%x:%d", in.TxID, in.Vout)
		if _, ok := spent[outpoint]; ok {
			str := fmt.Sprintf("output %s is spent twice within the "+
				"block", outpoint)
			return ruleError(ErrMissingTxOut, str)
		}
		spent[outpoint] = struct{}{}
	}
	return nil
}

// CheckBlockTransactions verifies every non-coinbase transaction in the
// block against the chain, allowing inputs to reference outputs of earlier
// transactions within the same block.
func (c *Chain) CheckBlockTransactions(block *wire.MsgBlock) error {
	blockCtx := make(map[string]*wire.MsgTx, len(block.Transactions))
	for _, tx := range block.Transactions {
		if err := c.VerifyTransactionCtx(tx, blockCtx); err != nil {
			return err
		}
		txHash := tx.TxHash()
		blockCtx[hex.EncodeToString(txHash[:])] = tx
	}
	return nil
}
