// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"encoding/hex"
	"fmt"

	"github.com/rafaeljabbour/gochain/chaincfg"
	"github.com/rafaeljabbour/gochain/chainutil"
	"github.com/rafaeljabbour/gochain/wire"
)

// NewCoinbaseTx creates the coinbase transaction for a block at the given
// height, minting the subsidy to the passed address.  The data string is
// carried in the input's pubkey field; when empty a default reward note
// naming the address and the height is used, so coinbases of different
// blocks paying the same address have distinct ids.
func NewCoinbaseTx(params *chaincfg.Params, toAddr, data string, height int32) (*wire.MsgTx, error) {
	pubKeyHash, err := chainutil.DecodeAddress(toAddr)
	if err != nil {
		return nil, err
	}

	if data == "" {
		data = fmt.Sprintf("Reward to '%s' at height %d", toAddr, height)
	}

	tx := wire.NewMsgTx()
	tx.AddTxIn(wire.NewTxIn(nil, wire.CoinbaseVout, []byte(data)))
	tx.AddTxOut(wire.NewTxOut(params.CalcBlockSubsidy(height), pubKeyHash))
	return tx, nil
}

// NewUTXOTransaction builds and signs a transaction moving amount coins from
// the owner of fromPubKey to the given address.  Inputs are selected from
// the UTXO index in store order; any excess over amount is returned to the
// sender as change.  It fails with ErrInsufficientFunds when the sender's
// spendable outputs do not cover the amount.
func NewUTXOTransaction(utxo *UTXOSet, fromPubKey []byte, signer Signer,
	toAddr string, amount int64) (*wire.MsgTx, error) {

	toPubKeyHash, err := chainutil.DecodeAddress(toAddr)
	if err != nil {
		return nil, err
	}

	fromPubKeyHash := chainutil.Hash160(fromPubKey)
	accumulated, validOutputs, err := utxo.FindSpendableOutputs(fromPubKeyHash, amount)
	if err != nil {
		return nil, err
	}
	if accumulated < amount {
		return nil, ErrInsufficientFunds
	}

	tx := wire.NewMsgTx()
	for txID, outs := range validOutputs {
		rawID, err := hex.DecodeString(txID)
		if err != nil {
			return nil, err
		}
		for _, outIdx := range outs {
			tx.AddTxIn(wire.NewTxIn(rawID, outIdx, fromPubKey))
		}
	}

	tx.AddTxOut(wire.NewTxOut(amount, toPubKeyHash))
	if accumulated > amount {
		tx.AddTxOut(wire.NewTxOut(accumulated-amount, fromPubKeyHash))
	}

	if err := utxo.chain.SignTransaction(tx, signer); err != nil {
		return nil, err
	}
	return tx, nil
}
