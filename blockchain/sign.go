// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/rafaeljabbour/gochain/chainutil"
	"github.com/rafaeljabbour/gochain/wire"
)

// Signer produces an ECDSA signature over a 32-byte digest.  It decouples
// the consensus code from key storage: the wallet supplies the capability
// without ever exposing the private key itself.
type Signer interface {
	Sign(digest []byte) ([]byte, error)
}

// trimmedCopy returns a copy of tx with every input's signature and pubkey
// cleared.  The trimmed copy is the skeleton each input signature commits
// to.
func trimmedCopy(tx *wire.MsgTx) *wire.MsgTx {
	txCopy := tx.Copy()
	for _, in := range txCopy.Vin {
		in.Signature = nil
		in.PubKey = nil
	}
	return txCopy
}

// inputDigest computes the digest input i of tx commits to: the id of the
// trimmed copy with that input's pubkey field replaced by the pubkey hash
// locking the referenced output.
func inputDigest(txCopy *wire.MsgTx, i int, prevTxs map[string]*wire.MsgTx) ([]byte, error) {
	in := txCopy.Vin[i]

	prevTx, ok := prevTxs[hex.EncodeToString(in.TxID)]
	if !ok {
		str := fmt.Sprintf("input %d references unknown transaction %x",
			i, in.TxID)
		return nil, ruleError(ErrUnknownInput, str)
	}
	if in.Vout < 0 || int(in.Vout) >= len(prevTx.Vout) {
		str := fmt.Sprintf("input %d references missing output %d of "+
			"transaction %x", i, in.Vout, in.TxID)
		return nil, ruleError(ErrMissingTxOut, str)
	}

	in.PubKey = prevTx.Vout[in.Vout].PubKeyHash
	digest := txCopy.TxHash()
	in.PubKey = nil

	return digest[:], nil
}

// SignTransactionInputs signs every input of tx with the passed signer.
// prevTxs must contain the previous transaction of each input keyed by hex
// id.  The produced signatures are DER encoded.
func SignTransactionInputs(tx *wire.MsgTx, signer Signer,
	prevTxs map[string]*wire.MsgTx) error {

	if tx.IsCoinbase() {
		return nil
	}

	txCopy := trimmedCopy(tx)
	for i := range tx.Vin {
		digest, err := inputDigest(txCopy, i, prevTxs)
		if err != nil {
			return err
		}

		sig, err := signer.Sign(digest)
		if err != nil {
			return err
		}
		tx.Vin[i].Signature = sig
	}

	return nil
}

// VerifyTransactionSigs checks the signature of every input of tx against
// the pubkey hash locking the output it spends.  prevTxs must contain the
// previous transaction of each input keyed by hex id.
func VerifyTransactionSigs(tx *wire.MsgTx, prevTxs map[string]*wire.MsgTx) error {
	if tx.IsCoinbase() {
		return nil
	}

	txCopy := trimmedCopy(tx)
	for i, in := range tx.Vin {
		digest, err := inputDigest(txCopy, i, prevTxs)
		if err != nil {
			return err
		}

		// The spending key must hash to the lock on the referenced
		// output.
		prevTx := prevTxs[hex.EncodeToString(in.TxID)]
		lock := prevTx.Vout[in.Vout].PubKeyHash
		if !bytes.Equal(chainutil.Hash160(in.PubKey), lock) {
			str := fmt.Sprintf("input %d pubkey does not hash to "+
				"the referenced output's lock", i)
			return ruleError(ErrInvalidSignature, str)
		}

		sig, err := ecdsa.ParseDERSignature(in.Signature)
		if err != nil {
			str := fmt.Sprintf("input %d signature is malformed: %v",
				i, err)
			return ruleError(ErrInvalidSignature, str)
		}

		pubKey, err := btcec.ParsePubKey(in.PubKey)
		if err != nil {
			str := fmt.Sprintf("input %d pubkey is malformed: %v",
				i, err)
			return ruleError(ErrInvalidSignature, str)
		}

		if !sig.Verify(digest, pubKey) {
			str := fmt.Sprintf("input %d signature verification "+
				"failed", i)
			return ruleError(ErrInvalidSignature, str)
		}
	}

	return nil
}

// CalculateFee returns the fee paid by tx: the sum of its resolved input
// values minus the sum of its output values.  Coinbase transactions pay no
// fee.
func CalculateFee(tx *wire.MsgTx, prevTxs map[string]*wire.MsgTx) (int64, error) {
	if tx.IsCoinbase() {
		return 0, nil
	}

	var totalIn int64
	for i, in := range tx.Vin {
		prevTx, ok := prevTxs[hex.EncodeToString(in.TxID)]
		if !ok {
			str := fmt.Sprintf("input %d references unknown "+
				"transaction %x", i, in.TxID)
			return 0, ruleError(ErrUnknownInput, str)
		}
		if in.Vout < 0 || int(in.Vout) >= len(prevTx.Vout) {
			str := fmt.Sprintf("input %d references missing "+
				"output %d", i, in.Vout)
			return 0, ruleError(ErrMissingTxOut, str)
		}
		totalIn += prevTx.Vout[in.Vout].Value
	}

	var totalOut int64
	for _, out := range tx.Vout {
		totalOut += out.Value
	}

	return totalIn - totalOut, nil
}

// FeeRate returns the fee per serialized byte used to order mempool
// transactions.
func FeeRate(tx *wire.MsgTx, fee int64) float64 {
	size := tx.SerializeSize()
	if size == 0 {
		return 0
	}
	return float64(fee) / float64(size)
}
