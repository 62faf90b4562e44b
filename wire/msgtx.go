// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rafaeljabbour/gochain/chainhash"
)

const (
	// maxTxPayload is the maximum payload size for a transaction message.
	// A transaction can never be larger than the block that carries it,
	// so this is bounded by the consensus maximum block size.
	maxTxPayload = 1000 * 1000

	// maxTxInPerMessage is a sanity bound on the number of inputs a
	// deserialized transaction may claim.
	maxTxInPerMessage = 50000

	// maxTxOutPerMessage is a sanity bound on the number of outputs a
	// deserialized transaction may claim.
	maxTxOutPerMessage = 50000

	// maxSignatureLen bounds a DER-encoded ECDSA signature.
	maxSignatureLen = 80

	// maxPubKeyLen bounds an input's public key field.  Coinbase inputs
	// reuse the field for arbitrary payload data, so the bound is loose.
	maxPubKeyLen = 256
)

// CoinbaseVout is the output index carried by the single input of a coinbase
// transaction.
const CoinbaseVout int32 = -1

// TxIn defines a transaction input referencing an output of a previous
// transaction.  A coinbase input carries an empty TxID, a Vout of
// CoinbaseVout, and arbitrary payload bytes in PubKey.
type TxIn struct {
	// TxID is the id of the transaction whose output is being spent.
	TxID []byte

	// Vout is the index of the output within that transaction.
	Vout int32

	// Signature is a DER-encoded ECDSA signature over the trimmed-copy
	// digest of the spending transaction.
	Signature []byte

	// PubKey is the raw uncompressed secp256k1 point whose hash the
	// referenced output is locked to.
	PubKey []byte
}

// NewTxIn returns a new transaction input with the provided previous
// transaction id, output index, and public key.
func NewTxIn(txID []byte, vout int32, pubKey []byte) *TxIn {
	return &TxIn{
		TxID:   txID,
		Vout:   vout,
		PubKey: pubKey,
	}
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input.
func (ti *TxIn) SerializeSize() int {
	// TxID length 4 bytes + TxID + Vout 4 bytes + Signature length 4
	// bytes + Signature + PubKey length 4 bytes + PubKey.
	return 16 + len(ti.TxID) + len(ti.Signature) + len(ti.PubKey)
}

// TxOut defines a transaction output.  It is locked to the 20-byte hash of a
// public key and spendable by whoever can sign with the matching key.
//
// NOTE: The source format this protocol derives from carried Value as 4
// little-endian bytes on the wire.  The field is widened here to the full 8
// bytes so values at or above 2^31 serialize correctly.
type TxOut struct {
	Value      int64
	PubKeyHash []byte
}

// NewTxOut returns a new transaction output with the provided value and
// pubkey hash.
func NewTxOut(value int64, pubKeyHash []byte) *TxOut {
	return &TxOut{
		Value:      value,
		PubKeyHash: pubKeyHash,
	}
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction output.
func (to *TxOut) SerializeSize() int {
	// Value 8 bytes + PubKeyHash length 4 bytes + PubKeyHash.
	return 12 + len(to.PubKeyHash)
}

// MsgTx implements the Message interface and represents a transaction
// message.  It is used to deliver transaction information in response to a
// getdata message (MsgGetData) for a given transaction.
type MsgTx struct {
	Vin  []*TxIn
	Vout []*TxOut
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.Vin = append(msg.Vin, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.Vout = append(msg.Vout, to)
}

// TxHash generates the id of the transaction, which is the sha256 of its
// serialization.
func (msg *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSize())

	// Ignore the error returns since the only way the encode could fail
	// is being out of memory or due to nil pointers, both of which would
	// cause a run-time panic.
	_ = msg.Serialize(&buf)
	return chainhash.HashH(buf.Bytes())
}

// IsCoinbase determines whether or not the transaction is a coinbase, which
// is a special transaction with exactly one input whose previous transaction
// id is empty and whose output index is CoinbaseVout.
func (msg *MsgTx) IsCoinbase() bool {
	if len(msg.Vin) != 1 {
		return false
	}
	ti := msg.Vin[0]
	return len(ti.TxID) == 0 && ti.Vout == CoinbaseVout
}

// Copy creates a deep copy of a transaction so that the original does not get
// modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Vin:  make([]*TxIn, 0, len(msg.Vin)),
		Vout: make([]*TxOut, 0, len(msg.Vout)),
	}

	for _, oldTxIn := range msg.Vin {
		newTxIn := TxIn{
			TxID:      append([]byte(nil), oldTxIn.TxID...),
			Vout:      oldTxIn.Vout,
			Signature: append([]byte(nil), oldTxIn.Signature...),
			PubKey:    append([]byte(nil), oldTxIn.PubKey...),
		}
		newTx.Vin = append(newTx.Vin, &newTxIn)
	}

	for _, oldTxOut := range msg.Vout {
		newTxOut := TxOut{
			Value:      oldTxOut.Value,
			PubKeyHash: append([]byte(nil), oldTxOut.PubKeyHash...),
		}
		newTx.Vout = append(newTx.Vout, &newTxOut)
	}

	return &newTx
}

// Decode decodes r using the protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgTx) Decode(r io.Reader, pver uint32) error {
	var vinCount uint32
	if err := readElement(r, &vinCount); err != nil {
		return err
	}
	if vinCount > maxTxInPerMessage {
		str := fmt.Sprintf("too many input transactions [count %d, "+
			"max %d]", vinCount, maxTxInPerMessage)
		return messageError("MsgTx.Decode", str)
	}

	msg.Vin = make([]*TxIn, 0, vinCount)
	for i := uint32(0); i < vinCount; i++ {
		ti := TxIn{}
		if err := readTxIn(r, &ti); err != nil {
			return err
		}
		msg.Vin = append(msg.Vin, &ti)
	}

	var voutCount uint32
	if err := readElement(r, &voutCount); err != nil {
		return err
	}
	if voutCount > maxTxOutPerMessage {
		str := fmt.Sprintf("too many output transactions [count %d, "+
			"max %d]", voutCount, maxTxOutPerMessage)
		return messageError("MsgTx.Decode", str)
	}

	msg.Vout = make([]*TxOut, 0, voutCount)
	for i := uint32(0); i < voutCount; i++ {
		to := TxOut{}
		if err := readTxOut(r, &to); err != nil {
			return err
		}
		msg.Vout = append(msg.Vout, &to)
	}

	return nil
}

// Encode encodes the receiver to w using the protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgTx) Encode(w io.Writer, pver uint32) error {
	if err := writeElement(w, uint32(len(msg.Vin))); err != nil {
		return err
	}
	for _, ti := range msg.Vin {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}

	if err := writeElement(w, uint32(len(msg.Vout))); err != nil {
		return err
	}
	for _, to := range msg.Vout {
		if err := writeTxOut(w, to); err != nil {
			return err
		}
	}

	return nil
}

// Serialize encodes the transaction to w using a format that is suitable for
// long-term storage such as a database.  The stored format and the wire
// format are identical for transactions.
func (msg *MsgTx) Serialize(w io.Writer) error {
	return msg.Encode(w, 0)
}

// Deserialize decodes a transaction from r into the receiver using the
// storage format.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	return msg.Decode(r, 0)
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction.
func (msg *MsgTx) SerializeSize() int {
	// Input count 4 bytes + output count 4 bytes.
	n := 8
	for _, ti := range msg.Vin {
		n += ti.SerializeSize()
	}
	for _, to := range msg.Vout {
		n += to.SerializeSize()
	}
	return n
}

// SerializeBytes returns the serialization of the transaction as a byte
// slice.
func (msg *MsgTx) SerializeBytes() []byte {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSize())
	_ = msg.Serialize(&buf)
	return buf.Bytes()
}

// Command returns the protocol command string for the message.  This is part
// of the Message interface implementation.
func (msg *MsgTx) Command() string {
	return CmdTx
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgTx) MaxPayloadLength(pver uint32) uint32 {
	return maxTxPayload
}

// NewMsgTx returns a new tx message that conforms to the Message interface.
// The return instance has no transaction inputs or outputs.
func NewMsgTx() *MsgTx {
	return &MsgTx{
		Vin:  make([]*TxIn, 0, 2),
		Vout: make([]*TxOut, 0, 2),
	}
}

// readTxIn reads the next sequence of bytes from r as a transaction input.
func readTxIn(r io.Reader, ti *TxIn) error {
	txID, err := ReadVarBytes(r, chainhash.HashSize, "input txid")
	if err != nil {
		return err
	}
	ti.TxID = txID

	var vout uint32
	if err := readElement(r, &vout); err != nil {
		return err
	}
	ti.Vout = int32(vout)

	sig, err := ReadVarBytes(r, maxSignatureLen, "input signature")
	if err != nil {
		return err
	}
	ti.Signature = sig

	pubKey, err := ReadVarBytes(r, maxPubKeyLen, "input pubkey")
	if err != nil {
		return err
	}
	ti.PubKey = pubKey

	return nil
}

// writeTxIn serializes a transaction input to w.
func writeTxIn(w io.Writer, ti *TxIn) error {
	if err := WriteVarBytes(w, ti.TxID); err != nil {
		return err
	}
	if err := writeElement(w, uint32(ti.Vout)); err != nil {
		return err
	}
	if err := WriteVarBytes(w, ti.Signature); err != nil {
		return err
	}
	return WriteVarBytes(w, ti.PubKey)
}

// readTxOut reads the next sequence of bytes from r as a transaction output.
func readTxOut(r io.Reader, to *TxOut) error {
	if err := readElement(r, &to.Value); err != nil {
		return err
	}

	pubKeyHash, err := ReadVarBytes(r, 20, "output pubkey hash")
	if err != nil {
		return err
	}
	to.PubKeyHash = pubKeyHash
	return nil
}

// writeTxOut serializes a transaction output to w.
func writeTxOut(w io.Writer, to *TxOut) error {
	if err := writeElement(w, to.Value); err != nil {
		return err
	}
	return WriteVarBytes(w, to.PubKeyHash)
}
