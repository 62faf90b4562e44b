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

// maxTxPerBlock is a sanity bound on the number of transactions a
// deserialized block may claim.  The consensus cap is lower and enforced
// during block acceptance.
const maxTxPerBlock = 100000

// MsgBlock implements the Message interface and represents a block message.
// It is used to deliver block and transaction information in response to a
// getdata message (MsgGetData) for a given block hash.
//
// Unlike bitcoin, the block's own hash is carried inside the serialized
// block; acceptance recomputes it from the header fields and rejects a
// mismatch.
type MsgBlock struct {
	// Timestamp is the time the block was assembled, in Unix seconds.
	Timestamp int64

	// Transactions carried by the block, coinbase first.
	Transactions []*MsgTx

	// PrevBlock is the hash of the previous block in the chain.  It is
	// all zero for the genesis block.
	PrevBlock chainhash.Hash

	// BlockHash is the proof-of-work hash of the block header.
	BlockHash chainhash.Hash

	// Nonce is the solution found by the proof-of-work search.
	Nonce int32

	// Bits is the compact difficulty the block was mined at: the exponent
	// such that target = 1 << (256 - bits).
	Bits int32
}

// AddTransaction adds a transaction to the message.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
}

// TxHashes returns a slice of hashes of all of transactions in this block.
func (msg *MsgBlock) TxHashes() []chainhash.Hash {
	hashList := make([]chainhash.Hash, 0, len(msg.Transactions))
	for _, tx := range msg.Transactions {
		hashList = append(hashList, tx.TxHash())
	}
	return hashList
}

// Decode decodes r using the protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgBlock) Decode(r io.Reader, pver uint32) error {
	if err := readElement(r, &msg.Timestamp); err != nil {
		return err
	}

	var txCount uint32
	if err := readElement(r, &txCount); err != nil {
		return err
	}
	if txCount > maxTxPerBlock {
		str := fmt.Sprintf("too many transactions to fit into a block "+
			"[count %d, max %d]", txCount, maxTxPerBlock)
		return messageError("MsgBlock.Decode", str)
	}

	msg.Transactions = make([]*MsgTx, 0, txCount)
	for i := uint32(0); i < txCount; i++ {
		txBytes, err := ReadVarBytes(r, maxTxPayload, "transaction")
		if err != nil {
			return err
		}
		tx := MsgTx{}
		if err := tx.Deserialize(bytes.NewReader(txBytes)); err != nil {
			return err
		}
		msg.Transactions = append(msg.Transactions, &tx)
	}

	err := readElements(r, &msg.PrevBlock, &msg.BlockHash)
	if err != nil {
		return err
	}

	var nonce, bits uint32
	if err := readElements(r, &nonce, &bits); err != nil {
		return err
	}
	msg.Nonce = int32(nonce)
	msg.Bits = int32(bits)

	return nil
}

// Encode encodes the receiver to w using the protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgBlock) Encode(w io.Writer, pver uint32) error {
	if err := writeElement(w, msg.Timestamp); err != nil {
		return err
	}

	if err := writeElement(w, uint32(len(msg.Transactions))); err != nil {
		return err
	}
	for _, tx := range msg.Transactions {
		if err := WriteVarBytes(w, tx.SerializeBytes()); err != nil {
			return err
		}
	}

	err := writeElements(w, &msg.PrevBlock, &msg.BlockHash)
	if err != nil {
		return err
	}

	return writeElements(w, uint32(msg.Nonce), uint32(msg.Bits))
}

// Serialize encodes the block to w using a format that is suitable for
// long-term storage such as a database.  The stored format and the wire
// format are identical for blocks.
func (msg *MsgBlock) Serialize(w io.Writer) error {
	return msg.Encode(w, 0)
}

// Deserialize decodes a block from r into the receiver using the storage
// format.
func (msg *MsgBlock) Deserialize(r io.Reader) error {
	return msg.Decode(r, 0)
}

// SerializeSize returns the number of bytes it would take to serialize the
// block.
func (msg *MsgBlock) SerializeSize() int {
	// Timestamp 8 bytes + tx count 4 bytes + prev hash 32 bytes + block
	// hash 32 bytes + nonce 4 bytes + bits 4 bytes.
	n := 84
	for _, tx := range msg.Transactions {
		// Each transaction is prefixed by its 4-byte length.
		n += 4 + tx.SerializeSize()
	}
	return n
}

// SerializeBytes returns the serialization of the block as a byte slice.
func (msg *MsgBlock) SerializeBytes() []byte {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSize())
	_ = msg.Serialize(&buf)
	return buf.Bytes()
}

// Command returns the protocol command string for the message.  This is part
// of the Message interface implementation.
func (msg *MsgBlock) Command() string {
	return CmdBlock
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgBlock) MaxPayloadLength(pver uint32) uint32 {
	return MaxMessagePayload
}

// NewMsgBlock returns a new block message that conforms to the Message
// interface.
func NewMsgBlock(timestamp int64, prevBlock *chainhash.Hash, bits int32) *MsgBlock {
	return &MsgBlock{
		Timestamp:    timestamp,
		Transactions: make([]*MsgTx, 0, 16),
		PrevBlock:    *prevBlock,
		Bits:         bits,
	}
}
