// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/rafaeljabbour/gochain/chainhash"
)

// MsgGetBlocks implements the Message interface and represents a getblocks
// message.  It is used to request a list of blocks after the sender's current
// tip.  The receiving peer walks its own chain, locates the given hash, and
// replies with an inv message (MsgInv) listing every block hash strictly
// after it, oldest first.
//
// The payload is the sender's 32-byte tip hash.
type MsgGetBlocks struct {
	TipHash chainhash.Hash
}

// Decode decodes r using the protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgGetBlocks) Decode(r io.Reader, pver uint32) error {
	_, err := io.ReadFull(r, msg.TipHash[:])
	return err
}

// Encode encodes the receiver to w using the protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgGetBlocks) Encode(w io.Writer, pver uint32) error {
	_, err := w.Write(msg.TipHash[:])
	return err
}

// Command returns the protocol command string for the message.  This is part
// of the Message interface implementation.
func (msg *MsgGetBlocks) Command() string {
	return CmdGetBlocks
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgGetBlocks) MaxPayloadLength(pver uint32) uint32 {
	return chainhash.HashSize
}

// NewMsgGetBlocks returns a new getblocks message that conforms to the
// Message interface using the passed tip hash.
func NewMsgGetBlocks(tipHash *chainhash.Hash) *MsgGetBlocks {
	return &MsgGetBlocks{
		TipHash: *tipHash,
	}
}
