// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/rafaeljabbour/gochain/chainhash"
)

const (
	// MaxInvPerMsg is the maximum number of inventory vectors that can be
	// in a single inv message.  The count is carried in a single byte.
	MaxInvPerMsg = 255

	// maxInvVectPayload is the maximum payload size for an inventory
	// vector: type 4 bytes + hash length 4 bytes + hash.
	maxInvVectPayload = 4 + 4 + chainhash.HashSize
)

// InvType represents the allowed types of inventory vectors.  See InvVect.
type InvType uint32

// These constants define the various supported inventory vector types.
const (
	InvTypeTx    InvType = 0
	InvTypeBlock InvType = 1
)

// Map of service flags back to their constant names for pretty printing.
var ivStrings = map[InvType]string{
	InvTypeTx:    "MSG_TX",
	InvTypeBlock: "MSG_BLOCK",
}

// String returns the InvType in human-readable form.
func (invtype InvType) String() string {
	if s, ok := ivStrings[invtype]; ok {
		return s
	}

	return fmt.Sprintf("Unknown InvType (%d)", uint32(invtype))
}

// InvVect defines an inventory vector which is used to describe data, as
// specified by the Type field, that a peer wants, has, or does not have to
// another peer.
type InvVect struct {
	Type InvType        // Type of data
	Hash chainhash.Hash // Hash of the data
}

// NewInvVect returns a new InvVect using the provided type and hash.
func NewInvVect(typ InvType, hash *chainhash.Hash) *InvVect {
	return &InvVect{
		Type: typ,
		Hash: *hash,
	}
}

// readInvVect reads an encoded InvVect from r.
func readInvVect(r io.Reader, iv *InvVect) error {
	var typ uint32
	if err := readElement(r, &typ); err != nil {
		return err
	}
	if typ > uint32(InvTypeBlock) {
		str := fmt.Sprintf("unknown inventory type %d", typ)
		return messageError("readInvVect", str)
	}
	iv.Type = InvType(typ)

	hash, err := ReadVarBytes(r, chainhash.HashSize, "inventory hash")
	if err != nil {
		return err
	}
	if len(hash) != chainhash.HashSize {
		str := fmt.Sprintf("invalid inventory hash length %d", len(hash))
		return messageError("readInvVect", str)
	}
	copy(iv.Hash[:], hash)
	return nil
}

// writeInvVect serializes an InvVect to w.
func writeInvVect(w io.Writer, iv *InvVect) error {
	if err := writeElement(w, uint32(iv.Type)); err != nil {
		return err
	}
	return WriteVarBytes(w, iv.Hash[:])
}
