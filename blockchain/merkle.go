// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rafaeljabbour/gochain/chainhash"
	"github.com/rafaeljabbour/gochain/wire"
)

// MerkleTree holds the full merkle tree of a block's transactions as a slice
// of levels.  Level 0 contains the leaf hashes, one per transaction in vout
// order, and each following level contains the parents of the level below it.
// The final level contains only the merkle root.
//
// A level with an odd number of hashes duplicates its last hash before
// pairing, matching the tree the miner commits to in the block header.  The
// duplicate is stored in that level, so an odd leaf level holds one hash
// more than there are transactions.
type MerkleTree struct {
	levels [][]chainhash.Hash
}

// NewMerkleTree builds the merkle tree for the passed transactions.  The
// leaf for each transaction is the sha256 of its serialization.  It returns
// ErrEmptyTransactions when called with no transactions.
func NewMerkleTree(txs []*wire.MsgTx) (*MerkleTree, error) {
	if len(txs) == 0 {
		return nil, ErrEmptyTransactions
	}

	leaves := make([]chainhash.Hash, 0, len(txs))
	for _, tx := range txs {
		leaves = append(leaves, chainhash.HashH(tx.SerializeBytes()))
	}

	tree := &MerkleTree{levels: [][]chainhash.Hash{leaves}}
	for current := leaves; len(current) > 1; {
		// Duplicate the last hash when the level is odd so every
		// node has a sibling.
		if len(current)%2 != 0 {
			current = append(current, current[len(current)-1])
			tree.levels[len(tree.levels)-1] = current
		}

		parents := make([]chainhash.Hash, 0, len(current)/2)
		for i := 0; i < len(current); i += 2 {
			parents = append(parents,
				combineHashes(&current[i], &current[i+1]))
		}
		tree.levels = append(tree.levels, parents)
		current = parents
	}

	return tree, nil
}

// Root returns the merkle root of the tree.
func (t *MerkleTree) Root() chainhash.Hash {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Proof generates an inclusion proof for the transaction at the given leaf
// index.  At each level the proof records the sibling hash and whether that
// sibling sits to the left of the running hash.
func (t *MerkleTree) Proof(index int) (*MerkleProof, error) {
	leaves := t.levels[0]
	if index < 0 || index >= len(leaves) {
		return nil, fmt.Errorf("transaction index %d out of range [0, %d)",
			index, len(leaves))
	}

	proof := &MerkleProof{
		TxHash:     leaves[index],
		TxIndex:    uint32(index),
		MerkleRoot: t.Root(),
	}

	i := index
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := i ^ 1
		if sibling >= len(level) {
			// Odd level whose duplicate was never materialized;
			// the node is its own sibling.
			sibling = i
		}
		proof.Path = append(proof.Path, MerkleProofStep{
			Hash:   level[sibling],
			IsLeft: sibling < i,
		})
		i /= 2
	}

	return proof, nil
}

// MerkleProofStep is one level of a merkle inclusion proof: the hash of the
// sibling node and which side of the pair it occupies.
type MerkleProofStep struct {
	Hash   chainhash.Hash
	IsLeft bool
}

// MerkleProof proves a transaction is committed to by a block's merkle root.
// The block fields tie the proof to its origin for callers that fetched it
// over RPC.
type MerkleProof struct {
	TxHash      chainhash.Hash
	TxID        chainhash.Hash
	TxIndex     uint32
	Path        []MerkleProofStep
	MerkleRoot  chainhash.Hash
	BlockHash   chainhash.Hash
	BlockHeight uint32
}

// VerifyMerkleProof folds the proof path over the transaction hash and
// reports whether the result equals the proof's merkle root.
func VerifyMerkleProof(proof *MerkleProof) bool {
	current := proof.TxHash
	for _, step := range proof.Path {
		if step.IsLeft {
			current = combineHashes(&step.Hash, &current)
		} else {
			current = combineHashes(&current, &step.Hash)
		}
	}
	return current == proof.MerkleRoot
}

// Serialize encodes the proof to w.
func (p *MerkleProof) Serialize(w io.Writer) error {
	if _, err := w.Write(p.TxHash[:]); err != nil {
		return err
	}
	if _, err := w.Write(p.TxID[:]); err != nil {
		return err
	}
	if err := writeUint32(w, p.TxIndex); err != nil {
		return err
	}

	if err := writeUint32(w, uint32(len(p.Path))); err != nil {
		return err
	}
	for _, step := range p.Path {
		if _, err := w.Write(step.Hash[:]); err != nil {
			return err
		}
		var side byte
		if step.IsLeft {
			side = 1
		}
		if _, err := w.Write([]byte{side}); err != nil {
			return err
		}
	}

	if _, err := w.Write(p.MerkleRoot[:]); err != nil {
		return err
	}
	if _, err := w.Write(p.BlockHash[:]); err != nil {
		return err
	}
	return writeUint32(w, p.BlockHeight)
}

// SerializeBytes returns the serialization of the proof as a byte slice.
func (p *MerkleProof) SerializeBytes() []byte {
	var buf bytes.Buffer
	_ = p.Serialize(&buf)
	return buf.Bytes()
}

// Deserialize decodes a proof from r into the receiver.
func (p *MerkleProof) Deserialize(r io.Reader) error {
	if _, err := io.ReadFull(r, p.TxHash[:]); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, p.TxID[:]); err != nil {
		return err
	}
	var err error
	if p.TxIndex, err = readUint32(r); err != nil {
		return err
	}

	pathLen, err := readUint32(r)
	if err != nil {
		return err
	}
	if pathLen > 64 {
		return fmt.Errorf("merkle proof path too long: %d", pathLen)
	}
	p.Path = make([]MerkleProofStep, pathLen)
	for i := range p.Path {
		if _, err := io.ReadFull(r, p.Path[i].Hash[:]); err != nil {
			return err
		}
		var side [1]byte
		if _, err := io.ReadFull(r, side[:]); err != nil {
			return err
		}
		p.Path[i].IsLeft = side[0] != 0
	}

	if _, err := io.ReadFull(r, p.MerkleRoot[:]); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, p.BlockHash[:]); err != nil {
		return err
	}
	p.BlockHeight, err = readUint32(r)
	return err
}

// combineHashes returns sha256(left || right).
func combineHashes(left, right *chainhash.Hash) chainhash.Hash {
	var combined [chainhash.HashSize * 2]byte
	copy(combined[:], left[:])
	copy(combined[chainhash.HashSize:], right[:])
	return chainhash.HashH(combined[:])
}

// CalcMerkleRoot is a convenience function that builds the merkle tree for
// the passed transactions and returns its root.
func CalcMerkleRoot(txs []*wire.MsgTx) (chainhash.Hash, error) {
	tree, err := NewMerkleTree(txs)
	if err != nil {
		return chainhash.Hash{}, err
	}
	return tree.Root(), nil
}
