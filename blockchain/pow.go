// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math"
	"math/big"

	"github.com/rafaeljabbour/gochain/chainhash"
	"github.com/rafaeljabbour/gochain/wire"
)

// maxNonce is the maximum value a nonce can reach before the proof-of-work
// search gives up.
const maxNonce = math.MaxInt32

// bigOne is 1 represented as a big.Int.  It is defined here to avoid the
// overhead of creating it multiple times.
var bigOne = big.NewInt(1)

// CalcTarget returns the proof-of-work target for the given compact bits:
// 1 << (256 - bits).  A hash treated as a big-endian unsigned 256-bit
// integer must be strictly less than the target to satisfy the proof of
// work.
func CalcTarget(bits int32) *big.Int {
	return new(big.Int).Lsh(bigOne, uint(256-bits))
}

// HashToBig converts a chainhash.Hash into a big.Int that can be used to
// perform math comparisons.
func HashToBig(hash *chainhash.Hash) *big.Int {
	return new(big.Int).SetBytes(hash[:])
}

// powHeaderBytes assembles the header bytes the proof-of-work hash commits
// to: previous hash, merkle root of the transactions, then timestamp, bits,
// and nonce each as 8 little-endian bytes.
func powHeaderBytes(block *wire.MsgBlock, merkleRoot *chainhash.Hash, nonce int32) []byte {
	data := make([]byte, 0, chainhash.HashSize*2+24)
	data = append(data, block.PrevBlock[:]...)
	data = append(data, merkleRoot[:]...)

	var scratch [8]byte
	byteOrder.PutUint64(scratch[:], uint64(block.Timestamp))
	data = append(data, scratch[:]...)
	byteOrder.PutUint64(scratch[:], uint64(block.Bits))
	data = append(data, scratch[:]...)
	byteOrder.PutUint64(scratch[:], uint64(nonce))
	data = append(data, scratch[:]...)

	return data
}

// solveBlock attempts to find a nonce for which the block header hashes
// below the target implied by the block's bits.  It scans nonces starting at
// zero and checks the quit channel between attempts so a shutdown can
// interrupt the search.  On success it fills in the block's Nonce and
// BlockHash fields and returns true; it returns false when interrupted or
// when the nonce space is exhausted.
func solveBlock(block *wire.MsgBlock, quit <-chan struct{}) (bool, error) {
	merkleRoot, err := CalcMerkleRoot(block.Transactions)
	if err != nil {
		return false, err
	}

	target := CalcTarget(block.Bits)
	hashInt := new(big.Int)

	for nonce := int32(0); nonce < maxNonce; nonce++ {
		select {
		case <-quit:
			return false, nil
		default:
		}

		hash := chainhash.HashH(powHeaderBytes(block, &merkleRoot, nonce))
		hashInt.SetBytes(hash[:])
		if hashInt.Cmp(target) == -1 {
			block.Nonce = nonce
			block.BlockHash = hash
			return true, nil
		}
	}

	return false, nil
}

// CheckProofOfWork recomputes the block's header hash at its stored nonce
// and ensures both that it matches the stored block hash and that it is less
// than the target difficulty.
func CheckProofOfWork(block *wire.MsgBlock) error {
	merkleRoot, err := CalcMerkleRoot(block.Transactions)
	if err != nil {
		return ruleError(ErrNoTransactions, "block has no transactions")
	}

	hash := chainhash.HashH(powHeaderBytes(block, &merkleRoot, block.Nonce))
	if hash != block.BlockHash {
		str := "recomputed block hash " + hash.String() +
			" does not match stored hash " + block.BlockHash.String()
		return ruleError(ErrBadBlockHash, str)
	}

	target := CalcTarget(block.Bits)
	if HashToBig(&hash).Cmp(target) != -1 {
		str := "block hash " + hash.String() +
			" is higher than the target difficulty"
		return ruleError(ErrHighHash, str)
	}

	return nil
}
