// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/rafaeljabbour/gochain/chainhash"
	"github.com/rafaeljabbour/gochain/wire"
)

// Iterator walks the chain from the tip back to the genesis block by
// following each block's previous hash.
type Iterator struct {
	chain       *Chain
	currentHash chainhash.Hash
}

// Iterator returns a new iterator positioned at the current chain tip.
func (c *Chain) Iterator() *Iterator {
	return &Iterator{chain: c, currentHash: c.tip}
}

// HasNext returns whether another block remains in the walk.  The walk ends
// after the genesis block, whose previous hash is all zero.
func (it *Iterator) HasNext() bool {
	return !it.currentHash.IsZero()
}

// Next fetches the block at the current position and steps the iterator to
// its predecessor.
func (it *Iterator) Next() (*wire.MsgBlock, error) {
	block, err := it.chain.GetBlock(&it.currentHash)
	if err != nil {
		return nil, err
	}
	it.currentHash = block.PrevBlock
	return block, nil
}
