// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
)

// CalcNextRequiredDifficulty returns the compact bits a block at the passed
// height must be mined at.
//
// Outside a retarget boundary the tip's bits carry forward unchanged.  At a
// boundary the actual time taken for the last full interval is measured
// against the target timespan and the tip's target is scaled accordingly,
// with the measured timespan clamped to a factor of four in either direction
// to prevent extreme swings.  The resulting bits are clamped to the
// network's [MinBits, MaxBits] range.
func (c *Chain) CalcNextRequiredDifficulty(nextHeight int32) (int32, error) {
	// Genesis creation path: nothing to retarget against yet.
	if c.tip.IsZero() {
		return c.params.InitialBits, nil
	}

	tipBlock, err := c.GetBlock(&c.tip)
	if err != nil {
		return 0, err
	}

	if nextHeight%c.params.RetargetInterval != 0 {
		return tipBlock.Bits, nil
	}

	// Walk back interval-1 blocks from the tip to find the anchor block
	// that started the interval.
	anchorHash := c.tip
	for i := int32(0); i < c.params.RetargetInterval-1; i++ {
		b, err := c.GetBlock(&anchorHash)
		if err != nil {
			return 0, err
		}
		anchorHash = b.PrevBlock
		if anchorHash.IsZero() {
			// Interval reaches past the genesis block; carry the
			// tip difficulty forward.
			return tipBlock.Bits, nil
		}
	}
	anchorBlock, err := c.GetBlock(&anchorHash)
	if err != nil {
		return 0, err
	}

	targetTimespan := int64(c.params.TargetTimespan.Seconds())

	actualTimespan := tipBlock.Timestamp - anchorBlock.Timestamp
	if actualTimespan < targetTimespan/4 {
		actualTimespan = targetTimespan / 4
	}
	if actualTimespan > targetTimespan*4 {
		actualTimespan = targetTimespan * 4
	}

	// newTarget = oldTarget * actualTimespan / targetTimespan
	oldTarget := CalcTarget(tipBlock.Bits)
	newTarget := new(big.Int).Mul(oldTarget, big.NewInt(actualTimespan))
	newTarget.Div(newTarget, big.NewInt(targetTimespan))

	// Convert the target back to its compact exponent.  A target of
	// exactly 1<<(256-bits) has a bit length of 257-bits.
	newBits := int32(257 - newTarget.BitLen())
	if newBits < c.params.MinBits {
		newBits = c.params.MinBits
	}
	if newBits > c.params.MaxBits {
		newBits = c.params.MaxBits
	}

	log.Infof("Difficulty retarget at height %d: bits %d -> %d "+
		"(actual %ds, target %ds)", nextHeight, tipBlock.Bits, newBits,
		actualTimespan, targetTimespan)

	return newBits, nil
}
