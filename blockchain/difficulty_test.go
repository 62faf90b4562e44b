// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rafaeljabbour/gochain/chaincfg"
	"github.com/rafaeljabbour/gochain/chainhash"
	"github.com/rafaeljabbour/gochain/wire"
)

// retargetParams shrinks the retarget interval so boundary behavior is
// testable without thousands of blocks.  The formula under test is
// interval-independent.
func retargetParams() *chaincfg.Params {
	params := chaincfg.MainNetParams
	params.InitialBits = 1
	params.RetargetInterval = 8
	params.TargetTimespan = 8 * 600 * time.Second
	return &params
}

// extendWithTimestamps appends synthetic blocks carrying the given bits,
// spreading timestamps so that the chain tip ends exactly total seconds
// after the genesis block.  AddBlock performs no proof-of-work validation,
// which keeps seeding a long chain cheap; the difficulty walk only reads
// timestamps and bits.
func extendWithTimestamps(t *testing.T, chain *Chain, count int, bits int32,
	total time.Duration) {

	t.Helper()

	tip := chain.Tip()
	genesis, err := chain.GetBlock(&tip)
	require.NoError(t, err)

	totalSecs := int64(total / time.Second)
	for i := 1; i <= count; i++ {
		prev := chain.Tip()
		block := wire.NewMsgBlock(
			genesis.Timestamp+totalSecs*int64(i)/int64(count),
			&prev, bits)
		block.AddTransaction(genesis.Transactions[0])
		block.BlockHash = chainhash.HashH([]byte{byte(i), byte(i >> 8), byte(bits)})
		require.NoError(t, chain.AddBlock(block))
	}
}

// TestCalcNextRequiredDifficultyCarry ensures non-boundary heights carry
// the tip difficulty forward unchanged.
func TestCalcNextRequiredDifficultyCarry(t *testing.T) {
	params := retargetParams()
	chain, err := Create(t.TempDir()+"/blocks", params, newTestWallet(t).Address())
	require.NoError(t, err)
	defer chain.Close()

	extendWithTimestamps(t, chain, 3, 21, params.TargetTimespan)

	bits, err := chain.CalcNextRequiredDifficulty(4)
	require.NoError(t, err)
	require.Equal(t, int32(21), bits)
}

// TestCalcNextRequiredDifficultyRetarget seeds a full interval whose
// timestamps span half the target timespan and expects the difficulty to
// tighten by exactly one bit.
func TestCalcNextRequiredDifficultyRetarget(t *testing.T) {
	params := retargetParams()
	chain, err := Create(t.TempDir()+"/blocks", params, newTestWallet(t).Address())
	require.NoError(t, err)
	defer chain.Close()

	// Tip ends at height interval-1; the next block sits on the
	// boundary.  Blocks found twice as fast as intended make the next
	// target half as large, one bit harder.
	extendWithTimestamps(t, chain, int(params.RetargetInterval)-1, 17,
		params.TargetTimespan/2)

	bits, err := chain.CalcNextRequiredDifficulty(params.RetargetInterval)
	require.NoError(t, err)
	require.Equal(t, int32(18), bits)
}

// TestCalcNextRequiredDifficultyClamped ensures the measured timespan is
// clamped to a factor of four, bounding the swing to two bits.
func TestCalcNextRequiredDifficultyClamped(t *testing.T) {
	params := retargetParams()

	// Absurdly slow interval: clamped to 4x, making the target four
	// times larger, two bits easier.
	slow, err := Create(t.TempDir()+"/blocks", params, newTestWallet(t).Address())
	require.NoError(t, err)
	defer slow.Close()
	extendWithTimestamps(t, slow, int(params.RetargetInterval)-1, 17,
		params.TargetTimespan*100)

	bits, err := slow.CalcNextRequiredDifficulty(params.RetargetInterval)
	require.NoError(t, err)
	require.Equal(t, int32(15), bits)

	// Absurdly fast interval: clamped to 1/4, two bits harder.
	fast, err := Create(t.TempDir()+"/blocks2", params, newTestWallet(t).Address())
	require.NoError(t, err)
	defer fast.Close()
	extendWithTimestamps(t, fast, int(params.RetargetInterval)-1, 17,
		params.TargetTimespan/100)

	bits, err = fast.CalcNextRequiredDifficulty(params.RetargetInterval)
	require.NoError(t, err)
	require.Equal(t, int32(19), bits)
}

// TestCalcNextRequiredDifficultyBounds ensures the result respects the
// configured MinBits and MaxBits.
func TestCalcNextRequiredDifficultyBounds(t *testing.T) {
	params := retargetParams()
	params.MinBits = 17
	params.MaxBits = 18

	chain, err := Create(t.TempDir()+"/blocks", params, newTestWallet(t).Address())
	require.NoError(t, err)
	defer chain.Close()

	// The 4x easing would hit bits 15, but MinBits clamps it to 17.
	extendWithTimestamps(t, chain, int(params.RetargetInterval)-1, 17,
		params.TargetTimespan*100)

	bits, err := chain.CalcNextRequiredDifficulty(params.RetargetInterval)
	require.NoError(t, err)
	require.Equal(t, int32(17), bits)
}

// TestCalcTarget spot checks the bits-to-target mapping.
func TestCalcTarget(t *testing.T) {
	require.Equal(t, 256, CalcTarget(1).BitLen())
	require.Equal(t, 240, CalcTarget(17).BitLen())

	// Exactly one bit set.
	target := CalcTarget(17)
	require.Equal(t, uint(1), target.Bit(239))
}
