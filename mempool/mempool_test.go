// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rafaeljabbour/gochain/chainhash"
	"github.com/rafaeljabbour/gochain/wire"
)

// makeTx builds a distinct transaction for pool tests.
func makeTx(tag string) (*wire.MsgTx, string) {
	tx := wire.NewMsgTx()
	tx.AddTxIn(wire.NewTxIn(nil, wire.CoinbaseVout, []byte(tag)))
	tx.AddTxOut(wire.NewTxOut(1, make([]byte, 20)))
	hash := tx.TxHash()
	return tx, hash.String()
}

// TestPoolBasics covers add, contains, find, count, and removal by block.
func TestPoolBasics(t *testing.T) {
	pool := New()
	require.Zero(t, pool.Count())

	tx1, id1 := makeTx("one")
	tx2, id2 := makeTx("two")

	pool.Add(id1, tx1, 0.5)
	pool.Add(id2, tx2, 1.5)

	require.Equal(t, 2, pool.Count())
	require.True(t, pool.Contains(id1))
	require.False(t, pool.Contains("feedface"))
	require.Equal(t, tx1, pool.Find(id1))
	require.Nil(t, pool.Find("feedface"))
	require.ElementsMatch(t, []string{id1, id2}, pool.TxIDs())

	// Removing a block clears only its transactions.
	block := wire.NewMsgBlock(0, &chainhash.Hash{}, 1)
	block.AddTransaction(tx1)
	pool.RemoveBlock(block)

	require.Equal(t, 1, pool.Count())
	require.False(t, pool.Contains(id1))
	require.True(t, pool.Contains(id2))
}

// TestPoolAddIdempotent ensures re-adding a transaction replaces metadata
// without growing the pool.
func TestPoolAddIdempotent(t *testing.T) {
	pool := New()
	tx, id := makeTx("dup")

	pool.Add(id, tx, 0.25)
	pool.Add(id, tx, 0.75)

	require.Equal(t, 1, pool.Count())
	descs := pool.ByFeeRateDescending()
	require.Len(t, descs, 1)
	require.Equal(t, 0.75, descs[0].FeeRate)
}

// TestPoolFeeRateOrdering ensures the snapshot comes back sorted from the
// highest fee rate to the lowest.
func TestPoolFeeRateOrdering(t *testing.T) {
	pool := New()

	rates := []float64{0.1, 2.5, 0.7, 9.0, 0.0}
	for i, rate := range rates {
		tx, id := makeTx(fmt.Sprintf("tx-%d", i))
		pool.Add(id, tx, rate)
	}

	descs := pool.ByFeeRateDescending()
	require.Len(t, descs, len(rates))
	for i := 1; i < len(descs); i++ {
		require.GreaterOrEqual(t, descs[i-1].FeeRate, descs[i].FeeRate)
	}
	require.Equal(t, 9.0, descs[0].FeeRate)
}

// TestPoolSnapshot ensures the snapshot is keyed by id and detached from
// later pool mutations.
func TestPoolSnapshot(t *testing.T) {
	pool := New()
	tx, id := makeTx("snap")
	pool.Add(id, tx, 1.0)

	snapshot := pool.Snapshot()
	require.Len(t, snapshot, 1)
	require.Equal(t, tx, snapshot[id])

	block := wire.NewMsgBlock(0, &chainhash.Hash{}, 1)
	block.AddTransaction(tx)
	pool.RemoveBlock(block)

	require.Zero(t, pool.Count())
	require.Len(t, snapshot, 1)
}
