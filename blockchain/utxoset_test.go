// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rafaeljabbour/gochain/chainutil"
	"github.com/rafaeljabbour/gochain/wire"
)

// TestTxOutputsSerialization round trips the UTXO record format and checks
// that original output indices survive.
func TestTxOutputsSerialization(t *testing.T) {
	outs := NewTxOutputs()
	outs.Outputs[0] = wire.NewTxOut(5, bytes.Repeat([]byte{0x11}, 20))
	outs.Outputs[3] = wire.NewTxOut(7, bytes.Repeat([]byte{0x22}, 20))

	var decoded TxOutputs
	require.NoError(t, decoded.Deserialize(bytes.NewReader(outs.SerializeBytes())))

	require.Len(t, decoded.Outputs, 2)
	require.Equal(t, int64(5), decoded.Outputs[0].Value)
	require.Equal(t, int64(7), decoded.Outputs[3].Value)
	require.Nil(t, decoded.Outputs[1])
	require.Equal(t, outs.SerializeBytes(), decoded.SerializeBytes())
}

// utxoDump reads every UTXO entry into a map for comparisons.
func utxoDump(t *testing.T, chain *Chain) map[string]string {
	t.Helper()

	dump := make(map[string]string)
	iter := chain.db.NewIterator(utxoPrefixRange(), nil)
	defer iter.Release()
	for iter.Next() {
		dump[hex.EncodeToString(iter.Key())] = hex.EncodeToString(iter.Value())
	}
	require.NoError(t, iter.Error())
	return dump
}

// TestUpdateMatchesReindex builds a chain with real spends, maintains the
// index incrementally with Update, and checks the result is identical to a
// full Reindex.
func TestUpdateMatchesReindex(t *testing.T) {
	chain, sender := newTestChain(t)
	receiver := newTestWallet(t)

	utxoSet := NewUTXOSet(chain)
	require.NoError(t, utxoSet.Reindex())

	// Three rounds of sends create partial spends and change outputs.
	for i := int64(1); i <= 3; i++ {
		tx, err := NewUTXOTransaction(utxoSet, sender.PubKey(), sender,
			receiver.Address(), i)
		require.NoError(t, err)

		coinbase, err := NewCoinbaseTx(chain.Params(), sender.Address(),
			"", chain.Height()+1)
		require.NoError(t, err)

		block, err := chain.MineBlock([]*wire.MsgTx{coinbase, tx})
		require.NoError(t, err)
		require.NoError(t, utxoSet.Update(block))
	}

	incremental := utxoDump(t, chain)
	require.NoError(t, utxoSet.Reindex())
	rebuilt := utxoDump(t, chain)

	require.Equal(t, rebuilt, incremental)

	// Reindex is idempotent.
	require.NoError(t, utxoSet.Reindex())
	require.Equal(t, rebuilt, utxoDump(t, chain))
}

// TestUpdateRemovesSpentEntries ensures a fully spent transaction
// disappears from the index.
func TestUpdateRemovesSpentEntries(t *testing.T) {
	chain, sender := newTestChain(t)
	receiver := newTestWallet(t)

	utxoSet := NewUTXOSet(chain)
	require.NoError(t, utxoSet.Reindex())

	genesisTip := chain.Tip()
	genesis, err := chain.GetBlock(&genesisTip)
	require.NoError(t, err)
	genesisCb := genesis.Transactions[0].TxHash()

	// Spend the whole genesis output: no change output survives.
	tx, err := NewUTXOTransaction(utxoSet, sender.PubKey(), sender,
		receiver.Address(), 10)
	require.NoError(t, err)

	coinbase, err := NewCoinbaseTx(chain.Params(), sender.Address(), "", 1)
	require.NoError(t, err)
	block, err := chain.MineBlock([]*wire.MsgTx{coinbase, tx})
	require.NoError(t, err)
	require.NoError(t, utxoSet.Update(block))

	has, err := chain.db.Has(utxoKey(genesisCb[:]), nil)
	require.NoError(t, err)
	require.False(t, has)

	count, err := utxoSet.CountTransactions()
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

// TestFindSpendableOutputs checks accumulation stops once the requested
// amount is covered and reports the originating outputs.
func TestFindSpendableOutputs(t *testing.T) {
	chain, sender := newTestChain(t)

	utxoSet := NewUTXOSet(chain)
	require.NoError(t, utxoSet.Reindex())

	senderHash, err := chainutil.DecodeAddress(sender.Address())
	require.NoError(t, err)

	accumulated, outputs, err := utxoSet.FindSpendableOutputs(senderHash, 4)
	require.NoError(t, err)
	require.GreaterOrEqual(t, accumulated, int64(4))
	require.Len(t, outputs, 1)

	// Requesting more than the balance returns everything found.
	accumulated, _, err = utxoSet.FindSpendableOutputs(senderHash, 1000)
	require.NoError(t, err)
	require.Equal(t, int64(10), accumulated)

	// A stranger has nothing to spend.
	stranger := newTestWallet(t)
	strangerHash, err := chainutil.DecodeAddress(stranger.Address())
	require.NoError(t, err)
	accumulated, outputs, err = utxoSet.FindSpendableOutputs(strangerHash, 1)
	require.NoError(t, err)
	require.Zero(t, accumulated)
	require.Empty(t, outputs)
}
