// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rafaeljabbour/gochain/chaincfg"
	"github.com/rafaeljabbour/gochain/chainhash"
	"github.com/rafaeljabbour/gochain/chainutil"
	"github.com/rafaeljabbour/gochain/wallet"
	"github.com/rafaeljabbour/gochain/wire"
)

// testParams returns mainnet consensus parameters with a trivial initial
// difficulty so test blocks solve in microseconds.
func testParams() *chaincfg.Params {
	params := chaincfg.MainNetParams
	params.InitialBits = 1
	return &params
}

// newTestWallet returns a fresh wallet for signing test transactions.
func newTestWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.NewWallet()
	require.NoError(t, err)
	return w
}

// newTestChain creates a chain in a temp directory whose genesis pays the
// returned wallet.
func newTestChain(t *testing.T) (*Chain, *wallet.Wallet) {
	t.Helper()

	w := newTestWallet(t)
	chain, err := Create(filepath.Join(t.TempDir(), "blocks"), testParams(),
		w.Address())
	require.NoError(t, err)
	t.Cleanup(func() { chain.Close() })

	return chain, w
}

// mineEmptyBlock mines one coinbase-only block paying the passed address.
func mineEmptyBlock(t *testing.T, chain *Chain, addr string) *wire.MsgBlock {
	t.Helper()

	coinbase, err := NewCoinbaseTx(chain.Params(), addr, "",
		chain.Height()+1)
	require.NoError(t, err)

	block, err := chain.MineBlock([]*wire.MsgTx{coinbase})
	require.NoError(t, err)
	return block
}

// TestCreateOpen exercises chain creation, reopening, and the
// already-exists / does-not-exist failure modes.
func TestCreateOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "blocks")
	params := testParams()

	_, err := Open(dbPath, params)
	require.ErrorIs(t, err, ErrNoChain)

	w := newTestWallet(t)
	chain, err := Create(dbPath, params, w.Address())
	require.NoError(t, err)

	require.Equal(t, int32(0), chain.Height())
	tip := chain.Tip()
	require.False(t, tip.IsZero())

	genesis, err := chain.GetBlock(&tip)
	require.NoError(t, err)
	require.True(t, genesis.PrevBlock.IsZero())
	require.Len(t, genesis.Transactions, 1)
	require.True(t, genesis.Transactions[0].IsCoinbase())
	require.NoError(t, CheckProofOfWork(genesis))
	require.NoError(t, chain.Close())

	_, err = Create(dbPath, params, w.Address())
	require.ErrorIs(t, err, ErrChainExists)

	reopened, err := Open(dbPath, params)
	require.NoError(t, err)
	defer reopened.Close()
	require.Equal(t, int32(0), reopened.Height())
	require.Equal(t, tip, reopened.Tip())
}

// TestMineBlockAdvancesTip mines a few empty blocks and checks the tip,
// the height index, and the iterator ordering.
func TestMineBlockAdvancesTip(t *testing.T) {
	chain, w := newTestChain(t)
	genesisHash := chain.Tip()

	var mined []*wire.MsgBlock
	for i := 0; i < 3; i++ {
		block := mineEmptyBlock(t, chain, w.Address())
		mined = append(mined, block)
		require.Equal(t, int32(i+1), chain.Height())
		require.Equal(t, block.BlockHash, chain.Tip())
		require.Equal(t, int32(i+1), chain.HeightOf(&block.BlockHash))
		require.NoError(t, CheckProofOfWork(block))
	}

	// PrevBlock links trace back to the genesis.
	require.Equal(t, mined[1].BlockHash, mined[2].PrevBlock)
	require.Equal(t, mined[0].BlockHash, mined[1].PrevBlock)
	require.Equal(t, genesisHash, mined[0].PrevBlock)

	// The iterator yields tip first and stops after the genesis.
	iter := chain.Iterator()
	var walked []chainhash.Hash
	for iter.HasNext() {
		block, err := iter.Next()
		require.NoError(t, err)
		walked = append(walked, block.BlockHash)
	}
	require.Equal(t, []chainhash.Hash{
		mined[2].BlockHash, mined[1].BlockHash, mined[0].BlockHash,
		genesisHash,
	}, walked)
}

// TestAddBlock checks the external-block acceptance rules: tip linkage,
// duplicate idempotence, and the consensus caps.
func TestAddBlock(t *testing.T) {
	chain, w := newTestChain(t)

	coinbase, err := NewCoinbaseTx(chain.Params(), w.Address(), "", 1)
	require.NoError(t, err)
	tip := chain.Tip()
	block, err := NewBlock(chain.Params(), []*wire.MsgTx{coinbase}, &tip,
		chain.Params().InitialBits, nil)
	require.NoError(t, err)

	require.NoError(t, chain.AddBlock(block))
	require.Equal(t, int32(1), chain.Height())
	require.Equal(t, block.BlockHash, chain.Tip())

	// Re-adding the stored block is a no-op.
	require.NoError(t, chain.AddBlock(block))
	require.Equal(t, int32(1), chain.Height())

	// A block not referencing the tip is rejected.
	orphan := *block
	orphan.PrevBlock = chainhash.HashH([]byte("elsewhere"))
	orphan.BlockHash = chainhash.HashH([]byte("orphan"))
	err = chain.AddBlock(&orphan)
	require.True(t, IsRuleError(err, ErrPrevBlockMismatch))
	require.Equal(t, int32(1), chain.Height())

	// Transaction-count cap.
	crowded := wire.NewMsgBlock(1, &block.BlockHash, 1)
	for i := uint32(0); i <= chain.Params().MaxBlockTxs; i++ {
		crowded.AddTransaction(coinbase)
	}
	crowded.BlockHash = chainhash.HashH([]byte("crowded"))
	err = chain.AddBlock(crowded)
	require.True(t, IsRuleError(err, ErrTooManyTransactions))
}

// TestCheckProofOfWorkRejection flips a nonce on a valid block and expects
// rejection, leaving the chain untouched.
func TestCheckProofOfWorkRejection(t *testing.T) {
	chain, w := newTestChain(t)
	block := mineEmptyBlock(t, chain, w.Address())
	heightBefore := chain.Height()
	tipBefore := chain.Tip()

	tampered := *block
	tampered.Nonce ^= 0x01
	err := CheckProofOfWork(&tampered)
	require.True(t, IsRuleError(err, ErrBadBlockHash))

	// A stored hash consistent with the tampered nonce still fails the
	// target comparison with overwhelming probability at real
	// difficulty; at the trivial test difficulty just assert the header
	// recomputation catches the mismatch.
	require.Error(t, CheckBlockSanity(&tampered, chain.Params()))

	require.Equal(t, heightBefore, chain.Height())
	require.Equal(t, tipBefore, chain.Tip())
}

// TestBlockHashesAfter checks the sync helper: suffix after the genesis,
// empty result for the tip, and empty result for a foreign hash.
func TestBlockHashesAfter(t *testing.T) {
	chain, w := newTestChain(t)
	genesisHash := chain.Tip()

	var mined []chainhash.Hash
	for i := 0; i < 3; i++ {
		mined = append(mined, mineEmptyBlock(t, chain, w.Address()).BlockHash)
	}

	after, err := chain.BlockHashesAfter(&genesisHash)
	require.NoError(t, err)
	require.Equal(t, mined, after)

	tip := chain.Tip()
	after, err = chain.BlockHashesAfter(&tip)
	require.NoError(t, err)
	require.Empty(t, after)

	foreign := chainhash.HashH([]byte("another chain"))
	after, err = chain.BlockHashesAfter(&foreign)
	require.NoError(t, err)
	require.Empty(t, after)
}

// TestFindTransaction looks up confirmed transactions by id.
func TestFindTransaction(t *testing.T) {
	chain, w := newTestChain(t)
	block := mineEmptyBlock(t, chain, w.Address())

	coinbase := block.Transactions[0]
	cbHash := coinbase.TxHash()

	found, err := chain.FindTransaction(cbHash[:])
	require.NoError(t, err)
	require.Equal(t, coinbase.SerializeBytes(), found.SerializeBytes())

	missing := chainhash.HashH([]byte("missing"))
	_, err = chain.FindTransaction(missing[:])
	require.ErrorIs(t, err, ErrTxNotFound)
}

// TestSpendFlow builds, signs, mines, and verifies a real spend from the
// genesis output, then checks balances through the UTXO index.
func TestSpendFlow(t *testing.T) {
	chain, sender := newTestChain(t)
	receiver := newTestWallet(t)

	utxoSet := NewUTXOSet(chain)
	require.NoError(t, utxoSet.Reindex())

	tx, err := NewUTXOTransaction(utxoSet, sender.PubKey(), sender,
		receiver.Address(), 3)
	require.NoError(t, err)
	require.NoError(t, chain.VerifyTransaction(tx))

	coinbase, err := NewCoinbaseTx(chain.Params(), sender.Address(), "", 1)
	require.NoError(t, err)

	block, err := chain.MineBlock([]*wire.MsgTx{coinbase, tx})
	require.NoError(t, err)
	require.NoError(t, utxoSet.Update(block))
	require.Equal(t, int32(1), chain.Height())

	senderHash, err := chainutil.DecodeAddress(sender.Address())
	require.NoError(t, err)
	receiverHash, err := chainutil.DecodeAddress(receiver.Address())
	require.NoError(t, err)

	require.Equal(t, int64(10-3+10), sumUTXO(t, utxoSet, senderHash))
	require.Equal(t, int64(3), sumUTXO(t, utxoSet, receiverHash))
}

// TestMineBlockRejectsDoubleSpend submits two transactions spending the
// same output and expects the block-level assembly to reject the second.
func TestMineBlockRejectsDoubleSpend(t *testing.T) {
	chain, sender := newTestChain(t)
	receiverA := newTestWallet(t)
	receiverB := newTestWallet(t)

	utxoSet := NewUTXOSet(chain)
	require.NoError(t, utxoSet.Reindex())

	// Both transactions spend the single genesis output.
	txA, err := NewUTXOTransaction(utxoSet, sender.PubKey(), sender,
		receiverA.Address(), 4)
	require.NoError(t, err)
	txB, err := NewUTXOTransaction(utxoSet, sender.PubKey(), sender,
		receiverB.Address(), 5)
	require.NoError(t, err)

	_, err = chain.MineBlock([]*wire.MsgTx{txA, txB})
	require.True(t, IsRuleError(err, ErrMissingTxOut))
}

// TestInsufficientFunds ensures overdrawing an address fails cleanly.
func TestInsufficientFunds(t *testing.T) {
	chain, sender := newTestChain(t)
	receiver := newTestWallet(t)

	utxoSet := NewUTXOSet(chain)
	require.NoError(t, utxoSet.Reindex())

	_, err := NewUTXOTransaction(utxoSet, sender.PubKey(), sender,
		receiver.Address(), 1000)
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

// sumUTXO totals the unspent outputs locked to a pubkey hash.
func sumUTXO(t *testing.T, utxoSet *UTXOSet, pubKeyHash []byte) int64 {
	t.Helper()
	outs, err := utxoSet.FindUTXO(pubKeyHash)
	require.NoError(t, err)
	var total int64
	for _, out := range outs {
		total += out.Value
	}
	return total
}
