// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"encoding/hex"
	"time"

	"github.com/rafaeljabbour/gochain/blockchain"
	"github.com/rafaeljabbour/gochain/wire"
)

// minerWakeInterval is the upper bound on the miner's wait: the miner also
// wakes on this timer even when no mempool signal arrives.  It is a
// variable rather than a constant so tests can shorten it.
var minerWakeInterval = 60 * time.Second

// minerLoop is the background mining task.  It sleeps until a transaction
// enters the mempool, the wake timer fires, or the node shuts down, then
// mines a block from the current mempool contents when there is work and no
// sync is in flight.
func (n *Node) minerLoop() {
	defer n.wg.Done()

	log.Infof("Miner started (reward to %v)", n.cfg.MinerAddress)

	for {
		select {
		case <-n.minerWake:
		case <-time.After(minerWakeInterval):
		case <-n.quit:
			log.Infof("Miner stopped")
			return
		}

		if n.txPool.Count() == 0 {
			continue
		}
		if syncing, _ := n.SyncState(); syncing {
			continue
		}

		log.Debugf("%d pending transaction(s), mining...", n.txPool.Count())
		if _, err := n.MineBlock(n.cfg.MinerAddress); err != nil {
			// The chain may have moved or the node may be shutting
			// down; retry next cycle.
			log.Warnf("Mining cycle error: %v", err)
		}
	}
}

// MineBlock assembles a candidate block from the mempool, seals it with
// proof of work, persists it, and announces it to every handshake-complete
// peer.  The chain lock is held across assembly, sealing, and persistence
// so a block arriving from a peer cannot race the candidate's parent.
func (n *Node) MineBlock(address string) (*wire.MsgBlock, error) {
	snapshot := n.txPool.ByFeeRateDescending()

	n.chainMtx.Lock()

	if n.chain == nil {
		n.chainMtx.Unlock()
		return nil, ErrNoChainOpen
	}
	if n.syncing {
		n.chainMtx.Unlock()
		return nil, ErrSyncing
	}

	params := n.cfg.Params
	nextHeight := n.chain.Height() + 1

	coinbase, err := blockchain.NewCoinbaseTx(params, address, "", nextHeight)
	if err != nil {
		n.chainMtx.Unlock()
		return nil, err
	}

	txs := []*wire.MsgTx{coinbase}
	blockCtx := make(map[string]*wire.MsgTx)
	spent := make(map[string]struct{})

	// Serialized block size: fixed overhead plus a 4-byte length prefix
	// per transaction.
	blockSize := uint32(84 + 4 + coinbase.SerializeSize())

	for _, desc := range snapshot {
		if uint32(len(txs)) >= params.MaxBlockTxs {
			break
		}
		txSize := uint32(4 + desc.Tx.SerializeSize())
		if blockSize+txSize > params.MaxBlockSize {
			break
		}

		// Re-verify against the candidate so conflicting mempool
		// transactions (double spends) cannot both be included.
		if err := n.chain.VerifyTransactionCtx(desc.Tx, blockCtx); err != nil {
			txHash := desc.Tx.TxHash()
			log.Infof("Dropping invalid mempool tx %v: %v", txHash, err)
			continue
		}
		if err := blockchain.ClaimOutpoints(desc.Tx, spent); err != nil {
			txHash := desc.Tx.TxHash()
			log.Infof("Dropping conflicting mempool tx %v: %v", txHash, err)
			continue
		}

		txs = append(txs, desc.Tx)
		blockSize += txSize
		txHash := desc.Tx.TxHash()
		blockCtx[hex.EncodeToString(txHash[:])] = desc.Tx
	}

	bits, err := n.chain.CalcNextRequiredDifficulty(nextHeight)
	if err != nil {
		n.chainMtx.Unlock()
		return nil, err
	}
	tip := n.chain.Tip()

	log.Infof("Mining block with %d transaction(s) at bits %d",
		len(txs)-1, bits)

	block, err := blockchain.NewBlock(params, txs, &tip, bits, n.quit)
	if err != nil {
		n.chainMtx.Unlock()
		return nil, err
	}

	if err := n.chain.AddBlock(block); err != nil {
		n.chainMtx.Unlock()
		return nil, err
	}
	if err := n.utxoSet.Update(block); err != nil {
		n.chainMtx.Unlock()
		return nil, err
	}
	n.txPool.RemoveBlock(block)
	n.setHeight(n.chain.Height())
	height := n.chain.Height()

	n.chainMtx.Unlock()

	log.Infof("Mined block %v (height %d)", block.BlockHash, height)

	n.broadcastBlock(block)
	return block, nil
}
