// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"sort"
	"sync"
	"time"

	"github.com/rafaeljabbour/gochain/wire"
)

// TxDesc is a descriptor containing a transaction in the mempool along with
// additional metadata.
type TxDesc struct {
	// Tx is the transaction associated with the entry.
	Tx *wire.MsgTx

	// Added is the time when the entry was added to the pool.
	Added time.Time

	// FeeRate is the fee the transaction pays per serialized byte.  It
	// orders transactions during block assembly and is not otherwise
	// enforced.
	FeeRate float64
}

// TxPool is used as a source of transactions that need to be mined into
// blocks and relayed to other peers.  It is safe for concurrent access from
// multiple peer readers, the miner, and the RPC server.
type TxPool struct {
	mtx  sync.RWMutex
	pool map[string]*TxDesc
}

// New returns a new memory pool for validated-but-unconfirmed transactions.
func New() *TxPool {
	return &TxPool{
		pool: make(map[string]*TxDesc),
	}
}

// Add inserts the passed transaction into the pool with the given fee rate.
// Adding a transaction that is already present is idempotent: the metadata
// is replaced.
func (mp *TxPool) Add(txID string, tx *wire.MsgTx, feeRate float64) {
	mp.mtx.Lock()
	mp.pool[txID] = &TxDesc{
		Tx:      tx,
		Added:   time.Now(),
		FeeRate: feeRate,
	}
	size := len(mp.pool)
	mp.mtx.Unlock()

	log.Debugf("Accepted transaction %v (pool size: %d, fee rate %.6f)",
		txID, size, feeRate)
}

// RemoveBlock removes every transaction confirmed by the passed block from
// the pool.
func (mp *TxPool) RemoveBlock(block *wire.MsgBlock) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	for _, tx := range block.Transactions {
		txHash := tx.TxHash()
		txID := txHash.String()
		if _, exists := mp.pool[txID]; exists {
			delete(mp.pool, txID)
			log.Debugf("Removed mined transaction %v", txID)
		}
	}
}

// Contains returns whether the passed transaction id exists in the pool.
func (mp *TxPool) Contains(txID string) bool {
	mp.mtx.RLock()
	_, exists := mp.pool[txID]
	mp.mtx.RUnlock()
	return exists
}

// Find returns the transaction with the given id, or nil when it is not in
// the pool.
func (mp *TxPool) Find(txID string) *wire.MsgTx {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	if desc, exists := mp.pool[txID]; exists {
		return desc.Tx
	}
	return nil
}

// Count returns the number of transactions in the pool.
func (mp *TxPool) Count() int {
	mp.mtx.RLock()
	count := len(mp.pool)
	mp.mtx.RUnlock()
	return count
}

// TxIDs returns the ids of every transaction in the pool.
func (mp *TxPool) TxIDs() []string {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	ids := make([]string, 0, len(mp.pool))
	for txID := range mp.pool {
		ids = append(ids, txID)
	}
	return ids
}

// ByFeeRateDescending returns a snapshot of every transaction in the pool
// ordered from the highest fee rate to the lowest.
func (mp *TxPool) ByFeeRateDescending() []*TxDesc {
	mp.mtx.RLock()
	descs := make([]*TxDesc, 0, len(mp.pool))
	for _, desc := range mp.pool {
		descs = append(descs, desc)
	}
	mp.mtx.RUnlock()

	sort.SliceStable(descs, func(i, j int) bool {
		return descs[i].FeeRate > descs[j].FeeRate
	})
	return descs
}

// Snapshot returns every transaction in the pool keyed by id.
func (mp *TxPool) Snapshot() map[string]*wire.MsgTx {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	txs := make(map[string]*wire.MsgTx, len(mp.pool))
	for txID, desc := range mp.pool {
		txs[txID] = desc.Tx
	}
	return txs
}
