// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"encoding/hex"
	"io"
	"sort"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/rafaeljabbour/gochain/wire"
)

// TxOutputs holds the surviving outputs of one transaction, keyed by their
// original vout index.  The original indices must be preserved so
// spent-output references remain valid after partial consumption.
type TxOutputs struct {
	Outputs map[int32]*wire.TxOut
}

// NewTxOutputs returns an empty TxOutputs.
func NewTxOutputs() *TxOutputs {
	return &TxOutputs{Outputs: make(map[int32]*wire.TxOut)}
}

// Serialize encodes the outputs to w as a count followed by index/output
// pairs in ascending index order.
func (o *TxOutputs) Serialize(w io.Writer) error {
	if err := writeUint32(w, uint32(len(o.Outputs))); err != nil {
		return err
	}

	for _, idx := range o.sortedIndices() {
		if err := writeUint32(w, uint32(idx)); err != nil {
			return err
		}
		out := o.Outputs[idx]
		if err := writeUint64(w, uint64(out.Value)); err != nil {
			return err
		}
		if err := wire.WriteVarBytes(w, out.PubKeyHash); err != nil {
			return err
		}
	}
	return nil
}

// SerializeBytes returns the serialization of the outputs as a byte slice.
func (o *TxOutputs) SerializeBytes() []byte {
	var buf bytes.Buffer
	_ = o.Serialize(&buf)
	return buf.Bytes()
}

// Deserialize decodes outputs from r into the receiver.
func (o *TxOutputs) Deserialize(r io.Reader) error {
	count, err := readUint32(r)
	if err != nil {
		return err
	}

	o.Outputs = make(map[int32]*wire.TxOut, count)
	for i := uint32(0); i < count; i++ {
		idx, err := readUint32(r)
		if err != nil {
			return err
		}
		value, err := readUint64(r)
		if err != nil {
			return err
		}
		pubKeyHash, err := wire.ReadVarBytes(r, 20, "output pubkey hash")
		if err != nil {
			return err
		}
		o.Outputs[int32(idx)] = wire.NewTxOut(int64(value), pubKeyHash)
	}
	return nil
}

// sortedIndices returns the output indices in ascending order so the
// serialization is deterministic.
func (o *TxOutputs) sortedIndices() []int32 {
	indices := make([]int32, 0, len(o.Outputs))
	for idx := range o.Outputs {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	return indices
}

// UTXOSet is the secondary index of spendable outputs over the chain store.
// It shares the chain's database handle and mirrors committed chain state:
// after a block is connected the caller invokes Update, and after a full
// sync the caller invokes Reindex.
type UTXOSet struct {
	chain *Chain
}

// NewUTXOSet returns a UTXO index backed by the passed chain's store.
func NewUTXOSet(chain *Chain) *UTXOSet {
	return &UTXOSet{chain: chain}
}

// utxoPrefixRange returns the iteration range covering every UTXO entry.
func utxoPrefixRange() *util.Range {
	return util.BytesPrefix([]byte{utxoKeyPrefixByte})
}

// Reindex drops every UTXO entry and rebuilds the index from a full chain
// walk.  The deletion of the stale entries and the write of the fresh index
// are committed together in one batch.
func (u *UTXOSet) Reindex() error {
	db := u.chain.db

	batch := new(leveldb.Batch)
	iter := db.NewIterator(utxoPrefixRange(), nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}

	utxo, err := u.chain.FindUTXO()
	if err != nil {
		return err
	}

	for txID, outs := range utxo {
		rawID, err := hex.DecodeString(txID)
		if err != nil {
			return err
		}
		batch.Put(utxoKey(rawID), outs.SerializeBytes())
	}
	if err := db.Write(batch, nil); err != nil {
		return err
	}

	log.Infof("UTXO index rebuilt with %d transactions", len(utxo))
	return nil
}

// Update applies a connected block to the index: the outputs consumed by
// each non-coinbase input are erased, deleting an entry entirely once no
// outputs survive, and every output of every transaction in the block is
// inserted under its original index.  All edits are committed in one batch.
func (u *UTXOSet) Update(block *wire.MsgBlock) error {
	db := u.chain.db
	batch := new(leveldb.Batch)

	// pending holds the entries already edited in this batch so later
	// inputs and transactions of the same block see those edits.
	pending := make(map[string]*TxOutputs)

	for _, tx := range block.Transactions {
		if !tx.IsCoinbase() {
			for _, in := range tx.Vin {
				key := utxoKey(in.TxID)
				outs, ok := pending[string(key)]
				if !ok {
					raw, err := db.Get(key, nil)
					if err == leveldb.ErrNotFound {
						continue
					}
					if err != nil {
						return err
					}

					outs = NewTxOutputs()
					if err := outs.Deserialize(bytes.NewReader(raw)); err != nil {
						return err
					}
					pending[string(key)] = outs
				}

				delete(outs.Outputs, in.Vout)
				if len(outs.Outputs) == 0 {
					batch.Delete(key)
				} else {
					batch.Put(key, outs.SerializeBytes())
				}
			}
		}

		newOuts := NewTxOutputs()
		for outIdx, out := range tx.Vout {
			newOuts.Outputs[int32(outIdx)] = out
		}
		txHash := tx.TxHash()
		batch.Put(utxoKey(txHash[:]), newOuts.SerializeBytes())
		pending[string(utxoKey(txHash[:]))] = newOuts
	}

	return db.Write(batch, nil)
}

// FindUTXO returns every unspent output locked to the passed pubkey hash.
func (u *UTXOSet) FindUTXO(pubKeyHash []byte) ([]*wire.TxOut, error) {
	var utxos []*wire.TxOut

	iter := u.chain.db.NewIterator(utxoPrefixRange(), nil)
	defer iter.Release()
	for iter.Next() {
		outs := NewTxOutputs()
		if err := outs.Deserialize(bytes.NewReader(iter.Value())); err != nil {
			return nil, err
		}
		for _, idx := range outs.sortedIndices() {
			out := outs.Outputs[idx]
			if bytes.Equal(out.PubKeyHash, pubKeyHash) {
				utxos = append(utxos, out)
			}
		}
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	return utxos, nil
}

// FindSpendableOutputs walks the index in the store's natural key order
// accumulating outputs locked to the passed pubkey hash until the
// accumulated value reaches amount.  It returns the accumulated value and
// the selected output indices grouped by hex transaction id.  No value-size
// coin selection is attempted.
func (u *UTXOSet) FindSpendableOutputs(pubKeyHash []byte,
	amount int64) (int64, map[string][]int32, error) {

	unspent := make(map[string][]int32)
	var accumulated int64

	iter := u.chain.db.NewIterator(utxoPrefixRange(), nil)
	defer iter.Release()
	for iter.Next() && accumulated < amount {
		txID := hex.EncodeToString(iter.Key()[1:])

		outs := NewTxOutputs()
		if err := outs.Deserialize(bytes.NewReader(iter.Value())); err != nil {
			return 0, nil, err
		}

		for _, idx := range outs.sortedIndices() {
			out := outs.Outputs[idx]
			if !bytes.Equal(out.PubKeyHash, pubKeyHash) {
				continue
			}
			accumulated += out.Value
			unspent[txID] = append(unspent[txID], idx)
			if accumulated >= amount {
				break
			}
		}
	}
	if err := iter.Error(); err != nil {
		return 0, nil, err
	}

	return accumulated, unspent, nil
}

// CountTransactions returns the number of transactions with at least one
// unspent output.
func (u *UTXOSet) CountTransactions() (int, error) {
	var count int
	iter := u.chain.db.NewIterator(utxoPrefixRange(), nil)
	defer iter.Release()
	for iter.Next() {
		count++
	}
	if err := iter.Error(); err != nil {
		return 0, err
	}
	return count, nil
}
