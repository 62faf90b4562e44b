// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/rafaeljabbour/gochain/chaincfg"
	"github.com/rafaeljabbour/gochain/chainhash"
	"github.com/rafaeljabbour/gochain/wire"
)

// Database key layout.  A single ordered key-value store holds every record:
//
//	"l"          -> current tip hash (32 bytes)
//	"b" || hash  -> serialized block
//	"h" || hash  -> 4-byte little-endian height
//	"u" || txid  -> serialized unspent outputs for that transaction
var (
	tipKey            = []byte("l")
	blockKeyPrefix    = byte('b')
	heightKeyPrefix   = byte('h')
	utxoKeyPrefixByte = byte('u')
)

func blockKey(hash *chainhash.Hash) []byte {
	key := make([]byte, 0, 1+chainhash.HashSize)
	key = append(key, blockKeyPrefix)
	return append(key, hash[:]...)
}

func heightKey(hash *chainhash.Hash) []byte {
	key := make([]byte, 0, 1+chainhash.HashSize)
	key = append(key, heightKeyPrefix)
	return append(key, hash[:]...)
}

func utxoKey(txID []byte) []byte {
	key := make([]byte, 0, 1+len(txID))
	key = append(key, utxoKeyPrefixByte)
	return append(key, txID...)
}

// Chain provides the persistent chain state: the append-only block store,
// the tip pointer, and the per-block height index.  The database handle is
// owned by the Chain and shared with the UTXO index so the store is opened
// exactly once per process.
//
// Chain is not internally synchronized.  Callers that mutate the chain from
// multiple goroutines must serialize access; the node runtime does so under
// its chain mutex.
type Chain struct {
	params *chaincfg.Params
	db     *leveldb.DB

	tip       chainhash.Hash
	tipHeight int32
}

// Exists returns whether a chain database is present at the given path.
func Exists(dbPath string) bool {
	db, err := leveldb.OpenFile(dbPath, &opt.Options{ErrorIfMissing: true})
	if err != nil {
		return false
	}
	db.Close()
	return true
}

// Create builds a new chain database at dbPath whose genesis block pays the
// block subsidy to the passed address.  It fails with ErrChainExists when a
// database is already present.
func Create(dbPath string, params *chaincfg.Params, address string) (*Chain, error) {
	if Exists(dbPath) {
		return nil, ErrChainExists
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, err
	}

	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating database: %w", err)
	}

	coinbase, err := NewCoinbaseTx(params, address, params.GenesisCoinbaseData, 0)
	if err != nil {
		db.Close()
		return nil, err
	}

	genesis, err := NewBlock(params, []*wire.MsgTx{coinbase},
		&chainhash.Hash{}, params.InitialBits, nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	var heightBytes [4]byte
	batch := new(leveldb.Batch)
	batch.Put(blockKey(&genesis.BlockHash), genesis.SerializeBytes())
	batch.Put(tipKey, genesis.BlockHash[:])
	batch.Put(heightKey(&genesis.BlockHash), heightBytes[:])

	if err := db.Write(batch, nil); err != nil {
		db.Close()
		return nil, fmt.Errorf("error writing genesis block: %w", err)
	}

	log.Infof("Genesis block %v created paying %v", genesis.BlockHash, address)

	return &Chain{
		params:    params,
		db:        db,
		tip:       genesis.BlockHash,
		tipHeight: 0,
	}, nil
}

// Open loads the chain state from an existing database at dbPath.  It fails
// with ErrNoChain when no database exists there.
func Open(dbPath string, params *chaincfg.Params) (*Chain, error) {
	db, err := leveldb.OpenFile(dbPath, &opt.Options{ErrorIfMissing: true})
	if err != nil {
		return nil, ErrNoChain
	}

	tipBytes, err := db.Get(tipKey, nil)
	if err != nil {
		db.Close()
		return nil, ErrNoChain
	}

	c := &Chain{params: params, db: db}
	if err := c.tip.SetBytes(tipBytes); err != nil {
		db.Close()
		return nil, err
	}

	heightBytes, err := db.Get(heightKey(&c.tip), nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error reading chain height: %w", err)
	}
	c.tipHeight = int32(byteOrder.Uint32(heightBytes))

	return c, nil
}

// Close releases the underlying database handle.
func (c *Chain) Close() error {
	return c.db.Close()
}

// Params returns the consensus parameters the chain operates under.
func (c *Chain) Params() *chaincfg.Params {
	return c.params
}

// Tip returns the hash of the current chain tip.
func (c *Chain) Tip() chainhash.Hash {
	return c.tip
}

// Height returns the cached height of the current chain tip.
func (c *Chain) Height() int32 {
	return c.tipHeight
}

// HeightOf returns the stored height of the given block hash, or -1 when the
// hash is unknown.
func (c *Chain) HeightOf(hash *chainhash.Hash) int32 {
	heightBytes, err := c.db.Get(heightKey(hash), nil)
	if err != nil {
		return -1
	}
	return int32(byteOrder.Uint32(heightBytes))
}

// HaveBlock returns whether the block with the given hash is stored.
func (c *Chain) HaveBlock(hash *chainhash.Hash) bool {
	have, err := c.db.Has(blockKey(hash), nil)
	return err == nil && have
}

// GetBlock fetches and deserializes the block with the given hash.  It fails
// with ErrBlockNotFound when the hash is not stored.
func (c *Chain) GetBlock(hash *chainhash.Hash) (*wire.MsgBlock, error) {
	serialized, err := c.db.Get(blockKey(hash), nil)
	if err != nil {
		return nil, ErrBlockNotFound
	}

	block := &wire.MsgBlock{}
	if err := block.Deserialize(bytes.NewReader(serialized)); err != nil {
		return nil, err
	}
	return block, nil
}

// MineBlock verifies the passed transactions, seals them into a new block
// via proof of work at the next required difficulty, and persists the block
// as the new chain tip.  Transactions may spend outputs of earlier
// transactions in the same list.
func (c *Chain) MineBlock(txs []*wire.MsgTx) (*wire.MsgBlock, error) {
	blockCtx := make(map[string]*wire.MsgTx, len(txs))
	spent := make(map[string]struct{})
	for _, tx := range txs {
		if err := c.VerifyTransactionCtx(tx, blockCtx); err != nil {
			return nil, err
		}
		if err := ClaimOutpoints(tx, spent); err != nil {
			return nil, err
		}
		txHash := tx.TxHash()
		blockCtx[hex.EncodeToString(txHash[:])] = tx
	}

	nextBits, err := c.CalcNextRequiredDifficulty(c.tipHeight + 1)
	if err != nil {
		return nil, err
	}

	block, err := NewBlock(c.params, txs, &c.tip, nextBits, nil)
	if err != nil {
		return nil, err
	}

	if err := c.connectBlock(block); err != nil {
		return nil, err
	}
	return block, nil
}

// AddBlock extends the chain with a block received from a peer or produced
// by the miner.  The block must reference the current tip; a block that is
// already stored is a no-op.  Size and transaction-count limits are enforced
// here so an oversized block can never enter the store.
func (c *Chain) AddBlock(block *wire.MsgBlock) error {
	if c.HaveBlock(&block.BlockHash) {
		return nil
	}

	if block.PrevBlock != c.tip {
		str := fmt.Sprintf("block previous hash %v does not match "+
			"current tip %v", block.PrevBlock, c.tip)
		return ruleError(ErrPrevBlockMismatch, str)
	}

	if count := uint32(len(block.Transactions)); count > c.params.MaxBlockTxs {
		str := fmt.Sprintf("block has %d transactions, max %d", count,
			c.params.MaxBlockTxs)
		return ruleError(ErrTooManyTransactions, str)
	}
	if size := uint32(block.SerializeSize()); size > c.params.MaxBlockSize {
		str := fmt.Sprintf("serialized block is %d bytes, max %d",
			size, c.params.MaxBlockSize)
		return ruleError(ErrBlockTooBig, str)
	}

	return c.connectBlock(block)
}

// connectBlock atomically persists the block, the new tip pointer, and the
// height index entry, then advances the in-memory tip.  The in-memory state
// is only updated after the batch commits.
func (c *Chain) connectBlock(block *wire.MsgBlock) error {
	newHeight := c.tipHeight + 1

	var heightBytes [4]byte
	byteOrder.PutUint32(heightBytes[:], uint32(newHeight))

	batch := new(leveldb.Batch)
	batch.Put(blockKey(&block.BlockHash), block.SerializeBytes())
	batch.Put(tipKey, block.BlockHash[:])
	batch.Put(heightKey(&block.BlockHash), heightBytes[:])

	if err := c.db.Write(batch, nil); err != nil {
		return fmt.Errorf("error writing block: %w", err)
	}

	c.tip = block.BlockHash
	c.tipHeight = newHeight

	log.Debugf("Connected block %v (height %d, %d txs)", block.BlockHash,
		newHeight, len(block.Transactions))
	return nil
}

// BlockHashesAfter walks the chain and returns every block hash strictly
// after the given hash, oldest first.  When the hash is not on the chain at
// all the result is empty: the requester is on an incompatible chain and
// there are no blocks to offer it.
func (c *Chain) BlockHashesAfter(afterHash *chainhash.Hash) ([]chainhash.Hash, error) {
	var allHashes []chainhash.Hash
	iter := c.Iterator()
	for iter.HasNext() {
		block, err := iter.Next()
		if err != nil {
			return nil, err
		}
		allHashes = append(allHashes, block.BlockHash)
	}

	// The walk yields newest first; reverse to get oldest first.
	for i, j := 0, len(allHashes)-1; i < j; i, j = i+1, j-1 {
		allHashes[i], allHashes[j] = allHashes[j], allHashes[i]
	}

	for i := range allHashes {
		if allHashes[i] == *afterHash {
			return allHashes[i+1:], nil
		}
	}

	return nil, nil
}

// FindTransaction scans the chain from the tip for the transaction with the
// given id.  It fails with ErrTxNotFound when no confirmed transaction
// matches.
func (c *Chain) FindTransaction(txID []byte) (*wire.MsgTx, error) {
	iter := c.Iterator()
	for iter.HasNext() {
		block, err := iter.Next()
		if err != nil {
			return nil, err
		}
		for _, tx := range block.Transactions {
			txHash := tx.TxHash()
			if bytes.Equal(txHash[:], txID) {
				return tx, nil
			}
		}
	}
	return nil, ErrTxNotFound
}

// FindUTXO walks the whole chain and returns every unspent transaction
// output grouped by the hex id of its parent transaction.  Output indices
// within each group are the original vout positions so spent-output
// references remain valid after partial consumption.
func (c *Chain) FindUTXO() (map[string]*TxOutputs, error) {
	utxo := make(map[string]*TxOutputs)
	spent := make(map[string]map[int32]struct{})

	iter := c.Iterator()
	for iter.HasNext() {
		block, err := iter.Next()
		if err != nil {
			return nil, err
		}

		// Walk the block's transactions last to first so an output spent
		// later in the same block is already marked spent.
		for i := len(block.Transactions) - 1; i >= 0; i-- {
			tx := block.Transactions[i]
			txHash := tx.TxHash()
			txID := hex.EncodeToString(txHash[:])

			outs := NewTxOutputs()
			for outIdx, out := range tx.Vout {
				if _, ok := spent[txID][int32(outIdx)]; ok {
					continue
				}
				outs.Outputs[int32(outIdx)] = out
			}
			if len(outs.Outputs) > 0 {
				utxo[txID] = outs
			}

			if tx.IsCoinbase() {
				continue
			}
			for _, in := range tx.Vin {
				inID := hex.EncodeToString(in.TxID)
				if spent[inID] == nil {
					spent[inID] = make(map[int32]struct{})
				}
				spent[inID][in.Vout] = struct{}{}
			}
		}
	}

	return utxo, nil
}

// VerifyTransaction checks a transaction's structure and input signatures
// against previously confirmed transactions only.
func (c *Chain) VerifyTransaction(tx *wire.MsgTx) error {
	return c.VerifyTransactionCtx(tx, nil)
}

// VerifyTransactionCtx checks a transaction's structure and input signatures
// with an additional block context: inputs may reference transactions that
// appear earlier in the same candidate block, keyed by hex id.  The context
// is consulted before the chain.
func (c *Chain) VerifyTransactionCtx(tx *wire.MsgTx, blockCtx map[string]*wire.MsgTx) error {
	if tx.IsCoinbase() {
		return nil
	}

	if len(tx.Vin) == 0 {
		return ruleError(ErrEmptyInputs, "transaction has no inputs")
	}
	if len(tx.Vout) == 0 {
		return ruleError(ErrEmptyOutputs, "transaction has no outputs")
	}

	prevTxs, err := c.fetchReferencedTxs(tx, blockCtx)
	if err != nil {
		return err
	}

	return VerifyTransactionSigs(tx, prevTxs)
}

// fetchReferencedTxs resolves every input of tx to its previous transaction,
// consulting the intra-block context before falling back to a chain scan.
func (c *Chain) fetchReferencedTxs(tx *wire.MsgTx,
	blockCtx map[string]*wire.MsgTx) (map[string]*wire.MsgTx, error) {

	prevTxs := make(map[string]*wire.MsgTx, len(tx.Vin))
	for _, in := range tx.Vin {
		txID := hex.EncodeToString(in.TxID)
		if _, ok := prevTxs[txID]; ok {
			continue
		}

		if ctxTx, ok := blockCtx[txID]; ok {
			prevTxs[txID] = ctxTx
			continue
		}

		prevTx, err := c.FindTransaction(in.TxID)
		if err != nil {
			str := fmt.Sprintf("input references unknown "+
				"transaction %s", txID)
			return nil, ruleError(ErrUnknownInput, str)
		}
		prevTxs[txID] = prevTx
	}
	return prevTxs, nil
}

// SignTransaction resolves the previous transaction of every input of tx and
// signs each input with the passed signer.
func (c *Chain) SignTransaction(tx *wire.MsgTx, signer Signer) error {
	prevTxs, err := c.fetchReferencedTxs(tx, nil)
	if err != nil {
		return err
	}
	return SignTransactionInputs(tx, signer, prevTxs)
}

// NewBlock assembles a block from the passed transactions on top of the
// given previous hash and runs the proof-of-work search at the supplied
// difficulty.  The quit channel, when non-nil, interrupts the search.
func NewBlock(params *chaincfg.Params, txs []*wire.MsgTx, prevHash *chainhash.Hash,
	bits int32, quit <-chan struct{}) (*wire.MsgBlock, error) {

	block := wire.NewMsgBlock(time.Now().Unix(), prevHash, bits)
	block.Transactions = txs

	solved, err := solveBlock(block, quit)
	if err != nil {
		return nil, err
	}
	if !solved {
		return nil, fmt.Errorf("proof of work search interrupted")
	}
	return block, nil
}
