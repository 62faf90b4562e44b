// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rafaeljabbour/gochain/blockchain"
	"github.com/rafaeljabbour/gochain/chainhash"
	"github.com/rafaeljabbour/gochain/chainutil"
	"github.com/rafaeljabbour/gochain/wallet"
	"github.com/rafaeljabbour/gochain/wire"
)

// JSON-RPC 2.0 error codes used by the server.
const (
	rpcParseError     = -32700
	rpcMethodNotFound = -32601
	rpcInternalError  = -32603
)

// rpcConnTimeout bounds each RPC connection's read and write.
const rpcConnTimeout = 5 * time.Second

// rpcHandler answers one RPC method given its raw params object.
type rpcHandler func(params json.RawMessage) (interface{}, error)

// rpcRequest models a JSON-RPC 2.0 request.
type rpcRequest struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

// rpcError models a JSON-RPC 2.0 error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcResponse models a successful JSON-RPC 2.0 response.
type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  interface{}     `json:"result"`
	ID      json.RawMessage `json:"id"`
}

// rpcErrorResponse models a failed JSON-RPC 2.0 response.  JSON-RPC 2.0
// responses carry either a result or an error member, never both.
type rpcErrorResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Error   *rpcError       `json:"error"`
	ID      json.RawMessage `json:"id"`
}

// rpcServer serves line-delimited JSON-RPC 2.0 over a TCP listener bound to
// listenAddr.  Each accepted connection carries a single request.
type rpcServer struct {
	node       *Node
	listenAddr string

	listener net.Listener
	methods  map[string]rpcHandler
	shutdown int32
	wg       sync.WaitGroup
}

// newRPCServer creates the RPC server and registers the method set.
func newRPCServer(n *Node, listenAddr string) *rpcServer {
	s := &rpcServer{
		node:       n,
		listenAddr: listenAddr,
		methods:    make(map[string]rpcHandler),
	}

	s.methods["getmempool"] = s.handleGetMempool
	s.methods["getblockcount"] = s.handleGetBlockCount
	s.methods["getsyncing"] = s.handleGetSyncing
	s.methods["sendtx"] = s.handleSendTx
	s.methods["mine"] = s.handleMine
	s.methods["getmerkleproof"] = s.handleGetMerkleProof

	return s
}

// Start binds the listener and launches the accept loop.
func (s *rpcServer) Start() error {
	listener, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to bind RPC server on %v: %w",
			s.listenAddr, err)
	}
	s.listener = listener

	s.wg.Add(1)
	go s.acceptLoop()

	log.Infof("JSON-RPC server listening on %v", s.listenAddr)
	return nil
}

// Stop closes the listener and waits for in-flight connections.
func (s *rpcServer) Stop() {
	if !atomic.CompareAndSwapInt32(&s.shutdown, 0, 1) {
		return
	}
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
}

// acceptLoop handles each RPC connection on its own goroutine.
func (s *rpcServer) acceptLoop() {
	defer s.wg.Done()

	for atomic.LoadInt32(&s.shutdown) == 0 {
		conn, err := s.listener.Accept()
		if err != nil {
			if atomic.LoadInt32(&s.shutdown) == 0 {
				log.Errorf("RPC accept error: %v", err)
			}
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection reads one newline-terminated request, answers it, and
// closes the connection.
func (s *rpcServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(rpcConnTimeout))

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return
	}

	resp := s.handleRequest(line)
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	payload = append(payload, '\n')
	conn.Write(payload)
}

// handleRequest parses and dispatches one request line.
func (s *rpcServer) handleRequest(line []byte) interface{} {
	var req rpcRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return rpcErrorResponse{
			Jsonrpc: "2.0",
			Error:   &rpcError{Code: rpcParseError, Message: "Parse error"},
			ID:      json.RawMessage("null"),
		}
	}

	id := req.ID
	if len(id) == 0 {
		id = json.RawMessage("null")
	}

	handler, ok := s.methods[req.Method]
	if !ok {
		return rpcErrorResponse{
			Jsonrpc: "2.0",
			Error: &rpcError{
				Code:    rpcMethodNotFound,
				Message: "Method not found: " + req.Method,
			},
			ID: id,
		}
	}

	result, err := handler(normalizeParams(req.Params))
	if err != nil {
		return rpcErrorResponse{
			Jsonrpc: "2.0",
			Error: &rpcError{
				Code:    rpcInternalError,
				Message: "Internal error: " + err.Error(),
			},
			ID: id,
		}
	}

	return rpcResponse{Jsonrpc: "2.0", Result: result, ID: id}
}

// normalizeParams maps missing params and the empty positional array to an
// empty object so handlers can unmarshal uniformly.
func normalizeParams(params json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) ||
		bytes.Equal(trimmed, []byte("[]")) {
		return json.RawMessage("{}")
	}
	return params
}

// handleGetMempool implements the getmempool method.
func (s *rpcServer) handleGetMempool(_ json.RawMessage) (interface{}, error) {
	ids := s.node.txPool.TxIDs()
	return struct {
		Size         int      `json:"size"`
		Transactions []string `json:"transactions"`
	}{
		Size:         len(ids),
		Transactions: ids,
	}, nil
}

// handleGetBlockCount implements the getblockcount method.
func (s *rpcServer) handleGetBlockCount(_ json.RawMessage) (interface{}, error) {
	return s.node.Height(), nil
}

// handleGetSyncing implements the getsyncing method.
func (s *rpcServer) handleGetSyncing(_ json.RawMessage) (interface{}, error) {
	syncing, syncPeer := s.node.SyncState()
	result := map[string]interface{}{
		"syncing": syncing,
		"height":  s.node.Height(),
	}
	if syncing {
		result["syncPeer"] = syncPeer
	}
	return result, nil
}

// handleSendTx implements the sendtx method: it builds and signs a
// transaction from a local wallet, submits it to the mempool, and relays
// it.
func (s *rpcServer) handleSendTx(params json.RawMessage) (interface{}, error) {
	var p struct {
		From   string `json:"from"`
		To     string `json:"to"`
		Amount int64  `json:"amount"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	if p.From == "" {
		return nil, errors.New("missing 'from' parameter")
	}
	if p.To == "" {
		return nil, errors.New("missing 'to' parameter")
	}
	if p.Amount <= 0 {
		return nil, errors.New("'amount' must be positive")
	}
	if !chainutil.ValidateAddress(p.From) {
		return nil, errors.New("invalid 'from' address")
	}
	if !chainutil.ValidateAddress(p.To) {
		return nil, errors.New("invalid 'to' address")
	}

	store, err := wallet.OpenStore(s.node.cfg.WalletPath)
	if err != nil {
		return nil, err
	}
	w, err := store.Wallet(p.From)
	if err != nil {
		return nil, err
	}

	s.node.chainMtx.Lock()
	if s.node.chain == nil {
		s.node.chainMtx.Unlock()
		return nil, ErrNoChainOpen
	}
	tx, err := blockchain.NewUTXOTransaction(s.node.utxoSet, w.PubKey(), w,
		p.To, p.Amount)
	s.node.chainMtx.Unlock()
	if err != nil {
		return nil, err
	}

	txHash := tx.TxHash()
	alreadyKnown, err := s.node.SubmitTx(tx)
	if err != nil {
		return nil, err
	}

	if alreadyKnown {
		return map[string]string{
			"txid":   txHash.String(),
			"status": "already in mempool",
		}, nil
	}

	log.Infof("sendtx: submitted tx %v", txHash)
	return map[string]string{"txid": txHash.String()}, nil
}

// handleMine implements the mine method: a synchronous one-block mine.
func (s *rpcServer) handleMine(params json.RawMessage) (interface{}, error) {
	var p struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}
	if p.Address == "" {
		return nil, errors.New("missing 'address' parameter")
	}
	if !chainutil.ValidateAddress(p.Address) {
		return nil, errors.New("invalid miner address")
	}

	block, err := s.node.MineBlock(p.Address)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"hash":   block.BlockHash.String(),
		"height": s.node.Height(),
	}, nil
}

// handleGetMerkleProof implements the getmerkleproof method: it locates the
// confirmed transaction, rebuilds the block's merkle tree, and returns the
// serialized inclusion proof as hex.
func (s *rpcServer) handleGetMerkleProof(params json.RawMessage) (interface{}, error) {
	var p struct {
		TxID string `json:"txid"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	txHash, err := chainhash.NewHashFromStr(p.TxID)
	if err != nil {
		return nil, err
	}

	s.node.chainMtx.Lock()
	defer s.node.chainMtx.Unlock()

	if s.node.chain == nil {
		return nil, ErrNoChainOpen
	}

	block, txIndex, err := findBlockWithTx(s.node.chain, txHash)
	if err != nil {
		return nil, err
	}

	tree, err := blockchain.NewMerkleTree(block.Transactions)
	if err != nil {
		return nil, err
	}
	proof, err := tree.Proof(txIndex)
	if err != nil {
		return nil, err
	}

	proof.TxID = *txHash
	proof.BlockHash = block.BlockHash
	proof.BlockHeight = uint32(s.node.chain.HeightOf(&block.BlockHash))

	return map[string]string{
		"proof": hex.EncodeToString(proof.SerializeBytes()),
	}, nil
}

// findBlockWithTx walks the chain for the block containing the transaction
// with the given id and returns it along with the transaction's index.
func findBlockWithTx(chain *blockchain.Chain,
	txHash *chainhash.Hash) (*wire.MsgBlock, int, error) {

	iter := chain.Iterator()
	for iter.HasNext() {
		block, err := iter.Next()
		if err != nil {
			return nil, 0, err
		}
		for i, tx := range block.Transactions {
			if tx.TxHash() == *txHash {
				return block, i, nil
			}
		}
	}
	return nil, 0, blockchain.ErrTxNotFound
}
