// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rafaeljabbour/gochain/blockchain"
	"github.com/rafaeljabbour/gochain/chaincfg"
	"github.com/rafaeljabbour/gochain/wallet"
	"github.com/rafaeljabbour/gochain/wire"
)

// testParams returns consensus parameters with a trivial difficulty so test
// blocks solve instantly.
func testParams() *chaincfg.Params {
	params := chaincfg.MainNetParams
	params.InitialBits = 1
	return &params
}

// freeListenAddr reserves an ephemeral loopback port and returns it as a
// listen address.
func freeListenAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()
	return addr
}

// createTestChain creates a chain at dbPath whose genesis pays a fresh
// wallet, mines extra coinbase-only blocks on top, and closes it again.
func createTestChain(t *testing.T, dbPath string, params *chaincfg.Params,
	extraBlocks int) *wallet.Wallet {

	t.Helper()

	w, err := wallet.NewWallet()
	require.NoError(t, err)

	chain, err := blockchain.Create(dbPath, params, w.Address())
	require.NoError(t, err)

	for i := 0; i < extraBlocks; i++ {
		coinbase, err := blockchain.NewCoinbaseTx(params, w.Address(),
			"", chain.Height()+1)
		require.NoError(t, err)
		_, err = chain.MineBlock([]*wire.MsgTx{coinbase})
		require.NoError(t, err)
	}

	require.NoError(t, blockchain.NewUTXOSet(chain).Reindex())
	require.NoError(t, chain.Close())
	return w
}

// copyDir recursively copies a chain database directory so two nodes can
// share a genesis block.
func copyDir(t *testing.T, src, dst string) {
	t.Helper()

	require.NoError(t, filepath.Walk(src, func(path string, info os.FileInfo,
		err error) error {

		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0700)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0600)
	}))
}

// startTestNode builds and starts a node over the given chain directory,
// returning it along with its listen address.
func startTestNode(t *testing.T, params *chaincfg.Params, dbPath,
	walletPath, seedAddr string) (*Node, string) {

	t.Helper()

	listenAddr := freeListenAddr(t)
	n, err := New(Config{
		Params:      params,
		ChainNet:    wire.MainNet,
		Listen:      listenAddr,
		RPCListen:   freeListenAddr(t),
		ChainDBPath: dbPath,
		WalletPath:  walletPath,
	})
	require.NoError(t, err)

	go n.Start(seedAddr)
	t.Cleanup(n.Stop)

	// Wait for the peer listener to come up.
	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", listenAddr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 5*time.Second, 10*time.Millisecond)

	return n, listenAddr
}

// peerCount returns the number of tracked peers.
func (n *Node) peerCount() int {
	n.peersMtx.Lock()
	defer n.peersMtx.Unlock()
	return len(n.peers)
}

// handshakeCount returns the number of handshake-complete peers.
func (n *Node) handshakeCount() int {
	n.peersMtx.Lock()
	defer n.peersMtx.Unlock()
	var count int
	for _, ps := range n.peers {
		if ps.handshakeComplete() {
			count++
		}
	}
	return count
}

// TestHandshake connects two nodes and expects both sides to finish the
// version/verack exchange.
func TestHandshake(t *testing.T) {
	params := testParams()

	dirA := filepath.Join(t.TempDir(), "blocks")
	createTestChain(t, dirA, params, 0)
	dirB := filepath.Join(t.TempDir(), "blocks")
	copyDir(t, dirA, dirB)

	n1, addr1 := startTestNode(t, params, dirA, "", "")
	n2, _ := startTestNode(t, params, dirB, "", addr1)

	require.Eventually(t, func() bool {
		return n1.handshakeCount() == 1 && n2.handshakeCount() == 1
	}, 5*time.Second, 10*time.Millisecond)
}

// TestInitialBlockDownload starts a fresh node against a seed that is three
// blocks ahead and expects it to catch up, reindex, and leave the syncing
// state.
func TestInitialBlockDownload(t *testing.T) {
	params := testParams()

	seedDir := filepath.Join(t.TempDir(), "blocks")
	freshDir := filepath.Join(t.TempDir(), "blocks")

	// Shared genesis: copy the database before the seed chain grows.
	w, err := wallet.NewWallet()
	require.NoError(t, err)
	chain, err := blockchain.Create(seedDir, params, w.Address())
	require.NoError(t, err)
	require.NoError(t, chain.Close())
	copyDir(t, seedDir, freshDir)

	chain, err = blockchain.Open(seedDir, params)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		coinbase, err := blockchain.NewCoinbaseTx(params, w.Address(),
			"", chain.Height()+1)
		require.NoError(t, err)
		_, err = chain.MineBlock([]*wire.MsgTx{coinbase})
		require.NoError(t, err)
	}
	require.NoError(t, blockchain.NewUTXOSet(chain).Reindex())
	require.NoError(t, chain.Close())

	// The fresh copy holds only the genesis block.  This is checked before
	// the node starts, since the sync begins as soon as it does.
	fresh, err := blockchain.Open(freshDir, params)
	require.NoError(t, err)
	require.Equal(t, int32(0), fresh.Height())
	require.NoError(t, fresh.Close())

	_, seedAddr := startTestNode(t, params, seedDir, "", "")
	n2, _ := startTestNode(t, params, freshDir, "", seedAddr)

	require.Eventually(t, func() bool {
		syncing, _ := n2.SyncState()
		return n2.Height() == 3 && !syncing
	}, 10*time.Second, 20*time.Millisecond)

	// The sync finished with a rebuilt UTXO index covering all four
	// coinbases.
	n2.chainMtx.Lock()
	count, err := n2.utxoSet.CountTransactions()
	n2.chainMtx.Unlock()
	require.NoError(t, err)
	require.Equal(t, 4, count)
}

// TestTxRelay submits a transaction on one node and expects the
// inv/getdata/tx exchange to deliver it into the other node's mempool.
func TestTxRelay(t *testing.T) {
	params := testParams()

	dirA := filepath.Join(t.TempDir(), "blocks")
	walletPath := filepath.Join(t.TempDir(), "wallet.dat")

	store, err := wallet.OpenStore(walletPath)
	require.NoError(t, err)
	fromAddr, err := store.CreateWallet()
	require.NoError(t, err)
	toAddr, err := store.CreateWallet()
	require.NoError(t, err)
	require.NoError(t, store.Save())

	w, err := store.Wallet(fromAddr)
	require.NoError(t, err)

	chain, err := blockchain.Create(dirA, params, fromAddr)
	require.NoError(t, err)
	require.NoError(t, blockchain.NewUTXOSet(chain).Reindex())
	require.NoError(t, chain.Close())

	dirB := filepath.Join(t.TempDir(), "blocks")
	copyDir(t, dirA, dirB)

	n1, addr1 := startTestNode(t, params, dirA, walletPath, "")
	n2, _ := startTestNode(t, params, dirB, walletPath, addr1)

	require.Eventually(t, func() bool {
		return n1.handshakeCount() == 1 && n2.handshakeCount() == 1
	}, 5*time.Second, 10*time.Millisecond)

	// Build a spend of the genesis output and submit it on n1.
	n1.chainMtx.Lock()
	tx, err := blockchain.NewUTXOTransaction(n1.utxoSet, w.PubKey(), w,
		toAddr, 3)
	n1.chainMtx.Unlock()
	require.NoError(t, err)

	known, err := n1.SubmitTx(tx)
	require.NoError(t, err)
	require.False(t, known)

	txHash := tx.TxHash()
	require.Eventually(t, func() bool {
		return n2.txPool.Contains(txHash.String())
	}, 5*time.Second, 10*time.Millisecond)

	// Submitting again reports the duplicate.
	known, err = n1.SubmitTx(tx)
	require.NoError(t, err)
	require.True(t, known)
}

// dialAndHandshake connects a raw wire-speaking client to a node and
// completes the version/verack exchange.
func dialAndHandshake(t *testing.T, addr string) net.Conn {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)

	me := wire.NewNetAddressIPPort(net.ParseIP("127.0.0.1"), 0, wire.SFNodeNetwork)
	version := wire.NewMsgVersion(me, me, 1, 0)
	require.NoError(t, wire.WriteMessage(conn, version, wire.ProtocolVersion,
		wire.MainNet))

	// Expect the node's version and verack, then acknowledge.
	sawVersion, sawVerAck := false, false
	for !sawVersion || !sawVerAck {
		msg, _, err := wire.ReadMessage(conn, wire.ProtocolVersion, wire.MainNet)
		require.NoError(t, err)
		switch msg.(type) {
		case *wire.MsgVersion:
			sawVersion = true
		case *wire.MsgVerAck:
			sawVerAck = true
		}
	}
	require.NoError(t, wire.WriteMessage(conn, wire.NewMsgVerAck(),
		wire.ProtocolVersion, wire.MainNet))

	return conn
}

// TestPingResponds checks the node echoes ping nonces in pongs.
func TestPingResponds(t *testing.T) {
	params := testParams()
	dir := filepath.Join(t.TempDir(), "blocks")
	createTestChain(t, dir, params, 0)

	_, addr := startTestNode(t, params, dir, "", "")
	conn := dialAndHandshake(t, addr)
	defer conn.Close()

	require.NoError(t, wire.WriteMessage(conn, wire.NewMsgPing(0xabcdef),
		wire.ProtocolVersion, wire.MainNet))

	for {
		msg, _, err := wire.ReadMessage(conn, wire.ProtocolVersion, wire.MainNet)
		require.NoError(t, err)
		if pong, ok := msg.(*wire.MsgPong); ok {
			require.Equal(t, uint64(0xabcdef), pong.Nonce)
			return
		}
	}
}

// TestMonitorDisconnectsSilentPeer shortens the liveness timers and checks
// a peer that never answers pings is disconnected and reaped.
func TestMonitorDisconnectsSilentPeer(t *testing.T) {
	oldInterval, oldTimeout, oldCleanup := pingInterval, pingTimeout, cleanupInterval
	pingInterval = 100 * time.Millisecond
	pingTimeout = 200 * time.Millisecond
	cleanupInterval = 100 * time.Millisecond
	defer func() {
		pingInterval, pingTimeout, cleanupInterval = oldInterval,
			oldTimeout, oldCleanup
	}()

	params := testParams()
	dir := filepath.Join(t.TempDir(), "blocks")
	createTestChain(t, dir, params, 0)

	n, addr := startTestNode(t, params, dir, "", "")
	conn := dialAndHandshake(t, addr)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return n.peerCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Never answer pings: the node must close the connection and the
	// cleanup task must reap the peer.
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, _, err := wire.ReadMessage(conn, wire.ProtocolVersion, wire.MainNet)
		if err != nil {
			require.NotErrorIs(t, err, os.ErrDeadlineExceeded)
			break
		}
	}

	require.Eventually(t, func() bool {
		return n.peerCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

// TestRPCEndToEnd drives the JSON-RPC surface: query methods, transaction
// submission from the wallet, a synchronous mine, and a merkle proof fetch.
func TestRPCEndToEnd(t *testing.T) {
	params := testParams()
	dir := filepath.Join(t.TempDir(), "blocks")
	walletPath := filepath.Join(t.TempDir(), "wallet.dat")

	store, err := wallet.OpenStore(walletPath)
	require.NoError(t, err)
	fromAddr, err := store.CreateWallet()
	require.NoError(t, err)
	toAddr, err := store.CreateWallet()
	require.NoError(t, err)
	require.NoError(t, store.Save())

	chain, err := blockchain.Create(dir, params, fromAddr)
	require.NoError(t, err)
	require.NoError(t, blockchain.NewUTXOSet(chain).Reindex())
	require.NoError(t, chain.Close())

	listenAddr := freeListenAddr(t)
	rpcAddr := freeListenAddr(t)
	n, err := New(Config{
		Params:      params,
		ChainNet:    wire.MainNet,
		Listen:      listenAddr,
		RPCListen:   rpcAddr,
		ChainDBPath: dir,
		WalletPath:  walletPath,
	})
	require.NoError(t, err)
	go n.Start("")
	t.Cleanup(n.Stop)

	require.Eventually(t, func() bool {
		_, err := RPCCall(rpcAddr, "getblockcount", nil)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	// Height starts at zero.
	raw, err := RPCCall(rpcAddr, "getblockcount", nil)
	require.NoError(t, err)
	require.Equal(t, "0", string(raw))

	// Not syncing.
	raw, err = RPCCall(rpcAddr, "getsyncing", nil)
	require.NoError(t, err)
	var syncState struct {
		Syncing bool  `json:"syncing"`
		Height  int32 `json:"height"`
	}
	require.NoError(t, json.Unmarshal(raw, &syncState))
	require.False(t, syncState.Syncing)
	require.Equal(t, int32(0), syncState.Height)

	// Submit a spend of the genesis output.
	raw, err = RPCCall(rpcAddr, "sendtx", map[string]interface{}{
		"from": fromAddr, "to": toAddr, "amount": 3,
	})
	require.NoError(t, err)
	var sendResult struct {
		TxID string `json:"txid"`
	}
	require.NoError(t, json.Unmarshal(raw, &sendResult))
	require.NotEmpty(t, sendResult.TxID)

	// The transaction is in the mempool.
	raw, err = RPCCall(rpcAddr, "getmempool", nil)
	require.NoError(t, err)
	var mempoolResult struct {
		Size         int      `json:"size"`
		Transactions []string `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(raw, &mempoolResult))
	require.Equal(t, 1, mempoolResult.Size)
	require.Equal(t, []string{sendResult.TxID}, mempoolResult.Transactions)

	// Re-submitting reports the duplicate.
	raw, err = RPCCall(rpcAddr, "sendtx", map[string]interface{}{
		"from": fromAddr, "to": toAddr, "amount": 3,
	})
	require.NoError(t, err)
	var dupResult struct {
		TxID   string `json:"txid"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(raw, &dupResult))
	require.Equal(t, "already in mempool", dupResult.Status)

	// Mine the transaction into a block.
	raw, err = RPCCall(rpcAddr, "mine", map[string]interface{}{
		"address": fromAddr,
	})
	require.NoError(t, err)
	var mineResult struct {
		Hash   string `json:"hash"`
		Height int32  `json:"height"`
	}
	require.NoError(t, json.Unmarshal(raw, &mineResult))
	require.Equal(t, int32(1), mineResult.Height)
	require.NotEmpty(t, mineResult.Hash)

	raw, err = RPCCall(rpcAddr, "getmempool", nil)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &mempoolResult))
	require.Zero(t, mempoolResult.Size)

	// Fetch and verify a merkle proof for the confirmed transaction.
	raw, err = RPCCall(rpcAddr, "getmerkleproof", map[string]interface{}{
		"txid": sendResult.TxID,
	})
	require.NoError(t, err)
	var proofResult struct {
		Proof string `json:"proof"`
	}
	require.NoError(t, json.Unmarshal(raw, &proofResult))

	proofBytes, err := hex.DecodeString(proofResult.Proof)
	require.NoError(t, err)
	var proof blockchain.MerkleProof
	require.NoError(t, proof.Deserialize(bytes.NewReader(proofBytes)))
	require.True(t, blockchain.VerifyMerkleProof(&proof))
	require.Equal(t, uint32(1), proof.BlockHeight)
	require.Equal(t, mineResult.Hash, proof.BlockHash.String())

	// Unknown methods use the JSON-RPC error code.
	_, err = RPCCall(rpcAddr, "bogusmethod", nil)
	require.ErrorContains(t, err, "-32601")
}

