// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rafaeljabbour/gochain/blockchain"
	"github.com/rafaeljabbour/gochain/chaincfg"
	"github.com/rafaeljabbour/gochain/chainhash"
	"github.com/rafaeljabbour/gochain/mempool"
	"github.com/rafaeljabbour/gochain/peer"
	"github.com/rafaeljabbour/gochain/wire"
)

// MaxPeers is the maximum number of simultaneous peer connections.  Further
// inbound connections are rejected.
const MaxPeers = 125

// These are variables rather than constants so tests can shorten them.
var (
	// pingInterval is how long the liveness monitor sleeps between
	// pings.
	pingInterval = 120 * time.Second

	// pingTimeout is how long the monitor waits for a matching pong
	// before the peer is considered dead.
	pingTimeout = 30 * time.Second

	// cleanupInterval is how often disconnected peers are reaped from
	// the peer list.
	cleanupInterval = 30 * time.Second
)

// ErrSyncing is returned by operations that cannot run during the initial
// block download.
var ErrSyncing = errors.New("currently syncing, try again later")

// ErrNoChainOpen is returned by operations that require an open chain when
// the node was started without one.
var ErrNoChainOpen = errors.New("no blockchain available")

// Config holds the runtime configuration for a node.
type Config struct {
	// Params are the consensus parameters to operate under.
	Params *chaincfg.Params

	// ChainNet is the network magic used to frame peer messages.
	ChainNet wire.ChainNet

	// Listen is the address the peer-to-peer listener binds to.
	Listen string

	// RPCListen is the address the JSON-RPC listener binds to.  The
	// server binds exactly this address; the command-line front-end
	// passes a loopback address.
	RPCListen string

	// ChainDBPath is the location of the chain database.  The node runs
	// without a chain when none exists there yet.
	ChainDBPath string

	// WalletPath is the location of the wallet file used by the sendtx
	// RPC method.
	WalletPath string

	// MinerAddress, when non-empty, enables the background miner paying
	// rewards to this address.
	MinerAddress string
}

// Node is the peer-to-peer runtime: it owns the chain state, the UTXO
// index, the mempool, the peer set, the background miner, and the JSON-RPC
// server, and coordinates them under the locking discipline described
// throughout the package.
//
// Lock order, outermost first: peersMtx, chainMtx, per-peer mutexes, then
// the mempool's internal mutex.  A goroutine never acquires these in the
// reverse direction.
type Node struct {
	cfg Config

	started  int32
	shutdown int32
	quit     chan struct{}
	wg       sync.WaitGroup

	listener net.Listener

	// peersMtx guards the peer list.
	peersMtx sync.Mutex
	peers    []*peerState

	// chainMtx guards the chain, the UTXO index, and the sync state.
	chainMtx     sync.Mutex
	chain        *blockchain.Chain
	utxoSet      *blockchain.UTXOSet
	syncing      bool
	syncPeerAddr string

	// height caches the chain tip height so hot paths can read it
	// without the chain lock.
	height int32

	txPool *mempool.TxPool

	// minerWake nudges the miner out of its timed wait when a
	// transaction enters the mempool.
	minerWake chan struct{}

	rpc *rpcServer
}

// New creates a node from the passed config.  The chain database is opened
// when present; a node without a chain can still hold wallet state and
// answer RPC queries, and starts serving the chain after createblockchain
// runs and the node restarts.
func New(cfg Config) (*Node, error) {
	n := &Node{
		cfg:       cfg,
		quit:      make(chan struct{}),
		txPool:    mempool.New(),
		minerWake: make(chan struct{}, 1),
		height:    -1,
	}

	if blockchain.Exists(cfg.ChainDBPath) {
		chain, err := blockchain.Open(cfg.ChainDBPath, cfg.Params)
		if err != nil {
			return nil, err
		}
		n.chain = chain
		n.utxoSet = blockchain.NewUTXOSet(chain)
		n.height = chain.Height()
	} else {
		log.Warnf("No blockchain found at %v; running without chain "+
			"state", cfg.ChainDBPath)
	}

	n.rpc = newRPCServer(n, cfg.RPCListen)
	return n, nil
}

// Height returns the cached chain height, or -1 when no chain is open.
func (n *Node) Height() int32 {
	return atomic.LoadInt32(&n.height)
}

func (n *Node) setHeight(height int32) {
	atomic.StoreInt32(&n.height, height)
}

// SyncState returns the current sync flag and sync peer address.
func (n *Node) SyncState() (bool, string) {
	n.chainMtx.Lock()
	defer n.chainMtx.Unlock()
	return n.syncing, n.syncPeerAddr
}

// Start launches the RPC server, the cleanup task, the miner when
// configured, the optional outbound seed connection, and finally the accept
// loop.  It blocks until Stop is called or the listener fails.
func (n *Node) Start(seedAddr string) error {
	if !atomic.CompareAndSwapInt32(&n.started, 0, 1) {
		return errors.New("node already started")
	}

	listener, err := net.Listen("tcp", n.cfg.Listen)
	if err != nil {
		return err
	}
	n.listener = listener
	log.Infof("Node listening on %v (height %d)", n.cfg.Listen, n.Height())

	if err := n.rpc.Start(); err != nil {
		listener.Close()
		return err
	}

	n.wg.Add(1)
	go n.cleanupLoop()

	if n.cfg.MinerAddress != "" {
		n.wg.Add(1)
		go n.minerLoop()
		log.Infof("Background miner enabled (reward to %v)",
			n.cfg.MinerAddress)
	}

	if seedAddr != "" {
		n.connectToSeed(seedAddr)
	}

	n.acceptLoop()
	return nil
}

// acceptLoop accepts inbound connections until the node shuts down.
func (n *Node) acceptLoop() {
	for atomic.LoadInt32(&n.shutdown) == 0 {
		conn, err := n.listener.Accept()
		if err != nil {
			if atomic.LoadInt32(&n.shutdown) == 0 {
				log.Errorf("Accept error: %v", err)
			}
			continue
		}

		p := peer.NewInbound(conn, peer.Config{
			ChainNet:        n.cfg.ChainNet,
			ProtocolVersion: wire.ProtocolVersion,
		})

		if !n.trackPeer(p) {
			log.Infof("Max peers reached (%d), rejecting %v",
				MaxPeers, p.Addr())
			p.Disconnect()
		}
	}
}

// connectToSeed performs the single configured outbound connection and
// opens the handshake by sending our version first.
func (n *Node) connectToSeed(seedAddr string) {
	p, err := peer.NewOutbound(seedAddr, peer.Config{
		ChainNet:        n.cfg.ChainNet,
		ProtocolVersion: wire.ProtocolVersion,
	})
	if err != nil {
		log.Errorf("Failed to connect to seed %v: %v", seedAddr, err)
		return
	}

	if !n.trackPeer(p) {
		p.Disconnect()
		return
	}

	ps := n.findPeer(p.Addr())
	if ps != nil {
		n.sendVersion(ps)
	}
}

// trackPeer inserts the peer into the peer list and spawns its reader and
// monitor goroutines.  It returns false when the peer list is full.
func (n *Node) trackPeer(p *peer.Peer) bool {
	ps := newPeerState(p)

	n.peersMtx.Lock()
	if len(n.peers) >= MaxPeers {
		n.peersMtx.Unlock()
		return false
	}
	n.peers = append(n.peers, ps)
	n.peersMtx.Unlock()

	n.wg.Add(2)
	go n.peerReader(ps)
	go n.peerMonitor(ps)
	return true
}

// findPeer returns the tracked state for the given remote address.
func (n *Node) findPeer(addr string) *peerState {
	n.peersMtx.Lock()
	defer n.peersMtx.Unlock()
	for _, ps := range n.peers {
		if ps.peer.Addr() == addr {
			return ps
		}
	}
	return nil
}

// peerReader loops receiving messages and dispatching them until the
// connection dies, then tears the peer down and releases the monitor.
func (n *Node) peerReader(ps *peerState) {
	defer n.wg.Done()

	for atomic.LoadInt32(&n.shutdown) == 0 && ps.peer.Connected() {
		msg, err := ps.peer.Receive()
		if err != nil {
			// A malformed typed payload is dropped; the stream is
			// still aligned on the next frame.
			var perr *peer.Error
			if errors.As(err, &perr) && perr.Kind == peer.ErrMalformedPayload {
				log.Infof("Dropping malformed message from %v: %v",
					ps.peer.Addr(), err)
				continue
			}
			if atomic.LoadInt32(&n.shutdown) == 0 {
				log.Infof("Peer %v disconnected: %v",
					ps.peer.Addr(), err)
			}
			break
		}
		n.dispatch(ps, msg)
	}

	ps.peer.Disconnect()
	ps.markDone()
}

// peerMonitor periodically pings the peer and disconnects it when a
// matching pong does not arrive in time.
func (n *Node) peerMonitor(ps *peerState) {
	defer n.wg.Done()

	for {
		select {
		case <-time.After(pingInterval):
		case <-ps.done:
			return
		case <-n.quit:
			return
		}

		if !ps.peer.Connected() {
			return
		}

		nonce, err := wire.RandomUint64()
		if err != nil {
			continue
		}

		pongCh := ps.armPing(nonce)
		if err := ps.peer.Send(wire.NewMsgPing(nonce)); err != nil {
			log.Infof("Failed to ping %v: %v", ps.peer.Addr(), err)
			ps.peer.Disconnect()
			return
		}
		log.Tracef("Sent ping to %v", ps.peer.Addr())

		select {
		case got := <-pongCh:
			if got != nonce {
				log.Infof("Pong nonce mismatch from %v: "+
					"expected %d, got %d -- disconnecting",
					ps.peer.Addr(), nonce, got)
				ps.peer.Disconnect()
				return
			}
			log.Tracef("Got pong from %v", ps.peer.Addr())

		case <-time.After(pingTimeout):
			log.Infof("Peer %v: no pong reply for %v -- "+
				"disconnecting", ps.peer.Addr(), pingTimeout)
			ps.peer.Disconnect()
			return

		case <-ps.done:
			return

		case <-n.quit:
			return
		}
	}
}

// cleanupLoop reaps disconnected peers from the peer list every
// cleanupInterval.
func (n *Node) cleanupLoop() {
	defer n.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n.cleanupPeers()
		case <-n.quit:
			return
		}
	}
}

// cleanupPeers removes disconnected peers under the peers lock.  The
// associated goroutines have either exited already or will exit on their
// own; they are waited on collectively at shutdown, never under the lock.
func (n *Node) cleanupPeers() {
	var reaped int

	n.peersMtx.Lock()
	live := n.peers[:0]
	for _, ps := range n.peers {
		if ps.peer.Connected() {
			live = append(live, ps)
		} else {
			ps.markDone()
			reaped++
		}
	}
	n.peers = live
	n.peersMtx.Unlock()

	if reaped > 0 {
		log.Debugf("Cleaned up %d disconnected peer(s)", reaped)
	}
}

// Stop shuts the node down: the shutdown flag unblocks the accept loop once
// the listener closes, the miner and cleanup tasks observe the quit
// channel, every peer is disconnected and its monitor released, and all
// goroutines are waited for.
func (n *Node) Stop() {
	if !atomic.CompareAndSwapInt32(&n.shutdown, 0, 1) {
		return
	}

	log.Infof("Node shutting down")
	close(n.quit)

	if n.listener != nil {
		n.listener.Close()
	}
	n.rpc.Stop()

	n.peersMtx.Lock()
	peers := append([]*peerState(nil), n.peers...)
	n.peers = nil
	n.peersMtx.Unlock()

	for _, ps := range peers {
		ps.peer.Disconnect()
		ps.markDone()
	}

	n.wg.Wait()

	n.chainMtx.Lock()
	if n.chain != nil {
		n.chain.Close()
		n.chain = nil
	}
	n.chainMtx.Unlock()

	log.Infof("Node stopped")
}

// dispatch routes one received message to its handler.  Handler errors are
// contained: domain errors log and drop the message, they never tear down
// the node.
func (n *Node) dispatch(ps *peerState, msg wire.Message) {
	switch m := msg.(type) {
	case *wire.MsgVersion:
		n.handleVersion(ps, m)
	case *wire.MsgVerAck:
		n.handleVerAck(ps)
	case *wire.MsgPing:
		n.handlePing(ps, m)
	case *wire.MsgPong:
		ps.deliverPong(m.Nonce)
	case *wire.MsgInv:
		n.handleInv(ps, m)
	case *wire.MsgGetBlocks:
		n.handleGetBlocks(ps, m)
	case *wire.MsgGetData:
		n.handleGetData(ps, m)
	case *wire.MsgTx:
		n.handleTx(ps, m)
	case *wire.MsgBlock:
		n.handleBlock(ps, m)
	case *wire.MsgAddr:
		// Reserved command; ignored.
	default:
		log.Debugf("Ignoring unhandled %v message from %v",
			msg.Command(), ps.peer.Addr())
	}
}

// sendVersion sends our version message to the peer.
func (n *Node) sendVersion(ps *peerState) {
	nonce, _ := wire.RandomUint64()

	theirAddr := addrToNetAddress(ps.peer.Addr())
	ourAddr := addrToNetAddress(n.cfg.Listen)
	msg := wire.NewMsgVersion(ourAddr, theirAddr, nonce, n.Height())

	if err := ps.peer.Send(msg); err != nil {
		log.Infof("Failed to send version to %v: %v", ps.peer.Addr(), err)
		return
	}

	ps.stateMtx.Lock()
	ps.versionSent = true
	ps.stateMtx.Unlock()

	log.Debugf("Sent version (height %d) to %v", n.Height(), ps.peer.Addr())
}

// handleVersion records the remote node's announced state, completes our
// half of the handshake, and kicks off the initial block download when the
// remote chain is longer than ours.
func (n *Node) handleVersion(ps *peerState, msg *wire.MsgVersion) {
	ps.stateMtx.Lock()
	ps.versionReceived = true
	ps.remoteHeight = msg.LastBlock
	ps.remoteUserAgent = msg.UserAgent
	ps.remoteServices = msg.Services
	ps.protocolVersion = msg.ProtocolVersion
	versionSent := ps.versionSent
	ps.stateMtx.Unlock()

	log.Debugf("Received version from %v (height %d, agent %v)",
		ps.peer.Addr(), msg.LastBlock, msg.UserAgent)

	// The inbound side replies with its own version first.
	if !versionSent {
		n.sendVersion(ps)
	}

	if err := ps.peer.Send(wire.NewMsgVerAck()); err != nil {
		return
	}

	if msg.LastBlock <= n.Height() {
		return
	}
	log.Infof("Peer %v has more blocks (%d vs our %d)", ps.peer.Addr(),
		msg.LastBlock, n.Height())

	// Become the sync client of this peer unless a sync is already in
	// flight.  The flag and getblocks construction happen under the
	// chain lock so racing version handlers elect exactly one sync peer.
	var getBlocks *wire.MsgGetBlocks
	n.chainMtx.Lock()
	if !n.syncing && n.chain != nil && msg.LastBlock > n.chain.Height() {
		n.syncing = true
		n.syncPeerAddr = ps.peer.Addr()
		tip := n.chain.Tip()
		getBlocks = wire.NewMsgGetBlocks(&tip)
	}
	n.chainMtx.Unlock()

	if getBlocks != nil {
		if err := ps.peer.Send(getBlocks); err == nil {
			log.Infof("Syncing from %v", ps.peer.Addr())
		}
	}
}

// handleVerAck completes the handshake.
func (n *Node) handleVerAck(ps *peerState) {
	ps.stateMtx.Lock()
	ps.handshakeDone = true
	ps.stateMtx.Unlock()
	log.Debugf("Handshake complete with %v", ps.peer.Addr())
}

// handlePing immediately echoes the nonce back in a pong.
func (n *Node) handlePing(ps *peerState, msg *wire.MsgPing) {
	ps.peer.Send(wire.NewMsgPong(msg.Nonce))
}

// handleInv requests announced objects the node does not already have:
// every announced block, and announced transactions missing from the
// mempool.
func (n *Node) handleInv(ps *peerState, msg *wire.MsgInv) {
	getData := wire.NewMsgGetData()
	for _, iv := range msg.InvList {
		if iv.Type == wire.InvTypeTx && n.txPool.Contains(iv.Hash.String()) {
			continue
		}
		if err := getData.AddInvVect(iv); err != nil {
			break
		}
	}

	if len(getData.InvList) == 0 {
		return
	}
	if err := ps.peer.Send(getData); err == nil {
		log.Debugf("Sent getdata for %d item(s) to %v",
			len(getData.InvList), ps.peer.Addr())
	}
}

// handleGetBlocks answers with inv messages listing every block hash
// strictly after the peer's announced tip, oldest first.  Nothing is sent
// when the peer is up to date or on an incompatible chain.
func (n *Node) handleGetBlocks(ps *peerState, msg *wire.MsgGetBlocks) {
	var hashes []chainhash.Hash
	n.chainMtx.Lock()
	if n.chain != nil {
		var err error
		hashes, err = n.chain.BlockHashesAfter(&msg.TipHash)
		if err != nil {
			log.Errorf("Failed to collect block hashes: %v", err)
		}
	}
	n.chainMtx.Unlock()

	if len(hashes) == 0 {
		log.Debugf("Peer %v is up to date or on a different chain",
			ps.peer.Addr())
		return
	}

	// The inv count is a single byte, so long stretches of the chain are
	// announced in chunks.
	for start := 0; start < len(hashes); start += wire.MaxInvPerMsg {
		end := start + wire.MaxInvPerMsg
		if end > len(hashes) {
			end = len(hashes)
		}

		inv := wire.NewMsgInv()
		for i := start; i < end; i++ {
			inv.AddInvVect(wire.NewInvVect(wire.InvTypeBlock, &hashes[i]))
		}
		if err := ps.peer.Send(inv); err != nil {
			return
		}
	}

	log.Debugf("Sent inv with %d block hash(es) to %v", len(hashes),
		ps.peer.Addr())
}

// handleGetData serves requested blocks from the chain and requested
// transactions from the mempool.  Unknown items are silently dropped.
func (n *Node) handleGetData(ps *peerState, msg *wire.MsgGetData) {
	var blocks []*wire.MsgBlock
	var txs []*wire.MsgTx

	n.chainMtx.Lock()
	for _, iv := range msg.InvList {
		if iv.Type != wire.InvTypeBlock || n.chain == nil {
			continue
		}
		block, err := n.chain.GetBlock(&iv.Hash)
		if err != nil {
			log.Debugf("Requested block %v not found", iv.Hash)
			continue
		}
		blocks = append(blocks, block)
	}
	n.chainMtx.Unlock()

	for _, iv := range msg.InvList {
		if iv.Type != wire.InvTypeTx {
			continue
		}
		if tx := n.txPool.Find(iv.Hash.String()); tx != nil {
			txs = append(txs, tx)
		}
	}

	for _, block := range blocks {
		if err := ps.peer.Send(block); err != nil {
			return
		}
		log.Debugf("Sent block %v to %v", block.BlockHash, ps.peer.Addr())
	}
	for _, tx := range txs {
		if err := ps.peer.Send(tx); err != nil {
			return
		}
	}
}

// checkTxStructure performs the stateless transaction checks applied to
// relayed transactions and to the transactions of a received block: a
// coinbase passes as is, and any other transaction must have at least one
// input and one output.  A coinbase relayed on its own is rejected by
// handleTx.
func checkTxStructure(tx *wire.MsgTx) error {
	if tx.IsCoinbase() {
		return nil
	}
	if len(tx.Vin) == 0 {
		return errors.New("transaction has no inputs")
	}
	if len(tx.Vout) == 0 {
		return errors.New("transaction has no outputs")
	}
	return nil
}

// handleTx accepts a relayed transaction into the mempool and floods an inv
// for it to every other handshake-complete peer.
func (n *Node) handleTx(ps *peerState, tx *wire.MsgTx) {
	txHash := tx.TxHash()
	txID := txHash.String()

	if n.txPool.Contains(txID) {
		log.Tracef("Already have tx %v, ignoring", txID)
		return
	}

	if tx.IsCoinbase() {
		log.Infof("Rejected coinbase tx %v relayed on its own by %v",
			txID, ps.peer.Addr())
		return
	}

	if err := checkTxStructure(tx); err != nil {
		log.Infof("Rejected invalid tx %v from %v: %v", txID,
			ps.peer.Addr(), err)
		return
	}

	n.txPool.Add(txID, tx, n.feeRateFor(tx))
	n.signalMiner()
	n.relayTx(tx, ps.peer.Addr())
}

// feeRateFor computes the fee rate used to order the transaction in the
// mempool.  Inputs that cannot be resolved from confirmed chain state (for
// example spends of other unconfirmed transactions) yield a zero rate.
func (n *Node) feeRateFor(tx *wire.MsgTx) float64 {
	n.chainMtx.Lock()
	defer n.chainMtx.Unlock()
	if n.chain == nil || tx.IsCoinbase() {
		return 0
	}

	prevTxs := make(map[string]*wire.MsgTx, len(tx.Vin))
	for _, in := range tx.Vin {
		prevTx, err := n.chain.FindTransaction(in.TxID)
		if err != nil {
			return 0
		}
		prevTxs[hex.EncodeToString(in.TxID)] = prevTx
	}

	fee, err := blockchain.CalculateFee(tx, prevTxs)
	if err != nil || fee < 0 {
		return 0
	}
	return blockchain.FeeRate(tx, fee)
}

// signalMiner nudges the miner without blocking; a pending signal is
// sufficient.
func (n *Node) signalMiner() {
	select {
	case n.minerWake <- struct{}{}:
	default:
	}
}

// relayTx floods an inv for the transaction to every handshake-complete
// peer except the one it came from.
func (n *Node) relayTx(tx *wire.MsgTx, sourceAddr string) {
	txHash := tx.TxHash()
	inv := wire.NewMsgInv()
	inv.AddInvVect(wire.NewInvVect(wire.InvTypeTx, &txHash))

	n.forEachRelayPeer(sourceAddr, func(ps *peerState) {
		if err := ps.peer.Send(inv); err == nil {
			log.Tracef("Relayed tx %v inv to %v", txHash,
				ps.peer.Addr())
		}
	})
}

// broadcastBlock announces a freshly accepted block to every
// handshake-complete peer.
func (n *Node) broadcastBlock(block *wire.MsgBlock) {
	inv := wire.NewMsgInv()
	inv.AddInvVect(wire.NewInvVect(wire.InvTypeBlock, &block.BlockHash))

	n.forEachRelayPeer("", func(ps *peerState) {
		if err := ps.peer.Send(inv); err == nil {
			log.Debugf("Announced block %v to %v", block.BlockHash,
				ps.peer.Addr())
		}
	})
}

// forEachRelayPeer runs fn for every connected, handshake-complete peer
// whose address differs from skipAddr.
func (n *Node) forEachRelayPeer(skipAddr string, fn func(ps *peerState)) {
	n.peersMtx.Lock()
	peers := append([]*peerState(nil), n.peers...)
	n.peersMtx.Unlock()

	for _, ps := range peers {
		if !ps.peer.Connected() || !ps.handshakeComplete() {
			continue
		}
		if ps.peer.Addr() == skipAddr {
			continue
		}
		fn(ps)
	}
}

// handleBlock validates a block received from a peer, appends it to the
// chain, cleans the mempool, and completes the initial block download once
// the sync target height is reached.
func (n *Node) handleBlock(ps *peerState, block *wire.MsgBlock) {
	log.Debugf("Received block %v from %v", block.BlockHash, ps.peer.Addr())

	if err := blockchain.CheckBlockSanity(block, n.cfg.Params); err != nil {
		log.Infof("Rejected invalid block %v from %v: %v",
			block.BlockHash, ps.peer.Addr(), err)
		return
	}
	for _, tx := range block.Transactions {
		if err := checkTxStructure(tx); err != nil {
			log.Infof("Rejected block %v: invalid transaction: %v",
				block.BlockHash, err)
			return
		}
	}

	n.chainMtx.Lock()
	defer n.chainMtx.Unlock()

	if n.chain == nil {
		log.Warnf("Cannot store block %v: no chain open", block.BlockHash)
		return
	}

	if err := n.chain.AddBlock(block); err != nil {
		log.Infof("Rejected block %v: %v", block.BlockHash, err)
		return
	}

	if err := n.utxoSet.Update(block); err != nil {
		log.Errorf("Failed to update UTXO index: %v", err)
	}
	n.txPool.RemoveBlock(block)
	n.setHeight(n.chain.Height())

	log.Infof("Stored block %v (height %d)", block.BlockHash, n.chain.Height())

	// Finish the initial block download once we caught up to the sync
	// peer's announced height.
	if !n.syncing || ps.peer.Addr() != n.syncPeerAddr {
		return
	}

	ps.stateMtx.Lock()
	targetHeight := ps.remoteHeight
	ps.stateMtx.Unlock()

	if n.chain.Height() >= targetHeight {
		log.Infof("Sync complete at height %d, reindexing UTXO set",
			n.chain.Height())
		if err := n.utxoSet.Reindex(); err != nil {
			log.Errorf("UTXO reindex failed: %v", err)
		}
		n.syncing = false
		n.syncPeerAddr = ""
	}
}

// SubmitTx verifies a locally built transaction, adds it to the mempool,
// wakes the miner, and relays it to every peer.  It reports whether the
// transaction was already present.
func (n *Node) SubmitTx(tx *wire.MsgTx) (alreadyKnown bool, err error) {
	txHash := tx.TxHash()
	txID := txHash.String()

	if n.txPool.Contains(txID) {
		return true, nil
	}
	if err := checkTxStructure(tx); err != nil {
		return false, err
	}

	n.txPool.Add(txID, tx, n.feeRateFor(tx))
	n.signalMiner()
	n.relayTx(tx, "")
	return false, nil
}

// addrToNetAddress converts a host:port string into a wire.NetAddress,
// falling back to the unspecified address when parsing fails.
func addrToNetAddress(addr string) *wire.NetAddress {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return wire.NewNetAddressIPPort(net.IPv4zero, 0, wire.SFNodeNetwork)
	}

	var port uint16
	fmt.Sscanf(portStr, "%d", &port)

	ip := net.ParseIP(host)
	if ip == nil {
		ip = net.IPv4zero
	}
	return wire.NewNetAddressIPPort(ip, port, wire.SFNodeNetwork)
}
