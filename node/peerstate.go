// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"sync"

	"github.com/rafaeljabbour/gochain/peer"
	"github.com/rafaeljabbour/gochain/wire"
)

// peerState tracks the node-side state of one peer connection: the
// handshake progress, the fields announced in the remote version message,
// and the pending-pong slot the liveness monitor waits on.  The node owns a
// peerState for the lifetime of the connection.
type peerState struct {
	peer *peer.Peer

	// stateMtx guards the handshake flags and the remote version fields
	// below, which are written by the reader goroutine and read by the
	// relay and sync paths.
	stateMtx        sync.Mutex
	versionSent     bool
	versionReceived bool
	handshakeDone   bool
	remoteHeight    int32
	remoteUserAgent string
	remoteServices  wire.ServiceFlag
	protocolVersion int32

	// pongMtx guards the pending ping nonce and its delivery channel.
	// The monitor arms the slot before waiting; the reader delivers an
	// incoming pong nonce into it without blocking.
	pongMtx   sync.Mutex
	pongNonce uint64
	pongCh    chan uint64

	// done is closed exactly once when the reader goroutine exits so the
	// monitor unblocks and exits too.
	done     chan struct{}
	doneOnce sync.Once
}

func newPeerState(p *peer.Peer) *peerState {
	return &peerState{
		peer: p,
		done: make(chan struct{}),
	}
}

// markDone signals the monitor goroutine that the connection is finished.
func (ps *peerState) markDone() {
	ps.doneOnce.Do(func() {
		close(ps.done)
	})
}

// handshakeComplete returns whether the verack exchange has finished.
func (ps *peerState) handshakeComplete() bool {
	ps.stateMtx.Lock()
	defer ps.stateMtx.Unlock()
	return ps.handshakeDone
}

// armPing registers the nonce the monitor is about to ping with and returns
// the channel the matching pong nonce will be delivered on.
func (ps *peerState) armPing(nonce uint64) chan uint64 {
	ps.pongMtx.Lock()
	defer ps.pongMtx.Unlock()
	ps.pongNonce = nonce
	ps.pongCh = make(chan uint64, 1)
	return ps.pongCh
}

// deliverPong hands an incoming pong nonce to a waiting monitor, dropping it
// when no ping is outstanding.
func (ps *peerState) deliverPong(nonce uint64) {
	ps.pongMtx.Lock()
	defer ps.pongMtx.Unlock()
	if ps.pongCh == nil {
		return
	}
	select {
	case ps.pongCh <- nonce:
	default:
	}
}
