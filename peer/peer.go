// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rafaeljabbour/gochain/wire"
)

const (
	// DefaultRecvTimeout is the default duration a receive waits for a
	// complete message before the connection is considered dead.
	DefaultRecvTimeout = 90 * time.Second

	// DefaultSendTimeout is the default duration a send may take to
	// write a complete message.
	DefaultSendTimeout = 90 * time.Second
)

// Config is the configuration for a peer connection.
type Config struct {
	// ChainNet identifies the network the peer frames messages for.
	ChainNet wire.ChainNet

	// ProtocolVersion specifies the protocol version to use when framing
	// messages.
	ProtocolVersion uint32

	// RecvTimeout and SendTimeout bound each message read and write.
	// Zero values select the package defaults.
	RecvTimeout time.Duration
	SendTimeout time.Duration
}

// Peer owns one TCP connection to a remote node and provides whole-message
// send and receive over it.  Partial reads and writes are looped
// transparently by the wire framing; any error marks the connection
// disconnected and surfaces a typed Error to the caller.
//
// Send is safe for concurrent use.  Receive must only be called from a
// single reader goroutine.
type Peer struct {
	cfg     Config
	conn    net.Conn
	addr    string
	inbound bool

	// connected is updated atomically so monitor goroutines can poll it
	// without taking a lock.
	connected int32

	// sendMtx serializes message writes so frames from concurrent
	// senders cannot interleave.
	sendMtx sync.Mutex

	closeOnce sync.Once
}

// newPeer wraps an established connection.
func newPeer(conn net.Conn, inbound bool, cfg Config) *Peer {
	if cfg.RecvTimeout == 0 {
		cfg.RecvTimeout = DefaultRecvTimeout
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	if cfg.ProtocolVersion == 0 {
		cfg.ProtocolVersion = wire.ProtocolVersion
	}

	return &Peer{
		cfg:       cfg,
		conn:      conn,
		addr:      conn.RemoteAddr().String(),
		inbound:   inbound,
		connected: 1,
	}
}

// NewInbound returns a peer for a connection accepted by a listener.
func NewInbound(conn net.Conn, cfg Config) *Peer {
	p := newPeer(conn, true, cfg)
	log.Debugf("New inbound peer %v", p.addr)
	return p
}

// NewOutbound dials the passed address and returns a peer for the resulting
// connection.
func NewOutbound(addr string, cfg Config) (*Peer, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, &Error{Kind: ErrConnect, Addr: addr, Err: err}
	}
	p := newPeer(conn, false, cfg)
	log.Debugf("Connected to %v", p.addr)
	return p, nil
}

// Addr returns the remote address of the peer in host:port form.
func (p *Peer) Addr() string {
	return p.addr
}

// Inbound returns whether the remote side initiated the connection.
func (p *Peer) Inbound() bool {
	return p.inbound
}

// Connected returns whether the peer is currently connected.
func (p *Peer) Connected() bool {
	return atomic.LoadInt32(&p.connected) != 0
}

// Disconnect closes the underlying connection.  It is idempotent and safe
// to call from any goroutine; a blocked Receive is unblocked with an error.
func (p *Peer) Disconnect() {
	p.closeOnce.Do(func() {
		atomic.StoreInt32(&p.connected, 0)
		p.conn.Close()
		log.Debugf("Disconnected peer %v", p.addr)
	})
}

// Send serializes and writes the passed message, looping until every byte
// has been written or the send deadline expires.
func (p *Peer) Send(msg wire.Message) error {
	if !p.Connected() {
		return &Error{Kind: ErrClosed, Addr: p.addr}
	}

	p.sendMtx.Lock()
	defer p.sendMtx.Unlock()

	p.conn.SetWriteDeadline(time.Now().Add(p.cfg.SendTimeout))
	err := wire.WriteMessage(p.conn, msg, p.cfg.ProtocolVersion, p.cfg.ChainNet)
	if err != nil {
		p.Disconnect()
		return p.wrapErr(err)
	}

	log.Tracef("Sent %v to %v", msg.Command(), p.addr)
	return nil
}

// Receive reads the next whole message from the connection: the fixed-size
// header first, then the payload, verifying magic and checksum.  A payload
// over the wire maximum, a checksum mismatch, or a foreign magic value is a
// protocol violation that tears the connection down.
func (p *Peer) Receive() (wire.Message, error) {
	if !p.Connected() {
		return nil, &Error{Kind: ErrClosed, Addr: p.addr}
	}

	p.conn.SetReadDeadline(time.Now().Add(p.cfg.RecvTimeout))
	msg, _, err := wire.ReadMessage(p.conn, p.cfg.ProtocolVersion, p.cfg.ChainNet)
	if err != nil {
		// A payload that fails to decode after a verified frame leaves
		// the stream aligned; surface it without killing the
		// connection.
		var payloadErr *wire.PayloadDecodeError
		if errors.As(err, &payloadErr) {
			return nil, &Error{
				Kind: ErrMalformedPayload,
				Addr: p.addr,
				Err:  err,
			}
		}
		p.Disconnect()
		return nil, p.wrapErr(err)
	}

	log.Tracef("Received %v from %v", msg.Command(), p.addr)
	return msg, nil
}

// wrapErr converts a low-level error into a typed peer Error.
func (p *Peer) wrapErr(err error) error {
	kind := ErrIO
	switch e := err.(type) {
	case *wire.MessageError:
		kind = ErrProtocol
	case net.Error:
		if e.Timeout() {
			kind = ErrTimeout
		}
	}
	return &Error{Kind: kind, Addr: p.addr, Err: err}
}
