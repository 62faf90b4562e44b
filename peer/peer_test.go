// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rafaeljabbour/gochain/chainhash"
	"github.com/rafaeljabbour/gochain/wire"
)

// connectedPeers returns an inbound/outbound peer pair over a real TCP
// connection on the loopback interface.
func connectedPeers(t *testing.T, cfg Config) (*Peer, *Peer) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	outbound, err := NewOutbound(listener.Addr().String(), cfg)
	require.NoError(t, err)

	serverConn := <-accepted
	inbound := NewInbound(serverConn, cfg)

	t.Cleanup(func() {
		outbound.Disconnect()
		inbound.Disconnect()
	})
	return inbound, outbound
}

// TestPeerSendReceive moves a message across a live connection.
func TestPeerSendReceive(t *testing.T) {
	cfg := Config{ChainNet: wire.MainNet}
	inbound, outbound := connectedPeers(t, cfg)

	require.NoError(t, outbound.Send(wire.NewMsgPing(42)))

	msg, err := inbound.Receive()
	require.NoError(t, err)
	ping, ok := msg.(*wire.MsgPing)
	require.True(t, ok)
	require.Equal(t, uint64(42), ping.Nonce)

	require.True(t, inbound.Connected())
	require.True(t, outbound.Connected())
}

// TestPeerReceiveTimeout ensures the read deadline surfaces a typed
// timeout and marks the peer disconnected.
func TestPeerReceiveTimeout(t *testing.T) {
	cfg := Config{ChainNet: wire.MainNet, RecvTimeout: 50 * time.Millisecond}
	inbound, _ := connectedPeers(t, cfg)

	_, err := inbound.Receive()
	perr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrTimeout, perr.Kind)
	require.False(t, inbound.Connected())
}

// TestPeerRemoteClose ensures a closed remote surfaces an IO error.
func TestPeerRemoteClose(t *testing.T) {
	cfg := Config{ChainNet: wire.MainNet}
	inbound, outbound := connectedPeers(t, cfg)

	outbound.Disconnect()

	_, err := inbound.Receive()
	perr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrIO, perr.Kind)
	require.False(t, inbound.Connected())
}

// TestPeerForeignMagic ensures a frame from another network is treated as
// a protocol violation and tears the connection down.
func TestPeerForeignMagic(t *testing.T) {
	inbound, outbound := connectedPeers(t, Config{ChainNet: wire.MainNet})

	// The remote frames its traffic with a different magic value.
	foreign := Config{ChainNet: wire.ChainNet(0x0badf00d)}
	badPeer := newPeer(outbound.conn, false, foreign)
	require.NoError(t, badPeer.Send(wire.NewMsgPing(1)))

	_, err := inbound.Receive()
	perr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrProtocol, perr.Kind)
	require.False(t, inbound.Connected())
}

// TestPeerMalformedPayloadKeepsConnection ensures a decodable frame with a
// broken typed payload is surfaced without disconnecting, and the next
// message is still readable.
func TestPeerMalformedPayloadKeepsConnection(t *testing.T) {
	inbound, outbound := connectedPeers(t, Config{ChainNet: wire.MainNet})

	// Handcraft an inv frame whose count claims an entry it doesn't
	// carry, then follow with a valid ping.
	payload := []byte{0x01}
	frame := buildFrame(t, wire.CmdInv, payload)
	_, err := outbound.conn.Write(frame)
	require.NoError(t, err)
	require.NoError(t, outbound.Send(wire.NewMsgPing(9)))

	_, err = inbound.Receive()
	perr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrMalformedPayload, perr.Kind)
	require.True(t, inbound.Connected())

	msg, err := inbound.Receive()
	require.NoError(t, err)
	require.Equal(t, uint64(9), msg.(*wire.MsgPing).Nonce)
}

// buildFrame assembles a raw message frame with a valid checksum around an
// arbitrary payload.
func buildFrame(t *testing.T, cmd string, payload []byte) []byte {
	t.Helper()

	frame := make([]byte, 0, wire.MessageHeaderSize+len(payload))
	frame = append(frame, 0xca, 0xfe, 0xba, 0xbe)

	var command [wire.CommandSize]byte
	copy(command[:], cmd)
	frame = append(frame, command[:]...)

	frame = append(frame, byte(len(payload)), 0, 0, 0)
	frame = append(frame, chainhash.DoubleHashB(payload)[:4]...)
	return append(frame, payload...)
}
