// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package wire implements the gochain wire protocol.

The protocol frames every message with a 24-byte header: 4 bytes of network
magic, a 12-byte null-padded ASCII command, the 4-byte little-endian payload
length, and the first 4 bytes of the double-sha256 of the payload as a
checksum.  Payloads are capped at 32 MiB.

# Messages

Each message type implements the Message interface, which gives complete
control over its encoded representation:

	version   announce a node's state when a connection opens
	verack    acknowledge a version message
	ping      probe liveness with a nonce
	pong      answer a ping with the same nonce
	inv       advertise blocks and transactions by hash
	getdata   request advertised objects
	getblocks request the block hashes after a given tip
	block     deliver a full block
	tx        deliver a transaction
	addr      reserved

The ReadMessage and WriteMessage functions handle the framing, checksum
verification, and per-type payload limits.  Blocks and transactions use the
same encoding on the wire and at rest, so MsgBlock and MsgTx double as the
storage records for the chain database.

All integers are little endian except the port inside a NetAddress, which
follows network byte order.
*/
package wire
