// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package node implements the peer-to-peer runtime that ties the chain state,
the UTXO index, the mempool, and the miner together.

Each peer connection is served by two goroutines: a reader that receives
and dispatches messages in wire order, and a monitor that pings the peer
every two minutes and disconnects it when no matching pong arrives.  A
cleanup task reaps disconnected peers, and a background miner assembles
mempool transactions into blocks when enabled.

The runtime performs initial block download from the first peer that
announces a longer chain: it requests the block hashes after its tip,
fetches each block, and rebuilds the UTXO index once it has caught up.
Accepted transactions and mined blocks are announced to every
handshake-complete peer with inventory messages.

A line-delimited JSON-RPC 2.0 server exposes query and control methods to
local tooling; the command-line front-end binds it to the loopback interface.
*/
package node
