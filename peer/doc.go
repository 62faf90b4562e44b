// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package peer provides the connection layer under the node runtime: one Peer
owns one TCP connection and exchanges whole, framed wire messages over it.

Reads and writes are bounded by configurable deadlines and partial I/O is
looped transparently.  Every failure is surfaced as a typed *Error whose
Kind distinguishes dead sockets (timeouts, closed connections) from
protocol violations (bad magic, checksum mismatches, oversized payloads)
and from recoverable malformed payloads.
*/
package peer
