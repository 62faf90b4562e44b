// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package blockchain implements the chain state machine: the persistent block
store, proof of work, difficulty retargeting, merkle trees, the UTXO index,
and transaction signature validation.

The Chain owns a single leveldb database holding blocks keyed by hash, the
tip pointer, a height index, and the unspent-output index.  Every multi-key
mutation is committed through one atomic batch, and the in-memory tip only
advances after the batch is on disk.

The UTXOSet is a rebuildable secondary index over the same database.  After
a block is connected the caller applies it with Update; Reindex recomputes
the index from a full chain walk and the two always converge to the same
contents.

Transactions are authorized with the trimmed-copy scheme: each input's
signature commits to the transaction with all signatures blanked and the
spent output's pubkey hash substituted into that input.  The package
consumes a Signer capability for signing so private keys never cross the
package boundary.
*/
package blockchain
