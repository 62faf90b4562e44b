// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mempool provides the node-local pool of validated but unconfirmed
transactions.

The pool is a process-local map guarded by a single mutex and is never
persisted.  Entries carry the fee rate (fee per serialized byte) used to
order transactions during block assembly; once a transaction appears in a
connected block it is removed from the pool.
*/
package mempool
