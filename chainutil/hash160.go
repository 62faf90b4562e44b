// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import (
	"crypto/sha256"
	"hash"

	"golang.org/x/crypto/ripemd160"
)

// calcHash calculates the hash of the provided bytes using the passed hasher.
func calcHash(buf []byte, hasher hash.Hash) []byte {
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// Hash160 calculates the hash ripemd160(sha256(b)).
func Hash160(buf []byte) []byte {
	first := sha256.Sum256(buf)
	return calcHash(first[:], ripemd160.New())
}
