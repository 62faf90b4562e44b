// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHashString ensures hex encoding round trips through NewHashFromStr.
func TestHashString(t *testing.T) {
	hash := HashH([]byte("gochain"))
	parsed, err := NewHashFromStr(hash.String())
	require.NoError(t, err)
	require.Equal(t, hash, *parsed)
}

// TestHashFuncs checks the basic hash helpers against each other.
func TestHashFuncs(t *testing.T) {
	data := []byte("The quick brown fox jumps over the lazy dog")

	single := HashH(data)
	double := DoubleHashH(data)
	require.Equal(t, HashH(data), single)
	require.Equal(t, HashB(data), single.CloneBytes())
	require.Equal(t, DoubleHashB(data), double.CloneBytes())
	require.Equal(t, HashB(HashB(data)), DoubleHashB(data))
}

// TestHashSetBytes ensures length validation on SetBytes.
func TestHashSetBytes(t *testing.T) {
	var hash Hash
	require.Error(t, hash.SetBytes(make([]byte, 31)))
	require.NoError(t, hash.SetBytes(make([]byte, 32)))
	require.True(t, hash.IsZero())

	_, err := NewHash(make([]byte, 33))
	require.Error(t, err)
}
