// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAddressRoundTrip ensures encoding a pubkey hash and decoding the
// result recovers the original hash for a variety of hash values.
func TestAddressRoundTrip(t *testing.T) {
	hashes := [][]byte{
		make([]byte, 20),
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a,
			0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14},
	}

	for _, hash := range hashes {
		addr := EncodeAddress(hash)
		require.True(t, ValidateAddress(addr))

		decoded, err := DecodeAddress(addr)
		require.NoError(t, err)
		require.Equal(t, hash, decoded)
	}
}

// TestValidateAddressRejections ensures structurally broken addresses are
// rejected.
func TestValidateAddressRejections(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"empty", ""},
		{"garbage", "not-an-address"},
		{"truncated", "1A"},
		{"bad base58 chars", "0OIl"},
	}

	for _, test := range tests {
		require.False(t, ValidateAddress(test.addr), test.name)
	}

	// Corrupting any character of a valid address must break the
	// checksum.
	addr := EncodeAddress(make([]byte, 20))
	corrupted := []byte(addr)
	if corrupted[3] == '2' {
		corrupted[3] = '3'
	} else {
		corrupted[3] = '2'
	}
	require.False(t, ValidateAddress(string(corrupted)))
}

// TestHash160 checks the pubkey hash construction: a 20-byte digest that is
// deterministic and sensitive to its input.
func TestHash160(t *testing.T) {
	digest := Hash160([]byte("gochain"))
	require.Len(t, digest, 20)

	// Hash160 must be deterministic and sensitive to its input.
	require.Equal(t, digest, Hash160([]byte("gochain")))
	require.NotEqual(t, digest, Hash160([]byte("gochain2")))
}
