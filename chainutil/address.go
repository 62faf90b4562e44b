// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import (
	"bytes"
	"errors"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/rafaeljabbour/gochain/chainhash"
)

const (
	// AddressVersion is the version byte prepended to the pubkey hash
	// before base58 encoding.
	AddressVersion = 0x00

	// ChecksumLen is the number of checksum bytes appended to an address
	// payload.
	ChecksumLen = 4

	// PubKeyHashLen is the length of a ripemd160(sha256(pubkey)) digest.
	PubKeyHashLen = 20
)

var (
	// ErrChecksumMismatch describes an address for which the checksum does
	// not validate.
	ErrChecksumMismatch = errors.New("address checksum mismatch")

	// ErrInvalidAddress describes an address that is structurally
	// malformed (bad base58 payload, wrong version byte, or wrong length).
	ErrInvalidAddress = errors.New("invalid address format")
)

// checksum returns the first ChecksumLen bytes of sha256(sha256(payload)).
func checksum(payload []byte) []byte {
	return chainhash.DoubleHashB(payload)[:ChecksumLen]
}

// EncodeAddress returns the base58 address string for the passed pubkey hash:
// Base58(version || pubKeyHash || checksum).
func EncodeAddress(pubKeyHash []byte) string {
	payload := make([]byte, 0, 1+len(pubKeyHash)+ChecksumLen)
	payload = append(payload, AddressVersion)
	payload = append(payload, pubKeyHash...)
	payload = append(payload, checksum(payload)...)
	return base58.Encode(payload)
}

// PubKeyAddress derives the address for a raw serialized public key.
func PubKeyAddress(pubKey []byte) string {
	return EncodeAddress(Hash160(pubKey))
}

// DecodeAddress extracts the pubkey hash from an address string, verifying
// the version byte and checksum along the way.
func DecodeAddress(addr string) ([]byte, error) {
	decoded := base58.Decode(addr)
	if len(decoded) < 1+ChecksumLen {
		return nil, ErrInvalidAddress
	}

	payload := decoded[:len(decoded)-ChecksumLen]
	cksum := decoded[len(decoded)-ChecksumLen:]
	if !bytes.Equal(checksum(payload), cksum) {
		return nil, ErrChecksumMismatch
	}

	if payload[0] != AddressVersion {
		return nil, ErrInvalidAddress
	}

	pubKeyHash := payload[1:]
	if len(pubKeyHash) != PubKeyHashLen {
		return nil, ErrInvalidAddress
	}
	return pubKeyHash, nil
}

// ValidateAddress returns whether addr is a well-formed address with a valid
// checksum.
func ValidateAddress(addr string) bool {
	_, err := DecodeAddress(addr)
	return err == nil
}
