// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/rafaeljabbour/gochain/chainutil"
)

// Wallet holds one secp256k1 key pair.  The private key never leaves the
// package; signing is exposed through the Sign method, which satisfies the
// consensus code's signer capability.
type Wallet struct {
	privKey *btcec.PrivateKey
}

// NewWallet generates a wallet with a fresh random key pair.
func NewWallet() (*Wallet, error) {
	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return &Wallet{privKey: privKey}, nil
}

// fromPrivKeyBytes reconstructs a wallet from 32 raw private key bytes.
func fromPrivKeyBytes(b []byte) *Wallet {
	privKey, _ := btcec.PrivKeyFromBytes(b)
	return &Wallet{privKey: privKey}
}

// privKeyBytes returns the 32 raw bytes of the private key for persistence.
func (w *Wallet) privKeyBytes() []byte {
	return w.privKey.Serialize()
}

// PubKey returns the raw uncompressed serialization of the public key.
func (w *Wallet) PubKey() []byte {
	return w.privKey.PubKey().SerializeUncompressed()
}

// Address returns the base58 address derived from the public key.
func (w *Wallet) Address() string {
	return chainutil.PubKeyAddress(w.PubKey())
}

// Sign produces a DER-encoded ECDSA signature over the passed 32-byte
// digest.
func (w *Wallet) Sign(digest []byte) ([]byte, error) {
	sig := ecdsa.Sign(w.privKey, digest)
	return sig.Serialize(), nil
}
