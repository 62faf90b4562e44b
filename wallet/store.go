// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"
)

// ErrWalletNotFound indicates the store holds no wallet for the requested
// address.
var ErrWalletNotFound = errors.New("wallet not found for address")

// Store manages the collection of wallets persisted in a wallet file.  The
// file holds the raw private key of each wallet keyed by its address.
type Store struct {
	path    string
	wallets map[string]*Wallet
}

// OpenStore loads the wallet file at the passed path, creating an empty
// store when the file does not exist yet.
func OpenStore(path string) (*Store, error) {
	s := &Store{
		path:    path,
		wallets: make(map[string]*Wallet),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	defer f.Close()

	var keys map[string][]byte
	if err := gob.NewDecoder(f).Decode(&keys); err != nil {
		return nil, err
	}
	for addr, privKey := range keys {
		s.wallets[addr] = fromPrivKeyBytes(privKey)
	}

	return s, nil
}

// Save writes every wallet back to the wallet file.  The file is written
// with owner-only permissions since it contains raw key material.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	keys := make(map[string][]byte, len(s.wallets))
	for addr, w := range s.wallets {
		keys[addr] = w.privKeyBytes()
	}
	return gob.NewEncoder(f).Encode(keys)
}

// CreateWallet generates a new wallet, adds it to the store, and returns its
// address.  The caller is responsible for calling Save.
func (s *Store) CreateWallet() (string, error) {
	w, err := NewWallet()
	if err != nil {
		return "", err
	}
	addr := w.Address()
	s.wallets[addr] = w
	return addr, nil
}

// Addresses returns the address of every wallet in the store.
func (s *Store) Addresses() []string {
	addrs := make([]string, 0, len(s.wallets))
	for addr := range s.wallets {
		addrs = append(addrs, addr)
	}
	return addrs
}

// Wallet returns the wallet for the passed address.
func (s *Store) Wallet(addr string) (*Wallet, error) {
	w, ok := s.wallets[addr]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return w, nil
}
