// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"
)

// Params defines the consensus parameters the chain state machine, the miner,
// and the peer-to-peer protocol operate under.  A single parameter set is
// shared by every component of a node so that the values cannot drift apart.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// DefaultPort defines the default peer-to-peer listen port.
	DefaultPort uint16

	// DefaultRPCPort defines the default JSON-RPC listen port.
	DefaultRPCPort uint16

	// InitialBits is the difficulty carried by the genesis block and by
	// every block until the first retarget.  Bits is the exponent such
	// that target = 1 << (256 - bits).
	InitialBits int32

	// MinBits and MaxBits bound the compact difficulty after retargeting.
	MinBits int32
	MaxBits int32

	// RetargetInterval is the number of blocks between difficulty
	// adjustments.
	RetargetInterval int32

	// TargetTimespan is the desired wall-clock duration of one full
	// retarget interval.
	TargetTimespan time.Duration

	// Subsidy is the base block reward minted by a coinbase.
	Subsidy int64

	// SubsidyHalvingInterval is the number of blocks between reward
	// halvings.
	SubsidyHalvingInterval int32

	// MaxBlockSize is the maximum serialized block size accepted into the
	// chain or assembled by the miner.
	MaxBlockSize uint32

	// MaxBlockTxs caps the number of transactions in a block.
	MaxBlockTxs uint32

	// GenesisCoinbaseData is the payload carried by the genesis coinbase
	// input.
	GenesisCoinbaseData string
}

// MainNetParams defines the network parameters for the main network.
var MainNetParams = Params{
	Name:           "mainnet",
	DefaultPort:    9333,
	DefaultRPCPort: 9334,

	InitialBits:      17,
	MinBits:          1,
	MaxBits:          255,
	RetargetInterval: 2016,
	TargetTimespan:   2016 * 600 * time.Second,

	Subsidy:                10,
	SubsidyHalvingInterval: 210000,

	MaxBlockSize: 1000000,
	MaxBlockTxs:  5000,

	GenesisCoinbaseData: "The Times 03/Jan/2009 Chancellor on brink of " +
		"second bailout for banks",
}

// CalcBlockSubsidy returns the coinbase reward for a block at the given
// height.  The subsidy halves every SubsidyHalvingInterval blocks by shifting
// right and reaches zero after 64 halvings.
func (p *Params) CalcBlockSubsidy(height int32) int64 {
	halvings := height / p.SubsidyHalvingInterval
	if halvings >= 64 {
		return 0
	}
	return p.Subsidy >> uint(halvings)
}
