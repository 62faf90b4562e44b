// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultDataDir  = "./data"
	defaultLogLevel = "info"
	defaultPort     = 9333
	defaultRPCPort  = 9334

	blocksDirName  = "blocks"
	walletFileName = "wallet.dat"
	logDirName     = "logs"
	logFileName    = "gochain.log"
)

// config defines the configuration options for gochain.
//
// See loadConfig for details on the configuration load process.
type config struct {
	DataDir    string `short:"b" long:"datadir" description:"Directory to store data"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`

	CreateWallet     createWalletCmd     `command:"createwallet" description:"Generate a new wallet and print its address"`
	CreateBlockchain createBlockchainCmd `command:"createblockchain" description:"Create a blockchain and send the genesis block reward to an address"`
	GetBalance       getBalanceCmd       `command:"getbalance" description:"Get the balance of an address"`
	ListAddresses    listAddressesCmd    `command:"listaddresses" description:"List all addresses from the wallet file"`
	PrintChain       printChainCmd       `command:"printchain" description:"Print all the blocks of the blockchain"`
	ReindexUTXO      reindexUTXOCmd      `command:"reindexutxo" description:"Rebuild the UTXO index from the chain"`
	Send             sendCmd             `command:"send" description:"Send coins from one address to another"`
	StartNode        startNodeCmd        `command:"startnode" description:"Start a peer-to-peer node"`
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to the OS specific home directory.
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = strings.Replace(path, "~", home, 1)
		}
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// blocksPath returns the chain database location under the data directory.
func (c *config) blocksPath() string {
	return filepath.Join(c.DataDir, blocksDirName)
}

// walletPath returns the wallet file location under the data directory.
func (c *config) walletPath() string {
	return filepath.Join(c.DataDir, walletFileName)
}

// logPath returns the log file location under the data directory.
func (c *config) logPath() string {
	return filepath.Join(c.DataDir, logDirName, logFileName)
}

// loadConfig initializes and parses the config using command line options.
// The invoked subcommand runs via go-flags' command dispatch after the
// global options are applied.
func loadConfig() (*config, *flags.Parser) {
	cfg := &config{
		DataDir:    defaultDataDir,
		DebugLevel: defaultLogLevel,
	}

	parser := flags.NewParser(cfg, flags.Default)
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		cfg.DataDir = cleanAndExpandPath(cfg.DataDir)

		if !validLogLevel(cfg.DebugLevel) {
			return fmt.Errorf("invalid debug level %q", cfg.DebugLevel)
		}
		setLogLevels(cfg.DebugLevel)

		if command == nil {
			return fmt.Errorf("no command specified")
		}
		return command.Execute(args)
	}

	return cfg, parser
}
