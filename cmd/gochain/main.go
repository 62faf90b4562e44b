// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flags "github.com/jessevdk/go-flags"

	"github.com/rafaeljabbour/gochain/blockchain"
	"github.com/rafaeljabbour/gochain/chaincfg"
	"github.com/rafaeljabbour/gochain/chainutil"
	"github.com/rafaeljabbour/gochain/node"
	"github.com/rafaeljabbour/gochain/wallet"
	"github.com/rafaeljabbour/gochain/wire"
)

// cfg holds the parsed global options for the running command.
var cfg *config

// activeParams are the consensus parameters every command operates under.
var activeParams = &chaincfg.MainNetParams

type createWalletCmd struct{}

func (cmd *createWalletCmd) Execute(args []string) error {
	store, err := wallet.OpenStore(cfg.walletPath())
	if err != nil {
		return err
	}

	addr, err := store.CreateWallet()
	if err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}

	fmt.Printf("Your new address: %s\n", addr)
	return nil
}

type createBlockchainCmd struct {
	Address string `short:"a" long:"address" required:"true" description:"Address that receives the genesis block reward"`
}

func (cmd *createBlockchainCmd) Execute(args []string) error {
	if !chainutil.ValidateAddress(cmd.Address) {
		return fmt.Errorf("invalid address %q", cmd.Address)
	}

	chain, err := blockchain.Create(cfg.blocksPath(), activeParams, cmd.Address)
	if err != nil {
		return err
	}
	defer chain.Close()

	if err := blockchain.NewUTXOSet(chain).Reindex(); err != nil {
		return err
	}

	fmt.Println("Done!")
	return nil
}

type getBalanceCmd struct {
	Address string `short:"a" long:"address" required:"true" description:"Address to query"`
}

func (cmd *getBalanceCmd) Execute(args []string) error {
	pubKeyHash, err := chainutil.DecodeAddress(cmd.Address)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", cmd.Address, err)
	}

	chain, err := blockchain.Open(cfg.blocksPath(), activeParams)
	if err != nil {
		return err
	}
	defer chain.Close()

	utxos, err := blockchain.NewUTXOSet(chain).FindUTXO(pubKeyHash)
	if err != nil {
		return err
	}

	var balance int64
	for _, out := range utxos {
		balance += out.Value
	}

	fmt.Printf("Balance of '%s': %d\n", cmd.Address, balance)
	return nil
}

type listAddressesCmd struct{}

func (cmd *listAddressesCmd) Execute(args []string) error {
	store, err := wallet.OpenStore(cfg.walletPath())
	if err != nil {
		return err
	}

	addrs := store.Addresses()
	if len(addrs) == 0 {
		fmt.Println("No wallets found. Create one with 'createwallet'.")
		return nil
	}

	fmt.Println("Addresses:")
	for _, addr := range addrs {
		fmt.Printf("  %s\n", addr)
	}
	return nil
}

type printChainCmd struct{}

func (cmd *printChainCmd) Execute(args []string) error {
	chain, err := blockchain.Open(cfg.blocksPath(), activeParams)
	if err != nil {
		return err
	}
	defer chain.Close()

	iter := chain.Iterator()
	for iter.HasNext() {
		block, err := iter.Next()
		if err != nil {
			return err
		}

		fmt.Printf("Block %v\n", block.BlockHash)
		fmt.Printf("Prev. block: %v\n", block.PrevBlock)
		fmt.Printf("PoW: %v\n", blockchain.CheckProofOfWork(block) == nil)

		for _, tx := range block.Transactions {
			txHash := tx.TxHash()
			fmt.Printf("--- Transaction %v:\n", txHash)

			if tx.IsCoinbase() {
				fmt.Println("\tCOINBASE")
			} else {
				fmt.Println("\tInputs:")
				for _, in := range tx.Vin {
					fmt.Printf("\t\tTxID: %x\n", in.TxID)
					fmt.Printf("\t\tVout: %d\n", in.Vout)
				}
			}

			fmt.Println("\tOutputs:")
			for i, out := range tx.Vout {
				fmt.Printf("\t\tOutput %d:\n", i)
				fmt.Printf("\t\t\tValue: %d\n", out.Value)
				fmt.Printf("\t\t\tPubKeyHash: %x\n", out.PubKeyHash)
			}
		}
		fmt.Println()
	}
	return nil
}

type reindexUTXOCmd struct{}

func (cmd *reindexUTXOCmd) Execute(args []string) error {
	chain, err := blockchain.Open(cfg.blocksPath(), activeParams)
	if err != nil {
		return err
	}
	defer chain.Close()

	utxoSet := blockchain.NewUTXOSet(chain)
	if err := utxoSet.Reindex(); err != nil {
		return err
	}

	count, err := utxoSet.CountTransactions()
	if err != nil {
		return err
	}
	fmt.Printf("Done! There are %d transactions in the UTXO set.\n", count)
	return nil
}

type sendCmd struct {
	From   string `long:"from" required:"true" description:"Source address"`
	To     string `long:"to" required:"true" description:"Destination address"`
	Amount int64  `long:"amount" required:"true" description:"Amount of coins to send"`
}

// Execute builds, signs, and immediately mines a transaction into a block,
// paying the mining reward to the sender.  This is the offline path used
// when no node is running; a running node is driven through the sendtx RPC
// instead.
func (cmd *sendCmd) Execute(args []string) error {
	if !chainutil.ValidateAddress(cmd.From) {
		return fmt.Errorf("invalid sender address %q", cmd.From)
	}
	if !chainutil.ValidateAddress(cmd.To) {
		return fmt.Errorf("invalid recipient address %q", cmd.To)
	}
	if cmd.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	chain, err := blockchain.Open(cfg.blocksPath(), activeParams)
	if err != nil {
		return err
	}
	defer chain.Close()

	store, err := wallet.OpenStore(cfg.walletPath())
	if err != nil {
		return err
	}
	w, err := store.Wallet(cmd.From)
	if err != nil {
		return err
	}

	utxoSet := blockchain.NewUTXOSet(chain)
	tx, err := blockchain.NewUTXOTransaction(utxoSet, w.PubKey(), w, cmd.To,
		cmd.Amount)
	if err != nil {
		return err
	}

	coinbase, err := blockchain.NewCoinbaseTx(activeParams, cmd.From, "",
		chain.Height()+1)
	if err != nil {
		return err
	}

	block, err := chain.MineBlock([]*wire.MsgTx{coinbase, tx})
	if err != nil {
		return err
	}
	if err := utxoSet.Update(block); err != nil {
		return err
	}

	fmt.Println("Success!")
	return nil
}

type startNodeCmd struct {
	Port         uint16 `short:"p" long:"port" description:"Listen for peer connections on this port"`
	Seed         string `long:"seed" description:"Seed node to connect to at startup (IP:PORT)"`
	RPCPort      uint16 `long:"rpcport" description:"Listen for JSON-RPC requests on this port"`
	Mine         bool   `long:"mine" description:"Enable the background miner"`
	MinerAddress string `long:"mineraddress" description:"Address that receives mining rewards"`
}

func (cmd *startNodeCmd) Execute(args []string) error {
	if cmd.Port == 0 {
		cmd.Port = defaultPort
	}
	if cmd.RPCPort == 0 {
		cmd.RPCPort = defaultRPCPort
	}

	var minerAddress string
	if cmd.Mine {
		if cmd.MinerAddress == "" {
			return fmt.Errorf("--mine requires --mineraddress")
		}
		if !chainutil.ValidateAddress(cmd.MinerAddress) {
			return fmt.Errorf("invalid miner address %q", cmd.MinerAddress)
		}
		minerAddress = cmd.MinerAddress
	}

	initLogRotator(cfg.logPath())
	defer logRotator.Close()

	n, err := node.New(node.Config{
		Params:       activeParams,
		ChainNet:     wire.MainNet,
		Listen:       fmt.Sprintf(":%d", cmd.Port),
		RPCListen:    fmt.Sprintf("127.0.0.1:%d", cmd.RPCPort),
		ChainDBPath:  cfg.blocksPath(),
		WalletPath:   cfg.walletPath(),
		MinerAddress: minerAddress,
	})
	if err != nil {
		return err
	}

	// Shut down cleanly on SIGINT and SIGTERM.
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		mainLog.Infof("Received interrupt, shutting down...")
		n.Stop()
	}()

	return n.Start(cmd.Seed)
}

func main() {
	var parser *flags.Parser
	cfg, parser = loadConfig()

	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}
}
