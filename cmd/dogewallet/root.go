package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "dogewallet",
		Short:         "Single-key Dogecoin wallet",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default <datadir>/config.yaml)")
	pf.StringVar(&g.dataDir, "datadir", "", "data directory (default ~/.dogewallet)")
	pf.StringVarP(&g.network, "network", "n", "", "mainnet, testnet or regtest")
	pf.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&g.indexerKind, "indexer-kind", "", "rest or rpc")
	pf.StringVar(&g.indexerURL, "indexer-url", "", "explorer API or dogecoind RPC URL")

	root.AddCommand(
		newInitCmd(g),
		newCreateCmd(g),
		newImportCmd(g),
		newAddressCmd(g),
		newBalanceCmd(g),
		newSendCmd(g),
		newExportCmd(g),
	)
	return root
}
