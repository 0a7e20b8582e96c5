package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libdoge-go/alias"
	"github.com/bitfsorg/libdoge-go/config"
	"github.com/bitfsorg/libdoge-go/network"
	"github.com/bitfsorg/libdoge-go/wallet"
)

func addSecretFlags(cmd *cobra.Command, s *secretSource) {
	cmd.Flags().StringVar(&s.secretFile, "secret-file", "", "file holding the WIF private key")
	cmd.Flags().StringVar(&s.walletFile, "wallet", "", "encrypted wallet file written by create or export")
	cmd.Flags().StringVar(&s.passwordFile, "password-file", "", "file holding the wallet password")
}

func newInitCmd(g *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := g.path()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			if g.dataDir != "" {
				cfg.DataDir = g.dataDir
			}
			if g.network != "" {
				cfg.Network = g.network
			}
			if err := config.ValidateConfig(cfg); err != nil {
				return err
			}
			if err := config.SaveConfig(path, cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newCreateCmd(g *globalFlags) *cobra.Command {
	var out, passwordFile string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a new key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			info, err := wallet.CreateWallet(a.net)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				if err := writeEncrypted(out, passwordFile, info.Secret); err != nil {
					return err
				}
				fmt.Fprintf(w, "address: %s\nwallet:  %s\n", info.Address, out)
				return nil
			}
			fmt.Fprintf(w, "address: %s\nsecret:  %s\n", info.Address, info.Secret)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the key encrypted to this file instead of printing it")
	cmd.Flags().StringVar(&passwordFile, "password-file", "", "file holding the password for --out")
	return cmd
}

func newImportCmd(g *globalFlags) *cobra.Command {
	var src secretSource
	var out, outPassword string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Validate a WIF private key and optionally store it encrypted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			secret, err := src.read(cmd.InOrStdin())
			if err != nil {
				return err
			}
			info, err := wallet.ImportWallet(secret, a.net)
			if err != nil {
				return err
			}
			if out != "" {
				if err := writeEncrypted(out, outPassword, info.Secret); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "address: %s\n", info.Address)
			return nil
		},
	}
	addSecretFlags(cmd, &src)
	cmd.Flags().StringVar(&out, "out", "", "write the key encrypted to this file")
	cmd.Flags().StringVar(&outPassword, "out-password-file", "", "file holding the password for --out")
	return cmd
}

func newAddressCmd(g *globalFlags) *cobra.Command {
	var src secretSource
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the address of a private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			secret, err := src.read(cmd.InOrStdin())
			if err != nil {
				return err
			}
			kp, err := wallet.NewKeyPair(secret, a.net)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), kp.Address())
			return nil
		},
	}
	addSecretFlags(cmd, &src)
	return cmd
}

func newBalanceCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address>",
		Short: "Show the confirmed and unconfirmed balance of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			if err := wallet.ValidateAddress(args[0], a.net); err != nil {
				return err
			}
			idx, err := a.indexer()
			if err != nil {
				return err
			}
			bal, err := idx.Balance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "confirmed:   %s DOGE\n", network.FormatSignedAmount(bal.Confirmed))
			fmt.Fprintf(w, "unconfirmed: %s DOGE\n", network.FormatSignedAmount(bal.Unconfirmed))
			fmt.Fprintf(w, "total:       %s DOGE\n", network.FormatSignedAmount(bal.Total()))
			return nil
		},
	}
}

func newSendCmd(g *globalFlags) *cobra.Command {
	var src secretSource
	var to, amount string
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Pay an address or OpenAlias name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			defer a.Close()

			koinu, err := network.ParseAmount(amount)
			if err != nil {
				return err
			}
			dest, err := resolveDestination(to, a.cfg.Alias, a.net, nil)
			if err != nil {
				return err
			}
			secret, err := src.read(cmd.InOrStdin())
			if err != nil {
				return err
			}
			kp, err := wallet.NewKeyPair(secret, a.net)
			if err != nil {
				return err
			}

			idx, err := a.indexer()
			if err != nil {
				return err
			}
			sender, err := a.sender(idx)
			if err != nil {
				return err
			}
			res, err := sender.Send(cmd.Context(), kp, dest, koinu)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "txid:   %s\n", res.TxID)
			fmt.Fprintf(w, "amount: %s\n", formatDOGE(res.Amount))
			fmt.Fprintf(w, "fee:    %s\n", formatDOGE(res.Fee))
			if res.Change > 0 {
				fmt.Fprintf(w, "change: %s\n", formatDOGE(res.Change))
			}
			return nil
		},
	}
	addSecretFlags(cmd, &src)
	cmd.Flags().StringVar(&to, "to", "", "destination address or OpenAlias name")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in DOGE, e.g. 12.5")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newExportCmd(g *globalFlags) *cobra.Command {
	var src secretSource
	var out, outPassword string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Encrypt a private key to a wallet file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			secret, err := src.read(cmd.InOrStdin())
			if err != nil {
				return err
			}
			info, err := wallet.ImportWallet(secret, a.net)
			if err != nil {
				return err
			}
			if err := writeEncrypted(out, outPassword, info.Secret); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "address: %s\nwallet:  %s\n", info.Address, out)
			return nil
		},
	}
	addSecretFlags(cmd, &src)
	cmd.Flags().StringVar(&out, "out", "", "destination wallet file")
	cmd.Flags().StringVar(&outPassword, "out-password-file", "", "file holding the password for --out")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// resolveDestination returns to unchanged when it is an address, and the
// OpenAlias record's address when it is a name. A nil resolver picks one
// from cfg.
func resolveDestination(to string, cfg config.AliasConfig, net *wallet.NetworkConfig, resolver alias.DNSResolver) (string, error) {
	if !alias.IsAlias(to) {
		return to, nil
	}
	if resolver == nil {
		resolver = alias.DefaultDNSResolver
		if cfg.DNSSEC {
			resolver = alias.NewDNSSECResolver(cfg.Upstream)
		}
	}
	rec, err := alias.ResolveWithResolver(to, alias.AssetDoge, resolver)
	if err != nil {
		return "", err
	}
	if err := wallet.ValidateAddress(rec.Address, net); err != nil {
		return "", fmt.Errorf("%w: alias %s: %w", alias.ErrInvalidRecord, to, err)
	}
	return rec.Address, nil
}
