package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"panoplia-wallet/internal/chains"
	"panoplia-wallet/internal/cosigner"
	"panoplia-wallet/internal/wallet"
)

const walletTimeout = 2 * time.Minute

func walletsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallets",
		Short: "Manage wallets",
	}
	cmd.AddCommand(
		walletsListCommand(a),
		walletsCreateCommand(a),
		walletsSelectCommand(a),
		walletsArchiveCommand(a),
		walletsImportCommand(a),
	)
	return cmd
}

func walletsListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List wallets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, walletTimeout)
			defer cancel()

			if err := a.requireSession(ctx); err != nil {
				return err
			}
			a.wallets.RestoreActiveWallet()
			list, err := a.wallets.FetchWallets(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				cmd.Println("No wallets. Create one with \"panoplia wallets create\".")
				return nil
			}

			active := a.wallets.Active()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "\tID\tNAME\tSTATUS\tPRIMARY ADDRESS")
			for _, item := range list {
				marker := ""
				if active != nil && active.ID == item.ID {
					marker = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					marker, item.ID, item.Name, item.Status,
					chains.ShortenAddress(item.PrimaryAddress, 6))
			}
			return w.Flush()
		},
	}
}

func walletsCreateCommand(a *app) *cobra.Command {
	var name string
	var qrFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a wallet and wait for co-signer activation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, walletTimeout)
			defer cancel()

			if err := a.requireSession(ctx); err != nil {
				return err
			}

			created, err := a.wallets.CreateWallet(ctx, name, func(resp *cosigner.CreateVaultResponse) {
				cmd.Printf("Vault %s accepted, waiting for co-signer pairing...\n", resp.VaultID)
				printPairingQR(cmd, resp.QRPayload, qrFile)
			})
			if errors.Is(err, wallet.ErrActivationTimeout) {
				return fmt.Errorf("%w; the vault exists on the server and will appear once the co-signer pairs", err)
			}
			if err != nil {
				return err
			}
			cmd.Printf("Wallet %q is active (id %s)\n", created.Name, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "wallet name")
	cmd.Flags().StringVar(&qrFile, "qr-file", "", "write the pairing QR code PNG to this path")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// printPairingQR shows the pairing payload, optionally writing a scannable
// PNG next to the terminal fallback.
func printPairingQR(cmd *cobra.Command, payload, qrFile string) {
	if payload == "" {
		return
	}
	cmd.Printf("Pairing payload: %s\n", payload)

	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		cmd.PrintErrf("qr encode failed: %v\n", err)
		return
	}
	cmd.Println(qr.ToSmallString(false))

	if qrFile != "" {
		if err := os.WriteFile(qrFile, mustPNG(qr), 0o600); err != nil {
			cmd.PrintErrf("write qr file: %v\n", err)
			return
		}
		cmd.Printf("QR code written to %s\n", qrFile)
	}
}

func mustPNG(qr *qrcode.QRCode) []byte {
	png, err := qr.PNG(256)
	if err != nil {
		return nil
	}
	return png
}

func walletsSelectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <wallet-id>",
		Short: "Select the active wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd, walletTimeout)
			defer cancel()

			if err := a.requireSession(ctx); err != nil {
				return err
			}
			if _, err := a.wallets.FetchWallets(ctx); err != nil {
				return err
			}
			if err := a.wallets.SetActiveWallet(args[0]); err != nil {
				return err
			}
			cmd.Printf("Active wallet: %s\n", args[0])
			return nil
		},
	}
}

func walletsArchiveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <wallet-id>",
		Short: "Archive a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd, walletTimeout)
			defer cancel()

			if err := a.requireSession(ctx); err != nil {
				return err
			}
			a.wallets.RestoreActiveWallet()
			if _, err := a.wallets.FetchWallets(ctx); err != nil {
				return err
			}
			if err := a.wallets.ArchiveWallet(ctx, args[0]); err != nil {
				return err
			}
			cmd.Printf("Wallet %s archived\n", args[0])
			return nil
		},
	}
}

func walletsImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <backup-file>",
		Short: "Restore a wallet from an exported backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd, walletTimeout)
			defer cancel()

			if err := a.requireSession(ctx); err != nil {
				return err
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			id, err := a.wallets.Import(ctx, string(content))
			if err != nil {
				return err
			}
			cmd.Printf("Wallet restored (id %s)\n", id)
			return nil
		},
	}
}

func exportCommand(a *app) *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the active wallet's encrypted backup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, walletTimeout)
			defer cancel()

			if _, err := a.requireActive(ctx); err != nil {
				return err
			}
			content, err := a.wallets.Export(ctx)
			if err != nil {
				return err
			}
			if outFile == "" {
				cmd.Println(content)
				return nil
			}
			if err := os.WriteFile(outFile, []byte(content), 0o600); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
			cmd.Printf("Backup written to %s\n", outFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&outFile, "out", "", "write the backup to this file instead of stdout")
	return cmd
}

func transactionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transactions",
		Short: "List the active wallet's transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, walletTimeout)
			defer cancel()

			if _, err := a.requireActive(ctx); err != nil {
				return err
			}
			txs := a.wallets.FetchTransactions(ctx)
			if len(txs) == 0 {
				cmd.Println("No transactions")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCHAIN\tTO\tAMOUNT\tSTATUS\tCREATED")
			for _, tx := range txs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					tx.ID, tx.Chain, chains.ShortenAddress(tx.To, 6),
					tx.Amount, tx.Status, tx.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func balanceCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the active wallet's balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, walletTimeout)
			defer cancel()

			active, err := a.requireActive(ctx)
			if err != nil {
				return err
			}

			balances := a.balances.WalletBalances(ctx, active)
			if len(balances) == 0 {
				cmd.Println("No balances available")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CHAIN\tADDRESS\tBALANCE")
			for _, b := range balances {
				symbol := string(b.Chain)
				if info, ok := chains.Get(b.Chain); ok {
					symbol = info.Symbol
				}
				fmt.Fprintf(w, "%s\t%s\t%s %s\n",
					b.Chain, chains.ShortenAddress(b.Address, 6), b.Amount, symbol)
			}
			return w.Flush()
		},
	}
}

func healthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check co-signer server health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, 10*time.Second)
			defer cancel()

			resp, err := a.api.Health(ctx)
			if err != nil {
				return fmt.Errorf("co-signer unreachable: %w", err)
			}
			cmd.Printf("Server %s at %s\n", resp.Status, resp.Timestamp.Format(time.RFC3339))
			return nil
		},
	}
}
