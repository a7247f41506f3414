package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"panoplia-wallet/internal/chains"
	"panoplia-wallet/internal/cosigner"
	"panoplia-wallet/internal/domain"
	"panoplia-wallet/internal/localstore"
)

func transferCommand(a *app) *cobra.Command {
	var (
		chain  string
		to     string
		amount string
		memo   string
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Send funds from the active wallet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, 5*time.Minute)
			defer cancel()

			active, err := a.requireActive(ctx)
			if err != nil {
				return err
			}

			ch := domain.Chain(chain)
			info, ok := chains.Get(ch)
			if !ok {
				return fmt.Errorf("unsupported chain %q", chain)
			}
			if !chains.ValidAddress(ch, to) {
				return fmt.Errorf("invalid %s address %q", info.Name, to)
			}
			if _, err := chains.ToBaseUnit(amount, info.Decimals); err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			if active.AddressFor(ch) == "" {
				return fmt.Errorf("wallet %s has no %s address", active.ID, info.Name)
			}

			resp, err := a.wallets.Send(ctx, cosigner.SignRequest{
				Chain:  ch,
				To:     to,
				Amount: amount,
				Memo:   memo,
			})
			if err != nil {
				return err
			}
			if err := localstore.PushRecent(a.local, localstore.KeyRecentChains, string(ch), 5); err != nil {
				a.logger.Warn("record recent chain failed", zap.Error(err))
			}

			cmd.Printf("Signing session %s started, payload %s\n", resp.SessionID, resp.SigningPayload)
			cmd.Println("Approve the transaction on your co-signer device to finish.")
			return nil
		},
	}

	cmd.Flags().StringVar(&chain, "chain", string(domain.ChainEthereum), "chain to send on")
	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in display units")
	cmd.Flags().StringVar(&memo, "memo", "", "optional memo")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
