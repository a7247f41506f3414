package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"panoplia-wallet/internal/cosigner"
)

const recoveryTimeout = 2 * time.Minute

func recoveryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recovery",
		Short: "Manage social recovery",
	}
	cmd.AddCommand(
		recoverySetupCommand(a),
		recoveryStatusCommand(a),
		recoveryRemoveCommand(a),
		recoveryInitiateCommand(a),
		recoverySubmitCommand(a),
		recoveryCompleteCommand(a),
	)
	return cmd
}

func recoverySetupCommand(a *app) *cobra.Command {
	var guardians []string
	var threshold int

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure guardians for the active wallet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, recoveryTimeout)
			defer cancel()

			if _, err := a.requireActive(ctx); err != nil {
				return err
			}

			inputs := make([]cosigner.GuardianInput, 0, len(guardians))
			for _, g := range guardians {
				name, email, ok := strings.Cut(g, ":")
				if !ok {
					return fmt.Errorf("guardian %q must be name:email", g)
				}
				inputs = append(inputs, cosigner.GuardianInput{Name: name, Email: email})
			}

			resp, err := a.wallets.SetupRecovery(ctx, inputs, threshold)
			if err != nil {
				return err
			}
			cmd.Printf("Recovery configured (id %s), %d of %d guardian shares required\n",
				resp.RecoveryID, threshold, len(inputs))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&guardians, "guardian", nil, "guardian as name:email, repeatable")
	cmd.Flags().IntVar(&threshold, "threshold", 2, "shares required to recover")
	_ = cmd.MarkFlagRequired("guardian")
	return cmd
}

func recoveryStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active wallet's recovery configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, recoveryTimeout)
			defer cancel()

			if _, err := a.requireActive(ctx); err != nil {
				return err
			}
			cfg, err := a.wallets.RecoveryConfig(ctx)
			if err != nil {
				return err
			}
			if cfg == nil {
				cmd.Println("No recovery configured")
				return nil
			}

			cmd.Printf("Recovery %s: %d of %d shares required\n",
				cfg.RecoveryID, cfg.Threshold, len(cfg.Guardians))
			for _, g := range cfg.Guardians {
				cmd.Printf("  %s <%s> (%s)\n", g.Name, g.Email, g.Status)
			}
			return nil
		},
	}
}

func recoveryRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Delete the active wallet's recovery configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, recoveryTimeout)
			defer cancel()

			if _, err := a.requireActive(ctx); err != nil {
				return err
			}
			if err := a.wallets.RemoveRecovery(ctx); err != nil {
				return err
			}
			cmd.Println("Recovery configuration removed")
			return nil
		},
	}
}

func recoveryInitiateCommand(a *app) *cobra.Command {
	var vaultID, email string

	cmd := &cobra.Command{
		Use:   "initiate",
		Short: "Start recovering a vault on this device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, recoveryTimeout)
			defer cancel()

			attempt, err := a.wallets.InitiateRecovery(ctx, vaultID, email)
			if err != nil {
				return err
			}
			cmd.Printf("Recovery attempt %s started, %d guardian shares needed\n",
				attempt.AttemptID, attempt.Needed)
			return nil
		},
	}
	cmd.Flags().StringVar(&vaultID, "vault", "", "vault id to recover")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("vault")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func recoverySubmitCommand(a *app) *cobra.Command {
	var attemptID, guardianID, share string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a guardian share to a recovery attempt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, recoveryTimeout)
			defer cancel()

			progress, err := a.wallets.SubmitRecoveryShare(ctx, attemptID, guardianID, share)
			if err != nil {
				return err
			}
			cmd.Printf("%d of %d shares collected\n", progress.Collected, progress.Needed)
			return nil
		},
	}
	cmd.Flags().StringVar(&attemptID, "attempt", "", "recovery attempt id")
	cmd.Flags().StringVar(&guardianID, "guardian", "", "guardian id")
	cmd.Flags().StringVar(&share, "share", "", "guardian share data")
	_ = cmd.MarkFlagRequired("attempt")
	_ = cmd.MarkFlagRequired("guardian")
	_ = cmd.MarkFlagRequired("share")
	return cmd
}

func recoveryCompleteCommand(a *app) *cobra.Command {
	var attemptID string

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Finish a recovery attempt and restore the vault",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, recoveryTimeout)
			defer cancel()

			if err := a.requireSession(ctx); err != nil {
				return err
			}
			id, err := a.wallets.CompleteRecovery(ctx, attemptID)
			if err != nil {
				return err
			}
			cmd.Printf("Vault recovered (id %s)\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&attemptID, "attempt", "", "recovery attempt id")
	_ = cmd.MarkFlagRequired("attempt")
	return cmd
}
