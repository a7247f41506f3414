package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"panoplia-wallet/internal/config"
	"panoplia-wallet/internal/cosigner"
	"panoplia-wallet/internal/cosigner/stub"
	"panoplia-wallet/internal/domain"
	"panoplia-wallet/internal/localstore"
	"panoplia-wallet/internal/observability"
	"panoplia-wallet/internal/session"
	"panoplia-wallet/internal/wallet"
)

// app wires the stores together. Commands reach everything through it; no
// package-level state.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	local    localstore.Store
	api      cosigner.API
	sessions *session.Store
	wallets  *wallet.Store
	balances *wallet.Balances
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "panoplia",
		Short:         "Multi-chain MPC wallet client",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	cmd.AddCommand(
		registerCommand(a),
		loginCommand(a),
		logoutCommand(a),
		whoamiCommand(a),
		walletsCommand(a),
		exportCommand(a),
		transferCommand(a),
		transactionsCommand(a),
		balanceCommand(a),
		recoveryCommand(a),
		healthCommand(a),
	)
	return cmd
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = buildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	a.local, err = localstore.OpenFileStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open local storage: %w", err)
	}

	metrics := observability.NewMetrics("")

	if cfg.Offline {
		a.api = stub.NewClient()
	} else {
		a.api = cosigner.NewClient(cfg.ServerURL,
			cosigner.WithTimeout(cfg.Timeout),
			cosigner.WithRetries(cfg.Retries),
			cosigner.WithTokenSource(func() string { return a.sessions.Token() }),
			cosigner.WithLogger(a.logger),
			cosigner.WithMetrics(metrics),
		)
	}

	a.sessions = session.NewStore(a.api, a.local, session.WithLogger(a.logger))
	a.wallets = wallet.NewStore(a.api, a.local,
		wallet.WithLogger(a.logger),
		wallet.WithMetrics(metrics),
	)

	balanceFetch, priceFetch := demoFetchers()
	if !cfg.Offline && cfg.EthRPC != "" {
		client, err := ethclient.Dial(cfg.EthRPC)
		if err != nil {
			return fmt.Errorf("connect eth rpc: %w", err)
		}
		balanceFetch = wallet.EVMBalanceFetcher(client, balanceFetch)
	}
	a.balances = wallet.NewBalances(balanceFetch, priceFetch,
		wallet.WithBalancesLogger(a.logger),
		wallet.WithBalancesMetrics(metrics),
	)

	a.sessions.OnLogout(a.wallets.Reset)
	a.sessions.OnLogout(a.balances.ClearCache)
	return nil
}

// requireSession restores a persisted session and fails the command if none
// is valid.
func (a *app) requireSession(ctx context.Context) error {
	if a.sessions.State() == session.StateAuthenticated {
		return nil
	}
	if !a.sessions.Restore(ctx) {
		return errors.New("not logged in, run \"panoplia login\" first")
	}
	return nil
}

// requireActive restores the session and the persisted active wallet, then
// reconciles both against the server.
func (a *app) requireActive(ctx context.Context) (*domain.Wallet, error) {
	if err := a.requireSession(ctx); err != nil {
		return nil, err
	}
	a.wallets.RestoreActiveWallet()
	if _, err := a.wallets.FetchWallets(ctx); err != nil {
		return nil, err
	}
	active := a.wallets.Active()
	if active == nil {
		return nil, errors.New("no wallet selected, run \"panoplia wallets select\"")
	}
	return active, nil
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// demoFetchers returns static pricing and empty balances for offline mode
// and deployments without chain RPC access.
func demoFetchers() (wallet.BalanceFetcher, wallet.PriceFetcher) {
	return wallet.StaticBalances(
		map[string]domain.Balance{
			"Ethereum:0x742d35Cc6634C0532925a3b844Bc9e7595f4a23F": {
				Chain:   domain.ChainEthereum,
				Address: "0x742d35Cc6634C0532925a3b844Bc9e7595f4a23F",
				Amount:  "2.5",
			},
		},
		map[string]float64{
			"ETH":   3200,
			"BTC":   97000,
			"SOL":   210,
			"MATIC": 0.55,
			"AVAX":  42,
			"BNB":   640,
			"RUNE":  4.8,
			"ATOM":  9.1,
		},
	)
}

func commandContext(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
