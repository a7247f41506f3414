package wallet

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"panoplia-wallet/internal/cosigner"
	"panoplia-wallet/internal/domain"
)

// SetupRecovery configures social recovery for the active wallet. Threshold
// must be reachable with the named guardians.
func (s *Store) SetupRecovery(ctx context.Context, guardians []cosigner.GuardianInput, threshold int) (*cosigner.SetupRecoveryResponse, error) {
	if threshold < 1 || threshold > len(guardians) {
		return nil, fmt.Errorf("threshold %d out of range for %d guardians", threshold, len(guardians))
	}

	s.mu.Lock()
	var id string
	if s.active != nil {
		id = s.active.ID
	}
	s.mu.Unlock()
	if id == "" {
		return nil, ErrNoActiveWallet
	}

	resp, err := s.api.SetupRecovery(ctx, id, guardians, threshold)
	if err != nil {
		return nil, fmt.Errorf("setup recovery: %w", err)
	}
	return resp, nil
}

// RecoveryConfig returns the active wallet's recovery configuration, nil if
// none is set up.
func (s *Store) RecoveryConfig(ctx context.Context) (*domain.RecoveryConfig, error) {
	s.mu.Lock()
	var id string
	if s.active != nil {
		id = s.active.ID
	}
	s.mu.Unlock()
	if id == "" {
		return nil, ErrNoActiveWallet
	}
	return s.api.GetRecovery(ctx, id)
}

// RemoveRecovery deletes the active wallet's recovery configuration.
func (s *Store) RemoveRecovery(ctx context.Context) error {
	s.mu.Lock()
	var id string
	if s.active != nil {
		id = s.active.ID
	}
	s.mu.Unlock()
	if id == "" {
		return ErrNoActiveWallet
	}
	return s.api.DeleteRecovery(ctx, id)
}

// InitiateRecovery starts recovering a vault on a new device. It runs
// outside the active-wallet selection because the wallet being recovered is
// by definition not in the local list yet.
func (s *Store) InitiateRecovery(ctx context.Context, vaultID, email string) (*domain.RecoveryAttempt, error) {
	attempt, err := s.api.InitiateRecovery(ctx, vaultID, email)
	if err != nil {
		return nil, fmt.Errorf("initiate recovery: %w", err)
	}
	return attempt, nil
}

// SubmitRecoveryShare forwards one guardian share to an in-flight attempt.
func (s *Store) SubmitRecoveryShare(ctx context.Context, attemptID, guardianID, shareData string) (*cosigner.ShareProgress, error) {
	return s.api.SubmitRecoveryShare(ctx, attemptID, guardianID, shareData)
}

// CompleteRecovery finishes an attempt, imports the recovered vault content
// and refreshes the wallet list.
func (s *Store) CompleteRecovery(ctx context.Context, attemptID string) (string, error) {
	content, err := s.api.CompleteRecovery(ctx, attemptID)
	if err != nil {
		return "", fmt.Errorf("complete recovery: %w", err)
	}
	id, err := s.api.ImportVault(ctx, content)
	if err != nil {
		return "", fmt.Errorf("import recovered vault: %w", err)
	}
	if _, err := s.FetchWallets(ctx); err != nil {
		s.logger.Warn("refresh after recovery failed", zap.Error(err))
	}
	return id, nil
}
