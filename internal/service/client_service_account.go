// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/nutrilife-sync/internal/adapter"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/store"
)

type clientAccountService struct {
	local  store.LocalSnapshotStore
	remote adapter.ServerAdapter

	logger *logger.Logger
}

// NewClientAccountService returns the account removal service. local may be
// nil on hosts that keep no device copy, such as the admin CLI.
func NewClientAccountService(local store.LocalSnapshotStore, remote adapter.ServerAdapter, logger *logger.Logger) ClientAccountService {
	return &clientAccountService{
		local:  local,
		remote: remote,
		logger: logger,
	}
}

// RemoveAccount attempts both removals even when one of them fails and
// reports every failure.
func (a *clientAccountService) RemoveAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrValidationNoUserID
	}

	var errs []error

	if a.local != nil {
		if err := a.local.Remove(userID); err != nil {
			errs = append(errs, fmt.Errorf("remove local snapshot: %w", err))
		}
	}

	if err := a.remote.DeleteSnapshot(ctx, userID); err != nil {
		errs = append(errs, fmt.Errorf("remove remote snapshot: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		a.logger.Error().Err(err).Str("func", "clientAccountService.RemoveAccount").Str("user_id", userID).Msg("account removal incomplete")
		return err
	}

	a.logger.Info().Str("func", "clientAccountService.RemoveAccount").Str("user_id", userID).Msg("account removed")
	return nil
}
