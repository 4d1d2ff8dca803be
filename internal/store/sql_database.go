// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/migrations"
	"github.com/sethvargo/go-retry"
)

// DB wraps a *sql.DB with the dialect-specific pieces the repositories need.
type DB struct {
	*sql.DB
	dialect            migrations.Dialect
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Migrate applies the embedded migrations of the connection's dialect.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.dialect)
}

// builder returns a squirrel statement builder with the dialect's
// placeholder format.
func (db *DB) builder() sq.StatementBuilderType {
	if db.dialect == migrations.Postgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// pingBackoff is the first delay between startup ping attempts; it doubles
// after every retryable failure.
const pingBackoff = 200 * time.Millisecond

// pingWithRetry pings the database and retries only errors the classifier
// marks as Retryable.
func (db *DB) pingWithRetry(ctx context.Context, retries int) error {
	if retries < 0 {
		retries = 0
	}

	backoff := retry.WithMaxRetries(uint64(retries), retry.NewExponential(pingBackoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}

		if db.errorClassificator != nil && db.errorClassificator.Classify(err) == Retryable {
			db.logger.Warn().Err(err).
				Str("func", "DB.pingWithRetry").
				Str("dialect", string(db.dialect)).
				Msg("database is not reachable yet, retrying")
			return retry.RetryableError(err)
		}

		return fmt.Errorf("error connecting database (ping): %w", err)
	})
}
