// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/migrations"
	"github.com/MKhiriev/nutrilife-sync/models"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// newDBFromSQL wraps a sqlmock connection for the given dialect.
func newDBFromSQL(db *sql.DB, dialect migrations.Dialect) *DB {
	return &DB{
		DB:                 db,
		dialect:            dialect,
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             logger.Nop(),
	}
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func testSnapshot(lastSynced int64) models.Snapshot {
	d := models.NewDataset()
	d.Profile = &models.Profile{
		Name:           "Ann",
		Height:         170,
		Weight:         62,
		TargetCalories: 2000,
		MacroRatios:    models.MacroRatios{Protein: 30, Carbs: 40, Fat: 30},
		SetupComplete:  true,
	}
	d.PutLog(models.DailyLog{
		Date: "2026-10-01",
		Meals: []models.MealLog{{
			ID:        "m1",
			Type:      models.MealLunch,
			Timestamp: 1759312800000,
			Completed: true,
			Analysis:  &models.FoodFacts{FoodName: "Soup", Calories: 320},
		}},
		TotalCalories: 320,
	})
	return models.Snapshot{Dataset: d, LastSynced: lastSynced}
}
