// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"github.com/MKhiriev/nutrilife-sync/internal/analyzer"
	"github.com/MKhiriev/nutrilife-sync/models"
)

// Compactor bounds a dataset before it is written to the remote store.
type Compactor interface {
	Compact(d models.Dataset) models.Dataset
}

// DatasetSession is the part of [Session] used by the client services.
type DatasetSession interface {
	// UserID returns the identifier of the session owner.
	UserID() string

	// Dataset returns a copy of the in-memory dataset and whether one
	// exists.
	Dataset() (models.Dataset, bool)

	// Mutate applies fn to a copy of the dataset and runs the mutation
	// protocol when fn succeeds.
	Mutate(fn func(d *models.Dataset) error) error

	// Status returns the current sync status.
	Status() models.SyncStatus

	// Resync re-attempts the remote push of the current dataset.
	Resync() error
}

// NutritionField selects the target changed by UpdateNutrition.
type NutritionField string

const (
	NutritionCalories NutritionField = "calories"
	NutritionProtein  NutritionField = "protein"
	NutritionCarbs    NutritionField = "carbs"
)

// MealEntry is a meal reported by the user. Exactly one source of facts is
// used: PresetID, then Image, then Facts. With none of them the meal is
// logged with placeholder facts.
type MealEntry struct {
	Date        string
	Type        models.MealType
	PresetID    string
	Image       *analyzer.Image
	Facts       *models.FoodFacts
	ManualNotes string
}

// ClientDatasetService turns user intents into dataset mutations. Input is
// validated before the sync engine sees it.
type ClientDatasetService interface {
	// CompleteProfile creates or replaces the profile and records the
	// initial weight sample.
	CompleteProfile(ctx context.Context, p models.Profile) error

	// UpdateLog replaces the daily log with the same date.
	UpdateLog(ctx context.Context, log models.DailyLog) error

	// AddWeight records a weight sample for today and updates the profile
	// weight.
	AddWeight(ctx context.Context, weight float64) (models.WeightSample, error)

	// DeleteWeight removes a weight sample; the profile weight becomes the
	// most recent remaining sample.
	DeleteWeight(ctx context.Context, id string) error

	// UpdateSchedule replaces the meal schedule.
	UpdateSchedule(ctx context.Context, schedule models.MealSchedule) error

	// ToggleMeal flips the reminder of one meal slot.
	ToggleMeal(ctx context.Context, mealType models.MealType) error

	// AddPreset stores a reusable food entry.
	AddPreset(ctx context.Context, preset models.PresetFood) (models.PresetFood, error)

	// DeletePreset removes a preset by id.
	DeletePreset(ctx context.Context, id string) error

	// UpdateNutrition changes the calorie target or one macro ratio; fat is
	// rebalanced to the remainder.
	UpdateNutrition(ctx context.Context, field NutritionField, value float64) error

	// LogMeal adds a completed meal to a daily log.
	LogMeal(ctx context.Context, entry MealEntry) (models.MealLog, error)
}

// ClientTransferService implements the manual export/import boundary.
type ClientTransferService interface {
	// Export serializes the full in-memory dataset.
	Export(ctx context.Context) ([]byte, error)

	// Import replaces the dataset with the document in data after confirm
	// approves it. Documents missing a top-level field are rejected.
	Import(ctx context.Context, data []byte, confirm func(models.ExportDocument) bool) error
}

// ClientAccountService removes accounts.
type ClientAccountService interface {
	// RemoveAccount deletes both the local and the remote snapshot of
	// userID.
	RemoveAccount(ctx context.Context, userID string) error
}

// ClientRetryJob re-attempts failed pushes in the background.
type ClientRetryJob interface {
	// Start launches the job. It calls Resync every interval while the
	// session status is local_only. Any running job is stopped first.
	Start(ctx context.Context, interval time.Duration)

	// Stop stops the job and waits for it to exit.
	Stop()
}
