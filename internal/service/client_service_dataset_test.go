// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/nutrilife-sync/internal/analyzer"
	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/mock"
	"github.com/MKhiriev/nutrilife-sync/internal/validators"
	"github.com/MKhiriev/nutrilife-sync/models"
)

// memSession applies mutations synchronously to an in-memory dataset.
type memSession struct {
	dataset    models.Dataset
	hasDataset bool
	mutations  int
}

func (m *memSession) UserID() string { return testUserID }

func (m *memSession) Dataset() (models.Dataset, bool) { return m.dataset.Clone(), m.hasDataset }

func (m *memSession) Status() models.SyncStatus { return models.StatusSynced }

func (m *memSession) Resync() error { return nil }

func (m *memSession) Mutate(fn func(d *models.Dataset) error) error {
	working := models.NewDataset()
	if m.hasDataset {
		working = m.dataset.Clone()
	}
	if err := fn(&working); err != nil {
		return err
	}
	working.Normalize()
	m.dataset = working
	m.hasDataset = true
	m.mutations++
	return nil
}

type sequenceIDs struct{ n int }

func (s *sequenceIDs) Generate() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func newDatasetService(t *testing.T, seed *models.Dataset, an analyzer.Analyzer) (*clientDatasetService, *memSession) {
	t.Helper()

	session := &memSession{}
	if seed != nil {
		session.dataset = seed.Clone()
		session.hasDataset = true
	}
	if an == nil {
		an = analyzer.Disabled{}
	}

	svc := NewClientDatasetService(session, an, clock.NewManual(testNow), time.UTC, logger.Nop()).(*clientDatasetService)
	svc.ids = &sequenceIDs{}
	return svc, session
}

func seeded() *models.Dataset {
	d := testDataset()
	return &d
}

// ── CompleteProfile ──────────────────────────────────────────────────────────

func TestClientDatasetService_CompleteProfile_Create(t *testing.T) {
	svc, session := newDatasetService(t, nil, nil)

	p := testProfile()
	p.SetupComplete = false
	require.NoError(t, svc.CompleteProfile(context.Background(), p))

	d := session.dataset
	require.NotNil(t, d.Profile)
	assert.True(t, d.Profile.SetupComplete)
	assert.Equal(t, models.DefaultMealSchedule(), d.Schedule)
	assert.Equal(t, []models.WeightSample{{ID: "id-1", Date: "2026-10-19", Timestamp: testNow, Weight: 62}}, d.WeightHistory)
}

func TestClientDatasetService_CompleteProfile_Update(t *testing.T) {
	tests := []struct {
		name        string
		weight      float64
		wantSamples int
	}{
		{name: "same weight keeps history", weight: 62, wantSamples: 1},
		{name: "new weight appends a sample", weight: 64.5, wantSamples: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, session := newDatasetService(t, seeded(), nil)

			p := testProfile()
			p.Weight = tt.weight
			p.Name = "Anna"
			require.NoError(t, svc.CompleteProfile(context.Background(), p))

			assert.Equal(t, "Anna", session.dataset.Profile.Name)
			assert.Len(t, session.dataset.WeightHistory, tt.wantSamples)
			latest, ok := session.dataset.LatestWeight()
			require.True(t, ok)
			assert.Equal(t, tt.weight, latest.Weight)
		})
	}
}

func TestClientDatasetService_CompleteProfile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *models.Profile)
		wantErr error
	}{
		{name: "empty name", mutate: func(p *models.Profile) { p.Name = "" }, wantErr: validators.ErrEmptyName},
		{name: "height too low", mutate: func(p *models.Profile) { p.Height = 20 }, wantErr: validators.ErrInvalidHeight},
		{name: "weight too high", mutate: func(p *models.Profile) { p.Weight = 900 }, wantErr: validators.ErrInvalidWeight},
		{name: "calories too low", mutate: func(p *models.Profile) { p.TargetCalories = 100 }, wantErr: validators.ErrInvalidTargetCalories},
		{name: "ratios do not add up", mutate: func(p *models.Profile) { p.MacroRatios.Fat = 50 }, wantErr: validators.ErrInvalidMacroRatios},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, session := newDatasetService(t, nil, nil)

			p := testProfile()
			tt.mutate(&p)
			err := svc.CompleteProfile(context.Background(), p)

			assert.ErrorIs(t, err, ErrInvalidDataProvided)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, session.mutations)
		})
	}
}

// ── Logs and weights ─────────────────────────────────────────────────────────

func TestClientDatasetService_UpdateLog(t *testing.T) {
	svc, session := newDatasetService(t, seeded(), nil)

	log := models.DailyLog{
		Date: "2026-10-18",
		Meals: []models.MealLog{
			{ID: "m1", Type: models.MealBreakfast, Analysis: &models.FoodFacts{FoodName: "Oats", Calories: 350}},
			{ID: "m2", Type: models.MealLunch, Analysis: &models.FoodFacts{FoodName: "Rice", Calories: 500.5}},
			{ID: "m3", Type: models.MealDinner},
		},
		TotalCalories: 1,
	}
	require.NoError(t, svc.UpdateLog(context.Background(), log))

	got, i := session.dataset.LogByDate("2026-10-18")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, 850.5, got.TotalCalories)
	assert.Len(t, got.Meals, 3)
}

func TestClientDatasetService_UpdateLog_Errors(t *testing.T) {
	svc, _ := newDatasetService(t, seeded(), nil)

	err := svc.UpdateLog(context.Background(), models.DailyLog{Date: "18.10.2026"})
	assert.ErrorIs(t, err, validators.ErrInvalidDate)

	err = svc.UpdateLog(context.Background(), models.DailyLog{
		Date:  "2026-10-18",
		Meals: []models.MealLog{{ID: "m1", Type: "brunch"}},
	})
	assert.ErrorIs(t, err, validators.ErrInvalidMealType)

	empty, _ := newDatasetService(t, nil, nil)
	err = empty.UpdateLog(context.Background(), models.DailyLog{Date: "2026-10-18"})
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestClientDatasetService_Weights(t *testing.T) {
	svc, session := newDatasetService(t, seeded(), nil)
	ctx := context.Background()

	sample, err := svc.AddWeight(ctx, 61.2)
	require.NoError(t, err)
	assert.Equal(t, models.WeightSample{ID: "id-1", Date: "2026-10-19", Timestamp: testNow, Weight: 61.2}, sample)
	assert.Equal(t, 61.2, session.dataset.Profile.Weight)
	assert.Len(t, session.dataset.WeightHistory, 2)

	require.NoError(t, svc.DeleteWeight(ctx, sample.ID))
	assert.Equal(t, 62.0, session.dataset.Profile.Weight)
	assert.Len(t, session.dataset.WeightHistory, 1)

	assert.ErrorIs(t, svc.DeleteWeight(ctx, "missing"), ErrWeightNotFound)

	_, err = svc.AddWeight(ctx, 5)
	assert.ErrorIs(t, err, validators.ErrInvalidWeight)
}

// ── Schedule and presets ─────────────────────────────────────────────────────

func TestClientDatasetService_Schedule(t *testing.T) {
	svc, session := newDatasetService(t, seeded(), nil)
	ctx := context.Background()

	require.NoError(t, svc.ToggleMeal(ctx, models.MealBreakfast))
	assert.False(t, session.dataset.Schedule[models.MealBreakfast].Enabled)
	require.NoError(t, svc.ToggleMeal(ctx, models.MealBreakfast))
	assert.True(t, session.dataset.Schedule[models.MealBreakfast].Enabled)

	err := svc.ToggleMeal(ctx, "brunch")
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
	assert.ErrorIs(t, err, validators.ErrInvalidMealType)

	schedule := models.MealSchedule{models.MealLunch: {Time: "13:15", Enabled: true}}
	require.NoError(t, svc.UpdateSchedule(ctx, schedule))
	assert.Equal(t, schedule, session.dataset.Schedule)

	schedule[models.MealLunch] = models.MealSlot{Time: "14:00"}
	assert.Equal(t, "13:15", session.dataset.Schedule[models.MealLunch].Time)

	err = svc.UpdateSchedule(ctx, models.MealSchedule{models.MealLunch: {Time: "1pm"}})
	assert.ErrorIs(t, err, validators.ErrInvalidMealTime)
}

func TestClientDatasetService_Presets(t *testing.T) {
	svc, session := newDatasetService(t, seeded(), nil)
	ctx := context.Background()

	preset, err := svc.AddPreset(ctx, models.PresetFood{Name: "Greek yogurt", Calories: 120, Protein: 10})
	require.NoError(t, err)
	assert.Equal(t, "id-1", preset.ID)
	assert.Equal(t, []models.PresetFood{preset}, session.dataset.PresetFoods)

	_, err = svc.AddPreset(ctx, models.PresetFood{Name: "Broken", Calories: -1})
	assert.ErrorIs(t, err, validators.ErrInvalidNutrient)

	assert.ErrorIs(t, svc.DeletePreset(ctx, "missing"), ErrPresetNotFound)
	require.NoError(t, svc.DeletePreset(ctx, preset.ID))
	assert.Empty(t, session.dataset.PresetFoods)
}

// ── UpdateNutrition ──────────────────────────────────────────────────────────

func TestClientDatasetService_UpdateNutrition(t *testing.T) {
	tests := []struct {
		name         string
		field        NutritionField
		value        float64
		wantCalories float64
		wantRatios   models.MacroRatios
		wantErr      error
	}{
		{
			name:         "calories are truncated",
			field:        NutritionCalories,
			value:        2150.9,
			wantCalories: 2150,
			wantRatios:   models.MacroRatios{Protein: 30, Carbs: 40, Fat: 30},
		},
		{
			name:         "protein rebalances fat",
			field:        NutritionProtein,
			value:        35,
			wantCalories: 2000,
			wantRatios:   models.MacroRatios{Protein: 35, Carbs: 40, Fat: 25},
		},
		{
			name:         "carbs take the whole remainder",
			field:        NutritionCarbs,
			value:        70,
			wantCalories: 2000,
			wantRatios:   models.MacroRatios{Protein: 30, Carbs: 70, Fat: 0},
		},
		{
			name:         "fat is rounded to one decimal",
			field:        NutritionCarbs,
			value:        33.33,
			wantCalories: 2000,
			wantRatios:   models.MacroRatios{Protein: 30, Carbs: 33.33, Fat: 36.7},
		},
		{name: "calories out of range", field: NutritionCalories, value: 120, wantErr: validators.ErrInvalidTargetCalories},
		{name: "macros over 100", field: NutritionProtein, value: 61, wantErr: ErrMacroOverflow},
		{name: "negative ratio", field: NutritionProtein, value: -5, wantErr: validators.ErrInvalidMacroRatios},
		{name: "unknown field", field: "fiber", value: 10, wantErr: ErrUnknownNutrition},
		{name: "not a number", field: NutritionCalories, value: math.NaN(), wantErr: ErrInvalidDataProvided},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, session := newDatasetService(t, seeded(), nil)

			err := svc.UpdateNutrition(context.Background(), tt.field, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, session.mutations)
				return
			}

			require.NoError(t, err)
			p := session.dataset.Profile
			assert.Equal(t, tt.wantCalories, p.TargetCalories)
			assert.InDelta(t, tt.wantRatios.Protein, p.MacroRatios.Protein, 1e-9)
			assert.InDelta(t, tt.wantRatios.Carbs, p.MacroRatios.Carbs, 1e-9)
			assert.InDelta(t, tt.wantRatios.Fat, p.MacroRatios.Fat, 1e-9)
		})
	}
}

// ── LogMeal ──────────────────────────────────────────────────────────────────

func TestClientDatasetService_LogMeal_Preset(t *testing.T) {
	d := testDataset()
	d.PresetFoods = []models.PresetFood{{ID: "p1", Name: "Apple", Calories: 95, Carbs: 25}}
	svc, session := newDatasetService(t, &d, nil)

	meal, err := svc.LogMeal(context.Background(), MealEntry{Type: models.MealSnack1, PresetID: "p1"})
	require.NoError(t, err)

	assert.True(t, meal.Completed)
	assert.Equal(t, testNow, meal.Timestamp)
	assert.Equal(t, &models.FoodFacts{FoodName: "Apple", Calories: 95, Carbs: 25, Confidence: 1}, meal.Analysis)

	log, i := session.dataset.LogByDate("2026-10-19")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, []models.MealLog{meal}, log.Meals)
	assert.Equal(t, 95.0, log.TotalCalories)

	_, err = svc.LogMeal(context.Background(), MealEntry{Type: models.MealSnack1, PresetID: "gone"})
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

func TestClientDatasetService_LogMeal_Image(t *testing.T) {
	img := analyzer.Image{Data: []byte{0xff, 0xd8, 0xff}, MediaType: "image/jpeg"}
	facts := models.FoodFacts{FoodName: "Salad", Calories: 240, Protein: 8, Carbs: 12, Fat: 18, Confidence: 0.8}

	tests := []struct {
		name      string
		setup     func(m *mock.MockAnalyzer)
		wantFacts models.FoodFacts
	}{
		{
			name: "analyzed",
			setup: func(m *mock.MockAnalyzer) {
				m.EXPECT().Analyze(gomock.Any(), img).Return(facts, nil)
			},
			wantFacts: facts,
		},
		{
			name: "analysis failure falls back to placeholder",
			setup: func(m *mock.MockAnalyzer) {
				m.EXPECT().Analyze(gomock.Any(), img).Return(models.FoodFacts{}, errors.New("upstream down"))
			},
			wantFacts: models.PlaceholderFacts(),
		},
		{
			name: "disabled analyzer falls back to placeholder",
			setup: func(m *mock.MockAnalyzer) {
				m.EXPECT().Analyze(gomock.Any(), img).Return(models.FoodFacts{}, analyzer.ErrAnalysisDisabled)
			},
			wantFacts: models.PlaceholderFacts(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			an := mock.NewMockAnalyzer(ctrl)
			tt.setup(an)

			svc, session := newDatasetService(t, seeded(), an)
			meal, err := svc.LogMeal(context.Background(), MealEntry{
				Date:        "2026-10-17",
				Type:        models.MealLunch,
				Image:       &img,
				ManualNotes: "with olive oil",
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantFacts, *meal.Analysis)
			assert.Equal(t, "data:image/jpeg;base64,/9j/", meal.ImageURL)
			assert.Equal(t, "with olive oil", meal.ManualNotes)

			log, i := session.dataset.LogByDate("2026-10-17")
			require.GreaterOrEqual(t, i, 0)
			assert.Equal(t, tt.wantFacts.Calories, log.TotalCalories)
		})
	}
}

func TestClientDatasetService_LogMeal_ManualAndPlaceholder(t *testing.T) {
	svc, session := newDatasetService(t, seeded(), nil)
	ctx := context.Background()

	manual := models.FoodFacts{FoodName: "Toast", Calories: 180}
	meal, err := svc.LogMeal(ctx, MealEntry{Type: models.MealBreakfast, Facts: &manual})
	require.NoError(t, err)
	assert.Equal(t, manual, *meal.Analysis)
	assert.Empty(t, meal.ImageURL)

	meal, err = svc.LogMeal(ctx, MealEntry{Type: models.MealSnack2})
	require.NoError(t, err)
	assert.Equal(t, models.PlaceholderFacts(), *meal.Analysis)

	log, _ := session.dataset.LogByDate("2026-10-19")
	assert.Len(t, log.Meals, 2)
	assert.Equal(t, 180.0, log.TotalCalories)

	_, err = svc.LogMeal(ctx, MealEntry{Type: models.MealSnack2, Facts: &models.FoodFacts{Calories: -10}})
	assert.ErrorIs(t, err, validators.ErrInvalidNutrient)

	_, err = svc.LogMeal(ctx, MealEntry{Type: "brunch"})
	assert.ErrorIs(t, err, validators.ErrInvalidMealType)

	_, err = svc.LogMeal(ctx, MealEntry{Date: "yesterday", Type: models.MealLunch})
	assert.ErrorIs(t, err, validators.ErrInvalidDate)
}

func TestClientDatasetService_LogMeal_WithoutProfile(t *testing.T) {
	svc, session := newDatasetService(t, nil, nil)

	_, err := svc.LogMeal(context.Background(), MealEntry{Type: models.MealLunch})
	assert.ErrorIs(t, err, ErrNoDataset)
	assert.False(t, session.hasDataset)
}
