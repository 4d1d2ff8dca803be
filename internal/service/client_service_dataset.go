// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/MKhiriev/nutrilife-sync/internal/analyzer"
	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/utils"
	"github.com/MKhiriev/nutrilife-sync/internal/validators"
	"github.com/MKhiriev/nutrilife-sync/models"
)

type idGenerator interface {
	Generate() string
}

type clientDatasetService struct {
	session   DatasetSession
	analyzer  analyzer.Analyzer
	validator validators.Validator
	ids       idGenerator
	clock     clock.Clock
	location  *time.Location

	logger *logger.Logger
}

// NewClientDatasetService returns the dataset service of session. Calendar
// dates are evaluated in loc; nil means the local time zone.
func NewClientDatasetService(session DatasetSession, an analyzer.Analyzer, clk clock.Clock, loc *time.Location, logger *logger.Logger) ClientDatasetService {
	if loc == nil {
		loc = time.Local
	}

	return &clientDatasetService{
		session:   session,
		analyzer:  an,
		validator: validators.NewDatasetValidator(),
		ids:       utils.NewUUIDGenerator(),
		clock:     clk,
		location:  loc,
		logger:    logger,
	}
}

func (s *clientDatasetService) today() string {
	return clock.Today(s.clock.Now(), s.location)
}

// mutate runs fn through the session once a profile exists.
func (s *clientDatasetService) mutate(fn func(d *models.Dataset) error) error {
	return s.session.Mutate(func(d *models.Dataset) error {
		if !d.HasProfile() {
			return ErrNoDataset
		}
		return fn(d)
	})
}

func (s *clientDatasetService) CompleteProfile(ctx context.Context, p models.Profile) error {
	if err := s.validator.Validate(ctx, p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	p.SetupComplete = true

	sample := models.WeightSample{
		ID:        s.ids.Generate(),
		Date:      s.today(),
		Timestamp: s.clock.Now(),
		Weight:    p.Weight,
	}

	return s.session.Mutate(func(d *models.Dataset) error {
		created := !d.HasProfile()
		previousWeight := 0.0
		if d.Profile != nil {
			previousWeight = d.Profile.Weight
		}
		d.Profile = &p

		if len(d.Schedule) == 0 {
			d.Schedule = models.DefaultMealSchedule()
		}

		switch {
		case created:
			d.WeightHistory = []models.WeightSample{sample}
		case p.Weight != previousWeight:
			d.WeightHistory = append(d.WeightHistory, sample)
		}
		return nil
	})
}

func (s *clientDatasetService) UpdateLog(ctx context.Context, log models.DailyLog) error {
	if err := s.validator.Validate(ctx, log, validators.FieldDate, validators.FieldMeals, validators.FieldWeight); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if log.Meals == nil {
		log.Meals = []models.MealLog{}
	}
	log.RecalculateCalories()

	return s.mutate(func(d *models.Dataset) error {
		d.PutLog(log)
		return nil
	})
}

func (s *clientDatasetService) AddWeight(ctx context.Context, weight float64) (models.WeightSample, error) {
	sample := models.WeightSample{
		ID:        s.ids.Generate(),
		Date:      s.today(),
		Timestamp: s.clock.Now(),
		Weight:    weight,
	}
	if err := s.validator.Validate(ctx, sample); err != nil {
		return models.WeightSample{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	err := s.mutate(func(d *models.Dataset) error {
		d.WeightHistory = append(d.WeightHistory, sample)
		d.Profile.Weight = weight
		return nil
	})
	if err != nil {
		return models.WeightSample{}, err
	}

	return sample, nil
}

func (s *clientDatasetService) DeleteWeight(_ context.Context, id string) error {
	return s.mutate(func(d *models.Dataset) error {
		i := slices.IndexFunc(d.WeightHistory, func(w models.WeightSample) bool { return w.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrWeightNotFound, id)
		}
		d.WeightHistory = slices.Delete(d.WeightHistory, i, i+1)

		if latest, ok := d.LatestWeight(); ok {
			d.Profile.Weight = latest.Weight
		}
		return nil
	})
}

func (s *clientDatasetService) UpdateSchedule(ctx context.Context, schedule models.MealSchedule) error {
	if err := s.validator.Validate(ctx, schedule); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	next := make(models.MealSchedule, len(schedule))
	for k, v := range schedule {
		next[k] = v
	}

	return s.mutate(func(d *models.Dataset) error {
		d.Schedule = next
		return nil
	})
}

func (s *clientDatasetService) ToggleMeal(_ context.Context, mealType models.MealType) error {
	if !mealType.Valid() {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, validators.ErrInvalidMealType)
	}

	return s.mutate(func(d *models.Dataset) error {
		slot, ok := d.Schedule[mealType]
		if !ok {
			slot = models.DefaultMealSchedule()[mealType]
		}
		slot.Enabled = !slot.Enabled
		d.Schedule[mealType] = slot
		return nil
	})
}

func (s *clientDatasetService) AddPreset(ctx context.Context, preset models.PresetFood) (models.PresetFood, error) {
	if preset.ID == "" {
		preset.ID = s.ids.Generate()
	}
	if err := s.validator.Validate(ctx, preset); err != nil {
		return models.PresetFood{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	err := s.mutate(func(d *models.Dataset) error {
		d.PresetFoods = append(d.PresetFoods, preset)
		return nil
	})
	if err != nil {
		return models.PresetFood{}, err
	}

	return preset, nil
}

func (s *clientDatasetService) DeletePreset(_ context.Context, id string) error {
	return s.mutate(func(d *models.Dataset) error {
		i := slices.IndexFunc(d.PresetFoods, func(p models.PresetFood) bool { return p.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrPresetNotFound, id)
		}
		d.PresetFoods = slices.Delete(d.PresetFoods, i, i+1)
		return nil
	})
}

// UpdateNutrition sets the calorie target (truncated to whole calories) or
// the protein or carbs ratio. Fat takes the remainder rounded to one
// decimal and never goes below zero.
func (s *clientDatasetService) UpdateNutrition(ctx context.Context, field NutritionField, value float64) error {
	switch field {
	case NutritionCalories, NutritionProtein, NutritionCarbs:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownNutrition, field)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidDataProvided
	}

	return s.mutate(func(d *models.Dataset) error {
		p := d.Profile

		if field == NutritionCalories {
			target := math.Trunc(value)
			probe := models.Profile{TargetCalories: target}
			if err := s.validator.Validate(ctx, probe, validators.FieldTargetCalories); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
			}
			p.TargetCalories = target
			return nil
		}

		ratios := p.MacroRatios
		if field == NutritionProtein {
			ratios.Protein = value
		} else {
			ratios.Carbs = value
		}
		if ratios.Protein+ratios.Carbs > 100 {
			return ErrMacroOverflow
		}
		ratios.Fat = math.Max(0, math.Round((100-ratios.Protein-ratios.Carbs)*10)/10)

		if err := s.validator.Validate(ctx, ratios); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
		}
		p.MacroRatios = ratios
		return nil
	})
}

// LogMeal resolves the meal facts and appends the meal to its daily log.
// Image analysis failures never fail the call: the meal is recorded with
// placeholder facts.
func (s *clientDatasetService) LogMeal(ctx context.Context, entry MealEntry) (models.MealLog, error) {
	if entry.Date == "" {
		entry.Date = s.today()
	}

	meal := models.MealLog{
		ID:          s.ids.Generate(),
		Type:        entry.Type,
		Timestamp:   s.clock.Now(),
		Completed:   true,
		ManualNotes: entry.ManualNotes,
	}

	current, _ := s.session.Dataset()
	facts, err := s.resolveFacts(ctx, entry, current)
	if err != nil {
		return models.MealLog{}, err
	}
	meal.Analysis = &facts
	if entry.PresetID == "" && entry.Image != nil {
		meal.ImageURL = entry.Image.DataURL()
	}

	if err = s.validator.Validate(ctx, meal); err != nil {
		return models.MealLog{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if err = s.validator.Validate(ctx, models.DailyLog{Date: entry.Date}, validators.FieldDate); err != nil {
		return models.MealLog{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	err = s.mutate(func(d *models.Dataset) error {
		log, _ := d.LogByDate(entry.Date)
		log.Meals = append(log.Meals, meal)
		log.RecalculateCalories()
		d.PutLog(log)
		return nil
	})
	if err != nil {
		return models.MealLog{}, err
	}

	return meal, nil
}

func (s *clientDatasetService) resolveFacts(ctx context.Context, entry MealEntry, current models.Dataset) (models.FoodFacts, error) {
	switch {
	case entry.PresetID != "":
		i := slices.IndexFunc(current.PresetFoods, func(p models.PresetFood) bool { return p.ID == entry.PresetID })
		if i < 0 {
			return models.FoodFacts{}, fmt.Errorf("%w: %s", ErrPresetNotFound, entry.PresetID)
		}
		return current.PresetFoods[i].Facts(), nil

	case entry.Image != nil:
		facts, err := s.analyzer.Analyze(ctx, *entry.Image)
		if err != nil {
			s.logger.Warn().Err(err).Str("func", "clientDatasetService.LogMeal").Msg("image analysis failed, using placeholder facts")
			return models.PlaceholderFacts(), nil
		}
		return facts, nil

	case entry.Facts != nil:
		if err := s.validator.Validate(ctx, *entry.Facts); err != nil {
			return models.FoodFacts{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
		}
		return *entry.Facts, nil

	default:
		return models.PlaceholderFacts(), nil
	}
}
