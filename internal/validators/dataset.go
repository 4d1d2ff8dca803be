// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/MKhiriev/nutrilife-sync/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	FieldName           = "name"
	FieldHeight         = "height"
	FieldWeight         = "weight"
	FieldTargetCalories = "target_calories"
	FieldMacroRatios    = "macro_ratios"
	FieldID             = "id"
	FieldDate           = "date"
	FieldMeals          = "meals"
	FieldMealType       = "type"
	FieldAnalysis       = "analysis"
	FieldNutrients      = "nutrients"
	FieldConfidence     = "confidence"
	FieldSchedule       = "schedule"
)

// Accepted ranges of user input.
const (
	minHeight         = 50.0
	maxHeight         = 300.0
	minWeight         = 20.0
	maxWeight         = 500.0
	minTargetCalories = 500.0
	maxTargetCalories = 10000.0
	macroTolerance    = 0.5
)

const mealTimeLayout = "15:04"

// DatasetValidator implements [Validator] for the user-editable parts of a
// dataset: profiles, macro ratios, daily logs, meals, food facts, weight
// samples, presets and meal schedules. Value and pointer forms are accepted.
type DatasetValidator struct {
}

// NewDatasetValidator constructs a DatasetValidator.
func NewDatasetValidator() Validator {
	return &DatasetValidator{}
}

// Validate dispatches on the dynamic type of obj. It returns
// ErrUnsupportedType for anything else.
func (v *DatasetValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Profile:
		return v.validateProfile(ctx, value, fields...)
	case *models.Profile:
		return v.validateProfile(ctx, *value, fields...)

	case models.MacroRatios:
		return validateMacroRatios(value)
	case *models.MacroRatios:
		return validateMacroRatios(*value)

	case models.DailyLog:
		return v.validateDailyLog(ctx, value, fields...)
	case *models.DailyLog:
		return v.validateDailyLog(ctx, *value, fields...)

	case models.MealLog:
		return v.validateMealLog(ctx, value, fields...)
	case *models.MealLog:
		return v.validateMealLog(ctx, *value, fields...)

	case models.FoodFacts:
		return v.validateFoodFacts(ctx, value, fields...)
	case *models.FoodFacts:
		return v.validateFoodFacts(ctx, *value, fields...)

	case models.WeightSample:
		return v.validateWeightSample(ctx, value, fields...)
	case *models.WeightSample:
		return v.validateWeightSample(ctx, *value, fields...)

	case models.PresetFood:
		return v.validatePresetFood(ctx, value, fields...)
	case *models.PresetFood:
		return v.validatePresetFood(ctx, *value, fields...)

	case models.MealSchedule:
		return validateSchedule(value)

	default:
		return ErrUnsupportedType
	}
}

func (v *DatasetValidator) validateProfile(_ context.Context, p models.Profile, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldName, FieldHeight, FieldWeight, FieldTargetCalories, FieldMacroRatios}
	}

	for _, f := range fields {
		switch f {
		case FieldName:
			if p.Name == "" {
				return ErrEmptyName
			}
		case FieldHeight:
			if !inRange(p.Height, minHeight, maxHeight) {
				return ErrInvalidHeight
			}
		case FieldWeight:
			if !inRange(p.Weight, minWeight, maxWeight) {
				return ErrInvalidWeight
			}
		case FieldTargetCalories:
			if !inRange(p.TargetCalories, minTargetCalories, maxTargetCalories) {
				return ErrInvalidTargetCalories
			}
		case FieldMacroRatios:
			if err := validateMacroRatios(p.MacroRatios); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validateMacroRatios(m models.MacroRatios) error {
	for _, r := range []float64{m.Protein, m.Carbs, m.Fat} {
		if !inRange(r, 0, 100) {
			return ErrInvalidMacroRatios
		}
	}
	if math.Abs(m.Protein+m.Carbs+m.Fat-100) > macroTolerance {
		return ErrInvalidMacroRatios
	}
	return nil
}

// validateDailyLog checks the log date and every meal. Default fields: Date,
// Meals.
func (v *DatasetValidator) validateDailyLog(ctx context.Context, l models.DailyLog, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldDate, FieldMeals}
	}

	for _, f := range fields {
		switch f {
		case FieldDate:
			if err := validateDate(l.Date); err != nil {
				return err
			}
		case FieldMeals:
			for i, m := range l.Meals {
				if err := v.validateMealLog(ctx, m); err != nil {
					return fmt.Errorf("validation error at meal %d: %w", i, err)
				}
			}
		case FieldWeight:
			if l.Weight != nil && !inRange(*l.Weight, minWeight, maxWeight) {
				return ErrInvalidWeight
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *DatasetValidator) validateMealLog(ctx context.Context, m models.MealLog, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldMealType, FieldAnalysis}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if m.ID == "" {
				return ErrEmptyID
			}
		case FieldMealType:
			if !m.Type.Valid() {
				return ErrInvalidMealType
			}
		case FieldAnalysis:
			if m.Analysis != nil {
				if err := v.validateFoodFacts(ctx, *m.Analysis); err != nil {
					return err
				}
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *DatasetValidator) validateFoodFacts(_ context.Context, f models.FoodFacts, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldNutrients, FieldConfidence}
	}

	for _, field := range fields {
		switch field {
		case FieldName:
			if f.FoodName == "" {
				return ErrEmptyName
			}
		case FieldNutrients:
			if !nonNegative(f.Calories, f.Protein, f.Carbs, f.Fat) {
				return ErrInvalidNutrient
			}
		case FieldConfidence:
			if !inRange(f.Confidence, 0, 1) {
				return ErrInvalidConfidence
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *DatasetValidator) validateWeightSample(_ context.Context, w models.WeightSample, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldDate, FieldWeight}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if w.ID == "" {
				return ErrEmptyID
			}
		case FieldDate:
			if err := validateDate(w.Date); err != nil {
				return err
			}
		case FieldWeight:
			if !inRange(w.Weight, minWeight, maxWeight) {
				return ErrInvalidWeight
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *DatasetValidator) validatePresetFood(_ context.Context, p models.PresetFood, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldName, FieldNutrients}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if p.ID == "" {
				return ErrEmptyID
			}
		case FieldName:
			if p.Name == "" {
				return ErrEmptyName
			}
		case FieldNutrients:
			if !nonNegative(p.Calories, p.Protein, p.Carbs, p.Fat) {
				return ErrInvalidNutrient
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validateSchedule(s models.MealSchedule) error {
	for mealType, slot := range s {
		if !mealType.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidMealType, mealType)
		}
		if _, err := time.Parse(mealTimeLayout, slot.Time); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidMealTime, slot.Time)
		}
	}
	return nil
}

func validateDate(date string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

func nonNegative(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}
