// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidUserID         = errors.New("invalid user ID")
	ErrEmptyName             = errors.New("name is required")
	ErrInvalidHeight         = errors.New("height must be between 50 and 300 cm")
	ErrInvalidWeight         = errors.New("weight must be between 20 and 500 kg")
	ErrInvalidTargetCalories = errors.New("target calories must be between 500 and 10000")
	ErrInvalidMacroRatios    = errors.New("macro ratios must be non-negative and add up to 100")
	ErrInvalidDate           = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidMealType       = errors.New("unknown meal type")
	ErrInvalidMealTime       = errors.New("meal time must be in HH:mm format")
	ErrInvalidNutrient       = errors.New("nutrient values must be non-negative")
	ErrInvalidConfidence     = errors.New("confidence must be between 0 and 1")
	ErrEmptyID               = errors.New("id is required")
	ErrPayloadTooLarge       = errors.New("payload too large")
)
