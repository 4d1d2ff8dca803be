// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

// Session lifecycle errors.
var (
	ErrSessionNotReady    = errors.New("session is not open yet")
	ErrSessionClosed      = errors.New("session is closed")
	ErrSessionAlreadyOpen = errors.New("session is already open")
	ErrNoDataset          = errors.New("no dataset: complete the profile first")
	ErrRemotePushFailed   = errors.New("remote push failed")
)

// Dataset operation errors.
var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWeightNotFound      = errors.New("weight sample was not found")
	ErrPresetNotFound      = errors.New("preset food was not found")
	ErrMealNotFound        = errors.New("meal was not found")
	ErrUnknownNutrition    = errors.New("unknown nutrition field")
	ErrMacroOverflow       = errors.New("protein and carbs exceed 100 percent")
	ErrImportCancelled     = errors.New("import cancelled")
)

// Server-side errors.
var (
	ErrValidationNoUserID      = errors.New("no user ID was given")
	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrVersionIsNotSpecified   = errors.New("app version is not specified")
	ErrForbidden               = errors.New("operation is not permitted for this caller")
	ErrStaleWrite              = errors.New("a newer write from the same client is already stored")
)
