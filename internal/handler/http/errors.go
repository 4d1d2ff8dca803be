// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	// ErrEmptyAuthorizationHeader is returned by the auth middleware when the
	// request carries no "Authorization" header.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAuthorizationHeader is returned when the header is not of the
	// form "Bearer <token>".
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")

	// ErrIntegrityCheckFailed is returned when the HashSHA256 header is
	// missing or does not match the request body.
	ErrIntegrityCheckFailed = errors.New("integrity check failed")

	ErrInvalidJSON = errors.New("invalid JSON was passed")

	// ErrIncompleteWriteTag is returned when only one of the write tag
	// headers is set or the sequence is not a number.
	ErrIncompleteWriteTag = errors.New("invalid snapshot write tag")
)
