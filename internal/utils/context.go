// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, hashing,
// HTTP response writing, HTTP client initialization, JWT token generation
// and validation, and identifier generation.
package utils

import (
	"context"

	"github.com/MKhiriev/nutrilife-sync/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

var (
	// UserIDCtxKey is the key used to store the authenticated user
	// identifier (a string) in the context.
	UserIDCtxKey = contextKey("userID")

	// RoleCtxKey is the key used to store the role claim of the
	// authenticated caller.
	RoleCtxKey = contextKey("role")

	// WriteTagCtxKey is the key used to store the [models.WriteTag] of an
	// incoming snapshot write.
	WriteTagCtxKey = contextKey("writeTag")
)

// Headers carrying the write tag of PUT /api/snapshot.
const (
	WriterHeader   = "X-Snapshot-Writer"
	WriteSeqHeader = "X-Snapshot-Seq"
)

// WithUser returns a copy of ctx carrying userID and role.
func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDCtxKey, userID)
	return context.WithValue(ctx, RoleCtxKey, role)
}

// GetUserIDFromContext retrieves the user identifier from the context.
// ok is false when the value is missing, empty or has an unexpected type.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok && userID != ""
}

// GetRoleFromContext retrieves the caller role from the context.
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleCtxKey).(string)
	return role, ok
}

// WithWriteTag returns a copy of ctx carrying tag.
func WithWriteTag(ctx context.Context, tag models.WriteTag) context.Context {
	return context.WithValue(ctx, WriteTagCtxKey, tag)
}

// GetWriteTagFromContext retrieves the write tag from the context. ok is
// false for untagged writes.
func GetWriteTagFromContext(ctx context.Context) (models.WriteTag, bool) {
	tag, ok := ctx.Value(WriteTagCtxKey).(models.WriteTag)
	return tag, ok && tag.Writer != ""
}
