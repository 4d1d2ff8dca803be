// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Roles carried by the "role" claim.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Token wraps a JWT token with convenience accessors for authentication flows.
//
// It embeds [jwt.Token] for low-level token operations (signing, parsing)
// and [jwt.RegisteredClaims] for standard claim access (subject, expiry, etc.).
// The "sub" claim is the user identifier supplied by the authentication
// collaborator.
type Token struct {
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	// Role is either RoleUser or RoleAdmin. Admin tokens may list and
	// remove snapshots of other users.
	Role string `json:"role,omitempty"`

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// UserID is a cached copy of the "sub" claim.
	UserID string `json:"-"`
}

// IsAdmin reports whether the token grants administrative access.
func (t *Token) IsAdmin() bool {
	return t.Role == RoleAdmin
}

// String returns the compact JWS serialization of the token.
func (t *Token) String() string {
	return t.SignedString
}
