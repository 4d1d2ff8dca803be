// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/models"
)

func testAuthConfig() config.App {
	return config.App{
		TokenSignKey:  "test-sign-key",
		TokenIssuer:   "nutrilife-test",
		TokenDuration: time.Hour,
	}
}

func TestAuthService_CreateAndParse(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		wantRole  string
		wantAdmin bool
	}{
		{name: "default role", role: "", wantRole: models.RoleUser},
		{name: "user", role: models.RoleUser, wantRole: models.RoleUser},
		{name: "admin", role: models.RoleAdmin, wantRole: models.RoleAdmin, wantAdmin: true},
	}

	svc := NewAuthService(testAuthConfig(), logger.Nop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.CreateToken(context.Background(), testUserID, tt.role)
			require.NoError(t, err)
			require.NotEmpty(t, token.SignedString)

			parsed, err := svc.ParseToken(context.Background(), token.SignedString)
			require.NoError(t, err)
			assert.Equal(t, testUserID, parsed.UserID)
			assert.Equal(t, tt.wantRole, parsed.Role)
			assert.Equal(t, tt.wantAdmin, parsed.IsAdmin())
		})
	}
}

func TestAuthService_CreateToken_InvalidParams(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), logger.Nop())
	_, err := svc.CreateToken(context.Background(), "", models.RoleUser)
	assert.ErrorIs(t, err, ErrTokenCreationFailed)

	cfg := testAuthConfig()
	cfg.TokenSignKey = ""
	_, err = NewAuthService(cfg, logger.Nop()).CreateToken(context.Background(), testUserID, models.RoleUser)
	assert.ErrorIs(t, err, ErrTokenCreationFailed)
}

func TestAuthService_ParseToken_Rejected(t *testing.T) {
	issuer := NewAuthService(testAuthConfig(), logger.Nop())
	token, err := issuer.CreateToken(context.Background(), testUserID, models.RoleUser)
	require.NoError(t, err)

	otherKey := testAuthConfig()
	otherKey.TokenSignKey = "another-key"

	otherIssuer := testAuthConfig()
	otherIssuer.TokenIssuer = "someone-else"

	shortLived := testAuthConfig()
	shortLived.TokenDuration = time.Nanosecond
	expired, err := NewAuthService(shortLived, logger.Nop()).CreateToken(context.Background(), testUserID, models.RoleUser)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	tests := []struct {
		name  string
		cfg   config.App
		token string
	}{
		{name: "garbage", cfg: testAuthConfig(), token: "not-a-jwt"},
		{name: "wrong key", cfg: otherKey, token: token.SignedString},
		{name: "wrong issuer", cfg: otherIssuer, token: token.SignedString},
		{name: "expired", cfg: testAuthConfig(), token: expired.SignedString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAuthService(tt.cfg, logger.Nop()).ParseToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
		})
	}
}
