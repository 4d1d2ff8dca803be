// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"sync"
	"time"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/utils"
	"github.com/MKhiriev/nutrilife-sync/models"
)

// Credentials describe the bearer tokens an adapter mints. The server
// accepts any token signed with the shared key; Role "admin" unlocks the
// administrative routes.
type Credentials struct {
	Issuer   string
	SignKey  string
	Duration time.Duration
	Role     string
	// Operator is the token subject for calls that are not made on behalf
	// of a particular user, such as ListSnapshots.
	Operator string
}

// UserCredentials returns credentials for a regular client session.
func UserCredentials(app config.ClientApp) Credentials {
	return Credentials{
		Issuer:   app.TokenIssuer,
		SignKey:  app.TokenSignKey,
		Duration: app.TokenDuration,
		Role:     models.RoleUser,
	}
}

// AdminCredentials returns credentials for maintenance tools.
func AdminCredentials(app config.ClientApp, operator string) Credentials {
	c := UserCredentials(app)
	c.Role = models.RoleAdmin
	c.Operator = operator
	return c
}

// tokenCache mints one token per user and reuses it until it gets close to
// expiry.
type tokenCache struct {
	creds Credentials

	mu     sync.Mutex
	tokens map[string]models.Token
}

func newTokenCache(creds Credentials) *tokenCache {
	return &tokenCache{creds: creds, tokens: make(map[string]models.Token)}
}

func (c *tokenCache) token(userID string) (string, error) {
	if userID == "" {
		userID = c.creds.Operator
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.tokens[userID]; ok && t.ExpiresAt != nil &&
		time.Until(t.ExpiresAt.Time) > c.creds.Duration/10 {
		return t.SignedString, nil
	}

	t, err := utils.GenerateJWTToken(c.creds.Issuer, userID, c.creds.Role, c.creds.Duration, c.creds.SignKey)
	if err != nil {
		return "", err
	}
	c.tokens[userID] = t
	return t.SignedString, nil
}
