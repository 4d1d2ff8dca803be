// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"

	"github.com/MKhiriev/nutrilife-sync/models"
)

func TestContextKeyString(t *testing.T) {
	key := contextKey("testKey")
	if key.String() != "testKey" {
		t.Errorf("expected 'testKey', got '%s'", key.String())
	}
}

func TestWithUser_RoundTrip(t *testing.T) {
	ctx := WithUser(context.Background(), "user-42", "admin")

	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if userID != "user-42" {
		t.Errorf("expected userID=user-42, got %s", userID)
	}

	role, ok := GetRoleFromContext(ctx)
	if !ok || role != "admin" {
		t.Errorf("expected role=admin, got %q (ok=%v)", role, ok)
	}
}

func TestGetUserIDFromContext_Missing(t *testing.T) {
	userID, ok := GetUserIDFromContext(context.Background())
	if ok {
		t.Fatal("expected ok=false, got true")
	}
	if userID != "" {
		t.Errorf("expected empty userID, got %s", userID)
	}
}

func TestGetUserIDFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDCtxKey, int64(42))

	if _, ok := GetUserIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for non-string value")
	}
}

func TestGetUserIDFromContext_Empty(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDCtxKey, "")

	if _, ok := GetUserIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for empty user id")
	}
}

func TestGetUserIDFromContext_DifferentKey(t *testing.T) {
	ctx := context.WithValue(context.Background(), contextKey("other"), "u1")

	if _, ok := GetUserIDFromContext(ctx); ok {
		t.Fatal("expected ok=false for a value stored under a different key")
	}
}

func TestWithWriteTag_RoundTrip(t *testing.T) {
	ctx := WithWriteTag(context.Background(), models.WriteTag{Writer: "w1", Seq: 7})

	tag, ok := GetWriteTagFromContext(ctx)
	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if tag.Writer != "w1" || tag.Seq != 7 {
		t.Errorf("unexpected tag %+v", tag)
	}
}

func TestGetWriteTagFromContext_Untagged(t *testing.T) {
	if _, ok := GetWriteTagFromContext(context.Background()); ok {
		t.Error("expected ok=false for a context without a tag")
	}

	ctx := WithWriteTag(context.Background(), models.WriteTag{Seq: 3})
	if _, ok := GetWriteTagFromContext(ctx); ok {
		t.Error("expected ok=false for a tag without a writer")
	}
}
