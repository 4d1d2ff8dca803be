// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"testing"
)

const testHashKey = "test-secret-key"

func TestHasher_MatchesHMAC(t *testing.T) {
	h := NewHasher(testHashKey)
	data := []byte(`{"profile":null}`)

	mac := hmac.New(sha256.New, []byte(testHashKey))
	mac.Write(data)
	expected := mac.Sum(nil)

	if got := h.Hash(data); !bytes.Equal(got, expected) {
		t.Fatalf("unexpected hash value\nwant: %x\ngot:  %x", expected, got)
	}
	if got := h.HashHex(data); got != hex.EncodeToString(expected) {
		t.Fatalf("unexpected hex digest %s", got)
	}
}

func TestHasher_Deterministic(t *testing.T) {
	h := NewHasher(testHashKey)
	data := []byte("payload")

	if !bytes.Equal(h.Hash(data), h.Hash(data)) {
		t.Fatal("hash must be deterministic for the same input")
	}
}

func TestHasher_DifferentKeys(t *testing.T) {
	data := []byte("payload")

	if bytes.Equal(NewHasher("a").Hash(data), NewHasher("b").Hash(data)) {
		t.Fatal("different keys must produce different digests")
	}
}

func TestHasher_Verify(t *testing.T) {
	h := NewHasher(testHashKey)
	data := []byte("payload")
	digest := h.HashHex(data)

	if !h.Verify(data, digest) {
		t.Error("expected digest to verify")
	}
	if h.Verify([]byte("tampered"), digest) {
		t.Error("expected tampered body to fail verification")
	}
	if h.Verify(data, "not-hex") {
		t.Error("expected malformed digest to fail verification")
	}
}

func TestHasher_Enabled(t *testing.T) {
	if NewHasher("").Enabled() {
		t.Error("empty key must disable the hasher")
	}
	if !NewHasher("k").Enabled() {
		t.Error("non-empty key must enable the hasher")
	}
	var nilHasher *Hasher
	if nilHasher.Enabled() {
		t.Error("nil hasher must be disabled")
	}
}

func TestHasher_ConcurrentUse(t *testing.T) {
	h := NewHasher(testHashKey)
	want := h.HashHex([]byte("x"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := h.HashHex([]byte("x")); got != want {
				t.Errorf("concurrent digest mismatch: %s", got)
			}
		}()
	}
	wg.Wait()
}

func TestHashString(t *testing.T) {
	h := NewHasher(testHashKey)
	if HashString("data", testHashKey) != h.HashHex([]byte("data")) {
		t.Fatal("HashString must agree with Hasher")
	}
}
