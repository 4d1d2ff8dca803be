// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sync"
)

// HashHeader carries the hex HMAC-SHA256 digest of a request or response
// body.
const HashHeader = "HashSHA256"

// Hasher computes keyed HMAC-SHA256 digests. Hash instances are pooled to
// avoid an allocation per request. A Hasher with an empty key is disabled.
type Hasher struct {
	key  []byte
	pool sync.Pool
}

// NewHasher returns a Hasher for key.
func NewHasher(key string) *Hasher {
	h := &Hasher{key: []byte(key)}
	h.pool.New = func() any {
		return hmac.New(sha256.New, h.key)
	}
	return h
}

// Enabled reports whether the hasher has a key.
func (h *Hasher) Enabled() bool {
	return h != nil && len(h.key) > 0
}

// Hash returns the raw HMAC-SHA256 digest of data.
func (h *Hasher) Hash(data []byte) []byte {
	mac := h.pool.Get().(hash.Hash)
	mac.Reset()

	mac.Write(data)
	sum := mac.Sum(nil)

	mac.Reset()
	h.pool.Put(mac)

	return sum
}

// HashHex returns the hex-encoded digest of data.
func (h *Hasher) HashHex(data []byte) string {
	return hex.EncodeToString(h.Hash(data))
}

// Verify reports whether hexDigest is the digest of data. The comparison
// runs in constant time.
func (h *Hasher) Verify(data []byte, hexDigest string) bool {
	expected, err := hex.DecodeString(hexDigest)
	if err != nil {
		return false
	}
	return hmac.Equal(h.Hash(data), expected)
}

// HashString computes an HMAC-SHA256 signature over data using hashKey and
// returns it hex-encoded. A new HMAC instance is created on each call.
func HashString(data string, hashKey string) string {
	hasher := hmac.New(sha256.New, []byte(hashKey))
	hasher.Write([]byte(data))
	return hex.EncodeToString(hasher.Sum(nil))
}
