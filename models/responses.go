// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// SnapshotInfo is the lightweight descriptor of a stored remote snapshot
// returned after a write and by the administrative listing.
type SnapshotInfo struct {
	UserID     string `json:"user_id" bson:"_id"`
	LastSynced int64  `json:"last_synced" bson:"last_synced"`
	SizeBytes  int    `json:"size_bytes" bson:"size_bytes"`
}

// ErrorResponse is the JSON body written by the HTTP API on failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
