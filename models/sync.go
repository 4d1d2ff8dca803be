// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// SyncStatus describes how the in-memory dataset relates to the remote store
// of record. It is derived at runtime and never persisted.
type SyncStatus string

const (
	// StatusSynced means the remote store holds the latest dataset, or the
	// last remote check finished without requiring further work.
	StatusSynced SyncStatus = "synced"
	// StatusSyncing means a remote read or write is in flight.
	StatusSyncing SyncStatus = "syncing"
	// StatusLocalOnly means the dataset is safe on the device but the last
	// remote write failed.
	StatusLocalOnly SyncStatus = "local_only"
)

// String implements fmt.Stringer.
func (s SyncStatus) String() string {
	return string(s)
}
