// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is a dataset together with the time (ms since epoch) at which it
// was written to a store. LastSynced is the only conflict-resolution signal.
type Snapshot struct {
	Dataset
	LastSynced int64 `json:"last_synced"`

	// Tag identifies the write that produced a server-side snapshot. It is
	// never sent back to clients.
	Tag *WriteTag `json:"write_tag,omitempty"`
}

// WriteTag orders the pushes of one writer: Seq grows with every push a
// writer sends, so a smaller Seq from the same Writer is an older write.
type WriteTag struct {
	Writer string `json:"writer"`
	Seq    uint64 `json:"seq"`
}

// Supersedes reports whether a write tagged t may replace the snapshot
// written under prev. Writes from other writers always may.
func (t WriteTag) Supersedes(prev *WriteTag) bool {
	return prev == nil || prev.Writer != t.Writer || t.Seq > prev.Seq
}

var datasetFields = []string{"profile", "logs", "weight_history", "schedule", "preset_foods"}

// DecodeSnapshot parses data and checks its shape before any field is
// trusted. Every failure wraps ErrMalformedSnapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	if err := requireFields(data, append(datasetFields, "last_synced")...); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}

	if s.LastSynced < 0 {
		return Snapshot{}, fmt.Errorf("%w: negative last_synced %d", ErrMalformedSnapshot, s.LastSynced)
	}

	if err := s.Dataset.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}

	s.Dataset.Normalize()
	return s, nil
}

// Validate checks the structural invariants of the dataset: a profile is
// present, every log has a valid date and no date appears twice.
func (d Dataset) Validate() error {
	if d.Profile == nil {
		return fmt.Errorf("profile is missing")
	}

	seen := make(map[string]struct{}, len(d.Logs))
	for _, l := range d.Logs {
		if _, err := time.Parse(DateLayout, l.Date); err != nil {
			return fmt.Errorf("log date %q: %w", l.Date, err)
		}
		if _, ok := seen[l.Date]; ok {
			return fmt.Errorf("duplicate log for date %s", l.Date)
		}
		seen[l.Date] = struct{}{}
	}

	return nil
}

// requireFields checks that data is a JSON object holding every key in
// fields with a non-null value.
func requireFields(data []byte, fields ...string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, f := range fields {
		v, ok := raw[f]
		if !ok || string(v) == "null" {
			return fmt.Errorf("missing field %q", f)
		}
	}

	return nil
}
