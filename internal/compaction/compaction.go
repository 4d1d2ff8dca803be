// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package compaction bounds the size of the dataset written to the remote
// store. The local store always keeps the full-fidelity dataset; Compact is
// applied only on the remote path.
//
// The transform is pure: it never mutates its input and
// Compact(Compact(d)) == Compact(d).
package compaction

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/models"
)

const (
	DefaultRetentionDays      = 365
	DefaultImageRetentionDays = 7
)

// Policy configures the compaction rules.
type Policy struct {
	// RetentionDays is how many calendar days of daily logs are kept.
	// A log dated exactly RetentionDays before today is still kept.
	RetentionDays int
	// ImageRetentionDays is the age after which meal photos are stripped.
	ImageRetentionDays int
	// Location is the time zone used to evaluate calendar dates.
	Location *time.Location
}

// DefaultPolicy returns the 365 / 7 day policy in the local time zone.
func DefaultPolicy() Policy {
	return Policy{
		RetentionDays:      DefaultRetentionDays,
		ImageRetentionDays: DefaultImageRetentionDays,
		Location:           time.Local,
	}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// Compact returns the bounded form of d as of now (ms since epoch):
//   - logs older than RetentionDays calendar days are dropped; logs whose
//     date cannot be parsed are kept untouched;
//   - photos of meals older than ImageRetentionDays are removed, the rest of
//     the meal facts stay;
//   - calories and macros are rounded to integers, confidence is cleared and
//     manual notes are trimmed.
func (p Policy) Compact(d models.Dataset, now int64) models.Dataset {
	out := d.Clone()
	if out.Logs == nil {
		return out
	}

	loc := p.location()
	nowTime := clock.Time(now, loc)
	today := time.Date(nowTime.Year(), nowTime.Month(), nowTime.Day(), 0, 0, 0, 0, loc)
	retainFrom := today.AddDate(0, 0, -p.RetentionDays)
	imageCutoff := now - (time.Duration(p.ImageRetentionDays) * 24 * time.Hour).Milliseconds()

	kept := make([]models.DailyLog, 0, len(out.Logs))
	for _, log := range out.Logs {
		day, err := log.Day(loc)
		if err != nil {
			kept = append(kept, log)
			continue
		}
		if day.Before(retainFrom) {
			continue
		}

		log.TotalCalories = math.Round(log.TotalCalories)
		for i := range log.Meals {
			compactMeal(&log.Meals[i], day.UnixMilli(), imageCutoff)
		}
		kept = append(kept, log)
	}
	out.Logs = kept

	return out
}

func compactMeal(m *models.MealLog, logDay, imageCutoff int64) {
	taken := m.Timestamp
	if taken == 0 {
		taken = logDay
	}
	if taken < imageCutoff {
		m.ImageURL = ""
	}

	m.ManualNotes = strings.TrimSpace(m.ManualNotes)

	if m.Analysis != nil {
		m.Analysis.Calories = math.Round(m.Analysis.Calories)
		m.Analysis.Protein = math.Round(m.Analysis.Protein)
		m.Analysis.Carbs = math.Round(m.Analysis.Carbs)
		m.Analysis.Fat = math.Round(m.Analysis.Fat)
		m.Analysis.Confidence = 0
	}
}

// Compactor applies a Policy against a clock.
type Compactor struct {
	policy Policy
	clock  clock.Clock
}

// NewCompactor returns a Compactor for policy reading the current time from clk.
func NewCompactor(policy Policy, clk clock.Clock) *Compactor {
	if policy.RetentionDays <= 0 {
		policy.RetentionDays = DefaultRetentionDays
	}
	if policy.ImageRetentionDays <= 0 {
		policy.ImageRetentionDays = DefaultImageRetentionDays
	}
	return &Compactor{policy: policy, clock: clk}
}

// Compact implements the service-level compaction contract.
func (c *Compactor) Compact(d models.Dataset) models.Dataset {
	return c.policy.Compact(d, c.clock.Now())
}

// PayloadSize returns the JSON-encoded size of d in bytes, or -1 when d
// cannot be encoded.
func PayloadSize(d models.Dataset) int {
	data, err := json.Marshal(d)
	if err != nil {
		return -1
	}
	return len(data)
}
