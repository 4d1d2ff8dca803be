// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package clock supplies the millisecond timestamps used to stamp snapshots
// and to compare them. It is never used for display formatting.
package clock

import (
	"sync"
	"time"
)

// Clock returns milliseconds since the Unix epoch.
type Clock interface {
	Now() int64
}

// System is a wall clock that never goes backwards within a process. When
// the OS clock is adjusted back, the last returned value is repeated until
// wall time catches up.
type System struct {
	mu   sync.Mutex
	last int64
	wall func() time.Time
}

// New returns a System clock reading time.Now.
func New() *System {
	return &System{wall: time.Now}
}

// Now implements Clock.
func (c *System) Now() int64 {
	ms := c.wall().UnixMilli()

	c.mu.Lock()
	defer c.mu.Unlock()

	if ms < c.last {
		ms = c.last
	}
	c.last = ms

	return ms
}

// Manual is a Clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now int64
}

// NewManual returns a Manual clock set to start.
func NewManual(start int64) *Manual {
	return &Manual{now: start}
}

// Now implements Clock.
func (m *Manual) Now() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to ms.
func (m *Manual) Set(ms int64) {
	m.mu.Lock()
	m.now = ms
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d.Milliseconds()
	m.mu.Unlock()
}

// Time converts a millisecond timestamp to a time.Time in loc.
func Time(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc)
}

// Today returns the calendar date of ms in loc, formatted as YYYY-MM-DD.
func Today(ms int64, loc *time.Location) string {
	return Time(ms, loc).Format("2006-01-02")
}
