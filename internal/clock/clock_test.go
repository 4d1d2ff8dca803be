// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystem_Now_IsMonotonic(t *testing.T) {
	wall := time.UnixMilli(10_000)
	c := &System{wall: func() time.Time { return wall }}

	assert.Equal(t, int64(10_000), c.Now())

	wall = time.UnixMilli(9_000) // clock adjusted backwards
	assert.Equal(t, int64(10_000), c.Now())

	wall = time.UnixMilli(10_500)
	assert.Equal(t, int64(10_500), c.Now())
}

func TestSystem_Now_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev := int64(0)
			for range 1000 {
				n := c.Now()
				assert.GreaterOrEqual(t, n, prev)
				prev = n
			}
		}()
	}
	wg.Wait()
}

func TestManual(t *testing.T) {
	m := NewManual(1000)
	assert.Equal(t, int64(1000), m.Now())

	m.Advance(1500 * time.Millisecond)
	assert.Equal(t, int64(2500), m.Now())

	m.Set(42)
	assert.Equal(t, int64(42), m.Now())
}

func TestToday(t *testing.T) {
	ms := time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, "2026-10-19", Today(ms, time.UTC))

	tz := time.FixedZone("UTC+7", 7*3600)
	assert.Equal(t, "2026-10-20", Today(ms, tz))
}
