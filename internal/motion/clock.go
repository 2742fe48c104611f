// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"sync/atomic"
	"time"
)

// Clock is a free-running millisecond counter. It wraps around after
// ~49.7 days; all elapsed-time math goes through elapsedMs.
type Clock interface {
	Millis() uint32
}

// SystemClock counts milliseconds on the monotonic clock since its creation.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a clock starting at zero now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Millis truncates to 32 bits, like a microcontroller millis() counter.
func (c *SystemClock) Millis() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	now atomic.Uint32
}

// NewManualClock returns a clock reading start.
func NewManualClock(start uint32) *ManualClock {
	c := &ManualClock{}
	c.now.Store(start)
	return c
}

func (c *ManualClock) Millis() uint32 {
	return c.now.Load()
}

// Set jumps to ms.
func (c *ManualClock) Set(ms uint32) {
	c.now.Store(ms)
}

// Advance moves the clock forward by d, wrapping like the hardware counter.
func (c *ManualClock) Advance(d time.Duration) {
	c.now.Add(uint32(d.Milliseconds()))
}

// elapsedMs is correct across a single counter rollover.
func elapsedMs(now, since uint32) uint32 {
	return now - since
}
