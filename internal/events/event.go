// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package events turns the per-tick detector report into discrete,
// identifiable motion events.
package events

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/relabs-tech/motion_events/internal/motion"
)

// Kind names what happened.
type Kind string

const (
	KindShake      Kind = "shake"
	KindJerk       Kind = "jerk"
	KindFreefall   Kind = "freefall"
	KindSpin       Kind = "spin"
	KindTilt       Kind = "tilt"
	KindAxisChange Kind = "axis_change"
)

// Kinds lists every kind in reporting order.
func Kinds() []Kind {
	return []Kind{KindShake, KindJerk, KindFreefall, KindSpin, KindTilt, KindAxisChange}
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown event kind %q", s)
}

// Event is one detected motion event.
type Event struct {
	ID     uuid.UUID `json:"id"`
	Kind   Kind      `json:"kind"`
	Source string    `json:"source"`
	Time   time.Time `json:"time"`

	// Magnitude is g for shake, jerk, freefall and axis_change, deg/s for
	// spin and degrees for tilt.
	Magnitude float64     `json:"magnitude"`
	Axis      motion.Axis `json:"axis"`
	Roll      float64     `json:"roll"`
	Pitch     float64     `json:"pitch"`
}

// Tracker compares successive reports. Shake and jerk already rate limit
// themselves, so every positive report becomes an event; freefall, spin
// and tilt are level signals and produce one event per rising edge; the
// dominant axis produces an event when gravity settles on a different axis.
//
// A Tracker is owned by the producer loop and is not safe for concurrent use.
type Tracker struct {
	source string
	now    func() time.Time
	newID  func() uuid.UUID

	freefall bool
	spin     bool
	tilt     bool
	axis     motion.Axis
}

// NewTracker creates a tracker tagging events with source.
func NewTracker(source string) *Tracker {
	return &Tracker{
		source: source,
		now:    time.Now,
		newID:  uuid.New,
		axis:   motion.AxisNone,
	}
}

// Observe returns the events r starts, in Kinds order.
func (t *Tracker) Observe(r motion.Report) []Event {
	axis := r.Axis
	if axis == 0 {
		axis = motion.AxisNone
	}

	var out []Event
	emit := func(kind Kind, magnitude float64) {
		out = append(out, Event{
			ID:        t.newID(),
			Kind:      kind,
			Source:    t.source,
			Time:      t.now(),
			Magnitude: magnitude,
			Axis:      axis,
			Roll:      r.Roll,
			Pitch:     r.Pitch,
		})
	}

	if r.Shake {
		emit(KindShake, r.AccelMagnitude)
	}
	if r.Jerk {
		emit(KindJerk, r.AccelMagnitude)
	}
	if r.Freefall && !t.freefall {
		emit(KindFreefall, r.AccelMagnitude)
	}
	if r.Spinning && !t.spin {
		emit(KindSpin, r.GyroMagnitude)
	}
	if r.Tilted && !t.tilt {
		emit(KindTilt, math.Max(math.Abs(r.Roll), math.Abs(r.Pitch)))
	}
	if axis != motion.AxisNone && axis != t.axis {
		if t.axis != motion.AxisNone {
			emit(KindAxisChange, r.AccelMagnitude)
		}
		t.axis = axis
	}

	t.freefall = r.Freefall
	t.spin = r.Spinning
	t.tilt = r.Tilted
	return out
}
