// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidConfig is returned by setters and constructors for values a
	// detector cannot work with. The previous value stays in effect.
	ErrInvalidConfig = errors.New("invalid motion config")

	// ErrNoSample is returned by Evaluate before the first successful Update.
	ErrNoSample = errors.New("no sample read yet")
)

// maxDuration is the largest window representable on the 32-bit ms clock
// while still leaving room to observe it elapse.
const maxDuration = time.Duration(math.MaxUint32/2) * time.Millisecond

// Config holds every detector threshold. The zero value is not useful; start
// from DefaultConfig.
type Config struct {
	ShakeThresholdG float64       `json:"shake_threshold_g"`
	ShakeCooldown   time.Duration `json:"shake_cooldown"`

	FreefallThresholdG float64       `json:"freefall_threshold_g"`
	FreefallDuration   time.Duration `json:"freefall_duration"`

	TiltThresholdDeg float64 `json:"tilt_threshold_deg"`

	SpinThresholdDPS float64       `json:"spin_threshold_dps"`
	SpinDuration     time.Duration `json:"spin_duration"`

	JerkThresholdG float64 `json:"jerk_threshold_g"`
	// JerkDuration is accepted and stored but the jerk detector does not use
	// it; only JerkCooldown limits how often it fires.
	JerkDuration time.Duration `json:"jerk_duration"`
	JerkCooldown time.Duration `json:"jerk_cooldown"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		ShakeThresholdG: 1.5,
		ShakeCooldown:   1000 * time.Millisecond,

		FreefallThresholdG: 0.2,
		FreefallDuration:   100 * time.Millisecond,

		TiltThresholdDeg: 20.0,

		SpinThresholdDPS: 100.0,
		SpinDuration:     500 * time.Millisecond,

		JerkThresholdG: 0.5,
		JerkDuration:   50 * time.Millisecond,
		JerkCooldown:   500 * time.Millisecond,
	}
}

// Validate checks every field.
func (c Config) Validate() error {
	checks := []error{
		checkThreshold("shake threshold", c.ShakeThresholdG),
		checkDuration("shake cooldown", c.ShakeCooldown),
		checkThreshold("freefall threshold", c.FreefallThresholdG),
		checkDuration("freefall duration", c.FreefallDuration),
		checkThreshold("tilt threshold", c.TiltThresholdDeg),
		checkThreshold("spin threshold", c.SpinThresholdDPS),
		checkDuration("spin duration", c.SpinDuration),
		checkThreshold("jerk threshold", c.JerkThresholdG),
		checkDuration("jerk duration", c.JerkDuration),
		checkDuration("jerk cooldown", c.JerkCooldown),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

func checkThreshold(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s must be a finite non-negative number, got %v: %w", name, v, ErrInvalidConfig)
	}
	return nil
}

func checkDuration(name string, d time.Duration) error {
	if d < 0 || d > maxDuration {
		return fmt.Errorf("%s must be between 0 and %v, got %v: %w", name, maxDuration, d, ErrInvalidConfig)
	}
	return nil
}

func toMs(d time.Duration) uint32 {
	if d < 0 {
		return 0
	}
	return uint32(d.Milliseconds())
}
