// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package motion classifies motion gestures (shake, freefall, tilt, spin,
// jerk) from a polled 6-axis IMU stream.
//
// A Classifier is not safe for concurrent use: one goroutine calls Update
// and then whichever detectors it needs, once per loop iteration.
package motion

import (
	"fmt"
	"time"

	"github.com/relabs-tech/motion_events/internal/imu"
)

// Classifier holds the latest Sample and the per-detector state.
type Classifier struct {
	src   imu.IMURawSource
	conv  Converter
	clock Clock
	cfg   Config

	sample    Sample
	hasSample bool

	shake    shakeDetector
	freefall freefallDetector
	spin     spinDetector
	jerk     jerkDetector
}

// Option customizes a Classifier at construction.
type Option func(*Classifier) error

// WithClock injects the time source; tests use a ManualClock.
func WithClock(clock Clock) Option {
	return func(c *Classifier) error {
		c.clock = clock
		return nil
	}
}

// WithConverter sets the raw-to-unit scaling, which must match the sensor's
// configured full-scale ranges.
func WithConverter(conv Converter) Option {
	return func(c *Classifier) error {
		c.conv = conv
		return nil
	}
}

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(c *Classifier) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.cfg = cfg
		return nil
	}
}

// New creates a classifier polling src.
func New(src imu.IMURawSource, opts ...Option) (*Classifier, error) {
	c := &Classifier{
		src:   src,
		conv:  DefaultConverter(),
		clock: NewSystemClock(),
		cfg:   DefaultConfig(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Begin performs the first Update and uses it as the jerk baseline, so the
// first IsJerk call measures against a real reading instead of zero.
func (c *Classifier) Begin() error {
	if err := c.Update(); err != nil {
		return err
	}
	c.jerk.prime(c.sample)
	return nil
}

// Update reads one raw sample from the source and converts it. On error the
// previous sample is kept.
func (c *Classifier) Update() error {
	raw, err := c.src.ReadRaw()
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	c.sample = SampleFromRaw(raw, c.conv, c.clock.Millis())
	c.hasSample = true
	return nil
}

// --- Raw converted values ---

func (c *Classifier) Sample() Sample { return c.sample }
func (c *Classifier) HasSample() bool { return c.hasSample }
func (c *Classifier) AccelX() float64 { return c.sample.AccelX }
func (c *Classifier) AccelY() float64 { return c.sample.AccelY }
func (c *Classifier) AccelZ() float64 { return c.sample.AccelZ }
func (c *Classifier) GyroX() float64 { return c.sample.GyroX }
func (c *Classifier) GyroY() float64 { return c.sample.GyroY }
func (c *Classifier) GyroZ() float64 { return c.sample.GyroZ }
func (c *Classifier) Temperature() float64 { return c.sample.Temperature }
func (c *Classifier) Converter() Converter { return c.conv }

// Roll is rotation about the X axis in degrees, from acceleration only.
func (c *Classifier) Roll() float64 {
	return c.sample.Pose().Roll
}

// Pitch is rotation about the Y axis in degrees, from acceleration only.
func (c *Classifier) Pitch() float64 {
	return c.sample.Pose().Pitch
}

// --- Detectors ---

// DetectShake reports a sudden high-magnitude acceleration, at most once per
// shake cooldown.
func (c *Classifier) DetectShake() bool {
	return c.shake.evaluate(c.sample, c.clock.Millis(), c.cfg.ShakeThresholdG, toMs(c.cfg.ShakeCooldown))
}

// DominantAxis reports which axis gravity is cleanly aligned with, or
// AxisNone during freefall, violent motion or an oblique pose.
func (c *Classifier) DominantAxis() Axis {
	return DominantAxis(c.sample)
}

// IsFreefalling is a level signal: true on every call once the acceleration
// magnitude has stayed under the freefall threshold for longer than the
// freefall duration.
func (c *Classifier) IsFreefalling() bool {
	return c.freefall.evaluate(c.sample, c.clock.Millis(), c.cfg.FreefallThresholdG, toMs(c.cfg.FreefallDuration))
}

// IsTilted compares roll and pitch, independently, against the stored tilt
// threshold.
func (c *Classifier) IsTilted() bool {
	return c.IsTiltedBeyond(c.cfg.TiltThresholdDeg)
}

// IsTiltedBeyond compares roll and pitch against thresholdDeg.
func (c *Classifier) IsTiltedBeyond(thresholdDeg float64) bool {
	return c.sample.Pose().ExceedsTilt(thresholdDeg)
}

// IsSpinning is a level signal over the angular-rate magnitude using the
// stored spin threshold and duration.
func (c *Classifier) IsSpinning() bool {
	return c.IsSpinningWith(c.cfg.SpinThresholdDPS, c.cfg.SpinDuration)
}

// IsSpinningWith evaluates the spin detector with per-call parameters. They
// apply to this call only; the stored config is untouched. The sustained
// timer is shared with IsSpinning.
func (c *Classifier) IsSpinningWith(thresholdDPS float64, duration time.Duration) bool {
	return c.spin.evaluate(c.sample, c.clock.Millis(), thresholdDPS, toMs(duration))
}

// IsJerk reports a step change in acceleration magnitude since the previous
// IsJerk call, at most once per jerk cooldown.
func (c *Classifier) IsJerk() bool {
	return c.IsJerkWith(c.cfg.JerkThresholdG, c.cfg.JerkDuration)
}

// IsJerkWith evaluates the jerk detector with a per-call delta threshold.
// duration is accepted for symmetry with the setter and ignored.
func (c *Classifier) IsJerkWith(deltaThresholdG float64, duration time.Duration) bool {
	_ = duration
	return c.jerk.evaluate(c.sample, c.clock.Millis(), deltaThresholdG, toMs(c.cfg.JerkCooldown))
}

// --- Configuration ---

// Config returns a copy of the current thresholds.
func (c *Classifier) Config() Config {
	return c.cfg
}

// SetShakeThreshold sets the magnitude, in g, a shake must exceed.
func (c *Classifier) SetShakeThreshold(thresholdG float64) error {
	return c.apply(func(cfg *Config) { cfg.ShakeThresholdG = thresholdG })
}

// SetShakeCooldown sets the minimum time between two shake reports.
func (c *Classifier) SetShakeCooldown(d time.Duration) error {
	return c.apply(func(cfg *Config) { cfg.ShakeCooldown = d })
}

// SetFreefallThreshold sets the magnitude, in g, below which the device is
// considered falling, and how long that must last.
func (c *Classifier) SetFreefallThreshold(accelThresholdG float64, d time.Duration) error {
	return c.apply(func(cfg *Config) {
		cfg.FreefallThresholdG = accelThresholdG
		cfg.FreefallDuration = d
	})
}

// SetTiltThreshold sets the angle used by IsTilted.
func (c *Classifier) SetTiltThreshold(thresholdDeg float64) error {
	return c.apply(func(cfg *Config) { cfg.TiltThresholdDeg = thresholdDeg })
}

// SetSpinningThreshold sets the angular rate, in deg/s, and how long it must
// be exceeded.
func (c *Classifier) SetSpinningThreshold(gyroThresholdDPS float64, d time.Duration) error {
	return c.apply(func(cfg *Config) {
		cfg.SpinThresholdDPS = gyroThresholdDPS
		cfg.SpinDuration = d
	})
}

// SetJerkThreshold sets the magnitude step, in g, that counts as a jerk. d is
// validated and stored (see Config.JerkDuration) but does not affect
// detection.
func (c *Classifier) SetJerkThreshold(accelDeltaThresholdG float64, d time.Duration) error {
	return c.apply(func(cfg *Config) {
		cfg.JerkThresholdG = accelDeltaThresholdG
		cfg.JerkDuration = d
	})
}

// SetJerkCooldown sets the minimum time between two jerk reports.
func (c *Classifier) SetJerkCooldown(d time.Duration) error {
	return c.apply(func(cfg *Config) { cfg.JerkCooldown = d })
}

func (c *Classifier) apply(change func(*Config)) error {
	next := c.cfg
	change(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	c.cfg = next
	return nil
}
