// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

// cooldown gates an edge-triggered detector: at most one positive report per
// window. Before the first report the gate is open.
type cooldown struct {
	triggered   bool
	lastTrigger uint32
}

func (c *cooldown) open(now, windowMs uint32) bool {
	return !c.triggered || elapsedMs(now, c.lastTrigger) > windowMs
}

func (c *cooldown) fire(now uint32) {
	c.triggered = true
	c.lastTrigger = now
}

// sustained is the Idle/Active level detector used by freefall and spin. The
// first qualifying observation only starts the timer; later ones report true
// once strictly more than the duration has passed. Any non-qualifying
// observation resets to idle.
type sustained struct {
	active bool
	start  uint32
}

func (s *sustained) observe(condition bool, now, durationMs uint32) bool {
	if !condition {
		s.active = false
		s.start = 0
		return false
	}
	if !s.active {
		s.active = true
		s.start = now
		return false
	}
	return elapsedMs(now, s.start) > durationMs
}

// shakeDetector fires when the acceleration magnitude exceeds the threshold.
type shakeDetector struct {
	gate cooldown
}

func (d *shakeDetector) evaluate(s Sample, now uint32, thresholdG float64, cooldownMs uint32) bool {
	if s.AccelMagnitude() > thresholdG && d.gate.open(now, cooldownMs) {
		d.gate.fire(now)
		return true
	}
	return false
}

// freefallDetector reports while the acceleration magnitude stays below the
// threshold for longer than the duration.
type freefallDetector struct {
	state sustained
}

func (d *freefallDetector) evaluate(s Sample, now uint32, thresholdG float64, durationMs uint32) bool {
	return d.state.observe(s.AccelMagnitude() < thresholdG, now, durationMs)
}

// spinDetector reports while the angular-rate magnitude stays above the
// threshold for longer than the duration.
type spinDetector struct {
	state sustained
}

func (d *spinDetector) evaluate(s Sample, now uint32, thresholdDPS float64, durationMs uint32) bool {
	return d.state.observe(s.GyroMagnitude() > thresholdDPS, now, durationMs)
}

// jerkDetector fires on a step in acceleration magnitude between two
// consecutive evaluations. The baseline moves on every evaluation, fired or
// not.
type jerkDetector struct {
	gate         cooldown
	previousMagG float64
}

func (d *jerkDetector) prime(s Sample) {
	d.previousMagG = s.AccelMagnitude()
}

func (d *jerkDetector) evaluate(s Sample, now uint32, thresholdG float64, cooldownMs uint32) bool {
	mag := s.AccelMagnitude()
	delta := mag - d.previousMagG
	if delta < 0 {
		delta = -delta
	}
	d.previousMagG = mag

	if delta > thresholdG && d.gate.open(now, cooldownMs) {
		d.gate.fire(now)
		return true
	}
	return false
}
