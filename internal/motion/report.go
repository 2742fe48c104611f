// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

// Report is one pass of every detector over the latest sample.
type Report struct {
	Sample Sample `json:"sample"`

	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`

	AccelMagnitude float64 `json:"accel_magnitude"`
	GyroMagnitude  float64 `json:"gyro_magnitude"`

	Axis Axis `json:"axis"`

	Shake    bool `json:"shake"`
	Freefall bool `json:"freefall"`
	Tilted   bool `json:"tilted"`
	Spinning bool `json:"spinning"`
	Jerk     bool `json:"jerk"`
}

// Evaluate runs every detector once, with the stored config, over the
// current sample. Stateful detectors advance exactly as if each query had
// been called individually.
func (c *Classifier) Evaluate() (Report, error) {
	if !c.hasSample {
		return Report{}, ErrNoSample
	}

	pose := c.sample.Pose()
	return Report{
		Sample:         c.sample,
		Roll:           pose.Roll,
		Pitch:          pose.Pitch,
		AccelMagnitude: c.sample.AccelMagnitude(),
		GyroMagnitude:  c.sample.GyroMagnitude(),
		Axis:           c.DominantAxis(),
		Shake:          c.DetectShake(),
		Freefall:       c.IsFreefalling(),
		Tilted:         c.IsTilted(),
		Spinning:       c.IsSpinning(),
		Jerk:           c.IsJerk(),
	}, nil
}

// Active reports whether any detector fired.
func (r Report) Active() bool {
	return r.Shake || r.Freefall || r.Tilted || r.Spinning || r.Jerk
}
