// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
)

// Pose is the accelerometer-only attitude estimate, in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Any unit works since only the ratios matter. There is no filtering, so
// accelerometer noise and linear acceleration show up in the angles.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)                 (-180, 180]
//	pitch = atan2(-ax, sqrt(ay² + az²))   [-90, 90]
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}

// ExceedsTilt reports whether either angle, taken independently, is beyond
// thresholdDeg in absolute value.
func (p Pose) ExceedsTilt(thresholdDeg float64) bool {
	return math.Abs(p.Roll) > thresholdDeg || math.Abs(p.Pitch) > thresholdDeg
}
