// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"math"

	"github.com/relabs-tech/motion_events/internal/imu"
	"github.com/relabs-tech/motion_events/internal/orientation"
)

// Sample is one synchronized reading in engineering units.
type Sample struct {
	AccelX float64 `json:"accel_x"` // g
	AccelY float64 `json:"accel_y"`
	AccelZ float64 `json:"accel_z"`

	GyroX float64 `json:"gyro_x"` // deg/s
	GyroY float64 `json:"gyro_y"`
	GyroZ float64 `json:"gyro_z"`

	Temperature float64 `json:"temp_c"` // °C

	Timestamp uint32 `json:"timestamp_ms"` // classifier clock
}

// SampleFromRaw converts raw counts with conv and stamps the result.
func SampleFromRaw(raw imu.IMURaw, conv Converter, ts uint32) Sample {
	return Sample{
		AccelX:      conv.Accel(raw.Ax),
		AccelY:      conv.Accel(raw.Ay),
		AccelZ:      conv.Accel(raw.Az),
		GyroX:       conv.Gyro(raw.Gx),
		GyroY:       conv.Gyro(raw.Gy),
		GyroZ:       conv.Gyro(raw.Gz),
		Temperature: conv.Celsius(raw.Temp),
		Timestamp:   ts,
	}
}

// AccelMagnitude is the Euclidean norm of the acceleration vector, in g.
func (s Sample) AccelMagnitude() float64 {
	return math.Sqrt(s.AccelX*s.AccelX + s.AccelY*s.AccelY + s.AccelZ*s.AccelZ)
}

// GyroMagnitude is the Euclidean norm of the angular-rate vector, in deg/s.
func (s Sample) GyroMagnitude() float64 {
	return math.Sqrt(s.GyroX*s.GyroX + s.GyroY*s.GyroY + s.GyroZ*s.GyroZ)
}

// Pose derives roll/pitch from the acceleration vector.
func (s Sample) Pose() orientation.Pose {
	return orientation.ComputePoseFromAccel(s.AccelX, s.AccelY, s.AccelZ)
}

// Axis labels the axis gravity is aligned with.
type Axis byte

const (
	AxisNone Axis = 'N'
	AxisX    Axis = 'X'
	AxisY    Axis = 'Y'
	AxisZ    Axis = 'Z'
)

func (a Axis) String() string {
	return string(rune(a))
}

// MarshalText encodes the label as a one-letter string.
func (a Axis) MarshalText() ([]byte, error) {
	return []byte{byte(a)}, nil
}

// UnmarshalText accepts X, Y, Z or N.
func (a *Axis) UnmarshalText(b []byte) error {
	if len(b) == 1 {
		switch Axis(b[0]) {
		case AxisX, AxisY, AxisZ, AxisNone:
			*a = Axis(b[0])
			return nil
		}
	}
	*a = AxisNone
	return nil
}

// dominantAxisTolerance is the band, in g, around 1g for the loaded axis and
// above 0g for the other two.
const dominantAxisTolerance = 0.2

// DominantAxis reports the single axis carrying ~1g while the other two are
// near zero. X is checked first, then Y, then Z.
func DominantAxis(s Sample) Axis {
	x := math.Abs(s.AccelX)
	y := math.Abs(s.AccelY)
	z := math.Abs(s.AccelZ)

	switch {
	case loaded(x) && idle(y) && idle(z):
		return AxisX
	case loaded(y) && idle(x) && idle(z):
		return AxisY
	case loaded(z) && idle(x) && idle(y):
		return AxisZ
	}
	return AxisNone
}

func loaded(v float64) bool {
	return v > 1.0-dominantAxisTolerance && v < 1.0+dominantAxisTolerance
}

func idle(v float64) bool {
	return v < dominantAxisTolerance
}
