// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/motion_events/internal/imu"
	"github.com/relabs-tech/motion_events/internal/motion"
)

// MockCycle is the length of the scripted motion loop.
const MockCycle = 12 * time.Second

// mockTempRaw is 25 °C in sensor counts.
const mockTempRaw = -3920

// MockSource generates a repeating script of synthetic motion: a slow
// rocking tilt, a shake, a spin about Z, a short drop and an impact.
type MockSource struct {
	start time.Time
	conv  motion.Converter
}

// NewMockSource creates a mock source scaled for conv's ranges.
func NewMockSource(conv motion.Converter) *MockSource {
	return &MockSource{start: time.Now(), conv: conv}
}

func (m *MockSource) ReadRaw() (imu.IMURaw, error) {
	return m.At(time.Since(m.start)), nil
}

// At returns the sample the script produces at elapsed.
func (m *MockSource) At(elapsed time.Duration) imu.IMURaw {
	t := (elapsed % MockCycle).Seconds()

	var ax, ay, az, gx, gy, gz float64
	switch {
	case t < 5:
		roll := 30 * math.Sin(2*math.Pi*t/5)
		pitch := 10 * math.Sin(2*math.Pi*t/2.5)
		ax, ay, az = gravity(roll, pitch)
		gx = 30 * 2 * math.Pi / 5 * math.Cos(2*math.Pi*t/5)
		gy = 10 * 2 * math.Pi / 2.5 * math.Cos(2*math.Pi*t/2.5)
	case t < 6:
		ax = 1.6 * math.Sin(2*math.Pi*8*t)
		az = 1
	case t < 8.5:
		az = 1
		gz = 180
	case t < 8.9:
		ax, ay, az = 0.02, -0.01, 0.03
	case t < 9.1:
		az = 1.8
	default:
		az = 1
		gz = 2 * math.Sin(2*math.Pi*t)
	}

	return imu.IMURaw{
		Source: "mock",
		Ax:     toCounts(ax, m.conv.LSBPerG()),
		Ay:     toCounts(ay, m.conv.LSBPerG()),
		Az:     toCounts(az, m.conv.LSBPerG()),
		Gx:     toCounts(gx, m.conv.LSBPerDPS()),
		Gy:     toCounts(gy, m.conv.LSBPerDPS()),
		Gz:     toCounts(gz, m.conv.LSBPerDPS()),
		Temp:   mockTempRaw,
	}
}

// gravity returns the 1 g vector seen by a sensor at roll/pitch degrees.
func gravity(rollDeg, pitchDeg float64) (x, y, z float64) {
	r := rollDeg * math.Pi / 180
	p := pitchDeg * math.Pi / 180
	return -math.Sin(p), math.Sin(r) * math.Cos(p), math.Cos(r) * math.Cos(p)
}

// toCounts scales v to sensor counts, saturating like the ADC does.
func toCounts(v, lsb float64) int16 {
	c := math.Round(v * lsb)
	switch {
	case c > math.MaxInt16:
		return math.MaxInt16
	case c < math.MinInt16:
		return math.MinInt16
	}
	return int16(c)
}
