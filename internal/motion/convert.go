// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Sensitivity per full-scale-range selector (0..3).
// Accel: ±2g, ±4g, ±8g, ±16g. Gyro: ±250, ±500, ±1000, ±2000 °/s.
var (
	accelLSBPerG  = [4]float64{16384, 8192, 4096, 2048}
	gyroLSBPerDPS = [4]float64{131, 65.5, 32.8, 16.4}
	accelRangeG   = [4]int{2, 4, 8, 16}
	gyroRangeDPS  = [4]int{250, 500, 1000, 2000}
)

// Converter scales raw sensor counts into engineering units.
type Converter struct {
	accelRange byte
	gyroRange  byte
}

// NewConverter returns a converter for the given FSR selectors, which must
// match what was written to the sensor's ACCEL_CONFIG/GYRO_CONFIG.
func NewConverter(accelRange, gyroRange byte) (Converter, error) {
	if int(accelRange) >= len(accelLSBPerG) {
		return Converter{}, fmt.Errorf("accel range selector must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d: %w", accelRange, ErrInvalidConfig)
	}
	if int(gyroRange) >= len(gyroLSBPerDPS) {
		return Converter{}, fmt.Errorf("gyro range selector must be 0-3 (0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s), got %d: %w", gyroRange, ErrInvalidConfig)
	}
	return Converter{accelRange: accelRange, gyroRange: gyroRange}, nil
}

// DefaultConverter is ±2g / ±250°/s, the power-on ranges.
func DefaultConverter() Converter {
	return Converter{}
}

// Accel converts a raw accelerometer word to g.
func (c Converter) Accel(raw int16) float64 {
	return float64(raw) / accelLSBPerG[c.accelRange]
}

// Gyro converts a raw gyroscope word to deg/s.
func (c Converter) Gyro(raw int16) float64 {
	return float64(raw) / gyroLSBPerDPS[c.gyroRange]
}

// Celsius converts the raw die temperature word: raw/340 + 36.53.
func (c Converter) Celsius(raw int16) float64 {
	return float64(raw)/340.0 + 36.53
}

// Temperature is Celsius as a physic.Temperature.
func (c Converter) Temperature(raw int16) physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(c.Celsius(raw)*float64(physic.Kelvin))
}

// LSBPerG is the accelerometer sensitivity in counts per g.
func (c Converter) LSBPerG() float64 {
	return accelLSBPerG[c.accelRange]
}

// LSBPerDPS is the gyroscope sensitivity in counts per deg/s.
func (c Converter) LSBPerDPS() float64 {
	return gyroLSBPerDPS[c.gyroRange]
}

// AccelRangeG is the configured accelerometer span, e.g. 2 for ±2g.
func (c Converter) AccelRangeG() int {
	return accelRangeG[c.accelRange]
}

// GyroRangeDPS is the configured gyroscope span, e.g. 250 for ±250°/s.
func (c Converter) GyroRangeDPS() int {
	return gyroRangeDPS[c.gyroRange]
}

// String describes the ranges for logs.
func (c Converter) String() string {
	return fmt.Sprintf("±%dg / ±%d°/s", c.AccelRangeG(), c.GyroRangeDPS())
}
