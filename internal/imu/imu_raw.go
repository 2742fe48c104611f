// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

// IMURaw represents a single raw accel+gyro+temperature sample in sensor counts.
type IMURaw struct {
	Source string `json:"source"` // device name, e.g. "mpu6050", "serial", "mock"

	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`

	Temp int16 `json:"temp"` // die temperature word
}

// IMURawSource is anything that can be polled for the next raw sample.
// Implementations may block until the sample is available.
type IMURawSource interface {
	ReadRaw() (IMURaw, error)
}
