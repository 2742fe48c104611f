// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/motion_events/internal/imu"
)

// ErrUnexpectedDevice is returned by Init when WHO_AM_I does not match the
// register map.
var ErrUnexpectedDevice = errors.New("unexpected device identity")

// MPU6050Opts configures the sensor during Init.
type MPU6050Opts struct {
	AccelRange    byte // 0..3 -> ±2/4/8/16 g
	GyroRange     byte // 0..3 -> ±250/500/1000/2000 deg/s
	SampleRateDiv byte
	DLPFConfig    byte // 0..6
	WakeDelay     time.Duration
}

// DefaultMPU6050Opts wakes the sensor at its most sensitive ranges with a
// 125 Hz output rate behind a 44 Hz low pass filter.
var DefaultMPU6050Opts = MPU6050Opts{
	AccelRange:    0,
	GyroRange:     0,
	SampleRateDiv: 7,
	DLPFConfig:    3,
	WakeDelay:     100 * time.Millisecond,
}

// MPU6050 drives an InvenSense 6-axis IMU over a RegisterBus.
type MPU6050 struct {
	name string
	bus  RegisterBus
	regs RegisterMap
	opts MPU6050Opts
}

// NewMPU6050 validates opts and returns an uninitialized driver.
func NewMPU6050(name string, bus RegisterBus, regs RegisterMap, opts MPU6050Opts) (*MPU6050, error) {
	if opts.AccelRange > 3 {
		return nil, fmt.Errorf("%s IMU: accel range %d out of range 0-3", name, opts.AccelRange)
	}
	if opts.GyroRange > 3 {
		return nil, fmt.Errorf("%s IMU: gyro range %d out of range 0-3", name, opts.GyroRange)
	}
	if opts.DLPFConfig > 6 {
		return nil, fmt.Errorf("%s IMU: DLPF config %d out of range 0-6", name, opts.DLPFConfig)
	}
	return &MPU6050{name: name, bus: bus, regs: regs, opts: opts}, nil
}

// Init checks the device identity, wakes it and applies the ranges, filter
// and sample rate. A wrong identity stops before any write.
func (d *MPU6050) Init() error {
	id, err := d.bus.ReadRegister(d.regs.WhoAmI)
	if err != nil {
		return fmt.Errorf("%s IMU: read WHO_AM_I: %w", d.name, err)
	}
	if id != d.regs.ExpectedID {
		return fmt.Errorf("%s IMU: WHO_AM_I = 0x%02X, want 0x%02X: %w", d.name, id, d.regs.ExpectedID, ErrUnexpectedDevice)
	}
	log.Printf("%s IMU: %s detected (WHO_AM_I = 0x%02X)", d.name, d.regs.Device, id)

	if err := d.bus.WriteRegister(d.regs.PwrMgmt1, 0x00); err != nil {
		return fmt.Errorf("%s IMU: wake: %w", d.name, err)
	}
	time.Sleep(d.opts.WakeDelay)

	steps := []struct {
		what  string
		reg   uint8
		value uint8
	}{
		{"accel range", d.regs.AccelConfig, d.opts.AccelRange << 3},
		{"gyro range", d.regs.GyroConfig, d.opts.GyroRange << 3},
		{"sample rate divider", d.regs.SmplrtDiv, d.opts.SampleRateDiv},
		{"DLPF config", d.regs.Config, d.opts.DLPFConfig},
	}
	for _, step := range steps {
		if err := d.bus.WriteRegister(step.reg, step.value); err != nil {
			return fmt.Errorf("%s IMU: set %s: %w", d.name, step.what, err)
		}
	}

	log.Printf("%s IMU: accelerometer range set to %d (±%dg)", d.name, d.opts.AccelRange, []int{2, 4, 8, 16}[d.opts.AccelRange])
	log.Printf("%s IMU: gyroscope range set to %d (±%d°/s)", d.name, d.opts.GyroRange, []int{250, 500, 1000, 2000}[d.opts.GyroRange])
	log.Printf("%s IMU: output rate %d Hz (DLPF %d, divider %d)", d.name, d.OutputRateHz(), d.opts.DLPFConfig, d.opts.SampleRateDiv)
	return nil
}

// OutputRateHz is the sample rate implied by the divider: the gyro runs at
// 1 kHz with the low pass filter on.
func (d *MPU6050) OutputRateHz() int {
	return 1000 / (1 + int(d.opts.SampleRateDiv))
}

// ReadRaw reads the seven output words: accel X/Y/Z, temperature and gyro
// X/Y/Z.
func (d *MPU6050) ReadRaw() (imu.IMURaw, error) {
	raw := imu.IMURaw{Source: d.name}
	words := []struct {
		what string
		reg  uint8
		dst  *int16
	}{
		{"accel X", d.regs.AccelXOutH, &raw.Ax},
		{"accel Y", d.regs.AccelXOutH + 2, &raw.Ay},
		{"accel Z", d.regs.AccelXOutH + 4, &raw.Az},
		{"temperature", d.regs.TempOutH, &raw.Temp},
		{"gyro X", d.regs.GyroXOutH, &raw.Gx},
		{"gyro Y", d.regs.GyroXOutH + 2, &raw.Gy},
		{"gyro Z", d.regs.GyroXOutH + 4, &raw.Gz},
	}
	for _, w := range words {
		v, err := d.bus.ReadAxisWord(w.reg)
		if err != nil {
			return imu.IMURaw{}, fmt.Errorf("%s IMU %s: %w", d.name, w.what, err)
		}
		*w.dst = v
	}
	return raw, nil
}

// Bus exposes the register bus for the debug tool.
func (d *MPU6050) Bus() RegisterBus {
	return d.bus
}

// Registers returns the layout the driver was built with.
func (d *MPU6050) Registers() RegisterMap {
	return d.regs
}

func (d *MPU6050) Name() string { return d.name }
