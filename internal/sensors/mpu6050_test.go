// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors_test

import (
	"errors"
	"testing"

	"github.com/relabs-tech/motion_events/internal/imu"
	"github.com/relabs-tech/motion_events/internal/sensors"
	"github.com/stretchr/testify/require"
)

func newDriver(t *testing.T, bus sensors.RegisterBus, opts sensors.MPU6050Opts) *sensors.MPU6050 {
	t.Helper()
	opts.WakeDelay = 0
	drv, err := sensors.NewMPU6050("test", bus, sensors.MPU6050Registers(), opts)
	require.NoError(t, err)
	return drv
}

func TestMPU6050InitSequence(t *testing.T) {
	bus := sensors.NewSimulatedBus(sensors.MPU6050Registers())
	drv := newDriver(t, bus, sensors.MPU6050Opts{AccelRange: 1, GyroRange: 3, SampleRateDiv: 9, DLPFConfig: 2})

	require.NoError(t, drv.Init())
	require.Equal(t, []sensors.RegisterWrite{
		{Reg: 0x6B, Value: 0x00},
		{Reg: 0x1C, Value: 0x08},
		{Reg: 0x1B, Value: 0x18},
		{Reg: 0x19, Value: 9},
		{Reg: 0x1A, Value: 2},
	}, bus.Writes())
	require.Equal(t, 100, drv.OutputRateHz())
}

func TestMPU6050RejectsUnexpectedDevice(t *testing.T) {
	bus := sensors.NewSimulatedBus(sensors.MPU6050Registers())
	bus.Poke(0x75, 0x71)
	drv := newDriver(t, bus, sensors.DefaultMPU6050Opts)

	err := drv.Init()
	require.ErrorIs(t, err, sensors.ErrUnexpectedDevice)
	require.Contains(t, err.Error(), "0x71")
	require.Empty(t, bus.Writes())
}

func TestMPU6500Identity(t *testing.T) {
	regs := sensors.MPU6500Registers()
	bus := sensors.NewSimulatedBus(regs)
	drv, err := sensors.NewMPU6050("test", bus, regs, sensors.MPU6050Opts{})
	require.NoError(t, err)
	require.NoError(t, drv.Init())

	_, err = sensors.RegistersFor("bmp280")
	require.Error(t, err)
}

func TestMPU6050RejectsOptions(t *testing.T) {
	bus := sensors.NewSimulatedBus(sensors.MPU6050Registers())
	for _, opts := range []sensors.MPU6050Opts{
		{AccelRange: 4},
		{GyroRange: 4},
		{DLPFConfig: 7},
	} {
		_, err := sensors.NewMPU6050("test", bus, sensors.MPU6050Registers(), opts)
		require.Error(t, err, "%+v", opts)
	}
}

func TestMPU6050ReadRaw(t *testing.T) {
	regs := sensors.MPU6050Registers()
	bus := sensors.NewSimulatedBus(regs)
	want := imu.IMURaw{Source: "test", Ax: -1, Ay: 300, Az: 16384, Temp: -3920, Gx: -32768, Gy: 131, Gz: 32767}
	bus.LoadSample(regs, want)

	drv := newDriver(t, bus, sensors.DefaultMPU6050Opts)
	got, err := drv.ReadRaw()
	require.NoError(t, err)
	require.Equal(t, want, got)

	// big-endian layout
	hi, err := bus.ReadRegister(regs.AccelXOutH + 4)
	require.NoError(t, err)
	lo, err := bus.ReadRegister(regs.AccelXOutH + 5)
	require.NoError(t, err)
	require.Equal(t, []uint8{0x40, 0x00}, []uint8{hi, lo})
}

func TestMPU6050BusErrors(t *testing.T) {
	boom := errors.New("nack")
	bus := sensors.NewSimulatedBus(sensors.MPU6050Registers())
	drv := newDriver(t, bus, sensors.DefaultMPU6050Opts)

	bus.ReadErr = boom
	_, err := drv.ReadRaw()
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "accel X")

	err = drv.Init()
	require.ErrorIs(t, err, boom)

	bus.ReadErr = nil
	bus.WriteErr = boom
	err = drv.Init()
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "wake")
}

func TestRegisterInfo(t *testing.T) {
	table := sensors.RegisterInfoFor(sensors.MPU6500Registers())

	who, ok := sensors.LookupRegister(table, 0x75)
	require.True(t, ok)
	require.Equal(t, "WHO_AM_I", who.Name)
	require.Equal(t, uint8(0x70), who.Reset)
	require.False(t, who.Writable())

	accel, ok := sensors.LookupRegister(table, 0x1C)
	require.True(t, ok)
	require.True(t, accel.Writable())

	_, ok = sensors.LookupRegister(table, 0x00)
	require.False(t, ok)
}
