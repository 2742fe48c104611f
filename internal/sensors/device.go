// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"io"
	"log"

	"github.com/relabs-tech/motion_events/internal/config"
	"github.com/relabs-tech/motion_events/internal/imu"
	"github.com/relabs-tech/motion_events/internal/motion"
)

// Device is an opened sample source plus whatever it needs to be shut down.
type Device struct {
	Name string
	Kind string // config.SourceI2C, SourceSerial or SourceMock

	Source    imu.IMURawSource
	Converter motion.Converter

	// Driver and Bus are set when samples come from registers (i2c and
	// mock); the register debug tool uses them.
	Driver *MPU6050
	Bus    RegisterBus

	closers []io.Closer
}

// OpenDevice opens the source selected by cfg.IMUSource and initializes it.
func OpenDevice(cfg *config.Config) (*Device, error) {
	conv, err := motion.NewConverter(cfg.IMUAccelRange, cfg.IMUGyroRange)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: %w", cfg.IMUName, err)
	}
	regs, err := RegistersFor(cfg.IMUDevice)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: %w", cfg.IMUName, err)
	}
	regs.Address = cfg.IMUI2CAddr

	opts := MPU6050Opts{
		AccelRange:    cfg.IMUAccelRange,
		GyroRange:     cfg.IMUGyroRange,
		SampleRateDiv: cfg.IMUSampleRateDiv,
		DLPFConfig:    cfg.IMUDLPFConfig,
		WakeDelay:     cfg.WakeDelay(),
	}

	dev := &Device{Name: cfg.IMUName, Kind: cfg.IMUSource, Converter: conv}

	switch cfg.IMUSource {
	case config.SourceI2C:
		bus, err := OpenI2C(cfg.IMUI2CBus, regs.Address)
		if err != nil {
			return nil, fmt.Errorf("%s IMU: %w", cfg.IMUName, err)
		}
		dev.closers = append(dev.closers, bus)
		if err := dev.attachDriver(bus, regs, opts); err != nil {
			dev.Close()
			return nil, err
		}
		dev.Source = dev.Driver
		log.Printf("%s IMU: reading %s on I2C %s", dev.Name, regs.Device, bus)

	case config.SourceSerial:
		src, err := OpenSerialSource(cfg.IMUName, cfg.IMUSerialPort, cfg.IMUSerialBaud)
		if err != nil {
			return nil, err
		}
		dev.closers = append(dev.closers, src)
		dev.Source = src
		log.Printf("%s IMU: reading IMR sentences on %s at %d baud", dev.Name, cfg.IMUSerialPort, cfg.IMUSerialBaud)

	case config.SourceMock:
		bus := NewSimulatedBus(regs)
		opts.WakeDelay = 0
		if err := dev.attachDriver(bus, regs, opts); err != nil {
			return nil, err
		}
		dev.Source = &simulatedFeed{mock: NewMockSource(conv), bus: bus, regs: regs, driver: dev.Driver}
		log.Printf("%s IMU: using mock motion on a simulated %s", dev.Name, regs.Device)

	default:
		return nil, fmt.Errorf("%s IMU: unknown source %q", cfg.IMUName, cfg.IMUSource)
	}

	return dev, nil
}

func (d *Device) attachDriver(bus RegisterBus, regs RegisterMap, opts MPU6050Opts) error {
	drv, err := NewMPU6050(d.Name, bus, regs, opts)
	if err != nil {
		return err
	}
	if err := drv.Init(); err != nil {
		return err
	}
	d.Driver = drv
	d.Bus = bus
	return nil
}

// Close releases buses and ports in reverse order of opening.
func (d *Device) Close() error {
	var first error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	d.closers = nil
	return first
}

// simulatedFeed writes each mock sample into a simulated register file and
// reads it back through the driver.
type simulatedFeed struct {
	mock   *MockSource
	bus    *SimulatedBus
	regs   RegisterMap
	driver *MPU6050
}

func (f *simulatedFeed) ReadRaw() (imu.IMURaw, error) {
	raw, err := f.mock.ReadRaw()
	if err != nil {
		return imu.IMURaw{}, err
	}
	f.bus.LoadSample(f.regs, raw)
	return f.driver.ReadRaw()
}
