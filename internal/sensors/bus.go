// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/mmr"
	"periph.io/x/host/v3"
)

// RegisterBus is byte-addressed register access to one device.
type RegisterBus interface {
	ReadRegister(reg uint8) (uint8, error)
	// ReadAxisWord reads the big-endian signed word stored at reg (high byte)
	// and reg+1 (low byte).
	ReadAxisWord(reg uint8) (int16, error)
	WriteRegister(reg uint8, value uint8) error
}

// I2CBus is a RegisterBus on a periph I2C bus.
type I2CBus struct {
	name string
	bus  i2c.BusCloser
	dev  mmr.Dev8
}

// OpenI2C initializes the periph host and opens busName ("" selects the
// first bus) to talk to the device at addr.
func OpenI2C(busName string, addr uint16) (*I2CBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("i2c: periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("i2c: open bus %q: %w", busName, err)
	}

	return &I2CBus{
		name: fmt.Sprintf("%s@0x%02X", bus, addr),
		bus:  bus,
		dev: mmr.Dev8{
			Conn:  &i2c.Dev{Bus: bus, Addr: addr},
			Order: binary.BigEndian,
		},
	}, nil
}

func (b *I2CBus) ReadRegister(reg uint8) (uint8, error) {
	v, err := b.dev.ReadUint8(reg)
	if err != nil {
		return 0, fmt.Errorf("%s: read 0x%02X: %w", b.name, reg, err)
	}
	return v, nil
}

func (b *I2CBus) ReadAxisWord(reg uint8) (int16, error) {
	v, err := b.dev.ReadUint16(reg)
	if err != nil {
		return 0, fmt.Errorf("%s: read word 0x%02X: %w", b.name, reg, err)
	}
	return int16(v), nil
}

func (b *I2CBus) WriteRegister(reg uint8, value uint8) error {
	if err := b.dev.WriteUint8(reg, value); err != nil {
		return fmt.Errorf("%s: write 0x%02X=0x%02X: %w", b.name, reg, value, err)
	}
	return nil
}

func (b *I2CBus) String() string {
	return b.name
}

// Close releases the underlying bus.
func (b *I2CBus) Close() error {
	return b.bus.Close()
}
