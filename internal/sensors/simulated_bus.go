// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"sync"

	"github.com/relabs-tech/motion_events/internal/imu"
)

// RegisterWrite records one write seen by a SimulatedBus.
type RegisterWrite struct {
	Reg   uint8
	Value uint8
}

// SimulatedBus is an in-memory 256-byte register file. It stands in for the
// hardware in tests and in the register debug tool when no bus is present.
type SimulatedBus struct {
	mu     sync.RWMutex
	regs   [256]uint8
	writes []RegisterWrite

	// ReadErr and WriteErr, when set, fail every access.
	ReadErr  error
	WriteErr error
}

// NewSimulatedBus returns a bus whose WHO_AM_I and PWR_MGMT_1 hold the power
// on values for layout.
func NewSimulatedBus(layout RegisterMap) *SimulatedBus {
	b := &SimulatedBus{}
	b.regs[layout.WhoAmI] = layout.ExpectedID
	b.regs[layout.PwrMgmt1] = 0x40
	return b
}

func (b *SimulatedBus) ReadRegister(reg uint8) (uint8, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.ReadErr != nil {
		return 0, b.ReadErr
	}
	return b.regs[reg], nil
}

func (b *SimulatedBus) ReadAxisWord(reg uint8) (int16, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.ReadErr != nil {
		return 0, b.ReadErr
	}
	return int16(uint16(b.regs[reg])<<8 | uint16(b.regs[reg+1])), nil
}

func (b *SimulatedBus) WriteRegister(reg uint8, value uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.WriteErr != nil {
		return b.WriteErr
	}
	b.regs[reg] = value
	b.writes = append(b.writes, RegisterWrite{Reg: reg, Value: value})
	return nil
}

// Writes returns every successful write in order.
func (b *SimulatedBus) Writes() []RegisterWrite {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]RegisterWrite(nil), b.writes...)
}

// Poke sets a register without recording a write.
func (b *SimulatedBus) Poke(reg, value uint8) {
	b.mu.Lock()
	b.regs[reg] = value
	b.mu.Unlock()
}

func (b *SimulatedBus) pokeWord(reg uint8, v int16) {
	b.regs[reg] = uint8(uint16(v) >> 8)
	b.regs[reg+1] = uint8(v)
}

// LoadSample stores raw into the output registers of layout, as the device
// would after a conversion.
func (b *SimulatedBus) LoadSample(layout RegisterMap, raw imu.IMURaw) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pokeWord(layout.AccelXOutH, raw.Ax)
	b.pokeWord(layout.AccelXOutH+2, raw.Ay)
	b.pokeWord(layout.AccelXOutH+4, raw.Az)
	b.pokeWord(layout.TempOutH, raw.Temp)
	b.pokeWord(layout.GyroXOutH, raw.Gx)
	b.pokeWord(layout.GyroXOutH+2, raw.Gy)
	b.pokeWord(layout.GyroXOutH+4, raw.Gz)
}
