// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "fmt"

// RegisterMap describes where a 6-axis IMU keeps the registers the driver
// touches. Variants of the same family only differ in these numbers.
type RegisterMap struct {
	Device  string // "mpu6050", "mpu6500", ...
	Address uint16 // 7-bit I2C address

	WhoAmI     uint8
	ExpectedID uint8 // value WHO_AM_I must return

	PwrMgmt1    uint8
	SmplrtDiv   uint8
	Config      uint8
	GyroConfig  uint8
	AccelConfig uint8

	// Each block is three consecutive big-endian words (X, Y, Z).
	AccelXOutH uint8
	TempOutH   uint8
	GyroXOutH  uint8
}

// MPU6050Registers is the stock MPU-6050 layout at its default address
// (AD0 low).
func MPU6050Registers() RegisterMap {
	return RegisterMap{
		Device:      "mpu6050",
		Address:     0x68,
		WhoAmI:      0x75,
		ExpectedID:  0x68,
		PwrMgmt1:    0x6B,
		SmplrtDiv:   0x19,
		Config:      0x1A,
		GyroConfig:  0x1B,
		AccelConfig: 0x1C,
		AccelXOutH:  0x3B,
		TempOutH:    0x41,
		GyroXOutH:   0x43,
	}
}

// MPU6500Registers shares the MPU-6050 layout and only reports a different
// identity.
func MPU6500Registers() RegisterMap {
	regs := MPU6050Registers()
	regs.Device = "mpu6500"
	regs.ExpectedID = 0x70
	return regs
}

// RegistersFor returns the layout for a device name.
func RegistersFor(device string) (RegisterMap, error) {
	switch device {
	case "", "mpu6050":
		return MPU6050Registers(), nil
	case "mpu6500":
		return MPU6500Registers(), nil
	default:
		return RegisterMap{}, fmt.Errorf("unknown IMU device %q", device)
	}
}

// BitField documents one field inside a register.
type BitField struct {
	Bits        string `json:"bits"` // "7", "4:3"
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo is the metadata shown by the register debug tool.
type RegisterInfo struct {
	Addr        uint8      `json:"-"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "RW"
	Reset       uint8      `json:"-"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// Writable reports whether the register accepts writes.
func (r RegisterInfo) Writable() bool {
	return r.Access == "RW"
}

// dataRegister describes one byte of a read-only output word.
func dataRegister(addr uint8, name, desc string) RegisterInfo {
	return RegisterInfo{Addr: addr, Name: name, Description: desc, Access: "R"}
}

// RegisterInfoFor returns the metadata table for regs, with WHO_AM_I
// reporting the identity of that variant.
func RegisterInfoFor(regs RegisterMap) []RegisterInfo {
	table := []RegisterInfo{
		{Addr: regs.SmplrtDiv, Name: "SMPLRT_DIV", Description: "Sample rate divider", Access: "RW",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SMPLRT_DIV", Description: "Output rate = gyro rate / (1 + SMPLRT_DIV)", Values: "0-255"},
			}},
		{Addr: regs.Config, Name: "CONFIG", Description: "Frame sync and low pass filter", Access: "RW",
			BitFields: []BitField{
				{Bits: "5:3", Name: "EXT_SYNC_SET", Description: "FSYNC sampling", Values: "0=off"},
				{Bits: "2:0", Name: "DLPF_CFG", Description: "Low pass filter", Values: "0=260Hz, 1=184Hz, 2=94Hz, 3=44Hz, 4=21Hz, 5=10Hz, 6=5Hz"},
			}},
		{Addr: regs.GyroConfig, Name: "GYRO_CONFIG", Description: "Gyroscope full scale and self test", Access: "RW",
			BitFields: []BitField{
				{Bits: "7:5", Name: "XG_ST/YG_ST/ZG_ST", Description: "Gyro self test per axis", Values: "1=on"},
				{Bits: "4:3", Name: "FS_SEL", Description: "Gyro range", Values: "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
			}},
		{Addr: regs.AccelConfig, Name: "ACCEL_CONFIG", Description: "Accelerometer full scale and self test", Access: "RW",
			BitFields: []BitField{
				{Bits: "7:5", Name: "XA_ST/YA_ST/ZA_ST", Description: "Accel self test per axis", Values: "1=on"},
				{Bits: "4:3", Name: "AFS_SEL", Description: "Accel range", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
			}},
		{Addr: 0x38, Name: "INT_ENABLE", Description: "Interrupt enable", Access: "RW",
			BitFields: []BitField{
				{Bits: "4", Name: "FIFO_OFLOW_EN", Description: "FIFO overflow interrupt"},
				{Bits: "0", Name: "DATA_RDY_EN", Description: "Data ready interrupt"},
			}},
		{Addr: 0x3A, Name: "INT_STATUS", Description: "Interrupt status, cleared on read", Access: "R"},

		dataRegister(regs.AccelXOutH, "ACCEL_XOUT_H", "Accel X high byte"),
		dataRegister(regs.AccelXOutH+1, "ACCEL_XOUT_L", "Accel X low byte"),
		dataRegister(regs.AccelXOutH+2, "ACCEL_YOUT_H", "Accel Y high byte"),
		dataRegister(regs.AccelXOutH+3, "ACCEL_YOUT_L", "Accel Y low byte"),
		dataRegister(regs.AccelXOutH+4, "ACCEL_ZOUT_H", "Accel Z high byte"),
		dataRegister(regs.AccelXOutH+5, "ACCEL_ZOUT_L", "Accel Z low byte"),
		dataRegister(regs.TempOutH, "TEMP_OUT_H", "Temperature high byte"),
		dataRegister(regs.TempOutH+1, "TEMP_OUT_L", "Temperature low byte"),
		dataRegister(regs.GyroXOutH, "GYRO_XOUT_H", "Gyro X high byte"),
		dataRegister(regs.GyroXOutH+1, "GYRO_XOUT_L", "Gyro X low byte"),
		dataRegister(regs.GyroXOutH+2, "GYRO_YOUT_H", "Gyro Y high byte"),
		dataRegister(regs.GyroXOutH+3, "GYRO_YOUT_L", "Gyro Y low byte"),
		dataRegister(regs.GyroXOutH+4, "GYRO_ZOUT_H", "Gyro Z high byte"),
		dataRegister(regs.GyroXOutH+5, "GYRO_ZOUT_L", "Gyro Z low byte"),

		{Addr: 0x6A, Name: "USER_CTRL", Description: "FIFO and auxiliary bus control", Access: "RW",
			BitFields: []BitField{
				{Bits: "6", Name: "FIFO_EN", Description: "Enable FIFO"},
				{Bits: "2", Name: "FIFO_RESET", Description: "Reset FIFO"},
				{Bits: "0", Name: "SIG_COND_RESET", Description: "Reset signal paths"},
			}},
		{Addr: regs.PwrMgmt1, Name: "PWR_MGMT_1", Description: "Power management", Access: "RW", Reset: 0x40,
			BitFields: []BitField{
				{Bits: "7", Name: "DEVICE_RESET", Description: "Reset all registers"},
				{Bits: "6", Name: "SLEEP", Description: "Sleep mode, set after power on", Values: "0=awake, 1=sleep"},
				{Bits: "3", Name: "TEMP_DIS", Description: "Disable temperature sensor"},
				{Bits: "2:0", Name: "CLKSEL", Description: "Clock source", Values: "0=8MHz internal, 1=PLL gyro X"},
			}},
		{Addr: 0x6C, Name: "PWR_MGMT_2", Description: "Per-axis standby", Access: "RW"},
		{Addr: regs.WhoAmI, Name: "WHO_AM_I", Description: fmt.Sprintf("Device identity, expected 0x%02X", regs.ExpectedID),
			Access: "R", Reset: regs.ExpectedID},
	}
	return table
}

// LookupRegister finds the metadata entry for addr.
func LookupRegister(table []RegisterInfo, addr uint8) (RegisterInfo, bool) {
	for _, r := range table {
		if r.Addr == addr {
			return r, true
		}
	}
	return RegisterInfo{}, false
}
