// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// RegisterRange is an inclusive span of register addresses.
type RegisterRange struct {
	Lo, Hi uint8
}

// RegisterRanges is a list of spans; an empty list contains nothing.
type RegisterRanges []RegisterRange

// ParseRegisterRanges parses "0x19-0x1C,0x6B" style lists. Blank input is an
// empty list.
func ParseRegisterRanges(s string) (RegisterRanges, error) {
	var out RegisterRanges
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		loStr, hiStr, isSpan := strings.Cut(part, "-")
		lo, err := parseRegister(loStr)
		if err != nil {
			return nil, err
		}
		hi := lo
		if isSpan {
			if hi, err = parseRegister(hiStr); err != nil {
				return nil, err
			}
		}
		if hi < lo {
			return nil, fmt.Errorf("register range %q is reversed", part)
		}
		out = append(out, RegisterRange{Lo: lo, Hi: hi})
	}
	return out, nil
}

func parseRegister(s string) (uint8, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid register %q: %w", s, err)
	}
	return uint8(v), nil
}

// Contains reports whether addr falls in any span.
func (rs RegisterRanges) Contains(addr uint8) bool {
	for _, r := range rs {
		if addr >= r.Lo && addr <= r.Hi {
			return true
		}
	}
	return false
}

// WritableRegisters parses RegisterDebugWritable; it was checked at load.
func (c *Config) WritableRegisters() RegisterRanges {
	rs, _ := ParseRegisterRanges(c.RegisterDebugWritable)
	return rs
}
