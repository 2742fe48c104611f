// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/relabs-tech/motion_events/internal/events"
	"github.com/relabs-tech/motion_events/internal/motion"
	"github.com/stretchr/testify/require"
)

func TestFormatReport(t *testing.T) {
	line := FormatReport(ReportMessage{Report: motion.Report{
		Sample: motion.Sample{AccelZ: 1, Temperature: 25},
		Axis:   motion.AxisZ,
		Shake:  true,
		Jerk:   true,
	}})
	require.True(t, strings.HasPrefix(line, "[MOTION] "))
	require.Contains(t, line, "axis=Z")
	require.Contains(t, line, "T=25.0°C")
	require.True(t, strings.HasSuffix(line, "SHAKE JERK "))
}

func TestFormatEvent(t *testing.T) {
	id := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")
	line := FormatEvent(events.Event{
		ID:        id,
		Kind:      events.KindSpin,
		Time:      time.Date(2026, 3, 1, 8, 9, 10, 250e6, time.UTC),
		Magnitude: 181.5,
		Axis:      motion.AxisNone,
	})
	require.Equal(t, "[EVENT]  08:09:10.250 spin         181.50 axis=N R=   0.0 P=   0.0  "+id.String(), line)
}

func TestConsolePrinterThrottlesReports(t *testing.T) {
	var out bytes.Buffer
	p := &consolePrinter{out: &out, interval: time.Second}
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	p.step(ReportMessage{Time: start}, nil)
	p.step(ReportMessage{Time: start.Add(500 * time.Millisecond)}, []events.Event{{Kind: events.KindShake}})
	p.step(ReportMessage{Time: start.Add(time.Second)}, nil)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "[MOTION]"))
	require.True(t, strings.HasPrefix(lines[1], "[EVENT]"))
	require.True(t, strings.HasPrefix(lines[2], "[MOTION]"))
}
