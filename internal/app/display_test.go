// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"testing"
	"time"

	"github.com/relabs-tech/motion_events/internal/events"
	"github.com/relabs-tech/motion_events/internal/motion"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func TestStatusLinesWaiting(t *testing.T) {
	require.Equal(t, []string{"Motion Events", "", "Waiting..."}, StatusLines(DisplayState{}, time.Now()))
}

func TestStatusLines(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 10, 0, time.UTC)

	var d displayData
	d.setReport(ReportMessage{Report: motion.Report{
		Roll: 12.34, Pitch: -5, AccelMagnitude: 1.02, GyroMagnitude: 180, Axis: motion.AxisZ,
	}})
	lines := StatusLines(d.snapshot(), now)
	require.Equal(t, []string{
		"R +12.3 P  -5.0",
		"|a| 1.02g ax Z",
		"|w| 180.0 d/s",
		"no events",
	}, lines)

	d.setEvent(events.Event{Kind: events.KindFreefall, Time: now.Add(-3500 * time.Millisecond)})
	lines = StatusLines(d.snapshot(), now)
	require.Equal(t, "FREEFALL 3s", lines[3])
}

func TestRenderLines(t *testing.T) {
	blank := RenderLines(nil)
	for _, px := range blank.Pix {
		require.Zero(t, px)
	}

	img := RenderLines([]string{"A", "B", "C", "D", "E"})
	require.Equal(t, displayWidth, img.Bounds().Dx())
	require.Equal(t, displayHeight, img.Bounds().Dy())

	lit := 0
	for y := 0; y < displayHeight; y++ {
		for x := 0; x < displayWidth; x++ {
			if img.BitAt(x, y) == image1bit.On {
				lit++
			}
		}
	}
	require.Positive(t, lit)
}
