// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/relabs-tech/motion_events/internal/config"
	"github.com/relabs-tech/motion_events/internal/events"
	"github.com/relabs-tech/motion_events/internal/sensors"
)

// FormatReport renders one report as a console line.
func FormatReport(msg ReportMessage) string {
	s := msg.Sample
	return fmt.Sprintf(
		"[MOTION] a=(%5.2f %5.2f %5.2f)g |a|=%4.2f  w=(%7.1f %7.1f %7.1f)°/s  T=%4.1f°C  R=%6.1f P=%6.1f  axis=%s %s",
		s.AccelX, s.AccelY, s.AccelZ, msg.AccelMagnitude,
		s.GyroX, s.GyroY, s.GyroZ, s.Temperature,
		msg.Roll, msg.Pitch, msg.Axis, flags(msg),
	)
}

func flags(msg ReportMessage) string {
	out := ""
	for _, f := range []struct {
		on   bool
		name string
	}{
		{msg.Shake, "SHAKE"},
		{msg.Freefall, "FREEFALL"},
		{msg.Tilted, "TILT"},
		{msg.Spinning, "SPIN"},
		{msg.Jerk, "JERK"},
	} {
		if f.on {
			out += f.name + " "
		}
	}
	return out
}

// FormatEvent renders one event as a console line.
func FormatEvent(ev events.Event) string {
	return fmt.Sprintf("[EVENT]  %s %-11s %7.2f axis=%s R=%6.1f P=%6.1f  %s",
		ev.Time.Format("15:04:05.000"), ev.Kind, ev.Magnitude, ev.Axis, ev.Roll, ev.Pitch, ev.ID)
}

// consolePrinter prints every event and a report line at most once per
// interval.
type consolePrinter struct {
	out      io.Writer
	interval time.Duration
	last     time.Time
}

func (c *consolePrinter) step(msg ReportMessage, evs []events.Event) {
	for _, ev := range evs {
		fmt.Fprintln(c.out, FormatEvent(ev))
	}
	if msg.Time.Sub(c.last) >= c.interval {
		c.last = msg.Time
		fmt.Fprintln(c.out, FormatReport(msg))
	}
}

// RunConsole runs the classifier in-process on the configured source and
// prints to stdout, without MQTT or storage.
func RunConsole(ctx context.Context) error {
	cfg := config.Get()

	dev, err := sensors.OpenDevice(cfg)
	if err != nil {
		return err
	}
	defer dev.Close()

	classifier, err := NewClassifier(cfg, dev)
	if err != nil {
		return err
	}

	printer := &consolePrinter{out: os.Stdout, interval: time.Duration(cfg.ConsoleLogInterval) * time.Millisecond}
	p := &Producer{
		Name:       dev.Name,
		Classifier: classifier,
		Tracker:    events.NewTracker(dev.Name),
		Interval:   cfg.SampleInterval(),
		OnStep:     printer.step,
	}
	return p.Run(ctx)
}
