// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/motion_events/internal/config"
	"github.com/relabs-tech/motion_events/internal/events"
)

const (
	displayWidth  = 128
	displayHeight = 64
	lineHeight    = 13
)

// DisplayState is what the OLED shows.
type DisplayState struct {
	Report     ReportMessage
	HaveReport bool
	LastEvent  events.Event
	HaveEvent  bool
}

type displayData struct {
	mu    sync.RWMutex
	state DisplayState
}

func (d *displayData) setReport(msg ReportMessage) {
	d.mu.Lock()
	d.state.Report = msg
	d.state.HaveReport = true
	d.mu.Unlock()
}

func (d *displayData) setEvent(ev events.Event) {
	d.mu.Lock()
	d.state.LastEvent = ev
	d.state.HaveEvent = true
	d.mu.Unlock()
}

func (d *displayData) snapshot() DisplayState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// StatusLines is the text of the status screen, one entry per line.
func StatusLines(s DisplayState, now time.Time) []string {
	if !s.HaveReport {
		return []string{"Motion Events", "", "Waiting..."}
	}

	r := s.Report
	lines := []string{
		fmt.Sprintf("R%+6.1f P%+6.1f", r.Roll, r.Pitch),
		fmt.Sprintf("|a|%5.2fg ax %s", r.AccelMagnitude, r.Axis),
		fmt.Sprintf("|w|%6.1f d/s", r.GyroMagnitude),
	}
	if s.HaveEvent {
		ago := now.Sub(s.LastEvent.Time).Truncate(time.Second)
		lines = append(lines, fmt.Sprintf("%s %v", strings.ToUpper(string(s.LastEvent.Kind)), ago))
	} else {
		lines = append(lines, "no events")
	}
	return lines
}

// RenderLines draws up to four lines of 7x13 text on a blank frame.
func RenderLines(lines []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		if (i+1)*lineHeight > displayHeight {
			break
		}
		drawer.Dot = fixed.P(0, (i+1)*lineHeight)
		drawer.DrawString(line)
	}
	return img
}

// fixedAddrBus sends every transaction to addr, so the panel can sit at a
// non-default address.
type fixedAddrBus struct {
	i2c.Bus
	addr uint16
}

func (b *fixedAddrBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// RunDisplay shows the latest report and event on an SSD1306 OLED until ctx
// is cancelled.
func RunDisplay(ctx context.Context) error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(&fixedAddrBus{Bus: bus, addr: cfg.DisplayI2CAddr}, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Printf("display: initialized at 0x%02X", cfg.DisplayI2CAddr)

	if err := draw(dev, StatusLines(DisplayState{}, time.Now())); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &displayData{}

	client, err := ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribeJSON(client, "display", cfg.TopicMotionReport, data.setReport); err != nil {
		return err
	}
	if err := subscribeJSON(client, "display", cfg.TopicMotionEvents, data.setEvent); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := draw(dev, StatusLines(data.snapshot(), now)); err != nil {
				log.Printf("display: error updating display: %v", err)
			}
		}
	}
}

func draw(dev *ssd1306.Dev, lines []string) error {
	return dev.Draw(dev.Bounds(), RenderLines(lines), image.Point{})
}
