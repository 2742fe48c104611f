// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/relabs-tech/motion_events/internal/config"
	"github.com/relabs-tech/motion_events/internal/events"
)

// RunConsoleMQTT prints what a running producer publishes.
func RunConsoleMQTT(ctx context.Context) error {
	cfg := config.Get()

	client, err := ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	var (
		mu       sync.Mutex
		lastLine time.Time
		interval = time.Duration(cfg.ConsoleLogInterval) * time.Millisecond
	)

	if err := subscribeJSON(client, "console", cfg.TopicMotionReport, func(msg ReportMessage) {
		mu.Lock()
		defer mu.Unlock()
		if time.Since(lastLine) < interval {
			return
		}
		lastLine = time.Now()
		fmt.Println(FormatReport(msg))
	}); err != nil {
		return err
	}

	if err := subscribeJSON(client, "console", cfg.TopicMotionEvents, func(ev events.Event) {
		fmt.Println(FormatEvent(ev))
	}); err != nil {
		return err
	}

	<-ctx.Done()
	log.Println("console: shutting down")
	return nil
}
