// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/motion_events/internal/config"
	"github.com/relabs-tech/motion_events/internal/events"
	"github.com/relabs-tech/motion_events/internal/motion"
	"github.com/relabs-tech/motion_events/internal/sensors"
	"github.com/relabs-tech/motion_events/internal/store"
)

// Publisher receives every report and event the producer generates.
type Publisher interface {
	PublishReport(ReportMessage) error
	PublishEvent(events.Event) error
}

// EventSink persists events.
type EventSink interface {
	Insert(ctx context.Context, evs ...events.Event) error
}

// Producer polls the classifier on a fixed interval and fans the results out.
// Publisher and Sink are optional.
type Producer struct {
	Name       string
	Classifier *motion.Classifier
	Tracker    *events.Tracker
	Publisher  Publisher
	Sink       EventSink
	Interval   time.Duration

	// OnStep, when set, is called after every successful tick.
	OnStep func(ReportMessage, []events.Event)
}

// Step runs one tick: read a sample, evaluate the detectors, turn the report
// into events and deliver both. Delivery failures are logged, not returned.
func (p *Producer) Step(ctx context.Context) (ReportMessage, []events.Event, error) {
	if err := p.Classifier.Update(); err != nil {
		return ReportMessage{}, nil, err
	}
	report, err := p.Classifier.Evaluate()
	if err != nil {
		return ReportMessage{}, nil, err
	}

	msg := ReportMessage{Source: p.Name, Time: time.Now(), Report: report}
	evs := p.Tracker.Observe(report)

	if p.Publisher != nil {
		if err := p.Publisher.PublishReport(msg); err != nil {
			log.Printf("producer: %v", err)
		}
		for _, ev := range evs {
			if err := p.Publisher.PublishEvent(ev); err != nil {
				log.Printf("producer: %v", err)
			}
		}
	}
	if p.Sink != nil && len(evs) > 0 {
		if err := p.Sink.Insert(ctx, evs...); err != nil {
			log.Printf("producer: %v", err)
		}
	}
	for _, ev := range evs {
		log.Printf("producer: %s event (%.2f) axis=%s roll=%.1f pitch=%.1f", ev.Kind, ev.Magnitude, ev.Axis, ev.Roll, ev.Pitch)
	}

	if p.OnStep != nil {
		p.OnStep(msg, evs)
	}
	return msg, evs, nil
}

// Run primes the classifier and ticks until ctx is cancelled. Read errors are
// logged and the loop waits for the next tick.
func (p *Producer) Run(ctx context.Context) error {
	if err := p.Classifier.Begin(); err != nil {
		return fmt.Errorf("producer: first sample: %w", err)
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, _, err := p.Step(ctx); err != nil {
				log.Printf("producer: %v", err)
			}
		}
	}
}

// NewClassifier builds a classifier over dev with the configured thresholds.
func NewClassifier(cfg *config.Config, dev *sensors.Device) (*motion.Classifier, error) {
	return motion.New(dev.Source,
		motion.WithConverter(dev.Converter),
		motion.WithConfig(cfg.Motion),
	)
}

// RunMotionProducer reads the configured IMU and publishes reports and
// events over MQTT, keeping a history in SQLite when EVENT_DB_PATH is set.
func RunMotionProducer(ctx context.Context) error {
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
	log.Printf("producer: %s IMU scaled %s", dev.Name, dev.Converter)

	client, err := ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("producer: connected to MQTT broker at %s", cfg.MQTTBroker)

	p := &Producer{
		Name:       dev.Name,
		Classifier: classifier,
		Tracker:    events.NewTracker(dev.Name),
		Publisher:  NewMQTTPublisher(client, cfg.TopicMotionReport, cfg.TopicMotionEvents),
		Interval:   cfg.SampleInterval(),
	}

	if cfg.EventDBPath != "" {
		st, err := store.Open(cfg.EventDBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		p.Sink = st
	}

	log.Printf("producer: publishing %s every %v", cfg.TopicMotionReport, p.Interval)
	return p.Run(ctx)
}
