// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/relabs-tech/motion_events/internal/events"
	"github.com/relabs-tech/motion_events/internal/motion"
)

// ReportMessage is the payload published on the report topic every tick.
type ReportMessage struct {
	Source string    `json:"source"`
	Time   time.Time `json:"time"`
	motion.Report
}

// ConnectMQTT connects a client to broker and waits for the result.
func ConnectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect to %s: %w", broker, token.Error())
	}
	return client, nil
}

// MQTTPublisher publishes reports retained, so late subscribers get the
// current state at once, and events not retained.
type MQTTPublisher struct {
	client      mqtt.Client
	reportTopic string
	eventTopic  string
}

func NewMQTTPublisher(client mqtt.Client, reportTopic, eventTopic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, reportTopic: reportTopic, eventTopic: eventTopic}
}

func (p *MQTTPublisher) PublishReport(msg ReportMessage) error {
	return p.publish(p.reportTopic, true, msg)
}

func (p *MQTTPublisher) PublishEvent(ev events.Event) error {
	return p.publish(p.eventTopic, false, ev)
}

func (p *MQTTPublisher) publish(topic string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json marshal (%s): %w", topic, err)
	}
	if token := p.client.Publish(topic, 0, retained, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish (%s): %w", topic, token.Error())
	}
	return nil
}

// subscribeJSON decodes every message on topic into a fresh T and passes it
// to handle. Undecodable payloads are logged and dropped.
func subscribeJSON[T any](client mqtt.Client, component, topic string, handle func(T)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var v T
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.Printf("%s: %s unmarshal error: %v", component, topic, err)
			return
		}
		handle(v)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	log.Printf("%s: subscribed to %s", component, topic)
	return nil
}
