// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package iot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/goccy/go-json"
	"github.com/momeni/parkade/pkg/core/log"
	"github.com/momeni/parkade/pkg/core/model"
)

// IoTDataAPI is the subset of the iotdataplane.Client methods which
// are used by the Publisher.
type IoTDataAPI interface {
	Publish(
		ctx context.Context,
		in *iotdataplane.PublishInput,
		optFns ...func(*iotdataplane.Options),
	) (*iotdataplane.PublishOutput, error)
}

// Publisher sends the barrier commands and network configurations to
// the device by publishing MQTT messages with QoS 1.
// It implements the recouc.Commander interface.
type Publisher struct {
	client IoTDataAPI
	topics Topics
}

// networkPayload is the wire format of model.NetworkConfig which is
// expected by the device firmware.
type networkPayload struct {
	SSID     string `json:"ssid"`
	Password string `json:"pass"`
}

// NewPublisher creates a Publisher which uses the Control and Network
// topics.
func NewPublisher(client IoTDataAPI, topics Topics) (*Publisher, error) {
	if err := topics.Normalize(); err != nil {
		return nil, fmt.Errorf("invalid topics: %w", err)
	}
	return &Publisher{client: client, topics: topics}, nil
}

// Command publishes the cmd name on the Control topic.
func (p *Publisher) Command(ctx context.Context, cmd model.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := p.publish(ctx, p.topics.Control, []byte(cmd.String())); err != nil {
		return err
	}
	log.Info(ctx, "command is published", log.Stringer("cmd", cmd))
	return nil
}

// ConfigureNetwork publishes cfg as JSON on the Network topic.
func (p *Publisher) ConfigureNetwork(
	ctx context.Context, cfg model.NetworkConfig,
) error {
	b, err := json.Marshal(networkPayload{
		SSID: cfg.SSID, Password: cfg.Password,
	})
	if err != nil {
		return fmt.Errorf("marshaling network config: %w", err)
	}
	if err := p.publish(ctx, p.topics.Network, b); err != nil {
		return err
	}
	log.Info(
		ctx, "network config is published", slog.String("ssid", cfg.SSID),
	)
	return nil
}

func (p *Publisher) publish(ctx context.Context, topic string, b []byte) error {
	_, err := p.client.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(topic),
		Qos:     1,
		Payload: b,
	})
	if err != nil {
		return fmt.Errorf("publishing on %q: %w", topic, err)
	}
	return nil
}
