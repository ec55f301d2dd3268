// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/momeni/parkade/pkg/adapter/config/settings"
	"github.com/momeni/parkade/pkg/adapter/iot"
)

// Transport contains the AWS IoT and SQS settings. An empty QueueURL
// disables the transport, so the engine may be driven by the events
// REST API alone (e.g., by a simulator).
type Transport struct {
	Region      string `yaml:",omitempty"`
	QueueURL    string `yaml:"queue-url,omitempty"`
	IoTEndpoint string `yaml:"iot-endpoint,omitempty"`
	Topics      iot.Topics

	// WaitTime is the long-polling duration of the SQS receive calls.
	WaitTime *settings.Duration `yaml:"wait-time,omitempty"`
	// VisibilityTimeout is the delay before an unacked message is
	// delivered again.
	VisibilityTimeout *settings.Duration `yaml:"visibility-timeout,omitempty"`
	// MaxMessages is the number of messages of each receive call.
	MaxMessages *int `yaml:"max-messages,omitempty"`
}

// Enabled reports whether the SQS queue is configured.
func (t Transport) Enabled() bool {
	return t.QueueURL != ""
}

// ValidateAndNormalize fills the default topics and requires the
// region when the transport is enabled.
func (t *Transport) ValidateAndNormalize() error {
	if err := t.Topics.Normalize(); err != nil {
		return err
	}
	if t.Enabled() && t.Region == "" {
		return errors.New("region is required when queue-url is set")
	}
	minMsgs, maxMsgs := 1, 10
	if err := settings.VerifyRange(
		&t.MaxMessages, &minMsgs, &maxMsgs,
	); err != nil {
		return fmt.Errorf("max-messages=%v: %w", *err.Value, err)
	}
	return nil
}

// NewClients creates the AWS service clients.
func (t Transport) NewClients(ctx context.Context) (*iot.Clients, error) {
	return iot.NewClients(ctx, t.Region, t.IoTEndpoint)
}

// NewConsumer instantiates an SQS consumer which delivers the decoded
// events to the sink.
func (t Transport) NewConsumer(
	c *iot.Clients, sink iot.Sink,
) (*iot.Consumer, error) {
	opts := make([]iot.ConsumerOption, 0, 3)
	if t.WaitTime != nil {
		opts = append(opts, iot.WithWaitTime(time.Duration(*t.WaitTime)))
	}
	if t.VisibilityTimeout != nil {
		opts = append(opts, iot.WithVisibilityTimeout(
			time.Duration(*t.VisibilityTimeout),
		))
	}
	if t.MaxMessages != nil {
		opts = append(opts, iot.WithMaxMessages(*t.MaxMessages))
	}
	return iot.NewConsumer(c.SQS, t.QueueURL, t.Topics, sink, opts...)
}

// NewPublisher instantiates a commands publisher.
func (t Transport) NewPublisher(c *iot.Clients) (*iot.Publisher, error) {
	return iot.NewPublisher(c.IoTData, t.Topics)
}
