// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package iot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/momeni/parkade/pkg/core/log"
	"github.com/momeni/parkade/pkg/core/model"
)

// SQSAPI is the subset of the sqs.Client methods which are used by
// the Consumer.
type SQSAPI interface {
	ReceiveMessage(
		ctx context.Context,
		in *sqs.ReceiveMessageInput,
		optFns ...func(*sqs.Options),
	) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(
		ctx context.Context,
		in *sqs.DeleteMessageInput,
		optFns ...func(*sqs.Options),
	) (*sqs.DeleteMessageOutput, error)
}

// Sink accepts the decoded events. The recouc.Engine implements it.
type Sink interface {
	Deliver(ctx context.Context, ev model.Event, ack func(error)) error
}

// Consumer long-polls an SQS queue and delivers its messages to a
// Sink. A message is deleted from the queue when the Sink acks it
// with a nil error. Otherwise, it becomes visible again after the
// visibility timeout and is delivered one more time. Messages which
// cannot be decoded are logged and deleted.
type Consumer struct {
	client   SQSAPI
	queueURL string
	topics   Topics
	sink     Sink

	waitTime          int32
	maxMessages       int32
	visibilityTimeout int32
	retryDelay        time.Duration
}

type result struct {
	msg types.Message
	err error
}

// NewConsumer creates a Consumer for the queueURL queue.
func NewConsumer(
	client SQSAPI, queueURL string, topics Topics, sink Sink,
	opts ...ConsumerOption,
) (*Consumer, error) {
	if queueURL == "" {
		return nil, errors.New("queue URL is empty")
	}
	if err := topics.Normalize(); err != nil {
		return nil, fmt.Errorf("invalid topics: %w", err)
	}
	c := &Consumer{
		client:   client,
		queueURL: queueURL,
		topics:   topics,
		sink:     sink,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	// now, deal with defaults
	if c.waitTime == 0 {
		c.waitTime = 20
	}
	if c.maxMessages == 0 {
		c.maxMessages = 10
	}
	if c.visibilityTimeout == 0 {
		c.visibilityTimeout = 60
	}
	if c.retryDelay == 0 {
		c.retryDelay = 5 * time.Second
	}
	return c, nil
}

// Run consumes messages until ctx is done. A nil error is returned
// in that case. A non-nil error means that the Sink stopped accepting
// events.
func (c *Consumer) Run(ctx context.Context) error {
	log.Info(
		ctx, "consuming device events", slog.String("queue", c.queueURL),
	)
	for {
		if ctx.Err() != nil {
			log.Info(ctx, "stopped consuming device events")
			return nil
		}
		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: c.maxMessages,
			WaitTimeSeconds:     c.waitTime,
			VisibilityTimeout:   c.visibilityTimeout,
			MessageSystemAttributeNames: []types.MessageSystemAttributeName{
				types.MessageSystemAttributeNameSentTimestamp,
			},
		})
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Error(
				ctx, "receiving messages failed",
				slog.String("code", errorCode(err)),
				log.Err("err", err),
			)
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
			}
			continue
		}
		if err := c.dispatch(ctx, out.Messages); err != nil {
			return err
		}
	}
}

// dispatch delivers msgs and waits for their acks, so messages of one
// batch are processed in their receive order before the next batch
// is requested.
func (c *Consumer) dispatch(ctx context.Context, msgs []types.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	log.Debug(ctx, "received messages", slog.Int("count", len(msgs)))
	results := make(chan result, len(msgs))
	pending := 0
	for _, msg := range msgs {
		ev, err := c.decode(msg)
		if err != nil {
			log.Warn(
				ctx, "dropping undecodable message",
				slog.String("id", aws.ToString(msg.MessageId)),
				log.Err("err", err),
			)
			c.delete(ctx, msg)
			continue
		}
		err = c.sink.Deliver(ctx, ev, func(err error) {
			results <- result{msg: msg, err: err}
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("delivering event: %w", err)
		}
		pending++
	}
	for ; pending > 0; pending-- {
		select {
		case r := <-results:
			if r.err != nil {
				log.Warn(
					ctx, "message is left for redelivery",
					slog.String("id", aws.ToString(r.msg.MessageId)),
					log.Err("err", r.err),
				)
				continue
			}
			c.delete(ctx, r.msg)
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

func (c *Consumer) decode(msg types.Message) (model.Event, error) {
	if msg.Body == nil {
		return model.Event{}, errors.New("message body is empty")
	}
	var sent time.Time
	if s, ok := msg.Attributes[string(
		types.MessageSystemAttributeNameSentTimestamp,
	)]; ok {
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			sent = time.UnixMilli(ms).UTC()
		}
	}
	return c.topics.Decode([]byte(*msg.Body), sent)
}

func (c *Consumer) delete(ctx context.Context, msg types.Message) {
	if msg.ReceiptHandle == nil {
		log.Error(
			ctx, "message has no receipt handle",
			slog.String("id", aws.ToString(msg.MessageId)),
		)
		return
	}
	_, err := c.client.DeleteMessage(
		context.WithoutCancel(ctx),
		&sqs.DeleteMessageInput{
			QueueUrl:      aws.String(c.queueURL),
			ReceiptHandle: msg.ReceiptHandle,
		},
	)
	if err != nil {
		log.Error(
			ctx, "deleting message failed",
			slog.String("id", aws.ToString(msg.MessageId)),
			slog.String("code", errorCode(err)),
			log.Err("err", err),
		)
	}
}
