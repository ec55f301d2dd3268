// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package iot

import (
	"fmt"
	"time"
)

// ConsumerOption represents a customization option for the Consumer.
type ConsumerOption func(c *Consumer) error

// WithWaitTime sets the long-polling duration of each receive call.
// SQS accepts 0 to 20 seconds. Default is 20s.
func WithWaitTime(d time.Duration) ConsumerOption {
	return func(c *Consumer) error {
		if d < time.Second || d > 20*time.Second {
			return fmt.Errorf("wait time %v is out of [1s, 20s]", d)
		}
		c.waitTime = int32(d / time.Second)
		return nil
	}
}

// WithMaxMessages sets the batch size of each receive call.
func WithMaxMessages(n int) ConsumerOption {
	return func(c *Consumer) error {
		if n < 1 || n > 10 {
			return fmt.Errorf("max messages %d is out of [1, 10]", n)
		}
		c.maxMessages = int32(n)
		return nil
	}
}

// WithVisibilityTimeout sets how long a received message is hidden
// from other receive calls. Unacked messages are redelivered after it.
func WithVisibilityTimeout(d time.Duration) ConsumerOption {
	return func(c *Consumer) error {
		if d < time.Second || d > 12*time.Hour {
			return fmt.Errorf("visibility timeout %v is out of [1s, 12h]", d)
		}
		c.visibilityTimeout = int32(d / time.Second)
		return nil
	}
}

// WithRetryDelay sets the pause after a failed receive call.
func WithRetryDelay(d time.Duration) ConsumerOption {
	return func(c *Consumer) error {
		if d <= 0 {
			return fmt.Errorf("retry delay %v must be positive", d)
		}
		c.retryDelay = d
		return nil
	}
}
