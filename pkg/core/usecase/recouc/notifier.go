// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package recouc

import (
	"context"
	"log/slog"

	"github.com/momeni/parkade/pkg/core/log"
	"github.com/momeni/parkade/pkg/core/model"
)

// Notifier pushes notifications to the operators. Notify is called by
// the engine processing loop, so it must not block.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

// Commander sends fire-and-forget commands to the barrier controller
// device. There is no acknowledgement, so a nil error only means that
// the command was handed to the transport.
type Commander interface {
	Command(ctx context.Context, cmd model.Command) error
	ConfigureNetwork(ctx context.Context, cfg model.NetworkConfig) error
}

type logNotifier struct{}

func (logNotifier) Notify(ctx context.Context, n model.Notification) {
	log.Debug(
		ctx, "notification",
		slog.String("kind", string(n.Kind)),
		log.Time("at", n.At),
	)
}

type logCommander struct{}

func (logCommander) Command(ctx context.Context, cmd model.Command) error {
	log.Info(
		ctx, "command is not sent, no commander", log.Stringer("cmd", cmd),
	)
	return nil
}

func (logCommander) ConfigureNetwork(
	ctx context.Context, cfg model.NetworkConfig,
) error {
	log.Info(
		ctx, "network config is not sent, no commander",
		slog.String("ssid", cfg.SSID),
	)
	return nil
}
