// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/momeni/parkade/pkg/adapter/config"
	"github.com/momeni/parkade/pkg/adapter/iot"
)

// transportClients returns nil clients if the transport is disabled.
func transportClients(ctx context.Context, c *config.Config) (
	*iot.Clients, error,
) {
	if !c.Transport.Enabled() {
		return nil, nil
	}
	clients, err := c.Transport.NewClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating AWS clients: %w", err)
	}
	return clients, nil
}
