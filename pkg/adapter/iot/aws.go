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
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/smithy-go"
	"github.com/momeni/parkade/pkg/core/log"
)

// Clients holds the AWS service clients of the transport.
type Clients struct {
	SQS     *sqs.Client
	IoTData *iotdataplane.Client
}

// NewClients loads the shared AWS configuration (environment, shared
// config files, or instance role) for the region and creates the
// clients. The iotEndpoint is the account specific data endpoint; the
// https scheme is added if it has no scheme.
func NewClients(
	ctx context.Context, region, iotEndpoint string,
) (*Clients, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	c := &Clients{SQS: sqs.NewFromConfig(cfg)}
	c.IoTData = iotdataplane.NewFromConfig(cfg, func(o *iotdataplane.Options) {
		if iotEndpoint == "" {
			return
		}
		ep := iotEndpoint
		if !strings.HasPrefix(ep, "https://") &&
			!strings.HasPrefix(ep, "http://") {
			ep = "https://" + ep
		}
		o.BaseEndpoint = aws.String(ep)
	})
	log.Info(ctx, "AWS clients are created", slog.String("region", region))
	return c, nil
}

// errorCode returns the AWS API error code of err, or an empty string
// if err is not an API error (e.g., a network failure).
func errorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}
