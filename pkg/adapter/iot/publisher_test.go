// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package iot_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/momeni/parkade/pkg/adapter/iot"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIoTData struct {
	inputs []*iotdataplane.PublishInput
	err    error
}

func (f *fakeIoTData) Publish(
	_ context.Context,
	in *iotdataplane.PublishInput,
	_ ...func(*iotdataplane.Options),
) (*iotdataplane.PublishOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &iotdataplane.PublishOutput{}, nil
}

func TestPublisherCommand(t *testing.T) {
	f := &fakeIoTData{}
	p, err := iot.NewPublisher(f, iot.Topics{Control: "lot/control"})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, p.Command(ctx, model.CommandOpenExit))
	require.NoError(t, p.Command(ctx, model.CommandManual))
	require.Len(t, f.inputs, 2)
	assert.Equal(t, "lot/control", aws.ToString(f.inputs[0].Topic))
	assert.Equal(t, "open-exit", string(f.inputs[0].Payload))
	assert.EqualValues(t, 1, f.inputs[0].Qos)
	assert.Equal(t, "manual", string(f.inputs[1].Payload))

	assert.Error(t, p.Command(ctx, model.CommandInvalid))
	assert.Len(t, f.inputs, 2)
}

func TestPublisherConfigureNetwork(t *testing.T) {
	f := &fakeIoTData{}
	p, err := iot.NewPublisher(f, iot.Topics{})
	require.NoError(t, err)

	err = p.ConfigureNetwork(context.Background(), model.NetworkConfig{
		SSID: "lot", Password: "secret",
	})
	require.NoError(t, err)
	require.Len(t, f.inputs, 1)
	assert.Equal(t, iot.DefaultTopics.Network, aws.ToString(f.inputs[0].Topic))
	assert.JSONEq(t, `{"ssid":"lot","pass":"secret"}`, string(f.inputs[0].Payload))
}

func TestPublisherFailure(t *testing.T) {
	boom := errors.New("endpoint is unreachable")
	p, err := iot.NewPublisher(&fakeIoTData{err: boom}, iot.Topics{})
	require.NoError(t, err)
	err = p.Command(context.Background(), model.CommandOpenEntry)
	assert.ErrorIs(t, err, boom)
}
