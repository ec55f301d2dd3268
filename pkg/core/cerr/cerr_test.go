// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/momeni/parkade/pkg/core/cerr"
	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	base := errors.New("entry is gone")
	err := fmt.Errorf("claiming: %w", cerr.NotFound(base))
	assert.True(t, cerr.IsNotFound(err))
	assert.False(t, cerr.Is(err, http.StatusConflict))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "claiming: [404] entry is gone", err.Error())

	assert.True(t, cerr.Is(cerr.Unavailable(base), http.StatusServiceUnavailable))
	assert.False(t, cerr.IsNotFound(base))
}
