// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tariffrs

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/parkade/pkg/core/model"
)

// tariffReq uses pointers, so a zero price can be told apart from a
// missing one.
type tariffReq struct {
	Base        *float64 `json:"base" binding:"required,min=0"`
	MinutePrice *float64 `json:"minute_price" binding:"required,min=0"`
}

func (rs *resource) DserUpdateTariffReq(
	c *gin.Context,
) (*model.Tariff, bool) {
	req := &tariffReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil, false
	}
	return &model.Tariff{Base: *req.Base, MinutePrice: *req.MinutePrice}, true
}
