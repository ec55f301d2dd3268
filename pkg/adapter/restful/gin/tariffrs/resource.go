// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package tariffrs realizes the tariff resource, allowing the tariff
// fetching and replacement REST APIs to be accepted and delegated to
// the application use case properly.
package tariffrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/parkade/pkg/core/usecase/appuc"
)

type resource struct {
	app *appuc.UseCase
}

// Register instantiates a resource adapting the app use case instance
// with the relevant REST APIs including:
//  1. PUT request to /api/parkade/v1/tariff
//     in order to replace the tariff of the new sessions,
//  2. GET request to /api/parkade/v1/tariff
//     in order to fetch the current tariff.
func Register(r *gin.RouterGroup, app *appuc.UseCase) {
	rs := &resource{app: app}
	r.PUT("tariff", rs.UpdateTariff)
	r.GET("tariff", rs.FetchTariff)
}

func (rs *resource) UpdateTariff(c *gin.Context) {
	t, ok := rs.DserUpdateTariffReq(c)
	if !ok {
		return
	}
	t, err := rs.app.UpdateTariff(c, *t)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (rs *resource) FetchTariff(c *gin.Context) {
	c.JSON(http.StatusOK, rs.app.Tariff())
}
