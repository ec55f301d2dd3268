// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package historyrs realizes the history resource, reporting the paid
// sessions and the earnings dashboard.
package historyrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/parkade/pkg/core/usecase/historyuc"
)

type resource struct {
	history *historyuc.UseCase
}

// Register instantiates a resource adapting the history use case with
// the relevant REST APIs including:
//  1. GET request to /api/parkade/v1/history?limit=n
//     in order to list the n most recent paid sessions,
//  2. GET request to /api/parkade/v1/dashboard
//     in order to summarize the earnings.
func Register(r *gin.RouterGroup, history *historyuc.UseCase) {
	rs := &resource{history: history}
	r.GET("history", rs.ListHistory)
	r.GET("dashboard", rs.Dashboard)
}

func (rs *resource) ListHistory(c *gin.Context) {
	limit, ok := serdser.IntQuery(c, "limit", 0)
	if !ok {
		return
	}
	records, err := rs.history.List(c, limit)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serdser.List(records))
}

func (rs *resource) Dashboard(c *gin.Context) {
	d, err := rs.history.Dashboard(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
