// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sessionsrs realizes the sessions resource, allowing the
// operators to list the parked vehicles, quote their fees, freeze
// their exit times, and confirm their payments.
package sessionsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/parkade/pkg/core/usecase/recouc"
)

type resource struct {
	engine *recouc.Engine
}

// Register instantiates a resource adapting the engine with the
// relevant REST APIs including:
//  1. GET request to /api/parkade/v1/sessions
//     in order to list the active sessions,
//  2. GET request to /api/parkade/v1/sessions/:plate/quote
//     in order to compute the fee which would be paid now,
//  3. POST request to /api/parkade/v1/sessions/:plate/exit
//     in order to freeze the exit time of a session,
//  4. POST request to /api/parkade/v1/sessions/:plate/payment
//     in order to confirm the payment, archive the session, and
//     open the exit barrier.
//
// The plate path param is normalized, so "abc-123" finds ABC123.
func Register(r *gin.RouterGroup, engine *recouc.Engine) {
	rs := &resource{engine: engine}
	r.GET("sessions", rs.ListSessions)
	r.GET("sessions/:plate/quote", rs.Quote)
	r.POST("sessions/:plate/exit", rs.FreezeExit)
	r.POST("sessions/:plate/payment", rs.ConfirmPayment)
}

type plateReq struct {
	Plate string `uri:"plate" binding:"required"`
}

func (rs *resource) dserPlate(c *gin.Context) (string, bool) {
	req := &plateReq{}
	if ok := serdser.BindUri(c, req); !ok {
		return "", false
	}
	return req.Plate, true
}

func (rs *resource) ListSessions(c *gin.Context) {
	ss, err := rs.engine.Sessions(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serdser.List(ss))
}

func (rs *resource) Quote(c *gin.Context) {
	plate, ok := rs.dserPlate(c)
	if !ok {
		return
	}
	q, err := rs.engine.Quote(c, plate)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (rs *resource) FreezeExit(c *gin.Context) {
	plate, ok := rs.dserPlate(c)
	if !ok {
		return
	}
	s, err := rs.engine.FreezeExit(c, plate)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (rs *resource) ConfirmPayment(c *gin.Context) {
	plate, ok := rs.dserPlate(c)
	if !ok {
		return
	}
	r, err := rs.engine.ConfirmPayment(c, plate)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
