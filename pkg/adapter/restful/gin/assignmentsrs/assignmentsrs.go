// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package assignmentsrs realizes the spot assignments resource. When
// more than one vehicle is queued, an occupied spot cannot be matched
// automatically and an operator picks the parked vehicle.
package assignmentsrs

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/parkade/pkg/core/usecase/recouc"
)

type resource struct {
	engine *recouc.Engine
}

// Register instantiates a resource adapting the engine with the
// relevant REST APIs including:
//  1. GET request to /api/parkade/v1/assignments
//     in order to list the open assignment prompts,
//  2. POST request to /api/parkade/v1/assignments
//     in order to assign a queued vehicle to a spot.
func Register(r *gin.RouterGroup, engine *recouc.Engine) {
	rs := &resource{engine: engine}
	r.GET("assignments", rs.ListPrompts)
	r.POST("assignments", rs.Assign)
}

type assignReq struct {
	EntryID    string     `json:"entry_id" binding:"required,uuid"`
	SpotID     int        `json:"spot_id" binding:"required,min=1"`
	DetectedAt *time.Time `json:"detected_at"`
}

func (rs *resource) ListPrompts(c *gin.Context) {
	ps, err := rs.engine.Prompts(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serdser.List(ps))
}

func (rs *resource) Assign(c *gin.Context) {
	req := &assignReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return
	}
	var at time.Time
	if req.DetectedAt != nil {
		at = *req.DetectedAt
	}
	s, err := rs.engine.ResolveAmbiguous(
		c, uuid.MustParse(req.EntryID), req.SpotID, at,
	)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}
