// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package queuers realizes the entry queue resource, allowing the
// operators to register the plates of arriving vehicles and to remove
// the mistaken entries.
package queuers

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
//  1. GET request to /api/parkade/v1/queue
//     in order to list the pending entries in their arrival order,
//  2. POST request to /api/parkade/v1/queue
//     in order to register a plate (and optionally open the entry),
//  3. DELETE request to /api/parkade/v1/queue/:id
//     in order to remove a pending entry.
func Register(r *gin.RouterGroup, engine *recouc.Engine) {
	rs := &resource{engine: engine}
	r.GET("queue", rs.ListEntries)
	r.POST("queue", rs.Enqueue)
	r.DELETE("queue/:id", rs.RemoveEntry)
}

func (rs *resource) ListEntries(c *gin.Context) {
	es, err := rs.engine.Queue(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serdser.List(es))
}

func (rs *resource) Enqueue(c *gin.Context) {
	req := rs.DserEnqueueReq(c)
	if req == nil {
		return
	}
	pe, err := rs.engine.Enqueue(c, req.Plate, req.OpenBarrier)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, pe)
}

func (rs *resource) RemoveEntry(c *gin.Context) {
	req := rs.DserRemoveEntryReq(c)
	if req == nil {
		return
	}
	pe, err := rs.engine.RemoveEntry(c, req.ID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, pe)
}
