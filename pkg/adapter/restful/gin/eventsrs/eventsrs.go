// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package eventsrs realizes the events resource which injects physical
// events into the engine as if they were reported by the device. It
// is used by simulators and for manual tests.
package eventsrs

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/parkade/pkg/core/model"
	"github.com/momeni/parkade/pkg/core/usecase/recouc"
)

type resource struct {
	engine *recouc.Engine
}

// Register instantiates a resource adapting the engine with the
// POST request to /api/parkade/v1/events which waits until the
// event is processed.
func Register(r *gin.RouterGroup, engine *recouc.Engine) {
	rs := &resource{engine: engine}
	r.POST("events", rs.InjectEvent)
}

type eventReq struct {
	Kind      string     `json:"kind" binding:"required,oneof=spot-reading entry-detected vehicle-parked exit-detected spot-freed entry-door exit-door mode"`
	SpotID    int        `json:"spot_id" binding:"min=0"`
	Occupied  bool       `json:"occupied"`
	Distance  float64    `json:"distance"`
	Open      bool       `json:"open"`
	Automatic bool       `json:"automatic"`
	Timestamp *time.Time `json:"timestamp"`
}

func (rs *resource) DserEventReq(c *gin.Context) *model.Event {
	req := &eventReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	kind, err := model.ParseEventKind(req.Kind)
	if err != nil {
		panic("unexpected event kind: " + req.Kind)
	}
	ev := &model.Event{
		Kind:      kind,
		SpotID:    req.SpotID,
		Occupied:  req.Occupied,
		Distance:  req.Distance,
		Open:      req.Open,
		Automatic: req.Automatic,
	}
	if kind.NeedsSpot() && req.SpotID == 0 {
		var errs map[string][]string
		serdser.AddErr(&errs, "spot_id", "The kind="+req.Kind+" requires spot_id.")
		c.JSON(http.StatusBadRequest, errs)
		return nil
	}
	if req.Timestamp != nil {
		ev.Timestamp = *req.Timestamp
	}
	return ev
}

func (rs *resource) InjectEvent(c *gin.Context) {
	ev := rs.DserEventReq(c)
	if ev == nil {
		return
	}
	if err := rs.engine.Submit(c, *ev); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
