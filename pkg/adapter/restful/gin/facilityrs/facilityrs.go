// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package facilityrs realizes the facility resource. It reports the
// mirrored spots, barriers, and mode, and forwards the operator
// commands to the barrier controller.
package facilityrs

import (
	"net/http"

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
// relevant REST APIs including:
//  1. GET request to /api/parkade/v1/facility
//     in order to fetch the spots, doors, and mode states,
//  2. POST request to /api/parkade/v1/facility/commands
//     in order to open/close a barrier or switch the mode,
//  3. PUT request to /api/parkade/v1/facility/network
//     in order to push the wireless settings to the device,
//  4. GET request to /api/parkade/v1/anomalies
//     in order to list the recently reported anomalies.
func Register(r *gin.RouterGroup, engine *recouc.Engine) {
	rs := &resource{engine: engine}
	r.GET("facility", rs.FetchFacility)
	r.POST("facility/commands", rs.SendCommand)
	r.PUT("facility/network", rs.ConfigureNetwork)
	r.GET("anomalies", rs.ListAnomalies)
}

type commandReq struct {
	Command string `json:"command" binding:"required,oneof=open-entry close-entry open-exit close-exit automatic manual"`
}

type networkReq struct {
	SSID     string `json:"ssid" binding:"required,max=32"`
	Password string `json:"password" binding:"max=64"`
}

func (rs *resource) FetchFacility(c *gin.Context) {
	f, err := rs.engine.Facility(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (rs *resource) SendCommand(c *gin.Context) {
	req := &commandReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return
	}
	cmd, err := model.ParseCommand(req.Command)
	if err != nil {
		panic("unexpected command: " + req.Command)
	}
	if err := rs.engine.Command(c, cmd); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"command": req.Command})
}

func (rs *resource) ConfigureNetwork(c *gin.Context) {
	req := &networkReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return
	}
	err := rs.engine.ConfigureNetwork(c, model.NetworkConfig{
		SSID: req.SSID, Password: req.Password,
	})
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"ssid": req.SSID})
}

func (rs *resource) ListAnomalies(c *gin.Context) {
	as, err := rs.engine.Anomalies(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serdser.List(as))
}
