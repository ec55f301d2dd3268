// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package queuers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/serdser"
)

type enqueueReq struct {
	Plate       string `json:"plate" binding:"required"`
	OpenBarrier bool   `json:"open_barrier"`
}

type rawRemoveEntryReq struct {
	ID string `uri:"id" binding:"required"`
}

type removeEntryReq struct {
	ID uuid.UUID
}

func (rs *resource) DserEnqueueReq(c *gin.Context) *enqueueReq {
	req := &enqueueReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	return req
}

func (rs *resource) DserRemoveEntryReq(c *gin.Context) *removeEntryReq {
	req := &rawRemoveEntryReq{}
	if ok := serdser.BindUri(c, req); !ok {
		return nil
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		var errs map[string][]string
		serdser.AddErr(&errs, "id", "Path param id is not UUID.")
		c.JSON(http.StatusBadRequest, errs)
		return nil
	}
	return &removeEntryReq{ID: id}
}
