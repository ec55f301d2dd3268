// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine, so the command package does
// not need to import gin-gonic directly. Resources live in the *rs
// sub-packages and are registered by the routes package.
package gin

import (
	"log/slog"

	ginslog "github.com/FabienMht/ginslog/logger"
	"github.com/gin-gonic/gin"
)

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine

// New creates a gin-gonic engine which uses the given middlewares.
func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.Use(middlewares...)
	return e
}

// SetMode switches gin-gonic between "debug", "release", and "test".
func SetMode(mode string) {
	gin.SetMode(mode)
}

// Logger logs each request with the default slog logger.
func Logger() HandlerFunc {
	return ginslog.New(slog.Default())
}

func Recovery() HandlerFunc {
	return gin.Recovery()
}
