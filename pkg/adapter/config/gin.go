// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"

	"github.com/momeni/parkade/pkg/adapter/config/settings"
	"github.com/momeni/parkade/pkg/adapter/restful/gin"
)

// Gin contains the gin-gonic related configuration settings.
// Fields are defined as pointers, so it is possible to detect if they
// are or are not initialized.
type Gin struct {
	Logger   *bool  // Whether to register the ginslog middleware
	Recovery *bool  // Whether to register the gin.Recovery() middleware
	Mode     string `yaml:",omitempty"` // debug, release, or test
}

// ValidateAndNormalize enables both middlewares and the release mode
// by default.
func (g *Gin) ValidateAndNormalize() error {
	t := true
	settings.OverwriteNil(&g.Logger, &t)
	settings.OverwriteNil(&g.Recovery, &t)
	switch g.Mode {
	case "":
		g.Mode = "release"
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported gin mode: %q", g.Mode)
	}
	return nil
}

// NewEngine instantiates a new gin-gonic engine instance based on
// the `g` settings.
func (g Gin) NewEngine() *gin.Engine {
	gin.SetMode(g.Mode)
	middlewares := make([]gin.HandlerFunc, 0, 2)
	if *g.Logger {
		middlewares = append(middlewares, gin.Logger())
	}
	if *g.Recovery {
		middlewares = append(middlewares, gin.Recovery())
	}
	return gin.New(middlewares...)
}
