// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all repo, use case, and resource
// packages based on the user provided configuration settings.
package routes

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/momeni/parkade/pkg/adapter/config"
	"github.com/momeni/parkade/pkg/adapter/db/postgres/historyrp"
	"github.com/momeni/parkade/pkg/adapter/db/postgres/queuerp"
	"github.com/momeni/parkade/pkg/adapter/db/postgres/sessionsrp"
	"github.com/momeni/parkade/pkg/adapter/db/postgres/tariffsrp"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/assignmentsrs"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/eventsrs"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/facilityrs"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/historyrs"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/queuers"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/sessionsrs"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/tariffrs"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/wsrs"
	"github.com/momeni/parkade/pkg/core/repo"
	"github.com/momeni/parkade/pkg/core/usecase/recouc"
)

// Register instantiates relevant repositories and use cases based on
// the u configuration settings. The p connections pool is passed to
// the use case instances, so they may acquire/release connections
// and transactions on demand. These connections/transactions will be
// passed to the repositories later in order to run relevant queries on
// them and accomplish those use cases. Each use case package is named
// like historyuc and each repository package is named like historyrp.
// Register instantiates a series of "resource" structs, from packages
// which are named like historyrs, in order to adapt the use cases
// interfaces with the REST APIs. These resources are registered as
// request handlers using the e gin-gonic engine instance.
//
// The hub receives the engine notifications and serves them on the
// websocket endpoint. The cmd may be nil if no barrier controller is
// reachable, so commands are only logged.
// The returned engine is not running yet. Its Run method must be
// called (e.g., in a new goroutine) before serving the requests.
func Register(
	ctx context.Context,
	e *gin.Engine,
	p repo.Pool,
	u config.Usecases,
	hub *wsrs.Hub,
	cmd recouc.Commander,
) (*recouc.Engine, error) {
	tariffsRepo := tariffsrp.New()
	historyRepo := historyrp.New()

	appUseCase, err := u.NewAppUseCase(p, tariffsRepo)
	if err != nil {
		return nil, fmt.Errorf("creating application use case: %w", err)
	}
	err = appUseCase.Reload(ctx)
	if err != nil {
		return nil, fmt.Errorf("reloading tariff from DB: %w", err)
	}
	opts := []recouc.Option{recouc.WithNotifier(hub)}
	if cmd != nil {
		opts = append(opts, recouc.WithCommander(cmd))
	}
	engine, err := u.NewEngine(
		p, queuerp.New(), sessionsrp.New(), historyRepo, appUseCase,
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("creating reconciliation engine: %w", err)
	}
	historyUseCase, err := u.NewHistoryUseCase(p, historyRepo)
	if err != nil {
		return nil, fmt.Errorf("creating history use case: %w", err)
	}
	r := e.Group("/api/parkade/v1")
	queuers.Register(r, engine)
	assignmentsrs.Register(r, engine)
	sessionsrs.Register(r, engine)
	facilityrs.Register(r, engine)
	eventsrs.Register(r, engine)
	tariffrs.Register(r, appUseCase)
	historyrs.Register(r, historyUseCase)
	hub.Register(r)
	return engine, nil
}
