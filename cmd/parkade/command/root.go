// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the parkade
// service. Commands are organized using the cobra library.
// The root command starts the reconciliation engine, the device events
// consumer (if configured), and the REST server, while the "db"
// sub-command can be used for the database initialization actions.
//
//	./parkade [-c /path/of/main/config.yaml]           # start server
//	./parkade db init-dev [-c /path/of/main/config.yaml]
//	./parkade db init-prod [-c /path/of/main/config.yaml]
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momeni/parkade/pkg/adapter/config"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/routes"
	"github.com/momeni/parkade/pkg/adapter/restful/gin/wsrs"
	"github.com/momeni/parkade/pkg/core/log"
	"github.com/momeni/parkade/pkg/core/usecase/recouc"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "parkade",
	Short: "Parking facility session reconciliation service",
	Long: `Parking facility session reconciliation service which ingests
the spot sensor and barrier events of a parking facility, matches the
parked vehicles with the plates which were registered at the entry,
and tracks their sessions until the fee is paid.
Device events are consumed from an SQS queue (fed by an AWS IoT rule)
or injected using the REST API. Barrier commands are published to the
AWS IoT data plane. Operators use the REST API and a websocket feed of
notifications.`,
	RunE: startServer,
	Args: cobra.NoArgs,
}

func startServer(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	if _, err = c.Logging.Setup(os.Stderr); err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}
	p, err := c.Database.ConnectionPool(ctx)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()

	hub := wsrs.NewHub(0)
	defer hub.Close()
	var cmdr recouc.Commander
	if !c.Transport.Enabled() {
		log.Warn(
			ctx, "transport.queue-url is empty, devices are not reachable",
		)
	}
	clients, err := transportClients(ctx, c)
	if err != nil {
		return err
	}
	if clients != nil {
		pub, err := c.Transport.NewPublisher(clients)
		if err != nil {
			return fmt.Errorf("creating commands publisher: %w", err)
		}
		cmdr = pub
	}
	e := c.Gin.NewEngine()
	engine, err := routes.Register(ctx, e, p, c.Usecases, hub, cmdr)
	if err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	srv := &http.Server{
		Addr:              c.Listen,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(gctx)
	})
	if clients != nil {
		consumer, err := c.Transport.NewConsumer(clients, engine)
		if err != nil {
			stop()
			_ = g.Wait()
			return fmt.Errorf("creating events consumer: %w", err)
		}
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}
	g.Go(func() error {
		log.Info(
			gctx, "REST server is listening", slog.String("addr", c.Listen),
		)
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("running REST server: %w", err)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down")
		sctx, cancel := context.WithTimeout(
			context.WithoutCancel(gctx), shutdownTimeout,
		)
		defer cancel()
		hub.Close()
		return srv.Shutdown(sctx)
	})
	if err = g.Wait(); err != nil {
		log.Error(ctx, "server is stopped", log.Err("err", err))
		return err
	}
	return nil
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		cfgPath = config.DefaultPath
	}
}
