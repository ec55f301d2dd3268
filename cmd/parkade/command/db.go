// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"
	"os"

	"github.com/momeni/parkade/pkg/adapter/config"
	"github.com/momeni/parkade/pkg/adapter/db/postgres/historyrp"
	"github.com/momeni/parkade/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/parkade/pkg/adapter/db/postgres/tariffsrp"
	"github.com/momeni/parkade/pkg/core/usecase/migrationuc"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions can be chosen by sub-commands.
For fresh installation in a development or production environment,
the init-dev or init-prod may be used.`,
}

var initDevCmd = &cobra.Command{
	Use:   "init-dev",
	Short: "Initialize database contents with development suitable data",
	Long: `Initialize database contents with development suitable data.
All parkade tables are dropped (if they exist) and created again in one
transaction. The configured tariff is stored and a few archived sessions
of the current and previous months are created, so the history and
dashboard APIs have some data to show.
The database connection information are read from the config file.`,
	RunE: initDB((*migrationuc.InitDBUseCase).InitDev),
	Args: cobra.NoArgs,
}

var initProdCmd = &cobra.Command{
	Use:   "init-prod",
	Short: "Initialize database contents with production suitable data",
	Long: `Initialize database contents with production suitable data.
All parkade tables are dropped (if they exist) and created again in one
transaction. The only stored record is the configured tariff.
The database connection information are read from the config file.`,
	RunE: initDB((*migrationuc.InitDBUseCase).InitProd),
	Args: cobra.NoArgs,
}

func initDB(
	action func(*migrationuc.InitDBUseCase, context.Context) error,
) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()
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
		muc := migrationuc.NewInitDB(
			p, schemarp.New(), tariffsrp.New(), historyrp.New(),
			c.Usecases.Tariff.Model(),
		)
		if err = action(muc, ctx); err != nil {
			return fmt.Errorf("initializing DB: %w", err)
		}
		return nil
	}
}

func init() {
	dbCmd.AddCommand(initDevCmd)
	dbCmd.AddCommand(initProdCmd)
	rootCmd.AddCommand(dbCmd)
}
