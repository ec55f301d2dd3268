// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files from its users and allows the parkade to instantiate different
// components, from the adapter or use cases layers, using those loaded
// configuration settings.
// Settings are read from the yaml file first. Thereafter, a .env file
// (if any) is loaded into the process environment and the environment
// variables override the file settings. At last, the settings are
// validated and their missing items take their default values.
// The parsed and validated configurations are passed to their ultimate
// components as a series of individual params (for the mandatory
// items) and a series of functional options (for the optional items).
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/momeni/parkade/pkg/core/log"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither the -c flag nor the CONFIG_FILE
// environment variable specify the configuration file path.
const DefaultPath = "configs/sample-config.yaml"

// DefaultListen is the default listening address of the REST server.
const DefaultListen = ":8080"

// Config contains all settings which are required by different parts
// of the project, such as adapters or use cases.
type Config struct {
	Database  Database  // PostgreSQL database connection settings
	Gin       Gin       // Gin-Gonic instantiation settings
	Listen    string    // host:port of the REST server
	Logging   Logging   // slog handler settings
	Transport Transport // device events and commands transport
	Usecases  Usecases  // Supported use cases configuration settings
}

// Logging contains the structured logging settings.
type Logging struct {
	Level  string // debug, info, warn, or error
	Format string // text or json
}

// Setup installs the default slog logger as configured.
func (l Logging) Setup(w io.Writer) (*slog.Logger, error) {
	return log.Setup(w, l.Level, l.Format)
}

// Load function loads the path configuration file, applies the
// environment overrides, and validates and normalizes the result.
// The .env file in the working directory is loaded before the
// environment is consulted, without overwriting the variables which
// are set already. A missing .env file is ignored.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}
	return Parse(data, os.LookupEnv)
}

// Parse unmarshals the data byte slice as a Config instance, overrides
// its settings with the environment variables which are looked up by
// the lookup function, and validates it.
// Extra items in the data will be ignored and missing items will take
// their default values.
func Parse(
	data []byte, lookup func(key string) (string, bool),
) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	c.override(lookup)
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

func (c *Config) override(lookup func(key string) (string, bool)) {
	for _, o := range []struct {
		key string
		dst *string
	}{
		{"DATABASE_URL", &c.Database.URL},
		{"AWS_REGION", &c.Transport.Region},
		{"PARKADE_SQS_QUEUE_URL", &c.Transport.QueueURL},
		{"PARKADE_IOT_ENDPOINT", &c.Transport.IoTEndpoint},
		{"PARKADE_LISTEN", &c.Listen},
		{"PARKADE_LOG_LEVEL", &c.Logging.Level},
	} {
		if v, ok := lookup(o.key); ok && v != "" {
			*o.dst = v
		}
	}
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. It can also modify
// settings in order to normalize them or replace some zero values with
// their expected default values (if any).
func (c *Config) ValidateAndNormalize() error {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if err := c.Database.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating database settings: %w", err)
	}
	if err := c.Gin.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating gin settings: %w", err)
	}
	if err := c.Transport.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating transport settings: %w", err)
	}
	if err := c.Usecases.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating use cases settings: %w", err)
	}
	return nil
}
