// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/momeni/parkade/pkg/adapter/db/postgres"
	"github.com/momeni/parkade/pkg/core/log"
)

// Database contains the database related configuration settings.
// The URL takes precedence if it is not empty. Otherwise, the URL is
// built from the other fields and the password which is read from the
// .pgpass file in the PassDir folder.
type Database struct {
	URL     string `yaml:"url,omitempty"`
	Host    string // domain name or IP address of the DBMS server
	Port    int    // port number of the DBMS server
	Name    string // database name, like parkade
	User    string // role name, like parkade
	PassDir string `yaml:"pass-dir"` // path of the passwords dir
}

// ValidateAndNormalize checks that either URL or all of the host,
// name, user, and pass-dir settings are provided. The default port
// is 5432.
func (d *Database) ValidateAndNormalize() error {
	if d.URL != "" {
		return nil
	}
	if d.Port == 0 {
		d.Port = 5432
	}
	switch {
	case d.Host == "":
		return errors.New("host is required when url is empty")
	case d.Name == "":
		return errors.New("name is required when url is empty")
	case d.User == "":
		return errors.New("user is required when url is empty")
	case d.PassDir == "":
		return errors.New("pass-dir is required when url is empty")
	case d.Port < 1 || d.Port > 65535:
		return fmt.Errorf("invalid port: %d", d.Port)
	}
	return nil
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the `d` settings.
func (d Database) ConnectionPool(ctx context.Context) (*postgres.Pool, error) {
	u := d.URL
	if u == "" {
		path := filepath.Join(d.PassDir, ".pgpass")
		var err error
		u, err = d.ConnectionURL(path)
		if err != nil {
			return nil, fmt.Errorf("using %q pass-file: %w", path, err)
		}
	}
	p, err := postgres.NewPool(ctx, u)
	if err != nil {
		return nil, err
	}
	name, host, port := d.ConnectionInfo()
	log.Info(
		ctx, "connected to database",
		slog.String("name", name),
		slog.String("host", host),
		slog.Int("port", port),
	)
	return p, nil
}

// ConnectionURL reads the password of d.User from the path file which
// should conform with the pgpass format with lines like this:
//
//	host:port:dbname:role:password
//
// and returns the connection URL.
func (d Database) ConnectionURL(path string) (string, error) {
	passLines, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pass-file: %w", err)
	}
	prfx := fmt.Sprintf("%s:%d:%s:%s:", d.Host, d.Port, d.Name, d.User)
	var pass string
	for _, line := range strings.Split(string(passLines), "\n") {
		if line == "" || line[0] == '#' {
			continue
		}
		if strings.HasPrefix(line, prfx) {
			pass = line[len(prfx):]
			break
		}
	}
	if pass == "" {
		return "", fmt.Errorf("no matching password line")
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(d.User, pass),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String(), nil
}

// ConnectionInfo returns the host, port, and database name of the
// connection information which are kept in this Database instance.
// When URL is set, they are parsed from it. An unparsable URL yields
// zero values.
func (d Database) ConnectionInfo() (dbName, host string, port int) {
	if d.URL == "" {
		return d.Name, d.Host, d.Port
	}
	u, err := url.Parse(d.URL)
	if err != nil {
		return "", "", 0
	}
	port, _ = strconv.Atoi(u.Port())
	return strings.TrimPrefix(u.Path, "/"), u.Hostname(), port
}
