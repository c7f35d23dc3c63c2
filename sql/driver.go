// Package sql exposes the QuarryDB client as a database/sql driver named
// "quarrydb".
//
// The DSN is the endpoint URL, with credentials and tuning in the query
// string:
//
//	http://db.example.com:8080?authToken=...&timeout=5s
package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"net/url"
	"time"

	"github.com/quarrydb/quarrydb.go"
	"github.com/quarrydb/quarrydb.go/pkg/connection"
)

const DriverName = "quarrydb"

func init() {
	sql.Register(DriverName, &Driver{})
}

type Driver struct{}

// Open establishes a new connection to QuarryDB.
func (d *Driver) Open(name string) (driver.Conn, error) {
	connector, err := d.OpenConnector(name)
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.Background())
}

// OpenConnector parses the DSN into a reusable connector.
func (d *Driver) OpenConnector(name string) (driver.Connector, error) {
	u, err := url.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported value: %s - %w", name, err)
	}

	query := u.Query()
	authToken := query.Get("authToken")
	var timeout time.Duration
	if raw := query.Get("timeout"); raw != "" {
		timeout, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", raw, err)
		}
	}

	// The endpoint itself carries no credentials or options.
	u.RawQuery = ""
	u.User = nil

	conf := connection.NewConfig(u)
	conf.AuthToken = authToken
	if timeout > 0 {
		conf.Timeout = timeout
	}

	return &connector{driver: d, conf: conf}, nil
}

type connector struct {
	driver *Driver
	conf   *connection.Config
}

func (c *connector) Connect(ctx context.Context) (driver.Conn, error) {
	db, err := quarrydb.NewWithConfig(ctx, c.conf)
	if err != nil {
		return nil, err
	}
	return &Conn{db: db}, nil
}

func (c *connector) Driver() driver.Driver {
	return c.driver
}
