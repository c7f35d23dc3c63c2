package connection

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/quarrydb/quarrydb.go/internal/codec"
	"github.com/quarrydb/quarrydb.go/pkg/constants"
	"github.com/quarrydb/quarrydb.go/pkg/logger"
)

// Config carries everything a connection needs. Build one with NewConfig and
// adjust fields before handing it to a connection constructor.
type Config struct {
	URL         url.URL
	BaseURL     string
	AuthToken   string
	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler
	Logger      logger.Logger
	Timeout     time.Duration
}

// NewConfig creates a Config for the QuarryDB endpoint specified by the URL,
// such as "http://localhost:8080" or "ws://localhost:8080". It is not
// strictly necessary to build a Config through this function, but it ensures
// the codec, timeout and logger defaults are all in place.
func NewConfig(u *url.URL) *Config {
	c := codec.JSON{}
	return &Config{
		URL:         *u,
		Marshaler:   c,
		Unmarshaler: c,
		BaseURL:     fmt.Sprintf("%s://%s", u.Scheme, u.Host),
		Timeout:     constants.DefaultTimeout,
		Logger:      logger.New(slog.NewTextHandler(os.Stdout, nil)),
	}
}
