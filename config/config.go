package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	HttpServer         *HttpServer `split_words:"true"`
	BoltDB             *BoltDB     `split_words:"true"`
	Database           *Database
	Loader             *Loader
	Store              string   `default:"bolt"`
	Seed               bool     `default:"true"`
	LogLevel           string   `split_words:"true" default:"info"`
	CorsAllowedOrigins []string `split_words:"true" default:"*"`
}

type HttpServer struct {
	Host string `default:""`
	Port uint16 `default:"8088"`
}

func (s *HttpServer) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type BoltDB struct {
	Path    string        `default:"bookloader.db"`
	Timeout time.Duration `default:"5s"`
}

type Database struct {
	DSN        string `default:"host=localhost user=demo password=password dbname=demo port=5432 sslmode=disable"`
	LogQueries bool   `split_words:"true" default:"false"`
	Migrate    bool   `default:"true"`
}

type Loader struct {
	MaxBatch int  `split_words:"true" default:"100"`
	Prefetch bool `default:"false"`
}

func Load(prefix string) (*Config, error) {
	prefix = strings.ToUpper(prefix)
	prefix = strings.ReplaceAll(prefix, "-", "_")
	prefix = strings.ReplaceAll(prefix, " ", "_")
	var config Config
	if err := envconfig.Process(prefix, &config); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}
	switch config.Store {
	case "bolt", "postgres":
	default:
		return nil, errors.Errorf("unknown store %q", config.Store)
	}
	return &config, nil
}
