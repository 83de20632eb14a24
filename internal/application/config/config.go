package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/rolltable/rolltable/internal/domain"
)

type Config struct {
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	Port       string `env:"PORT" envDefault:"3000"`
	MetricPort string `env:"METRIC_PORT" envDefault:"9090"`
	Domain     string `env:"DOMAIN" envDefault:"http://localhost:3000"`
	JWTSecret  string `env:"JWT_SECRET,required"`

	Blob     BlobConfig
	DocStore DocStoreConfig
}

// BlobConfig points at the durable blob store holding the room registry and
// the per-room snapshots.
type BlobConfig struct {
	Path string `env:"BLOB_PATH,required"`
}

// DocStoreConfig holds credentials for the realtime document store.
type DocStoreConfig struct {
	Addr     string `env:"DOCSTORE_ADDR,required"`
	Password string `env:"DOCSTORE_PASSWORD"`
	DB       int    `env:"DOCSTORE_DB" envDefault:"0"`
}

// New parses configuration from the environment. A missing required value
// surfaces as a configuration error naming the variable so operators can
// diagnose a misconfigured deployment.
func New() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	return &c, nil
}
