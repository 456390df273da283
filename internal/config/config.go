// Package config holds the todo-api configuration.
package config

import (
	"time"

	"github.com/marcodd23/go-todo-service/pkg/configmgr"
	"github.com/pkg/errors"
)

const defaultShutdownTimeout = 5 * time.Second

// ServiceConfig - BaseConfig plus the properties only todo-api reads.
/*
shutdownTimeout: 5s
*/
type ServiceConfig struct {
	configmgr.BaseConfig `mapstructure:",squash"`
	ShutdownTimeout      time.Duration `mapstructure:"shutdownTimeout"`
}

// Load reads property[-<env>].yaml from searchPath, overridden by environment variables.
func Load(searchPath string) (*ServiceConfig, error) {
	var cfg ServiceConfig

	if err := configmgr.LoadConfigFromPathForEnv(searchPath, &cfg); err != nil {
		return nil, errors.Wrap(err, "error loading property files")
	}

	if cfg.GetDatabaseConfig() == nil {
		return nil, errors.New("missing 'database' configuration")
	}

	return &cfg, nil
}

// GetShutdownTimeout - time granted to the cleanup once a shutdown signal arrives.
func (cfg ServiceConfig) GetShutdownTimeout() time.Duration {
	if cfg.ShutdownTimeout <= 0 {
		return defaultShutdownTimeout
	}

	return cfg.ShutdownTimeout
}
