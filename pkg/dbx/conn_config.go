package dbx

import (
	"time"

	"github.com/marcodd23/go-todo-service/pkg/configmgr"
)

// ConnConfig represents the configuration required for database connection.
type ConnConfig struct {
	// Url is a postgres connection string. When set, the single connection fields are ignored.
	Url                 string
	VpcDirectConnection bool
	Host                string
	Port                int32
	DBName              string
	User                string
	Password            string
	MinConn             int32
	MaxConn             int32
	MaxConnIdleTime     time.Duration
	HealthCheckPeriod   time.Duration
	IsLocalEnv          bool
}

// NewConnConfig - builds the ConnConfig from the service database properties.
func NewConnConfig(cfg configmgr.Config) ConnConfig {
	db := cfg.GetDatabaseConfig()
	if db == nil {
		return ConnConfig{IsLocalEnv: cfg.IsLocalEnvironment()}
	}

	return ConnConfig{
		Url:                 db.Url,
		VpcDirectConnection: db.VpcDirectConnection,
		Host:                db.Host,
		Port:                db.Port,
		DBName:              db.Name,
		User:                db.User,
		Password:            db.Password,
		MinConn:             db.MinConn,
		MaxConn:             db.MaxConn,
		MaxConnIdleTime:     db.MaxConnIdleTime,
		HealthCheckPeriod:   db.HealthCheckPeriod,
		IsLocalEnv:          cfg.IsLocalEnvironment(),
	}
}
