package configmgr

import "time"

// Config - config interface.
type Config interface {
	GetServiceName() string
	GetVersion() string
	GetEnvironment() string
	GetServerConfig() *ServerConfig
	GetLoggingConfig() *LoggingConfig
	GetDatabaseConfig() *DatabaseConfig
	GetHttpClientConfig() *HttpClientConfig
	IsLocalEnvironment() bool
}

// BaseConfig - app config struct.
// This struct represents the base configuration for the application and is expected to be in the following YAML format:
/*
name: "todo-api"
environment: "local"
version: "1.0"
logging:
  level: "debug"
server:
  port: "8080"
  concurrency: 256
  disableStartupMsg: false
database:
  host: localhost
  port: 5432
  name: todo
  user: postgres
  password: sample123
  minConn: 2
  maxConn: 16
  acquireTimeout: 2s
  maxConnIdleTime: 5m
  healthCheckPeriod: 1m
  migrate: true
httpClient:
  baseUrl: "https://api.example.com"
  timeout: 5s
  userAgent: "todo-api"
*/
type BaseConfig struct {
	Name        string            `mapstructure:"name"`
	Environment string            `mapstructure:"environment"`
	Version     string            `mapstructure:"version"`
	Logging     *LoggingConfig    `mapstructure:"logging"`
	Server      *ServerConfig     `mapstructure:"server"`
	Database    *DatabaseConfig   `mapstructure:"database"`
	HttpClient  *HttpClientConfig `mapstructure:"httpClient"`
}

type ServerConfig struct {
	Port                  string `mapstructure:"port"`
	Concurrency           int    `mapstructure:"concurrency"`
	DisableStartupMessage bool   `mapstructure:"disableStartupMsg"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig - connection and pool sizing properties.
// When Url is set it takes precedence over the single connection fields.
type DatabaseConfig struct {
	Url                 string        `mapstructure:"url"`
	Host                string        `mapstructure:"host"`
	Port                int32         `mapstructure:"port"`
	Name                string        `mapstructure:"name"`
	User                string        `mapstructure:"user"`
	Password            string        `mapstructure:"password"`
	MinConn             int32         `mapstructure:"minConn"`
	MaxConn             int32         `mapstructure:"maxConn"`
	AcquireTimeout      time.Duration `mapstructure:"acquireTimeout"`
	MaxConnIdleTime     time.Duration `mapstructure:"maxConnIdleTime"`
	HealthCheckPeriod   time.Duration `mapstructure:"healthCheckPeriod"`
	VpcDirectConnection bool          `mapstructure:"vpcDirectConnection"`
	Migrate             bool          `mapstructure:"migrate"`
}

// HttpClientConfig - outbound HTTP client properties.
type HttpClientConfig struct {
	BaseUrl   string        `mapstructure:"baseUrl"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"userAgent"`
}

func (cfg BaseConfig) GetServiceName() string {
	return cfg.Name
}

func (cfg BaseConfig) GetVersion() string {
	return cfg.Version
}

func (cfg BaseConfig) GetEnvironment() string {
	return cfg.Environment
}

func (cfg BaseConfig) IsLocalEnvironment() bool {
	return checkIfLocalEnv(cfg.Environment)
}

func (cfg BaseConfig) GetServerConfig() *ServerConfig {
	return cfg.Server
}

func (cfg BaseConfig) GetLoggingConfig() *LoggingConfig {
	return cfg.Logging
}

func (cfg BaseConfig) GetDatabaseConfig() *DatabaseConfig {
	return cfg.Database
}

func (cfg BaseConfig) GetHttpClientConfig() *HttpClientConfig {
	return cfg.HttpClient
}
