package configmgr_test

import (
	"os"
	"testing"
	"time"

	"github.com/marcodd23/go-todo-service/pkg/configmgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Shared configuration content
var configContent = `
name: "todo-api"
environment: "development"
version: "latest"
logging:
  level: "debug"
server:
  port: "8080"
  concurrency: 10
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
  userAgent: "todo-api/test"
`

type TestConfiguration struct {
	configmgr.BaseConfig `mapstructure:",squash"`
}

func createTestConfigFile(t *testing.T, content string) string {
	file, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	defer file.Close()

	_, err = file.WriteString(content)
	if err != nil {
		t.Fatalf("Failed to write to temp config file: %v", err)
	}

	return file.Name()
}

func TestLoadConfigFromFile(t *testing.T) {
	configFilePath := createTestConfigFile(t, configContent)
	defer os.Remove(configFilePath)

	var cfg TestConfiguration
	err := configmgr.ReadConfiguration(configFilePath, &cfg)
	require.NoError(t, err)
	assert.Equal(t, "todo-api", cfg.GetServiceName())
	assert.Equal(t, "development", cfg.GetEnvironment())
	assert.True(t, cfg.IsLocalEnvironment())
	require.NotNil(t, cfg.Logging)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.NotNil(t, cfg.Server)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.Concurrency)
	assert.Equal(t, false, cfg.Server.DisableStartupMessage)
}

func TestLoadDatabaseAndHttpClientConfig(t *testing.T) {
	configFilePath := createTestConfigFile(t, configContent)
	defer os.Remove(configFilePath)

	var cfg TestConfiguration
	err := configmgr.ReadConfiguration(configFilePath, &cfg)
	require.NoError(t, err)

	db := cfg.GetDatabaseConfig()
	require.NotNil(t, db)
	assert.Equal(t, "localhost", db.Host)
	assert.Equal(t, int32(5432), db.Port)
	assert.Equal(t, "todo", db.Name)
	assert.Equal(t, int32(2), db.MinConn)
	assert.Equal(t, int32(16), db.MaxConn)
	assert.Equal(t, 2*time.Second, db.AcquireTimeout)
	assert.Equal(t, 5*time.Minute, db.MaxConnIdleTime)
	assert.Equal(t, time.Minute, db.HealthCheckPeriod)
	assert.True(t, db.Migrate)

	httpCfg := cfg.GetHttpClientConfig()
	require.NotNil(t, httpCfg)
	assert.Equal(t, "https://api.example.com", httpCfg.BaseUrl)
	assert.Equal(t, 5*time.Second, httpCfg.Timeout)
	assert.Equal(t, "todo-api/test", httpCfg.UserAgent)
}

func TestEnvVariableOverridesConfig(t *testing.T) {
	configFilePath := createTestConfigFile(t, configContent)
	defer os.Remove(configFilePath)

	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_MAXCONN", "32")

	var cfg TestConfiguration
	err := configmgr.ReadConfiguration(configFilePath, &cfg)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port) // Expecting overridden value
	assert.Equal(t, 10, cfg.Server.Concurrency)
	assert.Equal(t, int32(32), cfg.Database.MaxConn)
}

func TestDatabaseUrlFromEnvironment(t *testing.T) {
	configFilePath := createTestConfigFile(t, configContent)
	defer os.Remove(configFilePath)

	t.Setenv("DATABASE_URL", "postgres://postgres:secret@db:5432/todo")

	var cfg TestConfiguration
	err := configmgr.ReadConfiguration(configFilePath, &cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres://postgres:secret@db:5432/todo", cfg.Database.Url)
}
