// Package postgres starts a throwaway Postgres container for integration tests.
package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/marcodd23/go-todo-service/pkg/dbx"
	"github.com/marcodd23/go-todo-service/pkg/dbx/pgxdb"
	"github.com/marcodd23/go-todo-service/pkg/httpx"
	"github.com/marcodd23/go-todo-service/pkg/logx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresContainerImage = "docker.io/postgres:16-alpine"
	postgresContainerPort  = "5432/tcp"

	MainDbName     = "todo"
	MainDbUser     = "postgres"
	MainDbPassword = "password"
)

// PostgresContainer represents the postgres Container type used in the module.
type PostgresContainer struct {
	Container  *postgres.PostgresContainer
	MappedPort nat.Port
	Host       string
	DbName     string
	DbUser     string
	DbPassword string
}

// StartPostgresContainer - starts the container and waits until it accepts connections.
// The container is terminated when the test ends.
func StartPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	t.Helper()

	pg, err := postgres.Run(ctx,
		postgresContainerImage,
		postgres.WithDatabase(MainDbName),
		postgres.WithUsername(MainDbUser),
		postgres.WithPassword(MainDbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	require.NotNil(t, pg)

	mappedPort, err := pg.MappedPort(ctx, postgresContainerPort)
	require.NoError(t, err)

	host, err := pg.Host(ctx)
	require.NoError(t, err)

	logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Postgres running at %s:%s", host, mappedPort.Port()))

	c := &PostgresContainer{
		Container:  pg,
		MappedPort: mappedPort,
		Host:       host,
		DbName:     MainDbName,
		DbUser:     MainDbUser,
		DbPassword: MainDbPassword,
	}

	t.Cleanup(func() {
		c.StopContainer(context.Background(), t)
	})

	return c
}

// ConnConfig - connection properties pointing at the container.
func (c *PostgresContainer) ConnConfig() dbx.ConnConfig {
	return dbx.ConnConfig{
		IsLocalEnv: true,
		Host:       c.Host,
		Port:       int32(c.MappedPort.Int()),
		DBName:     c.DbName,
		User:       c.DbUser,
		Password:   c.DbPassword,
		MaxConn:    4,
	}
}

// StopContainer - terminates the container.
func (c *PostgresContainer) StopContainer(ctx context.Context, t *testing.T) {
	logx.GetLogger().LogInfo(ctx, "Terminating the Container ....")

	if err := c.Container.Terminate(ctx); err != nil {
		t.Logf("error terminating the Container: %v", err)
	}
}

// SetupConnectivity - pool and Connectivity against the container. The pool is closed when the test ends.
func SetupConnectivity(ctx context.Context, t *testing.T, c *PostgresContainer, preparedStatements ...dbx.PreparedStatement) *pgxdb.Connectivity {
	t.Helper()

	pool, err := pgxdb.NewConnectionPool(ctx, c.ConnConfig(), preparedStatements...)
	require.NoError(t, err)

	ext := pgxdb.NewConnectivity(pool, httpx.NewClient(nil), pgxdb.WithAcquireTimeout(5*time.Second))
	t.Cleanup(ext.Close)

	waitForDBReady(ctx, t, ext)

	return ext
}

func waitForDBReady(ctx context.Context, t *testing.T, ext *pgxdb.Connectivity) {
	for retries := 0; retries < 20; retries++ {
		err := pgxdb.Ping(ctx, ext)
		if err == nil {
			return
		}
		t.Log(err)
		t.Log("Waiting for database to be ready...")
		time.Sleep(time.Second)
	}

	t.Fatal("Database is not ready after waiting")
}
