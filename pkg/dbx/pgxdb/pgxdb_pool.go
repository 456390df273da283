package pgxdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcodd23/go-todo-service/pkg/dbx"
	"github.com/marcodd23/go-todo-service/pkg/errorx"
	"github.com/marcodd23/go-todo-service/pkg/logx"
)

const (
	defaultMaxConns = 4
)

// NewConnectionPool - creates the Postgres connection pool. Every connection opened by the pool
// prepares preparedStatements before it is handed out.
func NewConnectionPool(ctx context.Context, dbConf dbx.ConnConfig, preparedStatements ...dbx.PreparedStatement) (*pgxpool.Pool, error) {
	poolConfig, err := createConnectionConfiguration(ctx, dbConf)
	if err != nil {
		return nil, err
	}

	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return setupPreparedStatements(ctx, conn, preparedStatements...)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error creating New Connection Pool")
	}

	logx.
		GetLogger().
		LogInfo(ctx, fmt.Sprintf("Created new Connection Pool: DB=%s, HOST=%s, PORT=%d",
			pool.Config().ConnConfig.Database,
			pool.Config().ConnConfig.Host,
			pool.Config().ConnConfig.Port))

	return pool, nil
}

func createConnectionConfiguration(ctx context.Context, dbConf dbx.ConnConfig) (*pgxpool.Config, error) {
	if dbConf.Url != "" {
		poolConfig, err := pgxpool.ParseConfig(dbConf.Url)
		if err != nil {
			return nil, errorx.NewDatabaseErrorWrapper(err, "Error parsing the database url")
		}

		applyPoolSizing(poolConfig, dbConf)

		return poolConfig, nil
	}

	if dbConf.DBName == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_Name is EMPTY")
	}

	if dbConf.User == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_User is EMPTY")
	}

	if dbConf.Password == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_Password is EMPTY")
	}

	poolConfig, err := pgxpool.ParseConfig("")
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error creating Connection Pool ConnConfig")
	}

	poolConfig.ConnConfig.Database = dbConf.DBName
	poolConfig.ConnConfig.User = dbConf.User
	poolConfig.ConnConfig.Password = dbConf.Password
	applyPoolSizing(poolConfig, dbConf)

	if dbConf.IsLocalEnv || dbConf.VpcDirectConnection {
		// If local we need to specify the port, if not local
		// the port is defined in the Unix Socket configuration
		// mounted in the container at runtime (5432)
		logx.
			GetLogger().
			LogInfo(ctx, fmt.Sprintf("Connecting to DB on HOST:%s and PORT:%d",
				dbConf.Host,
				uint16(dbConf.Port)))
		poolConfig.ConnConfig.Port = uint16(dbConf.Port)
		poolConfig.ConnConfig.Host = dbConf.Host
	} else {
		logx.GetLogger().LogInfo(ctx, "Connecting to DB trough CLOUD SQL PROXY")
		poolConfig.ConnConfig.Host = fmt.Sprintf("/cloudsql/%s", dbConf.Host)
	}

	return poolConfig, nil
}

func applyPoolSizing(poolConfig *pgxpool.Config, dbConf dbx.ConnConfig) {
	poolConfig.MaxConns = defaultMaxConns
	if dbConf.MaxConn > 0 {
		poolConfig.MaxConns = dbConf.MaxConn
	}

	if dbConf.MinConn > 0 {
		poolConfig.MinConns = min(dbConf.MinConn, poolConfig.MaxConns)
	}

	if dbConf.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = dbConf.MaxConnIdleTime
	}

	if dbConf.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = dbConf.HealthCheckPeriod
	}
}

func setupPreparedStatements(ctx context.Context, conn *pgx.Conn, preparedStatements ...dbx.PreparedStatement) error {
	for _, stmt := range preparedStatements {
		_, err := conn.Prepare(ctx, stmt.GetName(), stmt.GetQuery())
		if err != nil {
			return errorx.NewDatabaseErrorWrapper(err, "Failed to prepare statement '%s'", stmt.GetName())
		}
	}

	return nil
}
