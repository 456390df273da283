package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/marcodd23/go-todo-service/internal/api"
	"github.com/marcodd23/go-todo-service/internal/config"
	"github.com/marcodd23/go-todo-service/internal/domain/todo"
	"github.com/marcodd23/go-todo-service/internal/domain/user"
	"github.com/marcodd23/go-todo-service/internal/metrics"
	"github.com/marcodd23/go-todo-service/internal/persistence"
	"github.com/marcodd23/go-todo-service/pkg/dbx"
	"github.com/marcodd23/go-todo-service/pkg/dbx/pgxdb"
	"github.com/marcodd23/go-todo-service/pkg/httpx"
	"github.com/marcodd23/go-todo-service/pkg/logx"
	"github.com/marcodd23/go-todo-service/pkg/serverx/fibersrv"
	"github.com/marcodd23/go-todo-service/pkg/shutdown"
)

const configSearchPathEnv = "CONFIG_PATH"

func main() {
	rootCtx := context.Background()

	// A missing .env is fine: the environment may already be set.
	_ = godotenv.Load()

	cfg := loadConfiguration()

	logx.SetupLogger(cfg)

	pool := setupDatabase(rootCtx, cfg)
	ext := pgxdb.NewConnectivity(pool, httpx.NewClient(cfg.GetHttpClientConfig()),
		pgxdb.WithTxOptions(dbx.DefaultTxOptions),
		pgxdb.WithAcquireTimeout(cfg.GetDatabaseConfig().AcquireTimeout))

	m := metrics.New()
	m.RegisterPool(metrics.PgxPoolStats(pool))

	handler := api.NewHandler(api.Dependencies{
		Ext:       ext,
		Users:     user.Service{},
		Tasks:     todo.Service{},
		UserStore: persistence.NewUserStore(),
		TaskStore: persistence.NewTaskStore(),
		Metrics:   m,
		Health:    pgxdb.Ping,
	})

	serverManager := fibersrv.NewFiberServer(cfg, fibersrv.WithErrorHandler(api.ErrorHandler))
	serverManager.Setup(rootCtx, func(app *fiber.App) {
		handler.Register(app)
	})

	serverCtx, stopServer := context.WithCancel(rootCtx)
	defer stopServer()

	go func() {
		// The server stopping on its own also triggers the cleanup.
		if err := <-serverManager.RunAsync(); err != nil {
			logx.GetLogger().LogError(rootCtx, "Server stopped", err)
		}
		stopServer()
	}()

	shutdown.WaitForShutdown(serverCtx, cfg.GetShutdownTimeout(), func(timeoutCtx context.Context) {
		serverManager.Shutdown(timeoutCtx)
		ext.Close()
	})
}

func loadConfiguration() *config.ServiceConfig {
	searchPath := os.Getenv(configSearchPathEnv)
	if searchPath == "" {
		searchPath = "./config"
	}

	cfg, err := config.Load(searchPath)
	if err != nil {
		log.Panicf("error loading property files: %+v", err)
	}

	return cfg
}

// setupDatabase - migrates the schema when enabled and opens the pool.
func setupDatabase(ctx context.Context, cfg *config.ServiceConfig) *pgxpool.Pool {
	connConfig := dbx.NewConnConfig(cfg)

	if cfg.GetDatabaseConfig().Migrate {
		if err := pgxdb.RunMigrations(ctx, connConfig, persistence.Migrations, persistence.MigrationsDir); err != nil {
			logx.GetLogger().LogFatal(ctx, "Error migrating the database", err)
		}
	}

	pool, err := pgxdb.NewConnectionPool(ctx, connConfig, persistence.PreparedStatements...)
	if err != nil {
		logx.GetLogger().LogFatal(ctx, "Error creating the connection pool", err)
	}

	return pool
}
