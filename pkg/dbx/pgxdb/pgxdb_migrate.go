package pgxdb

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/marcodd23/go-todo-service/pkg/dbx"
	"github.com/marcodd23/go-todo-service/pkg/errorx"
	"github.com/marcodd23/go-todo-service/pkg/logx"
	"github.com/pkg/errors"
)

// RunMigrations - applies every pending migration found in dir of fsys.
// Already applied migrations are skipped.
func RunMigrations(ctx context.Context, dbConf dbx.ConnConfig, fsys fs.FS, dir string) error {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "error opening migrations source '%s'", dir)
	}

	databaseURL, err := migrationURL(dbConf)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "error creating migration instance")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errorx.NewDatabaseErrorWrapper(err, "error running migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errorx.NewDatabaseErrorWrapper(err, "error reading migration version")
	}

	logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Database migrated to version %d (dirty=%t)", version, dirty))

	return nil
}

// migrationURL - the golang-migrate pgx/v5 driver is selected by the pgx5 scheme.
func migrationURL(dbConf dbx.ConnConfig) (string, error) {
	if dbConf.Url != "" {
		for _, scheme := range []string{"postgres://", "postgresql://"} {
			if strings.HasPrefix(dbConf.Url, scheme) {
				return "pgx5://" + strings.TrimPrefix(dbConf.Url, scheme), nil
			}
		}

		return "", errorx.NewDatabaseError("unsupported database url scheme for migrations")
	}

	if dbConf.DBName == "" || dbConf.User == "" {
		return "", errorx.NewDatabaseError("database name and user are required for migrations")
	}

	u := url.URL{
		Scheme: "pgx5",
		User:   url.UserPassword(dbConf.User, dbConf.Password),
		Path:   "/" + dbConf.DBName,
	}

	if dbConf.IsLocalEnv || dbConf.VpcDirectConnection {
		u.Host = fmt.Sprintf("%s:%d", dbConf.Host, dbConf.Port)
		u.RawQuery = "sslmode=disable"
	} else {
		u.RawQuery = url.Values{"host": []string{fmt.Sprintf("/cloudsql/%s", dbConf.Host)}}.Encode()
	}

	return u.String(), nil
}
