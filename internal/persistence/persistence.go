// Package persistence implements the user and task driven ports on Postgres.
// Every store borrows its connection from the ExternalConnectivity it is
// given, so the same store works on the pool and inside a transaction.
package persistence

import (
	"embed"

	"github.com/Masterminds/squirrel"
	"github.com/marcodd23/go-todo-service/pkg/dbx"
)

// Migrations - schema migrations, applied with pgxdb.RunMigrations(ctx, conf, Migrations, MigrationsDir).
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"

const (
	userTable = "todo_user"
	taskTable = "todo_item"

	stmtUserWithNameExists = "userWithNameExists"
)

// PreparedStatements - statements to register on every pooled connection.
var PreparedStatements = []dbx.PreparedStatement{
	dbx.NewPreparedStatement(stmtUserWithNameExists,
		"SELECT count(*) FROM todo_user tu WHERE tu.first_name = $1 AND tu.last_name = $2"),
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func mustColumns[T any](entity T) []string {
	columns, err := dbx.DeriveColumnNamesFromTags(entity, "db")
	if err != nil {
		panic(err)
	}

	return columns
}
