package persistence

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/marcodd23/go-todo-service/internal/domain/user"
	"github.com/marcodd23/go-todo-service/pkg/dbx/pgxdb"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/pkg/errors"
)

type userRow struct {
	ID        int32  `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}

func (r userRow) toDomain() user.TodoUser {
	return user.TodoUser{ID: r.ID, FirstName: r.FirstName, LastName: r.LastName}
}

var userColumns = mustColumns(userRow{})

// UserStore - implements user.Reader, user.Writer and user.Detector.
type UserStore struct {
	builder squirrel.StatementBuilderType
}

var (
	_ user.Reader   = (*UserStore)(nil)
	_ user.Writer   = (*UserStore)(nil)
	_ user.Detector = (*UserStore)(nil)
)

func NewUserStore() *UserStore {
	return &UserStore{builder: newBuilder()}
}

func (s *UserStore) allQuery() (string, []any, error) {
	return s.builder.Select(userColumns...).From(userTable).OrderBy("id").ToSql()
}

func (s *UserStore) All(ctx context.Context, ext extconn.ExternalConnectivity) ([]user.TodoUser, error) {
	query, args, err := s.allQuery()
	if err != nil {
		return nil, errors.Wrap(err, "building users query")
	}

	rows, err := extconn.WithConnection(ctx, ext, func(ctx context.Context, conn extconn.Conn) ([]userRow, error) {
		return pgxdb.QueryAndMap[userRow](ctx, conn, query, args...)
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetching all users")
	}

	users := make([]user.TodoUser, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}

	return users, nil
}

func (s *UserStore) byIDQuery(id int32) (string, []any, error) {
	return s.builder.Select(userColumns...).From(userTable).Where(squirrel.Eq{"id": id}).ToSql()
}

func (s *UserStore) ByID(ctx context.Context, ext extconn.ExternalConnectivity, id int32) (*user.TodoUser, error) {
	query, args, err := s.byIDQuery(id)
	if err != nil {
		return nil, errors.Wrap(err, "building user query")
	}

	var found *user.TodoUser
	err = ext.DatabaseCxn(ctx, func(ctx context.Context, handle extconn.ConnectionHandle) error {
		row, ok, err := pgxdb.QueryOne[userRow](ctx, handle.BorrowConnection(), query, args...)
		if ok {
			u := row.toDomain()
			found = &u
		}

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetching a user by id")
	}

	return found, nil
}

func (s *UserStore) insertQuery(newUser user.CreateUser) (string, []any, error) {
	return s.builder.Insert(userTable).
		Columns("first_name", "last_name").
		Values(newUser.FirstName, newUser.LastName).
		Suffix("RETURNING id").
		ToSql()
}

func (s *UserStore) CreateUser(ctx context.Context, ext extconn.ExternalConnectivity, newUser user.CreateUser) (int32, error) {
	query, args, err := s.insertQuery(newUser)
	if err != nil {
		return 0, errors.Wrap(err, "building user insert")
	}

	id, err := extconn.WithConnection(ctx, ext, func(ctx context.Context, conn extconn.Conn) (int32, error) {
		return pgxdb.QueryScalar[int32](ctx, conn, query, args...)
	})
	if err != nil {
		return 0, errors.Wrap(err, "inserting new user")
	}

	return id, nil
}

func (s *UserStore) existsQuery(userID int32) (string, []any, error) {
	return s.builder.Select("count(*)").From(userTable).Where(squirrel.Eq{"id": userID}).ToSql()
}

func (s *UserStore) UserExists(ctx context.Context, ext extconn.ExternalConnectivity, userID int32) (bool, error) {
	query, args, err := s.existsQuery(userID)
	if err != nil {
		return false, errors.Wrap(err, "building user detection query")
	}

	count, err := extconn.WithConnection(ctx, ext, func(ctx context.Context, conn extconn.Conn) (int64, error) {
		return pgxdb.QueryScalar[int64](ctx, conn, query, args...)
	})
	if err != nil {
		return false, errors.Wrap(err, "detecting user with ID")
	}

	return count > 0, nil
}

func (s *UserStore) UserWithNameExists(ctx context.Context, ext extconn.ExternalConnectivity, description user.Description) (bool, error) {
	count, err := extconn.WithConnection(ctx, ext, func(ctx context.Context, conn extconn.Conn) (int64, error) {
		return pgxdb.QueryScalar[int64](ctx, conn, stmtUserWithNameExists, description.FirstName, description.LastName)
	})
	if err != nil {
		return false, errors.Wrap(err, "detecting user via name")
	}

	return count > 0, nil
}
