package persistence

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/marcodd23/go-todo-service/internal/domain/todo"
	"github.com/marcodd23/go-todo-service/pkg/dbx/pgxdb"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/pkg/errors"
)

type taskRow struct {
	ID          int32  `db:"id"`
	UserID      int32  `db:"user_id"`
	Description string `db:"item_desc"`
}

func (r taskRow) toDomain() todo.TodoTask {
	return todo.TodoTask{ID: r.ID, OwnerUserID: r.UserID, Description: r.Description}
}

var taskColumns = mustColumns(taskRow{})

// TaskStore - implements todo.Reader and todo.Writer.
type TaskStore struct {
	builder squirrel.StatementBuilderType
}

var (
	_ todo.Reader = (*TaskStore)(nil)
	_ todo.Writer = (*TaskStore)(nil)
)

func NewTaskStore() *TaskStore {
	return &TaskStore{builder: newBuilder()}
}

func (s *TaskStore) tasksForUserQuery(userID int32) (string, []any, error) {
	return s.builder.Select(taskColumns...).From(taskTable).Where(squirrel.Eq{"user_id": userID}).OrderBy("id").ToSql()
}

func (s *TaskStore) TasksForUser(ctx context.Context, ext extconn.ExternalConnectivity, userID int32) ([]todo.TodoTask, error) {
	query, args, err := s.tasksForUserQuery(userID)
	if err != nil {
		return nil, errors.Wrap(err, "building tasks query")
	}

	rows, err := extconn.WithConnection(ctx, ext, func(ctx context.Context, conn extconn.Conn) ([]taskRow, error) {
		return pgxdb.QueryAndMap[taskRow](ctx, conn, query, args...)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetching tasks for user %d", userID)
	}

	tasks := make([]todo.TodoTask, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toDomain())
	}

	return tasks, nil
}

func (s *TaskStore) userTaskQuery(userID, taskID int32) (string, []any, error) {
	return s.builder.Select(taskColumns...).
		From(taskTable).
		Where(squirrel.Eq{"id": taskID, "user_id": userID}).
		ToSql()
}

func (s *TaskStore) UserTaskByID(ctx context.Context, ext extconn.ExternalConnectivity, userID, taskID int32) (*todo.TodoTask, error) {
	query, args, err := s.userTaskQuery(userID, taskID)
	if err != nil {
		return nil, errors.Wrap(err, "building task query")
	}

	var found *todo.TodoTask
	err = ext.DatabaseCxn(ctx, func(ctx context.Context, handle extconn.ConnectionHandle) error {
		row, ok, err := pgxdb.QueryOne[taskRow](ctx, handle.BorrowConnection(), query, args...)
		if ok {
			task := row.toDomain()
			found = &task
		}

		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetching task %d of user %d", taskID, userID)
	}

	return found, nil
}

func (s *TaskStore) insertQuery(userID int32, task todo.NewTask) (string, []any, error) {
	return s.builder.Insert(taskTable).
		Columns("user_id", "item_desc").
		Values(userID, task.Description).
		Suffix("RETURNING id").
		ToSql()
}

func (s *TaskStore) CreateTaskForUser(ctx context.Context, ext extconn.ExternalConnectivity, userID int32, task todo.NewTask) (int32, error) {
	query, args, err := s.insertQuery(userID, task)
	if err != nil {
		return 0, errors.Wrap(err, "building task insert")
	}

	id, err := extconn.WithConnection(ctx, ext, func(ctx context.Context, conn extconn.Conn) (int32, error) {
		return pgxdb.QueryScalar[int32](ctx, conn, query, args...)
	})
	if err != nil {
		return 0, errors.Wrapf(err, "inserting task for user %d", userID)
	}

	return id, nil
}

func (s *TaskStore) updateQuery(taskID int32, update todo.UpdateTask) (string, []any, error) {
	return s.builder.Update(taskTable).
		Set("item_desc", update.Description).
		Where(squirrel.Eq{"id": taskID}).
		ToSql()
}

func (s *TaskStore) UpdateTask(ctx context.Context, ext extconn.ExternalConnectivity, taskID int32, update todo.UpdateTask) (bool, error) {
	query, args, err := s.updateQuery(taskID, update)
	if err != nil {
		return false, errors.Wrap(err, "building task update")
	}

	return s.execAffecting(ctx, ext, query, args, "updating task %d", taskID)
}

func (s *TaskStore) deleteQuery(taskID int32) (string, []any, error) {
	return s.builder.Delete(taskTable).Where(squirrel.Eq{"id": taskID}).ToSql()
}

func (s *TaskStore) DeleteTask(ctx context.Context, ext extconn.ExternalConnectivity, taskID int32) (bool, error) {
	query, args, err := s.deleteQuery(taskID)
	if err != nil {
		return false, errors.Wrap(err, "building task delete")
	}

	return s.execAffecting(ctx, ext, query, args, "deleting task %d", taskID)
}

// execAffecting runs a command and reports whether any row was touched.
func (s *TaskStore) execAffecting(ctx context.Context, ext extconn.ExternalConnectivity, query string, args []any, format string, taskID int32) (bool, error) {
	affected, err := extconn.WithConnection(ctx, ext, func(ctx context.Context, conn extconn.Conn) (int64, error) {
		return pgxdb.Exec(ctx, conn, query, args...)
	})
	if err != nil {
		return false, errors.Wrapf(err, format, taskID)
	}

	return affected > 0, nil
}
