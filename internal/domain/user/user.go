// Package user holds the business rules for the people who own to-do tasks.
package user

import (
	"context"
	"fmt"

	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/marcodd23/go-todo-service/pkg/logx"
	"github.com/pkg/errors"
)

// TodoUser - a user who can own to-do items.
type TodoUser struct {
	ID        int32
	FirstName string
	LastName  string
}

// CreateUser - information necessary to create a new user.
type CreateUser struct {
	FirstName string
	LastName  string
}

// Description - the personal information that makes a user unique.
type Description struct {
	FirstName string
	LastName  string
}

// ErrUserAlreadyExists - a user with the same name is already registered.
var ErrUserAlreadyExists = errors.New("the provided user already exists")

// DoesNotExistError - no user has the given ID.
type DoesNotExistError struct {
	ID int32
}

func (e *DoesNotExistError) Error() string {
	return fmt.Sprintf("user with ID %d does not exist", e.ID)
}

// IsDoesNotExist reports whether err (or anything it wraps) is a *DoesNotExistError.
func IsDoesNotExist(err error) bool {
	var notExist *DoesNotExistError
	return errors.As(err, &notExist)
}

// Reader - an external system which can read user data.
type Reader interface {
	All(ctx context.Context, ext extconn.ExternalConnectivity) ([]TodoUser, error)
	// ByID returns nil when no user has the given id.
	ByID(ctx context.Context, ext extconn.ExternalConnectivity, id int32) (*TodoUser, error)
}

// Writer - an external system which can accept new user data.
type Writer interface {
	CreateUser(ctx context.Context, ext extconn.ExternalConnectivity, user CreateUser) (int32, error)
}

// Detector - an external system which can report the presence of a user.
type Detector interface {
	UserExists(ctx context.Context, ext extconn.ExternalConnectivity, userID int32) (bool, error)
	UserWithNameExists(ctx context.Context, ext extconn.ExternalConnectivity, description Description) (bool, error)
}

// Port - user business logic exposed to the API.
type Port interface {
	GetUsers(ctx context.Context, ext extconn.ExternalConnectivity, reader Reader) ([]TodoUser, error)
	CreateUser(ctx context.Context, ext extconn.ExternalConnectivity, newUser CreateUser, writer Writer, detector Detector) (int32, error)
}

// Service - implements Port.
type Service struct{}

var _ Port = Service{}

func (Service) GetUsers(ctx context.Context, ext extconn.ExternalConnectivity, reader Reader) ([]TodoUser, error) {
	users, err := reader.All(ctx, ext)
	if err != nil {
		logx.GetLogger().LogError(ctx, "User fetch failure", err)
		return nil, errors.Wrap(err, "failed fetching users")
	}

	return users, nil
}

// CreateUser - creates the user unless one with the same first and last name exists.
// Run it inside a transaction so that the check and the insert see the same data.
func (Service) CreateUser(ctx context.Context, ext extconn.ExternalConnectivity, newUser CreateUser, writer Writer, detector Detector) (int32, error) {
	exists, err := detector.UserWithNameExists(ctx, ext, Description(newUser))
	if err != nil {
		return 0, errors.Wrap(err, "looking up user during creation")
	}

	if exists {
		return 0, ErrUserAlreadyExists
	}

	id, err := writer.CreateUser(ctx, ext, newUser)
	if err != nil {
		return 0, errors.Wrap(err, "trying to create user at service level")
	}

	return id, nil
}

// VerifyUserExists - returns a *DoesNotExistError when no user has the given id.
func VerifyUserExists(ctx context.Context, ext extconn.ExternalConnectivity, id int32, detector Detector) error {
	exists, err := detector.UserExists(ctx, ext, id)
	if err != nil {
		return errors.Wrapf(err, "checking whether user %d exists", id)
	}

	if !exists {
		return &DoesNotExistError{ID: id}
	}

	return nil
}
