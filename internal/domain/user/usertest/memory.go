// Package usertest provides in-memory user persistence for tests.
package usertest

import (
	"context"
	"sync"

	"github.com/marcodd23/go-todo-service/internal/domain/user"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/pkg/errors"
)

// ErrDisconnected is returned by every method while the persistence is disconnected.
var ErrDisconnected = errors.New("usertest: persistence disconnected")

// InMemoryPersistence implements user.Reader, user.Writer and user.Detector.
type InMemoryPersistence struct {
	mu           sync.RWMutex
	highestID    int32
	users        []user.TodoUser
	disconnected bool
}

var (
	_ user.Reader   = (*InMemoryPersistence)(nil)
	_ user.Writer   = (*InMemoryPersistence)(nil)
	_ user.Detector = (*InMemoryPersistence)(nil)
)

// New - empty persistence.
func New() *InMemoryPersistence {
	return &InMemoryPersistence{}
}

// NewWithUsers - persistence pre-populated with users numbered from 1.
func NewWithUsers(users ...user.CreateUser) *InMemoryPersistence {
	p := New()
	for _, u := range users {
		p.highestID++
		p.users = append(p.users, user.TodoUser{ID: p.highestID, FirstName: u.FirstName, LastName: u.LastName})
	}

	return p
}

// Disconnect - every following call fails with ErrDisconnected.
func (p *InMemoryPersistence) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnected = true
}

// Users - snapshot of the stored users.
func (p *InMemoryPersistence) Users() []user.TodoUser {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return append([]user.TodoUser(nil), p.users...)
}

// DefaultCreateUser - a valid CreateUser payload.
func DefaultCreateUser() user.CreateUser {
	return user.CreateUser{FirstName: "First", LastName: "Last"}
}

func (p *InMemoryPersistence) All(context.Context, extconn.ExternalConnectivity) ([]user.TodoUser, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.disconnected {
		return nil, ErrDisconnected
	}

	return append(make([]user.TodoUser, 0, len(p.users)), p.users...), nil
}

func (p *InMemoryPersistence) ByID(_ context.Context, _ extconn.ExternalConnectivity, id int32) (*user.TodoUser, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.disconnected {
		return nil, ErrDisconnected
	}

	for _, u := range p.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}

	return nil, nil
}

func (p *InMemoryPersistence) CreateUser(_ context.Context, _ extconn.ExternalConnectivity, newUser user.CreateUser) (int32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disconnected {
		return 0, ErrDisconnected
	}

	p.highestID++
	p.users = append(p.users, user.TodoUser{ID: p.highestID, FirstName: newUser.FirstName, LastName: newUser.LastName})

	return p.highestID, nil
}

func (p *InMemoryPersistence) UserExists(_ context.Context, _ extconn.ExternalConnectivity, userID int32) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.disconnected {
		return false, ErrDisconnected
	}

	for _, u := range p.users {
		if u.ID == userID {
			return true, nil
		}
	}

	return false, nil
}

func (p *InMemoryPersistence) UserWithNameExists(_ context.Context, _ extconn.ExternalConnectivity, description user.Description) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.disconnected {
		return false, ErrDisconnected
	}

	for _, u := range p.users {
		if u.FirstName == description.FirstName && u.LastName == description.LastName {
			return true, nil
		}
	}

	return false, nil
}
