// Package todotest provides in-memory task persistence for tests.
package todotest

import (
	"context"
	"sync"

	"github.com/marcodd23/go-todo-service/internal/domain/todo"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/pkg/errors"
)

// ErrDisconnected is returned by every method while the persistence is disconnected.
var ErrDisconnected = errors.New("todotest: persistence disconnected")

// InMemoryPersistence implements todo.Reader and todo.Writer.
type InMemoryPersistence struct {
	mu           sync.RWMutex
	highestID    int32
	tasks        []todo.TodoTask
	disconnected bool
}

var (
	_ todo.Reader = (*InMemoryPersistence)(nil)
	_ todo.Writer = (*InMemoryPersistence)(nil)
)

// New - empty persistence.
func New() *InMemoryPersistence {
	return &InMemoryPersistence{}
}

// Disconnect - every following call fails with ErrDisconnected.
func (p *InMemoryPersistence) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnected = true
}

// Tasks - snapshot of the stored tasks.
func (p *InMemoryPersistence) Tasks() []todo.TodoTask {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return append([]todo.TodoTask(nil), p.tasks...)
}

func (p *InMemoryPersistence) TasksForUser(_ context.Context, _ extconn.ExternalConnectivity, userID int32) ([]todo.TodoTask, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.disconnected {
		return nil, ErrDisconnected
	}

	tasks := make([]todo.TodoTask, 0)
	for _, task := range p.tasks {
		if task.OwnerUserID == userID {
			tasks = append(tasks, task)
		}
	}

	return tasks, nil
}

func (p *InMemoryPersistence) UserTaskByID(_ context.Context, _ extconn.ExternalConnectivity, userID, taskID int32) (*todo.TodoTask, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.disconnected {
		return nil, ErrDisconnected
	}

	for _, task := range p.tasks {
		if task.ID == taskID && task.OwnerUserID == userID {
			found := task
			return &found, nil
		}
	}

	return nil, nil
}

func (p *InMemoryPersistence) CreateTaskForUser(_ context.Context, _ extconn.ExternalConnectivity, userID int32, task todo.NewTask) (int32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disconnected {
		return 0, ErrDisconnected
	}

	p.highestID++
	p.tasks = append(p.tasks, todo.TodoTask{ID: p.highestID, OwnerUserID: userID, Description: task.Description})

	return p.highestID, nil
}

func (p *InMemoryPersistence) UpdateTask(_ context.Context, _ extconn.ExternalConnectivity, taskID int32, update todo.UpdateTask) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disconnected {
		return false, ErrDisconnected
	}

	for i := range p.tasks {
		if p.tasks[i].ID == taskID {
			p.tasks[i].Description = update.Description
			return true, nil
		}
	}

	return false, nil
}

func (p *InMemoryPersistence) DeleteTask(_ context.Context, _ extconn.ExternalConnectivity, taskID int32) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disconnected {
		return false, ErrDisconnected
	}

	for i, task := range p.tasks {
		if task.ID == taskID {
			p.tasks = append(p.tasks[:i], p.tasks[i+1:]...)
			return true, nil
		}
	}

	return false, nil
}
