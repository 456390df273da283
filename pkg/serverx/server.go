package serverx

import (
	"context"
)

// Server - server interface.
type Server[T any] interface {
	RunSync() error
	RunAsync() <-chan error
	GetServer() T
	Setup(ctx context.Context, setupFunc func(server T))
	Shutdown(ctx context.Context)
}
