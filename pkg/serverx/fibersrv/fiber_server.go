package fibersrv

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/marcodd23/go-todo-service/pkg/configmgr"
	"github.com/marcodd23/go-todo-service/pkg/logx"
	"github.com/marcodd23/go-todo-service/pkg/serverx"
)

// FiberServer - Fiber server.
type FiberServer struct {
	Server *fiber.App
	config configmgr.Config
}

// Option - customizes the fiber configuration before the app is created.
type Option func(cfg *fiber.Config)

// WithErrorHandler - handler for errors returned by routes.
func WithErrorHandler(handler fiber.ErrorHandler) Option {
	return func(cfg *fiber.Config) {
		cfg.ErrorHandler = handler
	}
}

// NewFiberServer - Fiber server constructor.
func NewFiberServer(config configmgr.Config, opts ...Option) serverx.Server[*fiber.App] {
	fiberConfig := buildFiberConfig(config)
	for _, opt := range opts {
		opt(fiberConfig)
	}

	return &FiberServer{Server: fiber.New(*fiberConfig), config: config}
}

func buildFiberConfig(config configmgr.Config) *fiber.Config {
	fiberConfig := &fiber.Config{
		AppName:       config.GetServiceName(),
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
		JSONEncoder:   json.Marshal,
		JSONDecoder:   json.Unmarshal,
	}

	if srvConfig := config.GetServerConfig(); srvConfig != nil {
		fiberConfig.Concurrency = srvConfig.Concurrency
		fiberConfig.DisableStartupMessage = srvConfig.DisableStartupMessage
	}

	return fiberConfig
}

// GetServer - return the fiber server.
func (srv *FiberServer) GetServer() *fiber.App {
	return srv.Server
}

// RunSync - Run the server sync. Returns when the server stops listening.
func (srv *FiberServer) RunSync() error {
	return runServer(srv)
}

// RunAsync - Run the server async. The channel receives the listen error, if any, and is closed when the server stops.
func (srv *FiberServer) RunAsync() <-chan error {
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if err := runServer(srv); err != nil {
			errCh <- err
		}
	}()

	return errCh
}

// Setup - Receive a callback function setupFunc that let to configure the server.
func (srv *FiberServer) Setup(ctx context.Context, setupFunc func(fiber *fiber.App)) {
	if srv.Server != nil {
		setupFunc(srv.Server)
	}
}

// Shutdown - shutdown the server.
func (srv *FiberServer) Shutdown(ctx context.Context) {
	if srv.Server != nil {
		if err := srv.Server.ShutdownWithContext(ctx); err != nil {
			logx.GetLogger().LogError(ctx, "Error shutting down the Server", err)
		} else {
			logx.GetLogger().LogInfo(ctx, "Server shut down.. ")
		}
	}
}

func runServer(srv *FiberServer) error {
	port := "8080"
	if srvConfig := srv.config.GetServerConfig(); srvConfig != nil && srvConfig.Port != "" {
		port = srvConfig.Port
	}

	serverAddr := fmt.Sprintf(":%s", port)
	logx.GetLogger().LogInfo(context.TODO(), fmt.Sprintf("Server listening on: %s", serverAddr))

	if err := srv.Server.Listen(serverAddr); err != nil {
		logx.GetLogger().LogError(context.TODO(), "Oops... server is not running! error:", err)
		return err
	}

	return nil
}
