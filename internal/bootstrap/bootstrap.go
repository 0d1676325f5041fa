// Package bootstrap runs a long-lived process until a signal and closes its resources.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultShutdownTimeout bounds the time all shutdown hooks may take together.
const DefaultShutdownTimeout = 10 * time.Second

type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// App closes registered resources in reverse order of registration on shutdown.
type App struct {
	logger  *zap.Logger
	timeout time.Duration

	mu    sync.Mutex
	hooks []hook
}

// New creates a new App.
func New(logger *zap.Logger) *App {
	return &App{logger: logger, timeout: DefaultShutdownTimeout}
}

// AddShutdownHook registers fn to run during shutdown. Safe for concurrent use.
func (a *App) AddShutdownHook(name string, fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, hook{name: name, fn: fn})
}

// AddCloser registers a Close method as a shutdown hook.
func (a *App) AddCloser(name string, close func() error) {
	a.AddShutdownHook(name, func(context.Context) error {
		return close()
	})
}

// Run calls run with a context canceled on SIGINT or SIGTERM.
// Shutdown hooks run once run has returned or a signal arrived, whichever is first.
// The error of run, if any, is joined with the hook errors.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.timeout)
	defer cancelShutdown()
	return errors.Join(runErr, a.shutdown(shutdownCtx))
}

func (a *App) shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for i := len(a.hooks) - 1; i >= 0; i-- {
		h := a.hooks[i]
		if err := h.fn(ctx); err != nil {
			a.logger.Error("shutdown hook failed", zap.String("hook", h.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
			continue
		}
		a.logger.Debug("shutdown hook done", zap.String("hook", h.name))
	}
	a.hooks = nil
	return errors.Join(errs...)
}
