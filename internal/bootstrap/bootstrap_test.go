package bootstrap

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestApp_Run(t *testing.T) {
	t.Run("run returns nil", func(t *testing.T) {
		app := New(zap.NewNop())
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("run returns error and hooks still run", func(t *testing.T) {
		app := New(zap.NewNop())
		closed := false
		app.AddCloser("db", func() error {
			closed = true
			return nil
		})

		want := errors.New("listen failed")
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return want
		})
		assert.ErrorIs(t, err, want)
		assert.True(t, closed)
	})

	t.Run("shutdown hooks run in LIFO order on context cancel", func(t *testing.T) {
		app := New(zap.NewNop())
		var mu sync.Mutex
		var order []string
		record := func(name string) func(ctx context.Context) error {
			return func(ctx context.Context) error {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, name)
				return nil
			}
		}
		app.AddShutdownHook("database", record("database"))
		app.AddShutdownHook("watcher", record("watcher"))
		app.AddShutdownHook("server", record("server"))

		ctx, cancel := context.WithCancel(context.Background())
		block := make(chan struct{})
		defer close(block)
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			<-block
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"server", "watcher", "database"}, order)
	})

	t.Run("hook errors are joined with their names", func(t *testing.T) {
		app := New(zap.NewNop())
		app.AddShutdownHook("database", func(ctx context.Context) error {
			return errors.New("close failed")
		})
		app.AddShutdownHook("server", func(ctx context.Context) error {
			return nil
		})

		err := app.Run(context.Background(), func(ctx context.Context) error {
			return nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database: close failed")
	})

	t.Run("hook registered from inside run callback", func(t *testing.T) {
		app := New(zap.NewNop())
		hookCalled := false

		err := app.Run(context.Background(), func(ctx context.Context) error {
			app.AddShutdownHook("late", func(ctx context.Context) error {
				hookCalled = true
				return nil
			})
			return nil
		})
		require.NoError(t, err)
		assert.True(t, hookCalled)
	})
}
