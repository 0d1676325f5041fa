package question

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Bank is the result of one successful load.
type Bank struct {
	Questions []Question
	Warnings  []Warning
	byID      map[string]int
}

// NewBank indexes questions by id.
func NewBank(questions []Question, warnings []Warning) *Bank {
	byID := make(map[string]int, len(questions))
	for i, q := range questions {
		byID[q.ID] = i
	}
	return &Bank{Questions: questions, Warnings: warnings, byID: byID}
}

// Lookup returns the question with the canonical id.
func (b *Bank) Lookup(id string) (Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return b.Questions[i], true
}

// Source provides the catalog to the drill.
type Source interface {
	Bank() (*Bank, error)
}

// LoadFunc loads and normalizes a bank file.
type LoadFunc func(path string) ([]Question, []Warning, error)

// Catalog is the process-wide cache of one bank file. The file is read on the
// first Bank call and reused until Invalidate. Failed loads are not cached.
type Catalog struct {
	path   string
	load   LoadFunc
	logger *zap.Logger

	mu   sync.Mutex
	bank *Bank
}

// NewCatalog returns a catalog of the bank file at path.
func NewCatalog(path string, logger *zap.Logger) *Catalog {
	return &Catalog{
		path:   path,
		load:   LoadFile,
		logger: logger,
	}
}

// Path is the bank file the catalog caches.
func (c *Catalog) Path() string {
	return c.path
}

// Bank returns the cached bank, loading it if needed.
func (c *Catalog) Bank() (*Bank, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bank != nil {
		return c.bank, nil
	}

	questions, warnings, err := c.load(c.path)
	if err != nil {
		return nil, err
	}
	c.bank = NewBank(questions, warnings)
	c.logger.Info("question bank loaded",
		zap.String("path", c.path),
		zap.Int("questions", len(questions)),
		zap.Int("warnings", len(warnings)),
	)
	return c.bank, nil
}

// Invalidate drops the cached bank; the next Bank call reloads the file.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bank = nil
}

// Watch invalidates the catalog whenever the bank file changes, until ctx is done.
// The parent directory is watched so that editors replacing the file are noticed.
func (c *Catalog) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher() > %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	target, err := filepath.Abs(c.path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", c.path, err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	const changed = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&changed == 0 {
				continue
			}
			c.Invalidate()
			c.logger.Info("question bank changed, cache invalidated",
				zap.String("path", c.path),
				zap.String("op", event.Op.String()),
			)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("question bank watcher error", zap.Error(err))
		}
	}
}
