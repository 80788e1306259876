// Package memory stores facts the agent can recall across turns and sessions.
package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Cyclone1070/claw/internal/config"
)

// Category groups memories by lifetime and purpose.
type Category string

const (
	CategoryCore         Category = "core"
	CategoryDaily        Category = "daily"
	CategoryConversation Category = "conversation"
)

// ParseCategory maps an empty string to core; any other value is kept as a
// custom category.
func ParseCategory(s string) Category {
	if s == "" {
		return CategoryCore
	}
	return Category(s)
}

// Entry is a stored memory.
type Entry struct {
	Key       string
	Content   string
	Category  Category
	CreatedAt time.Time
	UpdatedAt time.Time
	Score     float64
}

// Store is a memory backend. Implementations are safe for concurrent use.
type Store interface {
	// Store creates or replaces the entry under key.
	Store(ctx context.Context, key, content string, category Category) error
	// Recall returns up to limit entries matching query, best match first.
	Recall(ctx context.Context, query string, limit int) ([]Entry, error)
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (Entry, error)
	// Forget reports whether an entry was removed.
	Forget(ctx context.Context, key string) (bool, error)
	Count(ctx context.Context) (int, error)
	Name() string
	Close() error
}

var (
	ErrNotFound     = errors.New("memory not found")
	ErrEmptyKey     = errors.New("memory key is empty")
	ErrEmptyContent = errors.New("memory content is empty")
)

func validateEntry(key, content string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if content == "" {
		return ErrEmptyContent
	}
	return nil
}

// New opens the backend selected by cfg. Relative sqlite paths are resolved
// against the workspace.
func New(ctx context.Context, cfg config.MemoryConfig, workspace string) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewInMemory(), nil
	case "none":
		return None{}, nil
	case "sqlite":
		path := cfg.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(workspace, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating memory directory: %w", err)
		}
		return OpenSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("unknown memory backend %q", cfg.Backend)
	}
}
