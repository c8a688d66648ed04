package storage

import (
	"context"
	"fmt"
	"sync"
)

// Backend is a string-keyed blob store. Put must replace the whole value
// atomically; the Store relies on that for crash safety.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error
	Close() error
}

// Memory is an in-process Backend used by tests and the "memory" driver.
type Memory struct {
	mu     sync.Mutex
	blobs  map[string]string
	PutErr error // returned by Put when set
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.blobs[key]
	return v, ok, nil
}

func (m *Memory) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.blobs[key] = value
	return nil
}

func (m *Memory) Close() error { return nil }

// OpenBackend opens the backend for driver: "sqlite" at path, "postgres" at
// dsn after applying migrations, or "memory".
func OpenBackend(ctx context.Context, driver, path, dsn string) (Backend, error) {
	switch driver {
	case "sqlite":
		return OpenSQLite(path)
	case "postgres":
		if err := RunMigrations(dsn); err != nil {
			return nil, err
		}
		return OpenPostgres(ctx, dsn)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
