package store

import (
	"fmt"

	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/expense"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open builds the storage adapter for backend. The returned close function releases
// whatever the adapter holds open and is never nil.
func Open(backend, path, key string) (expense.Storage, func() error, error) {
	noop := func() error { return nil }

	switch backend {
	case BackendMemory:
		return NewMemory(), noop, nil
	case BackendFile:
		return NewFile(path), noop, nil
	case BackendSQLite:
		db, err := database.New(path)
		if err != nil {
			return nil, noop, fmt.Errorf("opening sqlite storage: %w", err)
		}

		return NewSQLite(db, key), db.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown storage backend: %s", backend)
}
