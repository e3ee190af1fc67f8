// Package store persists local state for the Ramekin web companion in an
// embedded Badger database: the session credential, a cache of the user's
// tags and the history of capture attempts.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/ramekin/ramekin-web/internal/domain"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Captures holds one record per capture job, indexed by resulting recipe.
	Captures *Entity[domain.CaptureRecord]
}

// Options configures how the database is opened.
type Options struct {
	// InMemory keeps all data in memory; Path is ignored.
	InMemory bool
}

// New opens (or creates) the database at path.
func New(path string, logger *slog.Logger, opts ...Options) (*Store, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	bopts := badger.DefaultOptions(path)
	if o.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil            // Disable Badger's internal logging
	bopts.SyncWrites = !o.InMemory // Credential writes must survive a crash
	bopts.CompactL0OnClose = true

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}
	s.initCaptures()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path, "in_memory", o.InMemory)
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// delete removes a key from the database.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) initCaptures() {
	s.Captures = NewEntity[domain.CaptureRecord](s, capturePrefix).
		WithIndex("recipe", func(r *domain.CaptureRecord) []string {
			if r.RecipeID == nil {
				return nil
			}
			return []string{*r.RecipeID}
		})
}
