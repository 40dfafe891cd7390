// Package storage provides the durable store adapter for Marginalia's
// collections. Each collection is persisted as a single JSON-serialized array
// under one key in an on-device Badger database, mirroring the
// serialize-all-on-write persistence policy of the stores above it.
package storage

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	apperrors "github.com/marginalia-app/marginalia-server/internal/errors"
)

// Collection names a persisted collection.
type Collection string

// The two persisted collections.
const (
	CollectionBooks    Collection = "books"
	CollectionInsights Collection = "insights"
)

// Valid reports whether the collection is one of the known names.
func (c Collection) Valid() bool {
	return c == CollectionBooks || c == CollectionInsights
}

// Adapter wraps a Badger database instance and exposes get/set/remove of raw
// collections. Read failures degrade to empty (a corrupted or missing
// collection must not crash startup); write failures always propagate.
type Adapter struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens the database at the given path.
func Open(path string, logger *slog.Logger) (*Adapter, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return &Adapter{db: db, logger: logger}, nil
}

// Close gracefully closes the database.
func (a *Adapter) Close() error {
	if a.logger != nil {
		a.logger.Info("Closing database connection")
	}
	return a.db.Close()
}

// Get reads a collection and unmarshals it into a slice of T.
// A missing, unreadable, or corrupted collection yields (nil, nil): the app
// starts empty rather than crashing on bad persisted state. The degradation
// is logged at warn level so it is not silent.
func Get[T any](a *Adapter, c Collection) ([]T, error) {
	var raw []byte
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(c))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append(raw[:0], val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		a.warn("collection read failed, starting empty", c, err)
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		a.warn("collection unmarshal failed, starting empty", c, err)
		return nil, nil
	}
	return items, nil
}

// Set serializes the full collection and writes it under the collection key.
// A failed write must not silently report success, so errors propagate as
// persistence errors.
func Set[T any](a *Adapter, c Collection, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.CodePersistence, "failed to marshal %s collection", c)
	}

	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(c), data)
	})
	if err != nil {
		return apperrors.Wrapf(err, apperrors.CodePersistence, "failed to write %s collection", c)
	}
	return nil
}

// Remove deletes a collection key entirely. Errors propagate.
func (a *Adapter) Remove(c Collection) error {
	err := a.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(c))
	})
	if err != nil {
		return apperrors.Wrapf(err, apperrors.CodePersistence, "failed to remove %s collection", c)
	}
	return nil
}

func (a *Adapter) warn(msg string, c Collection, err error) {
	if a.logger != nil {
		a.logger.Warn(msg, "collection", string(c), "error", err)
	}
}
