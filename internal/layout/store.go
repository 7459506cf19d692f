// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

// Package layout persists named floorplan layouts in BadgerDB.
//
// A layout is the set of polygons an operator drew over a floorplan image,
// each mapped to one or more store areas. Sessions look a layout up by id to
// place heat points inside the right polygons.
package layout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/dwellmap/internal/config"
	"github.com/tomtom215/dwellmap/internal/logging"
	"github.com/tomtom215/dwellmap/internal/models"
)

const layoutKeyPrefix = "layout:"

// ErrNotFound is returned when no layout has the requested id.
var ErrNotFound = errors.New("layout not found")

// Store is a BadgerDB-backed layout repository.
type Store struct {
	db  *badger.DB
	now func() time.Time
}

// Open opens the store at cfg.Path, or in memory when cfg.InMemory is set.
func Open(cfg config.LayoutConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Bool("in_memory", cfg.InMemory).Msg("Layout store opened")
	return &Store{db: db, now: time.Now}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create assigns an id and timestamps and stores the layout.
func (s *Store) Create(ctx context.Context, l *models.Layout) (*models.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := *l
	stored.ID = uuid.New().String()
	stored.CreatedAt = s.now().UTC()
	stored.UpdatedAt = stored.CreatedAt

	if err := s.put(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Get returns the layout with the given id.
func (s *Store) Get(ctx context.Context, id string) (*models.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var l models.Layout
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(layoutKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get layout: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &l)
		})
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// List returns every layout ordered by name, then creation time.
func (s *Store) List(ctx context.Context) ([]models.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	layouts := []models.Layout{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(layoutKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var l models.Layout
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &l)
			}); err != nil {
				return err
			}
			layouts = append(layouts, l)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}

	sort.SliceStable(layouts, func(i, j int) bool {
		if layouts[i].Name != layouts[j].Name {
			return layouts[i].Name < layouts[j].Name
		}
		return layouts[i].CreatedAt.Before(layouts[j].CreatedAt)
	})
	return layouts, nil
}

// Update replaces name, floorplan and regions of an existing layout.
func (s *Store) Update(ctx context.Context, id string, l *models.Layout) (*models.Layout, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = l.Name
	existing.Floorplan = l.Floorplan
	existing.Regions = l.Regions
	existing.UpdatedAt = s.now().UTC()

	if err := s.put(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a layout. Deleting an unknown id returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(layoutKeyPrefix + id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get layout: %w", err)
		}
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("delete layout: %w", err)
		}
		return nil
	})
}

// CollectGarbage rewrites value log files that are mostly stale. It is a
// no-op for in-memory stores.
func (s *Store) CollectGarbage() error {
	if s.db.Opts().InMemory {
		return nil
	}
	err := s.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

func (s *Store) put(l *models.Layout) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(layoutKeyPrefix+l.ID), data); err != nil {
			return fmt.Errorf("set layout: %w", err)
		}
		return nil
	})
}
