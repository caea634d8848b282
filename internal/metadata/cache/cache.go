// Package cache stores metadata provider responses in Badger with a TTL.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a namespaced key/value cache backed by Badger.
type Cache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// Options configures the cache.
type Options struct {
	Path   string        // Directory; "" keeps everything in memory
	TTL    time.Duration // Entry lifetime; zero means entries never expire
	Logger *slog.Logger
}

// Open opens or creates the cache database.
func Open(opts Options) (*Cache, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.Path == "" {
		bopts = bopts.WithInMemory(true)
	}
	bopts.Logger = nil
	bopts.CompactL0OnClose = true

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Info("metadata cache opened", "path", opts.Path, "ttl", opts.TTL)

	return &Cache{db: db, ttl: opts.TTL, logger: logger}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func key(namespace, k string) []byte {
	return []byte(namespace + ":" + k)
}

// GetRaw returns the stored bytes for namespace/k.
func (c *Cache) GetRaw(namespace, k string) ([]byte, error) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(namespace, k))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return out, nil
}

// SetRaw stores value under namespace/k with the cache TTL.
func (c *Cache) SetRaw(namespace, k string, value []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key(namespace, k), value)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes namespace/k. Missing keys are not an error.
func (c *Cache) Delete(namespace, k string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(namespace, k))
	})
}

// Get decodes the JSON value stored under namespace/k.
func Get[T any](c *Cache, namespace, k string) (T, error) {
	var zero T
	raw, err := c.GetRaw(namespace, k)
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.Warn("dropping undecodable cache entry", "namespace", namespace, "key", k, "error", err)
		_ = c.Delete(namespace, k)
		return zero, ErrMiss
	}
	return v, nil
}

// Set JSON-encodes v and stores it under namespace/k.
func Set[T any](c *Cache, namespace, k string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	return c.SetRaw(namespace, k, raw)
}
