// Package storage persists records as JSON documents grouped by kind.
//
// A Backend knows nothing about record types: it moves raw bodies keyed by
// (kind, id) and keeps insertion order. Collection adds typed access,
// search and read-modify-write updates on top of it.
package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Backend is a document store holding one keyspace per kind.
type Backend interface {
	// List returns every body of kind in insertion order.
	List(ctx context.Context, kind string) ([][]byte, error)
	Get(ctx context.Context, kind, id string) ([]byte, error)
	Insert(ctx context.Context, kind, id string, body []byte) error
	// Update replaces the body of (kind, id) with the result of fn, atomically.
	Update(ctx context.Context, kind, id string, fn func(body []byte) ([]byte, error)) error
	Delete(ctx context.Context, kind, id string) error
	// Truncate removes every record of kind.
	Truncate(ctx context.Context, kind string) error
	Close() error
}
