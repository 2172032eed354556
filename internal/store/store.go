// Package store provides the document store behind the ledger and claim registry.
//
// Documents are JSON bodies addressed by key (users/{uid}) and versioned. The
// only write primitive is CompareAndSwap, which fails with ErrRaceLost when
// another writer updated the document since it was read.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable reports that the backing store could not be reached
	// or did not answer in time.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrRaceLost reports that a compare-and-swap lost against a concurrent writer.
	ErrRaceLost = errors.New("concurrent update, try again")
)

// Document is a versioned JSON body. Version 0 means the key does not exist.
type Document struct {
	Key     string
	Body    []byte
	Version int64
}

// Exists reports whether the document has ever been written.
func (d Document) Exists() bool {
	return d.Version > 0
}

// Store is the minimal key-value contract the engines rely on.
type Store interface {
	// Get returns the document at key, or a zero-version document when absent.
	Get(ctx context.Context, key string) (Document, error)
	// CompareAndSwap writes body if the stored version still equals version and
	// returns the new version. Version 0 creates the document.
	CompareAndSwap(ctx context.Context, key string, version int64, body []byte) (int64, error)
	// List returns every document whose key starts with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Document, error)
}

// UserKey returns the document key of a user record.
func UserKey(uid string) string {
	return "users/" + uid
}

// UserPrefix is the key prefix shared by all user records.
const UserPrefix = "users/"

// Update performs one read-modify-write of key. fn receives the current body
// ("{}" when absent) and returns the body to store. When fn returns the body
// unchanged nothing is written. A concurrent write between the read and the
// swap yields ErrRaceLost and leaves the stored document untouched; retrying is
// up to the caller.
func Update(ctx context.Context, s Store, key string, fn func(body []byte) ([]byte, error)) (Document, error) {
	doc, err := s.Get(ctx, key)
	if err != nil {
		return Document{}, err
	}
	current := doc.Body
	if len(current) == 0 {
		current = []byte("{}")
	}
	next, err := fn(current)
	if err != nil {
		return Document{}, err
	}
	if doc.Exists() && bytes.Equal(next, doc.Body) {
		return doc, nil
	}
	version, err := s.CompareAndSwap(ctx, key, doc.Version, next)
	if err != nil {
		return Document{}, err
	}
	return Document{Key: key, Body: next, Version: version}, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
