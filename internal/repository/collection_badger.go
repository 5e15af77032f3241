package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCollection keeps the plan collection under one key of an embedded badger database.
// Badger's optimistic transactions turn a concurrent commit into ErrVersionMismatch.
type BadgerCollection struct {
	db  *badger.DB
	key []byte
}

// NewBadgerCollection binds the collection to key.
func NewBadgerCollection(db *badger.DB, key string) *BadgerCollection {
	return &BadgerCollection{db: db, key: []byte(key)}
}

// Load implements CollectionBackend.
func (b *BadgerCollection) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var content []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key)
		if err != nil {
			return err
		}
		content, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrCollectionMissing
	}
	if err != nil {
		return nil, fmt.Errorf("badger get %s: %w", b.key, err)
	}
	return content, nil
}

// Replace implements CollectionBackend.
func (b *BadgerCollection) Replace(ctx context.Context, expected string, next []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			if expected != "" {
				return ErrVersionMismatch
			}
		case err != nil:
			return err
		default:
			current, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if VersionOf(current) != expected {
				return ErrVersionMismatch
			}
		}
		return txn.Set(b.key, next)
	})
	if errors.Is(err, badger.ErrConflict) {
		return ErrVersionMismatch
	}
	return err
}
