// Package badger persists user records in BadgerDB, an embedded key-value
// store. Records are keyed by insertion position so a prefix scan yields
// users in creation order, as the store requires.
package badger

import (
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/atelierlabs/stylist-go-sdk/core"
)

const keyPrefix = "user/"

// Backend implements memory.Backend on a BadgerDB database.
type Backend struct {
	db *badger.DB
}

// Open opens (or creates) the database at dir.
func Open(dir string) (*Backend, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return &Backend{db: db}, nil
}

// SaveUser writes the full user record at its insertion position. Users
// are never deleted, so positions are stable.
func (b *Backend) SaveUser(position int, user *core.User) error {
	if position < 0 {
		return fmt.Errorf("invalid user position %d", position)
	}
	value, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user %q: %w", user.Name, err)
	}
	key := []byte(fmt.Sprintf("%s%08d", keyPrefix, position))

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// LoadUsers returns all stored users in insertion order.
func (b *Backend) LoadUsers() ([]*core.User, error) {
	var users []*core.User

	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var u core.User
				if err := json.Unmarshal(value, &u); err != nil {
					return fmt.Errorf("unmarshal %s: %w", it.Item().Key(), err)
				}
				users = append(users, &u)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Close releases the database.
func (b *Backend) Close() error {
	return b.db.Close()
}
