// Package storage is a small document-store gateway over BadgerDB.
// Collections are key-prefix namespaces; documents are JSON. Every
// operation acquires its own transaction, so callers hold no open
// handle between calls.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/Bernardo-Rodrigues/api-bate-papo-uol/errors"
	"github.com/dgraph-io/badger/v4"
)

type Store struct {
	db *badger.DB
}

func NewStore(db *badger.DB) *Store {
	return &Store{db: db}
}

// Collection scopes document operations under a named key prefix.
func (s *Store) Collection(name string) Collection {
	return Collection{db: s.db, prefix: name + ":"}
}

type Collection struct {
	db     *badger.DB
	prefix string
}

func (c Collection) key(k string) []byte {
	return []byte(c.prefix + k)
}

// InsertOne persists doc under key. Fails with ErrDocumentExists when the
// key is already taken, which gives callers a per-document uniqueness
// check inside a single transaction.
func (c Collection) InsertOne(key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s%s: %w", c.prefix, key, err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(c.key(key))
		if err == nil {
			return fmt.Errorf("%w: %s%s", apperrors.ErrDocumentExists, c.prefix, key)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(c.key(key), raw)
	})
}

// FindOne decodes the document under key into out, or ErrNoDocument.
func (c Collection) FindOne(key string, out any) error {
	return c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s%s", apperrors.ErrNoDocument, c.prefix, key)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
}

// Find walks every document of the collection in lexicographic key
// order. raw is only valid for the duration of the callback.
func (c Collection) Find(fn func(key string, raw []byte) error) error {
	return c.db.View(func(txn *badger.Txn) error {
		prefix := []byte(c.prefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key()[len(prefix):])
			if err := item.Value(func(val []byte) error {
				return fn(key, val)
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateOne overwrites the document under key, or ErrNoDocument.
func (c Collection) UpdateOne(key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s%s: %w", c.prefix, key, err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(c.key(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s%s", apperrors.ErrNoDocument, c.prefix, key)
			}
			return err
		}
		return txn.Set(c.key(key), raw)
	})
}

// DeleteOne removes the document under key, or ErrNoDocument.
func (c Collection) DeleteOne(key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(c.key(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s%s", apperrors.ErrNoDocument, c.prefix, key)
			}
			return err
		}
		return txn.Delete(c.key(key))
	})
}
