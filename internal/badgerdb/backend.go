// Package badgerdb implements a Backend on an embedded BadgerDB key-value
// store. Each configuration key maps to one Badger key whose value is a
// small JSON record holding the encoded value and its data type.
package badgerdb

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/kvconf/pkg/types"
)

var _ types.Backend = (*Backend)(nil)

// DirName is the directory created inside the data directory.
const DirName = "config.badger"

// MemoryDataDir opens an in-memory Badger instance.
const MemoryDataDir = ":memory:"

// keyPrefix separates configuration rows from anything else sharing the
// database.
const keyPrefix = "config:"

// record is the stored form of a row.
type record struct {
	Value    string `json:"value"`
	DataType string `json:"data_type"`
}

// Backend stores rows in BadgerDB.
type Backend struct {
	db *badger.DB
}

// Open opens the Badger database in dir, or an in-memory one when dir is
// MemoryDataDir. Badger's own log output is routed to logger.
func Open(dir string, logger zerolog.Logger) (*Backend, error) {
	var opts badger.Options
	if dir == MemoryDataDir {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithLogger(badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}
	return &Backend{db: db}, nil
}

// EnsureSchema is a no-op; Badger needs no table definition.
func (b *Backend) EnsureSchema() error {
	return nil
}

func (b *Backend) Upsert(key, value string, dataType types.Tag) error {
	buf, err := json.Marshal(record{Value: value, DataType: string(dataType)})
	if err != nil {
		return err
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(rowKey(key), buf)
	})
	if err != nil {
		return fmt.Errorf("upserting %q: %w", key, err)
	}
	return nil
}

func (b *Backend) Fetch(key string) (types.Row, bool, error) {
	var rec record
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(rowKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return types.Row{}, false, nil
	}
	if err != nil {
		return types.Row{}, false, fmt.Errorf("fetching %q: %w", key, err)
	}
	return types.Row{Key: key, Value: rec.Value, DataType: types.Tag(rec.DataType)}, true, nil
}

// Remove deletes the key. Badger treats deleting a missing key as success.
func (b *Backend) Remove(key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(rowKey(key))
	})
	if err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}

func rowKey(key string) []byte {
	return []byte(keyPrefix + key)
}
