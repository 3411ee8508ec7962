// Package leveldb provides a disk-backed entity count store. Counting the
// degree of every entity in a full dump needs hundreds of millions of
// keys; leveldb keeps that off the heap at the cost of a read-modify-write
// per increment.
package leveldb

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// CountStore implements wdmigrate.CountStore on a leveldb database. Counts
// are stored as big-endian uint64 values keyed by entity id and survive
// reopening the same directory.
type CountStore struct {
	db *leveldb.DB
}

// NewCountStore opens (creating if needed) the database under dirname.
func NewCountStore(dirname string) (*CountStore, error) {
	if err := os.MkdirAll(dirname, 0700); err != nil {
		return nil, errors.Wrap(err, "making directory")
	}
	db, err := leveldb.OpenFile(dirname, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %v", dirname)
	}
	return &CountStore{db: db}, nil
}

// Incr adds one to the entity's count.
func (cs *CountStore) Incr(entity string) error {
	key := []byte(entity)
	var count uint64
	data, err := cs.db.Get(key, nil)
	if err != nil && err != leveldb.ErrNotFound {
		return errors.Wrapf(err, "reading count for %s", entity)
	}
	if err == nil {
		count = binary.BigEndian.Uint64(data)
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, count+1)
	return errors.Wrapf(cs.db.Put(key, buf, nil), "writing count for %s", entity)
}

// Each visits every (entity, count) pair in key order.
func (cs *CountStore) Each(fn func(entity string, count uint64) error) error {
	iter := cs.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		if err := fn(string(iter.Key()), binary.BigEndian.Uint64(iter.Value())); err != nil {
			return err
		}
	}
	return errors.Wrap(iter.Error(), "iterating counts")
}

// Close closes the underlying database.
func (cs *CountStore) Close() error {
	return errors.Wrap(cs.db.Close(), "closing leveldb")
}
