package store

import (
	"github.com/boltdb/bolt"
)

// boltBucket is the single bucket BoltKV stores all fact keys under. The
// fact key encoding (fact.EncodeKey) already namespaces every key by
// variant kind via its prefix, so a single bucket is sufficient.
var boltBucket = []byte("facts")

// BoltKV is the embedded-ordered-KV reference backend (§6 "Specific
// physical KV backends ... the core depends only on an abstract ordered-KV
// interface"; boltdb is the concrete choice the teacher already depends
// on). Bolt's B+Tree cursor gives Range its ascending-order guarantee for
// free.
type BoltKV struct {
	db *bolt.DB
}

// OpenBoltKV opens (creating if necessary) a bolt database at path and
// returns a BoltKV backed by it.
func OpenBoltKV(path string) (*BoltKV, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &BoltKV{db: db}, nil
}

// Close closes the underlying bolt database.
func (b *BoltKV) Close() error { return b.db.Close() }

// Put implements KV.
func (b *BoltKV) Put(key, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put(key, value)
	})
	if err != nil {
		return &TransientError{Err: err}
	}
	return nil
}

// Get implements KV.
func (b *BoltKV) Get(key []byte) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get(key)
		if v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	return out, nil
}

// DeleteRange implements KV.
func (b *BoltKV) DeleteRange(low, high []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		var toDelete [][]byte
		for k, _ := c.Seek(low); k != nil && (high == nil || string(k) < string(high)); k, _ = c.Next() {
			toDelete = append(toDelete, append([]byte(nil), k...))
		}
		bucket := tx.Bucket(boltBucket)
		for _, k := range toDelete {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &TransientError{Err: err}
	}
	return nil
}

// Range implements KV. The returned iterator reads a consistent snapshot:
// bolt.Tx is a read transaction held open for the lifetime of the
// iterator, so writes committed after Range is called are never observed
// mid-scan (§5).
func (b *BoltKV) Range(low, high []byte) (Iterator, error) {
	tx, err := b.db.Begin(false)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	c := tx.Bucket(boltBucket).Cursor()
	return &boltIterator{tx: tx, cursor: c, low: low, high: high, started: false}, nil
}

type boltIterator struct {
	tx      *bolt.Tx
	cursor  *bolt.Cursor
	low     []byte
	high    []byte
	started bool
	key     []byte
	value   []byte
}

func (it *boltIterator) Next() bool {
	var k, v []byte
	if !it.started {
		it.started = true
		k, v = it.cursor.Seek(it.low)
	} else {
		k, v = it.cursor.Next()
	}
	if k == nil || (it.high != nil && string(k) >= string(it.high)) {
		it.key, it.value = nil, nil
		return false
	}
	it.key = append([]byte(nil), k...)
	it.value = append([]byte(nil), v...)
	return true
}

func (it *boltIterator) Key() []byte   { return it.key }
func (it *boltIterator) Value() []byte { return it.value }
func (it *boltIterator) Err() error    { return nil }
func (it *boltIterator) Close() error  { return it.tx.Rollback() }
