// Package storedb adapts go.etcd.io/bbolt into the typed-table,
// transactional page store the tree engines and the façade are built
// against: begin a write or read transaction, open one of the four
// tables by definition, get/insert/iterate. bbolt's single-file B+tree
// with MVCC readers is the closest real Go analogue to the redb-shaped
// contract the spec describes (single writer, many concurrent readers,
// each on its own consistent snapshot).
package storedb

import (
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// ErrTableDoesNotExist is returned by a read transaction's Open* methods
// when the underlying bucket has never been created. It is kept distinct
// from other storage errors because Open() uses it to detect an
// uninitialized store.
var ErrTableDoesNotExist = errors.New("storedb: table does not exist")

var (
	eavBucket    = []byte("eav")
	repoBucket   = []byte("repo")
	refsBucket   = []byte("refs")
	optionBucket = []byte("option")
)

// DB is a handle on the on-disk page store. It is safe to share across
// goroutines; every operation borrows a transaction from it.
type DB struct {
	bolt *bolt.DB
}

// Open creates the database file at path if it does not exist, and opens
// it otherwise.
func Open(path string) (*DB, error) {
	b, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "storedb: open")
	}
	return &DB{bolt: b}, nil
}

// Close releases the underlying file handle.
func (db *DB) Close() error {
	return db.bolt.Close()
}

// BeginWrite starts the single write transaction the page store allows at
// a time. It blocks until any other in-flight write transaction finishes.
func (db *DB) BeginWrite() (*WriteTxn, error) {
	tx, err := db.bolt.Begin(true)
	if err != nil {
		return nil, errors.Wrap(err, "storedb: begin write")
	}
	return &WriteTxn{tx}, nil
}

// BeginRead starts a read-only transaction isolated from concurrent
// writers: it observes a fixed snapshot taken at call time.
func (db *DB) BeginRead() (*ReadTxn, error) {
	tx, err := db.bolt.Begin(false)
	if err != nil {
		return nil, errors.Wrap(err, "storedb: begin read")
	}
	return &ReadTxn{tx}, nil
}

// WriteTxn is a single read-write transaction. Callers must Commit or
// Rollback it exactly once.
type WriteTxn struct {
	tx *bolt.Tx
}

// Commit makes every table mutation performed through this transaction
// durable and visible to subsequent readers.
func (w *WriteTxn) Commit() error {
	return errors.Wrap(w.tx.Commit(), "storedb: commit")
}

// Rollback discards every table mutation performed through this
// transaction.
func (w *WriteTxn) Rollback() error {
	return w.tx.Rollback()
}

// OpenEAV opens the EAV table for writing, creating it on first use.
func (w *WriteTxn) OpenEAV() (*EAVTable, error) {
	b, err := w.tx.CreateBucketIfNotExists(eavBucket)
	if err != nil {
		return nil, errors.Wrap(err, "storedb: open eav table")
	}
	return &EAVTable{b}, nil
}

// OpenRepo opens the REPO table for writing, creating it on first use.
func (w *WriteTxn) OpenRepo() (*RepoTable, error) {
	b, err := w.tx.CreateBucketIfNotExists(repoBucket)
	if err != nil {
		return nil, errors.Wrap(err, "storedb: open repo table")
	}
	return &RepoTable{b}, nil
}

// OpenRefs opens the REFS table for writing, creating it on first use.
func (w *WriteTxn) OpenRefs() (*RefsTable, error) {
	b, err := w.tx.CreateBucketIfNotExists(refsBucket)
	if err != nil {
		return nil, errors.Wrap(err, "storedb: open refs table")
	}
	return &RefsTable{b}, nil
}

// OpenOptions opens the OPTIONS table for writing, creating it on first use.
func (w *WriteTxn) OpenOptions() (*OptionsTable, error) {
	b, err := w.tx.CreateBucketIfNotExists(optionBucket)
	if err != nil {
		return nil, errors.Wrap(err, "storedb: open options table")
	}
	return &OptionsTable{b}, nil
}

// ReadTxn is a read-only snapshot transaction.
type ReadTxn struct {
	tx *bolt.Tx
}

// Rollback releases the read transaction's snapshot. Read transactions
// are always "rolled back"; there is nothing to commit.
func (r *ReadTxn) Rollback() error {
	return r.tx.Rollback()
}

// OpenEAV opens the EAV table for reading. Returns ErrTableDoesNotExist
// if the table was never created.
func (r *ReadTxn) OpenEAV() (*EAVTable, error) {
	b := r.tx.Bucket(eavBucket)
	if b == nil {
		return nil, ErrTableDoesNotExist
	}
	return &EAVTable{b}, nil
}

// OpenRepo opens the REPO table for reading.
func (r *ReadTxn) OpenRepo() (*RepoTable, error) {
	b := r.tx.Bucket(repoBucket)
	if b == nil {
		return nil, ErrTableDoesNotExist
	}
	return &RepoTable{b}, nil
}

// OpenRefs opens the REFS table for reading.
func (r *ReadTxn) OpenRefs() (*RefsTable, error) {
	b := r.tx.Bucket(refsBucket)
	if b == nil {
		return nil, ErrTableDoesNotExist
	}
	return &RefsTable{b}, nil
}

// OpenOptions opens the OPTIONS table for reading.
func (r *ReadTxn) OpenOptions() (*OptionsTable, error) {
	b := r.tx.Bucket(optionBucket)
	if b == nil {
		return nil, ErrTableDoesNotExist
	}
	return &OptionsTable{b}, nil
}
