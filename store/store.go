// Package store is the façade over the two tree engines: it drives the
// page store's transactions, dispatches to whichever engine a given
// store was initialized with, and keeps the EAV index, the tree, and the
// "root" ref in lockstep inside a single write transaction.
package store

import (
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/tudgoi/pika/codec"
	"github.com/tudgoi/pika/mst"
	"github.com/tudgoi/pika/pt"
	"github.com/tudgoi/pika/storedb"
)

const rootRefName = "root"

const (
	optionKeyEngine   byte = 0
	optionKeyIdentity byte = 1
)

// defaultCacheSize bounds the decoded-node LRU each engine keeps in
// front of the REPO table.
const defaultCacheSize = 4096

// Store is a handle on one on-disk triple store. It is safe to share
// across goroutines; every operation opens and closes its own
// transaction.
type Store struct {
	db     *storedb.DB
	engine Engine
	log    log15.Logger
}

// Init creates a new store at path, selects engine, and generates a
// fresh process identity keypair. It fails if path already names a
// store (re-running Init on an existing file would silently discard its
// prior identity).
func Init(path string, engine Engine) (*Store, error) {
	db, err := storedb.Open(path)
	if err != nil {
		return nil, &IoError{Cause: err}
	}

	wtx, err := db.BeginWrite()
	if err != nil {
		db.Close()
		return nil, &TransactionError{Cause: err}
	}

	opts, err := wtx.OpenOptions()
	if err != nil {
		wtx.Rollback()
		db.Close()
		return nil, &StorageError{Cause: err}
	}
	if _, exists, err := opts.Get(optionKeyEngine); err != nil {
		wtx.Rollback()
		db.Close()
		return nil, &StorageError{Cause: err}
	} else if exists {
		wtx.Rollback()
		db.Close()
		return nil, errors.Errorf("store: %s is already initialized", path)
	}
	if err := opts.Insert(optionKeyEngine, []byte(engine)); err != nil {
		wtx.Rollback()
		db.Close()
		return nil, &StorageError{Cause: err}
	}

	priv, _, err := generateIdentity()
	if err != nil {
		wtx.Rollback()
		db.Close()
		return nil, err
	}
	if err := opts.Insert(optionKeyIdentity, priv); err != nil {
		wtx.Rollback()
		db.Close()
		return nil, &StorageError{Cause: err}
	}

	if err := wtx.Commit(); err != nil {
		db.Close()
		return nil, &TransactionError{Cause: err}
	}

	s := &Store{db: db, engine: engine, log: log15.New("pkg", "store")}
	s.log.Info("initialized store", "path", path, "engine", engine)
	return s, nil
}

// Open opens an existing store at path, reading its engine selection
// from OPTIONS. It fails with ErrNotInitialized if OPTIONS is missing or
// names an engine this build doesn't recognize.
func Open(path string) (*Store, error) {
	db, err := storedb.Open(path)
	if err != nil {
		return nil, &IoError{Cause: err}
	}

	engine, err := readEngine(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, engine: engine, log: log15.New("pkg", "store")}, nil
}

func readEngine(db *storedb.DB) (Engine, error) {
	rtx, err := db.BeginRead()
	if err != nil {
		return "", &TransactionError{Cause: err}
	}
	defer rtx.Rollback()

	opts, err := rtx.OpenOptions()
	if err != nil {
		if errors.Is(err, storedb.ErrTableDoesNotExist) {
			return "", ErrNotInitialized
		}
		return "", &StorageError{Cause: err}
	}

	raw, ok, err := opts.Get(optionKeyEngine)
	if err != nil {
		return "", &StorageError{Cause: err}
	}
	if !ok {
		return "", ErrNotInitialized
	}
	engine, ok := ParseEngine(string(raw))
	if !ok {
		return "", ErrNotInitialized
	}
	return engine, nil
}

// Close releases the underlying page store file handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Engine reports which tree implementation this store was initialized with.
func (s *Store) Engine() Engine {
	return s.engine
}

// Identity returns the store's process identity public key, generated at
// Init time and immutable thereafter.
func (s *Store) Identity() (PublicKey, error) {
	rtx, err := s.db.BeginRead()
	if err != nil {
		return nil, &TransactionError{Cause: err}
	}
	defer rtx.Rollback()

	opts, err := rtx.OpenOptions()
	if err != nil {
		if errors.Is(err, storedb.ErrTableDoesNotExist) {
			return nil, ErrNotInitialized
		}
		return nil, &StorageError{Cause: err}
	}
	raw, ok, err := opts.Get(optionKeyIdentity)
	if err != nil {
		return nil, &StorageError{Cause: err}
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	return publicKeyFromPrivate(raw), nil
}

// Write upserts (entity, attribute) -> value into the EAV index, the
// selected tree, and the "root" ref, all inside one write transaction.
func (s *Store) Write(entity, attribute, value string) error {
	wtx, err := s.db.BeginWrite()
	if err != nil {
		return &TransactionError{Cause: err}
	}
	committed := false
	defer func() {
		if !committed {
			wtx.Rollback()
		}
	}()

	eav, err := wtx.OpenEAV()
	if err != nil {
		return &StorageError{Cause: err}
	}
	if err := eav.Insert(entity, attribute, value); err != nil {
		return &StorageError{Cause: err}
	}

	repoTable, err := wtx.OpenRepo()
	if err != nil {
		return &StorageError{Cause: err}
	}
	refs, err := wtx.OpenRefs()
	if err != nil {
		return &StorageError{Cause: err}
	}

	key := codec.TreeKey{Entity: entity, Attribute: attribute}
	newRoot, err := s.upsert(repoTable, refs, key, value)
	if err != nil {
		return err
	}

	if err := refs.Insert(rootRefName, newRoot); err != nil {
		return &StorageError{Cause: err}
	}
	if err := wtx.Commit(); err != nil {
		return &TransactionError{Cause: err}
	}
	committed = true

	s.log.Debug("wrote triple", "entity", entity, "attribute", attribute, "root", newRoot)
	return nil
}

func (s *Store) upsert(repoTable *storedb.RepoTable, refs *storedb.RefsTable, key codec.TreeKey, value string) (codec.Hash, error) {
	switch s.engine {
	case EngineMst:
		repo := mst.NewRepo(repoTable, defaultCacheSize)
		root := mst.New()
		if h, ok, err := refs.Get(rootRefName); err != nil {
			return codec.Hash{}, &StorageError{Cause: err}
		} else if ok {
			var getErr error
			root, getErr = repo.Get(h)
			if getErr != nil {
				return codec.Hash{}, getErr
			}
		}
		return mst.Upsert(repo, root, key, value)
	case EnginePt:
		repo := pt.NewRepo(repoTable, defaultCacheSize)
		root := pt.New()
		if h, ok, err := refs.Get(rootRefName); err != nil {
			return codec.Hash{}, &StorageError{Cause: err}
		} else if ok {
			var getErr error
			root, getErr = repo.Get(h)
			if getErr != nil {
				return codec.Hash{}, getErr
			}
		}
		return pt.Upsert(repo, root, pt.DefaultChunkModulus, key, value)
	default:
		return codec.Hash{}, ErrNotInitialized
	}
}

// Read returns the current value of (entity, attribute) from the flat
// EAV index, bypassing the tree entirely.
func (s *Store) Read(entity, attribute string) (string, bool, error) {
	rtx, err := s.db.BeginRead()
	if err != nil {
		return "", false, &TransactionError{Cause: err}
	}
	defer rtx.Rollback()

	eav, err := rtx.OpenEAV()
	if err != nil {
		if errors.Is(err, storedb.ErrTableDoesNotExist) {
			return "", false, nil
		}
		return "", false, &StorageError{Cause: err}
	}
	v, ok, err := eav.Get(entity, attribute)
	if err != nil {
		return "", false, &StorageError{Cause: err}
	}
	return v, ok, nil
}

// ReadRef walks the tree named by refName and returns the value at
// (entity, attribute), verified against the current root. It fails with
// ErrRootHashNotFound if refName has no entry.
func (s *Store) ReadRef(refName, entity, attribute string) (string, bool, error) {
	rtx, err := s.db.BeginRead()
	if err != nil {
		return "", false, &TransactionError{Cause: err}
	}
	defer rtx.Rollback()

	refs, err := rtx.OpenRefs()
	if err != nil {
		if errors.Is(err, storedb.ErrTableDoesNotExist) {
			return "", false, ErrRootHashNotFound
		}
		return "", false, &StorageError{Cause: err}
	}
	h, ok, err := refs.Get(refName)
	if err != nil {
		return "", false, &StorageError{Cause: err}
	}
	if !ok {
		return "", false, ErrRootHashNotFound
	}

	repoTable, err := rtx.OpenRepo()
	if err != nil {
		return "", false, &StorageError{Cause: err}
	}

	key := codec.TreeKey{Entity: entity, Attribute: attribute}
	switch s.engine {
	case EngineMst:
		repo := mst.NewRepo(repoTable, defaultCacheSize)
		root, err := repo.Get(h)
		if err != nil {
			return "", false, err
		}
		return mst.Find(repo, root, key)
	case EnginePt:
		repo := pt.NewRepo(repoTable, defaultCacheSize)
		root, err := repo.Get(h)
		if err != nil {
			return "", false, err
		}
		return pt.Find(repo, root, key)
	default:
		return "", false, ErrNotInitialized
	}
}

// Stats reports the size relationship between the flat user data and the
// tree's own structural overhead.
type Stats struct {
	UserBytes int64
	RepoBytes int64
	// Overhead is RepoBytes - UserBytes; negative when the repo happens
	// to be smaller than the raw user data (a small store with little
	// structural duplication).
	Overhead int64
	// Ratio is RepoBytes / UserBytes, or 0 when UserBytes is 0.
	Ratio float64
}

// Stat scans EAV and REPO and reports their relative size.
func (s *Store) Stat() (Stats, error) {
	rtx, err := s.db.BeginRead()
	if err != nil {
		return Stats{}, &TransactionError{Cause: err}
	}
	defer rtx.Rollback()

	var stats Stats

	eav, err := rtx.OpenEAV()
	if err != nil && !errors.Is(err, storedb.ErrTableDoesNotExist) {
		return Stats{}, &StorageError{Cause: err}
	}
	if eav != nil {
		if err := eav.Iter(func(entity, attribute, value string) error {
			stats.UserBytes += int64(len(entity) + len(attribute) + len(value))
			return nil
		}); err != nil {
			return Stats{}, &StorageError{Cause: err}
		}
	}

	repo, err := rtx.OpenRepo()
	if err != nil && !errors.Is(err, storedb.ErrTableDoesNotExist) {
		return Stats{}, &StorageError{Cause: err}
	}
	if repo != nil {
		if err := repo.Iter(func(h codec.Hash, blob []byte) error {
			stats.RepoBytes += int64(len(h)) + int64(len(blob))
			return nil
		}); err != nil {
			return Stats{}, &StorageError{Cause: err}
		}
	}

	stats.Overhead = stats.RepoBytes - stats.UserBytes
	if stats.UserBytes > 0 {
		stats.Ratio = float64(stats.RepoBytes) / float64(stats.UserBytes)
	}
	return stats, nil
}
