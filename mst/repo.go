package mst

import (
	"github.com/pkg/errors"

	"github.com/tudgoi/pika/cache"
	"github.com/tudgoi/pika/codec"
	"github.com/tudgoi/pika/storedb"
)

// Repo is the content-addressed node store a tree walk reads from and
// writes to: a thin decode/encode layer over the REPO table, with an LRU
// in front of it so a hot path (the upper levels of the tree, visited on
// every operation) doesn't pay a bbolt lookup and a decode every time.
type Repo struct {
	table *storedb.RepoTable
	cache *cache.LRU
}

// NewRepo wraps table with a decode cache of the given size.
func NewRepo(table *storedb.RepoTable, cacheSize int) *Repo {
	return &Repo{table: table, cache: cache.NewLRU(cacheSize)}
}

// Get fetches and decodes the node stored under h. A miss in the
// underlying table is a RefNotFoundError, not a (nil, false, nil): every
// hash reachable from a root is expected to resolve.
func (r *Repo) Get(h codec.Hash) (*Node, error) {
	v, err := r.cache.GetOrLoad(h, func(key interface{}) (interface{}, error) {
		blob, ok, err := r.table.Get(key.(codec.Hash))
		if err != nil {
			return nil, errors.Wrap(err, "mst: repo get")
		}
		if !ok {
			return nil, &RefNotFoundError{Hash: key.(codec.Hash)}
		}
		n, err := Decode(blob)
		if err != nil {
			return nil, errors.Wrap(err, "mst: decode node")
		}
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Node), nil
}

// Put encodes n, hashes the encoding, and stores it idempotently. The
// returned hash is the node's identity.
func (r *Repo) Put(n *Node) (codec.Hash, error) {
	blob := Encode(n)
	h := codec.Sum(blob)
	if err := r.table.Insert(h, blob); err != nil {
		return codec.Hash{}, errors.Wrap(err, "mst: repo put")
	}
	r.cache.Add(h, n)
	return h, nil
}
