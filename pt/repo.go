package pt

import (
	"github.com/pkg/errors"

	"github.com/tudgoi/pika/cache"
	"github.com/tudgoi/pika/codec"
	"github.com/tudgoi/pika/storedb"
)

// Repo is the content-addressed node store a chunk walk reads from and
// writes to, with an LRU decode cache in front of the underlying table.
type Repo struct {
	table *storedb.RepoTable
	cache *cache.LRU
}

// NewRepo wraps table with a decode cache of the given size.
func NewRepo(table *storedb.RepoTable, cacheSize int) *Repo {
	return &Repo{table: table, cache: cache.NewLRU(cacheSize)}
}

// Get fetches and decodes the node stored under h.
func (r *Repo) Get(h codec.Hash) (*Node, error) {
	v, err := r.cache.GetOrLoad(h, func(key interface{}) (interface{}, error) {
		blob, ok, err := r.table.Get(key.(codec.Hash))
		if err != nil {
			return nil, errors.Wrap(err, "pt: repo get")
		}
		if !ok {
			return nil, &RefNotFoundError{Hash: key.(codec.Hash)}
		}
		n, err := Decode(blob)
		if err != nil {
			return nil, errors.Wrap(err, "pt: decode node")
		}
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Node), nil
}

// Put encodes n, hashes the encoding, and stores it idempotently.
func (r *Repo) Put(n *Node) (codec.Hash, error) {
	blob := Encode(n)
	h := codec.Sum(blob)
	if err := r.table.Insert(h, blob); err != nil {
		return codec.Hash{}, errors.Wrap(err, "pt: repo put")
	}
	r.cache.Add(h, n)
	return h, nil
}
