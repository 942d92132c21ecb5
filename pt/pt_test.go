package pt_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tudgoi/pika/codec"
	"github.com/tudgoi/pika/pt"
	"github.com/tudgoi/pika/storedb"
)

func newTestRepo(t *testing.T) (*pt.Repo, func() error) {
	t.Helper()
	db, err := storedb.Open(filepath.Join(t.TempDir(), "test.pika"))
	require.NoError(t, err)
	wtx, err := db.BeginWrite()
	require.NoError(t, err)
	table, err := wtx.OpenRepo()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return pt.NewRepo(table, 256), wtx.Commit
}

func key(entity string) codec.TreeKey {
	return codec.TreeKey{Entity: entity, Attribute: "v"}
}

func TestUpsertFind(t *testing.T) {
	repo, commit := newTestRepo(t)

	rootHash, err := pt.Upsert(repo, pt.New(), pt.DefaultChunkModulus, key("key1"), "val1")
	require.NoError(t, err)

	root, err := repo.Get(rootHash)
	require.NoError(t, err)

	v, ok, err := pt.Find(repo, root, key("key1"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "val1", v)
	require.NoError(t, commit())
}

func TestFindMissingKey(t *testing.T) {
	repo, commit := newTestRepo(t)

	v, ok, err := pt.Find(repo, pt.New(), key("nope"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", v)
	require.NoError(t, commit())
}

func TestSplitAndFindAll(t *testing.T) {
	repo, commit := newTestRepo(t)

	root := pt.New()
	var rootHash codec.Hash
	for i := 0; i < 100; i++ {
		h, err := pt.Upsert(repo, root, pt.DefaultChunkModulus, key(fmt.Sprintf("key_%03d", i)), fmt.Sprintf("val_%d", i))
		require.NoError(t, err)
		rootHash = h
		root, err = repo.Get(h)
		require.NoError(t, err)
	}

	for i := 0; i < 100; i++ {
		v, ok, err := pt.Find(repo, root, key(fmt.Sprintf("key_%03d", i)))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, fmt.Sprintf("val_%d", i), v)
	}
	assert.False(t, rootHash.IsZero())
	require.NoError(t, commit())
}

// TestHeightBound mirrors the reference implementation's own height test:
// with the default modulus, 100 keys should never push the tree past 3
// levels.
func TestHeightBound(t *testing.T) {
	repo, commit := newTestRepo(t)

	root := pt.New()
	for i := 0; i < 100; i++ {
		h, err := pt.Upsert(repo, root, pt.DefaultChunkModulus, key(fmt.Sprintf("k%02d", i)), fmt.Sprintf("v%02d", i))
		require.NoError(t, err)
		root, err = repo.Get(h)
		require.NoError(t, err)

		height, err := pt.Height(repo, root)
		require.NoError(t, err)
		assert.LessOrEqual(t, height, 3, "height grew too much at iteration %d", i)
	}
	require.NoError(t, commit())
}

// TestDuplicateWriteIsIdempotent checks that writing the same key/value
// pair twice leaves the root hash unchanged.
func TestDuplicateWriteIsIdempotent(t *testing.T) {
	repo, commit := newTestRepo(t)

	firstHash, err := pt.Upsert(repo, pt.New(), pt.DefaultChunkModulus, key("k"), "v")
	require.NoError(t, err)
	root, err := repo.Get(firstHash)
	require.NoError(t, err)

	secondHash, err := pt.Upsert(repo, root, pt.DefaultChunkModulus, key("k"), "v")
	require.NoError(t, err)

	assert.Equal(t, firstHash, secondHash)
	require.NoError(t, commit())
}
