package mst_test

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tudgoi/pika/codec"
	"github.com/tudgoi/pika/mst"
	"github.com/tudgoi/pika/storedb"
)

func newTestRepo(t *testing.T) (*mst.Repo, func() error) {
	t.Helper()
	db, err := storedb.Open(filepath.Join(t.TempDir(), "test.pika"))
	require.NoError(t, err)
	wtx, err := db.BeginWrite()
	require.NoError(t, err)
	table, err := wtx.OpenRepo()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mst.NewRepo(table, 256), wtx.Commit
}

func key(entity string) codec.TreeKey {
	return codec.TreeKey{Entity: entity, Attribute: "v"}
}

func TestUpsertNewKey(t *testing.T) {
	repo, commit := newTestRepo(t)

	rootHash, err := mst.Upsert(repo, mst.New(), key("test_key"), "test_value")
	require.NoError(t, err)
	assert.False(t, rootHash.IsZero())

	root, err := repo.Get(rootHash)
	require.NoError(t, err)

	v, ok, err := mst.Find(repo, root, key("test_key"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "test_value", v)
	require.NoError(t, commit())
}

func TestUpsertUpdateExistingKey(t *testing.T) {
	repo, commit := newTestRepo(t)

	initialHash, err := mst.Upsert(repo, mst.New(), key("test_key"), "initial_value")
	require.NoError(t, err)

	initialRoot, err := repo.Get(initialHash)
	require.NoError(t, err)

	updatedHash, err := mst.Upsert(repo, initialRoot, key("test_key"), "updated_value")
	require.NoError(t, err)

	assert.NotEqual(t, initialHash, updatedHash)

	updatedRoot, err := repo.Get(updatedHash)
	require.NoError(t, err)
	v, ok, err := mst.Find(repo, updatedRoot, key("test_key"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "updated_value", v)
	require.NoError(t, commit())
}

func TestFindNonExistentKey(t *testing.T) {
	repo, commit := newTestRepo(t)

	v, ok, err := mst.Find(repo, mst.New(), key("non_existent_key"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", v)
	require.NoError(t, commit())
}

func TestStructureMultilevel(t *testing.T) {
	repo, commit := newTestRepo(t)

	root := mst.New()
	var rootHash codec.Hash
	for i := 0; i < 50; i++ {
		h, err := mst.Upsert(repo, root, key(fmt.Sprintf("key_%d", i)), fmt.Sprintf("val_%d", i))
		require.NoError(t, err)
		rootHash = h
		root, err = repo.Get(h)
		require.NoError(t, err)
	}

	for i := 0; i < 50; i++ {
		v, ok, err := mst.Find(repo, root, key(fmt.Sprintf("key_%d", i)))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, fmt.Sprintf("val_%d", i), v)
	}
	assert.False(t, rootHash.IsZero())
	require.NoError(t, commit())
}

// buildTree upserts every key in order and returns the final root hash.
func buildTree(t *testing.T, repo *mst.Repo, keys []string) codec.Hash {
	t.Helper()
	root := mst.New()
	var rootHash codec.Hash
	for _, k := range keys {
		h, err := mst.Upsert(repo, root, key(k), "val:"+k)
		require.NoError(t, err)
		rootHash = h
		root, err = repo.Get(h)
		require.NoError(t, err)
	}
	return rootHash
}

// TestHistoryIndependence checks the defining MST property: the same key
// set produces the same root hash no matter what order it was inserted in.
func TestHistoryIndependence(t *testing.T) {
	keys := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"}

	repoA, commitA := newTestRepo(t)
	hashA := buildTree(t, repoA, keys)
	require.NoError(t, commitA())

	shuffled := make([]string, len(keys))
	copy(shuffled, keys)
	rand.New(rand.NewSource(1)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	repoB, commitB := newTestRepo(t)
	hashB := buildTree(t, repoB, shuffled)
	require.NoError(t, commitB())

	assert.Equal(t, hashA, hashB)
}

// TestDuplicateWriteIsIdempotent checks that writing the same key/value
// pair twice leaves the root hash unchanged.
func TestDuplicateWriteIsIdempotent(t *testing.T) {
	repo, commit := newTestRepo(t)

	firstHash, err := mst.Upsert(repo, mst.New(), key("k"), "v")
	require.NoError(t, err)
	root, err := repo.Get(firstHash)
	require.NoError(t, err)

	secondHash, err := mst.Upsert(repo, root, key("k"), "v")
	require.NoError(t, err)

	assert.Equal(t, firstHash, secondHash)
	require.NoError(t, commit())
}
