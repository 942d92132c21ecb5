package storedb_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tudgoi/pika/codec"
	"github.com/tudgoi/pika/storedb"
)

func openTestDB(t *testing.T) *storedb.DB {
	t.Helper()
	db, err := storedb.Open(filepath.Join(t.TempDir(), "test.pika"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEAVRoundTrip(t *testing.T) {
	db := openTestDB(t)

	wtx, err := db.BeginWrite()
	require.NoError(t, err)
	eav, err := wtx.OpenEAV()
	require.NoError(t, err)
	require.NoError(t, eav.Insert("alice", "name", "Alice"))
	require.NoError(t, wtx.Commit())

	rtx, err := db.BeginRead()
	require.NoError(t, err)
	defer rtx.Rollback()
	eavR, err := rtx.OpenEAV()
	require.NoError(t, err)

	v, ok, err := eavR.Get("alice", "name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Alice", v)

	_, ok, err = eavR.Get("alice", "age")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepoIdempotentInsert(t *testing.T) {
	db := openTestDB(t)

	h := codec.Sum([]byte("blob"))

	wtx, err := db.BeginWrite()
	require.NoError(t, err)
	repo, err := wtx.OpenRepo()
	require.NoError(t, err)
	require.NoError(t, repo.Insert(h, []byte("blob")))
	require.NoError(t, repo.Insert(h, []byte("different-but-same-hash-slot")))
	require.NoError(t, wtx.Commit())

	rtx, err := db.BeginRead()
	require.NoError(t, err)
	defer rtx.Rollback()
	repoR, err := rtx.OpenRepo()
	require.NoError(t, err)

	got, ok, err := repoR.Get(h)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("blob"), got)
}

func TestOpenMissingTableIsDistinctError(t *testing.T) {
	db := openTestDB(t)

	rtx, err := db.BeginRead()
	require.NoError(t, err)
	defer rtx.Rollback()

	_, err = rtx.OpenOptions()
	assert.ErrorIs(t, err, storedb.ErrTableDoesNotExist)
}

func TestRefsTable(t *testing.T) {
	db := openTestDB(t)
	h := codec.Sum([]byte("root"))

	wtx, err := db.BeginWrite()
	require.NoError(t, err)
	refs, err := wtx.OpenRefs()
	require.NoError(t, err)
	require.NoError(t, refs.Insert("root", h))
	require.NoError(t, wtx.Commit())

	rtx, err := db.BeginRead()
	require.NoError(t, err)
	defer rtx.Rollback()
	refsR, err := rtx.OpenRefs()
	require.NoError(t, err)

	got, ok, err := refsR.Get("root")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, h, got)

	_, ok, err = refsR.Get("nosuch")
	require.NoError(t, err)
	assert.False(t, ok)
}
