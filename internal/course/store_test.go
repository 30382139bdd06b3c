package course

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/fairway/internal/store"
)

func newTestCourseStore(t *testing.T) *Store {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	cs := newTestCourseStore(t)
	ctx := context.Background()

	first, err := cs.GetOrCreate(ctx, "Pebble Creek", "Blue", pebbleCreekHoles(), time.UnixMilli(1000))
	require.NoError(t, err)

	// Second call with a later clock must return the original snapshot,
	// CreatedAt included.
	second, err := cs.GetOrCreate(ctx, "Pebble Creek", "Blue", pebbleCreekHoles(), time.UnixMilli(9000))
	require.NoError(t, err)

	assert.Equal(t, first.ContentHash, second.ContentHash)
	assert.True(t, second.CreatedAt.Equal(time.UnixMilli(1000)),
		"CreatedAt must reflect first insertion, got %v", second.CreatedAt)
}

func TestGetOrCreate_DistinctTeeSetsDistinctSnapshots(t *testing.T) {
	cs := newTestCourseStore(t)
	ctx := context.Background()

	blue, err := cs.GetOrCreate(ctx, "Pebble Creek", "Blue", pebbleCreekHoles(), time.UnixMilli(1000))
	require.NoError(t, err)

	white, err := cs.GetOrCreate(ctx, "Pebble Creek", "White", pebbleCreekHoles(), time.UnixMilli(1000))
	require.NoError(t, err)

	assert.NotEqual(t, blue.ContentHash, white.ContentHash)
}

func TestGet_RoundTrip(t *testing.T) {
	cs := newTestCourseStore(t)
	ctx := context.Background()

	created, err := cs.GetOrCreate(ctx, "Pebble Creek", "Blue", pebbleCreekHoles(), time.UnixMilli(1000))
	require.NoError(t, err)

	got, err := cs.Get(ctx, created.ContentHash)
	require.NoError(t, err)

	assert.Equal(t, "Pebble Creek", got.CourseName)
	assert.Equal(t, "Blue", got.TeeSetName)
	assert.Equal(t, pebbleCreekHoles(), got.Holes)
}

func TestGet_NotFound(t *testing.T) {
	cs := newTestCourseStore(t)

	_, err := cs.Get(context.Background(), "no-such-hash")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, IsUntrustedContent(err), "a miss must not look like tampering")
}

func TestImportVerified_StoresUnderSameHash(t *testing.T) {
	cs := newTestCourseStore(t)
	ctx := context.Background()

	content, err := MarshalContent("Pebble Creek", "Blue", pebbleCreekHoles())
	require.NoError(t, err)
	hash, err := ContentHash("Pebble Creek", "Blue", pebbleCreekHoles())
	require.NoError(t, err)

	verified, err := VerifyContent(content, hash)
	require.NoError(t, err)

	stored, err := cs.ImportVerified(ctx, verified, time.UnixMilli(2000))
	require.NoError(t, err)
	assert.Equal(t, hash, stored.ContentHash)

	got, err := cs.Get(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, verified.Holes, got.Holes)
}
