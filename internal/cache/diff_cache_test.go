package cache

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svnscope/svnscope-go/internal/reconcile"
)

func openTestCache(t *testing.T) *DiffCache {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	c, err := Open(filepath.Join(t.TempDir(), "diffcache.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGetRoundtrip(t *testing.T) {
	c := openTestCache(t)

	want := reconcile.DiffResult{Added: 12, Removed: 3}
	require.NoError(t, c.Put("src/a.c", "42", want))

	got, ok, err := c.Get("src/a.c", "42")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestGetMissingKey(t *testing.T) {
	c := openTestCache(t)

	_, ok, err := c.Get("src/a.c", "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBinaryResultsSurviveRoundtrip(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Put("img/logo.png", "7", reconcile.DiffResult{Binary: true}))

	got, ok, err := c.Get("img/logo.png", "7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Binary)
}

func TestKeysAreScopedByPathAndRevision(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Put("a.c", "1", reconcile.DiffResult{Added: 1}))
	require.NoError(t, c.Put("a.c", "2", reconcile.DiffResult{Added: 2}))
	require.NoError(t, c.Put("b.c", "1", reconcile.DiffResult{Added: 3}))

	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, ok, err := c.Get("a.c", "2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.Added)
}
