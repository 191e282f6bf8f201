package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenshotStore_PutIsContentAddressed(t *testing.T) {
	dir := t.TempDir()
	store := NewScreenshotStore(dir)

	data := []byte("fake-png-bytes")
	ref, err := store.Put(data)
	require.NoError(t, err)

	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:])+".png", ref)

	written, err := os.ReadFile(filepath.Join(dir, ref))
	require.NoError(t, err)
	assert.Equal(t, data, written)
}

func TestScreenshotStore_PutIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store := NewScreenshotStore(dir)

	data := []byte("identical-bytes")
	ref1, err := store.Put(data)
	require.NoError(t, err)
	ref2, err := store.Put(data)
	require.NoError(t, err)

	assert.Equal(t, ref1, ref2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestScreenshotStore_DifferentBytesDifferentRefs(t *testing.T) {
	dir := t.TempDir()
	store := NewScreenshotStore(dir)

	ref1, err := store.Put([]byte("a"))
	require.NoError(t, err)
	ref2, err := store.Put([]byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, ref1, ref2)
}
