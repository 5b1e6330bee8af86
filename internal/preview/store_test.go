package preview

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestStoreSetAndOpen(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	handle, err := store.Set("scan.jpg", "image/jpeg", bytes.NewReader([]byte("scan bytes")))
	require.NoError(t, err)
	require.NotEmpty(t, handle.Token)
	assert.Equal(t, "scan.jpg", handle.FileName)
	assert.Equal(t, "image/jpeg", handle.ContentType)

	file, got, err := store.Open(handle.Token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, handle.Token, got.Token)

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, []byte("scan bytes"), content)
}

func TestStoreReplaceReleasesPrevious(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	first, err := store.Set("a.jpg", "image/jpeg", bytes.NewReader([]byte("first")))
	require.NoError(t, err)
	require.Len(t, listFiles(t, dir), 1)

	second, err := store.Set("b.png", "image/png", bytes.NewReader([]byte("second")))
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	// exactly one file remains: the old handle's file is gone
	require.Len(t, listFiles(t, dir), 1)

	_, _, err = store.Open(first.Token)
	assert.Error(t, err, "released handle must not resolve")

	file, _, err := store.Open(second.Token)
	require.NoError(t, err)
	file.Close()
}

func TestStoreClear(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	// clearing with no live handle is a no-op
	require.NoError(t, store.Clear())

	handle, err := store.Set("a.jpg", "image/jpeg", bytes.NewReader([]byte("first")))
	require.NoError(t, err)

	require.NoError(t, store.Clear())
	assert.Empty(t, listFiles(t, dir))
	assert.Nil(t, store.Current())

	_, _, err = store.Open(handle.Token)
	assert.Error(t, err)

	// a second clear is still a no-op, not a double release
	require.NoError(t, store.Clear())
}

func TestStoreOpenRejectsBadTokens(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	_, _, err = store.Open("../escape")
	assert.Error(t, err)

	_, _, err = store.Open("nonexistent-token")
	assert.Error(t, err)
}
