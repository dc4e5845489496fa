package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(LocalStorageConfig{
		BasePath: t.TempDir(),
		BaseURL:  "/uploads/",
	})
	require.NoError(t, err)
	return s
}

func TestLocalStorageUploadReadDelete(t *testing.T) {
	s := newTestLocalStorage(t)
	key := "tasks/abc/file.pdf"

	url, err := s.UploadFile(strings.NewReader("%PDF-1.4 hello"), key, 14, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/tasks/abc/file.pdf", url)

	exists, err := s.Exists(key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, contentType, err := s.GetFileContent(key)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "%PDF-1.4 hello", string(data))
	assert.Equal(t, "application/pdf", contentType)

	require.NoError(t, s.DeleteFile(key))
	exists, err = s.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)

	// โฟลเดอร์ว่างของ task ถูกลบตาม
	_, err = os.Stat(filepath.Join(s.BasePath(), "tasks", "abc"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageDeleteMissingIsNoop(t *testing.T) {
	s := newTestLocalStorage(t)
	assert.NoError(t, s.DeleteFile("tasks/none/missing.png"))
}

func TestLocalStorageRejectsOverwrite(t *testing.T) {
	s := newTestLocalStorage(t)
	key := "tasks/abc/same.txt"

	_, err := s.UploadFile(strings.NewReader("one"), key, 3, "text/plain")
	require.NoError(t, err)
	_, err = s.UploadFile(strings.NewReader("two"), key, 3, "text/plain")
	assert.Error(t, err)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	s := newTestLocalStorage(t)

	for _, key := range []string{"../outside.txt", "tasks/../../outside.txt", ""} {
		_, err := s.UploadFile(strings.NewReader("x"), key, 1, "text/plain")
		assert.ErrorIs(t, err, ErrUnsafePath, "key %q", key)
	}
}

func TestLocalStorageListKeys(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	keys, err := s.ListKeys(ctx, "tasks/")
	require.NoError(t, err)
	assert.Empty(t, keys)

	for _, key := range []string{"tasks/a/one.pdf", "tasks/b/two.png", "other/three.txt"} {
		_, err := s.UploadFile(strings.NewReader("x"), key, 1, "text/plain")
		require.NoError(t, err)
	}

	keys, err = s.ListKeys(ctx, "tasks/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tasks/a/one.pdf", "tasks/b/two.png"}, keys)
}

func TestLocalStorageProviderName(t *testing.T) {
	assert.Equal(t, "local", newTestLocalStorage(t).GetProviderName())
}
