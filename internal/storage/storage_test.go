package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/straye-as/project-tracker/internal/config"
	"github.com/straye-as/project-tracker/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path, size, err := s.Upload(ctx, "Spec Sheet.PDF", "application/pdf", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
	assert.True(t, strings.HasSuffix(path, ".pdf"))

	rc, err := s.Download(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, path))
	_, err = s.Download(ctx, path)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	// Deleting twice is fine
	assert.NoError(t, s.Delete(ctx, path))
}

func TestLocalStorage_UniquePaths(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	a, _, err := s.Upload(ctx, "a.png", "image/png", strings.NewReader("1"))
	require.NoError(t, err)
	b, _, err := s.Upload(ctx, "a.png", "image/png", strings.NewReader("2"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../secret.json", "..", "", "/etc/passwd"} {
		_, err := s.Download(ctx, p)
		assert.True(t, errors.Is(err, storage.ErrInvalidPath), p)
		assert.True(t, errors.Is(s.Delete(ctx, p), storage.ErrInvalidPath), p)
	}
}

func TestNewStorage_Modes(t *testing.T) {
	dir := t.TempDir()

	s, err := storage.NewStorage(&config.StorageConfig{Mode: "local"}, storage.AreaFiles, dir, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, s)

	_, err = storage.NewStorage(&config.StorageConfig{Mode: "azure"}, storage.AreaImages, dir, zap.NewNop())
	assert.Error(t, err, "azure mode needs a connection string")

	_, err = storage.NewStorage(&config.StorageConfig{Mode: "ftp"}, storage.AreaFiles, dir, zap.NewNop())
	assert.Error(t, err)
}
