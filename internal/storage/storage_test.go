package storage_test

import (
	"context"
	"io"
	"testing"

	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/config"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, err := store.Save(ctx, "signature-1001.png", []byte("png bytes"))
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	reader, err := store.Open(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, []byte("png bytes"), data)

	require.NoError(t, store.Delete(ctx, path))
	_, err = store.Open(ctx, path)
	assert.Error(t, err)

	// Deleting an already removed path is a no-op
	require.NoError(t, store.Delete(ctx, path))
}

func TestLocalStorage_UniquePaths(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := store.Save(ctx, "signature-1001.png", []byte("one"))
	require.NoError(t, err)
	second, err := store.Save(ctx, "signature-1001.png", []byte("two"))
	require.NoError(t, err)

	// Saving the same name twice never overwrites
	assert.NotEqual(t, first, second)
}

func TestNewStorage_UnsupportedMode(t *testing.T) {
	_, err := storage.NewStorage(&config.StorageConfig{Mode: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
