package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskAssetStore_SaveAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads", "images")
	assets, err := NewDiskAssetStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	path, err := assets.Save(ctx, strings.NewReader("png-bytes"), "png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".png"))

	data, err := os.ReadFile(filepath.FromSlash(path))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, assets.DeleteByPath(ctx, path))
	_, err = os.Stat(filepath.FromSlash(path))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, assets.DeleteByPath(ctx, path), "already gone")
}

func TestDiskAssetStore_RefusesPathsOutsideDir(t *testing.T) {
	root := t.TempDir()
	assets, err := NewDiskAssetStore(filepath.Join(root, "images"))
	require.NoError(t, err)
	outside := filepath.Join(root, "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	err = assets.DeleteByPath(context.Background(), filepath.Join(root, "images", "..", "keep.txt"))

	assert.Error(t, err)
	_, statErr := os.Stat(outside)
	assert.NoError(t, statErr)
}
