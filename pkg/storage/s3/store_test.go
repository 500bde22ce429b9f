package s3

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data-juicer/dj-agent/pkg/afero"
	"github.com/data-juicer/dj-agent/pkg/storage"
)

func TestStore_GetObject(t *testing.T) {
	fake, srv := newFakeS3(t)
	fake.put("b", "x.png", []byte("png-bytes"))
	store := newTestStore(t, srv, afero.NewMemMapFs())
	ctx := context.Background()

	data, err := store.GetObject(ctx, "b", "x.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	_, err = store.GetObject(ctx, "b", "missing.png")
	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err), "got %v", err)
}

func TestStore_DownloadToFile(t *testing.T) {
	ctx := context.Background()

	t.Run("writes the object to disk", func(t *testing.T) {
		fake, srv := newFakeS3(t)
		fake.put("b", "x.png", []byte("png-bytes"))
		fs := afero.NewOsFs()
		store := newTestStore(t, srv, fs)

		target := filepath.Join(t.TempDir(), "x.png")
		require.NoError(t, store.DownloadToFile(ctx, "b", "x.png", target))

		got, err := afero.ReadFile(fs, target)
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), got)
	})

	t.Run("fetches large objects in ranges", func(t *testing.T) {
		fake, srv := newFakeS3(t)
		payload := bytes.Repeat([]byte("0123456789abcdef"), (11<<20)/16)
		fake.put("b", "big.bin", payload)
		fs := afero.NewOsFs()
		store := newTestStore(t, srv, fs)

		target := filepath.Join(t.TempDir(), "big.bin")
		require.NoError(t, store.DownloadToFile(ctx, "b", "big.bin", target))

		got, err := afero.ReadFile(fs, target)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(payload, got))
		assert.Equal(t, 3, fake.getCount(), "11MiB in 5MiB parts")
	})

	t.Run("missing object leaves no file behind", func(t *testing.T) {
		_, srv := newFakeS3(t)
		fs := afero.NewOsFs()
		store := newTestStore(t, srv, fs)

		dir := t.TempDir()
		err := store.DownloadToFile(ctx, "b", "missing.png", filepath.Join(dir, "missing.png"))
		require.Error(t, err)
		assert.True(t, storage.IsNotFound(err), "got %v", err)

		entries, err := afero.ReadDir(fs, dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestStore_UploadFile(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeS3(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tmp/d/a.txt", []byte("hello"), 0o644))
	store := newTestStore(t, srv, fs)

	require.NoError(t, store.UploadFile(ctx, "/tmp/d/a.txt", "bkt", "ds/a.txt"))

	got, ok := fake.object("bkt", "ds/a.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got)
	assert.Equal(t, []string{"bkt/ds/a.txt"}, fake.putKeys())

	err := store.UploadFile(ctx, "/tmp/d/missing.txt", "bkt", "ds/missing.txt")
	assert.Error(t, err)

	err = store.UploadFile(ctx, "/tmp/d/a.txt", forbiddenBucket, "a.txt")
	assert.ErrorIs(t, err, storage.ErrAccessDenied)
}

func TestStore_HeadObject(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeS3(t)
	fake.put("bkt", "ds/a.txt", []byte("hello"))
	store := newTestStore(t, srv, afero.NewMemMapFs())

	info, err := store.HeadObject(ctx, "bkt", "ds/a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, `"etag-bkt/ds/a.txt"`, info.ETag)

	_, err = store.HeadObject(ctx, "bkt", "ds/missing.txt")
	assert.True(t, storage.IsNotFound(err), "got %v", err)

	_, err = store.HeadObject(ctx, forbiddenBucket, "a.txt")
	require.Error(t, err)
	assert.False(t, storage.IsNotFound(err))
	assert.ErrorIs(t, err, storage.ErrAccessDenied)
}
