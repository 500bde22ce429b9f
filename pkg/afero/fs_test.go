package afero

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingFile(t *testing.T) {
	filesystems := map[string]func(t *testing.T) (Fs, string){
		"mem": func(t *testing.T) (Fs, string) {
			fs := NewMemMapFs()
			require.NoError(t, fs.MkdirAll("/data", 0o755))
			return fs, "/data"
		},
		"os": func(t *testing.T) (Fs, string) {
			return NewOsFs(), t.TempDir()
		},
	}

	for name, setup := range filesystems {
		t.Run(name, func(t *testing.T) {
			t.Run("commit moves content into place", func(t *testing.T) {
				fs, dir := setup(t)
				dest := filepath.Join(dir, "x.png")

				p, err := CreatePending(fs, dest)
				require.NoError(t, err)
				_, err = p.Write([]byte("payload"))
				require.NoError(t, err)
				require.NoError(t, p.Commit())

				got, err := ReadFile(fs, dest)
				require.NoError(t, err)
				assert.Equal(t, "payload", string(got))

				entries, err := ReadDir(fs, dir)
				require.NoError(t, err)
				assert.Len(t, entries, 1, "temp file must not survive commit")
			})

			t.Run("abort leaves nothing behind", func(t *testing.T) {
				fs, dir := setup(t)
				dest := filepath.Join(dir, "y.png")

				p, err := CreatePending(fs, dest)
				require.NoError(t, err)
				_, err = p.Write([]byte("partial"))
				require.NoError(t, err)
				p.Abort()

				exists, err := Exists(fs, dest)
				require.NoError(t, err)
				assert.False(t, exists)
				assert.NoError(t, p.Commit(), "commit after abort is a no-op")
			})
		})
	}
}

func TestIsRegularFile(t *testing.T) {
	fs := NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/dir", 0o755))
	require.NoError(t, WriteFile(fs, "/dir/a.txt", []byte("a"), 0o644))

	assert.True(t, IsRegularFile(fs, "/dir/a.txt"))
	assert.False(t, IsRegularFile(fs, "/dir"))
	assert.False(t, IsRegularFile(fs, "/dir/missing.txt"))
}
