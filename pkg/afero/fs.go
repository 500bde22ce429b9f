// Package afero wraps spf13's afero with the few helpers the agents need on
// top of a plain afero.Fs, so the mappers and the S3 store can run against
// an in-memory filesystem in tests.
package afero

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

type (
	Fs   = afero.Fs
	File = afero.File
)

func NewOsFs() Fs     { return afero.NewOsFs() }
func NewMemMapFs() Fs { return afero.NewMemMapFs() }

func WriteFile(fs Fs, filename string, data []byte, perm os.FileMode) error {
	return afero.WriteFile(fs, filename, data, perm)
}

func ReadFile(fs Fs, filename string) ([]byte, error) {
	return afero.ReadFile(fs, filename)
}

func ReadDir(fs Fs, dirname string) ([]os.FileInfo, error) {
	return afero.ReadDir(fs, dirname)
}

// TempDir creates a new temporary directory under dir with the given prefix.
func TempDir(fs Fs, dir, prefix string) (string, error) {
	return afero.TempDir(fs, dir, prefix)
}

// Exists returns true and nil error if the given path for a file or directory
// exists.
func Exists(fs Fs, path string) (bool, error) {
	return afero.Exists(fs, path)
}

// IsRegularFile reports whether path exists and is neither a directory nor
// some other special file.
func IsRegularFile(fs Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// PendingFile is a temp file next to its final destination. Commit moves it
// into place, Abort throws it away. Readers never observe a half-written
// destination.
type PendingFile struct {
	File

	fs       Fs
	destPath string
	direct   bool
	done     bool
}

// CreatePending opens a temp file in the directory of destPath.
func CreatePending(fs Fs, destPath string) (*PendingFile, error) {
	dir, base := filepath.Split(destPath)
	if dir == "" {
		dir = "."
	}

	if isRenameBugged(fs) {
		f, err := fs.OpenFile(destPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", destPath, err)
		}
		return &PendingFile{File: f, fs: fs, destPath: destPath, direct: true}, nil
	}

	f, err := afero.TempFile(fs, dir, "."+base+"~")
	if err != nil {
		return nil, fmt.Errorf("creating tmp file for atomic write: %w", err)
	}
	return &PendingFile{File: f, fs: fs, destPath: destPath}, nil
}

// Commit closes the temp file and renames it over the destination.
func (p *PendingFile) Commit() error {
	if p.done {
		return nil
	}
	p.done = true

	if err := p.File.Close(); err != nil {
		_ = p.fs.Remove(p.File.Name())
		return fmt.Errorf("closing %s: %w", p.File.Name(), err)
	}
	if p.direct {
		return nil
	}
	if err := p.fs.Rename(p.File.Name(), p.destPath); err != nil {
		_ = p.fs.Remove(p.File.Name())
		return fmt.Errorf("renaming into %s: %w", p.destPath, err)
	}
	return nil
}

// Abort closes and removes the temp file. It is a no-op after Commit.
func (p *PendingFile) Abort() {
	if p.done {
		return
	}
	p.done = true

	_ = p.File.Close()
	_ = p.fs.Remove(p.File.Name())
}

// HACK: MemMapFs has historically mishandled renames of open files. It only
// backs tests, so writing straight into the destination is fine there.
func isRenameBugged(fs Fs) bool {
	_, ok := fs.(*afero.MemMapFs)
	return ok
}
