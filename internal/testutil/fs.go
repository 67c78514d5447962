// Package testutil provides test helpers for exercising storage failure
// modes without touching a real filesystem.
package testutil

import (
	"os"

	"github.com/go-git/go-billy/v5"
)

// FaultFS wraps a billy.Filesystem and fails selected operations so tests
// can drive storage error paths deterministically. A nil error field
// passes the call through to the wrapped filesystem.
type FaultFS struct {
	billy.Filesystem

	// CreateErr fails Create and TempFile
	CreateErr error

	// OpenErr fails Open and OpenFile
	OpenErr error

	// RenameErr fails Rename
	RenameErr error

	// RemoveErr fails Remove
	RemoveErr error

	// ReadDirErr fails ReadDir
	ReadDirErr error

	// StatErr fails Stat
	StatErr error
}

// NewFaultFS wraps fsys with no failures configured.
func NewFaultFS(fsys billy.Filesystem) *FaultFS {
	return &FaultFS{Filesystem: fsys}
}

func (f *FaultFS) Create(name string) (billy.File, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return f.Filesystem.Create(name)
}

func (f *FaultFS) TempFile(dir, prefix string) (billy.File, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return f.Filesystem.TempFile(dir, prefix)
}

func (f *FaultFS) Open(name string) (billy.File, error) {
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	return f.Filesystem.Open(name)
}

func (f *FaultFS) OpenFile(name string, flag int, perm os.FileMode) (billy.File, error) {
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	return f.Filesystem.OpenFile(name, flag, perm)
}

func (f *FaultFS) Rename(oldpath, newpath string) error {
	if f.RenameErr != nil {
		return f.RenameErr
	}
	return f.Filesystem.Rename(oldpath, newpath)
}

func (f *FaultFS) Remove(name string) error {
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	return f.Filesystem.Remove(name)
}

func (f *FaultFS) ReadDir(path string) ([]os.FileInfo, error) {
	if f.ReadDirErr != nil {
		return nil, f.ReadDirErr
	}
	return f.Filesystem.ReadDir(path)
}

func (f *FaultFS) Stat(name string) (os.FileInfo, error) {
	if f.StatErr != nil {
		return nil, f.StatErr
	}
	return f.Filesystem.Stat(name)
}
