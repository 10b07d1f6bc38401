// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build windows

package zipper

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// tempFile is written next to its destination and renamed on commit.
// renameio does not support windows.
type tempFile struct {
	*os.File
	dst  string
	done bool
}

// Commit closes the file and renames it to its destination.
func (t *tempFile) Commit() error {
	if err := t.Close(); err != nil {
		return err
	}
	if err := os.Rename(t.Name(), t.dst); err != nil {
		return err
	}
	t.done = true
	return nil
}

// Cleanup removes the file if it was not committed.
func (t *tempFile) Cleanup() error {
	if t.done {
		return nil
	}
	t.Close()
	return os.Remove(t.Name())
}

// createAtomicFile creates a temporary file next to path, that replaces path on commit.
func createAtomicFile(path string, mode fs.FileMode) (atomicFile, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"*")
	if err != nil {
		return nil, fmt.Errorf("cannot create temporary file: %w", err)
	}
	if err := f.Chmod(mode.Perm()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("cannot set file mode: %w", err)
	}
	return &tempFile{File: f, dst: path}, nil
}
