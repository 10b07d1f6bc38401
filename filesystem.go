// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Filesystem specifies the file operations the zipper needs to add files to an
// archive and to write extracted entries.
type Filesystem interface {
	// Exists returns true if path exists.
	Exists(path string) bool

	// IsFile returns true if path is a regular file. Symlinks are followed.
	IsFile(path string) bool

	// Stat returns the file info of path. Symlinks are followed.
	Stat(path string) (fs.FileInfo, error)

	// Open opens the file path for reading.
	Open(path string) (io.ReadCloser, error)

	// IsWritable returns true if the current process may write to path.
	IsWritable(path string) bool

	// MakeDirectory creates the directory path with mode. If recursive is true,
	// missing parents are created as well and an existing directory is not an error.
	MakeDirectory(path string, mode fs.FileMode, recursive bool) error

	// Files returns the paths of the regular files directly inside dir, sorted by name.
	Files(dir string) ([]string, error)

	// Directories returns the paths of the directories directly inside dir, sorted by name.
	Directories(dir string) ([]string, error)

	// Put writes src to path with mode. If the file exists and overwrite is false,
	// an error is returned. At most maxSize bytes are written, if maxSize < 0 the
	// size is not limited. The number of written bytes is returned.
	Put(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// Delete removes path. A missing path is not an error.
	Delete(path string) error
}

// AferoFilesystem implements [Filesystem] on top of an [afero.Fs].
type AferoFilesystem struct {
	fs afero.Fs
}

// NewFilesystem creates a [Filesystem] backed by fsys.
func NewFilesystem(fsys afero.Fs) *AferoFilesystem {
	return &AferoFilesystem{fs: fsys}
}

// NewDiskFilesystem creates a [Filesystem] operating on the disk of the host.
func NewDiskFilesystem() *AferoFilesystem {
	return NewFilesystem(afero.NewOsFs())
}

// NewMemoryFilesystem creates a [Filesystem] that keeps all files in memory.
func NewMemoryFilesystem() *AferoFilesystem {
	return NewFilesystem(afero.NewMemMapFs())
}

// Fs returns the underlying afero filesystem.
func (a *AferoFilesystem) Fs() afero.Fs {
	return a.fs
}

// Exists returns true if path exists.
func (a *AferoFilesystem) Exists(path string) bool {
	ok, err := afero.Exists(a.fs, path)
	return err == nil && ok
}

// IsFile returns true if path is a regular file.
func (a *AferoFilesystem) IsFile(path string) bool {
	stat, err := a.fs.Stat(path)
	if err != nil {
		return false
	}
	return stat.Mode().IsRegular()
}

// Stat returns the file info of path.
func (a *AferoFilesystem) Stat(path string) (fs.FileInfo, error) {
	return a.fs.Stat(path)
}

// Open opens the file path for reading.
func (a *AferoFilesystem) Open(path string) (io.ReadCloser, error) {
	return a.fs.Open(path)
}

// IsWritable returns true if the current process may write to path.
func (a *AferoFilesystem) IsWritable(path string) bool {
	if _, ok := a.fs.(*afero.OsFs); ok {
		return isWritableOnDisk(path)
	}

	// no access control on other filesystems, consult the permission bits
	stat, err := a.fs.Stat(path)
	if err != nil {
		return false
	}
	return stat.Mode().Perm()&0200 != 0
}

// MakeDirectory creates the directory path with mode.
func (a *AferoFilesystem) MakeDirectory(path string, mode fs.FileMode, recursive bool) error {
	if recursive {
		if err := a.fs.MkdirAll(path, mode.Perm()); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		return nil
	}
	if err := a.fs.Mkdir(path, mode.Perm()); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Files returns the regular files directly inside dir.
func (a *AferoFilesystem) Files(dir string) ([]string, error) {
	return a.list(dir, func(fi fs.FileInfo) bool {
		return fi.Mode().IsRegular()
	})
}

// Directories returns the directories directly inside dir.
func (a *AferoFilesystem) Directories(dir string) ([]string, error) {
	return a.list(dir, func(fi fs.FileInfo) bool {
		return fi.IsDir()
	})
}

// list returns the sorted paths of all entries of dir accepted by keep
func (a *AferoFilesystem) list(dir string, keep func(fs.FileInfo) bool) ([]string, error) {
	infos, err := afero.ReadDir(a.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, dir)
		}
		return nil, fmt.Errorf("cannot read directory: %w", err)
	}

	var paths []string
	for _, fi := range infos {
		// resolve symlinks like a directory walk in a shell would
		if fi.Mode()&fs.ModeSymlink != 0 {
			resolved, err := a.fs.Stat(filepath.Join(dir, fi.Name()))
			if err != nil {
				continue
			}
			fi = resolved
		}
		if keep(fi) {
			paths = append(paths, filepath.Join(dir, fi.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Put writes src to path. A file truncated by maxSize is removed.
func (a *AferoFilesystem) Put(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (n int64, err error) {
	// check for file existence and overwrite
	if _, err := a.fs.Stat(path); !errors.Is(err, fs.ErrNotExist) {

		// something wrong with path
		if err != nil {
			return 0, fmt.Errorf("invalid path: %w", err)
		}

		// check for overwrite
		if !overwrite {
			return 0, fmt.Errorf("%w: %s", fs.ErrExist, path)
		}
	}

	// create dst file
	dstFile, err := a.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := dstFile.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
		if errors.Is(err, ErrMaxExtractionSizeExceeded) {
			if rerr := a.fs.Remove(path); rerr != nil {
				err = fmt.Errorf("%w (cannot remove %s: %v)", err, path, rerr)
			}
		}
	}()

	// write data to file
	n, err = io.Copy(limitWriter(dstFile, maxSize), src)
	if err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}

	return n, nil
}

// Delete removes path.
func (a *AferoFilesystem) Delete(path string) error {
	if err := a.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}
