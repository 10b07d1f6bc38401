// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import (
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"time"
)

// Repository specifies all functions an archive backend needs to implement to
// be used by a [Zipper].
type Repository interface {
	// IsOpen returns true if the archive is open.
	IsOpen() bool

	// IsClosed returns true if the archive is closed.
	IsClosed() bool

	// AddFile adds the file at pathToFile as pathInArchive. An existing entry
	// with the same name is replaced.
	AddFile(pathToFile string, pathInArchive string) error

	// AddFromString adds an entry name with content. An existing entry
	// with the same name is replaced.
	AddFromString(name string, content string) error

	// AddEmptyDir adds a directory entry.
	AddEmptyDir(dirName string) error

	// RemoveFile removes the entry pathInArchive permanently.
	RemoveFile(pathInArchive string) error

	// FileContent returns the content of the entry pathInArchive.
	FileContent(pathInArchive string) ([]byte, error)

	// FileStream returns a reader for the content of the entry pathInArchive.
	// The caller must close the reader.
	FileStream(pathInArchive string) (io.ReadCloser, error)

	// Each calls fn for every regular file entry in archive order.
	// Iteration stops at the first error returned by fn. fn may modify the
	// archive, the iteration is not affected by it.
	Each(fn func(name string, info EntryInfo) error) error

	// FileExists returns true if the archive contains fileInArchive.
	FileExists(fileInArchive string) bool

	// UsePassword sets the password to be used for decompressing.
	UsePassword(password string) error

	// Status returns the status of the archive as a string.
	Status() string

	// Close persists all changes and releases the archive.
	Close() error
}

// EntryInfo describes an entry of an archive.
type EntryInfo struct {
	// Name is the full name of the entry inside the archive
	Name string

	// Size is the uncompressed size
	Size int64

	// CompressedSize is the compressed size, or -1 if unknown
	CompressedSize int64

	// CRC32 is the checksum of the uncompressed content, or 0 if unknown
	CRC32 uint32

	// Modified is the modification time
	Modified time.Time

	// Mode are the file mode bits
	Mode fs.FileMode

	// IsDir is true for directory entries
	IsDir bool
}

// RepositoryFactory opens the archive at path. If create is true, the archive
// does not exist yet and must be created on close.
type RepositoryFactory func(path string, create bool, cfg *Config) (Repository, error)

// Archive type names of the built-in repositories.
const (
	ArchiveTypeZip      = "zip"
	ArchiveTypeTar      = "tar"
	ArchiveTypeRar      = "rar"
	ArchiveTypeSevenZip = "7z"
)

// availableRepositories holds the factories that can be selected by name in [Zipper.Make]
var availableRepositories = map[string]RepositoryFactory{
	ArchiveTypeZip: func(path string, create bool, cfg *Config) (Repository, error) {
		return NewZipRepository(path, create, cfg)
	},
	ArchiveTypeTar: func(path string, create bool, cfg *Config) (Repository, error) {
		return NewTarRepository(path, create, cfg)
	},
	ArchiveTypeRar: func(path string, create bool, cfg *Config) (Repository, error) {
		return NewRarRepository(path, create, cfg)
	},
	ArchiveTypeSevenZip: func(path string, create bool, cfg *Config) (Repository, error) {
		return NewSevenZipRepository(path, create, cfg)
	},
}

// RegisterRepository makes a repository available under name for [Zipper.Make].
// An existing registration with the same name is replaced. It is not safe
// to call RegisterRepository concurrently with Make.
func RegisterRepository(name string, factory RepositoryFactory) {
	availableRepositories[strings.ToLower(name)] = factory
}

// ArchiveTypes returns the names of all registered repositories.
func ArchiveTypes() []string {
	var names []string
	for name := range availableRepositories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// findRepository returns the factory registered for archiveType
func findRepository(archiveType string) (RepositoryFactory, error) {
	factory, ok := availableRepositories[strings.ToLower(archiveType)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedArchiveType, archiveType)
	}
	return factory, nil
}

// DetectArchiveType guesses the archive type from the file name of path.
// Unknown extensions are treated as zip.
func DetectArchiveType(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".rar"):
		return ArchiveTypeRar
	case strings.HasSuffix(lower, ".7z"):
		return ArchiveTypeSevenZip
	case codecForName(lower) != nil, strings.HasSuffix(lower, ".tar"):
		return ArchiveTypeTar
	}
	return ArchiveTypeZip
}

// readOnly provides the mutating functions of a [Repository] for archive
// types that can only be read.
type readOnly struct{}

// AddFile is not supported on read-only archives.
func (readOnly) AddFile(string, string) error { return ErrReadOnlyArchive }

// AddFromString is not supported on read-only archives.
func (readOnly) AddFromString(string, string) error { return ErrReadOnlyArchive }

// AddEmptyDir is not supported on read-only archives.
func (readOnly) AddEmptyDir(string) error { return ErrReadOnlyArchive }

// RemoveFile is not supported on read-only archives.
func (readOnly) RemoveFile(string) error { return ErrReadOnlyArchive }
