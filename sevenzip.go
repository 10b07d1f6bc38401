// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import (
	"fmt"
	"io"

	"github.com/bodgit/sevenzip"
)

// SevenZipRepository is a read-only [Repository] for 7-Zip archives.
type SevenZipRepository struct {
	readOnly
	cfg     *Config
	path    string
	rc      *sevenzip.ReadCloser
	byName  map[string]*sevenzip.File
	lastErr error
}

// NewSevenZipRepository opens the 7-Zip archive at path. 7-Zip archives cannot
// be created.
func NewSevenZipRepository(path string, create bool, cfg *Config) (*SevenZipRepository, error) {
	if create {
		return nil, fmt.Errorf("cannot create %s: %w", path, ErrReadOnlyArchive)
	}
	if cfg == nil {
		cfg = NewConfig()
	}
	rc, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	s := &SevenZipRepository{cfg: cfg, path: path}
	s.use(rc)
	return s, nil
}

// use makes rc the open archive
func (s *SevenZipRepository) use(rc *sevenzip.ReadCloser) {
	s.rc = rc
	s.byName = make(map[string]*sevenzip.File, len(rc.File))
	for _, f := range rc.File {
		s.byName[f.Name] = f
	}
	s.cfg.Logger().Debug("opened 7z", "path", s.path, "entries", len(rc.File))
}

// sevenZipEntryInfo converts the header of f
func sevenZipEntryInfo(f *sevenzip.File) EntryInfo {
	fi := f.FileInfo()
	return EntryInfo{
		Name:           f.Name,
		Size:           fi.Size(),
		CompressedSize: -1,
		CRC32:          f.CRC32,
		Modified:       fi.ModTime(),
		Mode:           fi.Mode(),
		IsDir:          fi.IsDir(),
	}
}

// Type returns the archive type.
func (s *SevenZipRepository) Type() string {
	return ArchiveTypeSevenZip
}

// IsOpen returns true if the archive is open.
func (s *SevenZipRepository) IsOpen() bool {
	return s.rc != nil
}

// IsClosed returns true if the archive is closed.
func (s *SevenZipRepository) IsClosed() bool {
	return s.rc == nil
}

// FileContent returns the content of the entry pathInArchive.
func (s *SevenZipRepository) FileContent(pathInArchive string) ([]byte, error) {
	rc, err := s.FileStream(pathInArchive)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FileStream returns a reader for the entry pathInArchive.
func (s *SevenZipRepository) FileStream(pathInArchive string) (io.ReadCloser, error) {
	if s.rc == nil {
		return nil, ErrNoArchive
	}
	f, ok := s.byName[pathInArchive]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, pathInArchive)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, s.fail(fmt.Errorf("cannot open %s: %w", pathInArchive, err))
	}
	return rc, nil
}

// Each calls fn for every file entry.
func (s *SevenZipRepository) Each(fn func(name string, info EntryInfo) error) error {
	if s.rc == nil {
		return ErrNoArchive
	}
	for _, f := range s.rc.File {
		// shadowed by a later entry with the same name
		if s.byName[f.Name] != f {
			continue
		}
		info := sevenZipEntryInfo(f)
		if info.IsDir || !info.Mode.IsRegular() {
			continue
		}
		if err := fn(f.Name, info); err != nil {
			return err
		}
	}
	return nil
}

// FileExists returns true if the archive contains fileInArchive.
func (s *SevenZipRepository) FileExists(fileInArchive string) bool {
	_, ok := s.byName[fileInArchive]
	return s.rc != nil && ok
}

// UsePassword opens the archive again with password.
func (s *SevenZipRepository) UsePassword(password string) error {
	rc, err := sevenzip.OpenReaderWithPassword(s.path, password)
	if err != nil {
		return s.fail(fmt.Errorf("cannot read %s with password: %w", s.path, err))
	}
	if s.rc != nil {
		s.rc.Close()
	}
	s.use(rc)
	return nil
}

// Status returns "No error" or the last error.
func (s *SevenZipRepository) Status() string {
	if s.lastErr != nil {
		return s.lastErr.Error()
	}
	return statusOK
}

// Close closes the archive.
func (s *SevenZipRepository) Close() error {
	if s.rc == nil {
		return nil
	}
	err := s.rc.Close()
	s.rc, s.byName = nil, nil
	return err
}

// fail records err as status and returns it
func (s *SevenZipRepository) fail(err error) error {
	s.lastErr = err
	return err
}
