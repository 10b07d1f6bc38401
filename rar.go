// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import (
	"errors"
	"fmt"
	"io"

	"github.com/nwaples/rardecode"
)

// RarRepository is a read-only [Repository] for rar archives.
type RarRepository struct {
	readOnly
	cfg      *Config
	path     string
	password string
	entries  []EntryInfo
	byName   map[string]int // ordinal of the last entry with a name
	open     bool
	lastErr  error
}

// NewRarRepository opens the rar archive at path. Rar archives cannot be created.
func NewRarRepository(path string, create bool, cfg *Config) (*RarRepository, error) {
	if create {
		return nil, fmt.Errorf("cannot create %s: %w", path, ErrReadOnlyArchive)
	}
	if cfg == nil {
		cfg = NewConfig()
	}
	r := &RarRepository{cfg: cfg, path: path}
	if err := r.scan(); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	r.open = true
	return r, nil
}

// scan reads all file headers of the archive
func (r *RarRepository) scan() error {
	rc, err := rardecode.OpenReader(r.path, r.password)
	if err != nil {
		return err
	}
	defer rc.Close()

	var entries []EntryInfo
	byName := make(map[string]int)
	for {
		fh, err := rc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("cannot read rar header: %w", err)
		}
		byName[fh.Name] = len(entries)
		entries = append(entries, rarEntryInfo(fh))
	}
	r.entries, r.byName = entries, byName
	r.cfg.Logger().Debug("opened rar", "path", r.path, "entries", len(entries))
	return nil
}

// rarEntryInfo converts fh
func rarEntryInfo(fh *rardecode.FileHeader) EntryInfo {
	size := fh.UnPackedSize
	if fh.UnKnownSize {
		size = -1
	}
	return EntryInfo{
		Name:           fh.Name,
		Size:           size,
		CompressedSize: fh.PackedSize,
		Modified:       fh.ModificationTime,
		Mode:           fh.Mode(),
		IsDir:          fh.IsDir,
	}
}

// Type returns the archive type.
func (r *RarRepository) Type() string {
	return ArchiveTypeRar
}

// IsOpen returns true if the archive is open.
func (r *RarRepository) IsOpen() bool {
	return r.open
}

// IsClosed returns true if the archive is closed.
func (r *RarRepository) IsClosed() bool {
	return !r.open
}

// FileContent returns the content of the entry pathInArchive.
func (r *RarRepository) FileContent(pathInArchive string) ([]byte, error) {
	rc, err := r.FileStream(pathInArchive)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FileStream returns a reader for the entry pathInArchive. Rar archives are
// read sequentially up to the entry.
func (r *RarRepository) FileStream(pathInArchive string) (io.ReadCloser, error) {
	if !r.open {
		return nil, ErrNoArchive
	}
	ordinal, ok := r.byName[pathInArchive]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, pathInArchive)
	}

	rc, err := rardecode.OpenReader(r.path, r.password)
	if err != nil {
		return nil, r.fail(err)
	}
	for i := 0; i <= ordinal; i++ {
		if _, err := rc.Next(); err != nil {
			rc.Close()
			return nil, r.fail(fmt.Errorf("cannot seek to %s: %w", pathInArchive, err))
		}
	}
	return rc, nil
}

// Each calls fn for every file entry.
func (r *RarRepository) Each(fn func(name string, info EntryInfo) error) error {
	if !r.open {
		return ErrNoArchive
	}
	for i, info := range r.entries {
		// shadowed by a later entry with the same name
		if r.byName[info.Name] != i {
			continue
		}
		if info.IsDir || !info.Mode.IsRegular() {
			continue
		}
		if err := fn(info.Name, info); err != nil {
			return err
		}
	}
	return nil
}

// FileExists returns true if the archive contains fileInArchive.
func (r *RarRepository) FileExists(fileInArchive string) bool {
	_, ok := r.byName[fileInArchive]
	return r.open && ok
}

// UsePassword sets the password and reads the archive again, as encrypted
// headers can only be read with the password.
func (r *RarRepository) UsePassword(password string) error {
	r.password = password
	if err := r.scan(); err != nil {
		return r.fail(fmt.Errorf("cannot read %s with password: %w", r.path, err))
	}
	return nil
}

// Status returns "No error" or the last error.
func (r *RarRepository) Status() string {
	if r.lastErr != nil {
		return r.lastErr.Error()
	}
	return statusOK
}

// Close closes the archive.
func (r *RarRepository) Close() error {
	r.open = false
	return nil
}

// fail records err as status and returns it
func (r *RarRepository) fail(err error) error {
	r.lastErr = err
	return err
}
