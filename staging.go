// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"
)

// entrySource tells where the content of a staged entry comes from
type entrySource int

const (
	sourceArchive entrySource = iota // entry of the archive on disk
	sourceFile                       // file added from disk
	sourceContent                    // content added from memory
	sourceDir                        // empty directory
)

// stagedEntry is an entry of a writable archive, that is either already
// persisted or waits to be written on close.
type stagedEntry struct {
	name    string
	source  entrySource
	ordinal int        // position in the archive on disk, if source is sourceArchive
	path    string     // if source is sourceFile
	fsys    Filesystem // filesystem of path
	content []byte     // if source is sourceContent
	info    EntryInfo
	removed bool
}

// open returns a reader for entries that are not yet persisted
func (e *stagedEntry) open() (io.ReadCloser, error) {
	switch e.source {
	case sourceFile:
		f, err := e.fsys.Open(e.path)
		if err != nil {
			return nil, fmt.Errorf("cannot open %s: %w", e.path, err)
		}
		return f, nil
	case sourceContent:
		return io.NopCloser(bytes.NewReader(e.content)), nil
	case sourceDir:
		return nil, fmt.Errorf("%s is a directory", e.name)
	}
	return nil, fmt.Errorf("entry %s is persisted", e.name)
}

// stagedIndex keeps the entries of a writable archive in archive order and
// tracks if the archive needs to be rewritten.
type stagedIndex struct {
	entries []*stagedEntry
	byName  map[string]*stagedEntry
	dirty   bool
}

// newStagedIndex creates an empty index
func newStagedIndex() *stagedIndex {
	return &stagedIndex{byName: make(map[string]*stagedEntry)}
}

// load adds an entry found in the archive on disk. A later entry with the same
// name shadows an earlier one, like tar does it.
func (s *stagedIndex) load(e *stagedEntry) {
	if old, ok := s.byName[e.name]; ok {
		old.removed = true
		s.dirty = true
	}
	s.entries = append(s.entries, e)
	s.byName[e.name] = e
}

// put adds or replaces an entry. A replaced entry keeps its position.
func (s *stagedIndex) put(e *stagedEntry) {
	s.dirty = true
	if old, ok := s.byName[e.name]; ok {
		*old = *e
		return
	}
	s.entries = append(s.entries, e)
	s.byName[e.name] = e
}

// remove deletes the entry name. It returns false if there is no such entry.
func (s *stagedIndex) remove(name string) bool {
	e, ok := s.byName[name]
	if !ok {
		return false
	}
	e.removed = true
	delete(s.byName, name)
	s.dirty = true
	return true
}

// lookup returns the entry name, or nil
func (s *stagedIndex) lookup(name string) *stagedEntry {
	return s.byName[name]
}

// snapshot returns all live entries in archive order
func (s *stagedIndex) snapshot() []*stagedEntry {
	live := make([]*stagedEntry, 0, len(s.byName))
	for _, e := range s.entries {
		if !e.removed {
			live = append(live, e)
		}
	}
	s.entries = live
	return append([]*stagedEntry(nil), live...)
}

// each calls fn for every live regular file entry of the index
func (s *stagedIndex) each(fn func(name string, info EntryInfo) error) error {
	for _, e := range s.snapshot() {
		if e.info.IsDir || !e.info.Mode.IsRegular() {
			continue
		}
		if err := fn(e.name, e.info); err != nil {
			return err
		}
	}
	return nil
}

// stageFile creates an entry for the file at pathToFile on fsys
func stageFile(fsys Filesystem, pathToFile string, name string) (*stagedEntry, error) {
	stat, err := fsys.Stat(pathToFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, pathToFile)
	}
	if !stat.Mode().IsRegular() {
		return nil, fmt.Errorf("cannot add %s: not a regular file", pathToFile)
	}
	return &stagedEntry{
		name:   name,
		source: sourceFile,
		path:   pathToFile,
		fsys:   fsys,
		info: EntryInfo{
			Name:           name,
			Size:           stat.Size(),
			CompressedSize: -1,
			Modified:       stat.ModTime(),
			Mode:           stat.Mode().Perm(),
		},
	}, nil
}

// stageContent creates an entry with content
func stageContent(name string, content string, mode fs.FileMode) *stagedEntry {
	return &stagedEntry{
		name:    name,
		source:  sourceContent,
		content: []byte(content),
		info: EntryInfo{
			Name:           name,
			Size:           int64(len(content)),
			CompressedSize: -1,
			Modified:       now(),
			Mode:           mode.Perm(),
		},
	}
}

// stageDir creates a directory entry. Directory names end with a slash.
func stageDir(name string, mode fs.FileMode) *stagedEntry {
	if !strings.HasSuffix(name, "/") {
		name += "/"
	}
	return &stagedEntry{
		name:   name,
		source: sourceDir,
		info: EntryInfo{
			Name:           name,
			CompressedSize: -1,
			Modified:       now(),
			Mode:           mode.Perm() | fs.ModeDir,
			IsDir:          true,
		},
	}
}

// modTime returns the modification time to persist for e
func (e *stagedEntry) modTime() time.Time {
	if e.info.Modified.IsZero() {
		return now()
	}
	return e.info.Modified
}
