// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import (
	"archive/tar"
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// TarRepository is a [Repository] for tar archives, optionally wrapped in a
// stream compression. Changes are staged and written on [TarRepository.Close].
type TarRepository struct {
	cfg     *Config
	path    string
	codec   *codec
	headers []*tar.Header // headers of the archive on disk, by ordinal
	onDisk  bool
	index   *stagedIndex
	open    bool
	lastErr error
}

// NewTarRepository opens the tar archive at path. The compression is detected
// from the content of the archive or, for new archives, from the file name.
func NewTarRepository(path string, create bool, cfg *Config) (*TarRepository, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	t := &TarRepository{
		cfg:   cfg,
		path:  path,
		index: newStagedIndex(),
	}
	if err := t.openArchive(create); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	t.open = true
	return t, nil
}

// openArchive reads all headers of the archive, if it exists
func (t *TarRepository) openArchive(create bool) error {
	f, err := os.Open(t.path)
	if errors.Is(err, fs.ErrNotExist) && create {
		t.codec = codecForName(t.path)
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	// identify compression
	br := bufio.NewReader(f)
	header, err := br.Peek(maxHeaderLength)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	t.codec = detectCodec(header, t.path)

	tr, closer, err := t.newReader(br)
	if err != nil {
		return err
	}
	defer closer.Close()

	for i := 0; ; i++ {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("cannot read tar header: %w", err)
		}
		t.headers = append(t.headers, hdr)
		t.index.load(&stagedEntry{
			name:    hdr.Name,
			source:  sourceArchive,
			ordinal: i,
			info:    tarEntryInfo(hdr),
		})
	}
	t.index.dirty = false
	t.onDisk = true
	t.cfg.Logger().Debug("opened tar", "path", t.path, "compression", t.Type(), "entries", len(t.headers))
	return nil
}

// detectCodec returns the codec identified by the magic bytes in header. Brotli
// streams have no magic bytes and are identified by the file name.
func detectCodec(header []byte, name string) *codec {
	if c := codecForHeader(header); c != nil {
		return c
	}
	if c := codecForName(name); c != nil && len(c.MagicBytes) == 0 {
		return c
	}
	return nil
}

// tarEntryInfo converts hdr
func tarEntryInfo(hdr *tar.Header) EntryInfo {
	return EntryInfo{
		Name:           hdr.Name,
		Size:           hdr.Size,
		CompressedSize: -1,
		Modified:       hdr.ModTime,
		Mode:           hdr.FileInfo().Mode(),
		IsDir:          hdr.Typeflag == tar.TypeDir || strings.HasSuffix(hdr.Name, "/"),
	}
}

// newReader wraps src with the decompression of the archive
func (t *TarRepository) newReader(src io.Reader) (*tar.Reader, io.Closer, error) {
	if t.codec == nil {
		return tar.NewReader(src), io.NopCloser(nil), nil
	}
	dr, err := t.codec.NewReader(src)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot decompress %s: %w", t.codec.Name, err)
	}
	return tar.NewReader(dr), dr, nil
}

// openStream opens the archive on disk for sequential reading
func (t *TarRepository) openStream() (*tar.Reader, io.Closer, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, nil, err
	}
	tr, dc, err := t.newReader(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return tr, closers{dc, f}, nil
}

// closers closes all elements and returns the first error
type closers []io.Closer

// Close closes all closers.
func (cs closers) Close() error {
	var first error
	for _, c := range cs {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Type returns the archive type including the compression, e.g. tar.gz
func (t *TarRepository) Type() string {
	if t.codec == nil {
		return ArchiveTypeTar
	}
	return ArchiveTypeTar + "." + t.codec.Name
}

// IsOpen returns true if the archive is open.
func (t *TarRepository) IsOpen() bool {
	return t.open
}

// IsClosed returns true if the archive is closed.
func (t *TarRepository) IsClosed() bool {
	return !t.open
}

// AddFile stages the file pathToFile as pathInArchive.
func (t *TarRepository) AddFile(pathToFile string, pathInArchive string) error {
	if !t.open {
		return ErrNoArchive
	}
	e, err := stageFile(t.cfg.Filesystem(), pathToFile, pathInArchive)
	if err != nil {
		return t.fail(err)
	}
	t.index.put(e)
	return nil
}

// AddFromString stages an entry name with content.
func (t *TarRepository) AddFromString(name string, content string) error {
	if !t.open {
		return ErrNoArchive
	}
	t.index.put(stageContent(name, content, t.cfg.FileMode()))
	return nil
}

// AddEmptyDir stages a directory entry.
func (t *TarRepository) AddEmptyDir(dirName string) error {
	if !t.open {
		return ErrNoArchive
	}
	t.index.put(stageDir(dirName, t.cfg.CreateDirMode()))
	return nil
}

// RemoveFile removes the entry pathInArchive.
func (t *TarRepository) RemoveFile(pathInArchive string) error {
	if !t.open {
		return ErrNoArchive
	}
	if !t.index.remove(pathInArchive) {
		return t.fail(fmt.Errorf("%w: %s", ErrFileNotFound, pathInArchive))
	}
	return nil
}

// FileContent returns the content of the entry pathInArchive.
func (t *TarRepository) FileContent(pathInArchive string) ([]byte, error) {
	rc, err := t.FileStream(pathInArchive)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FileStream returns a reader for the entry pathInArchive. Entries of the
// archive on disk are found by reading the archive up to the entry.
func (t *TarRepository) FileStream(pathInArchive string) (io.ReadCloser, error) {
	if !t.open {
		return nil, ErrNoArchive
	}
	e := t.index.lookup(pathInArchive)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, pathInArchive)
	}
	if e.source != sourceArchive {
		return e.open()
	}

	tr, closer, err := t.openStream()
	if err != nil {
		return nil, err
	}
	for i := 0; i <= e.ordinal; i++ {
		if _, err := tr.Next(); err != nil {
			closer.Close()
			return nil, fmt.Errorf("cannot seek to %s: %w", pathInArchive, err)
		}
	}
	return &readCloser{Reader: tr, Closer: closer}, nil
}

// readCloser combines a reader with the closer of its source
type readCloser struct {
	io.Reader
	io.Closer
}

// Each calls fn for every file entry.
func (t *TarRepository) Each(fn func(name string, info EntryInfo) error) error {
	if !t.open {
		return ErrNoArchive
	}
	return t.index.each(fn)
}

// FileExists returns true if the archive contains fileInArchive.
func (t *TarRepository) FileExists(fileInArchive string) bool {
	return t.open && t.index.lookup(fileInArchive) != nil
}

// UsePassword is not supported, tar has no encryption.
func (t *TarRepository) UsePassword(string) error {
	return ErrPasswordNotSupported
}

// Status returns "No error" or the last error.
func (t *TarRepository) Status() string {
	if t.lastErr != nil {
		return t.lastErr.Error()
	}
	return statusOK
}

// Close writes all staged changes and closes the archive.
func (t *TarRepository) Close() error {
	if !t.open {
		return nil
	}
	t.open = false
	if !t.index.dirty {
		return nil
	}
	if err := t.persist(); err != nil {
		return t.fail(fmt.Errorf("cannot write %s: %w", t.path, err))
	}
	return nil
}

// persist streams the kept entries of the old archive together with the
// staged entries into a new archive, that replaces the old one
func (t *TarRepository) persist() (err error) {
	entries := t.index.snapshot()
	if len(entries) == 0 && !t.onDisk {
		return nil
	}

	af, err := createAtomicFile(t.path, t.cfg.FileMode())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			af.Cleanup()
		}
	}()

	// compression layer
	var out io.Writer = af
	var cw io.WriteCloser
	if t.codec != nil {
		if cw, err = t.codec.NewWriter(af); err != nil {
			return err
		}
		out = cw
	}
	tw := tar.NewWriter(out)

	// old archive, read sequentially
	var old *tar.Reader
	if t.onDisk {
		tr, closer, err := t.openStream()
		if err != nil {
			return err
		}
		defer closer.Close()
		old = tr
	}
	position := -1

	for _, e := range entries {
		if e.source == sourceArchive {
			// ordinals increase in snapshot order
			for position < e.ordinal {
				if _, err := old.Next(); err != nil {
					return fmt.Errorf("cannot read %s: %w", e.name, err)
				}
				position++
			}
			if err := copyTarEntry(tw, t.headers[e.ordinal], old); err != nil {
				return fmt.Errorf("cannot write entry %s: %w", e.name, err)
			}
			continue
		}
		if err := t.writeEntry(tw, e); err != nil {
			return fmt.Errorf("cannot write entry %s: %w", e.name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if cw != nil {
		if err := cw.Close(); err != nil {
			return err
		}
	}
	t.cfg.Logger().Debug("wrote tar", "path", t.path, "compression", t.Type(), "entries", len(entries))
	return af.Commit()
}

// copyTarEntry writes hdr and the content of src
func copyTarEntry(tw *tar.Writer, hdr *tar.Header, src io.Reader) error {
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if hdr.Typeflag != tar.TypeReg {
		return nil
	}
	_, err := io.Copy(tw, src)
	return err
}

// writeEntry writes a staged entry
func (t *TarRepository) writeEntry(tw *tar.Writer, e *stagedEntry) error {
	hdr := &tar.Header{
		Name:    e.name,
		Mode:    int64(e.info.Mode.Perm()),
		ModTime: e.modTime(),
	}

	switch e.source {
	case sourceDir:
		hdr.Typeflag = tar.TypeDir
		return tw.WriteHeader(hdr)
	case sourceFile:
		// the file may have changed since it was added
		stat, err := e.fsys.Stat(e.path)
		if err != nil {
			return err
		}
		hdr.Size = stat.Size()
	default:
		hdr.Size = int64(len(e.content))
	}
	hdr.Typeflag = tar.TypeReg

	rc, err := e.open()
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.CopyN(tw, rc, hdr.Size)
	return err
}

// fail records err as status and returns it
func (t *TarRepository) fail(err error) error {
	t.lastErr = err
	return err
}
