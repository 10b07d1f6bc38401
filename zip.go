// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// CompressionMethod is the method used to compress new entries of a zip archive.
type CompressionMethod uint16

// Supported compression methods. The values are the method ids of the zip
// specification (APPNOTE.TXT, section 4.4.5).
const (
	Store   CompressionMethod = 0
	Deflate CompressionMethod = 8
	Bzip2   CompressionMethod = 12
	Zstd    CompressionMethod = 93
	Xz      CompressionMethod = 95
)

// compressionNames maps the compression methods to their names
var compressionNames = map[CompressionMethod]string{
	Store:   "store",
	Deflate: "deflate",
	Bzip2:   "bzip2",
	Zstd:    "zstd",
	Xz:      "xz",
}

// String returns the name of the compression method.
func (m CompressionMethod) String() string {
	if name, ok := compressionNames[m]; ok {
		return name
	}
	return fmt.Sprintf("method(%d)", uint16(m))
}

// ParseCompressionMethod returns the compression method with the given name.
func ParseCompressionMethod(name string) (CompressionMethod, error) {
	for m, n := range compressionNames {
		if strings.EqualFold(n, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown compression method %q", name)
}

// statusOK is the status of a repository without errors
const statusOK = "No error"

// ZipRepository is a [Repository] for zip archives. Changes are staged and
// written on [ZipRepository.Close], which replaces the archive atomically.
type ZipRepository struct {
	cfg     *Config
	path    string
	file    *os.File
	reader  *zip.Reader
	index   *stagedIndex
	open    bool
	lastErr error
}

// NewZipRepository opens the zip archive at path. If create is true and path
// does not exist, a new archive is written on close.
func NewZipRepository(path string, create bool, cfg *Config) (*ZipRepository, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	z := &ZipRepository{
		cfg:   cfg,
		path:  path,
		index: newStagedIndex(),
	}
	if err := z.openArchive(create); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	z.open = true
	return z, nil
}

// openArchive reads the central directory of the archive, if it exists
func (z *ZipRepository) openArchive(create bool) error {
	f, err := os.Open(z.path)
	if errors.Is(err, fs.ErrNotExist) && create {
		return nil
	}
	if err != nil {
		return err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}

	reader, err := zip.NewReader(f, stat.Size())
	if err != nil {
		f.Close()
		return err
	}
	registerDecompressors(reader)

	for i, zf := range reader.File {
		z.index.load(&stagedEntry{
			name:    zf.Name,
			source:  sourceArchive,
			ordinal: i,
			info:    zipEntryInfo(zf),
		})
	}
	z.index.dirty = false
	z.file, z.reader = f, reader
	z.cfg.Logger().Debug("opened zip", "path", z.path, "entries", len(reader.File))
	return nil
}

// zipEntryInfo converts the header of zf
func zipEntryInfo(zf *zip.File) EntryInfo {
	isDir := strings.HasSuffix(zf.Name, "/") || zf.Mode().IsDir()
	return EntryInfo{
		Name:           zf.Name,
		Size:           int64(zf.UncompressedSize64),
		CompressedSize: int64(zf.CompressedSize64),
		CRC32:          zf.CRC32,
		Modified:       zf.FileInfo().ModTime(),
		Mode:           zf.Mode(),
		IsDir:          isDir,
	}
}

// registerDecompressors enables reading of all supported compression methods
func registerDecompressors(r *zip.Reader) {
	r.RegisterDecompressor(uint16(Zstd), zstd.ZipDecompressor())
	r.RegisterDecompressor(uint16(Bzip2), func(in io.Reader) io.ReadCloser {
		br, err := bzip2.NewReader(in, nil)
		if err != nil {
			return &errReadCloser{err}
		}
		return br
	})
	r.RegisterDecompressor(uint16(Xz), func(in io.Reader) io.ReadCloser {
		xr, err := xz.NewReader(in)
		if err != nil {
			return &errReadCloser{err}
		}
		return io.NopCloser(xr)
	})
}

// registerCompressors enables writing of all supported compression methods
func registerCompressors(w *zip.Writer) {
	w.RegisterCompressor(uint16(Zstd), zstd.ZipCompressor())
	w.RegisterCompressor(uint16(Bzip2), func(out io.Writer) (io.WriteCloser, error) {
		return bzip2.NewWriter(out, nil)
	})
	w.RegisterCompressor(uint16(Xz), func(out io.Writer) (io.WriteCloser, error) {
		return &lazyXzWriter{out: out}, nil
	})
}

// lazyXzWriter creates the xz stream on the first write. The zip writer asks
// for the compressor before it writes the local file header, and
// [xz.NewWriter] writes the stream header immediately.
type lazyXzWriter struct {
	out io.Writer
	xw  *xz.Writer
}

// init creates the xz writer once
func (l *lazyXzWriter) init() error {
	if l.xw != nil {
		return nil
	}
	xw, err := xz.NewWriter(l.out)
	if err != nil {
		return err
	}
	l.xw = xw
	return nil
}

// Write compresses p.
func (l *lazyXzWriter) Write(p []byte) (int, error) {
	if err := l.init(); err != nil {
		return 0, err
	}
	return l.xw.Write(p)
}

// Close finishes the xz stream. An empty entry still gets a valid stream.
func (l *lazyXzWriter) Close() error {
	if err := l.init(); err != nil {
		return err
	}
	return l.xw.Close()
}

// errReadCloser fails every read with err
type errReadCloser struct {
	err error
}

// Read returns the error.
func (e *errReadCloser) Read([]byte) (int, error) {
	return 0, e.err
}

// Close does nothing.
func (e *errReadCloser) Close() error {
	return nil
}

// Type returns the archive type.
func (z *ZipRepository) Type() string {
	return ArchiveTypeZip
}

// IsOpen returns true if the archive is open.
func (z *ZipRepository) IsOpen() bool {
	return z.open
}

// IsClosed returns true if the archive is closed.
func (z *ZipRepository) IsClosed() bool {
	return !z.open
}

// AddFile stages the file pathToFile as pathInArchive.
func (z *ZipRepository) AddFile(pathToFile string, pathInArchive string) error {
	if !z.open {
		return ErrNoArchive
	}
	e, err := stageFile(z.cfg.Filesystem(), pathToFile, pathInArchive)
	if err != nil {
		return z.fail(err)
	}
	z.index.put(e)
	return nil
}

// AddFromString stages an entry name with content.
func (z *ZipRepository) AddFromString(name string, content string) error {
	if !z.open {
		return ErrNoArchive
	}
	z.index.put(stageContent(name, content, z.cfg.FileMode()))
	return nil
}

// AddEmptyDir stages a directory entry.
func (z *ZipRepository) AddEmptyDir(dirName string) error {
	if !z.open {
		return ErrNoArchive
	}
	z.index.put(stageDir(dirName, z.cfg.CreateDirMode()))
	return nil
}

// RemoveFile removes the entry pathInArchive.
func (z *ZipRepository) RemoveFile(pathInArchive string) error {
	if !z.open {
		return ErrNoArchive
	}
	if !z.index.remove(pathInArchive) {
		return z.fail(fmt.Errorf("%w: %s", ErrFileNotFound, pathInArchive))
	}
	return nil
}

// FileContent returns the content of the entry pathInArchive.
func (z *ZipRepository) FileContent(pathInArchive string) ([]byte, error) {
	rc, err := z.FileStream(pathInArchive)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FileStream returns a reader for the entry pathInArchive.
func (z *ZipRepository) FileStream(pathInArchive string) (io.ReadCloser, error) {
	if !z.open {
		return nil, ErrNoArchive
	}
	e := z.index.lookup(pathInArchive)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, pathInArchive)
	}
	if e.source == sourceArchive {
		return z.reader.File[e.ordinal].Open()
	}
	return e.open()
}

// Each calls fn for every file entry.
func (z *ZipRepository) Each(fn func(name string, info EntryInfo) error) error {
	if !z.open {
		return ErrNoArchive
	}
	return z.index.each(fn)
}

// FileExists returns true if the archive contains fileInArchive.
func (z *ZipRepository) FileExists(fileInArchive string) bool {
	return z.open && z.index.lookup(fileInArchive) != nil
}

// UsePassword is not supported, the zip engine has no encryption support.
func (z *ZipRepository) UsePassword(string) error {
	return ErrPasswordNotSupported
}

// Status returns "No error" or the last error.
func (z *ZipRepository) Status() string {
	if z.lastErr != nil {
		return z.lastErr.Error()
	}
	return statusOK
}

// Close writes all staged changes and closes the archive.
func (z *ZipRepository) Close() error {
	if !z.open {
		return nil
	}
	z.open = false

	if !z.index.dirty {
		return z.release()
	}

	if err := z.persist(); err != nil {
		z.release()
		return z.fail(fmt.Errorf("cannot write %s: %w", z.path, err))
	}
	return nil
}

// release closes the archive on disk
func (z *ZipRepository) release() error {
	if z.file == nil {
		return nil
	}
	err := z.file.Close()
	z.file, z.reader = nil, nil
	return err
}

// persist writes the staged entries into a new archive, that replaces the
// old one
func (z *ZipRepository) persist() (err error) {
	entries := z.index.snapshot()

	// nothing was ever written, nothing to create
	if len(entries) == 0 && z.file == nil {
		return nil
	}

	af, err := createAtomicFile(z.path, z.cfg.FileMode())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			af.Cleanup()
		}
	}()

	zw := zip.NewWriter(af)
	registerCompressors(zw)
	for _, e := range entries {
		if err := z.writeEntry(zw, e); err != nil {
			return fmt.Errorf("cannot write entry %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}

	// the old archive must be closed before it is replaced
	if err := z.release(); err != nil {
		return err
	}
	z.cfg.Logger().Debug("wrote zip", "path", z.path, "entries", len(entries))
	return af.Commit()
}

// writeEntry copies e into zw
func (z *ZipRepository) writeEntry(zw *zip.Writer, e *stagedEntry) error {
	// unchanged entries are copied without recompression
	if e.source == sourceArchive {
		return zw.Copy(z.reader.File[e.ordinal])
	}

	hdr := &zip.FileHeader{
		Name:     e.name,
		Method:   uint16(z.cfg.Compression()),
		Modified: e.modTime(),
	}
	hdr.SetMode(e.info.Mode)
	if e.source == sourceDir {
		hdr.Method = uint16(Store)
		_, err := zw.CreateHeader(hdr)
		return err
	}

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	rc, err := e.open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(w, rc)
	return err
}

// fail records err as status and returns it
func (z *ZipRepository) fail(err error) error {
	z.lastErr = err
	return err
}
