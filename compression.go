// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import (
	"bytes"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/dsnet/compress/bzip2"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// codec describes a stream compression that can wrap a tar archive
type codec struct {
	// Name is the short name of the compression, used for telemetry as tar.<Name>
	Name string

	// Extensions are the file name suffixes of tar archives with this compression
	Extensions []string

	// MagicBytes identify a compressed stream. Brotli has none.
	MagicBytes [][]byte

	// NewReader wraps r with a decompressing reader
	NewReader func(r io.Reader) (io.ReadCloser, error)

	// NewWriter wraps w with a compressing writer, that must be closed
	NewWriter func(w io.Writer) (io.WriteCloser, error)
}

// availableCodecs is the collection of supported tar compressions
var availableCodecs = []*codec{
	{
		Name:       "br",
		Extensions: []string{".tar.br"},
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(brotli.NewReader(r)), nil
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return brotli.NewWriter(w), nil
		},
	},
	{
		Name:       "bz2",
		Extensions: []string{".tar.bz2", ".tbz2", ".tbz"},
		// reference: https://github.com/dsnet/compress/blob/master/doc/bzip2-format.pdf
		MagicBytes: [][]byte{
			[]byte("BZh1"), []byte("BZh2"), []byte("BZh3"),
			[]byte("BZh4"), []byte("BZh5"), []byte("BZh6"),
			[]byte("BZh7"), []byte("BZh8"), []byte("BZh9"),
		},
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			return bzip2.NewReader(r, nil)
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return bzip2.NewWriter(w, nil)
		},
	},
	{
		Name:       "gz",
		Extensions: []string{".tar.gz", ".tgz"},
		MagicBytes: [][]byte{{0x1f, 0x8b}},
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriter(w), nil
		},
	},
	{
		Name:       "lz4",
		Extensions: []string{".tar.lz4", ".tlz4"},
		MagicBytes: [][]byte{{0x04, 0x22, 0x4D, 0x18}},
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(lz4.NewReader(r)), nil
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return lz4.NewWriter(w), nil
		},
	},
	{
		Name:       "sz",
		Extensions: []string{".tar.sz"},
		MagicBytes: [][]byte{append([]byte{0xff, 0x06, 0x00, 0x00}, []byte("sNaPpY")...)},
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(snappy.NewReader(r)), nil
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return snappy.NewBufferedWriter(w), nil
		},
	},
	{
		Name:       "xz",
		Extensions: []string{".tar.xz", ".txz"},
		MagicBytes: [][]byte{{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}},
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			xr, err := xz.NewReader(r)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(xr), nil
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return xz.NewWriter(w)
		},
	},
	{
		Name:       "zst",
		Extensions: []string{".tar.zst", ".tzst", ".tar.zstd"},
		MagicBytes: [][]byte{{0x28, 0xb5, 0x2f, 0xfd}},
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			d, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return d.IOReadCloser(), nil
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w)
		},
	},
}

// maxHeaderLength is the number of bytes needed to identify every codec
var maxHeaderLength int

// init calculates the maximum header length
func init() {
	for _, c := range availableCodecs {
		for _, mb := range c.MagicBytes {
			if len(mb) > maxHeaderLength {
				maxHeaderLength = len(mb)
			}
		}
	}
}

// codecForHeader returns the codec whose magic bytes start header, or nil
func codecForHeader(header []byte) *codec {
	for _, c := range availableCodecs {
		if matchesMagicBytes(header, 0, c.MagicBytes) {
			return c
		}
	}
	return nil
}

// codecForName returns the codec with the longest extension matching name, or nil
func codecForName(name string) *codec {
	name = strings.ToLower(name)
	var found *codec
	var longest int
	for _, c := range availableCodecs {
		for _, ext := range c.Extensions {
			if strings.HasSuffix(name, ext) && len(ext) > longest {
				found, longest = c, len(ext)
			}
		}
	}
	return found
}

// matchesMagicBytes checks if the bytes in data are equal to any of the magicBytes
// at the given offset.
func matchesMagicBytes(data []byte, offset int, magicBytes [][]byte) bool {
	for _, mb := range magicBytes {
		// check if header is long enough
		if offset+len(mb) > len(data) {
			continue
		}
		if bytes.Equal(mb, data[offset:offset+len(mb)]) {
			return true
		}
	}
	return false
}
