// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import (
	"bytes"
	"io"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("Hello, World! "), 100)

	for _, c := range availableCodecs {
		t.Run(c.Name, func(t *testing.T) {
			var buf bytes.Buffer
			w, err := c.NewWriter(&buf)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}
			if _, err := w.Write(data); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			// the compressed stream is identified
			if got := detectCodec(buf.Bytes(), "archive"+c.Extensions[0]); got != c {
				t.Errorf("detectCodec() = %v, want %s", got, c.Name)
			}

			r, err := c.NewReader(&buf)
			if err != nil {
				t.Fatalf("NewReader() error = %v", err)
			}
			defer r.Close()
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("decompressed data differs")
			}
		})
	}
}

func TestCodecForName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"test.tar.gz", "gz"},
		{"TEST.TGZ", "gz"},
		{"test.tar.bz2", "bz2"},
		{"test.tbz", "bz2"},
		{"test.tar.xz", "xz"},
		{"test.tar.zst", "zst"},
		{"test.tar.zstd", "zst"},
		{"test.tar.lz4", "lz4"},
		{"test.tar.sz", "sz"},
		{"test.tar.br", "br"},
		{"test.tar", ""},
		{"test.gz", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var got string
			if c := codecForName(test.name); c != nil {
				got = c.Name
			}
			if got != test.want {
				t.Errorf("codecForName(%q) = %q, want %q", test.name, got, test.want)
			}
		})
	}
}

func TestMatchesMagicBytes(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		offset     int
		magicBytes [][]byte
		want       bool
	}{
		{
			name:       "match",
			data:       []byte{0x1f, 0x8b, 0x08},
			magicBytes: [][]byte{{0x1f, 0x8b}},
			want:       true,
		},
		{
			name:       "no match",
			data:       []byte{0x1f, 0x7b, 0x07},
			magicBytes: [][]byte{{0x1f, 0x8b}},
			want:       false,
		},
		{
			name:       "data too short",
			data:       []byte{0x1f},
			magicBytes: [][]byte{{0x1f, 0x8b}},
			want:       false,
		},
		{
			name:       "match with offset",
			data:       []byte{0x00, 0x28, 0xb5, 0x2f, 0xfd},
			offset:     1,
			magicBytes: [][]byte{{0x28, 0xb5, 0x2f, 0xfd}},
			want:       true,
		},
		{
			name:       "second alternative",
			data:       []byte("BZh9"),
			magicBytes: [][]byte{[]byte("BZh1"), []byte("BZh9")},
			want:       true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := matchesMagicBytes(test.data, test.offset, test.magicBytes); got != test.want {
				t.Errorf("matchesMagicBytes() = %v, want %v", got, test.want)
			}
		})
	}
}
