// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import "io"

// limitErrorWriter wraps an io.Writer and fails with ErrMaxExtractionSizeExceeded
// once more than L bytes should be written.
type limitErrorWriter struct {
	W io.Writer // underlying writer
	L int64     // limit
	N int64     // number of bytes written
}

// Write writes p to the underlying writer as long as the limit allows it. The
// part of p that exceeds the limit is dropped and ErrMaxExtractionSizeExceeded
// is returned.
func (l *limitErrorWriter) Write(p []byte) (n int, err error) {
	if int64(len(p)) <= l.L-l.N {
		n, err = l.W.Write(p)
		l.N += int64(n)
		return n, err
	}

	// write what still fits
	if rest := l.L - l.N; rest > 0 {
		n, err = l.W.Write(p[:rest])
		l.N += int64(n)
		if err != nil {
			return n, err
		}
	}
	return n, ErrMaxExtractionSizeExceeded
}

// limitWriter returns w limited to maxSize bytes. If maxSize < 0, w is returned as is.
func limitWriter(w io.Writer, maxSize int64) io.Writer {
	if maxSize < 0 {
		return w
	}
	return &limitErrorWriter{W: w, L: maxSize}
}
