// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package zipper

import (
	"fmt"
	"io/fs"

	"github.com/google/renameio"
)

// pendingFile commits a renameio.PendingFile
type pendingFile struct {
	*renameio.PendingFile
}

// Commit replaces the destination with the pending file.
func (p *pendingFile) Commit() error {
	return p.CloseAtomicallyReplace()
}

// createAtomicFile creates a temporary file next to path, that replaces path on commit.
func createAtomicFile(path string, mode fs.FileMode) (atomicFile, error) {
	pf, err := renameio.TempFile("", path)
	if err != nil {
		return nil, fmt.Errorf("cannot create temporary file: %w", err)
	}
	if err := pf.Chmod(mode.Perm()); err != nil {
		pf.Cleanup()
		return nil, fmt.Errorf("cannot set file mode: %w", err)
	}
	return &pendingFile{pf}, nil
}
