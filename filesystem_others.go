// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package zipper

import "os"

// isWritableOnDisk consults the permission bits of path. This is the best
// available approximation on platforms without access(2).
func isWritableOnDisk(path string) bool {
	stat, err := os.Stat(path)
	if err != nil {
		return false
	}
	return stat.Mode().Perm()&0200 != 0
}
