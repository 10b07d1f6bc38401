// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build unix

package zipper

import "golang.org/x/sys/unix"

// isWritableOnDisk asks the kernel if the current process can write to path.
func isWritableOnDisk(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}
