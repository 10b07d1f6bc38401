// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import "io"

// atomicFile is a file that replaces its destination only once it is committed.
// Until then, readers of the destination see the old content.
type atomicFile interface {
	io.Writer

	// Commit closes the file and atomically moves it to its destination.
	Commit() error

	// Cleanup closes and removes the file, if it was not committed.
	Cleanup() error
}
