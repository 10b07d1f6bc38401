// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrCreateFolder is returned if a directory needed for an archive or for
	// an extraction could not be created.
	ErrCreateFolder = errors.New("failed to create folder")

	// ErrNotWritable is returned if the directory of a new archive is not writable.
	ErrNotWritable = errors.New("path is not writeable")

	// ErrUnsupportedArchiveType is returned if no repository is registered for
	// the requested archive type.
	ErrUnsupportedArchiveType = errors.New("unsupported archive type")

	// ErrNoArchive is returned if an operation needs an open archive, but none
	// has been made.
	ErrNoArchive = errors.New("no archive opened")

	// ErrFileNotFound is returned if an entry does not exist in the archive.
	ErrFileNotFound = errors.New("file cannot be found")

	// ErrPathNotFound is returned if a path to add does not exist.
	ErrPathNotFound = errors.New("path does not exist")

	// ErrUnsafePath is returned if an entry name would escape the extraction
	// destination.
	ErrUnsafePath = errors.New("special characters found within filenames")

	// ErrEmptyPattern is returned if an empty regular expression is given for extraction.
	ErrEmptyPattern = errors.New("missing pass valid regex parameter")

	// ErrInvalidPattern is returned if a regular expression cannot be compiled.
	ErrInvalidPattern = errors.New("invalid regular expression")

	// ErrReadOnlyArchive is returned if a modification is attempted on an archive
	// type that can only be read.
	ErrReadOnlyArchive = errors.New("archive is read-only")

	// ErrPasswordNotSupported is returned if a password is set on an archive type
	// without encryption support.
	ErrPasswordNotSupported = errors.New("password protection is not supported")

	// ErrMaxFilesExceeded indicates that the maximum number of files is exceeded.
	ErrMaxFilesExceeded = errors.New("maximum files exceeded")

	// ErrMaxExtractionSizeExceeded indicates that the maximum size is exceeded.
	ErrMaxExtractionSizeExceeded = errors.New("maximum extraction size exceeded")
)

// handleError records err in td and decides if the operation ends. With
// continue on error, err is logged and appended to errs, and nil is returned.
// td can be nil for operations without telemetry.
func handleError(c *Config, td *TelemetryData, errs *error, msg string, err error) error {
	wrapped := fmt.Errorf("%s: %w", msg, err)

	// increase error counter and set error
	if td != nil {
		td.ExtractionErrors++
		td.LastExtractionError = wrapped
	}

	// end on error
	if !c.ContinueOnError() {
		return wrapped
	}

	// do not end on error
	c.Logger().Error(msg, "error", err)
	*errs = multierror.Append(*errs, wrapped)
	return nil
}
