// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"time"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config provides a configuration struct and options to adjust the configuration.
//
// The configuration struct holds all configuration options for adding to,
// extracting from and rewriting archives. The configuration options can be
// adjusted using the option pattern style.
type Config struct {
	// compression is the method used for new zip entries
	compression CompressionMethod

	// continueOnError decides if adding or extracting continues after a failed entry
	continueOnError bool

	// createDirMode is the file mode for created directories (respecting umask)
	createDirMode fs.FileMode

	// fileMode is the file mode for extracted files (respecting umask)
	fileMode fs.FileMode

	// filesystem is the delegate for all file operations of the zipper
	filesystem Filesystem

	// logger stream for the zipper
	logger logger

	// maxExtractionSize is the maximum size over all extracted files.
	// Set value to -1 to disable the check.
	maxExtractionSize int64

	// maxFiles is the maximum of files extracted in one run.
	// Set value to -1 to disable the check.
	maxFiles int64

	// overwrite defines if existing files in the destination are replaced
	overwrite bool

	// regexTimeout bounds the evaluation of a single regular expression match.
	// Zero disables the timeout.
	regexTimeout time.Duration

	// telemetryHook is a function to consume telemetry data after finished extraction
	telemetryHook TelemetryHook
}

// CheckMaxFiles checks if counter exceeds the configured maximum. If the maximum is exceeded,
// a [ErrMaxFilesExceeded] error is returned.
func (c *Config) CheckMaxFiles(counter int64) error {

	// check if disabled
	if c.MaxFiles() == -1 {
		return nil
	}

	// check value
	if counter > c.MaxFiles() {
		return ErrMaxFilesExceeded
	}
	return nil
}

// CheckExtractionSize checks if size exceeds configured maximum. If the maximum is exceeded,
// a [ErrMaxExtractionSizeExceeded] error is returned.
func (c *Config) CheckExtractionSize(size int64) error {

	// check if disabled
	if c.MaxExtractionSize() == -1 {
		return nil
	}

	// check value
	if size > c.MaxExtractionSize() {
		return ErrMaxExtractionSizeExceeded
	}
	return nil
}

// Compression returns the compression method for new zip entries.
func (c *Config) Compression() CompressionMethod {
	return c.compression
}

// ContinueOnError returns true if adding or extracting should continue after
// an entry failed.
func (c *Config) ContinueOnError() bool {
	return c.continueOnError
}

// CreateDirMode returns the file mode for created directories. (respecting umask)
func (c *Config) CreateDirMode() fs.FileMode {
	return c.createDirMode
}

// FileMode returns the file mode for extracted files. (respecting umask)
func (c *Config) FileMode() fs.FileMode {
	return c.fileMode
}

// Filesystem returns the filesystem delegate.
func (c *Config) Filesystem() Filesystem {
	return c.filesystem
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxExtractionSize returns the maximum size over all extracted files.
func (c *Config) MaxExtractionSize() int64 {
	return c.maxExtractionSize
}

// MaxFiles returns the maximum of files extracted in one run.
func (c *Config) MaxFiles() int64 {
	return c.maxFiles
}

// Overwrite returns true if files should be overwritten in the destination.
func (c *Config) Overwrite() bool {
	return c.overwrite
}

// RegexTimeout returns the timeout for a single regular expression match.
func (c *Config) RegexTimeout() time.Duration {
	return c.regexTimeout
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return defaultTelemetryHook
	}
	return c.telemetryHook
}

const (
	defaultCompression       = Deflate       // deflate new zip entries
	defaultContinueOnError   = false         // stop on error and return error
	defaultCreateDirMode     = 0755          // directory permissions rwxr-xr-x
	defaultFileMode          = 0644          // file permissions rw-r--r--
	defaultMaxExtractionSize = 1 << (10 * 3) // 1 Gb
	defaultMaxFiles          = 100000        // 100k files
	defaultOverwrite         = true          // replace existing files
	defaultRegexTimeout      = 0             // no regex timeout
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {

	// setup default values
	config := &Config{
		compression:       defaultCompression,
		continueOnError:   defaultContinueOnError,
		createDirMode:     defaultCreateDirMode,
		fileMode:          defaultFileMode,
		logger:            defaultLogger,
		maxExtractionSize: defaultMaxExtractionSize,
		maxFiles:          defaultMaxFiles,
		overwrite:         defaultOverwrite,
		regexTimeout:      defaultRegexTimeout,
		telemetryHook:     defaultTelemetryHook,
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	// the disk is only touched if nobody provided something else
	if config.filesystem == nil {
		config.filesystem = NewDiskFilesystem()
	}

	return config
}

// WithCompression options pattern function to set the compression method
// for new zip entries.
func WithCompression(method CompressionMethod) ConfigOption {
	return func(c *Config) {
		c.compression = method
	}
}

// WithContinueOnError options pattern function to continue after a failed entry. If set to true,
// the error is logged, the remaining entries are processed and all errors are returned together.
func WithContinueOnError(yes bool) ConfigOption {
	return func(c *Config) {
		c.continueOnError = yes
	}
}

// WithCreateDirMode options pattern function to set the file mode
// for created directories. (respecting umask)
func WithCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.createDirMode = mode
	}
}

// WithFileMode options pattern function to set the file mode for extracted files.
func WithFileMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.fileMode = mode
	}
}

// WithFilesystem options pattern function to set the filesystem delegate.
func WithFilesystem(fsys Filesystem) ConfigOption {
	return func(c *Config) {
		c.filesystem = fsys
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxExtractionSize options pattern function to set maximum size over all
// extracted files. (-1 to disable check)
func WithMaxExtractionSize(maxExtractionSize int64) ConfigOption {
	return func(c *Config) {
		c.maxExtractionSize = maxExtractionSize
	}
}

// WithMaxFiles options pattern function to set maximum number of extracted
// files in one run. (-1 to disable check)
func WithMaxFiles(maxFiles int64) ConfigOption {
	return func(c *Config) {
		c.maxFiles = maxFiles
	}
}

// WithOverwrite options pattern function specify if files should be overwritten in the destination.
func WithOverwrite(enable bool) ConfigOption {
	return func(c *Config) {
		c.overwrite = enable
	}
}

// WithRegexTimeout options pattern function to bound the time spent on a
// single regular expression match. (0 to disable)
func WithRegexTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.regexTimeout = timeout
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which is called after extraction.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}
