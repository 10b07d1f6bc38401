// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package zipper provides a convenience layer on top of archive libraries to
// add files and directories to an archive, extract subsets of it and list its
// contents.
//
// A [Zipper] composes a [Repository], which performs the actual archive
// operations, and a [Filesystem], which gives access to the files that are
// added or extracted. Zip and tar archives can be created and modified, rar
// and 7zip archives can be read.
//
// Selective extraction is done with [Zipper.ExtractTo], using a whitelist or a
// blacklist of entry names that are compared by prefix or, with [ExactMatch],
// by equality. [Zipper.ExtractMatchingRegex] extracts all entries matching a
// regular expression. Entry names containing path traversal are refused.
//
// Configuration is done with [Config], using the option pattern. Telemetry
// data is captured during each extraction and handed to the [TelemetryHook].
package zipper
