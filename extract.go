// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// entryMatcher decides for the name of an entry relative to the current
// folder if it is extracted
type entryMatcher func(name string) (bool, error)

// ExtractTo extracts the file entries below the current folder to dst. files
// is applied as whitelist or blacklist as selected by mode, with prefix
// matching unless mode contains [ExactMatch]. The names of extracted files are
// relative to the current folder.
func (z *Zipper) ExtractTo(ctx context.Context, dst string, files []string, mode ExtractMode) error {
	if z.repository == nil {
		return ErrNoArchive
	}
	if err := z.ensureDirectory(dst); err != nil {
		return err
	}

	filter := listFilter(files, mode)
	z.cfg.Logger().Info("extract", "archive", z.filePath, "destination", dst, "mode", mode.String(), "files", len(files))
	return z.extractFiles(ctx, dst, func(name string) (bool, error) {
		return filter(name), nil
	})
}

// ExtractMatchingRegex extracts the file entries below the current folder,
// whose names relative to the folder match pattern, to dst.
func (z *Zipper) ExtractMatchingRegex(ctx context.Context, dst string, pattern string) error {
	if pattern == "" {
		return ErrEmptyPattern
	}
	if z.repository == nil {
		return ErrNoArchive
	}
	p, err := CompilePattern(pattern, z.cfg.RegexTimeout())
	if err != nil {
		return err
	}
	if err := z.ensureDirectory(dst); err != nil {
		return err
	}

	z.cfg.Logger().Info("extract", "archive", z.filePath, "destination", dst, "pattern", pattern)
	return z.extractFiles(ctx, dst, func(name string) (bool, error) {
		ok, err := p.MatchString(name)
		if err != nil {
			return false, fmt.Errorf("regular expression match on %q failed: %w", name, err)
		}
		return ok, nil
	})
}

// ensureDirectory creates dir if it does not exist
func (z *Zipper) ensureDirectory(dir string) error {
	fsys := z.cfg.Filesystem()
	if fsys.Exists(dir) {
		return nil
	}
	if err := fsys.MakeDirectory(dir, z.cfg.CreateDirMode(), true); err != nil {
		return fmt.Errorf("%w: %w", ErrCreateFolder, err)
	}
	return nil
}

// extractFiles extracts all entries accepted by match and reports the
// telemetry data when finished
func (z *Zipper) extractFiles(ctx context.Context, dst string, match entryMatcher) error {
	// prepare telemetry capturing
	td := &TelemetryData{ArchiveType: z.archiveTypeName()}
	defer z.cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	prefix := z.folderPrefix()
	var errs error
	var aborted bool

	// abort records err and ends the extraction regardless of continue on error
	abort := func(msg string, err error) error {
		aborted = true
		td.ExtractionErrors++
		td.LastExtractionError = fmt.Errorf("%s: %w", msg, err)
		return td.LastExtractionError
	}

	err := z.repository.Each(func(name string, info EntryInfo) error {
		// check if context is canceled
		if err := ctx.Err(); err != nil {
			return abort("extraction canceled", err)
		}

		// only entries below the current folder
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			return nil
		}
		relative := strings.TrimPrefix(name, prefix)
		if relative == "" {
			return nil
		}

		ok, err := match(relative)
		if err != nil {
			return abort("cannot check pattern", err)
		}
		if !ok {
			z.cfg.Logger().Debug("skipping file (pattern mismatch)", "name", name)
			td.PatternMismatches++
			return nil
		}

		// check limits
		if err := z.cfg.CheckMaxFiles(td.ExtractedFiles + 1); err != nil {
			return abort("max files check failed", err)
		}
		if info.Size > 0 {
			if err := z.cfg.CheckExtractionSize(td.ExtractionSize + info.Size); err != nil {
				return abort("max extraction size exceeded", err)
			}
		}

		z.cfg.Logger().Debug("extract", "name", name, "target", relative)
		written, err := z.extractOne(td, name, relative, dst)
		td.ExtractionSize += written
		if errors.Is(err, ErrMaxExtractionSizeExceeded) {
			return abort("max extraction size exceeded", err)
		}
		if err != nil {
			return handleError(z.cfg, td, &errs, "cannot extract "+name, err)
		}
		td.ExtractedFiles++
		return nil
	})

	if err != nil {
		if !aborted && !errors.Is(err, td.LastExtractionError) {
			td.ExtractionErrors++
			td.LastExtractionError = err
		}
		return err
	}
	return errs
}

// extractOne writes the entry name to relative below dst and returns the
// number of written bytes
func (z *Zipper) extractOne(td *TelemetryData, name string, relative string, dst string) (int64, error) {
	// prevent zip traversal attacks
	if strings.Contains(name, "../") || strings.Contains(name, `..\`) {
		return 0, fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	local := filepath.FromSlash(relative)
	if !filepath.IsLocal(local) {
		return 0, fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	target := filepath.Join(dst, local)

	// the directory needs to exist first
	fsys := z.cfg.Filesystem()
	dir := filepath.Dir(target)
	if !fsys.Exists(dir) {
		if err := fsys.MakeDirectory(dir, z.cfg.CreateDirMode(), true); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrCreateFolder, err)
		}
		td.ExtractedDirs++
	}

	rc, err := z.repository.FileStream(name)
	if err != nil {
		return 0, fmt.Errorf("cannot open entry: %w", err)
	}
	defer rc.Close()

	maxSize := int64(-1)
	if z.cfg.MaxExtractionSize() != -1 {
		maxSize = z.cfg.MaxExtractionSize() - td.ExtractionSize
	}
	return fsys.Put(target, rc, z.cfg.FileMode(), z.cfg.Overwrite(), maxSize)
}

// typedRepository is implemented by repositories that know their archive type
type typedRepository interface {
	Type() string
}

// archiveTypeName returns the archive type for telemetry
func (z *Zipper) archiveTypeName() string {
	if t, ok := z.repository.(typedRepository); ok {
		return t.Type()
	}
	return z.ArchiveType()
}
