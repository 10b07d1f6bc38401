// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Zipper creates, modifies and extracts archives. The archive itself is handled
// by a [Repository], all file operations outside the archive go through the
// [Filesystem] of the configuration.
//
// A Zipper is not safe for concurrent use. An opened archive must be closed
// with [Zipper.Close] to persist the changes.
type Zipper struct {
	cfg           *Config
	repository    Repository
	filePath      string
	currentFolder string
}

// New creates a Zipper with cfg. If cfg is nil, the default configuration is used.
func New(cfg *Config) *Zipper {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Zipper{cfg: cfg}
}

// Make opens the archive at path with the repository registered for
// archiveType. If path does not exist, its directory is created and the
// archive is written when it is closed. An archive opened before is closed
// first, so its changes are persisted before path is read.
func (z *Zipper) Make(path string, archiveType string) error {
	factory, err := findRepository(archiveType)
	if err != nil {
		return err
	}
	if err := z.closeRepository(); err != nil {
		return err
	}

	create, err := z.createArchiveFile(path)
	if err != nil {
		return err
	}

	repo, err := factory(path, create, z.cfg)
	if err != nil {
		return err
	}
	z.use(path, repo)
	return nil
}

// MakeWithRepository uses repo as archive at path. An archive opened before
// is closed first.
func (z *Zipper) MakeWithRepository(path string, repo Repository) error {
	if repo != z.repository {
		if err := z.closeRepository(); err != nil {
			return err
		}
	}
	if _, err := z.createArchiveFile(path); err != nil {
		return err
	}
	z.use(path, repo)
	return nil
}

// Zip opens the zip archive at path.
func (z *Zipper) Zip(path string) error {
	return z.Make(path, ArchiveTypeZip)
}

// Tar opens the tar archive at path. The compression is detected.
func (z *Zipper) Tar(path string) error {
	return z.Make(path, ArchiveTypeTar)
}

// Rar opens the rar archive at path for reading.
func (z *Zipper) Rar(path string) error {
	return z.Make(path, ArchiveTypeRar)
}

// SevenZip opens the 7-Zip archive at path for reading.
func (z *Zipper) SevenZip(path string) error {
	return z.Make(path, ArchiveTypeSevenZip)
}

// closeRepository closes the open archive
func (z *Zipper) closeRepository() error {
	if z.repository == nil || !z.repository.IsOpen() {
		return nil
	}
	if err := z.repository.Close(); err != nil {
		return fmt.Errorf("cannot close %s: %w", z.filePath, err)
	}
	return nil
}

// use replaces the current repository
func (z *Zipper) use(path string, repo Repository) {
	z.repository = repo
	z.filePath = path
	z.cfg.Logger().Debug("archive opened", "path", path, "type", z.ArchiveType())
}

// createArchiveFile prepares the directory of a new archive. It returns true
// if the archive does not exist yet.
func (z *Zipper) createArchiveFile(path string) (bool, error) {
	fsys := z.cfg.Filesystem()
	if fsys.Exists(path) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if !fsys.Exists(dir) {
		if err := fsys.MakeDirectory(dir, z.cfg.CreateDirMode(), true); err != nil {
			return false, fmt.Errorf("%w: %w", ErrCreateFolder, err)
		}
	}
	if !fsys.IsWritable(dir) {
		return false, fmt.Errorf("%w: the path %q is not writeable", ErrNotWritable, path)
	}
	return true, nil
}

// Add adds files and directories to the archive. A file is added with its
// base name, a directory with its content, but without its own name. All
// names are put below the current folder.
func (z *Zipper) Add(paths ...string) error {
	if z.repository == nil {
		return ErrNoArchive
	}
	var errs error
	for _, path := range paths {
		if err := z.addPath(path, &errs); err != nil {
			return err
		}
	}
	return errs
}

// AddAs adds the file at path as name below the current folder.
func (z *Zipper) AddAs(path string, name string) error {
	if z.repository == nil {
		return ErrNoArchive
	}
	return z.addFile(path, name)
}

// AddNamed adds every file of files, which maps names in the archive to paths,
// like [Zipper.AddAs]. Files are added in the order of their names.
func (z *Zipper) AddNamed(files map[string]string) error {
	if z.repository == nil {
		return ErrNoArchive
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs error
	for _, name := range names {
		if err := z.addFile(files[name], name); err != nil {
			if err := handleError(z.cfg, nil, &errs, "cannot add file", err); err != nil {
				return err
			}
		}
	}
	return errs
}

// addPath adds a file or a directory
func (z *Zipper) addPath(path string, errs *error) error {
	fsys := z.cfg.Filesystem()
	switch {
	case fsys.IsFile(path):
		if err := z.addFile(path, filepath.Base(path)); err != nil {
			return handleError(z.cfg, nil, errs, "cannot add file", err)
		}
		return nil
	case !fsys.Exists(path):
		return handleError(z.cfg, nil, errs, "cannot add path", fmt.Errorf("%w: %s", ErrPathNotFound, path))
	}
	return z.addDir(path, errs)
}

// addFile adds the file path as name below the current folder
func (z *Zipper) addFile(path string, name string) error {
	return z.repository.AddFile(path, z.InternalPath()+name)
}

// addDir adds the files of dir, then the sub directories with the current
// folder extended by their names
func (z *Zipper) addDir(dir string, errs *error) error {
	fsys := z.cfg.Filesystem()

	files, err := fsys.Files(dir)
	if err != nil {
		return handleError(z.cfg, nil, errs, "cannot list files", err)
	}
	for _, file := range files {
		if err := z.addFile(file, filepath.Base(file)); err != nil {
			if err := handleError(z.cfg, nil, errs, "cannot add file", err); err != nil {
				return err
			}
		}
	}

	dirs, err := fsys.Directories(dir)
	if err != nil {
		return handleError(z.cfg, nil, errs, "cannot list directories", err)
	}
	for _, sub := range dirs {
		oldFolder := z.currentFolder
		if z.currentFolder == "" {
			z.currentFolder = filepath.Base(sub)
		} else {
			z.currentFolder = z.currentFolder + "/" + filepath.Base(sub)
		}
		err := z.addDir(sub, errs)
		z.currentFolder = oldFolder
		if err != nil {
			return err
		}
	}
	return nil
}

// AddString adds an entry name below the current folder with content.
func (z *Zipper) AddString(name string, content string) error {
	if z.repository == nil {
		return ErrNoArchive
	}
	return z.repository.AddFromString(z.InternalPath()+name, content)
}

// AddEmptyDir adds an empty directory. The name is not put below the
// current folder.
func (z *Zipper) AddEmptyDir(name string) error {
	if z.repository == nil {
		return ErrNoArchive
	}
	return z.repository.AddEmptyDir(name)
}

// Remove removes the entry name.
func (z *Zipper) Remove(name string) error {
	if z.repository == nil {
		return ErrNoArchive
	}
	return z.repository.RemoveFile(name)
}

// RemoveMatching removes all file entries starting with one of prefixes.
// Empty prefixes are ignored.
func (z *Zipper) RemoveMatching(prefixes []string) error {
	if z.repository == nil {
		return ErrNoArchive
	}
	var matched []string
	err := z.repository.Each(func(name string, _ EntryInfo) error {
		if hasAnyPrefix(name, prefixes) {
			matched = append(matched, name)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, name := range matched {
		if err := z.repository.RemoveFile(name); err != nil {
			return fmt.Errorf("cannot remove %s: %w", name, err)
		}
	}
	return nil
}

// FileContent returns the content of the entry name.
func (z *Zipper) FileContent(name string) ([]byte, error) {
	if z.repository == nil {
		return nil, ErrNoArchive
	}
	if !z.repository.FileExists(name) {
		return nil, fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}
	return z.repository.FileContent(name)
}

// Contains returns true if the archive contains the entry name.
func (z *Zipper) Contains(name string) bool {
	return z.repository != nil && z.repository.FileExists(name)
}

// Status returns the status of the archive.
func (z *Zipper) Status() string {
	if z.repository == nil {
		return ErrNoArchive.Error()
	}
	return z.repository.Status()
}

// UsePassword sets the password to read encrypted entries.
func (z *Zipper) UsePassword(password string) error {
	if z.repository == nil {
		return ErrNoArchive
	}
	return z.repository.UsePassword(password)
}

// ListFiles returns the names of all file entries. If pattern is not empty,
// only names matching the regular expression are returned.
func (z *Zipper) ListFiles(pattern string) ([]string, error) {
	if z.repository == nil {
		return nil, ErrNoArchive
	}

	var p *Pattern
	if pattern != "" {
		var err error
		if p, err = CompilePattern(pattern, z.cfg.RegexTimeout()); err != nil {
			return nil, err
		}
	}

	names := []string{}
	err := z.repository.Each(func(name string, _ EntryInfo) error {
		if p != nil {
			ok, err := p.MatchString(name)
			if err != nil {
				return fmt.Errorf("regular expression match on %q failed: %w", name, err)
			}
			if !ok {
				return nil
			}
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Close persists the changes and closes the archive.
func (z *Zipper) Close() error {
	var err error
	if z.repository != nil {
		err = z.repository.Close()
	}
	z.filePath = ""
	return err
}

// Delete closes the archive and deletes its file.
func (z *Zipper) Delete() error {
	if z.repository != nil {
		if err := z.repository.Close(); err != nil {
			z.cfg.Logger().Warn("cannot close archive before delete", "path", z.filePath, "error", err)
		}
	}
	path := z.filePath
	z.filePath = ""
	if path == "" {
		return nil
	}
	return z.cfg.Filesystem().Delete(path)
}

// Folder sets the current folder. Added entries are put below it and only
// entries below it are extracted.
func (z *Zipper) Folder(path string) *Zipper {
	z.currentFolder = path
	return z
}

// Home resets the current folder to the root of the archive.
func (z *Zipper) Home() *Zipper {
	z.currentFolder = ""
	return z
}

// FilePath returns the path of the open archive, or "" if it was closed.
func (z *Zipper) FilePath() string {
	return z.filePath
}

// ArchiveType returns the type name of the repository, e.g. *zipper.ZipRepository.
func (z *Zipper) ArchiveType() string {
	if z.repository == nil {
		return ""
	}
	return fmt.Sprintf("%T", z.repository)
}

// CurrentFolderPath returns the current folder.
func (z *Zipper) CurrentFolderPath() string {
	return z.currentFolder
}

// InternalPath returns the prefix for names below the current folder.
func (z *Zipper) InternalPath() string {
	if z.currentFolder == "" {
		return ""
	}
	return z.currentFolder + "/"
}

// Repository returns the repository of the open archive.
func (z *Zipper) Repository() Repository {
	return z.repository
}

// Filesystem returns the filesystem delegate.
func (z *Zipper) Filesystem() Filesystem {
	return z.cfg.Filesystem()
}

// Config returns the configuration.
func (z *Zipper) Config() *Config {
	return z.cfg
}

// folderPrefix returns the current folder with exactly one trailing separator
func (z *Zipper) folderPrefix() string {
	if z.currentFolder == "" {
		return ""
	}
	if strings.HasSuffix(z.currentFolder, "/") || strings.HasSuffix(z.currentFolder, `\`) {
		return z.currentFolder
	}
	return z.currentFolder + "/"
}
