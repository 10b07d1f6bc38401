// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper_test

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-zipper"
)

// arrayRepository keeps entries in memory. Files added from disk get their
// name in the archive as content.
type arrayRepository struct {
	names    []string
	content  map[string]string
	open     bool
	password string
}

func newArrayRepository() *arrayRepository {
	return &arrayRepository{content: make(map[string]string), open: true}
}

func (a *arrayRepository) put(name string, content string) {
	if _, ok := a.content[name]; !ok {
		a.names = append(a.names, name)
	}
	a.content[name] = content
}

func (a *arrayRepository) IsOpen() bool   { return a.open }
func (a *arrayRepository) IsClosed() bool { return !a.open }

func (a *arrayRepository) AddFile(pathToFile string, pathInArchive string) error {
	a.put(pathInArchive, pathInArchive)
	return nil
}

func (a *arrayRepository) AddFromString(name string, content string) error {
	a.put(name, content)
	return nil
}

func (a *arrayRepository) AddEmptyDir(dirName string) error {
	// directories are not kept
	return nil
}

func (a *arrayRepository) RemoveFile(pathInArchive string) error {
	if _, ok := a.content[pathInArchive]; !ok {
		return fmt.Errorf("%w: %s", zipper.ErrFileNotFound, pathInArchive)
	}
	delete(a.content, pathInArchive)
	for i, name := range a.names {
		if name == pathInArchive {
			a.names = append(a.names[:i], a.names[i+1:]...)
			break
		}
	}
	return nil
}

func (a *arrayRepository) FileContent(pathInArchive string) ([]byte, error) {
	content, ok := a.content[pathInArchive]
	if !ok {
		return nil, fmt.Errorf("%w: %s", zipper.ErrFileNotFound, pathInArchive)
	}
	return []byte(content), nil
}

func (a *arrayRepository) FileStream(pathInArchive string) (io.ReadCloser, error) {
	content, ok := a.content[pathInArchive]
	if !ok {
		return nil, fmt.Errorf("%w: %s", zipper.ErrFileNotFound, pathInArchive)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (a *arrayRepository) Each(fn func(name string, info zipper.EntryInfo) error) error {
	for _, name := range append([]string(nil), a.names...) {
		info := zipper.EntryInfo{
			Name:           name,
			Size:           int64(len(a.content[name])),
			CompressedSize: -1,
			Mode:           0644,
		}
		if err := fn(name, info); err != nil {
			return err
		}
	}
	return nil
}

func (a *arrayRepository) FileExists(fileInArchive string) bool {
	_, ok := a.content[fileInArchive]
	return ok
}

func (a *arrayRepository) UsePassword(password string) error {
	a.password = password
	return nil
}

func (a *arrayRepository) Status() string {
	return "OK"
}

func (a *arrayRepository) Close() error {
	a.open = false
	return nil
}
