// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper_test

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-slug"
	"github.com/hashicorp/go-zipper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// createSourceTree writes a small directory tree to dir
func createSourceTree(t testing.TB, dir string) {
	t.Helper()
	files := map[string]string{
		"main.tf":               "resource {}",
		"modules/a/variables":   "variable a",
		"modules/a/deeper/file": "deep",
		"README":                "read me",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// readTree returns the slash separated paths of all regular files below dir
// with their content
func readTree(t testing.TB, dir string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	require.NoError(t, err)
	return files
}

// TestSlugCompatibility extracts a slug with go-slug and the zipper in
// parallel and compares the results
func TestSlugCompatibility(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	createSourceTree(t, src)

	archive := filepath.Join(dir, "slug.tar.gz")
	f, err := os.Create(archive)
	require.NoError(t, err)
	meta, err := slug.Pack(src, f, true)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NotEmpty(t, meta.Files)

	slugTarget := filepath.Join(dir, "slug")
	zipperTarget := filepath.Join(dir, "zipper")

	eg := &errgroup.Group{}
	eg.Go(func() error {
		r, err := os.Open(archive)
		if err != nil {
			return err
		}
		defer r.Close()
		if err := os.MkdirAll(slugTarget, 0755); err != nil {
			return err
		}
		return slug.Unpack(r, slugTarget)
	})
	eg.Go(func() error {
		z := zipper.New(nil)
		if err := z.Tar(archive); err != nil {
			return err
		}
		defer z.Close()
		return z.ExtractTo(context.Background(), zipperTarget, nil, zipper.Blacklist)
	})
	require.NoError(t, eg.Wait())

	want := readTree(t, src)
	assert.Equal(t, want, readTree(t, slugTarget))
	assert.Equal(t, want, readTree(t, zipperTarget))
}

// TestSlugUnpacksZipperArchive checks that a tar.gz written by the zipper is a
// valid slug
func TestSlugUnpacksZipperArchive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	createSourceTree(t, src)

	archive := filepath.Join(dir, "zipper.tar.gz")
	z := zipper.New(nil)
	require.NoError(t, z.Tar(archive))
	require.NoError(t, z.Add(src))
	require.NoError(t, z.Close())

	r, err := os.Open(archive)
	require.NoError(t, err)
	defer r.Close()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.MkdirAll(target, 0755))
	require.NoError(t, slug.Unpack(r, target))

	assert.Equal(t, readTree(t, src), readTree(t, target))
}

// BenchmarkExtract measures the extraction of a small tree for every
// writable archive type
func BenchmarkExtract(b *testing.B) {
	dir := b.TempDir()
	src := filepath.Join(dir, "src")
	createSourceTree(b, src)

	for _, name := range []string{"bench.zip", "bench.tar", "bench.tar.gz", "bench.tar.zst", "bench.tar.xz"} {
		archive := filepath.Join(dir, name)
		z := zipper.New(nil)
		require.NoError(b, z.Make(archive, zipper.DetectArchiveType(archive)))
		require.NoError(b, z.Add(src))
		require.NoError(b, z.Close())

		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				z := zipper.New(nil)
				if err := z.Make(archive, zipper.DetectArchiveType(archive)); err != nil {
					b.Fatal(err)
				}
				if err := z.ExtractTo(context.Background(), filepath.Join(dir, "out", fmt.Sprint(i)), nil, zipper.Blacklist); err != nil {
					b.Fatal(err)
				}
				z.Close()
			}
		})
	}
}
