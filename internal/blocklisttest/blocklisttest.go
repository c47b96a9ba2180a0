// Package blocklisttest contains common constants and utilities for the
// blocklist tests.
package blocklisttest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"github.com/ut1cat/ut1cat/internal/blocklist"
)

// Common categories for tests.
const (
	CategoryAdult    blocklist.Category = "adult"
	CategoryBlog     blocklist.Category = "blog"
	CategoryGambling blocklist.Category = "gambling"
)

// Common domains and URLs for tests.
const (
	DomainBlog      = "blogspot.com"
	DomainAdultBlog = "adultblog.blogspot.com"
	DomainFoo       = "foo.bar"
	URLFoo          = "foo.bar/baz"
)

// Compression is the compression of a list file.
type Compression uint8

// Compression values.
const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

// List is a list file fixture.
type List struct {
	// Lines are the lines of the file.
	Lines []string

	// Compression is the compression of the file.
	Compression Compression
}

// Category is a category directory fixture.  A nil list means that the file is
// absent.
type Category struct {
	Domains *List
	URLs    *List
}

// WriteTree writes a blocklist tree into a new temporary directory and returns
// its path.
func WriteTree(tb testing.TB, tree map[blocklist.Category]*Category) (root string) {
	tb.Helper()

	root = tb.TempDir()
	for name, cat := range tree {
		dir := filepath.Join(root, string(name))
		require.NoError(tb, os.Mkdir(dir, 0o755))

		writeList(tb, filepath.Join(dir, blocklist.FileNameDomains), cat.Domains)
		writeList(tb, filepath.Join(dir, blocklist.FileNameURLs), cat.URLs)
	}

	return root
}

// writeList writes l into p, adding the extension of the compression, if any.
// It does nothing if l is nil.
func writeList(tb testing.TB, p string, l *List) {
	tb.Helper()

	if l == nil {
		return
	}

	data := []byte(strings.Join(l.Lines, "\n") + "\n")

	buf := &bytes.Buffer{}
	switch l.Compression {
	case CompressionGzip:
		p += ".gz"

		w := gzip.NewWriter(buf)
		_, err := w.Write(data)
		require.NoError(tb, err)
		require.NoError(tb, w.Close())
	case CompressionZstd:
		p += ".zst"

		w, err := zstd.NewWriter(buf)
		require.NoError(tb, err)

		_, err = w.Write(data)
		require.NoError(tb, err)
		require.NoError(tb, w.Close())
	default:
		buf.Write(data)
	}

	require.NoError(tb, os.WriteFile(p, buf.Bytes(), 0o644))
}
