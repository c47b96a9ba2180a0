package blocklist

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/ioutil"
	"github.com/c2h5oh/datasize"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Names of the list files within a category directory.
const (
	FileNameDomains = "domains"
	FileNameURLs    = "urls"
)

// Extensions of the compressed list files.
const (
	extGzip = ".gz"
	extZstd = ".zst"
)

// DefaultMaxFileSize is the default maximum size of a decompressed list file.
const DefaultMaxFileSize = 256 * datasize.MB

// maxLineSize is the maximum length of a single line in a list file.  Longer
// lines are skipped.
const maxLineSize = 64 * datasize.KB

// ctxCheckLines is the number of lines after which the context is checked
// while reading a list file.
const ctxCheckLines = 4096

// DirSourceConfig is the configuration structure for a [DirSource].
type DirSourceConfig struct {
	// Logger is used to log the scanning progress.  It must not be nil.
	Logger *slog.Logger

	// Path is the path to the root directory, which contains a subdirectory
	// per category.  It must not be empty.
	Path string

	// Categories, if not empty, are the only categories to load.  All of them
	// must exist.
	Categories []Category

	// MaxFileSize is the maximum size of a single decompressed list file.  If
	// it is zero, [DefaultMaxFileSize] is used.
	MaxFileSize datasize.ByteSize
}

// DirSource is a [Source] that scans a directory tree.  Each immediate
// subdirectory of the root is a category, and its optional "domains" and
// "urls" files contain one entry per line.  A list file may also be
// compressed with gzip or zstd, in which case it has the ".gz" or ".zst"
// extension.  Blank lines and lines starting with "#" are ignored.
type DirSource struct {
	logger      *slog.Logger
	path        string
	categories  []Category
	maxFileSize datasize.ByteSize
}

// NewDirSource returns a new properly initialized *DirSource.  c must not be
// nil.
func NewDirSource(c *DirSourceConfig) (s *DirSource) {
	maxSize := c.MaxFileSize
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}

	return &DirSource{
		logger:      c.Logger,
		path:        c.Path,
		categories:  c.Categories,
		maxFileSize: maxSize,
	}
}

// type check
var _ Source = (*DirSource)(nil)

// Fill implements the [Source] interface for *DirSource.  The root not being a
// readable directory, a requested category missing, and any read error are
// fatal.
func (s *DirSource) Fill(ctx context.Context, b *Builder) (err error) {
	err = checkDir(s.path)
	if err != nil {
		return fmt.Errorf("blocklist root: %w", err)
	}

	cats, err := s.listCategories()
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return err
	}

	for _, c := range cats {
		err = ctx.Err()
		if err != nil {
			return fmt.Errorf("scanning %q: %w", c, err)
		}

		b.AddCategory(c)

		dir := filepath.Join(s.path, string(c))

		var domains, urls int
		domains, err = s.readList(ctx, dir, FileNameDomains, func(line string) (ok bool) {
			return b.AddDomain(c, line)
		}, func() {
			b.AddSkipped(c)
		})
		if err != nil {
			return fmt.Errorf("category %q: %w", c, err)
		}

		urls, err = s.readList(ctx, dir, FileNameURLs, func(line string) (ok bool) {
			return b.AddURL(c, line)
		}, func() {
			b.AddSkipped(c)
		})
		if err != nil {
			return fmt.Errorf("category %q: %w", c, err)
		}

		s.logger.DebugContext(ctx, "scanned category", "cat", c, "domains", domains, "urls", urls)
	}

	return nil
}

// checkDir returns an error if p is not an existing directory.  Symbolic links
// are followed.
func checkDir(p string) (err error) {
	fi, err := os.Stat(p)
	if err != nil {
		// Don't wrap the error, because it contains the path.
		return err
	}

	if !fi.IsDir() {
		return fmt.Errorf("%q: %w", p, ErrNotADirectory)
	}

	return nil
}

// listCategories returns either the configured categories after making sure
// they exist or all categories found in the root directory.
func (s *DirSource) listCategories() (cats []Category, err error) {
	if len(s.categories) > 0 {
		for _, c := range s.categories {
			err = checkDir(filepath.Join(s.path, string(c)))
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%q: %w", c, ErrCategoryNotFound)
			} else if err != nil {
				return nil, fmt.Errorf("category %q: %w", c, err)
			}
		}

		return s.categories, nil
	}

	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading blocklist root: %w", err)
	}

	for _, ent := range entries {
		c, catErr := NewCategory(ent.Name())
		if catErr != nil {
			continue
		}

		if !ent.IsDir() {
			if ent.Type()&fs.ModeSymlink == 0 {
				continue
			}

			if checkDir(filepath.Join(s.path, ent.Name())) != nil {
				continue
			}
		}

		cats = append(cats, c)
	}

	return cats, nil
}

// readList reads the list file called name from dir and calls add for each
// entry and skip for each line longer than [maxLineSize].  n is the number of
// entries for which add returned true.  A missing file is not an error.
func (s *DirSource) readList(
	ctx context.Context,
	dir string,
	name string,
	add func(line string) (ok bool),
	skip func(),
) (n int, err error) {
	err = ctx.Err()
	if err != nil {
		return 0, fmt.Errorf("scanning %s: %w", name, err)
	}

	f, ext, err := openList(filepath.Join(dir, name))
	if err != nil {
		// Don't wrap the error, because it contains the path.
		return 0, err
	} else if f == nil {
		return 0, nil
	}
	defer func() { err = errors.WithDeferred(err, f.Close()) }()

	r, err := decompress(f, ext)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", f.Name(), err)
	}
	defer func() { err = errors.WithDeferred(err, r.Close()) }()

	br := bufio.NewReaderSize(ioutil.LimitReader(r, s.maxFileSize.Bytes()), int(maxLineSize.Bytes()))
	for lineNum := 1; ; lineNum++ {
		if lineNum%ctxCheckLines == 0 {
			err = ctx.Err()
			if err != nil {
				return n, fmt.Errorf("scanning %s: %w", f.Name(), err)
			}
		}

		var raw []byte
		var tooLong bool
		raw, tooLong, err = readLine(br)
		if tooLong {
			skip()
		} else if line := strings.TrimSpace(string(raw)); line != "" && line[0] != '#' && add(line) {
			n++
		}

		if errors.Is(err, io.EOF) {
			return n, nil
		} else if err != nil {
			return n, fmt.Errorf("scanning %s: %w", f.Name(), err)
		}
	}
}

// readLine returns the next line from br including the trailing newline, if
// any.  If the line doesn't fit into the buffer of br, the rest of it is
// discarded, raw is nil, and tooLong is true.
func readLine(br *bufio.Reader) (raw []byte, tooLong bool, err error) {
	raw, err = br.ReadSlice('\n')
	if !errors.Is(err, bufio.ErrBufferFull) {
		return raw, false, err
	}

	for errors.Is(err, bufio.ErrBufferFull) {
		_, err = br.ReadSlice('\n')
	}

	return nil, true, err
}

// openList opens the first existing file among p and its compressed variants.
// f is nil if none of them exists.
func openList(p string) (f *os.File, ext string, err error) {
	for _, ext = range []string{"", extGzip, extZstd} {
		// #nosec G304 -- Trust the paths constructed from the configured
		// blocklist root.
		f, err = os.Open(p + ext)
		if err == nil {
			return f, ext, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", err
		}
	}

	return nil, "", nil
}

// decompress returns a reader of the decompressed content of r depending on
// ext.
func decompress(r io.Reader, ext string) (rc io.ReadCloser, err error) {
	switch ext {
	case extGzip:
		var gr *gzip.Reader
		gr, err = gzip.NewReader(r)
		if err != nil {
			return nil, err
		}

		return gr, nil
	case extZstd:
		var d *zstd.Decoder
		d, err = zstd.NewReader(r)
		if err != nil {
			return nil, err
		}

		return d.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}
