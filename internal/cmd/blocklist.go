package cmd

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/AdguardTeam/golibs/validate"
	"github.com/c2h5oh/datasize"
	"github.com/ut1cat/ut1cat/internal/blocklist"
)

// blocklistConfig is the configuration of the blocklist storage.
type blocklistConfig struct {
	// Categories, if not empty, are the only categories loaded from the
	// blocklist directory.
	Categories []string `yaml:"categories"`

	// RefreshIvl defines how often the blocklists are reloaded from the disk.
	RefreshIvl timeutil.Duration `yaml:"refresh_interval"`

	// RefreshTimeout is the timeout for the entire reload operation.
	RefreshTimeout timeutil.Duration `yaml:"refresh_timeout"`

	// MaxFileSize is the maximum size of a single decompressed list file.
	MaxFileSize datasize.ByteSize `yaml:"max_file_size"`

	// CacheCount is the number of detection results to cache.  Zero disables
	// the cache.
	CacheCount int `yaml:"cache_count"`
}

// type check
var _ validate.Interface = (*blocklistConfig)(nil)

// Validate implements the [validate.Interface] interface for *blocklistConfig.
func (c *blocklistConfig) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	errs := []error{
		validate.Positive("refresh_interval", c.RefreshIvl),
		validate.Positive("refresh_timeout", c.RefreshTimeout),
		validate.Positive("max_file_size", c.MaxFileSize),
		validate.NoGreaterThan("max_file_size", c.MaxFileSize, datasize.ByteSize(math.MaxInt)),
		validate.NotNegative("cache_count", c.CacheCount),
	}

	_, err = c.toInternalCategories()
	if err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// toInternalCategories converts the names of the categories into their
// internal representation.
func (c *blocklistConfig) toInternalCategories() (cats []blocklist.Category, err error) {
	if len(c.Categories) == 0 {
		return nil, nil
	}

	cats = make([]blocklist.Category, 0, len(c.Categories))
	for i, name := range c.Categories {
		var cat blocklist.Category
		cat, err = blocklist.NewCategory(name)
		if err != nil {
			return nil, fmt.Errorf("categories: at index %d: %w", i, err)
		}

		cats = append(cats, cat)
	}

	return cats, nil
}

// toDirSource converts c into a configuration of the directory source rooted
// at path.  c must be valid.
func (c *blocklistConfig) toDirSource(
	logger *slog.Logger,
	path string,
) (conf *blocklist.DirSourceConfig) {
	cats, err := c.toInternalCategories()
	if err != nil {
		panic(fmt.Errorf("blocklist config: %w", err))
	}

	return &blocklist.DirSourceConfig{
		Logger:      logger,
		Path:        path,
		Categories:  cats,
		MaxFileSize: c.MaxFileSize,
	}
}
