package cmd

import (
	"fmt"
	"log/slog"
	"math"
	"net/netip"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/AdguardTeam/golibs/validate"
	"github.com/c2h5oh/datasize"
	"github.com/ut1cat/ut1cat/internal/websvc"
)

// webConfig is the configuration of the public HTTP API.
type webConfig struct {
	// Timeout is the timeout for all server operations.
	Timeout timeutil.Duration `yaml:"timeout"`

	// MaxBatchSize is the maximum number of candidates in a batch request.
	MaxBatchSize int `yaml:"max_batch_size"`

	// RateLimit is the number of requests per second for all clients.  Zero
	// disables rate limiting.
	RateLimit float64 `yaml:"rate_limit"`

	// RateBurst is the maximum burst of requests.
	RateBurst int `yaml:"rate_burst"`

	// MaxBodySize is the maximum size of a request body.
	MaxBodySize datasize.ByteSize `yaml:"max_body_size"`
}

// type check
var _ validate.Interface = (*webConfig)(nil)

// Validate implements the [validate.Interface] interface for *webConfig.
func (c *webConfig) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	errs := []error{
		validate.Positive("timeout", c.Timeout),
		validate.Positive("max_batch_size", c.MaxBatchSize),
		validate.Positive("max_body_size", c.MaxBodySize),
		validate.NoGreaterThan("max_body_size", c.MaxBodySize, datasize.ByteSize(math.MaxInt64)),
	}

	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit: must not be negative, got %v", c.RateLimit))
	} else if c.RateLimit > 0 {
		errs = append(errs, validate.Positive("rate_burst", c.RateBurst))
	}

	return errors.Join(errs...)
}

// toInternal converts c into the configuration of the web service.  c must be
// valid.
func (c *webConfig) toInternal(
	logger *slog.Logger,
	det websvc.Detector,
	mtrc websvc.Metrics,
	addr netip.AddrPort,
) (conf *websvc.Config) {
	return &websvc.Config{
		Logger:       logger,
		Detector:     det,
		Metrics:      mtrc,
		Address:      addr,
		Timeout:      time.Duration(c.Timeout),
		MaxBodySize:  c.MaxBodySize,
		MaxBatchSize: c.MaxBatchSize,
		RateLimit:    c.RateLimit,
		RateBurst:    c.RateBurst,
	}
}
