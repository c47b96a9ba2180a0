// Package websvc contains the public HTTP API of ut1cat, which categorizes URLs
// and domains using the current blocklists.
package websvc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/AdguardTeam/golibs/netutil/httputil"
	"github.com/AdguardTeam/golibs/service"
	"github.com/c2h5oh/datasize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ut1cat/ut1cat/internal/blocklist"
	"github.com/ut1cat/ut1cat/internal/version"
	"golang.org/x/time/rate"
)

// Path constants.
const (
	PathDetect = "/api/v1/detect"
	PathStats  = "/api/v1/stats"
)

// Detector is the blocklist storage used by the service.
type Detector interface {
	// Detect returns the sorted categories matching candidate or nil.
	Detect(ctx context.Context, candidate string) (cats []blocklist.Category)

	// Stats returns the statistics of the current blocklists.
	Stats() (s *blocklist.Stats)
}

// type check
var _ Detector = (*blocklist.Storage)(nil)

// Config is the configuration structure for the web service.
type Config struct {
	// Logger is used for logging the operation of the service.  It must not
	// be nil.
	Logger *slog.Logger

	// Detector is used to categorize the candidates.  It must not be nil.
	Detector Detector

	// Metrics is used for the collection of the web service statistics.  It
	// must not be nil.
	Metrics Metrics

	// Address is the address to listen on.  It may have a zero port.
	Address netip.AddrPort

	// Timeout is the timeout for all server operations.
	Timeout time.Duration

	// MaxBodySize is the maximum size of a request body.  It must be
	// positive.
	MaxBodySize datasize.ByteSize

	// MaxBatchSize is the maximum number of candidates in a single batch
	// request.  It must be positive.
	MaxBatchSize int

	// RateLimit is the number of requests per second allowed for all clients.
	// If it is zero, requests are not limited.
	RateLimit float64

	// RateBurst is the maximum burst of requests when RateLimit is positive.
	RateBurst int
}

// Service is the public HTTP API service.
type Service struct {
	logger       *slog.Logger
	detector     Detector
	metrics      Metrics
	limiter      *rate.Limiter
	handler      http.Handler
	srv          *server
	maxBodySize  datasize.ByteSize
	maxBatchSize int
}

// New returns a new properly initialized *Service.  c must not be nil and must
// be valid.
func New(c *Config) (svc *Service) {
	svc = &Service{
		logger:       c.Logger,
		detector:     c.Detector,
		metrics:      c.Metrics,
		maxBodySize:  c.MaxBodySize,
		maxBatchSize: c.MaxBatchSize,
	}

	if c.RateLimit > 0 {
		svc.limiter = rate.NewLimiter(rate.Limit(c.RateLimit), c.RateBurst)
	}

	svc.handler = svc.route()
	svc.srv = newServer(c.Logger, svc.handler, c.Address, c.Timeout)

	return svc
}

// route returns the handler with all routes and middlewares of svc.
func (svc *Service) route() (h http.Handler) {
	logMw := httputil.NewLogMiddleware(svc.logger, slog.LevelDebug)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		logMw.Wrap,
		svc.metricsMiddleware,
		svc.rateLimitMiddleware,
	)

	r.Get(PathDetect, svc.handleDetect)
	r.Post(PathDetect, svc.handleDetectBatch)
	r.Get(PathStats, svc.handleStats)

	srvHdrMw := httputil.ServerHeaderMiddleware(version.UserAgent())

	return srvHdrMw.Wrap(r)
}

// Handler returns the HTTP handler of svc.  It is mostly useful in tests.
func (svc *Service) Handler() (h http.Handler) {
	return svc.handler
}

// LocalAddr returns the local address of the service if it has started
// listening; otherwise, it returns nil.
func (svc *Service) LocalAddr() (addr net.Addr) {
	return svc.srv.localAddr()
}

// type check
var _ service.Interface = (*Service)(nil)

// Start implements the [service.Interface] interface for *Service.  It returns
// after the listener is started.
func (svc *Service) Start(ctx context.Context) (err error) {
	err = svc.srv.listen(svc.logger)
	if err != nil {
		return fmt.Errorf("starting websvc: %w", err)
	}

	go svc.srv.serve(context.WithoutCancel(ctx))

	return nil
}

// Shutdown implements the [service.Interface] interface for *Service.
func (svc *Service) Shutdown(ctx context.Context) (err error) {
	err = svc.srv.shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutting down websvc: %w", err)
	}

	svc.logger.InfoContext(ctx, "shut down")

	return nil
}
