// Package debugsvc contains the debug HTTP API of ut1cat.  It serves the
// Prometheus metrics, pprof, health check, and the refresh and cache APIs.
package debugsvc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/service"
	"github.com/ut1cat/ut1cat/internal/rescache"
)

// Handler groups of the debug API.
const (
	handlerGroupAPI        = "api"
	handlerGroupPprof      = "pprof"
	handlerGroupPrometheus = "prometheus"
)

// Config is the debug HTTP service configuration structure.
type Config struct {
	// Logger is used for logging the operation of the service.  It must not
	// be nil.
	Logger *slog.Logger

	// Refreshers are the entities that can be refreshed through the API.
	Refreshers Refreshers

	// CacheManager is used to clear the caches through the API.  It must not
	// be nil.
	CacheManager rescache.Manager

	// APIAddr is the address of the health check and debug APIs.  If it is
	// empty, they are not served.
	APIAddr string

	// PprofAddr is the address of the pprof handlers.  If it is empty, they
	// are not served.
	PprofAddr string

	// PrometheusAddr is the address of the metrics handler.  If it is empty,
	// it is not served.
	PrometheusAddr string
}

// Service is the debug HTTP service of ut1cat.
type Service struct {
	logger    *slog.Logger
	refrHdlr  *refreshHandler
	cacheHdlr *cacheHandler
	servers   map[string]*server
}

// New returns a new properly initialized *Service.  c must not be nil.
func New(c *Config) (svc *Service) {
	svc = &Service{
		logger: c.Logger,
		refrHdlr: &refreshHandler{
			refrs: c.Refreshers,
		},
		cacheHdlr: &cacheHandler{
			manager: c.CacheManager,
		},
		servers: map[string]*server{},
	}

	svc.addServer(c.APIAddr, handlerGroupAPI)
	svc.addServer(c.PprofAddr, handlerGroupPprof)
	svc.addServer(c.PrometheusAddr, handlerGroupPrometheus)

	svc.route(c)

	return svc
}

// server is a single server within the debug HTTP service.
type server struct {
	http     *http.Server
	listener net.Listener
	name     string
}

// addServer adds the named handler group to the service, creating a new server
// listening on a different address if necessary.  If addr is empty, nothing is
// added.
func (svc *Service) addServer(addr, name string) {
	if addr == "" {
		return
	}

	srv, ok := svc.servers[addr]
	if ok {
		srv.name += ";" + name

		return
	}

	svc.servers[addr] = &server{
		// #nosec G112 -- Do not set the timeouts, since debug/pprof and similar
		// debug APIs may be busy for a long time.
		http: &http.Server{
			Addr:    addr,
			Handler: http.NewServeMux(),
		},
		name: name,
	}
}

// type check
var _ service.Interface = (*Service)(nil)

// Start implements the [service.Interface] interface for *Service.  It starts
// listening on all addresses and serves them in the background.
func (svc *Service) Start(ctx context.Context) (err error) {
	for _, srv := range svc.servers {
		srv.listener, err = net.Listen("tcp", srv.http.Addr)
		if err != nil {
			return fmt.Errorf("listening for %s on %s: %w", srv.name, srv.http.Addr, err)
		}

		go svc.serve(context.WithoutCancel(ctx), srv)
	}

	return nil
}

// serve serves srv until it is shut down.  It is intended to be used as a
// goroutine.
func (svc *Service) serve(ctx context.Context, srv *server) {
	defer slogutil.RecoverAndLog(ctx, svc.logger)

	svc.logger.InfoContext(ctx, "listening", "name", srv.name, "addr", srv.listener.Addr())

	err := srv.http.Serve(srv.listener)
	if !errors.Is(err, http.ErrServerClosed) {
		svc.logger.ErrorContext(ctx, "serving", "name", srv.name, slogutil.KeyError, err)
	}
}

// Shutdown implements the [service.Interface] interface for *Service.  It stops
// serving all endpoints.
func (svc *Service) Shutdown(ctx context.Context) (err error) {
	var errs []error
	for _, srv := range svc.servers {
		err = srv.http.Shutdown(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("server %s shutdown: %w", srv.name, err))

			continue
		}

		svc.logger.InfoContext(ctx, "server is shut down", "name", srv.name)
	}

	return errors.Join(errs...)
}
