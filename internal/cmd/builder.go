package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/AdguardTeam/golibs/contextutil"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/osutil"
	"github.com/AdguardTeam/golibs/service"
	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ut1cat/ut1cat/internal/blocklist"
	"github.com/ut1cat/ut1cat/internal/debugsvc"
	"github.com/ut1cat/ut1cat/internal/errcoll"
	"github.com/ut1cat/ut1cat/internal/metrics"
	"github.com/ut1cat/ut1cat/internal/rescache"
	"github.com/ut1cat/ut1cat/internal/websvc"
)

// builder contains the logic of configuring and combining together ut1cat
// entities.
//
// NOTE:  Keep method definitions in the rough order in which they are intended
// to be called.
type builder struct {
	// The fields below are initialized immediately on construction.  Keep them
	// sorted.

	baseLogger     *slog.Logger
	cacheManager   *rescache.DefaultManager
	conf           *configuration
	debugRefrs     debugsvc.Refreshers
	env            *environment
	errColl        errcoll.Interface
	logger         *slog.Logger
	mtrcNamespace  string
	promRegisterer prometheus.Registerer
	sigHdlr        *service.SignalHandler

	// The fields below are initialized later by calling the builder's methods.
	// Keep them sorted.

	storage *blocklist.Storage
	webSvc  *websvc.Service
}

// builderConfig contains the initial configuration for the builder.
type builderConfig struct {
	// envs contains the environment variables for the builder.  It must be
	// valid and must not be nil.
	envs *environment

	// conf contains the configuration from the configuration file for the
	// builder.  It must be valid and must not be nil.
	conf *configuration

	// baseLogger is used to create loggers for other entities.  It should not
	// have a prefix and must not be nil.
	baseLogger *slog.Logger

	// errColl is used to collect errors in the entities.  It must not be nil.
	errColl errcoll.Interface
}

// shutdownTimeout is the default shutdown timeout for all services.
const shutdownTimeout = 5 * time.Second

// newBuilder returns a new properly initialized builder.  c must not be nil.
func newBuilder(c *builderConfig) (b *builder) {
	return &builder{
		baseLogger:     c.baseLogger,
		cacheManager:   rescache.NewDefaultManager(),
		conf:           c.conf,
		debugRefrs:     debugsvc.Refreshers{},
		env:            c.envs,
		errColl:        c.errColl,
		logger:         c.baseLogger.With(slogutil.KeyPrefix, "builder"),
		mtrcNamespace:  metrics.Namespace,
		promRegisterer: prometheus.DefaultRegisterer,
		sigHdlr: service.NewSignalHandler(&service.SignalHandlerConfig{
			Logger:          c.baseLogger.With(slogutil.KeyPrefix, service.SignalHandlerPrefix),
			ShutdownTimeout: shutdownTimeout,
		}),
	}
}

// newSlogErrorHandler returns a new properly initialized slog error handler
// with the given prefix.
func newSlogErrorHandler(baseLogger *slog.Logger, prefix string) (h *service.SlogErrorHandler) {
	return service.NewSlogErrorHandler(
		baseLogger.With(slogutil.KeyPrefix, prefix),
		slog.LevelError,
		"refreshing",
	)
}

// initBlocklist initializes the blocklist storage, performs its initial
// refresh, and starts its refresher.  It also adds the refresher with ID
// [blocklist.IDStorage] to the debug refreshers.
func (b *builder) initBlocklist(ctx context.Context) (err error) {
	mtrc, err := metrics.NewBlocklist(b.mtrcNamespace, b.promRegisterer)
	if err != nil {
		return fmt.Errorf("registering blocklist metrics: %w", err)
	}

	c := b.conf.Blocklist
	src := blocklist.NewDirSource(c.toDirSource(
		b.baseLogger.With(slogutil.KeyPrefix, "blocklist_dir"),
		b.env.BlocklistPath,
	))

	b.storage = blocklist.NewStorage(&blocklist.StorageConfig{
		Logger:       b.baseLogger.With(slogutil.KeyPrefix, blocklist.IDStorage),
		Source:       src,
		CacheManager: b.cacheManager,
		ErrColl:      b.errColl,
		Metrics:      mtrc,
		CacheCount:   c.CacheCount,
	})

	refrTimeout := time.Duration(c.RefreshTimeout)
	initCtx, cancel := context.WithTimeout(ctx, refrTimeout)
	defer cancel()

	err = b.storage.RefreshInitial(initCtx)
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return err
	}

	refr := service.NewRefreshWorker(&service.RefreshWorkerConfig{
		ContextConstructor: contextutil.NewTimeoutConstructor(refrTimeout),
		ErrorHandler:       newSlogErrorHandler(b.baseLogger, blocklist.IDStorage+"_refresh"),
		Refresher:          b.storage,
		Schedule:           timeutil.NewConstSchedule(time.Duration(c.RefreshIvl)),
		RefreshOnShutdown:  false,
	})
	err = refr.Start(context.WithoutCancel(ctx))
	if err != nil {
		return fmt.Errorf("starting blocklist refresher: %w", err)
	}

	b.sigHdlr.AddService(refr)

	b.debugRefrs[blocklist.IDStorage] = b.storage

	b.logger.DebugContext(ctx, "initialized blocklist", "stats", b.storage.Stats())

	return nil
}

// initWeb initializes the public HTTP API.  [builder.initBlocklist] must be
// called before this method.
func (b *builder) initWeb(ctx context.Context) (err error) {
	mtrc, err := metrics.NewWebSvc(b.mtrcNamespace, b.promRegisterer)
	if err != nil {
		return fmt.Errorf("registering web service metrics: %w", err)
	}

	b.webSvc = websvc.New(b.conf.Web.toInternal(
		b.baseLogger.With(slogutil.KeyPrefix, "websvc"),
		b.storage,
		mtrc,
		b.env.webAddrPort(),
	))

	err = b.webSvc.Start(context.WithoutCancel(ctx))
	if err != nil {
		return fmt.Errorf("starting web service: %w", err)
	}

	b.sigHdlr.AddService(b.webSvc)

	b.logger.DebugContext(ctx, "initialized web", "addr", b.webSvc.LocalAddr())

	return nil
}

// mustInitDebugSvc initializes and starts the debug HTTP service.  It panics
// on errors.
func (b *builder) mustInitDebugSvc(ctx context.Context) {
	debugSvcConf := b.env.debugConf(b.baseLogger)
	debugSvcConf.CacheManager = b.cacheManager
	debugSvcConf.Refreshers = b.debugRefrs
	debugSvc := debugsvc.New(debugSvcConf)

	err := debugSvc.Start(context.WithoutCancel(ctx))
	if err != nil {
		panic(fmt.Errorf("starting debug service: %w", err))
	}

	b.sigHdlr.AddService(debugSvc)

	b.logger.DebugContext(
		ctx,
		"initialized debug",
		"refr_ids", slices.Sorted(maps.Keys(b.debugRefrs)),
		"cache_ids", b.cacheManager.IDs(),
	)
}

// handleSignals blocks and processes signals from the OS.  status is
// [osutil.ExitCodeSuccess] on success and [osutil.ExitCodeFailure] on error.
//
// handleSignals must not be called concurrently with any other methods.
func (b *builder) handleSignals(ctx context.Context) (code osutil.ExitCode) {
	return b.sigHdlr.Handle(ctx)
}
