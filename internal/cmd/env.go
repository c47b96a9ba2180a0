package cmd

import (
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"os"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/netutil"
	"github.com/AdguardTeam/golibs/validate"
	"github.com/caarlos0/env/v7"
	"github.com/getsentry/sentry-go"
	"github.com/ut1cat/ut1cat/internal/debugsvc"
	"github.com/ut1cat/ut1cat/internal/errcoll"
	"github.com/ut1cat/ut1cat/internal/version"
)

// environment represents the configuration that is kept in the environment.
type environment struct {
	BlocklistPath string `env:"BLOCKLIST_PATH,notEmpty"`
	ConfPath      string `env:"CONFIG_PATH" envDefault:"./config.yaml"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"text"`
	SentryDSN     string `env:"SENTRY_DSN" envDefault:"stderr"`
	WebAddr       string `env:"WEB_ADDR" envDefault:"127.0.0.1:8080"`

	ListenAddr net.IP `env:"LISTEN_ADDR" envDefault:"127.0.0.1"`

	ListenPort uint16 `env:"LISTEN_PORT" envDefault:"8181"`

	Verbosity uint8 `env:"VERBOSE" envDefault:"0"`

	LogTimestamp strictBool `env:"LOG_TIMESTAMP" envDefault:"1"`
}

// parseEnvironment reads the configuration.
func parseEnvironment() (envs *environment, err error) {
	envs = &environment{}
	err = env.Parse(envs)
	if err != nil {
		return nil, fmt.Errorf("parsing environments: %w", err)
	}

	return envs, nil
}

// type check
var _ validate.Interface = (*environment)(nil)

// Validate implements the [validate.Interface] interface for *environment.
func (envs *environment) Validate() (err error) {
	errs := []error{
		validate.NotEmpty("BLOCKLIST_PATH", envs.BlocklistPath),
		validate.NotEmpty("CONFIG_PATH", envs.ConfPath),
		validate.Positive("LISTEN_PORT", envs.ListenPort),
	}

	_, err = netip.ParseAddrPort(envs.WebAddr)
	if err != nil {
		errs = append(errs, fmt.Errorf("WEB_ADDR: %w", err))
	}

	_, err = slogutil.NewFormat(envs.LogFormat)
	if err != nil {
		errs = append(errs, fmt.Errorf("LOG_FORMAT: %w", err))
	}

	_, err = slogutil.VerbosityToLevel(envs.Verbosity)
	if err != nil {
		errs = append(errs, fmt.Errorf("VERBOSE: %w", err))
	}

	return errors.Join(errs...)
}

// webAddrPort returns the address of the public HTTP API.  envs must be valid.
func (envs *environment) webAddrPort() (addr netip.AddrPort) {
	return netip.MustParseAddrPort(envs.WebAddr)
}

// buildErrColl builds and returns an error collector from environment.
func (envs *environment) buildErrColl(
	baseLogger *slog.Logger,
) (errColl errcoll.Interface, err error) {
	dsn := envs.SentryDSN
	if dsn == "stderr" {
		return errcoll.NewWriterErrorCollector(os.Stderr), nil
	}

	cli, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              dsn,
		AttachStacktrace: true,
		Release:          version.Version(),
	})
	if err != nil {
		return nil, err
	}

	l := baseLogger.With(slogutil.KeyPrefix, "sentry_errcoll")

	return errcoll.NewSentryErrorCollector(cli, l), nil
}

// debugConf returns a debug HTTP service configuration from environment.
func (envs *environment) debugConf(logger *slog.Logger) (conf *debugsvc.Config) {
	addr := netutil.JoinHostPort(envs.ListenAddr.String(), envs.ListenPort)

	return &debugsvc.Config{
		Logger:         logger.With(slogutil.KeyPrefix, "debugsvc"),
		APIAddr:        addr,
		PprofAddr:      addr,
		PrometheusAddr: addr,
	}
}

// strictBool is a type for booleans that are parsed from the environment more
// strictly than the usual bool.  It only accepts "0" and "1" as valid values.
type strictBool bool

// UnmarshalText implements the encoding.TextUnmarshaler interface for
// *strictBool.
func (sb *strictBool) UnmarshalText(b []byte) (err error) {
	if len(b) == 1 {
		switch b[0] {
		case '0':
			*sb = false

			return nil
		case '1':
			*sb = true

			return nil
		default:
			// Go on and return an error.
		}
	}

	return fmt.Errorf("invalid value %q, supported: %q, %q", b, "0", "1")
}
