package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/ut1cat/ut1cat/internal/errcoll"
)

// reportPanics reports all panics in Main using the Sentry client, logs them,
// and repanics.  It should be called in a defer.
func reportPanics(ctx context.Context, errColl errcoll.Interface, l *slog.Logger) {
	v := recover()
	if v == nil {
		return
	}

	err, ok := v.(error)
	if ok {
		err = fmt.Errorf("panic in main: %w", err)
	} else {
		err = fmt.Errorf("panic in main: %v", v)
	}

	errColl.Collect(ctx, err)
	if flusher, isFlusher := errColl.(errcoll.ErrorFlushCollector); isFlusher {
		flusher.Flush()
	}

	l.ErrorContext(ctx, "recovered from panic", slogutil.KeyError, err)

	panic(errors.Annotate(err, "repanic: %w"))
}
