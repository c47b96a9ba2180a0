package debugsvc

import (
	"net/http"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/ut1cat/ut1cat/internal/rescache"
)

// cacheHandler performs debug cache purges.
type cacheHandler struct {
	manager rescache.Manager
}

// type check
var _ http.Handler = (*cacheHandler)(nil)

// ServeHTTP implements the [http.Handler] interface for *cacheHandler.
func (h *cacheHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogutil.MustLoggerFromContext(ctx)

	reqIDs, ok := decodeIDs(w, r, l, h.manager.IDs)
	if !ok {
		return
	}

	resp := &resultsResponse{
		Results: make(map[string]string, len(reqIDs)),
	}

	for _, id := range reqIDs {
		if h.manager.ClearByID(id) {
			resp.Results[id] = "ok"
		} else {
			resp.Results[id] = "error: cache not found"
		}
	}

	writeJSON(ctx, l, w, resp)
}
