package debugsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/httphdr"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/service"
)

// idWildcard is the ID that means all known IDs in the debug API requests.
const idWildcard = "*"

// hdrValApplicationJSON is the value of the Content-Type header for JSON
// responses.
const hdrValApplicationJSON = "application/json"

// Refreshers is a type alias for maps of refresher IDs to refreshers
// themselves.
type Refreshers = map[string]service.Refresher

// refreshHandler performs debug refreshes.
type refreshHandler struct {
	refrs Refreshers
}

// idsRequest describes the requests to the POST /debug/api/refresh and POST
// /debug/api/cache/clear HTTP APIs.
type idsRequest struct {
	IDs []string `json:"ids"`
}

// resultsResponse describes the responses to the POST /debug/api/refresh and
// POST /debug/api/cache/clear HTTP APIs.
type resultsResponse struct {
	Results map[string]string `json:"results"`
}

// type check
var _ http.Handler = (*refreshHandler)(nil)

// ServeHTTP implements the [http.Handler] interface for *refreshHandler.
func (h *refreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogutil.MustLoggerFromContext(ctx)

	reqIDs, ok := decodeIDs(w, r, l, func() (ids []string) {
		return slices.Sorted(maps.Keys(h.refrs))
	})
	if !ok {
		return
	}

	resp := &resultsResponse{
		Results: make(map[string]string, len(reqIDs)),
	}

	for _, id := range reqIDs {
		resp.Results[id] = h.refresh(ctx, l, id)
	}

	writeJSON(ctx, l, w, resp)
}

// refresh performs a single refresh and returns the result as a string.
func (h *refreshHandler) refresh(ctx context.Context, l *slog.Logger, id string) (res string) {
	r, ok := h.refrs[id]
	if !ok {
		return "error: refresher not found"
	}

	start := time.Now()
	err := r.Refresh(ctx)
	if err != nil {
		l.ErrorContext(ctx, "refresher error", "id", id, slogutil.KeyError, err)

		return fmt.Sprintf("error: %s", err)
	}

	l.InfoContext(ctx, "refresh finished", "id", id, "duration", time.Since(start))

	return "ok"
}

// decodeIDs decodes the request body and returns the requested IDs.  allIDs is
// used to expand the wildcard.  If ok is false, the error response has already
// been written.
func decodeIDs(
	w http.ResponseWriter,
	r *http.Request,
	l *slog.Logger,
	allIDs func() (ids []string),
) (ids []string, ok bool) {
	ctx := r.Context()

	req := &idsRequest{}
	err := json.NewDecoder(r.Body).Decode(req)
	if err != nil {
		l.ErrorContext(ctx, "decoding request", slogutil.KeyError, err)
		http.Error(w, err.Error(), http.StatusBadRequest)

		return nil, false
	}

	ids, err = idsFromReq(req.IDs, allIDs)
	if err != nil {
		l.ErrorContext(ctx, "validating request", slogutil.KeyError, err)
		http.Error(w, err.Error(), http.StatusBadRequest)

		return nil, false
	}

	return ids, true
}

// idsFromReq validates the form of the request and returns the IDs to process.
func idsFromReq(reqIDs []string, allIDs func() (ids []string)) (ids []string, err error) {
	switch len(reqIDs) {
	case 0:
		return nil, errors.Error("no ids")
	case 1:
		if reqIDs[0] != idWildcard {
			return reqIDs, nil
		}

		return allIDs(), nil
	default:
		if slices.Contains(reqIDs, idWildcard) {
			return nil, fmt.Errorf("%q cannot be used with other ids", idWildcard)
		}

		return reqIDs, nil
	}
}

// writeJSON writes v into w as a JSON response and logs the errors using l.
func writeJSON(ctx context.Context, l *slog.Logger, w http.ResponseWriter, v any) {
	w.Header().Set(httphdr.ContentType, hdrValApplicationJSON)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		l.ErrorContext(ctx, "writing response", slogutil.KeyError, err)
	}
}
