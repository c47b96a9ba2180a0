package websvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/httphdr"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/ut1cat/ut1cat/internal/blocklist"
)

// hdrValApplicationJSON is the value of the Content-Type header for JSON
// responses.
const hdrValApplicationJSON = "application/json"

// queryKeyURL is the query parameter of the GET detect API.
const queryKeyURL = "url"

// detectResult is a single result of the detect API.
type detectResult struct {
	URL        string               `json:"url"`
	Categories []blocklist.Category `json:"categories"`
	Matched    bool                 `json:"matched"`
}

// detectBatchRequest describes the request to the POST /api/v1/detect HTTP
// API.
type detectBatchRequest struct {
	URLs []string `json:"urls"`
}

// detectBatchResponse describes the response to the POST /api/v1/detect HTTP
// API.
type detectBatchResponse struct {
	Results []*detectResult `json:"results"`
}

// detect returns the result of categorizing candidate.
func (svc *Service) detect(ctx context.Context, candidate string) (res *detectResult) {
	cats := svc.detector.Detect(ctx, candidate)

	return &detectResult{
		URL:        candidate,
		Categories: cats,
		Matched:    len(cats) > 0,
	}
}

// handleDetect handles the GET /api/v1/detect HTTP API.
func (svc *Service) handleDetect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogutil.MustLoggerFromContext(ctx)

	q := r.URL.Query()
	if !q.Has(queryKeyURL) {
		http.Error(w, fmt.Sprintf("missing %q parameter", queryKeyURL), http.StatusBadRequest)

		return
	}

	writeJSON(ctx, l, w, svc.detect(ctx, q.Get(queryKeyURL)))
}

// handleDetectBatch handles the POST /api/v1/detect HTTP API.
func (svc *Service) handleDetectBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogutil.MustLoggerFromContext(ctx)

	body := http.MaxBytesReader(w, r.Body, int64(svc.maxBodySize.Bytes()))

	req := &detectBatchRequest{}
	err := json.NewDecoder(body).Decode(req)
	if err != nil {
		l.DebugContext(ctx, "decoding request", slogutil.KeyError, err)
		http.Error(w, fmt.Sprintf("decoding request: %s", err), http.StatusBadRequest)

		return
	}

	err = svc.validateBatch(req)
	if err != nil {
		l.DebugContext(ctx, "validating request", slogutil.KeyError, err)
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	resp := &detectBatchResponse{
		Results: make([]*detectResult, 0, len(req.URLs)),
	}

	for _, u := range req.URLs {
		resp.Results = append(resp.Results, svc.detect(ctx, u))
	}

	writeJSON(ctx, l, w, resp)
}

// validateBatch returns an error if req can't be processed.
func (svc *Service) validateBatch(req *detectBatchRequest) (err error) {
	n := len(req.URLs)
	switch {
	case n == 0:
		return errors.Error("no urls")
	case n > svc.maxBatchSize:
		return fmt.Errorf("too many urls: got %d, max %d", n, svc.maxBatchSize)
	default:
		return nil
	}
}

// handleStats handles the GET /api/v1/stats HTTP API.
func (svc *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogutil.MustLoggerFromContext(ctx)

	writeJSON(ctx, l, w, svc.detector.Stats())
}

// writeJSON writes v into w as a JSON response and logs the errors using l.
func writeJSON(ctx context.Context, l *slog.Logger, w http.ResponseWriter, v any) {
	w.Header().Set(httphdr.ContentType, hdrValApplicationJSON)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		l.DebugContext(ctx, "writing response", slogutil.KeyError, err)
	}
}
