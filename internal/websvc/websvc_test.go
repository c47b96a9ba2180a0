package websvc_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"strings"
	"testing"

	"github.com/AdguardTeam/golibs/httphdr"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ut1cat/ut1cat/internal/blocklist"
	"github.com/ut1cat/ut1cat/internal/blocklisttest"
	"github.com/ut1cat/ut1cat/internal/ut1test"
	"github.com/ut1cat/ut1cat/internal/version"
	"github.com/ut1cat/ut1cat/internal/websvc"
)

// testMaxBatchSize is the maximum batch size for tests.
const testMaxBatchSize = 3

// newTestDetector returns a detector that matches everything under
// [blocklisttest.DomainFoo] with [blocklisttest.CategoryBlog].
func newTestDetector() (d *ut1test.Detector) {
	return &ut1test.Detector{
		OnDetect: func(_ context.Context, candidate string) (cats []blocklist.Category) {
			if strings.Contains(candidate, blocklisttest.DomainFoo) {
				return []blocklist.Category{blocklisttest.CategoryBlog}
			}

			return nil
		},
		OnStats: func() (s *blocklist.Stats) {
			return &blocklist.Stats{
				Categories: map[blocklist.Category]blocklist.CategoryStats{
					blocklisttest.CategoryBlog: {Domains: 1},
				},
				DomainKeys: 1,
			}
		},
	}
}

// newTestService returns a new service for tests.  c may be nil, in which case
// the default configuration is used.
func newTestService(t testing.TB, c *websvc.Config) (svc *websvc.Service) {
	t.Helper()

	if c == nil {
		c = &websvc.Config{}
	}

	c.Logger = slogutil.NewDiscardLogger()
	if c.Detector == nil {
		c.Detector = newTestDetector()
	}

	if c.Metrics == nil {
		c.Metrics = websvc.EmptyMetrics{}
	}

	c.Address = netip.MustParseAddrPort("127.0.0.1:0")
	c.Timeout = ut1test.Timeout
	if c.MaxBodySize == 0 {
		c.MaxBodySize = 1 * datasize.KB
	}

	c.MaxBatchSize = testMaxBatchSize

	return websvc.New(c)
}

// serve performs r using h and returns the response code and body.
func serve(t testing.TB, h http.Handler, r *http.Request) (code int, body string) {
	t.Helper()

	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, r)

	assert.Equal(t, version.UserAgent(), rw.Header().Get(httphdr.Server))

	return rw.Code, rw.Body.String()
}

func TestService_detect(t *testing.T) {
	t.Parallel()

	h := newTestService(t, nil).Handler()

	testCases := []struct {
		name     string
		query    url.Values
		wantBody string
		wantCode int
	}{{
		name:     "matched",
		query:    url.Values{"url": []string{"https://foo.bar/baz"}},
		wantBody: `{"url":"https://foo.bar/baz","categories":["blog"],"matched":true}` + "\n",
		wantCode: http.StatusOK,
	}, {
		name:     "not_matched",
		query:    url.Values{"url": []string{"example.org"}},
		wantBody: `{"url":"example.org","categories":null,"matched":false}` + "\n",
		wantCode: http.StatusOK,
	}, {
		name:     "empty",
		query:    url.Values{"url": []string{""}},
		wantBody: `{"url":"","categories":null,"matched":false}` + "\n",
		wantCode: http.StatusOK,
	}, {
		name:     "missing",
		query:    url.Values{},
		wantBody: `missing "url" parameter` + "\n",
		wantCode: http.StatusBadRequest,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			target := websvc.PathDetect + "?" + tc.query.Encode()
			r := httptest.NewRequest(http.MethodGet, target, nil)

			code, body := serve(t, h, r)
			assert.Equal(t, tc.wantCode, code)
			assert.Equal(t, tc.wantBody, body)
		})
	}
}

func TestService_detectBatch(t *testing.T) {
	t.Parallel()

	h := newTestService(t, &websvc.Config{
		MaxBodySize: 128 * datasize.B,
	}).Handler()

	testCases := []struct {
		name     string
		reqBody  string
		wantBody string
		wantCode int
	}{{
		name:    "success",
		reqBody: `{"urls":["foo.bar","example.org"]}`,
		wantBody: `{"results":[` +
			`{"url":"foo.bar","categories":["blog"],"matched":true},` +
			`{"url":"example.org","categories":null,"matched":false}` +
			`]}` + "\n",
		wantCode: http.StatusOK,
	}, {
		name:     "no_urls",
		reqBody:  `{"urls":[]}`,
		wantBody: "no urls\n",
		wantCode: http.StatusBadRequest,
	}, {
		name:     "too_many",
		reqBody:  `{"urls":["a","b","c","d"]}`,
		wantBody: "too many urls: got 4, max 3\n",
		wantCode: http.StatusBadRequest,
	}, {
		name:     "bad_json",
		reqBody:  `{"urls":`,
		wantBody: "decoding request: unexpected EOF\n",
		wantCode: http.StatusBadRequest,
	}, {
		name:     "too_large",
		reqBody:  `{"urls":["` + strings.Repeat("a", 200) + `"]}`,
		wantBody: "decoding request: http: request body too large\n",
		wantCode: http.StatusBadRequest,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, websvc.PathDetect, strings.NewReader(tc.reqBody))

			code, body := serve(t, h, r)
			assert.Equal(t, tc.wantCode, code)
			assert.Equal(t, tc.wantBody, body)
		})
	}
}

func TestService_stats(t *testing.T) {
	t.Parallel()

	h := newTestService(t, nil).Handler()
	r := httptest.NewRequest(http.MethodGet, websvc.PathStats, nil)

	code, body := serve(t, h, r)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{
		"categories": {"blog": {"domains": 1, "urls": 0, "skipped": 0}},
		"domain_keys": 1,
		"url_keys": 0,
		"skipped": 0
	}`, body)
}

func TestService_rateLimit(t *testing.T) {
	t.Parallel()

	var codes []int
	rateLimited := 0
	m := &ut1test.WebSvcMetrics{
		OnIncrementRequests: func(_ context.Context, code int) {
			codes = append(codes, code)
		},
		OnIncrementRateLimited: func(_ context.Context) {
			rateLimited++
		},
	}

	h := newTestService(t, &websvc.Config{
		Metrics: m,
		// Make sure that the limiter doesn't refill during the test.
		RateLimit: 0.001,
		RateBurst: 2,
	}).Handler()

	for range 3 {
		r := httptest.NewRequest(http.MethodGet, websvc.PathStats, nil)
		_, _ = serve(t, h, r)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1, rateLimited)
}

func TestService_notFound(t *testing.T) {
	t.Parallel()

	var gotCode int
	m := &ut1test.WebSvcMetrics{
		OnIncrementRequests: func(_ context.Context, code int) {
			gotCode = code
		},
		OnIncrementRateLimited: func(_ context.Context) {
			panic("unexpected call")
		},
	}

	h := newTestService(t, &websvc.Config{Metrics: m}).Handler()
	r := httptest.NewRequest(http.MethodGet, "/unknown", nil)

	code, _ := serve(t, h, r)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, http.StatusNotFound, gotCode)
}

func TestService_Start(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)

	err := svc.Start(testutil.ContextWithTimeout(t, ut1test.Timeout))
	require.NoError(t, err)
	testutil.CleanupAndRequireSuccess(t, func() (err error) {
		return svc.Shutdown(testutil.ContextWithTimeout(t, ut1test.Timeout))
	})

	addr := svc.LocalAddr()
	require.NotNil(t, addr)

	client := &http.Client{
		Timeout: ut1test.Timeout,
	}

	u := fmt.Sprintf("http://%s%s?url=%s", addr, websvc.PathDetect, blocklisttest.URLFoo)
	resp, err := client.Get(u)
	require.NoError(t, err)
	testutil.CleanupAndRequireSuccess(t, resp.Body.Close)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"url":"foo.bar/baz","categories":["blog"],"matched":true}`+"\n", string(body))
}
