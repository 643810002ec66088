package httpmw

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var _ = Describe("Stack", func() {
	var (
		logs   *bytes.Buffer
		logger *slog.Logger
		calls  int
		ok     http.Handler
	)

	BeforeEach(func() {
		logs = &bytes.Buffer{}
		logger = slog.New(slog.NewJSONHandler(logs, nil))
		calls = 0
		ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusOK)
		})
	})

	serve := func(h http.Handler, method, path, requestID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set("X-Request-ID", requestID)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	It("tags, logs and counts requests the rate limiter rejects", func() {
		h := Chain(ok, Stack(logger, NewRateLimiter(0.001, 1))...)
		rejected := httpRequestsTotal.WithLabelValues(http.MethodPost, "/v1/login", "429")
		before := testutil.ToFloat64(rejected)

		Expect(serve(h, http.MethodPost, "/v1/login", "first").Code).To(Equal(http.StatusOK))
		rec := serve(h, http.MethodPost, "/v1/login", "second")

		Expect(rec.Code).To(Equal(http.StatusTooManyRequests))
		Expect(rec.Header().Get("X-Request-ID")).To(Equal("second"))
		Expect(rec.Header().Get("Retry-After")).To(Equal("1"))
		Expect(calls).To(Equal(1))
		Expect(testutil.ToFloat64(rejected)).To(Equal(before + 1))
		Expect(logs.String()).To(ContainSubstring(`"request_id":"second"`))
		Expect(logs.String()).To(ContainSubstring(`"status":429`))
		Expect(logs.String()).To(ContainSubstring(`"client":"203.0.113.7"`))
	})

	It("recovers panics inside the request ID and keeps the in-flight gauge balanced", func() {
		boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
		h := Chain(boom, Stack(logger, NewRateLimiter(100, 10))...)
		panics := httpPanicsTotal.WithLabelValues("/v1/support")
		before := testutil.ToFloat64(panics)

		rec := serve(h, http.MethodPost, "/v1/support", "boom-1")

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Header().Get("X-Request-ID")).To(Equal("boom-1"))
		Expect(rec.Body.String()).To(ContainSubstring("Internal server error."))
		Expect(testutil.ToFloat64(panics)).To(Equal(before + 1))
		Expect(testutil.ToFloat64(httpRequestsInFlight)).To(BeZero())
		Expect(logs.String()).To(ContainSubstring(`"msg":"handler panicked"`))
		Expect(logs.String()).To(ContainSubstring(`"request_id":"boom-1"`))
		Expect(logs.String()).To(ContainSubstring(`"route":"/v1/support"`))
	})

	It("re-raises http.ErrAbortHandler", func() {
		abort := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) })
		h := Chain(abort, Stack(logger, NewRateLimiter(100, 10))...)

		Expect(func() { serve(h, http.MethodGet, "/v1/session", "abort") }).To(PanicWith(http.ErrAbortHandler))
	})

	It("logs accepted requests at info with the response size", func() {
		hello := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("hello"))
		})
		h := Chain(hello, Stack(logger, NewRateLimiter(100, 10))...)

		rec := serve(h, http.MethodGet, "/nowhere", "info-1")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(logs.String()).To(ContainSubstring(`"level":"INFO"`))
		Expect(logs.String()).To(ContainSubstring(`"bytes":5`))
		Expect(logs.String()).To(ContainSubstring(`"route":"/other"`))
	})
})

var _ = Describe("Chain", func() {
	It("serves the bare handler when given no middleware", func() {
		h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})
})
