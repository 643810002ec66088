package httpmw

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RequestID", func() {
	It("generates a UUID when the client sends none", func() {
		var seen string
		handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(seen)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Header().Get("X-Request-ID")).To(Equal(seen))
	})

	It("reuses the client's X-Request-ID", func() {
		handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(RequestIDFromContext(r.Context())).To(Equal("abc-123"))
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		Expect(rec.Header().Get("X-Request-ID")).To(Equal("abc-123"))
	})
})

var _ = Describe("Recover", func() {
	It("turns a panic into a 500 and logs it", func() {
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))
		handler := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/support", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(logs.String()).To(ContainSubstring("handler panicked"))
	})
})

var _ = Describe("Logging", func() {
	It("logs method, route and status", func() {
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))
		handler := Chain(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) }),
			RequestID(),
			Logging(logger),
		)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/login", nil))

		Expect(rec.Code).To(Equal(http.StatusTeapot))
		Expect(logs.String()).To(ContainSubstring("method=POST"))
		Expect(logs.String()).To(ContainSubstring("route=/v1/login"))
		Expect(logs.String()).To(ContainSubstring("status=418"))
		Expect(logs.String()).To(ContainSubstring("level=WARN"))
	})
})

var _ = Describe("routeLabel", func() {
	It("keeps known routes and folds the rest", func() {
		Expect(routeLabel("/v1/login")).To(Equal("/v1/login"))
		Expect(routeLabel("/v1/login/extra")).To(Equal("/other"))
	})
})
