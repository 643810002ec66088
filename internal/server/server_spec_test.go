package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/menezmethod/handoff/internal/auth"
	"github.com/menezmethod/handoff/internal/config"
	"github.com/menezmethod/handoff/internal/middleware"
	"github.com/menezmethod/handoff/internal/support"
)

var _ = Describe("Routes", func() {
	var ts *httptest.Server

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		store := auth.NewStore(bcrypt.MinCost)
		Expect(store.Register("user@example.com", "user_pass")).To(Succeed())
		roles := middleware.NewRoleCheck()
		head, err := middleware.Chain(middleware.NewThrottling(100, nil), middleware.NewUserExists(store), roles)
		Expect(err).NotTo(HaveOccurred())
		srv := auth.NewServer(store, logger)
		srv.SetMiddleware(head)

		tokens, err := auth.NewTokenIssuer("server-secret", "handoff", time.Hour)
		Expect(err).NotTo(HaveOccurred())

		hs := New(config.Defaults(), Deps{
			Auth:   srv,
			Tokens: tokens,
			Roles:  roles,
			Desk:   support.NewDesk(support.DefaultChain(), nil, logger),
		}, logger)
		ts = httptest.NewServer(hs.Handler)
	})

	AfterEach(func() { ts.Close() })

	It("serves health, readiness, version and metrics", func() {
		for _, path := range []string{"/health", "/health/ready", "/version", "/metrics"} {
			resp, err := http.Get(ts.URL + path)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK), path)
		}
	})

	It("logs in and opens a session", func() {
		resp, err := http.Post(ts.URL+"/v1/login", "application/json",
			strings.NewReader(`{"email":"user@example.com","password":"user_pass"}`))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get("X-Request-ID")).NotTo(BeEmpty())

		var body struct {
			Token string `json:"token"`
		}
		Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())

		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/session", nil)
		req.Header.Set("Authorization", "Bearer "+body.Token)
		sresp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer sresp.Body.Close()
		Expect(sresp.StatusCode).To(Equal(http.StatusOK))
	})

	It("routes support requests", func() {
		resp, err := http.Post(ts.URL+"/v1/support", "application/json",
			strings.NewReader(`{"type":"complaint","content":"Unsatisfactory service"}`))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		body, _ := io.ReadAll(resp.Body)
		Expect(string(body)).To(ContainSubstring("ComplaintsHandler: handling complaint: Unsatisfactory service"))
	})

	It("rejects wrong methods", func() {
		resp, err := http.Get(ts.URL + "/v1/login")
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
	})
})
