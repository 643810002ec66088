package config

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Defaults", func() {
	It("sets server port 8080 and host 127.0.0.1", func() {
		cfg := Defaults()
		Expect(cfg.Server.Port).To(Equal(8080))
		Expect(cfg.Server.Host).To(Equal("127.0.0.1"))
	})

	It("throttles logins at two per minute without exiting", func() {
		cfg := Defaults()
		Expect(cfg.Throttle.RequestsPerMinute).To(Equal(2))
		Expect(cfg.Throttle.ExitOnAbort).To(BeFalse())
	})
})

var _ = Describe("Load", func() {
	When("loading from a valid file", func() {
		It("overrides defaults with file values", func() {
			content := `
server:
  host: "0.0.0.0"
  port: 9090
  read_timeout: 10s
  write_timeout: 60s
auth:
  users_file: "/tmp/users.txt"
  token_secret: "from-file"
ratelimit:
  requests_per_second: 5
  burst: 10
log:
  level: "debug"
  format: "text"
`
			path := filepath.Join(GinkgoT().TempDir(), "config.yaml")
			Expect(os.WriteFile(path, []byte(content), 0644)).NotTo(HaveOccurred())

			cfg, err := Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.Host).To(Equal("0.0.0.0"))
			Expect(cfg.Server.Port).To(Equal(9090))
			Expect(cfg.Server.WriteTimeout).To(Equal(60 * time.Second))
			Expect(cfg.Auth.UsersFile).To(Equal("/tmp/users.txt"))
			Expect(cfg.Auth.TokenSecret).To(Equal("from-file"))
			Expect(cfg.RateLimit.Burst).To(Equal(10))
			Expect(cfg.Log.Level).To(Equal("debug"))
		})
	})

	When("environment variables are set", func() {
		It("overrides file values with env", func() {
			content := `
server:
  port: 8080
ratelimit:
  requests_per_second: 10
  burst: 20
log:
  level: "info"
  format: "json"
`
			path := filepath.Join(GinkgoT().TempDir(), "config.yaml")
			Expect(os.WriteFile(path, []byte(content), 0644)).NotTo(HaveOccurred())

			os.Setenv("HANDOFF_PORT", "3000")
			os.Setenv("HANDOFF_LOG_LEVEL", "debug")
			defer os.Unsetenv("HANDOFF_PORT")
			defer os.Unsetenv("HANDOFF_LOG_LEVEL")

			cfg, err := Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.Port).To(Equal(3000))
			Expect(cfg.Log.Level).To(Equal("debug"))
		})
	})

	When("HANDOFF_REDIS_ADDR is set", func() {
		It("overrides the stats redis address", func() {
			os.Setenv("HANDOFF_STATS_BACKEND", "redis")
			os.Setenv("HANDOFF_REDIS_ADDR", "192.168.0.9:6379")
			defer os.Unsetenv("HANDOFF_STATS_BACKEND")
			defer os.Unsetenv("HANDOFF_REDIS_ADDR")

			cfg, err := Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Stats.Backend).To(Equal("redis"))
			Expect(cfg.Stats.RedisAddr).To(Equal("192.168.0.9:6379"))
		})
	})

	When("HANDOFF_THROTTLE_EXIT_ON_ABORT is set", func() {
		It("enables exiting on a tripped throttle", func() {
			os.Setenv("HANDOFF_THROTTLE_EXIT_ON_ABORT", "true")
			defer os.Unsetenv("HANDOFF_THROTTLE_EXIT_ON_ABORT")

			cfg, err := Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Throttle.ExitOnAbort).To(BeTrue())
		})
	})

	When("the file does not exist", func() {
		It("returns an error", func() {
			_, err := Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Validation", func() {
	When("config is valid", func() {
		It("returns no error", func() {
			cfg := Defaults()
			Expect(validate(cfg)).NotTo(HaveOccurred())
		})
	})

	When("port is zero", func() {
		It("returns an error", func() {
			cfg := Defaults()
			cfg.Server.Port = 0
			Expect(validate(cfg)).To(HaveOccurred())
		})
	})

	When("port is too high", func() {
		It("returns an error", func() {
			cfg := Defaults()
			cfg.Server.Port = 70000
			Expect(validate(cfg)).To(HaveOccurred())
		})
	})

	When("the throttle allows no logins", func() {
		It("returns an error", func() {
			cfg := Defaults()
			cfg.Throttle.RequestsPerMinute = 0
			Expect(validate(cfg)).To(HaveOccurred())
		})
	})

	When("several fields are invalid", func() {
		It("reports every failure", func() {
			cfg := Defaults()
			cfg.Server.Port = 0
			cfg.Log.Level = "verbose"
			err := validate(cfg)
			Expect(err).To(MatchError(ContainSubstring("server.port")))
			Expect(err).To(MatchError(ContainSubstring("log.level")))
		})
	})

	When("log level is invalid", func() {
		It("returns an error", func() {
			cfg := Defaults()
			cfg.Log.Level = "verbose"
			Expect(validate(cfg)).To(HaveOccurred())
		})
	})

	When("log format is invalid", func() {
		It("returns an error", func() {
			cfg := Defaults()
			cfg.Log.Format = "xml"
			Expect(validate(cfg)).To(HaveOccurred())
		})
	})

	When("rate limit rps is zero", func() {
		It("returns an error", func() {
			cfg := Defaults()
			cfg.RateLimit.RequestsPerSecond = 0
			Expect(validate(cfg)).To(HaveOccurred())
		})
	})

	When("OTel is enabled but endpoint is empty", func() {
		It("returns an error", func() {
			cfg := Defaults()
			cfg.Observability.OTelEnabled = true
			cfg.Observability.OTelEndpoint = ""
			Expect(validate(cfg)).To(HaveOccurred())
		})
	})

	When("cloud_format is invalid", func() {
		It("returns an error", func() {
			cfg := Defaults()
			cfg.Log.CloudFormat = "aws"
			Expect(validate(cfg)).To(HaveOccurred())
		})
	})
})

var _ = Describe("Server Addr", func() {
	It("returns host:port", func() {
		s := Server{Host: "0.0.0.0", Port: 3000}
		Expect(s.Addr()).To(Equal("0.0.0.0:3000"))
	})
})
