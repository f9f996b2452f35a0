// SPDX-License-Identifier: MIT

// Package api implements the JSON HTTP interface of the blog service.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/blogicum/blogicum/internal/auth"
	"github.com/blogicum/blogicum/internal/config"
	"github.com/blogicum/blogicum/internal/feedcache"
	"github.com/blogicum/blogicum/internal/health"
	"github.com/blogicum/blogicum/internal/images"
	"github.com/blogicum/blogicum/internal/log"
	"github.com/blogicum/blogicum/internal/store"
)

// Server holds the HTTP layer dependencies.
type Server struct {
	cfg    *config.Holder
	store  *store.Store
	images *images.Store
	cache  *feedcache.Cache
	health *health.Manager
	logger zerolog.Logger

	logins *loginLimiter

	// dummyHash is compared against when a login names an unknown user, so
	// the response takes as long as a real password check.
	dummyHash string

	// now is swappable for tests that exercise time-based visibility.
	now func() time.Time

	httpSrv *http.Server
}

// New wires the HTTP server. The feed cache may be nil (disabled).
func New(cfg *config.Holder, st *store.Store, img *images.Store, cache *feedcache.Cache, hm *health.Manager) *Server {
	current := cfg.Current()
	dummyHash, _ := auth.HashPassword(loginTimingPad, current.BcryptCost)
	s := &Server{
		cfg:       cfg,
		store:     st,
		images:    img,
		cache:     cache,
		health:    hm,
		logger:    log.WithComponent("api"),
		logins:    newLoginLimiter(rate.Limit(current.LoginRatePerIP), current.LoginBurst),
		dummyHash: dummyHash,
		now:       time.Now,
	}
	s.httpSrv = &http.Server{
		Addr:              current.ListenAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Pick up the dynamic settings when the config file is reloaded.
	updates := make(chan config.AppConfig, 1)
	cfg.RegisterListener(updates)
	go func() {
		for next := range updates {
			s.applyConfig(next)
		}
	}()

	return s
}

// applyConfig adjusts the settings that follow a config reload. The listener
// address and the global request limit stay fixed until restart; page size,
// session TTL and image limits are read from the holder per request.
func (s *Server) applyConfig(next config.AppConfig) {
	s.logins.setLimit(rate.Limit(next.LoginRatePerIP), next.LoginBurst)
	s.logger.Info().
		Float64("login_rate_per_ip", next.LoginRatePerIP).
		Int("login_burst", next.LoginBurst).
		Msg("dynamic settings applied")
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpSrv.Addr).Msg("HTTP server listening")
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("HTTP server shutting down")
	return s.httpSrv.Shutdown(ctx)
}

// pageSize returns the configured feed page size.
func (s *Server) pageSize() int {
	return s.cfg.Current().PageSize
}

// loginLimiter throttles login attempts per client IP to slow down
// credential stuffing. Limiters for idle IPs are dropped opportunistically.
type loginLimiter struct {
	mu    sync.Mutex
	perIP map[string]*rate.Limiter
	rate  rate.Limit
	burst int
}

func newLoginLimiter(r rate.Limit, burst int) *loginLimiter {
	if burst < 1 {
		burst = 1
	}
	return &loginLimiter{
		perIP: make(map[string]*rate.Limiter),
		rate:  r,
		burst: burst,
	}
}

// setLimit replaces the rate; existing per-IP limiters are dropped because
// they carry the old rate.
func (l *loginLimiter) setLimit(r rate.Limit, burst int) {
	if burst < 1 {
		burst = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if r == l.rate && burst == l.burst {
		return
	}
	l.rate = r
	l.burst = burst
	l.perIP = make(map[string]*rate.Limiter)
}

func (l *loginLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rate <= 0 {
		return true
	}

	lim, ok := l.perIP[ip]
	if !ok {
		// Keep the map bounded under address churn.
		if len(l.perIP) > 10000 {
			l.perIP = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.rate, l.burst)
		l.perIP[ip] = lim
	}
	return lim.Allow()
}
