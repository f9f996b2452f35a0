// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/blogicum/blogicum/internal/api"
	"github.com/blogicum/blogicum/internal/config"
	"github.com/blogicum/blogicum/internal/feedcache"
	"github.com/blogicum/blogicum/internal/health"
	"github.com/blogicum/blogicum/internal/images"
	xlog "github.com/blogicum/blogicum/internal/log"
	"github.com/blogicum/blogicum/internal/persistence/sqlite"
	"github.com/blogicum/blogicum/internal/store"
	"github.com/blogicum/blogicum/internal/telemetry"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Safe logging defaults until the configuration is loaded.
	xlog.Configure(xlog.Config{
		Level:   "info",
		Service: "blogicum",
		Version: version,
	})
	logger := xlog.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --config wins; otherwise pick up ${BLOGICUM_DATA}/config.yaml if present.
	effectiveConfigPath := strings.TrimSpace(*configPath)
	if effectiveConfigPath == "" {
		dataDir := strings.TrimSpace(config.ParseString("BLOGICUM_DATA", ""))
		if dataDir != "" {
			autoPath := filepath.Join(dataDir, "config.yaml")
			if _, err := os.Stat(autoPath); err == nil {
				effectiveConfigPath = autoPath
			}
		}
	}

	cfg, err := config.Load(effectiveConfigPath)
	if err != nil {
		logger.Fatal().Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	xlog.Configure(xlog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: version,
	})

	holder := config.NewHolder(cfg, effectiveConfigPath)
	if effectiveConfigPath != "" {
		if err := holder.StartWatcher(ctx); err != nil {
			logger.Warn().Err(err).Msg("config hot reload unavailable")
		}
		defer holder.Stop()
	}

	tracer, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: version,
		ExporterType:   cfg.Tracing.ExporterType,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	// Refuse to serve from a structurally damaged database. Skipped on first
	// boot when the file does not exist yet.
	if _, statErr := os.Stat(cfg.DBPath); statErr == nil {
		issues, err := sqlite.VerifyIntegrity(cfg.DBPath, "quick")
		if err != nil {
			logger.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("database integrity check could not run")
		}
		if len(issues) > 0 {
			logger.Fatal().Strs("issues", issues).Str("db_path", cfg.DBPath).Msg("database is corrupted")
		}
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("failed to open database")
	}
	defer func() { _ = st.Close() }()

	img, err := images.NewStore(cfg.ImagesDir, cfg.MaxImageBytes, xlog.WithComponent("images"))
	if err != nil {
		logger.Fatal().Err(err).Str("images_dir", cfg.ImagesDir).Msg("failed to prepare image storage")
	}

	cache, err := feedcache.New(cfg.Redis, xlog.WithComponent("feedcache"))
	if err != nil {
		logger.Fatal().Err(err).Str("redis_addr", cfg.Redis.Addr).Msg("failed to connect to Redis")
	}
	defer func() { _ = cache.Close() }()

	hm := health.NewManager(version)
	hm.RegisterChecker(&health.PingChecker{ComponentName: "database", PingFn: st.Ping})
	if cache != nil {
		hm.RegisterChecker(&health.PingChecker{ComponentName: "feedcache", PingFn: cache.Ping})
	}

	srv := api.New(holder, st, img, cache, hm)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	// Dedicated metrics listener, when configured.
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	// Expired sessions pile up silently; sweep them hourly.
	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				purgeCtx, cancel := context.WithTimeout(gctx, 30*time.Second)
				n, err := st.PurgeExpiredSessions(purgeCtx)
				cancel()
				if err != nil {
					logger.Warn().Err(err).Msg("session purge failed")
				} else if n > 0 {
					logger.Debug().Int64("purged", n).Msg("expired sessions removed")
				}
			}
		}
	})

	// Shutdown on signal or on the first component failure.
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("service terminated")
	}
	logger.Info().Msg("service stopped")
}
