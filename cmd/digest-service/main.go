package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pribylovaa/estate-digest/internal/cache"
	"github.com/pribylovaa/estate-digest/internal/config"
	"github.com/pribylovaa/estate-digest/internal/enrich"
	"github.com/pribylovaa/estate-digest/internal/feed"
	"github.com/pribylovaa/estate-digest/internal/fetcher"
	dhttp "github.com/pribylovaa/estate-digest/internal/http"
	"github.com/pribylovaa/estate-digest/internal/llm"
	"github.com/pribylovaa/estate-digest/internal/rates"
	"github.com/pribylovaa/estate-digest/internal/service"
	"github.com/pribylovaa/estate-digest/internal/sources"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting digest-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	httpClient := fetcher.New()

	deps := service.Deps{
		Registry: sources.New(cfg.Feeds),
		Fetcher:  httpClient,
		Parser:   feed.NewParser(),
		Enricher: enrich.New(httpClient, cfg.Enrich.Timeout, cfg.Enrich.Concurrency),
		Rates:    rates.New(httpClient, cfg.Rates),
	}

	// Генератор опционален: без ключа конвейер работает на фолбэках.
	if cfg.LLM.APIKey != "" {
		gen, err := llm.New(cfg.LLM)
		if err != nil {
			log.Error("llm_init_failed", slog.String("err", err.Error()))
			os.Exit(1)
		}

		deps.Generator = gen
		log.Info("llm_enabled", slog.String("model", cfg.LLM.Model))
	} else {
		log.Warn("llm_disabled_no_api_key")
	}

	// Кэш: redis при заданном адресе, иначе память процесса.
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedis(cfg.Cache.RedisURL, cfg.Cache.Prefix, nil)
		if err != nil {
			log.Error("redis_init_failed", slog.String("err", err.Error()))
			os.Exit(1)
		}

		defer func() {
			if cerr := rc.Close(); cerr != nil {
				log.Warn("redis_close_failed", slog.String("err", cerr.Error()))
			}
		}()

		deps.Cache = rc
		log.Info("cache_backend", slog.String("kind", "redis"))
	} else {
		deps.Cache = cache.NewMemory(nil)
		log.Info("cache_backend", slog.String("kind", "memory"))
	}

	svc := service.New(*cfg, deps)

	apiHandler := dhttp.NewRouter(svc, dhttp.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Request,
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/", apiHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("service_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
