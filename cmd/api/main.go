// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	httpin "flowify/internal/adapters/in/http"
	"flowify/internal/adapters/in/http/middleware"
	appcfg "flowify/internal/infra/config"
	"flowify/internal/infra/logging"
	"flowify/internal/platform/di"
)

func main() {
	ctx := context.Background()

	cfg := appcfg.Load()
	logging.Init(cfg.LogLevel, cfg.IsProduction())

	// ─────────────────────────────────────────────────────────────
	// Lightweight healthz first so PORT is LISTENed quickly
	// ─────────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// ─────────────────────────────────────────────────────────────
	// DI container & heavy deps; keep /healthz even on failure
	// ─────────────────────────────────────────────────────────────
	var cont *di.Container
	if c, err := di.NewContainerWithConfig(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("[boot] di init failed (serving /healthz only)")
	} else {
		cont = c
		defer cont.Close()

		deps := cont.RouterDeps()
		if deps.Auth == nil {
			log.Warn().Msg("[boot] RouterDeps.Auth is NIL (/api/ will return 503)")
		}
		mux.Handle("/", httpin.NewRouter(deps))

		cont.Scheduler.Start()
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	// Global wrappers (covers /healthz and app routes)
	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORSAllowOrigin)(handler)
	handler = middleware.RequestLog(handler)
	handler = middleware.Recover(handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─────────────────────────────────────────────────────────────
	// Graceful shutdown for Cloud Run
	// ─────────────────────────────────────────────────────────────
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c
		log.Info().Str("signal", sig.String()).Msg("[boot] shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("[boot] server shutdown error")
		}
		close(idleConnsClosed)
	}()

	log.Info().Str("port", port).Str("env", cfg.AppEnv).Msg("[boot] listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("[boot] server error")
	}

	<-idleConnsClosed
	log.Info().Msg("[boot] server stopped")
}
