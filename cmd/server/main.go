// Package main is the entrypoint for the portrait booth API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kioskbooth/portraits/internal/admission"
	"github.com/kioskbooth/portraits/internal/api"
	"github.com/kioskbooth/portraits/internal/api/handler"
	"github.com/kioskbooth/portraits/internal/api/response"
	"github.com/kioskbooth/portraits/internal/botcheck"
	"github.com/kioskbooth/portraits/internal/config"
	"github.com/kioskbooth/portraits/internal/email"
	"github.com/kioskbooth/portraits/internal/generation"
	"github.com/kioskbooth/portraits/internal/imagegen"
	"github.com/kioskbooth/portraits/internal/storage"
	"github.com/kioskbooth/portraits/internal/store"
)

const (
	shutdownTimeout = 30 * time.Second
	rateLimitWindow = time.Minute
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"generation_provider", cfg.Generation.Provider,
		"email_provider", cfg.Email.Provider,
		"env", cfg.Server.Env,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Asset storage
	assets, err := storage.NewFileStore(cfg.Storage.BasePath, cfg.Storage.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("create asset storage: %w", err)
	}
	slog.Info("asset storage ready", "path", assets.BasePath())

	// 3. Image generator
	generator, err := imagegen.NewGenerator(cfg)
	if err != nil {
		return fmt.Errorf("create image generator: %w", err)
	}
	slog.Info("image generator initialized", "provider", generator.Name())

	// 4. Email sender
	sender, err := email.NewSender(cfg.Email)
	if err != nil {
		return fmt.Errorf("create email sender: %w", err)
	}
	slog.Info("email sender initialized", "provider", sender.Name())

	// 5. Job registry and admission checks
	jobs := store.NewMemoryStore()
	limiter := admission.NewRateLimiter(rateLimitWindow)
	go limiter.Run(ctx)

	verifier := botcheck.NewStaticVerifier(cfg.BotCheck.Token, cfg.Server.Development())
	gate := admission.NewGate(
		jobs,
		admission.NewIdempotencyIndex(),
		limiter,
		admission.NewDailyCounter(cfg.Generation.DailyMaxGenerations),
		verifier,
		cfg.Generation.RateLimitPerMinute,
	)

	// 6. Pipeline service
	svc := generation.NewService(generation.Config{
		Jobs:       jobs,
		Gate:       gate,
		Generator:  generator,
		Assets:     assets,
		Sender:     sender,
		Verifier:   verifier,
		Limiter:    limiter,
		EmailLimit: cfg.Generation.EmailRateLimitPerMinute,
	})

	// 7. Build router with dependencies
	deps := api.Dependencies{
		HealthHandler:   healthHandler(assets),
		GenerateHandler: handler.NewGenerateHandler(svc),
		StatusHandler:   handler.NewStatusHandler(svc),
		EmailHandler:    handler.NewEmailHandler(svc),
		AssetsDir:       assets.BasePath(),
	}
	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks that asset storage is writable.
func healthHandler(assets storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"storage": "ok",
		}

		if _, err := assets.Upload(r.Context(), ".healthcheck", []byte("ok")); err != nil {
			checks["storage"] = "degraded"
		}

		if checks["storage"] != "ok" {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
