// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paychangu-gateway/internal/config"
	payAdapters "paychangu-gateway/internal/infra/adapters/payment"
	"paychangu-gateway/internal/infra/api"
	"paychangu-gateway/internal/infra/logging"
	"paychangu-gateway/internal/infra/metrics"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no redaction)")
	mintTTL := flag.Duration("mint-token", 0, "print an admin bearer token valid for this long and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *mintTTL > 0 {
		tok, err := api.MintAdminToken(cfg.HTTP.AdminKey, *mintTTL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mint token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(tok)
		return
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Gateway ----
	gw, err := payAdapters.NewFromConfig(cfg.PayChangu, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("paychangu gateway")
	}
	logger.Info().
		Str("base_url", cfg.PayChangu.BaseURL).
		Str("currency", cfg.PayChangu.Currency).
		Dur("timeout", cfg.PayChangu.Timeout()).
		Int("operator_prefixes", len(gw.Operators())).
		Str("api_key", logging.Redact(cfg.PayChangu.APIKey, cfg.Runtime.Dev)).
		Msg("paychangu gateway ready")
	if cfg.HTTP.AdminKey == "" {
		logger.Warn().Msg("http.admin_key not set; /v1 routes are unauthenticated")
	}

	// ---- HTTP relay ----
	srv := api.NewServer(gw, cfg.HTTP.AdminKey, cfg.HTTP.RequestTimeout, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http relay listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
