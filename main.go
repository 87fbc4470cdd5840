/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       Entry point with graceful shutdown, trimmed from the
             teacher's main.go to this core's actual collaborators:
             config → logger → signed-transport pool → STS cache →
             httpapi server → router → http.Server. No Redis,
             analytics pipeline, OpenTelemetry tracer, provider
             registry, health poller, or model syncer — this core
             has exactly one upstream (AWS) reached with per-request
             credentials rather than a registry of configured
             third-party providers.
Root Cause:  Sprint task parity with the teacher's graceful-
             shutdown entry point, scoped to what this core wires.
Context:     The only goroutines started are the HTTP server and
             its shutdown signal listener.
Suitability: L3 model for graceful shutdown and system wiring.
──────────────────────────────────────────────────────────────
*/

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlfredDev/alfred-bedrock-core/internal/config"
	"github.com/AlfredDev/alfred-bedrock-core/internal/httpapi"
	"github.com/AlfredDev/alfred-bedrock-core/internal/signer"
	"github.com/AlfredDev/alfred-bedrock-core/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg)

	log.Info().Str("env", cfg.Env).Msg("alfred bedrock core starting")

	pool := signer.NewTransportPool(signer.DefaultPoolConfig())
	sts := signer.NewAssumeRoleCache(pool.Client(signer.ServiceBedrock, cfg.DefaultUpstreamTimeout))

	server := httpapi.NewServer(pool, sts, cfg, log)
	r := httpapi.NewRouter(server)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.DefaultUpstreamTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-done
	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GracefulTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		log.Info().Msg("stopped gracefully")
	}
}

