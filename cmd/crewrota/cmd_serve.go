/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/crewrota/internal/server"
	"github.com/friendsincode/crewrota/internal/telemetry"
	"github.com/friendsincode/crewrota/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the crewrota HTTP API",
	Long:  "Start the HTTP planning API and the Prometheus metrics listener",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(false); err != nil {
		return err
	}

	logger.Info().Str("version", version.Version).Msg("crewrota starting")

	tracerProvider, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName:    version.ServiceName,
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}()

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	serveErr := srv.ListenAndServe(ctx, 10*time.Second)

	if err := srv.Close(); err != nil {
		logger.Error().Err(err).Msg("shutdown cleanup failed")
	}
	if serveErr != nil {
		return fmt.Errorf("serve: %w", serveErr)
	}

	logger.Info().Msg("crewrota stopped")
	return nil
}
