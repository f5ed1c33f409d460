package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/crewrota/internal/cache"
	"github.com/friendsincode/crewrota/internal/config"
	"github.com/friendsincode/crewrota/internal/logging"
	"github.com/friendsincode/crewrota/internal/planner"
	"github.com/friendsincode/crewrota/internal/version"
)

var (
	logger  zerolog.Logger
	cfg     *config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "crewrota",
	Short:         "crewrota - three-worker rotation planner",
	Long:          "crewrota builds day-by-day rotation timetables for one anchor and two flexible workers so that exactly two are on duty every day once coverage starts.",
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log planner activity to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it). One-shot
// commands only log warnings unless --verbose is given.
func loadConfig(oneShot bool) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment, cfg.LogFormat)
	if oneShot && !verbose {
		logger = logger.Level(zerolog.WarnLevel)
	}
	for _, warn := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(warn)
	}
	return nil
}

// newPlanner builds the planner service from the loaded config, attaching
// the Redis cache when enabled. The returned func releases the cache.
func newPlanner() (*planner.Service, func()) {
	svc := planner.New(cfg.SolverConfig(), cfg.SolverTimeout, logger)
	if !cfg.CacheEnabled {
		return svc, func() {}
	}

	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisAddr = cfg.RedisAddr
	cacheCfg.RedisPassword = cfg.RedisPassword
	cacheCfg.RedisDB = cfg.RedisDB
	if cfg.CacheTTL > 0 {
		cacheCfg.TTL = cfg.CacheTTL
	}
	resultCache, err := cache.New(cacheCfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("cache initialization failed, continuing without cache")
		return svc, func() {}
	}
	svc.SetCache(resultCache)
	return svc, func() { _ = resultCache.Close() }
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
