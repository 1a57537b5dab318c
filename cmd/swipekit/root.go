package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rushteam/swipekit/config"
	_ "github.com/rushteam/swipekit/config/builders"
	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/recommend"
)

var (
	cfgPath      string
	pipelinePath string
	logLevel     string
	outputJSON   bool
)

var rootCmd = &cobra.Command{
	Use:   "swipekit",
	Short: "swipekit - swipe feed recommendation engine",
	Long: `swipekit serves ordered batches of catalog items to a user and learns
from their accept/reject swipes.

Storage is selected with storage.backend (memory, redis or sqlite) in the
config file or SWIPEKIT_STORAGE_BACKEND.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&pipelinePath, "pipeline", "", "Path to YAML selection pipeline definition")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Print results as JSON")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(swipeCmd)
	rootCmd.AddCommand(ackBreakCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(importItemsCmd)
	rootCmd.AddCommand(blockCmd)
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

// engine 是一次命令执行所需的服务与存储
type engine struct {
	cfg     core.Config
	backend *backend
	service *recommend.Service
}

func (e *engine) Close() error {
	return e.backend.Close()
}

func openEngine() (*engine, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logger := newLogger()

	b, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	opts := []recommend.Option{recommend.WithLogger(logger)}
	if b.kv != nil {
		opts = append(opts, recommend.WithBlocklistStore(b.kv))
	}
	if pipelinePath != "" {
		p, err := config.LoadPipeline(pipelinePath)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("load pipeline: %w", err)
		}
		opts = append(opts, recommend.WithPipeline(p))
	}

	svc, err := recommend.NewService(cfg, b.catalog, b.events, b.states, opts...)
	if err != nil {
		b.Close()
		return nil, err
	}
	return &engine{cfg: cfg, backend: b, service: svc}, nil
}

