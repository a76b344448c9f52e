// Copyright © 2023 Meroxa, Inc. & Yalantis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// snowgraph loads tabular Snowflake data into a FalkorDB graph via batched
// UNWIND+MERGE statements, once or on a fixed schedule.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/snowgraph-io/snowgraph/config"
	"github.com/snowgraph-io/snowgraph/graph"
	"github.com/snowgraph-io/snowgraph/metrics"
	"github.com/snowgraph-io/snowgraph/orchestrator"
	"github.com/snowgraph-io/snowgraph/source"
	"github.com/snowgraph-io/snowgraph/state"
)

// logLevelEnv controls log verbosity (debug, info, warn, error).
const logLevelEnv = "SNOWGRAPH_LOG"

// exit codes: 0 clean, 1 config or startup failure, 2 run-level failure
// outside daemon mode.
const (
	exitOK      = 0
	exitStartup = 1
	exitRun     = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath    = pflag.String("config", "", "path to the JSON or YAML config file")
		purgeGraph    = pflag.Bool("purge-graph", false, "purge the entire graph before loading")
		purgeMappings = pflag.StringArray("purge-mapping", nil, "purge only this mapping before loading (repeatable)")
		daemon        = pflag.Bool("daemon", false, "run continuously, syncing at a fixed interval")
		intervalSecs  = pflag.Uint32("interval-secs", 60, "interval in seconds between sync runs in daemon mode")
	)
	pflag.Parse()

	logger := newLogger()

	if *configPath == "" {
		logger.Error().Msg("--config is required")

		return exitStartup
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")

		return exitStartup
	}

	m := metrics.New()
	go func() {
		if err := m.ListenAndServe(metrics.DefaultAddr); err != nil {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := graph.Connect(ctx, graph.Params{
		URI:          cfg.Falkor.URI,
		GraphName:    cfg.Falkor.Graph,
		Auth:         cfg.Falkor.Auth,
		MaxBatchSize: cfg.Falkor.MaxBatchSize(),
		Logger:       logger,
	})
	if err != nil {
		logger.Error().Err(err).Msg("cannot reach the graph store")

		return exitStartup
	}
	defer store.Close(context.Background())

	reader := source.New(cfg.Snowflake, logger)
	defer reader.Close()

	o, err := orchestrator.New(orchestrator.Params{
		Config:  cfg,
		Source:  reader,
		Graph:   store,
		State:   newStateStore(cfg),
		Metrics: m,
		Logger:  logger,
	})
	if err != nil {
		logger.Error().Err(err).Msg("cannot load state")

		return exitStartup
	}

	opts := orchestrator.RunOptions{
		PurgeGraph:    *purgeGraph,
		PurgeMappings: *purgeMappings,
	}

	if *daemon {
		interval := time.Duration(*intervalSecs) * time.Second
		if err := o.RunDaemon(ctx, opts, interval); err != nil {
			logger.Error().Err(err).Msg("daemon stopped")

			return exitRun
		}

		logger.Info().Msg("daemon stopped gracefully")

		return exitOK
	}

	if err := o.RunOnce(ctx, opts); err != nil {
		logger.Error().Err(err).Msg("sync run failed")

		return exitRun
	}

	logger.Info().Msg("load completed successfully")

	return exitOK
}

func newStateStore(cfg *config.Config) orchestrator.StateStore {
	if cfg.State == nil {
		return state.NewFileStore(config.DefaultStateFilePath)
	}

	if cfg.State.Backend == config.StateBackendNone {
		return state.NewDiscard()
	}

	return state.NewFileStore(cfg.State.FilePath)
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if raw := os.Getenv(logLevelEnv); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
