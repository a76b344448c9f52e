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

//go:generate mockgen -package mock -destination mock/orchestrator.go . SourceReader,StateStore,GraphStore

// Package orchestrator drives the synchronization engine: it sequences
// mappings, coordinates purges, advances watermarks and runs the daemon loop.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/snowgraph-io/snowgraph/config"
	"github.com/snowgraph-io/snowgraph/metrics"
	"github.com/snowgraph-io/snowgraph/planner"
	"github.com/snowgraph-io/snowgraph/schema"
	"github.com/snowgraph-io/snowgraph/source"
	"github.com/snowgraph-io/snowgraph/state"
	"github.com/snowgraph-io/snowgraph/transform"
)

// ErrRunFailed reports that at least one mapping of a run failed. The run's
// remaining mappings still executed.
var ErrRunFailed = errors.New("run failed")

// SourceReader is the source adapter interface needed for the [Orchestrator].
type SourceReader interface {
	Open(ctx context.Context, plan planner.QueryPlan) (source.RowStream, error)
}

// StateStore is the watermark store interface needed for the [Orchestrator].
type StateStore interface {
	Load() (map[string]state.Record, error)
	Save(records map[string]state.Record) error
}

// GraphStore is the sink interface needed for the [Orchestrator].
type GraphStore interface {
	UpsertNodes(ctx context.Context, mapping *config.NodeMapping, batch []schema.Node) error
	DeleteNodes(ctx context.Context, mapping *config.NodeMapping, batch []schema.Node) error
	UpsertEdges(ctx context.Context, mapping *config.EdgeMapping, fromLabels, toLabels []string, batch []schema.Edge) error
	DeleteEdges(ctx context.Context, mapping *config.EdgeMapping, fromLabels, toLabels []string, batch []schema.Edge) error
	EnsureNodeIndexes(ctx context.Context, mappings []config.Mapping)
	PurgeAll(ctx context.Context) error
	PurgeNodeMapping(ctx context.Context, mapping *config.NodeMapping) error
	PurgeEdgeMapping(ctx context.Context, mapping *config.EdgeMapping, fromLabels, toLabels []string) error
}

// Orchestrator owns the watermark map and runs mappings in declaration order.
type Orchestrator struct {
	cfg     *config.Config
	source  SourceReader
	graph   GraphStore
	state   StateStore
	metrics *metrics.Metrics
	logger  zerolog.Logger

	nodesByName map[string]*config.NodeMapping
	watermarks  map[string]state.Record
}

// Params holds incoming params for the [New] function.
type Params struct {
	Config  *config.Config
	Source  SourceReader
	Graph   GraphStore
	State   StateStore
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// RunOptions are the operator-driven purge switches for a single run.
type RunOptions struct {
	PurgeGraph    bool
	PurgeMappings []string
}

// New creates a new instance of the [Orchestrator] and loads the persisted
// watermarks. A corrupt state file fails here, before anything runs.
func New(params Params) (*Orchestrator, error) {
	watermarks, err := params.State.Load()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	return &Orchestrator{
		cfg:         params.Config,
		source:      params.Source,
		graph:       params.Graph,
		state:       params.State,
		metrics:     params.Metrics,
		logger:      params.Logger,
		nodesByName: params.Config.NodeMappingsByName(),
		watermarks:  watermarks,
	}, nil
}

// RunOnce executes one synchronization pass over all mappings in declaration
// order. A failed mapping is counted and the pass continues with the next
// one; RunOnce then returns [ErrRunFailed].
func (o *Orchestrator) RunOnce(ctx context.Context, opts RunOptions) error {
	o.metrics.Runs.Inc()

	if err := o.purge(ctx, opts); err != nil {
		o.metrics.FailedRuns.Inc()

		return err
	}

	o.graph.EnsureNodeIndexes(ctx, o.cfg.Mappings)

	failed := false

	for _, mapping := range o.cfg.Mappings {
		name := mapping.Common().Name

		if err := o.runMapping(ctx, mapping); err != nil {
			if ctx.Err() != nil {
				// shutdown mid-run: abort without advancing state and
				// without counting the interrupted mapping as failed
				return ctx.Err()
			}

			o.logger.Error().Str("mapping", name).Err(err).Msg("mapping run failed")
			o.metrics.MappingFailedRuns.WithLabelValues(name).Inc()
			failed = true
		}
	}

	if failed {
		o.metrics.FailedRuns.Inc()

		return ErrRunFailed
	}

	return nil
}

// RunDaemon performs one initial run honoring the purge options, then repeats
// at the given interval until the context is canceled. No error class
// terminates the loop.
func (o *Orchestrator) RunDaemon(ctx context.Context, opts RunOptions, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runOpts := opts

	for {
		o.logger.Info().Msg("starting sync run")

		if err := o.RunOnce(ctx, runOpts); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			o.logger.Error().Err(err).Msg("sync run failed")
		}

		// purge options apply to the first iteration only
		runOpts = RunOptions{}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (o *Orchestrator) purge(ctx context.Context, opts RunOptions) error {
	if opts.PurgeGraph {
		o.logger.Warn().Msg("purging entire graph prior to load")

		if err := o.graph.PurgeAll(ctx); err != nil {
			return fmt.Errorf("purge graph: %w", err)
		}

		return nil
	}

	for _, name := range opts.PurgeMappings {
		if err := o.purgeMapping(ctx, name); err != nil {
			return err
		}
	}

	return nil
}

func (o *Orchestrator) purgeMapping(ctx context.Context, name string) error {
	mapping := o.cfg.MappingByName(name)
	if mapping == nil {
		o.logger.Warn().Str("mapping", name).Msg("requested purge for unknown mapping")

		return nil
	}

	o.logger.Warn().Str("mapping", name).Msg("purging mapping")

	switch typed := mapping.(type) {
	case *config.NodeMapping:
		if err := o.graph.PurgeNodeMapping(ctx, typed); err != nil {
			return fmt.Errorf("purge mapping %q: %w", name, err)
		}

	case *config.EdgeMapping:
		err := o.graph.PurgeEdgeMapping(ctx, typed,
			o.endpointLabels(typed.From), o.endpointLabels(typed.To))
		if err != nil {
			return fmt.Errorf("purge mapping %q: %w", name, err)
		}
	}

	return nil
}

// endpointLabels resolves the labels an edge endpoint matches against:
// the override when present, the endpoint node mapping's labels otherwise.
func (o *Orchestrator) endpointLabels(endpoint config.EdgeEndpoint) []string {
	if len(endpoint.LabelOverride) > 0 {
		return endpoint.LabelOverride
	}

	return o.nodesByName[endpoint.NodeMapping].Labels
}

func (o *Orchestrator) runMapping(ctx context.Context, mapping config.Mapping) error {
	name := mapping.Common().Name
	o.metrics.MappingRuns.WithLabelValues(name).Inc()

	rec := o.watermarks[name]

	plan, err := planner.Plan(mapping, rec)
	if err != nil {
		return fmt.Errorf("plan query: %w", err)
	}

	o.logger.Info().
		Str("mapping", name).
		Str("mode", string(plan.Mode)).
		Msg("processing mapping")

	stream, err := o.source.Open(ctx, plan)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer stream.Close()

	acc := transform.NewWatermarkAccumulator(plan.UpdatedAtColumn)

	switch typed := mapping.(type) {
	case *config.NodeMapping:
		err = o.syncNodes(ctx, typed, stream, acc)
	case *config.EdgeMapping:
		err = o.syncEdges(ctx, typed, stream, acc)
	}
	if err != nil {
		return err
	}

	return o.advanceWatermark(name, mapping, plan, acc)
}

// advanceWatermark folds the accumulated max into the stored record, keeping
// it monotonic, flips initial_full_load_done after the requested full run,
// and persists the state map. Nothing is written when the record is unchanged.
func (o *Orchestrator) advanceWatermark(
	name string,
	mapping config.Mapping,
	plan planner.QueryPlan,
	acc *transform.WatermarkAccumulator,
) error {
	rec, existed := o.watermarks[name]
	next := rec

	if max := acc.Max(); max != "" && max > rec.LastUpdatedAt {
		next.LastUpdatedAt = max
	}

	delta := mapping.Common().Delta
	if delta != nil && delta.InitialFullLoad &&
		!rec.InitialFullLoadDone && plan.Mode == planner.RunModeFull {
		next.InitialFullLoadDone = true
	}

	if next == rec {
		// nothing observed and nothing to flip; don't create empty records
		return nil
	}

	o.watermarks[name] = next

	if err := o.state.Save(o.watermarks); err != nil {
		// keep memory consistent with disk so a later run re-ships the rows
		if existed {
			o.watermarks[name] = rec
		} else {
			delete(o.watermarks, name)
		}

		return fmt.Errorf("save state: %w", err)
	}

	o.logger.Info().
		Str("mapping", name).
		Str("watermark", next.LastUpdatedAt).
		Msg("advanced watermark")

	return nil
}

// syncNodes pipelines the row stream into batched upserts with one in-flight
// batch, collecting deletes and flushing them after every upsert landed.
func (o *Orchestrator) syncNodes(
	ctx context.Context,
	mapping *config.NodeMapping,
	stream source.RowStream,
	acc *transform.WatermarkAccumulator,
) error {
	name := mapping.CommonFields.Name
	transformer := transform.NewNode(mapping)
	batchSize := o.cfg.Falkor.MaxBatchSize()

	var deletes []schema.Node

	group, groupCtx := errgroup.WithContext(ctx)
	batches := make(chan []schema.Node, 1)

	group.Go(func() error {
		defer close(batches)

		var upserts []schema.Node

		flush := func() error {
			if len(upserts) == 0 {
				return nil
			}

			select {
			case batches <- upserts:
				upserts = nil

				return nil
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
		}

		for stream.Next(groupCtx) {
			row := stream.Row()
			o.countFetched(name)
			acc.Observe(row)

			node, action := transformer.Apply(row)
			switch action {
			case transform.ActionUpsert:
				upserts = append(upserts, node)
				if len(upserts) >= batchSize {
					if err := flush(); err != nil {
						return err
					}
				}

			case transform.ActionDelete:
				deletes = append(deletes, node)

			case transform.ActionSkip:
			}
		}

		if err := stream.Err(); err != nil {
			return fmt.Errorf("read rows: %w", err)
		}

		return flush()
	})

	group.Go(func() error {
		for batch := range batches {
			if err := o.graph.UpsertNodes(groupCtx, mapping, batch); err != nil {
				return fmt.Errorf("upsert nodes: %w", err)
			}
			o.countWritten(name, len(batch))
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	if dropped := transformer.Dropped(); dropped > 0 {
		o.logger.Warn().Str("mapping", name).Int("rows", dropped).Msg("dropped rows with null keys")
	}

	if len(deletes) > 0 {
		if err := o.graph.DeleteNodes(ctx, mapping, deletes); err != nil {
			return fmt.Errorf("delete nodes: %w", err)
		}
		o.countDeleted(name, len(deletes))
	}

	return nil
}

// syncEdges is the edge counterpart of syncNodes.
func (o *Orchestrator) syncEdges(
	ctx context.Context,
	mapping *config.EdgeMapping,
	stream source.RowStream,
	acc *transform.WatermarkAccumulator,
) error {
	name := mapping.CommonFields.Name
	transformer := transform.NewEdge(mapping)
	batchSize := o.cfg.Falkor.MaxBatchSize()

	fromLabels := o.endpointLabels(mapping.From)
	toLabels := o.endpointLabels(mapping.To)

	var deletes []schema.Edge

	group, groupCtx := errgroup.WithContext(ctx)
	batches := make(chan []schema.Edge, 1)

	group.Go(func() error {
		defer close(batches)

		var upserts []schema.Edge

		flush := func() error {
			if len(upserts) == 0 {
				return nil
			}

			select {
			case batches <- upserts:
				upserts = nil

				return nil
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
		}

		for stream.Next(groupCtx) {
			row := stream.Row()
			o.countFetched(name)
			acc.Observe(row)

			edge, action := transformer.Apply(row)
			switch action {
			case transform.ActionUpsert:
				upserts = append(upserts, edge)
				if len(upserts) >= batchSize {
					if err := flush(); err != nil {
						return err
					}
				}

			case transform.ActionDelete:
				deletes = append(deletes, edge)

			case transform.ActionSkip:
			}
		}

		if err := stream.Err(); err != nil {
			return fmt.Errorf("read rows: %w", err)
		}

		return flush()
	})

	group.Go(func() error {
		for batch := range batches {
			if err := o.graph.UpsertEdges(groupCtx, mapping, fromLabels, toLabels, batch); err != nil {
				return fmt.Errorf("upsert edges: %w", err)
			}
			o.countWritten(name, len(batch))
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	if dropped := transformer.Dropped(); dropped > 0 {
		o.logger.Warn().Str("mapping", name).Int("rows", dropped).Msg("dropped rows with null keys")
	}

	if len(deletes) > 0 {
		if err := o.graph.DeleteEdges(ctx, mapping, fromLabels, toLabels, deletes); err != nil {
			return fmt.Errorf("delete edges: %w", err)
		}
		o.countDeleted(name, len(deletes))
	}

	return nil
}

func (o *Orchestrator) countFetched(name string) {
	o.metrics.RowsFetched.Inc()
	o.metrics.MappingRowsFetched.WithLabelValues(name).Inc()
}

func (o *Orchestrator) countWritten(name string, n int) {
	o.metrics.RowsWritten.Add(float64(n))
	o.metrics.MappingRowsWritten.WithLabelValues(name).Add(float64(n))
}

func (o *Orchestrator) countDeleted(name string, n int) {
	o.metrics.RowsDeleted.Add(float64(n))
	o.metrics.MappingRowsDeleted.WithLabelValues(name).Add(float64(n))
}
