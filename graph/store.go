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

// Package graph implements the batched Cypher sink against a
// FalkorDB/Neo4j-compatible store.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"

	"github.com/snowgraph-io/snowgraph/config"
	"github.com/snowgraph-io/snowgraph/schema"
)

// defaultMaxRetries bounds how often a failed batch statement is retried.
const defaultMaxRetries = 3

// Store issues batched parameterized statements against one graph.
// The driver is exclusively owned by the store.
type Store struct {
	driver       neo4j.DriverWithContext
	graphName    string
	maxBatchSize int
	maxRetries   int
	logger       zerolog.Logger
}

// Params holds incoming params for the [Connect] function.
type Params struct {
	URI          string
	GraphName    string
	Auth         config.AuthConfig
	MaxBatchSize int
	Logger       zerolog.Logger
}

// Connect creates a driver, verifies connectivity and returns a new instance
// of the [Store].
func Connect(ctx context.Context, params Params) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(params.URI, params.Auth.AuthToken())
	if err != nil {
		return nil, fmt.Errorf("create graph driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("ping graph store: %w", err)
	}

	return &Store{
		driver:       driver,
		graphName:    params.GraphName,
		maxBatchSize: params.MaxBatchSize,
		maxRetries:   defaultMaxRetries,
		logger:       params.Logger,
	}, nil
}

// Close gracefully closes the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	if err := s.driver.Close(ctx); err != nil {
		return fmt.Errorf("close graph driver: %w", err)
	}

	return nil
}

// UpsertNodes merges a batch of nodes, splitting it at the configured batch size.
func (s *Store) UpsertNodes(ctx context.Context, mapping *config.NodeMapping, batch []schema.Node) error {
	query := upsertNodesQuery(mapping)

	for _, part := range splitBatch(batch, s.maxBatchSize) {
		rows := make([]map[string]any, len(part))
		for i, node := range part {
			rows[i] = map[string]any{"key": node.Key, "props": node.Props}
		}

		if err := s.executeWrite(ctx, query, map[string]any{"rows": rows}); err != nil {
			return fmt.Errorf("upsert nodes: %w", err)
		}
	}

	return nil
}

// DeleteNodes detach-deletes a batch of nodes by key.
func (s *Store) DeleteNodes(ctx context.Context, mapping *config.NodeMapping, batch []schema.Node) error {
	query := deleteNodesQuery(mapping)

	for _, part := range splitBatch(batch, s.maxBatchSize) {
		rows := make([]map[string]any, len(part))
		for i, node := range part {
			rows[i] = map[string]any{"key": node.Key}
		}

		if err := s.executeWrite(ctx, query, map[string]any{"rows": rows}); err != nil {
			return fmt.Errorf("delete nodes: %w", err)
		}
	}

	return nil
}

// UpsertEdges merges a batch of edges between the resolved endpoint labels.
// Endpoints that don't match an existing node leave the batch item a no-op.
func (s *Store) UpsertEdges(
	ctx context.Context,
	mapping *config.EdgeMapping,
	fromLabels, toLabels []string,
	batch []schema.Edge,
) error {
	query := upsertEdgesQuery(mapping, fromLabels, toLabels)

	for _, part := range splitBatch(batch, s.maxBatchSize) {
		if err := s.executeWrite(ctx, query, map[string]any{"rows": edgeRows(part, true)}); err != nil {
			return fmt.Errorf("upsert edges: %w", err)
		}
	}

	return nil
}

// DeleteEdges removes a batch of edges between the resolved endpoint labels.
func (s *Store) DeleteEdges(
	ctx context.Context,
	mapping *config.EdgeMapping,
	fromLabels, toLabels []string,
	batch []schema.Edge,
) error {
	query := deleteEdgesQuery(mapping, fromLabels, toLabels)

	for _, part := range splitBatch(batch, s.maxBatchSize) {
		if err := s.executeWrite(ctx, query, map[string]any{"rows": edgeRows(part, false)}); err != nil {
			return fmt.Errorf("delete edges: %w", err)
		}
	}

	return nil
}

// EnsureNodeIndexes creates an index per distinct (labels, key property) pair
// so MERGE lookups stay cheap. Failures are logged and ignored; the store
// errors when an index already exists.
func (s *Store) EnsureNodeIndexes(ctx context.Context, mappings []config.Mapping) {
	seen := make(map[string]struct{})

	for _, mapping := range mappings {
		node, ok := mapping.(*config.NodeMapping)
		if !ok {
			continue
		}

		labels := labelExpr(node.Labels)
		dedupeKey := labels + "\x00" + node.Key.Property
		if _, ok := seen[dedupeKey]; ok {
			continue
		}
		seen[dedupeKey] = struct{}{}

		query := fmt.Sprintf(createIndexQueryTemplate, labels, node.Key.Property)
		if err := s.run(ctx, query, nil); err != nil {
			s.logger.Warn().
				Str("mapping", node.CommonFields.Name).
				Str("labels", labels).
				Str("property", node.Key.Property).
				Err(err).
				Msg("create index failed (it may already exist)")
		}
	}
}

// PurgeAll removes every node and relationship in the graph.
func (s *Store) PurgeAll(ctx context.Context) error {
	if err := s.executeWrite(ctx, purgeAllQuery, nil); err != nil {
		return fmt.Errorf("purge graph: %w", err)
	}

	return nil
}

// PurgeNodeMapping removes every node carrying the mapping's labels.
func (s *Store) PurgeNodeMapping(ctx context.Context, mapping *config.NodeMapping) error {
	query := fmt.Sprintf(purgeNodesQueryTemplate, labelExpr(mapping.Labels))
	if err := s.executeWrite(ctx, query, nil); err != nil {
		return fmt.Errorf("purge node mapping %q: %w", mapping.CommonFields.Name, err)
	}

	return nil
}

// PurgeEdgeMapping removes every relationship of the mapping's type between
// its resolved endpoint labels.
func (s *Store) PurgeEdgeMapping(
	ctx context.Context,
	mapping *config.EdgeMapping,
	fromLabels, toLabels []string,
) error {
	tail, head := labelExpr(fromLabels), labelExpr(toLabels)
	if mapping.Direction == config.DirectionIn {
		// direction in stores the edge pointing from the to-endpoint
		tail, head = head, tail
	}

	query := fmt.Sprintf(purgeEdgesQueryTemplate, tail, mapping.Relationship, head)
	if err := s.executeWrite(ctx, query, nil); err != nil {
		return fmt.Errorf("purge edge mapping %q: %w", mapping.CommonFields.Name, err)
	}

	return nil
}

// executeWrite runs one parameterized statement with retries.
func (s *Store) executeWrite(ctx context.Context, query string, params map[string]any) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		return s.run(ctx, query, params)
	})
}

// run executes one statement in a managed write transaction on a fresh session.
func (s *Store) run(ctx context.Context, query string, params map[string]any) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.graphName,
	})
	defer session.Close(ctx)

	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (neo4j.ResultSummary, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, fmt.Errorf("run tx: %w", err)
		}

		summary, err := result.Consume(ctx)
		if err != nil {
			return nil, fmt.Errorf("consume result: %w", err)
		}

		return summary, nil
	})
	if err != nil {
		return fmt.Errorf("execute write: %w", err)
	}

	return nil
}

func edgeRows(batch []schema.Edge, withProps bool) []map[string]any {
	rows := make([]map[string]any, len(batch))
	for i, edge := range batch {
		row := map[string]any{"from": edge.From, "to": edge.To}
		if edge.Key != nil {
			row["key"] = edge.Key
		}
		if withProps {
			row["props"] = edge.Props
		}
		rows[i] = row
	}

	return rows
}

// splitBatch chunks items into consecutive sub-batches of at most size
// elements; the concatenation of the chunks equals the input.
func splitBatch[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(items)
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}

	return chunks
}
