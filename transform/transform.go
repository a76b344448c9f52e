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

// Package transform maps source rows to graph payloads according to a mapping
// and classifies them as live or deleted.
package transform

import (
	"github.com/snowgraph-io/snowgraph/config"
	"github.com/snowgraph-io/snowgraph/schema"
)

// Action tells the caller what to do with a transformed row.
type Action int

// The available actions are listed below.
const (
	// ActionUpsert merges the payload into the graph.
	ActionUpsert Action = iota
	// ActionDelete removes the payload's entity from the graph.
	ActionDelete
	// ActionSkip drops the row; it carries no usable key.
	ActionSkip
)

// NodeTransformer turns rows into node payloads for one node mapping.
type NodeTransformer struct {
	mapping *config.NodeMapping
	dropped int
}

// NewNode creates a new instance of the [NodeTransformer].
func NewNode(mapping *config.NodeMapping) *NodeTransformer {
	return &NodeTransformer{mapping: mapping}
}

// Apply maps one row. Rows with a null key are dropped and counted; rows
// matching the deleted flag become delete payloads.
func (t *NodeTransformer) Apply(row schema.Row) (schema.Node, Action) {
	key := row[t.mapping.Key.Column]
	if key == nil {
		t.dropped++

		return schema.Node{}, ActionSkip
	}

	if isDeleted(t.mapping.CommonFields.Delta, row) {
		return schema.Node{Key: key}, ActionDelete
	}

	props := make(map[string]any, len(t.mapping.Properties)+1)
	props[t.mapping.Key.Property] = key
	for property, column := range t.mapping.Properties {
		props[property] = row[column]
	}

	return schema.Node{Key: key, Props: props}, ActionUpsert
}

// Dropped returns how many rows were dropped for carrying a null key.
func (t *NodeTransformer) Dropped() int { return t.dropped }

// EdgeTransformer turns rows into edge payloads for one edge mapping.
type EdgeTransformer struct {
	mapping *config.EdgeMapping
	dropped int
}

// NewEdge creates a new instance of the [EdgeTransformer].
func NewEdge(mapping *config.EdgeMapping) *EdgeTransformer {
	return &EdgeTransformer{mapping: mapping}
}

// Apply maps one row. Rows with a null edge key (when the mapping has one)
// are dropped and counted; rows matching the deleted flag become delete
// payloads.
func (t *EdgeTransformer) Apply(row schema.Row) (schema.Edge, Action) {
	edge := schema.Edge{
		From: matchValues(row, t.mapping.From.MatchOn),
		To:   matchValues(row, t.mapping.To.MatchOn),
	}

	if t.mapping.Key != nil {
		edge.Key = row[t.mapping.Key.Column]
		if edge.Key == nil {
			t.dropped++

			return schema.Edge{}, ActionSkip
		}
	}

	if isDeleted(t.mapping.CommonFields.Delta, row) {
		return edge, ActionDelete
	}

	edge.Props = make(map[string]any, len(t.mapping.Properties))
	for property, column := range t.mapping.Properties {
		edge.Props[property] = row[column]
	}

	return edge, ActionUpsert
}

// Dropped returns how many rows were dropped for carrying a null edge key.
func (t *EdgeTransformer) Dropped() int { return t.dropped }

func matchValues(row schema.Row, matches []config.MatchOn) map[string]any {
	values := make(map[string]any, len(matches))
	for _, match := range matches {
		values[match.Property] = row[match.Column]
	}

	return values
}

// isDeleted reports whether the row's flag column equals the configured
// deletion sentinel.
func isDeleted(delta *config.DeltaSpec, row schema.Row) bool {
	if delta == nil || delta.DeletedFlagColumn == "" || delta.DeletedFlagValue == nil {
		return false
	}

	return scalarEquals(row[delta.DeletedFlagColumn], delta.DeletedFlagValue)
}

// scalarEquals compares cell values loosely across the numeric types the
// JSON/YAML decoders and SQL drivers produce.
func scalarEquals(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}

	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)

		return bok && af == bf
	}

	return a == b
}

func asFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case float32:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}
