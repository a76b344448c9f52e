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

// Package planner turns a mapping plus its prior watermark into the query
// executed for one run.
package planner

import (
	"fmt"
	"strings"

	"github.com/snowgraph-io/snowgraph/config"
	"github.com/snowgraph-io/snowgraph/state"
)

// RunMode defines how a single run ships rows.
type RunMode string

// The available run modes are listed below.
const (
	RunModeFull        RunMode = "full"
	RunModeIncremental RunMode = "incremental"
)

// QueryPlan is everything the source reader needs for one mapping run.
// Identifiers from the mapping are injected into SQL directly and must be
// trusted; values are always parameter-bound.
type QueryPlan struct {
	// SQL and Args are set for warehouse sources; FilePath for file sources.
	SQL      string
	Args     []any
	FilePath string
	Mode     RunMode
	// UpdatedAtColumn names the column the transformer reads to accumulate
	// the new watermark; empty when the mapping has no delta block.
	UpdatedAtColumn string
}

// Plan produces the query plan for one run of a mapping given its prior
// watermark record.
func Plan(mapping config.Mapping, rec state.Record) (QueryPlan, error) {
	common := mapping.Common()

	plan := QueryPlan{Mode: runMode(common, rec)}
	if common.Delta != nil {
		plan.UpdatedAtColumn = common.Delta.UpdatedAtColumn
	}

	switch {
	case common.Source.FilePath != "":
		plan.FilePath = common.Source.FilePath

	case common.Source.RawSelect != "":
		// user-supplied SQL is used verbatim; the planner never appends predicates
		plan.SQL = common.Source.RawSelect

	case common.Source.Table != "":
		plan.SQL, plan.Args = tableQuery(mapping, rec)

	default:
		return QueryPlan{}, fmt.Errorf("mapping %q: no source form configured", common.Name)
	}

	return plan, nil
}

// runMode decides whether this run is a full or incremental load: full when
// configured so, or when a requested initial full load has not completed yet.
func runMode(common *config.Common, rec state.Record) RunMode {
	if common.Mode == config.ModeFull {
		return RunModeFull
	}
	if common.Delta != nil && common.Delta.InitialFullLoad && !rec.InitialFullLoadDone {
		return RunModeFull
	}

	return RunModeIncremental
}

func tableQuery(mapping config.Mapping, rec state.Record) (string, []any) {
	common := mapping.Common()

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(projection(mapping), ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(common.Source.Table)

	var (
		predicates []string
		args       []any
	)

	if common.Source.Where != "" {
		predicates = append(predicates, common.Source.Where)
	}

	if wantsWatermarkPredicate(common, rec) {
		predicates = append(predicates, fmt.Sprintf("%s > ?", common.Delta.UpdatedAtColumn))
		args = append(args, rec.LastUpdatedAt)
	}

	if len(predicates) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(predicates, " AND "))
	}

	return sb.String(), args
}

// wantsWatermarkPredicate applies the incremental filter only once a prior
// watermark exists and any requested initial full load has completed.
func wantsWatermarkPredicate(common *config.Common, rec state.Record) bool {
	if common.Mode != config.ModeIncremental {
		return false
	}
	if common.Delta == nil || common.Delta.UpdatedAtColumn == "" {
		return false
	}
	if rec.LastUpdatedAt == "" {
		return false
	}

	return rec.InitialFullLoadDone || !common.Delta.InitialFullLoad
}

// projection lists every column the run needs, de-duplicated in a
// deterministic order: for node mappings the key column, then the mapped
// properties sorted by graph property name; for edge mappings the from and to
// match columns, then the edge key column, then the sorted properties. The
// delta columns come last.
func projection(mapping config.Mapping) []string {
	var columns []string

	seen := make(map[string]struct{})
	add := func(column string) {
		if column == "" {
			return
		}
		if _, ok := seen[column]; ok {
			return
		}
		seen[column] = struct{}{}
		columns = append(columns, column)
	}

	switch typed := mapping.(type) {
	case *config.NodeMapping:
		add(typed.Key.Column)
		for _, property := range typed.PropertyNames() {
			add(typed.Properties[property])
		}

	case *config.EdgeMapping:
		for _, match := range typed.From.MatchOn {
			add(match.Column)
		}
		for _, match := range typed.To.MatchOn {
			add(match.Column)
		}
		if typed.Key != nil {
			add(typed.Key.Column)
		}
		for _, property := range typed.PropertyNames() {
			add(typed.Properties[property])
		}
	}

	if delta := mapping.Common().Delta; delta != nil {
		add(delta.UpdatedAtColumn)
		add(delta.DeletedFlagColumn)
	}

	return columns
}
