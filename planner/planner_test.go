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

package planner

import (
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/snowgraph-io/snowgraph/config"
	"github.com/snowgraph-io/snowgraph/state"
)

func incrementalNodeMapping() *config.NodeMapping {
	return &config.NodeMapping{
		CommonFields: config.Common{
			Name:   "customers",
			Source: config.SourceConfig{Table: "CUSTOMERS"},
			Mode:   config.ModeIncremental,
			Delta: &config.DeltaSpec{
				UpdatedAtColumn:   "UPDATED_AT",
				DeletedFlagColumn: "IS_DELETED",
				DeletedFlagValue:  true,
			},
		},
		Labels:     []string{"Customer"},
		Key:        config.KeySpec{Column: "CUSTOMER_ID", Property: "id"},
		Properties: map[string]string{"name": "NAME", "email": "EMAIL"},
	}
}

func TestPlan_watermarkPredicate(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	plan, err := Plan(incrementalNodeMapping(), state.Record{
		LastUpdatedAt:       "2024-01-01T00:00:00Z",
		InitialFullLoadDone: true,
	})
	is.NoErr(err)

	is.Equal(plan.Mode, RunModeIncremental)
	is.Equal(plan.SQL,
		"SELECT CUSTOMER_ID, EMAIL, NAME, UPDATED_AT, IS_DELETED FROM CUSTOMERS WHERE UPDATED_AT > ?")
	is.Equal(plan.Args, []any{"2024-01-01T00:00:00Z"})
	is.Equal(strings.Count(plan.SQL, "UPDATED_AT > ?"), 1)
	is.Equal(plan.UpdatedAtColumn, "UPDATED_AT")
}

func TestPlan_userWhereIsANDed(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	mapping := incrementalNodeMapping()
	mapping.CommonFields.Source.Where = "REGION = 'EU'"

	plan, err := Plan(mapping, state.Record{
		LastUpdatedAt:       "2024-01-01T00:00:00Z",
		InitialFullLoadDone: true,
	})
	is.NoErr(err)
	is.True(strings.HasSuffix(plan.SQL, "WHERE REGION = 'EU' AND UPDATED_AT > ?"))
	is.Equal(plan.Args, []any{"2024-01-01T00:00:00Z"})
}

func TestPlan_noWatermarkOnFirstRun(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	plan, err := Plan(incrementalNodeMapping(), state.Record{})
	is.NoErr(err)
	is.True(!strings.Contains(plan.SQL, "WHERE"))
	is.Equal(len(plan.Args), 0)
}

func TestPlan_initialFullLoad(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	mapping := incrementalNodeMapping()
	mapping.CommonFields.Delta.InitialFullLoad = true

	// a watermark value is present, but the requested full load has not run yet:
	// the plan is full and the predicate is omitted
	plan, err := Plan(mapping, state.Record{LastUpdatedAt: "2024-01-01T00:00:00Z"})
	is.NoErr(err)
	is.Equal(plan.Mode, RunModeFull)
	is.True(!strings.Contains(plan.SQL, "WHERE"))

	// once the flag flipped, the predicate comes back
	plan, err = Plan(mapping, state.Record{
		LastUpdatedAt:       "2024-01-01T00:00:00Z",
		InitialFullLoadDone: true,
	})
	is.NoErr(err)
	is.Equal(plan.Mode, RunModeIncremental)
	is.True(strings.Contains(plan.SQL, "UPDATED_AT > ?"))
}

func TestPlan_rawSelectIsVerbatim(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	mapping := incrementalNodeMapping()
	mapping.CommonFields.Source = config.SourceConfig{
		RawSelect: "SELECT ID, NAME, UPDATED_AT FROM CUSTOM_VIEW",
	}

	plan, err := Plan(mapping, state.Record{
		LastUpdatedAt:       "2024-01-01T00:00:00Z",
		InitialFullLoadDone: true,
	})
	is.NoErr(err)
	is.Equal(plan.SQL, "SELECT ID, NAME, UPDATED_AT FROM CUSTOM_VIEW")
	is.Equal(len(plan.Args), 0)
	// the delta column still rides along for watermark accumulation
	is.Equal(plan.UpdatedAtColumn, "UPDATED_AT")
}

func TestPlan_fileSource(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	mapping := incrementalNodeMapping()
	mapping.CommonFields.Source = config.SourceConfig{FilePath: "rows.json"}

	plan, err := Plan(mapping, state.Record{})
	is.NoErr(err)
	is.Equal(plan.FilePath, "rows.json")
	is.Equal(plan.SQL, "")
}

func TestPlan_edgeProjection(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	edge := &config.EdgeMapping{
		CommonFields: config.Common{
			Name:   "purchases",
			Source: config.SourceConfig{Table: "ORDERS"},
			Mode:   config.ModeFull,
			Delta:  &config.DeltaSpec{UpdatedAtColumn: "UPDATED_AT"},
		},
		Relationship: "PURCHASED",
		Direction:    config.DirectionOut,
		From: config.EdgeEndpoint{
			NodeMapping: "customers",
			MatchOn:     []config.MatchOn{{Column: "CUSTOMER_ID", Property: "id"}},
		},
		To: config.EdgeEndpoint{
			NodeMapping: "orders",
			MatchOn:     []config.MatchOn{{Column: "ORDER_ID", Property: "id"}},
		},
		Key:        &config.KeySpec{Column: "ORDER_ID", Property: "order_id"},
		Properties: map[string]string{"amount": "AMOUNT"},
	}

	plan, err := Plan(edge, state.Record{})
	is.NoErr(err)
	// ORDER_ID appears once even though it is both a match column and the edge key
	is.Equal(plan.SQL, "SELECT CUSTOMER_ID, ORDER_ID, AMOUNT, UPDATED_AT FROM ORDERS")
}
