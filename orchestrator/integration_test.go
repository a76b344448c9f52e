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

package orchestrator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/snowgraph-io/snowgraph/config"
	"github.com/snowgraph-io/snowgraph/metrics"
	"github.com/snowgraph-io/snowgraph/orchestrator/mock"
	"github.com/snowgraph-io/snowgraph/schema"
	"github.com/snowgraph-io/snowgraph/source"
	"github.com/snowgraph-io/snowgraph/state"
)

// TestRunOnce_fileSourceToGraph drives the real file reader and the real file
// state store through a run, with only the graph mocked.
func TestRunOnce_fileSourceToGraph(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	dir := t.TempDir()

	inputPath := filepath.Join(dir, "nodes.json")
	is.NoErr(os.WriteFile(inputPath, []byte(`[
		{"id": 1, "name": "Alice", "updated_at": "2024-01-01"},
		{"id": 2, "name": "Bob", "updated_at": "2024-01-02"}
	]`), 0o600))

	mapping := &config.NodeMapping{
		CommonFields: config.Common{
			Name:   "test-nodes",
			Source: config.SourceConfig{FilePath: inputPath},
			Mode:   config.ModeFull,
			Delta:  &config.DeltaSpec{UpdatedAtColumn: "updated_at"},
		},
		Labels:     []string{"TestNode"},
		Key:        config.KeySpec{Column: "id", Property: "id"},
		Properties: map[string]string{"name": "name"},
	}

	cfg := &config.Config{
		Falkor:   config.FalkorConfig{URI: "bolt://localhost:7687", Graph: "g"},
		Mappings: []config.Mapping{mapping},
	}

	ctrl := gomock.NewController(t)
	graphMock := mock.NewMockGraphStore(ctrl)
	graphMock.EXPECT().EnsureNodeIndexes(gomock.Any(), gomock.Any())
	graphMock.EXPECT().UpsertNodes(gomock.Any(), mapping, []schema.Node{
		{Key: int64(1), Props: map[string]any{"id": int64(1), "name": "Alice"}},
		{Key: int64(2), Props: map[string]any{"id": int64(2), "name": "Bob"}},
	}).Return(nil)

	statePath := filepath.Join(dir, "state.json")

	o, err := New(Params{
		Config:  cfg,
		Source:  source.New(nil, zerolog.Nop()),
		Graph:   graphMock,
		State:   state.NewFileStore(statePath),
		Metrics: metrics.New(),
		Logger:  zerolog.Nop(),
	})
	is.NoErr(err)

	is.NoErr(o.RunOnce(context.Background(), RunOptions{}))

	// the watermark landed on disk in the documented shape
	contents, err := os.ReadFile(statePath)
	is.NoErr(err)

	var persisted map[string]state.Record
	is.NoErr(json.Unmarshal(contents, &persisted))
	is.Equal(persisted["test-nodes"], state.Record{LastUpdatedAt: "2024-01-02"})

	// a fresh orchestrator picks the watermark back up
	o2, err := New(Params{
		Config:  cfg,
		Source:  source.New(nil, zerolog.Nop()),
		Graph:   graphMock,
		State:   state.NewFileStore(statePath),
		Metrics: metrics.New(),
		Logger:  zerolog.Nop(),
	})
	is.NoErr(err)
	is.Equal(o2.watermarks["test-nodes"].LastUpdatedAt, "2024-01-02")
}
