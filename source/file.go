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

package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/snowgraph-io/snowgraph/planner"
	"github.com/snowgraph-io/snowgraph/schema"
)

// FileReader reads a JSON array of objects from disk and yields each object
// as a row. It exists for deterministic testing and bootstrap loads.
type FileReader struct {
	logger zerolog.Logger
}

// NewFileReader creates a new instance of the [FileReader].
func NewFileReader(logger zerolog.Logger) *FileReader {
	return &FileReader{logger: logger}
}

// Open reads and decodes the whole file up front; the returned stream yields
// the decoded rows one at a time.
func (r *FileReader) Open(_ context.Context, plan planner.QueryPlan) (RowStream, error) {
	contents, err := os.ReadFile(plan.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read input file %q: %w", plan.FilePath, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(contents))
	decoder.UseNumber()

	var objects []map[string]any
	if err := decoder.Decode(&objects); err != nil {
		return nil, fmt.Errorf("parse JSON array from %q: %w", plan.FilePath, err)
	}

	rows := make([]schema.Row, len(objects))
	for i, object := range objects {
		row := make(schema.Row, len(object))
		for column, value := range object {
			row[column] = normalizeJSONValue(value)
		}
		rows[i] = row
	}

	r.logger.Debug().Str("file", plan.FilePath).Int("rows", len(rows)).Msg("loaded input file")

	return &sliceStream{rows: rows}, nil
}

// normalizeJSONValue maps json.Number cells to int64 when integral so file
// rows carry the same cell types the warehouse reader produces.
func normalizeJSONValue(value any) any {
	switch typed := value.(type) {
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return i
		}
		if f, err := typed.Float64(); err == nil {
			return f
		}

		return typed.String()

	case []any:
		for i, item := range typed {
			typed[i] = normalizeJSONValue(item)
		}

		return typed

	case map[string]any:
		for key, item := range typed {
			typed[key] = normalizeJSONValue(item)
		}

		return typed

	default:
		return typed
	}
}

// sliceStream yields an in-memory row slice.
type sliceStream struct {
	rows    []schema.Row
	current schema.Row
	err     error
}

func (s *sliceStream) Next(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		s.err = err

		return false
	}

	if len(s.rows) == 0 {
		return false
	}

	s.current = s.rows[0]
	s.rows = s.rows[1:]

	return true
}

func (s *sliceStream) Row() schema.Row { return s.current }

func (s *sliceStream) Err() error { return s.err }

func (s *sliceStream) Close() error { return nil }
