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

// Package source implements the readers that turn a query plan into a stream
// of rows, from either the warehouse or a local file.
package source

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/snowgraph-io/snowgraph/config"
	"github.com/snowgraph-io/snowgraph/planner"
	"github.com/snowgraph-io/snowgraph/schema"
)

// RowStream produces a lazy finite sequence of rows and a terminal status.
// The usage mirrors [database/sql.Rows]: call Next until it returns false,
// then check Err.
type RowStream interface {
	Next(ctx context.Context) bool
	Row() schema.Row
	Err() error
	Close() error
}

// Reader is the uniform adapter over warehouse and file sources.
type Reader struct {
	warehouse *WarehouseReader
	file      *FileReader
}

// New creates a new instance of the [Reader]. The snowflake config may be nil
// when every mapping reads from files.
func New(snowflake *config.SnowflakeConfig, logger zerolog.Logger) *Reader {
	r := &Reader{file: NewFileReader(logger)}
	if snowflake != nil {
		r.warehouse = NewWarehouseReader(*snowflake, logger)
	}

	return r
}

// Open dispatches the plan to the matching reader implementation.
func (r *Reader) Open(ctx context.Context, plan planner.QueryPlan) (RowStream, error) {
	if plan.FilePath != "" {
		return r.file.Open(ctx, plan)
	}

	if r.warehouse == nil {
		return nil, fmt.Errorf("plan needs the warehouse but no snowflake connection is configured")
	}

	return r.warehouse.Open(ctx, plan)
}

// Close releases the underlying warehouse connection, if any.
func (r *Reader) Close() error {
	if r.warehouse == nil {
		return nil
	}

	return r.warehouse.Close()
}
