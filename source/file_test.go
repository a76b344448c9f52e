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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/snowgraph-io/snowgraph/planner"
	"github.com/snowgraph-io/snowgraph/schema"
)

func writeTestRows(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rows.json")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestFileReader_Open(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	path := writeTestRows(t, `[
		{"id": 1, "name": "Alice"},
		{"id": 2, "name": "Bob", "score": 1.5, "active": true, "nickname": null}
	]`)

	stream, err := NewFileReader(zerolog.Nop()).Open(context.Background(), planner.QueryPlan{FilePath: path})
	is.NoErr(err)
	defer stream.Close()

	ctx := context.Background()

	is.True(stream.Next(ctx))
	is.Equal(stream.Row(), schema.Row{"id": int64(1), "name": "Alice"})

	is.True(stream.Next(ctx))
	row := stream.Row()
	// integral numbers come out as int64, fractional as float64
	is.Equal(row["id"], int64(2))
	is.Equal(row["score"], 1.5)
	is.Equal(row["active"], true)
	is.Equal(row["nickname"], nil)

	is.True(!stream.Next(ctx))
	is.NoErr(stream.Err())
}

func TestFileReader_Open_notAnArray(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	path := writeTestRows(t, `{"id": 1}`)

	_, err := NewFileReader(zerolog.Nop()).Open(context.Background(), planner.QueryPlan{FilePath: path})
	is.True(err != nil)
}

func TestFileReader_Open_missingFile(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	_, err := NewFileReader(zerolog.Nop()).Open(context.Background(), planner.QueryPlan{
		FilePath: filepath.Join(t.TempDir(), "nope.json"),
	})
	is.True(err != nil)
}

func TestReader_dispatch(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	reader := New(nil, zerolog.Nop())

	path := writeTestRows(t, `[]`)
	_, err := reader.Open(context.Background(), planner.QueryPlan{FilePath: path})
	is.NoErr(err)

	// a warehouse plan without a snowflake connection is an error
	_, err = reader.Open(context.Background(), planner.QueryPlan{SQL: "SELECT 1"})
	is.True(err != nil)
}
