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

package transform

import (
	"fmt"
	"time"

	"github.com/snowgraph-io/snowgraph/schema"
)

// canonicalTimeLayout renders timestamps with fixed-width fractional seconds
// so that accumulated values stay lexically ordered.
const canonicalTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// WatermarkAccumulator tracks the largest updated_at value observed during a
// run. Values are compared as opaque strings; timestamp cells are rendered as
// canonical ISO-8601 UTC strings first.
type WatermarkAccumulator struct {
	column string
	max    string
}

// NewWatermarkAccumulator creates an accumulator for the given column. An
// empty column yields an inactive accumulator whose Max is always empty.
func NewWatermarkAccumulator(column string) *WatermarkAccumulator {
	return &WatermarkAccumulator{column: column}
}

// Observe folds one row into the accumulator.
func (a *WatermarkAccumulator) Observe(row schema.Row) {
	if a.column == "" {
		return
	}

	value := row[a.column]
	if value == nil {
		return
	}

	canonical := canonicalScalar(value)
	if canonical > a.max {
		a.max = canonical
	}
}

// Max returns the largest observed value, or "" when none was seen.
func (a *WatermarkAccumulator) Max() string { return a.max }

func canonicalScalar(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case time.Time:
		return typed.UTC().Format(canonicalTimeLayout)
	default:
		return fmt.Sprint(typed)
	}
}
