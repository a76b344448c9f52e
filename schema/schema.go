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

// Package schema holds definitions of models shared between different parts of the loader.
package schema

// Row is a single source row keyed by column name.
// Cell values are null, boolean, integer, floating-point, string, or timestamp.
type Row map[string]any

// Node is a node upsert or delete ready to be sent as an UNWIND batch item.
// For deletes only the Key is used.
type Node struct {
	Key   any
	Props map[string]any
}

// Edge is an edge upsert or delete ready to be sent as an UNWIND batch item.
// From and To hold the endpoint match values keyed by graph property.
// Key is the optional edge key value; nil when the mapping has no edge key.
type Edge struct {
	From  map[string]any
	To    map[string]any
	Key   any
	Props map[string]any
}
