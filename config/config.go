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

// Package config implements the declarative mapping configuration shared
// between different parts of the loader.
package config

import (
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DefaultMaxBatchSize is used when falkordb.max_unwind_batch_size is unset.
const DefaultMaxBatchSize = 1000

// DefaultStateFilePath is used when no state backend is configured.
const DefaultStateFilePath = "state.json"

// Mode defines how a mapping ships rows.
type Mode string

// The available modes are listed below.
const (
	ModeFull        Mode = "full"
	ModeIncremental Mode = "incremental"
)

// Direction defines which way an edge mapping points.
type Direction string

// The available directions are listed below.
const (
	DirectionOut Direction = "out"
	DirectionIn  Direction = "in"
)

// Kind defines a mapping kind.
type Kind string

// The available mapping kinds are listed below.
const (
	KindNode Kind = "node"
	KindEdge Kind = "edge"
)

// Config is the root configuration: one warehouse connection, one graph
// connection, one state backend, and an ordered sequence of mappings.
type Config struct {
	Snowflake *SnowflakeConfig `mapstructure:"snowflake"`
	Falkor    FalkorConfig     `mapstructure:"falkordb"`
	State     *StateConfig     `mapstructure:"state"`
	Mappings  []Mapping        `mapstructure:"-"`
}

// SnowflakeConfig holds warehouse connection and session settings.
type SnowflakeConfig struct {
	Account string `mapstructure:"account"`
	User    string `mapstructure:"user"`
	// Password authenticates the user, or acts as the private key passphrase
	// when PrivateKeyPath is set.
	Password string `mapstructure:"password"`
	// PrivateKeyPath points at a PKCS#8 PEM key; when set, keypair auth is
	// used and takes precedence over password auth.
	PrivateKeyPath string `mapstructure:"private_key_path"`
	Warehouse      string `mapstructure:"warehouse"`
	Database       string `mapstructure:"database"`
	Schema         string `mapstructure:"schema"`
	Role           string `mapstructure:"role"`
	FetchBatchSize int    `mapstructure:"fetch_batch_size"`
	QueryTimeoutMS int64  `mapstructure:"query_timeout_ms"`
}

// FalkorConfig holds graph store connection settings.
type FalkorConfig struct {
	// The connection URI pointed to a Bolt endpoint, e.g. "bolt://localhost:7687".
	URI string `mapstructure:"uri"`
	// Target graph name.
	Graph string `mapstructure:"graph"`
	// Optional batch size override for UNWIND statements.
	MaxUnwindBatchSize int `mapstructure:"max_unwind_batch_size"`
	// Auth holds auth-specific configurable values.
	Auth AuthConfig `mapstructure:"auth"`
}

// MaxBatchSize returns the configured UNWIND batch size or the default.
func (c FalkorConfig) MaxBatchSize() int {
	if c.MaxUnwindBatchSize > 0 {
		return c.MaxUnwindBatchSize
	}

	return DefaultMaxBatchSize
}

// AuthConfig holds auth-specific configurable values for the graph store.
type AuthConfig struct {
	// The username to use when performing basic auth.
	Username string `mapstructure:"username"`
	// The password to use when performing basic auth.
	Password string `mapstructure:"password"`
	// The realm to use when performing basic auth.
	Realm string `mapstructure:"realm"`
}

// AuthToken returns [neo4j.AuthToken] based on the [AuthConfig] values.
func (c AuthConfig) AuthToken() neo4j.AuthToken {
	if c.Username != "" || c.Password != "" || c.Realm != "" {
		return neo4j.BasicAuth(c.Username, c.Password, c.Realm)
	}

	return neo4j.NoAuth()
}

// StateBackend defines where per-mapping watermarks are persisted.
type StateBackend string

// The available state backends are listed below.
const (
	StateBackendFile StateBackend = "file"
	StateBackendNone StateBackend = "none"
)

// StateConfig holds the watermark persistence settings.
type StateConfig struct {
	Backend StateBackend `mapstructure:"backend"`
	// For the file backend: path to the JSON file storing mapping -> watermark.
	FilePath string `mapstructure:"file_path"`
}

// SourceConfig specifies where a mapping's rows come from.
// Exactly one of Table, RawSelect, or FilePath must be set.
type SourceConfig struct {
	// Table name for warehouse sources; Where is an optional predicate
	// ANDed into the generated SELECT.
	Table string `mapstructure:"table"`
	Where string `mapstructure:"where"`
	// RawSelect is a full SELECT statement used verbatim.
	RawSelect string `mapstructure:"select"`
	// FilePath points at a JSON array of objects, one row per object.
	FilePath string `mapstructure:"file"`
}

// DeltaSpec configures incremental and soft-delete behavior for a mapping.
//
// With a RawSelect source the engine cannot inject the watermark predicate;
// UpdatedAtColumn still names the column the transformer reads to advance the
// watermark. Without it the watermark does not advance.
type DeltaSpec struct {
	UpdatedAtColumn   string `mapstructure:"updated_at_column"`
	DeletedFlagColumn string `mapstructure:"deleted_flag_column"`
	DeletedFlagValue  any    `mapstructure:"deleted_flag_value"`
	// InitialFullLoad requests one unfiltered run before incremental runs start.
	InitialFullLoad bool `mapstructure:"initial_full_load"`
}

// Common holds the fields shared by node and edge mappings.
type Common struct {
	// Logical name of the mapping; unique, used as metrics label and watermark key.
	Name   string       `mapstructure:"name"`
	Source SourceConfig `mapstructure:"source"`
	Mode   Mode         `mapstructure:"mode"`
	Delta  *DeltaSpec   `mapstructure:"delta"`
}

// Mapping is a declarative rule turning source rows into nodes or edges.
// The two implementations are [NodeMapping] and [EdgeMapping].
type Mapping interface {
	Kind() Kind
	Common() *Common
}

// KeySpec binds a source column to the graph property storing its value.
type KeySpec struct {
	Column   string `mapstructure:"column"`
	Property string `mapstructure:"property"`
}

// NodeMapping maps rows to labeled nodes keyed by a single property.
type NodeMapping struct {
	CommonFields Common `mapstructure:",squash"`
	// Labels to apply to merged nodes, e.g. ["Customer"].
	Labels []string `mapstructure:"labels"`
	Key    KeySpec  `mapstructure:"key"`
	// Properties maps graph property name -> source column.
	Properties map[string]string `mapstructure:"properties"`
}

// Kind returns [KindNode].
func (m *NodeMapping) Kind() Kind { return KindNode }

// Common returns the shared mapping fields.
func (m *NodeMapping) Common() *Common { return &m.CommonFields }

// PropertyNames returns the mapped graph property names in a deterministic
// (sorted) order so generated projections and statements are stable.
func (m *NodeMapping) PropertyNames() []string { return sortedKeys(m.Properties) }

// MatchOn binds a source column to the endpoint graph property it resolves.
type MatchOn struct {
	Column   string `mapstructure:"column"`
	Property string `mapstructure:"property"`
}

// EdgeEndpoint names the node mapping an edge endpoint resolves against and
// how row columns match the endpoint's key property.
type EdgeEndpoint struct {
	NodeMapping string    `mapstructure:"node_mapping"`
	MatchOn     []MatchOn `mapstructure:"match_on"`
	// LabelOverride matches against these labels instead of the endpoint
	// node mapping's labels.
	LabelOverride []string `mapstructure:"label_override"`
}

// Properties returns the match property names in declaration order.
func (e EdgeEndpoint) Properties() []string {
	props := make([]string, len(e.MatchOn))
	for i, m := range e.MatchOn {
		props[i] = m.Property
	}

	return props
}

// EdgeMapping maps rows to relationships between previously declared node mappings.
type EdgeMapping struct {
	CommonFields Common       `mapstructure:",squash"`
	Relationship string       `mapstructure:"relationship"`
	Direction    Direction    `mapstructure:"direction"`
	From         EdgeEndpoint `mapstructure:"from"`
	To           EdgeEndpoint `mapstructure:"to"`
	// Key makes the edge unique per key value when set.
	Key *KeySpec `mapstructure:"key"`
	// Properties maps graph property name -> source column.
	Properties map[string]string `mapstructure:"properties"`
}

// Kind returns [KindEdge].
func (m *EdgeMapping) Kind() Kind { return KindEdge }

// Common returns the shared mapping fields.
func (m *EdgeMapping) Common() *Common { return &m.CommonFields }

// PropertyNames returns the mapped graph property names in a deterministic
// (sorted) order so generated projections and statements are stable.
func (m *EdgeMapping) PropertyNames() []string { return sortedKeys(m.Properties) }

// NodeMappingsByName indexes node mappings by name so edge mappings can look
// up their endpoints.
func (c *Config) NodeMappingsByName() map[string]*NodeMapping {
	byName := make(map[string]*NodeMapping)
	for _, mapping := range c.Mappings {
		if node, ok := mapping.(*NodeMapping); ok {
			byName[node.CommonFields.Name] = node
		}
	}

	return byName
}

// MappingByName returns the mapping with the given name, or nil.
func (c *Config) MappingByName(name string) Mapping {
	for _, mapping := range c.Mappings {
		if mapping.Common().Name == name {
			return mapping
		}
	}

	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}
