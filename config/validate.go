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

package config

import "fmt"

// Validate performs the semantic validation pass over an already decoded
// configuration. It returns the first violation found as an [Error] of kind
// validate.
func (c *Config) Validate() error {
	if c.Falkor.URI == "" {
		return validateError("falkordb.uri", "is required")
	}
	if c.Falkor.Graph == "" {
		return validateError("falkordb.graph", "is required")
	}

	if err := c.validateState(); err != nil {
		return err
	}

	needsWarehouse := false
	seenNames := make(map[string]struct{}, len(c.Mappings))
	nodesSoFar := make(map[string]*NodeMapping)

	for i, mapping := range c.Mappings {
		common := mapping.Common()
		field := fmt.Sprintf("mappings[%d]", i)
		if common.Name != "" {
			field = fmt.Sprintf("mappings[%s]", common.Name)
		}

		if common.Name == "" {
			return validateError(field+".name", "is required")
		}
		if _, ok := seenNames[common.Name]; ok {
			return validateError(field+".name", "duplicate mapping name %q", common.Name)
		}
		seenNames[common.Name] = struct{}{}

		if err := validateSource(field, common); err != nil {
			return err
		}
		if err := validateMode(field, common); err != nil {
			return err
		}
		if common.Source.Table != "" || common.Source.RawSelect != "" {
			needsWarehouse = true
		}

		switch typed := mapping.(type) {
		case *NodeMapping:
			if err := validateNode(field, typed); err != nil {
				return err
			}
			nodesSoFar[common.Name] = typed

		case *EdgeMapping:
			if err := validateEdge(field, typed, nodesSoFar); err != nil {
				return err
			}
		}
	}

	if needsWarehouse {
		if err := c.validateSnowflake(); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateState() error {
	if c.State == nil {
		return nil
	}

	switch c.State.Backend {
	case StateBackendFile:
		if c.State.FilePath == "" {
			c.State.FilePath = DefaultStateFilePath
		}

	case StateBackendNone:

	default:
		return validateError("state.backend", "unknown backend %q", c.State.Backend)
	}

	return nil
}

func (c *Config) validateSnowflake() error {
	if c.Snowflake == nil {
		return validateError("snowflake", "is required when a mapping reads from the warehouse")
	}
	if c.Snowflake.Account == "" {
		return validateError("snowflake.account", "is required")
	}
	if c.Snowflake.User == "" {
		return validateError("snowflake.user", "is required")
	}
	if c.Snowflake.Password == "" && c.Snowflake.PrivateKeyPath == "" {
		return validateError("snowflake", "either password or private_key_path must be set")
	}

	return nil
}

func validateSource(field string, common *Common) error {
	forms := 0
	if common.Source.Table != "" {
		forms++
	}
	if common.Source.RawSelect != "" {
		forms++
	}
	if common.Source.FilePath != "" {
		forms++
	}

	if forms != 1 {
		return validateError(field+".source", "exactly one of table, select, or file must be set")
	}
	if common.Source.Where != "" && common.Source.Table == "" {
		return validateError(field+".source.where", "is only valid with a table source")
	}

	return nil
}

func validateMode(field string, common *Common) error {
	switch common.Mode {
	case ModeFull, ModeIncremental:
	default:
		return validateError(field+".mode", "unknown mode %q", common.Mode)
	}

	if common.Mode == ModeIncremental &&
		common.Source.RawSelect == "" &&
		(common.Delta == nil || common.Delta.UpdatedAtColumn == "") {
		return validateError(field+".delta.updated_at_column",
			"is required for incremental mode unless source.select is used")
	}

	if common.Delta != nil &&
		common.Delta.DeletedFlagColumn != "" &&
		common.Delta.DeletedFlagValue == nil {
		return validateError(field+".delta.deleted_flag_value",
			"is required when deleted_flag_column is set")
	}

	return nil
}

func validateNode(field string, node *NodeMapping) error {
	if len(node.Labels) == 0 {
		return validateError(field+".labels", "at least one label is required")
	}
	if node.Key.Column == "" || node.Key.Property == "" {
		return validateError(field+".key", "column and property are required")
	}

	return nil
}

func validateEdge(field string, edge *EdgeMapping, nodesSoFar map[string]*NodeMapping) error {
	if edge.Relationship == "" {
		return validateError(field+".relationship", "is required")
	}

	switch edge.Direction {
	case DirectionOut, DirectionIn:
	default:
		return validateError(field+".direction", "unknown direction %q", edge.Direction)
	}

	if edge.Key != nil && (edge.Key.Column == "" || edge.Key.Property == "") {
		return validateError(field+".key", "column and property are required")
	}

	if err := validateEndpoint(field+".from", edge.From, nodesSoFar); err != nil {
		return err
	}

	return validateEndpoint(field+".to", edge.To, nodesSoFar)
}

func validateEndpoint(field string, endpoint EdgeEndpoint, nodesSoFar map[string]*NodeMapping) error {
	node, ok := nodesSoFar[endpoint.NodeMapping]
	if !ok {
		return validateError(field+".node_mapping",
			"%q does not name a previously declared node mapping", endpoint.NodeMapping)
	}

	if len(endpoint.MatchOn) == 0 {
		return validateError(field+".match_on", "at least one match pair is required")
	}

	resolvesKey := false
	for i, match := range endpoint.MatchOn {
		if match.Column == "" || match.Property == "" {
			return validateError(fmt.Sprintf("%s.match_on[%d]", field, i),
				"column and property are required")
		}
		if match.Property == node.Key.Property {
			resolvesKey = true
		}
	}

	if !resolvesKey {
		return validateError(field+".match_on",
			"no pair resolves the key property %q of node mapping %q",
			node.Key.Property, endpoint.NodeMapping)
	}

	return nil
}
