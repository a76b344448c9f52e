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

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Load reads a configuration file, resolves $VAR environment references,
// decodes the typed model and validates it. The file extension selects the
// parser: .yaml/.yml for YAML, anything else for JSON.
func Load(path string) (*Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, parseError(fmt.Errorf("read config file %q: %w", path, err))
	}

	raw := make(map[string]any)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(contents, &raw); err != nil {
			return nil, parseError(fmt.Errorf("parse YAML config from %q: %w", path, err))
		}

	default:
		if err := json.Unmarshal(contents, &raw); err != nil {
			return nil, parseError(fmt.Errorf("parse JSON config from %q: %w", path, err))
		}
	}

	cfg, err := decodeDocument(raw)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decodeDocument turns a raw config document into the typed model.
func decodeDocument(raw map[string]any) (*Config, error) {
	if err := resolveEnvRefs(raw, ""); err != nil {
		return nil, err
	}

	cfg := new(Config)
	if err := decodeStrict(raw, cfg); err != nil {
		return nil, parseError(fmt.Errorf("decode config: %w", err))
	}

	mappingsRaw, ok := raw["mappings"]
	if !ok {
		return cfg, nil
	}

	items, ok := mappingsRaw.([]any)
	if !ok {
		return nil, parseError(fmt.Errorf("mappings: expected a sequence, got %T", mappingsRaw))
	}

	cfg.Mappings = make([]Mapping, 0, len(items))
	for i, item := range items {
		mapping, err := decodeMapping(i, item)
		if err != nil {
			return nil, err
		}

		cfg.Mappings = append(cfg.Mappings, mapping)
	}

	return cfg, nil
}

// decodeMapping decodes one element of the mappings sequence into its tagged
// variant based on the "type" discriminator.
func decodeMapping(index int, item any) (Mapping, error) {
	field := fmt.Sprintf("mappings[%d]", index)

	doc, ok := item.(map[string]any)
	if !ok {
		return nil, parseError(fmt.Errorf("%s: expected an object, got %T", field, item))
	}

	kind, _ := doc["type"].(string)

	switch Kind(kind) {
	case KindNode:
		node := &NodeMapping{}
		if err := decodeStrict(doc, node); err != nil {
			return nil, parseError(fmt.Errorf("%s: decode node mapping: %w", field, err))
		}
		applyCommonDefaults(&node.CommonFields)

		return node, nil

	case KindEdge:
		edge := &EdgeMapping{}
		if err := decodeStrict(doc, edge); err != nil {
			return nil, parseError(fmt.Errorf("%s: decode edge mapping: %w", field, err))
		}
		applyCommonDefaults(&edge.CommonFields)
		if edge.Direction == "" {
			edge.Direction = DirectionOut
		}

		return edge, nil

	default:
		return nil, parseError(fmt.Errorf("%s: unknown mapping type %q", field, kind))
	}
}

func applyCommonDefaults(common *Common) {
	if common.Mode == "" {
		common.Mode = ModeFull
	}
}

// decodeStrict decodes a raw map into target, tolerating the numeric type
// loseness of JSON/YAML decoding. Keys without a matching field are ignored.
func decodeStrict(raw map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
		Metadata:         nil,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	return nil
}

// resolveEnvRefs walks the raw document and replaces every string value
// beginning with "$" with the value of the named environment variable.
// An unset variable is a fatal config error.
func resolveEnvRefs(value any, field string) error {
	switch typed := value.(type) {
	case map[string]any:
		for key, child := range typed {
			childField := key
			if field != "" {
				childField = field + "." + key
			}

			if str, ok := child.(string); ok {
				resolved, err := resolveEnvString(str, childField)
				if err != nil {
					return err
				}
				typed[key] = resolved

				continue
			}

			if err := resolveEnvRefs(child, childField); err != nil {
				return err
			}
		}

	case []any:
		for i, child := range typed {
			childField := fmt.Sprintf("%s[%d]", field, i)

			if str, ok := child.(string); ok {
				resolved, err := resolveEnvString(str, childField)
				if err != nil {
					return err
				}
				typed[i] = resolved

				continue
			}

			if err := resolveEnvRefs(child, childField); err != nil {
				return err
			}
		}
	}

	return nil
}

func resolveEnvString(value, field string) (string, error) {
	if !strings.HasPrefix(value, "$") {
		return value, nil
	}

	name := strings.TrimPrefix(value, "$")

	resolved, ok := os.LookupEnv(name)
	if !ok {
		return "", envUnsetError(field, name)
	}

	return resolved, nil
}
