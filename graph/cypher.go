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

package graph

import (
	"fmt"
	"strings"

	"github.com/snowgraph-io/snowgraph/config"
)

const (
	// all Cypher statements issued by the [Store] are listed below in the format of Go fmt.
	// Identifiers come from the trusted mapping config; values ride in as parameters.
	upsertNodesQueryTemplate   = "UNWIND $rows AS row MERGE (n:%s {%s: row.key}) SET n += row.props"
	deleteNodesQueryTemplate   = "UNWIND $rows AS row MATCH (n:%s {%s: row.key}) DETACH DELETE n"
	upsertEdgesQueryTemplate   = "UNWIND $rows AS row MATCH (src:%s {%s}) MATCH (tgt:%s {%s}) %s SET r += row.props"
	deleteEdgesQueryTemplate   = "UNWIND $rows AS row MATCH (src:%s {%s}) MATCH (tgt:%s {%s}) %s DELETE r"
	purgeAllQuery              = "MATCH (n) DETACH DELETE n"
	purgeNodesQueryTemplate    = "MATCH (n:%s) DETACH DELETE n"
	purgeEdgesQueryTemplate    = "MATCH (src:%s)-[r:%s]->(tgt:%s) DELETE r"
	createIndexQueryTemplate   = "CREATE INDEX ON :%s(%s)"
	mergeEdgeOutTemplate       = "MERGE (src)-[r:%s]->(tgt)"
	mergeEdgeInTemplate        = "MERGE (src)<-[r:%s]-(tgt)"
	mergeKeyedEdgeOutTemplate  = "MERGE (src)-[r:%s {%s: row.key}]->(tgt)"
	mergeKeyedEdgeInTemplate   = "MERGE (src)<-[r:%s {%s: row.key}]-(tgt)"
	matchEdgeOutTemplate       = "MATCH (src)-[r:%s]->(tgt)"
	matchEdgeInTemplate        = "MATCH (src)<-[r:%s]-(tgt)"
	matchKeyedEdgeOutTemplate  = "MATCH (src)-[r:%s {%s: row.key}]->(tgt)"
	matchKeyedEdgeInTemplate   = "MATCH (src)<-[r:%s {%s: row.key}]-(tgt)"
)

// labelExpr joins labels the way Cypher patterns expect, e.g. "Person:Worker".
func labelExpr(labels []string) string {
	return strings.Join(labels, ":")
}

// matchProps renders an endpoint match map for the given row field,
// e.g. "id: row.from.id" for properties ["id"] and field "from".
func matchProps(field string, properties []string) string {
	pairs := make([]string, len(properties))
	for i, property := range properties {
		pairs[i] = fmt.Sprintf("%s: row.%s.%s", property, field, property)
	}

	return strings.Join(pairs, ", ")
}

func upsertNodesQuery(mapping *config.NodeMapping) string {
	return fmt.Sprintf(upsertNodesQueryTemplate, labelExpr(mapping.Labels), mapping.Key.Property)
}

func deleteNodesQuery(mapping *config.NodeMapping) string {
	return fmt.Sprintf(deleteNodesQueryTemplate, labelExpr(mapping.Labels), mapping.Key.Property)
}

// edgeClause builds the MERGE (upserts) or MATCH (deletes) fragment for the
// edge itself, honoring the configured direction and optional edge key.
func edgeClause(mapping *config.EdgeMapping, merge bool) string {
	in := mapping.Direction == config.DirectionIn

	if mapping.Key != nil {
		template := mergeKeyedEdgeOutTemplate
		switch {
		case merge && in:
			template = mergeKeyedEdgeInTemplate
		case !merge && !in:
			template = matchKeyedEdgeOutTemplate
		case !merge && in:
			template = matchKeyedEdgeInTemplate
		}

		return fmt.Sprintf(template, mapping.Relationship, mapping.Key.Property)
	}

	template := mergeEdgeOutTemplate
	switch {
	case merge && in:
		template = mergeEdgeInTemplate
	case !merge && !in:
		template = matchEdgeOutTemplate
	case !merge && in:
		template = matchEdgeInTemplate
	}

	return fmt.Sprintf(template, mapping.Relationship)
}

func upsertEdgesQuery(mapping *config.EdgeMapping, fromLabels, toLabels []string) string {
	return fmt.Sprintf(upsertEdgesQueryTemplate,
		labelExpr(fromLabels), matchProps("from", mapping.From.Properties()),
		labelExpr(toLabels), matchProps("to", mapping.To.Properties()),
		edgeClause(mapping, true),
	)
}

func deleteEdgesQuery(mapping *config.EdgeMapping, fromLabels, toLabels []string) string {
	return fmt.Sprintf(deleteEdgesQueryTemplate,
		labelExpr(fromLabels), matchProps("from", mapping.From.Properties()),
		labelExpr(toLabels), matchProps("to", mapping.To.Properties()),
		edgeClause(mapping, false),
	)
}
