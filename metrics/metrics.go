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

// Package metrics exposes the loader's counters as a Prometheus text
// exposition.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultAddr is where the exposition endpoint binds.
const DefaultAddr = "0.0.0.0:9898"

// mappingLabel labels the per-mapping counter families.
const mappingLabel = "mapping"

// Metrics holds the loader's counters on a dedicated registry. Counter
// arithmetic is atomic; the HTTP handler never blocks writers.
type Metrics struct {
	registry *prometheus.Registry

	Runs        prometheus.Counter
	FailedRuns  prometheus.Counter
	RowsFetched prometheus.Counter
	RowsWritten prometheus.Counter
	RowsDeleted prometheus.Counter

	MappingRuns        *prometheus.CounterVec
	MappingFailedRuns  *prometheus.CounterVec
	MappingRowsFetched *prometheus.CounterVec
	MappingRowsWritten *prometheus.CounterVec
	MappingRowsDeleted *prometheus.CounterVec
}

// New creates a new instance of the [Metrics] with every counter registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		Runs: factory.NewCounter(prometheus.CounterOpts{
			Name: "snowgraph_runs",
			Help: "Total sync runs started.",
		}),
		FailedRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "snowgraph_failed_runs",
			Help: "Total sync runs that failed at least one mapping or the state save.",
		}),
		RowsFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "snowgraph_rows_fetched",
			Help: "Total rows fetched from sources.",
		}),
		RowsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "snowgraph_rows_written",
			Help: "Total node and edge upserts shipped to the graph.",
		}),
		RowsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "snowgraph_rows_deleted",
			Help: "Total node and edge deletes shipped to the graph.",
		}),

		MappingRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snowgraph_mapping_runs",
			Help: "Runs per mapping.",
		}, []string{mappingLabel}),
		MappingFailedRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snowgraph_mapping_failed_runs",
			Help: "Failed runs per mapping.",
		}, []string{mappingLabel}),
		MappingRowsFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snowgraph_mapping_rows_fetched",
			Help: "Rows fetched per mapping.",
		}, []string{mappingLabel}),
		MappingRowsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snowgraph_mapping_rows_written",
			Help: "Upserts shipped per mapping.",
		}, []string{mappingLabel}),
		MappingRowsDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snowgraph_mapping_rows_deleted",
			Help: "Deletes shipped per mapping.",
		}, []string{mappingLabel}),
	}
}

// Handler serves the text exposition on GET / and a 404 everywhere else.
func (m *Metrics) Handler() http.Handler {
	exposition := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" || r.Method != http.MethodGet {
			http.NotFound(w, r)

			return
		}

		exposition.ServeHTTP(w, r)
	})
}

// ListenAndServe blocks serving the exposition endpoint on addr.
func (m *Metrics) ListenAndServe(addr string) error {
	server := &http.Server{Addr: addr, Handler: m.Handler()}

	return server.ListenAndServe()
}
