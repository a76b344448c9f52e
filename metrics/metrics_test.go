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

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestMetrics_exposition(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	m := New()
	m.Runs.Inc()
	m.RowsFetched.Add(5)
	m.MappingRuns.WithLabelValues("customers").Inc()
	m.MappingFailedRuns.WithLabelValues("orders").Inc()

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	is.NoErr(err)
	defer resp.Body.Close()

	is.Equal(resp.StatusCode, http.StatusOK)

	body, err := io.ReadAll(resp.Body)
	is.NoErr(err)

	text := string(body)
	is.True(strings.Contains(text, "snowgraph_runs 1"))
	is.True(strings.Contains(text, "snowgraph_rows_fetched 5"))
	is.True(strings.Contains(text, `snowgraph_mapping_runs{mapping="customers"} 1`))
	is.True(strings.Contains(text, `snowgraph_mapping_failed_runs{mapping="orders"} 1`))
}

func TestMetrics_notFound(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	server := httptest.NewServer(New().Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	is.NoErr(err)
	resp.Body.Close()
	is.Equal(resp.StatusCode, http.StatusNotFound)

	resp, err = http.Post(server.URL+"/", "text/plain", nil)
	is.NoErr(err)
	resp.Body.Close()
	is.Equal(resp.StatusCode, http.StatusNotFound)
}
