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

package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
)

func TestFileStore_roundTrip(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))

	records, err := store.Load()
	is.NoErr(err)
	is.Equal(len(records), 0)

	records["customers"] = Record{LastUpdatedAt: "2024-01-01T00:00:00Z", InitialFullLoadDone: true}
	records["orders"] = Record{}
	is.NoErr(store.Save(records))

	loaded, err := store.Load()
	is.NoErr(err)
	is.Equal(loaded, records)
}

func TestFileStore_saveReplacesAtomically(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	store := NewFileStore(path)

	is.NoErr(store.Save(map[string]Record{"a": {LastUpdatedAt: "1"}}))
	is.NoErr(store.Save(map[string]Record{"a": {LastUpdatedAt: "2"}}))

	loaded, err := store.Load()
	is.NoErr(err)
	is.Equal(loaded["a"].LastUpdatedAt, "2")

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	is.NoErr(err)
	is.Equal(len(entries), 1)
}

func TestFileStore_corruptIsFatal(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	path := filepath.Join(t.TempDir(), "state.json")
	is.NoErr(os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load()
	is.True(errors.Is(err, ErrCorrupt))
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	is := is.New(t)

	store := NewDiscard()
	is.NoErr(store.Save(map[string]Record{"a": {LastUpdatedAt: "1"}}))

	records, err := store.Load()
	is.NoErr(err)
	is.Equal(len(records), 0)
}
