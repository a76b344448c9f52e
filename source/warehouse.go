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
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/pem"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/snowflakedb/gosnowflake"
	"github.com/youmark/pkcs8"

	"github.com/snowgraph-io/snowgraph/config"
	"github.com/snowgraph-io/snowgraph/planner"
	"github.com/snowgraph-io/snowgraph/schema"
)

// WarehouseReader executes query plans against Snowflake and streams the
// result rows. The underlying [sql.DB] is opened lazily on first use and
// owned by the reader.
type WarehouseReader struct {
	cfg    config.SnowflakeConfig
	logger zerolog.Logger

	openOnce sync.Once
	db       *sql.DB
	openErr  error
}

// NewWarehouseReader creates a new instance of the [WarehouseReader].
func NewWarehouseReader(cfg config.SnowflakeConfig, logger zerolog.Logger) *WarehouseReader {
	return &WarehouseReader{cfg: cfg, logger: logger}
}

// Open executes the plan's SQL with its bound parameters and returns the
// resulting row stream. The configured query timeout bounds the query and
// the subsequent fetching.
func (r *WarehouseReader) Open(ctx context.Context, plan planner.QueryPlan) (RowStream, error) {
	r.openOnce.Do(func() {
		r.db, r.openErr = openWarehouse(r.cfg)
	})
	if r.openErr != nil {
		return nil, fmt.Errorf("open snowflake connection: %w", r.openErr)
	}

	cancel := context.CancelFunc(func() {})
	if r.cfg.QueryTimeoutMS > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.QueryTimeoutMS)*time.Millisecond)
	}

	rows, err := r.db.QueryContext(ctx, plan.SQL, plan.Args...)
	if err != nil {
		cancel()

		return nil, fmt.Errorf("execute query: %w", err)
	}

	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		cancel()

		return nil, fmt.Errorf("read result columns: %w", err)
	}

	return &sqlStream{rows: rows, columns: columns, cancel: cancel}, nil
}

// Close releases the underlying connection pool.
func (r *WarehouseReader) Close() error {
	if r.db == nil {
		return nil
	}

	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close snowflake connection: %w", err)
	}

	return nil
}

// openWarehouse builds the DSN from the resolved credentials and session
// settings. If a private key path is configured, keypair auth is used and
// the password acts as the optional key passphrase; otherwise password auth.
func openWarehouse(cfg config.SnowflakeConfig) (*sql.DB, error) {
	sfCfg := gosnowflake.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Role:      cfg.Role,
	}

	if cfg.PrivateKeyPath != "" {
		key, err := loadPrivateKey(cfg.PrivateKeyPath, cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("load private key: %w", err)
		}

		sfCfg.PrivateKey = key
		sfCfg.Authenticator = gosnowflake.AuthTypeJwt
		sfCfg.Password = ""
	}

	dsn, err := gosnowflake.DSN(&sfCfg)
	if err != nil {
		return nil, fmt.Errorf("build snowflake DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snowflake driver: %w", err)
	}

	return db, nil
}

// loadPrivateKey reads a PKCS#8 PEM private key, decrypting it with the
// passphrase when one is given.
func loadPrivateKey(path, passphrase string) (*rsa.PrivateKey, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}

	block, _ := pem.Decode(contents)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %q", path)
	}

	if passphrase != "" {
		key, err := pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes, []byte(passphrase))
		if err != nil {
			return nil, fmt.Errorf("decrypt PKCS#8 key: %w", err)
		}

		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse PKCS#8 key: %w", err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("key in %q is %T, want RSA", path, parsed)
	}

	return key, nil
}

// sqlStream adapts [sql.Rows] to the [RowStream] interface, keeping
// server-reported types. Each row is a map keyed by column name, so the rows
// it yields do not preserve column order.
type sqlStream struct {
	rows    *sql.Rows
	columns []string
	cancel  context.CancelFunc
	current schema.Row
	err     error
}

func (s *sqlStream) Next(ctx context.Context) bool {
	if s.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		s.err = err

		return false
	}

	if !s.rows.Next() {
		s.err = s.rows.Err()

		return false
	}

	cells := make([]any, len(s.columns))
	pointers := make([]any, len(s.columns))
	for i := range cells {
		pointers[i] = &cells[i]
	}

	if err := s.rows.Scan(pointers...); err != nil {
		s.err = fmt.Errorf("scan row: %w", err)

		return false
	}

	row := make(schema.Row, len(s.columns))
	for i, column := range s.columns {
		row[column] = normalizeCell(cells[i])
	}
	s.current = row

	return true
}

func (s *sqlStream) Row() schema.Row { return s.current }

func (s *sqlStream) Err() error { return s.err }

func (s *sqlStream) Close() error {
	defer s.cancel()

	if err := s.rows.Close(); err != nil {
		return fmt.Errorf("close rows: %w", err)
	}

	return nil
}

// normalizeCell keeps driver values in the closed cell-type set: null,
// boolean, integer, floating-point, string, or timestamp.
func normalizeCell(value any) any {
	switch typed := value.(type) {
	case []byte:
		return string(typed)
	default:
		return typed
	}
}
