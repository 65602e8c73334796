// Package duckdb stores the short-read and long-read datasets in DuckDB.
// Each dataset gets its own variants, patients and genotypes tables,
// prefixed with the dataset name.
package duckdb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/marcboeker/go-duckdb"

	"varbrowser/api/models/constants"
	"varbrowser/api/models/constants/dataset"
)

// Store manages a DuckDB connection holding every dataset.
type Store struct {
	db   *sqlx.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sqlx.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sqlx.DB for direct access.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// table returns the dataset-scoped table name, rejecting unknown datasets
// so that the name can be safely interpolated into SQL.
func table(ds constants.Dataset, name string) (string, error) {
	if !dataset.IsKnown(string(ds)) {
		return "", fmt.Errorf("unknown dataset %q", ds)
	}
	return fmt.Sprintf("%s_%s", ds, name), nil
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, ds := range dataset.All {
		stmts := []string{
			fmt.Sprintf(`CREATE SEQUENCE IF NOT EXISTS %s_variants_seq`, ds),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s_variants (
				row_id BIGINT PRIMARY KEY DEFAULT nextval('%[1]s_variants_seq'),
				unique_key VARCHAR NOT NULL UNIQUE,
				chromosome VARCHAR NOT NULL,
				position BIGINT NOT NULL,
				external_id VARCHAR,
				ref VARCHAR NOT NULL,
				alt VARCHAR NOT NULL,
				ac BIGINT,
				af DOUBLE,
				an BIGINT
			)`, ds),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_variants_external_id_idx ON %[1]s_variants (external_id)`, ds),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s_patients (
				patient_id VARCHAR PRIMARY KEY,
				gender VARCHAR,
				diagnosis VARCHAR
			)`, ds),
			fmt.Sprintf(`CREATE SEQUENCE IF NOT EXISTS %s_genotypes_seq`, ds),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s_genotypes (
				row_id BIGINT PRIMARY KEY DEFAULT nextval('%[1]s_genotypes_seq'),
				variant_key VARCHAR NOT NULL,
				patient_id VARCHAR NOT NULL,
				genotype VARCHAR NOT NULL
			)`, ds),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_genotypes_variant_idx ON %[1]s_genotypes (variant_key)`, ds),
		}
		for _, stmt := range stmts {
			if _, err := s.db.Exec(stmt); err != nil {
				return err
			}
		}
	}
	return nil
}
