package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// ledgerVersion is stored in schema_version. Ledgers written with another
// version are refused rather than migrated.
const ledgerVersion = 1

// ErrSchemaMismatch reports a ledger written by a different jamsync version.
var ErrSchemaMismatch = errors.New("history ledger version mismatch")

// ensureSchema creates the tables of a fresh ledger and checks the version of
// an existing one.
func (s *Store) ensureSchema(ctx context.Context) error {
	version, err := s.storedVersion(ctx)
	if err != nil {
		return err
	}
	switch version {
	case 0:
		return s.createSchema(ctx)
	case ledgerVersion:
		return nil
	}
	return fmt.Errorf("%w: %s has version %d, jamsync expects %d; move it aside and rerun 'jamsync history' to start a new ledger",
		ErrSchemaMismatch, s.path, version, ledgerVersion)
}

// storedVersion returns 0 for a database without ledger tables.
func (s *Store) storedVersion(ctx context.Context) (int, error) {
	var tables int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'",
	).Scan(&tables)
	if err != nil {
		return 0, fmt.Errorf("inspect history ledger: %w", err)
	}
	if tables == 0 {
		return 0, nil
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s has an empty schema_version table", ErrSchemaMismatch, s.path)
	}
	if err != nil {
		return 0, fmt.Errorf("read history ledger version: %w", err)
	}
	return version, nil
}

func (s *Store) createSchema(ctx context.Context) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin ledger setup: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create ledger tables: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", ledgerVersion); err != nil {
			return fmt.Errorf("record ledger version: %w", err)
		}
		return tx.Commit()
	})
}
