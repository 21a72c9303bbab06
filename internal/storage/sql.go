package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour used by SQLStore.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore keeps entries in a (namespace, item_key) keyed table.
type SQLStore struct {
	db        *sql.DB
	dialect   Dialect
	table     string
	namespace string
}

// OpenSQL opens dsn with the driver for dialect and creates the table when
// missing. For sqlite the DSN is a file path.
func OpenSQL(ctx context.Context, dialect Dialect, dsn, table, namespace string) (*SQLStore, error) {
	if table == "" {
		table = "local_storage"
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("sql storage: invalid table name %q", table)
	}
	if dialect == DialectSQLite && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("sql storage: open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// single writer
		db.SetMaxOpenConns(1)
	}
	s := &SQLStore{db: db, dialect: dialect, table: table, namespace: namespaceOr(namespace)}
	if err := s.createTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) createTable(ctx context.Context) error {
	var q string
	switch s.dialect {
	case DialectMySQL:
		q = `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
			namespace VARCHAR(191) NOT NULL,
			item_key VARCHAR(191) NOT NULL,
			item_value LONGBLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (namespace, item_key)
		)`
	case DialectSQLite:
		q = `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
			namespace TEXT NOT NULL,
			item_key TEXT NOT NULL,
			item_value BLOB NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (namespace, item_key)
		)`
	default:
		return fmt.Errorf("sql storage: unsupported dialect %q", s.dialect)
	}
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("sql storage: create table: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT item_value FROM `+s.table+` WHERE namespace = ? AND item_key = ?`,
		s.namespace, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sql storage: get %s: %w", key, err)
	}
	return v, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	var q string
	if s.dialect == DialectMySQL {
		q = `INSERT INTO ` + s.table + ` (namespace, item_key, item_value) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE item_value = VALUES(item_value)`
	} else {
		q = `INSERT INTO ` + s.table + ` (namespace, item_key, item_value) VALUES (?, ?, ?)
			ON CONFLICT(namespace, item_key) DO UPDATE SET
				item_value = excluded.item_value,
				updated_at = CURRENT_TIMESTAMP`
	}
	if value == nil {
		value = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, q, s.namespace, key, value); err != nil {
		return fmt.Errorf("sql storage: set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE namespace = ? AND item_key = ?`, s.namespace, key)
	if err != nil {
		return fmt.Errorf("sql storage: remove %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE namespace = ?`, s.namespace); err != nil {
		return fmt.Errorf("sql storage: clear: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }
