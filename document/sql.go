package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bitrise-io/docs-ai-assistant/logger"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour spoken by SQLStore.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLStore persists entities in a single table. Fields are stored as a JSON object.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// OpenSQLStore opens dsn with the driver registered for dialect and prepares the schema.
func OpenSQLStore(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	var driver string
	switch dialect {
	case DialectSQLite:
		driver = "sqlite"
	case DialectPostgres:
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported SQL dialect: %s", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// A single connection keeps :memory: databases shared and serializes writers.
		db.SetMaxOpenConns(1)
	}

	store, err := NewSQLStore(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open database and creates the entities table when missing.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: dialect, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate entities table: %w", err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		fields TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Get(ctx context.Context, id string) (Entity, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT id, kind, fields, updated_at FROM entities WHERE id = ?"), id)
	return scanEntity(row)
}

func (s *SQLStore) Create(ctx context.Context, kind Kind, fields FieldSet) (Entity, error) {
	e, err := NewEntity(kind, fields, s.now())
	if err != nil {
		return Entity{}, err
	}

	data, err := json.Marshal(e.Fields)
	if err != nil {
		return Entity{}, fmt.Errorf("failed to encode fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		s.rebind("INSERT INTO entities (id, kind, fields, updated_at) VALUES (?, ?, ?, ?)"),
		e.ID, string(e.Kind), string(data), e.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Entity{}, fmt.Errorf("failed to insert entity: %w", err)
	}

	logger.Debugw("entity created", "id", e.ID, "kind", e.Kind)
	return e, nil
}

func (s *SQLStore) Patch(ctx context.Context, id string, fields FieldSet) (Entity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entity{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := "SELECT id, kind, fields, updated_at FROM entities WHERE id = ?"
	if s.dialect == DialectPostgres {
		query += " FOR UPDATE"
	}
	current, err := scanEntity(tx.QueryRowContext(ctx, s.rebind(query), id))
	if err != nil {
		return Entity{}, err
	}

	patched, err := ApplyPatch(current, fields, s.now())
	if err != nil {
		return Entity{}, err
	}

	data, err := json.Marshal(patched.Fields)
	if err != nil {
		return Entity{}, fmt.Errorf("failed to encode fields: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		s.rebind("UPDATE entities SET fields = ?, updated_at = ? WHERE id = ?"),
		string(data), patched.UpdatedAt.Format(time.RFC3339Nano), id)
	if err != nil {
		return Entity{}, fmt.Errorf("failed to update entity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Entity{}, fmt.Errorf("failed to commit entity update: %w", err)
	}
	return patched, nil
}

// rebind turns ? placeholders into $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func scanEntity(row *sql.Row) (Entity, error) {
	var (
		e         Entity
		kind      string
		fields    string
		updatedAt string
	)
	err := row.Scan(&e.ID, &kind, &fields, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entity{}, ErrNotFound
	}
	if err != nil {
		return Entity{}, fmt.Errorf("failed to read entity: %w", err)
	}

	e.Kind = Kind(kind)
	if err := json.Unmarshal([]byte(fields), &e.Fields); err != nil {
		return Entity{}, fmt.Errorf("failed to decode fields of %s: %w", e.ID, err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return Entity{}, fmt.Errorf("failed to parse updated_at of %s: %w", e.ID, err)
	}
	return e, nil
}
