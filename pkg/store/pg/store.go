package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/de-tools/sec-atlas/pkg/models/domain"
	"github.com/de-tools/sec-atlas/pkg/models/store"
)

const defaultSchema = "public"

// PlaceholderPolicyName is the permissive select-only policy inserted after
// enabling RLS on a table that has no policies, so it stays queryable.
const PlaceholderPolicyName = "allow_select"

// Store runs fixed introspection queries and fix statements against one
// project's Postgres instance. Its lifetime is a single check or fix call.
type Store interface {
	ListTables(ctx context.Context) ([]store.TableRow, error)
	ListPolicies(ctx context.Context, table string) ([]store.PolicyRow, error)
	// EnableRLS enables the row-security flag on the table and, when no
	// policies exist, inserts the placeholder policy in the same
	// transaction. Reports whether the placeholder was created.
	EnableRLS(ctx context.Context, table string) (bool, error)
	Close() error
}

type pgStore struct {
	db *sql.DB
}

// Open establishes a short-lived connection to the project's data store.
// The caller must Close it before returning, on both success and failure
// paths.
func Open(ctx context.Context, dsn string) (Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, &domain.ConnectionError{Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &domain.ConnectionError{Err: err}
	}
	return &pgStore{db: db}, nil
}

// NewStore wraps an existing handle. Used by tests and callers that manage
// the connection themselves.
func NewStore(db *sql.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Close() error {
	return s.db.Close()
}

func (s *pgStore) ListTables(ctx context.Context) ([]store.TableRow, error) {
	query := `
		SELECT n.nspname, c.relname, c.relrowsecurity
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relkind = 'r'
		ORDER BY c.relname`

	rows, err := s.db.QueryContext(ctx, query, defaultSchema)
	if err != nil {
		return nil, fmt.Errorf("list tables failed: %w", err)
	}
	defer rows.Close()

	var tables []store.TableRow
	for rows.Next() {
		var t store.TableRow
		if err := rows.Scan(&t.Schema, &t.Name, &t.RLSEnabled); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table rows: %w", err)
	}
	return tables, nil
}

func (s *pgStore) ListPolicies(ctx context.Context, table string) ([]store.PolicyRow, error) {
	query := `
		SELECT policyname, cmd, roles, COALESCE(qual, ''), COALESCE(with_check, '')
		FROM pg_policies
		WHERE schemaname = $1 AND tablename = $2
		ORDER BY policyname`

	rows, err := s.db.QueryContext(ctx, query, defaultSchema, table)
	if err != nil {
		return nil, fmt.Errorf("list policies for %q failed: %w", table, err)
	}
	defer rows.Close()

	var policies []store.PolicyRow
	for rows.Next() {
		var p store.PolicyRow
		var roles pq.StringArray
		if err := rows.Scan(&p.Name, &p.Command, &roles, &p.Using, &p.WithCheck); err != nil {
			return nil, fmt.Errorf("scan policy row: %w", err)
		}
		p.Roles = roles
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policy rows: %w", err)
	}
	return policies, nil
}

func (s *pgStore) EnableRLS(ctx context.Context, table string) (bool, error) {
	logger := zerolog.Ctx(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	enable := fmt.Sprintf("ALTER TABLE %s.%s ENABLE ROW LEVEL SECURITY",
		pq.QuoteIdentifier(defaultSchema), pq.QuoteIdentifier(table))
	if _, err := tx.ExecContext(ctx, enable); err != nil {
		return false, fmt.Errorf("enable row level security on %q: %w", table, err)
	}

	var policyCount int
	countQuery := `SELECT COUNT(*) FROM pg_policies WHERE schemaname = $1 AND tablename = $2`
	if err := tx.QueryRowContext(ctx, countQuery, defaultSchema, table).Scan(&policyCount); err != nil {
		return false, fmt.Errorf("count policies for %q: %w", table, err)
	}

	placeholderCreated := false
	if policyCount == 0 {
		create := fmt.Sprintf("CREATE POLICY %s ON %s.%s FOR SELECT USING (true)",
			pq.QuoteIdentifier(PlaceholderPolicyName),
			pq.QuoteIdentifier(defaultSchema), pq.QuoteIdentifier(table))
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return false, fmt.Errorf("create placeholder policy on %q: %w", table, err)
		}
		placeholderCreated = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit row security fix for %q: %w", table, err)
	}

	logger.Debug().
		Str("table", table).
		Bool("placeholder_created", placeholderCreated).
		Msg("row level security enabled")

	return placeholderCreated, nil
}
