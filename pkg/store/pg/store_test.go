package pg

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStore_ListTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"nspname", "relname", "relrowsecurity"}).
		AddRow("public", "orders", false).
		AddRow("public", "users", true)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT n.nspname, c.relname, c.relrowsecurity
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relkind = 'r'
		ORDER BY c.relname`)).
		WithArgs("public").
		WillReturnRows(rows)

	s := NewStore(db)
	tables, err := s.ListTables(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	if tables[0].Name != "orders" || tables[0].RLSEnabled {
		t.Errorf("unexpected first table: %+v", tables[0])
	}
	if tables[1].Name != "users" || !tables[1].RLSEnabled {
		t.Errorf("unexpected second table: %+v", tables[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStore_ListPolicies(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"policyname", "cmd", "roles", "qual", "with_check"}).
		AddRow("orders_select", "SELECT", "{authenticated,anon}", "(true)", "")

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT policyname, cmd, roles, COALESCE(qual, ''), COALESCE(with_check, '')
		FROM pg_policies
		WHERE schemaname = $1 AND tablename = $2
		ORDER BY policyname`)).
		WithArgs("public", "orders").
		WillReturnRows(rows)

	s := NewStore(db)
	policies, err := s.ListPolicies(context.Background(), "orders")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(policies) != 1 {
		t.Fatalf("expected 1 policy, got %d", len(policies))
	}
	p := policies[0]
	if p.Name != "orders_select" || p.Command != "SELECT" {
		t.Errorf("unexpected policy: %+v", p)
	}
	if len(p.Roles) != 2 || p.Roles[0] != "authenticated" || p.Roles[1] != "anon" {
		t.Errorf("unexpected roles: %v", p.Roles)
	}
	if p.Using != "(true)" || p.WithCheck != "" {
		t.Errorf("unexpected expressions: using=%q check=%q", p.Using, p.WithCheck)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStore_EnableRLS_ExistingPoliciesSkipPlaceholder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`ALTER TABLE "public"."orders" ENABLE ROW LEVEL SECURITY`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM pg_policies WHERE schemaname = $1 AND tablename = $2`)).
		WithArgs("public", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectCommit()

	s := NewStore(db)
	placeholderCreated, err := s.EnableRLS(context.Background(), "orders")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if placeholderCreated {
		t.Error("expected placeholder insertion to be skipped")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStore_EnableRLS_NoPoliciesCreatesPlaceholder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`ALTER TABLE "public"."orders" ENABLE ROW LEVEL SECURITY`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM pg_policies WHERE schemaname = $1 AND tablename = $2`)).
		WithArgs("public", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE POLICY "allow_select" ON "public"."orders" FOR SELECT USING (true)`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	s := NewStore(db)
	placeholderCreated, err := s.EnableRLS(context.Background(), "orders")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !placeholderCreated {
		t.Error("expected placeholder policy to be created")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStore_EnableRLS_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`ALTER TABLE "public"."missing" ENABLE ROW LEVEL SECURITY`)).
		WillReturnError(errors.New(`relation "missing" does not exist`))
	mock.ExpectRollback()

	s := NewStore(db)
	_, err = s.EnableRLS(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected an error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
