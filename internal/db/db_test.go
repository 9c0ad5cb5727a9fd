package db

import (
	"context"
	"sync/atomic"
	"testing"
)

func TestOpen(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("Expected a single connection, got max %d", got)
	}

	if _, err := db.Exec("CREATE TABLE scratch (id INTEGER)"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// A second :memory: connection would not see the table.
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name = 'scratch'").Scan(&n); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected table to be visible on the shared connection, got %d", n)
	}
}

func TestMigrate(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	schema := `
	CREATE TABLE test (
		id INTEGER PRIMARY KEY,
		name TEXT
	);
	`
	ctx := context.Background()
	if err := db.Migrate(ctx, schema); err != nil {
		t.Fatalf("Migration failed: %v", err)
	}

	_, err = db.Exec("INSERT INTO test (name) VALUES (?)", "foo")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	var name string
	err = db.QueryRow("SELECT name FROM test WHERE id = 1").Scan(&name)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if name != "foo" {
		t.Errorf("Expected foo, got %s", name)
	}
}

func TestInit(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if _, err := db.Exec("SELECT 1 FROM tasks LIMIT 1"); err != nil {
		t.Fatalf("tasks table does not exist or query failed: %v", err)
	}
}

func TestOnChange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var calls atomic.Int32
	db.SetOnChange(func(context.Context) { calls.Add(1) })

	db.triggerChange(ctx)
	if got := calls.Load(); got != 1 {
		t.Fatalf("Expected 1 call, got %d", got)
	}

	db.DisableOnChange()
	db.triggerChange(ctx)
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected hook to stay silent while disabled, got %d calls", got)
	}

	db.EnableOnChange()
	db.triggerChange(ctx)
	if got := calls.Load(); got != 2 {
		t.Errorf("Expected 2 calls after re-enabling, got %d", got)
	}
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Init(context.Background()); err != nil {
		t.Fatalf("Failed to init database: %v", err)
	}
	return db
}
