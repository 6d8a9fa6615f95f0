package database

import "testing"

func TestOpenRunsMigrations(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'kv'`).Scan(&name)
	if err != nil {
		t.Fatalf("lookup kv table: %v", err)
	}
	if name != "kv" {
		t.Errorf("table = %q, want %q", name, "kv")
	}
}
