package migrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRun_appliesEmbeddedSchema(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if err := Run(ctx, db); err != nil {
		t.Fatalf("Run() = %v; want nil", err)
	}

	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='location_permissions'`).Scan(&name)
	if err != nil {
		t.Fatalf("location_permissions table missing: %v", err)
	}

	// Second run is a no-op.
	if err := Run(ctx, db); err != nil {
		t.Fatalf("second Run() = %v; want nil", err)
	}
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("schema_migrations rows = %d; want 1", count)
	}
}

func TestRunFS_ordersAndSkipsUnknownFiles(t *testing.T) {
	db := openMemory(t)
	fsys := fstest.MapFS{
		"m/0002_second.sql": {Data: []byte(`INSERT INTO seq (step) VALUES ('second');`)},
		"m/0001_first.sql":  {Data: []byte(`CREATE TABLE seq (id INTEGER PRIMARY KEY AUTOINCREMENT, step TEXT);`)},
		"m/README.md":       {Data: []byte(`not a migration`)},
	}

	if err := runFS(context.Background(), db, fsys, "m"); err != nil {
		t.Fatalf("runFS() = %v; want nil", err)
	}

	var step string
	if err := db.QueryRow(`SELECT step FROM seq ORDER BY id LIMIT 1`).Scan(&step); err != nil {
		t.Fatalf("select: %v", err)
	}
	if step != "second" {
		t.Errorf("step = %q; want second", step)
	}
}

func TestRunFS_failedMigrationNotRecorded(t *testing.T) {
	db := openMemory(t)
	fsys := fstest.MapFS{
		"m/0001_broken.sql": {Data: []byte(`CREATE TABLE oops (`)},
	}

	if err := runFS(context.Background(), db, fsys, "m"); err == nil {
		t.Fatal("runFS() = nil; want error")
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 0 {
		t.Errorf("schema_migrations rows = %d; want 0", count)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		in          string
		wantVersion string
		wantName    string
		wantOK      bool
	}{
		{in: "0001_location_permissions.sql", wantVersion: "0001", wantName: "location_permissions", wantOK: true},
		{in: "1_short.sql", wantOK: false},
		{in: "0001_x.txt", wantOK: false},
	}
	for _, tt := range tests {
		v, n, ok := parseMigrationFilename(tt.in)
		if ok != tt.wantOK || v != tt.wantVersion || n != tt.wantName {
			t.Errorf("parseMigrationFilename(%q) = (%q, %q, %v); want (%q, %q, %v)",
				tt.in, v, n, ok, tt.wantVersion, tt.wantName, tt.wantOK)
		}
	}
}
