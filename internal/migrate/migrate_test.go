package migrate

import (
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

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestRun_AppliesEmbeddedMigrations(t *testing.T) {
	db := openMemory(t)

	if err := Run(db, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := count(t, db, tableName); got != 3 {
		t.Errorf("applied migrations = %d, want 3", got)
	}
	if got := count(t, db, "devices"); got != 4 {
		t.Errorf("devices = %d, want 4", got)
	}
	if got := count(t, db, "medications"); got != 3 {
		t.Errorf("medications = %d, want 3", got)
	}
	if got := count(t, db, "predictions"); got != 3 {
		t.Errorf("predictions = %d, want 3", got)
	}
	if got := count(t, db, "prediction_accuracy_days"); got != 7 {
		t.Errorf("prediction accuracy days = %d, want 7", got)
	}
	if got := count(t, db, "care_instructions"); got != 4 {
		t.Errorf("care instructions = %d, want 4", got)
	}
}

func TestRun_Idempotent(t *testing.T) {
	db := openMemory(t)

	if err := Run(db, nil); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if err := Run(db, nil); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if got := count(t, db, "patients"); got != 1 {
		t.Errorf("patients = %d, want 1 after two runs", got)
	}
}

func TestRun_OrdersByVersionAndSkipsOtherFiles(t *testing.T) {
	db := openMemory(t)
	fsys := fstest.MapFS{
		"sql/0002_insert.sql": {Data: []byte(`INSERT INTO t (id) VALUES (1);`)},
		"sql/0001_create.sql": {Data: []byte(`CREATE TABLE t (id INTEGER);`)},
		"sql/README.md":       {Data: []byte(`not a migration`)},
	}

	if err := run(db, fsys, nil); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := count(t, db, "t"); got != 1 {
		t.Errorf("rows = %d, want 1", got)
	}
}

func TestRun_FailedMigrationIsRolledBack(t *testing.T) {
	db := openMemory(t)
	fsys := fstest.MapFS{
		"sql/0001_create.sql": {Data: []byte(`CREATE TABLE t (id INTEGER);`)},
		"sql/0002_broken.sql": {Data: []byte(`INSERT INTO missing (id) VALUES (1);`)},
	}

	if err := run(db, fsys, nil); err == nil {
		t.Fatal("run() error = nil, want failure")
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM "+tableName+" WHERE version = '0002'").Scan(&n); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 0 {
		t.Errorf("broken migration recorded as applied")
	}
	if got := count(t, db, tableName); got != 1 {
		t.Errorf("applied = %d, want 1", got)
	}
}

func TestRun_DuplicateVersion(t *testing.T) {
	db := openMemory(t)
	fsys := fstest.MapFS{
		"sql/0001_a.sql": {Data: []byte(`SELECT 1;`)},
		"sql/0001_b.sql": {Data: []byte(`SELECT 1;`)},
	}
	if err := run(db, fsys, nil); err == nil {
		t.Fatal("run() error = nil, want duplicate version error")
	}
}

func TestParseFilename(t *testing.T) {
	tests := map[string]bool{
		"0001_schema.sql": true,
		"1_schema.sql":    false,
		"0001schema.sql":  false,
		"0001_schema.txt": false,
	}
	for name, want := range tests {
		if got := migrationFileRe.MatchString(name); got != want {
			t.Errorf("match(%q) = %v, want %v", name, got, want)
		}
	}
}
