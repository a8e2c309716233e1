package db

import (
	"path/filepath"
	"strings"
	"testing"

	"respirate-server/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "explicit dsn wins",
			cfg:  config.Config{SQLiteDSN: "file:custom.db?mode=ro", SQLitePath: "ignored.db"},
			want: "file:custom.db?mode=ro",
		},
		{
			name: "plain path gets params",
			cfg:  config.Config{SQLitePath: filepath.Join(dir, "a", "app.db")},
			want: "file:" + filepath.Join(dir, "a", "app.db") + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		},
		{
			name: "file prefix with query",
			cfg:  config.Config{SQLitePath: "file:" + filepath.Join(dir, "b.db") + "?cache=shared"},
			want: "file:" + filepath.Join(dir, "b.db") + "?cache=shared&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		},
		{
			name: "memory",
			cfg:  config.Config{SQLitePath: ":memory:"},
			want: "file::memory:?cache=shared&_foreign_keys=on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			if err != nil {
				t.Fatalf("buildDSN() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("buildDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpen_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "respirate.db")
	cfg := config.Config{SQLiteDriver: "sqlite3", SQLitePath: path, SQLiteMaxOpenConns: 1, SQLiteMaxIdleConns: 1}

	conn, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = Close(conn) }()

	var mode string
	if err := conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestOpen_WithQueryLogging(t *testing.T) {
	cfg := config.Config{SQLitePath: filepath.Join(t.TempDir(), "log.db"), SQLiteLogQueries: true, SQLiteMaxOpenConns: 1}

	conn, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = Close(conn) }()

	if _, ok := conn.Driver().(unsupportedDriver); !ok {
		t.Errorf("driver = %T, want query log connector driver", conn.Driver())
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Fatalf("Close(nil) = %v, want nil", err)
	}
}
