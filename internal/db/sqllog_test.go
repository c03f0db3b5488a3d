package db

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"testing"
)

// captureHandler records log records for assertion in tests.
type captureHandler struct {
	mu      sync.Mutex
	records []map[string]slog.Value
	levels  []slog.Level
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := map[string]slog.Value{"msg": slog.StringValue(r.Message)}
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.records = append(h.records, m)
	h.levels = append(h.levels, r.Level)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func (h *captureHandler) last(t *testing.T) (map[string]slog.Value, slog.Level) {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.records) == 0 {
		t.Fatal("no log records captured")
	}
	return h.records[len(h.records)-1], h.levels[len(h.levels)-1]
}

func (h *captureHandler) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
	h.levels = nil
}

func openLogged(t *testing.T) (*sql.DB, *captureHandler) {
	t.Helper()
	handler := &captureHandler{}
	db := sql.OpenDB(NewStatementLogger(":memory:", slog.New(handler)))
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db, handler
}

func TestNewStatementLogger_nilLoggerUsesDefault(t *testing.T) {
	c := NewStatementLogger(":memory:", nil)
	sl, ok := c.(*statementLogger)
	if !ok {
		t.Fatalf("connector type = %T; want *statementLogger", c)
	}
	if sl.logger == nil {
		t.Fatal("logger is nil")
	}
}

func TestStatementLogger_execAndQuery(t *testing.T) {
	db, handler := openLogged(t)

	if _, err := db.Exec(`CREATE TABLE t (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	rec, level := handler.last(t)
	if rec["op"].String() != "exec" {
		t.Errorf("op = %q; want exec", rec["op"].String())
	}
	if rec["sql"].String() != `CREATE TABLE t (id INTEGER PRIMARY KEY)` {
		t.Errorf("sql = %q", rec["sql"].String())
	}
	if level != slog.LevelDebug {
		t.Errorf("level = %v; want debug", level)
	}
	if _, ok := rec["duration_ms"]; !ok {
		t.Error("missing duration_ms attribute")
	}

	handler.reset()
	var one int
	if err := db.QueryRow(`SELECT 1`).Scan(&one); err != nil {
		t.Fatalf("query row: %v", err)
	}
	rec, _ = handler.last(t)
	if rec["op"].String() != "query" {
		t.Errorf("op = %q; want query", rec["op"].String())
	}
}

func TestStatementLogger_argsRendered(t *testing.T) {
	db, handler := openLogged(t)

	if _, err := db.Exec(`CREATE TABLE t (id INTEGER, name TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	handler.reset()

	if _, err := db.Exec(`INSERT INTO t (id, name) VALUES (?, ?)`, 1, nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	rec, _ := handler.last(t)
	args, ok := rec["args"].Any().([]string)
	if !ok {
		t.Fatalf("args type = %T; want []string", rec["args"].Any())
	}
	if len(args) != 2 || args[0] != "1" || args[1] != "NULL" {
		t.Errorf("args = %v; want [1 NULL]", args)
	}
}

func TestStatementLogger_failedExecLoggedAtWarn(t *testing.T) {
	db, handler := openLogged(t)

	if _, err := db.Exec(`CREATE TABLE t (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO t (id) VALUES (1)`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	handler.reset()

	if _, err := db.Exec(`INSERT INTO t (id) VALUES (1)`); err == nil {
		t.Fatal("duplicate insert succeeded; want constraint error")
	}
	rec, level := handler.last(t)
	if level != slog.LevelWarn {
		t.Errorf("level = %v; want warn", level)
	}
	if _, ok := rec["error"]; !ok {
		t.Error("missing error attribute")
	}
}

func TestStatementLogger_ping(t *testing.T) {
	db, _ := openLogged(t)
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
