package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the audit trail to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS session_loads (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			source        TEXT,
			success       INTEGER NOT NULL,
			duration_ms   INTEGER,
			prices        INTEGER,
			change_points INTEGER,
			events        INTEGER,
			strong_events INTEGER,
			impacts       INTEGER,
			significant   INTEGER,
			error         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_loads_ts ON session_loads(timestamp)`,

		`CREATE TABLE IF NOT EXISTS deliveries (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			channel   TEXT,
			kind      TEXT,
			command   TEXT,
			success   INTEGER NOT NULL,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_ts ON deliveries(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func stamp(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Unix()
}

func (r *SQLiteRecorder) RecordLoad(evt *LoadEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO session_loads
		(timestamp, source, success, duration_ms, prices, change_points, events,
		 strong_events, impacts, significant, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		stamp(evt.At), evt.Source, evt.Success, evt.Duration.Milliseconds(),
		evt.Prices, evt.ChangePoints, evt.Events,
		evt.StrongEvents, evt.Impacts, evt.Significant, evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) RecordDelivery(evt *DeliveryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO deliveries
		(timestamp, channel, kind, command, success, error)
		VALUES (?,?,?,?,?,?)`,
		stamp(evt.At), evt.Channel, evt.Kind, evt.Command, evt.Success, evt.Error,
	)
	return err
}

// RecentLoads returns the newest load attempts first.
func (r *SQLiteRecorder) RecentLoads(limit int) ([]LoadEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, source, success, duration_ms, prices, change_points,
		events, strong_events, impacts, significant, error
		FROM session_loads ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query loads: %w", err)
	}
	defer rows.Close()

	var out []LoadEvent
	for rows.Next() {
		var (
			e      LoadEvent
			ts, ms int64
		)
		if err := rows.Scan(&ts, &e.Source, &e.Success, &ms, &e.Prices, &e.ChangePoints,
			&e.Events, &e.StrongEvents, &e.Impacts, &e.Significant, &e.Error); err != nil {
			return nil, fmt.Errorf("scan load: %w", err)
		}
		e.At = time.Unix(ts, 0)
		e.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
