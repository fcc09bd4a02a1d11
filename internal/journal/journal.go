// Package journal keeps an append-only SQLite record of every dispatched action.
//
// The journal is an audit trail. Nothing reads it back into the store; state
// still starts empty on every run.
package journal

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "modernc.org/sqlite"

	"github.com/abelbrown/booklib/internal/state"
)

// Journal handles SQLite persistence of actions. NOT an interface - concrete type.
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// Entry is one recorded action.
type Entry struct {
	Seq     int64
	At      time.Time
	Type    string
	Payload string // JSON encoding of the action value
}

// Open creates or opens the journal at path. ":memory:" gives a private
// in-memory journal, which is what tests use.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own empty database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	j := &Journal{db: db}
	if err := j.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return j, nil
}

func (j *Journal) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS actions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		at_unix_nano INTEGER NOT NULL,
		type TEXT NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_actions_type ON actions(type);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}

// Record appends a with the given timestamp and returns its sequence number.
func (j *Journal) Record(at time.Time, a state.Action) (int64, error) {
	payload, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(a)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", a.Type(), err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	res, err := j.db.Exec(
		`INSERT INTO actions (at_unix_nano, type, payload) VALUES (?, ?, ?)`,
		at.UnixNano(), string(a.Type()), payload,
	)
	if err != nil {
		return 0, fmt.Errorf("insert action: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries of type t, newest first. An empty t matches all.
func (j *Journal) Recent(limit int, t state.ActionType) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	var (
		rows *sql.Rows
		err  error
	)
	if t == "" {
		rows, err = j.db.Query(
			`SELECT seq, at_unix_nano, type, payload FROM actions ORDER BY seq DESC LIMIT ?`,
			limit,
		)
	} else {
		rows, err = j.db.Query(
			`SELECT seq, at_unix_nano, type, payload FROM actions WHERE type = ? ORDER BY seq DESC LIMIT ?`,
			string(t), limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var nanos int64
		if err := rows.Scan(&e.Seq, &nanos, &e.Type, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		e.At = time.Unix(0, nanos)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns how many actions of type t were recorded. An empty t counts all.
func (j *Journal) Count(t state.ActionType) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var n int
	var err error
	if t == "" {
		err = j.db.QueryRow(`SELECT COUNT(*) FROM actions`).Scan(&n)
	} else {
		err = j.db.QueryRow(`SELECT COUNT(*) FROM actions WHERE type = ?`, string(t)).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return n, nil
}

// Listener returns a store listener that records every dispatch.
// Write failures go to onErr (which may be nil); they never reach the store.
func (j *Journal) Listener(onErr func(error)) state.Listener {
	return func(a state.Action, _, _ state.State) {
		if _, err := j.Record(time.Now(), a); err != nil && onErr != nil {
			onErr(err)
		}
	}
}
