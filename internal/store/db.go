package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS bills (
	bill_id          INTEGER PRIMARY KEY,
	state            TEXT NOT NULL DEFAULT '',
	bill_number      TEXT NOT NULL DEFAULT '',
	title            TEXT NOT NULL DEFAULT '',
	url              TEXT NOT NULL DEFAULT '',
	last_action_date DATE,
	last_action      TEXT NOT NULL DEFAULT '',
	status           INTEGER NOT NULL DEFAULT 0,
	status_date      DATE,
	relevance        INTEGER NOT NULL DEFAULT 0,
	checksum         TEXT NOT NULL,
	last_query       TEXT NOT NULL DEFAULT '',
	fetched_at       TIMESTAMPTZ NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS bill_snapshots (
	id               SERIAL PRIMARY KEY,
	bill_id          INTEGER NOT NULL REFERENCES bills(bill_id) ON DELETE CASCADE,
	title            TEXT NOT NULL DEFAULT '',
	last_action_date DATE,
	last_action      TEXT NOT NULL DEFAULT '',
	status           INTEGER NOT NULL DEFAULT 0,
	checksum         TEXT NOT NULL,
	snapshot_date    DATE NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (bill_id, snapshot_date)
);

CREATE TABLE IF NOT EXISTS search_runs (
	id         UUID PRIMARY KEY,
	query      TEXT NOT NULL,
	state      TEXT NOT NULL DEFAULT '',
	year       TEXT NOT NULL DEFAULT '',
	bill_count INTEGER NOT NULL DEFAULT 0,
	changed    INTEGER NOT NULL DEFAULT 0,
	started_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bill_snapshots_date ON bill_snapshots (snapshot_date);
CREATE INDEX IF NOT EXISTS idx_search_runs_started ON search_runs (started_at);
`

// NewDB opens a PostgreSQL connection and makes sure the archive schema exists
func NewDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}
