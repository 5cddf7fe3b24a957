package postgres

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS companions (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS trips (
    companion_id TEXT NOT NULL REFERENCES companions(id) ON DELETE CASCADE,
    date DATE NOT NULL,
    outbound BOOLEAN NOT NULL DEFAULT FALSE,
    return_leg BOOLEAN NOT NULL DEFAULT FALSE,
    PRIMARY KEY (companion_id, date)
);

CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    companion_id TEXT NOT NULL REFERENCES companions(id) ON DELETE CASCADE,
    amount NUMERIC NOT NULL,
    date TIMESTAMPTZ NOT NULL,
    note TEXT,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payments_companion_id ON payments(companion_id);
`

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
