package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Trips and payments cascade with their companion; the store still deletes
// them explicitly before the parent row.
const schema = `
CREATE TABLE IF NOT EXISTS companions (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trips (
    companion_id TEXT NOT NULL,
    date TEXT NOT NULL,
    outbound INTEGER NOT NULL DEFAULT 0,
    return_leg INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (companion_id, date),
    FOREIGN KEY (companion_id) REFERENCES companions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    companion_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    date TEXT NOT NULL,
    note TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (companion_id) REFERENCES companions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_trips_companion_id ON trips(companion_id);
CREATE INDEX IF NOT EXISTS idx_payments_companion_id ON payments(companion_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
