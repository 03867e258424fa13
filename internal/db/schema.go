package db

// SchemaSQL is the complete schema for fresh rover installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Tests
// load it via GetSchemaSQL() instead of hardcoding CREATE TABLE
// statements, so repository code referencing a missing column fails
// immediately at test time.
const SchemaSQL = `
-- Attempt records (append-only outcome log; rows are never updated)
CREATE TABLE IF NOT EXISTS attempts (
	id TEXT PRIMARY KEY,
	ts DATETIME NOT NULL,
	x REAL NOT NULL,
	y REAL NOT NULL,
	strategies TEXT NOT NULL DEFAULT '[]',
	success INTEGER NOT NULL CHECK(success IN (0, 1)),
	failure_reason TEXT,
	timing_snapshot TEXT NOT NULL DEFAULT '{}',
	session_id INTEGER,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_attempts_ts ON attempts(ts DESC);

-- Audio calibration baselines, one per motor channel
CREATE TABLE IF NOT EXISTS audio_baselines (
	channel TEXT PRIMARY KEY,
	dominant_freq REAL NOT NULL,
	amplitude REAL NOT NULL DEFAULT 0,
	calibrated_at DATETIME NOT NULL
);

-- Patrol sessions
CREATE TABLE IF NOT EXISTS patrol_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at DATETIME NOT NULL,
	ended_at DATETIME,
	pattern TEXT NOT NULL,
	coverage_percent REAL,
	attempts INTEGER NOT NULL DEFAULT 0,
	successes INTEGER NOT NULL DEFAULT 0
);

-- Learned control parameters
CREATE TABLE IF NOT EXISTS learned_parameters (
	name TEXT PRIMARY KEY,
	value REAL NOT NULL,
	samples INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Detection hotspots per coverage cell
CREATE TABLE IF NOT EXISTS hotspots (
	row INTEGER NOT NULL,
	col INTEGER NOT NULL,
	count INTEGER NOT NULL DEFAULT 1,
	last_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (row, col)
);
`

// GetSchemaSQL returns the authoritative schema for tests and fresh
// installs.
func GetSchemaSQL() string {
	return SchemaSQL
}
