package catalog

import "database/sql"

// SchemaVersion is the code's expected schema version. Opening a catalog
// whose config.schema_version exceeds this is a SchemaTooNew error; opening
// one whose version is behind runs the pending migrations below.
const SchemaVersion = 1

// PhashVersion pins the perceptual-hash algorithm (internal/hasher). Any
// change to its decoder, resize, orientation handling, BT.601 coefficients,
// or bit ordering must bump this constant — see internal/hasher's doc
// comment for the stability contract this enforces.
const PhashVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS config (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sources (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    path          TEXT UNIQUE NOT NULL,
    last_scanned  DATETIME
);

CREATE TABLE IF NOT EXISTS photos (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    source_id   INTEGER NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
    path        TEXT UNIQUE NOT NULL,
    sha256      TEXT,
    size        INTEGER NOT NULL,
    mtime       INTEGER NOT NULL,
    format      TEXT NOT NULL,
    phash       INTEGER,
    dhash       INTEGER,
    captured_at DATETIME,
    camera_model TEXT,
    orientation INTEGER,
    group_id    INTEGER REFERENCES groups(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS groups (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    confidence TEXT NOT NULL,
    sot_photo_id INTEGER
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id INTEGER NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    photo_id INTEGER NOT NULL REFERENCES photos(id) ON DELETE CASCADE,
    PRIMARY KEY (group_id, photo_id)
);

CREATE INDEX IF NOT EXISTS idx_photos_sha256 ON photos(sha256);
CREATE INDEX IF NOT EXISTS idx_photos_phash ON photos(phash);
CREATE INDEX IF NOT EXISTS idx_photos_source ON photos(source_id);
CREATE INDEX IF NOT EXISTS idx_photos_group ON photos(group_id);
CREATE INDEX IF NOT EXISTS idx_photos_exif ON photos(captured_at, camera_model);
`

// migration is a pure function from connection to schema change, applied
// inside a single transaction when config.schema_version is behind
// SchemaVersion. There are no migrations yet beyond the version-1 base
// schema; this slice is where future ones are appended, run in order.
var migrations []func(tx *sql.Tx) error
