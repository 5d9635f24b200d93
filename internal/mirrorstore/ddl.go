// Package mirrorstore implements the store initializer: it creates and
// verifies the structural tables and per-type primitive tables, and
// enforces identity of the on-disk config against the schema and options a
// Mirror was constructed with.
//
// DDL is expressed as Go string constants assembled into an ordered slice.
package mirrorstore

// Version is embedded in the meta fingerprint. Any change to the mapping
// rules or column encoding below requires bumping this string; an old
// database then fails to open on reopen.
const Version = "MIRROR_v3"

const createMeta = `CREATE TABLE IF NOT EXISTS meta (
	zero INTEGER PRIMARY KEY CHECK (zero = 0),
	config TEXT NOT NULL
);`

const createUpdates = `CREATE TABLE IF NOT EXISTS updates (
	rowid INTEGER PRIMARY KEY,
	time_epoch_millis INTEGER NOT NULL
);`

const createObjects = `CREATE TABLE IF NOT EXISTS objects (
	id TEXT PRIMARY KEY,
	typename TEXT NOT NULL,
	last_update INTEGER REFERENCES updates(rowid)
);`

const createLinks = `CREATE TABLE IF NOT EXISTS links (
	rowid INTEGER PRIMARY KEY,
	parent_id TEXT NOT NULL REFERENCES objects(id),
	fieldname TEXT NOT NULL,
	child_id TEXT,
	UNIQUE (parent_id, fieldname)
);`

const idxLinksParent = `CREATE INDEX IF NOT EXISTS idx_links_parent ON links(parent_id, fieldname);`

const createConnections = `CREATE TABLE IF NOT EXISTS connections (
	rowid INTEGER PRIMARY KEY,
	object_id TEXT NOT NULL REFERENCES objects(id),
	fieldname TEXT NOT NULL,
	last_update INTEGER REFERENCES updates(rowid),
	total_count INTEGER,
	has_next_page INTEGER,
	end_cursor TEXT,
	UNIQUE (object_id, fieldname),
	CHECK ((last_update IS NULL) = (total_count IS NULL)),
	CHECK ((last_update IS NULL) = (has_next_page IS NULL)),
	CHECK (last_update IS NOT NULL OR end_cursor IS NULL)
);`

const idxConnectionsObject = `CREATE INDEX IF NOT EXISTS idx_connections_object ON connections(object_id, fieldname);`

const createConnectionEntries = `CREATE TABLE IF NOT EXISTS connection_entries (
	rowid INTEGER PRIMARY KEY,
	connection_id INTEGER NOT NULL REFERENCES connections(rowid),
	idx INTEGER NOT NULL,
	child_id TEXT,
	UNIQUE (connection_id, idx)
);`

const idxConnectionEntriesConnection = `CREATE INDEX IF NOT EXISTS idx_connection_entries_connection ON connection_entries(connection_id);`

// structuralDDL lists every schema-independent CREATE statement, in
// dependency order.
var structuralDDL = []string{
	createMeta,
	createUpdates,
	createObjects,
	createLinks,
	idxLinksParent,
	createConnections,
	idxConnectionsObject,
	createConnectionEntries,
	idxConnectionEntriesConnection,
}
