package sqlite

// Schema DDL. Statements are idempotent so Attach can reopen an existing
// container file.
const (
	createNodes = `CREATE TABLE IF NOT EXISTS nodes (
    node_id TEXT PRIMARY KEY,
    path TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL
);`

	// attr_seq is AUTOINCREMENT so sequence numbers are never reused and
	// enumeration order stays creation order. Upserts keep attr_seq.
	createAttributes = `CREATE TABLE IF NOT EXISTS attributes (
    attr_seq INTEGER PRIMARY KEY AUTOINCREMENT,
    node_id TEXT NOT NULL,
    name BLOB NOT NULL,
    dtype TEXT NOT NULL,
    shape TEXT NOT NULL,
    payload BLOB,
    checksum BLOB NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE (node_id, name),
    FOREIGN KEY (node_id) REFERENCES nodes(node_id) ON DELETE CASCADE
);`
)

// Index DDL for common queries.
const (
	idxAttributesNode = `CREATE INDEX IF NOT EXISTS idx_attributes_node ON attributes(node_id, attr_seq);`
)

// schemaDDL lists all schema statements in dependency order.
var schemaDDL = []string{
	createNodes,
	createAttributes,
	idxAttributesNode,
}
