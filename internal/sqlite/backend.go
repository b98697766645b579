// Package sqlite implements the SQLite storage engine for nodeattrs.
//
// A container is one SQLite database file holding a node tree and the
// attribute records of every node. The Backend implements types.Container
// for the node tree and types.AttrEngine for the attribute primitives that
// internal/attrs builds the mapping layer on.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

// dsnPragmas apply to every pooled connection.
const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// rootPath is the path of the node every container starts with.
const rootPath = "/"

// Backend implements Container and AttrEngine over a SQLite file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	rootID   types.NodeID
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger for lifecycle and mutation events.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Backend) { b.log = l }
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		log: zerolog.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach opens the container file in DataDir, creating the directory, the
// schema and the root node when missing.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, types.DatabaseFileName)
	db, err := sql.Open("sqlite", dbPath+dsnPragmas)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	// Single writer; also keeps transactions and ad hoc queries from
	// contending for the file lock.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	rootID, err := ensureRoot(db, b.timestamp())
	if err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.rootID = rootID
	b.attached = true

	b.log.Info().Str("path", dbPath).Str("root", string(rootID)).Msg("container attached")
	return nil
}

// Detach closes the SQLite connection. After Detach, all operations
// return ErrContainerDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
		b.db = nil
	}

	b.attached = false
	b.rootID = ""
	b.log.Info().Str("data_dir", b.config.DataDir).Msg("container detached")
	return nil
}

// ensureRoot creates the root node if the file has none and returns its ID.
func ensureRoot(db *sql.DB, now string) (types.NodeID, error) {
	if _, err := db.Exec(
		"INSERT OR IGNORE INTO nodes (node_id, path, created_at) VALUES (?, ?, ?)",
		newUUID(), rootPath, now); err != nil {
		return "", fmt.Errorf("creating root node: %w", err)
	}
	var id string
	if err := db.QueryRow("SELECT node_id FROM nodes WHERE path = ?", rootPath).Scan(&id); err != nil {
		return "", fmt.Errorf("loading root node: %w", err)
	}
	return types.NodeID(id), nil
}

// newUUID generates a UUID v7 for node IDs.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// timestamp returns the current time in the stored text form.
func (b *Backend) timestamp() string {
	return b.now().UTC().Format(time.RFC3339Nano)
}

var (
	_ types.Container  = (*Backend)(nil)
	_ types.AttrEngine = (*Backend)(nil)
)
