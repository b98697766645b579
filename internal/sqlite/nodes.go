package sqlite

import (
	"database/sql"
	"fmt"
	"path"
	"strings"

	"github.com/mesh-intelligence/nodeattrs/internal/attrs"
	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

// node is a container node bound to this backend's attribute primitives.
type node struct {
	id    types.NodeID
	path  string
	attrs *attrs.Table
}

func (n *node) ID() types.NodeID            { return n.id }
func (n *node) Path() string                { return n.path }
func (n *node) Attrs() types.AttributeTable { return n.attrs }

func (b *Backend) newNode(id types.NodeID, p string) *node {
	return &node{id: id, path: p, attrs: attrs.New(b, id)}
}

// Root returns the root node.
func (b *Backend) Root() (types.Node, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrContainerDetached
	}
	return b.newNode(b.rootID, rootPath), nil
}

// Group returns the node at an absolute path.
// Returns ErrInvalidPath for malformed paths, ErrNodeNotFound if absent.
func (b *Backend) Group(p string) (types.Node, error) {
	if err := validatePath(p); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrContainerDetached
	}

	id, err := lookupNode(b.db, p)
	if err != nil {
		return nil, err
	}
	return b.newNode(id, p), nil
}

// CreateGroup creates the node at p. The parent must already exist.
func (b *Backend) CreateGroup(p string) (types.Node, error) {
	if err := validatePath(p); err != nil {
		return nil, err
	}
	if p == rootPath {
		return nil, fmt.Errorf("%w: %s", types.ErrNodeExists, p)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, types.ErrContainerDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning group create: %w", err)
	}
	defer tx.Rollback()

	if _, err := lookupNode(tx, p); err == nil {
		return nil, fmt.Errorf("%w: %s", types.ErrNodeExists, p)
	}
	if _, err := lookupNode(tx, path.Dir(p)); err != nil {
		return nil, fmt.Errorf("parent of %s: %w", p, err)
	}

	id := types.NodeID(newUUID())
	if _, err := tx.Exec("INSERT INTO nodes (node_id, path, created_at) VALUES (?, ?, ?)",
		string(id), p, b.timestamp()); err != nil {
		return nil, fmt.Errorf("inserting node: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing group create: %w", err)
	}

	b.log.Debug().Str("path", p).Str("node", string(id)).Msg("group created")
	return b.newNode(id, p), nil
}

// DeleteGroup removes the node at p together with its descendants and
// every attribute they own. The root cannot be deleted.
func (b *Backend) DeleteGroup(p string) error {
	if err := validatePath(p); err != nil {
		return err
	}
	if p == rootPath {
		return fmt.Errorf("%w: cannot delete root", types.ErrInvalidPath)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrContainerDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning group delete: %w", err)
	}
	defer tx.Rollback()

	// Descendants are matched on path bytes; substr on TEXT counts
	// characters, not bytes.
	const subtree = "path = ? OR substr(CAST(path AS BLOB), 1, ?) = ?"
	prefix := []byte(p + "/")
	args := []any{p, len(prefix), prefix}

	if _, err := tx.Exec(
		"DELETE FROM attributes WHERE node_id IN (SELECT node_id FROM nodes WHERE "+subtree+")",
		args...); err != nil {
		return fmt.Errorf("deleting group attributes: %w", err)
	}
	res, err := tx.Exec("DELETE FROM nodes WHERE "+subtree, args...)
	if err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", types.ErrNodeNotFound, p)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing group delete: %w", err)
	}

	b.log.Debug().Str("path", p).Int64("nodes", n).Msg("group deleted")
	return nil
}

// Groups returns every node path in lexical order, root first.
func (b *Backend) Groups() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrContainerDetached
	}

	rows, err := b.db.Query("SELECT path FROM nodes ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning group path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// lookupNode returns the ID of the node at p.
func lookupNode(ex execer, p string) (types.NodeID, error) {
	var id string
	err := ex.QueryRow("SELECT node_id FROM nodes WHERE path = ?", p).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %s", types.ErrNodeNotFound, p)
	}
	if err != nil {
		return "", fmt.Errorf("looking up node %s: %w", p, err)
	}
	return types.NodeID(id), nil
}

// validatePath accepts clean absolute slash-separated paths.
func validatePath(p string) error {
	if !strings.HasPrefix(p, "/") || path.Clean(p) != p || strings.IndexByte(p, 0) >= 0 {
		return fmt.Errorf("%w: %q", types.ErrInvalidPath, p)
	}
	return nil
}
