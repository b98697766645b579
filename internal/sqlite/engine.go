package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

const upsertAttribute = `INSERT INTO attributes
    (node_id, name, dtype, shape, payload, checksum, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (node_id, name) DO UPDATE SET
    dtype = excluded.dtype,
    shape = excluded.shape,
    payload = excluded.payload,
    checksum = excluded.checksum,
    updated_at = excluded.updated_at`

// execer is the subset of *sql.DB and *sql.Tx the write helpers need.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// WriteAttr stores rec under key on node, replacing any existing record
// while keeping its enumeration position.
// Returns ErrNodeNotFound if node does not exist.
func (b *Backend) WriteAttr(node types.NodeID, key []byte, rec types.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrContainerDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning write: %w", err)
	}
	defer tx.Rollback()

	if err := requireNode(tx, node); err != nil {
		return err
	}
	if err := writeAttr(tx, node, key, rec, b.timestamp()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing write: %w", err)
	}

	b.log.Debug().
		Str("node", string(node)).
		Str("key", types.KeyOf(key).String()).
		Str("dtype", string(rec.DType)).
		Str("shape", rec.Shape.String()).
		Msg("attribute written")
	return nil
}

// writeAttr upserts one record. The caller holds b.mu.
func writeAttr(ex execer, node types.NodeID, key []byte, rec types.Record, now string) error {
	if err := checkRecord(rec); err != nil {
		return err
	}
	shape, err := encodeShape(rec.Shape)
	if err != nil {
		return err
	}
	sum := blake3.Sum256(rec.Payload)
	payload := rec.Payload
	if payload == nil {
		payload = []byte{}
	}
	if _, err := ex.Exec(upsertAttribute,
		string(node), key, string(rec.DType), shape, payload, sum[:], now, now); err != nil {
		return fmt.Errorf("writing attribute: %w", err)
	}
	return nil
}

// checkRecord rejects descriptors the schema cannot represent and
// payloads whose length disagrees with them.
func checkRecord(rec types.Record) error {
	if !rec.DType.Valid() {
		return fmt.Errorf("%w: unknown dtype %q", types.ErrUnsupportedValue, rec.DType)
	}
	if err := rec.Shape.Validate(); err != nil {
		return err
	}
	if rec.DType == types.String {
		if rec.Shape.Rank() != 0 {
			return fmt.Errorf("%w: str record has shape %s", types.ErrUnsupportedValue, rec.Shape)
		}
		return nil
	}
	if want := rec.Shape.Size() * rec.DType.Size(); len(rec.Payload) != want {
		return fmt.Errorf("%w: %s %s payload is %d bytes, want %d",
			types.ErrUnsupportedValue, rec.DType, rec.Shape, len(rec.Payload), want)
	}
	return nil
}

// ReadAttr returns the record stored under key on node.
// Returns ErrKeyNotFound if there is none, ErrCorruptRecord if the stored
// payload no longer matches its checksum.
func (b *Backend) ReadAttr(node types.NodeID, key []byte) (types.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.Record{}, types.ErrContainerDetached
	}

	row := b.db.QueryRow(
		"SELECT dtype, shape, payload, checksum FROM attributes WHERE node_id = ? AND name = ?",
		string(node), key)
	return scanRecord(row)
}

func scanRecord(row *sql.Row) (types.Record, error) {
	var dtype, shape string
	var payload, checksum []byte
	err := row.Scan(&dtype, &shape, &payload, &checksum)
	if err == sql.ErrNoRows {
		return types.Record{}, types.ErrKeyNotFound
	}
	if err != nil {
		return types.Record{}, fmt.Errorf("scanning attribute: %w", err)
	}
	return buildRecord(dtype, shape, payload, checksum)
}

// buildRecord parses stored columns and verifies the payload digest.
func buildRecord(dtype, shape string, payload, checksum []byte) (types.Record, error) {
	s, err := decodeShape(shape)
	if err != nil {
		return types.Record{}, err
	}
	sum := blake3.Sum256(payload)
	if !bytes.Equal(sum[:], checksum) {
		return types.Record{}, fmt.Errorf("%w: checksum mismatch", types.ErrCorruptRecord)
	}
	if payload == nil {
		payload = []byte{}
	}
	return types.Record{DType: types.DType(dtype), Shape: s, Payload: payload}, nil
}

// DeleteAttr removes the record stored under key on node.
// Returns ErrKeyNotFound if there is none.
func (b *Backend) DeleteAttr(node types.NodeID, key []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrContainerDetached
	}

	res, err := b.db.Exec("DELETE FROM attributes WHERE node_id = ? AND name = ?", string(node), key)
	if err != nil {
		return fmt.Errorf("deleting attribute: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting attribute: %w", err)
	}
	if n == 0 {
		return types.ErrKeyNotFound
	}

	b.log.Debug().Str("node", string(node)).Str("key", types.KeyOf(key).String()).Msg("attribute deleted")
	return nil
}

// ListAttrs returns every key on node in creation order.
func (b *Backend) ListAttrs(node types.NodeID) ([][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrContainerDetached
	}

	rows, err := b.db.Query("SELECT name FROM attributes WHERE node_id = ? ORDER BY attr_seq", string(node))
	if err != nil {
		return nil, fmt.Errorf("listing attributes: %w", err)
	}
	defer rows.Close()

	keys := [][]byte{}
	for rows.Next() {
		var name []byte
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning attribute name: %w", err)
		}
		keys = append(keys, name)
	}
	return keys, rows.Err()
}

// AttrExists reports whether key is stored on node.
func (b *Backend) AttrExists(node types.NodeID, key []byte) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return false, types.ErrContainerDetached
	}

	var exists bool
	err := b.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM attributes WHERE node_id = ? AND name = ?)",
		string(node), key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking attribute: %w", err)
	}
	return exists, nil
}

// requireNode returns ErrNodeNotFound unless node exists.
func requireNode(ex execer, node types.NodeID) error {
	var exists bool
	if err := ex.QueryRow("SELECT EXISTS(SELECT 1 FROM nodes WHERE node_id = ?)", string(node)).Scan(&exists); err != nil {
		return fmt.Errorf("checking node: %w", err)
	}
	if !exists {
		return types.ErrNodeNotFound
	}
	return nil
}

// encodeShape stores a shape as a JSON array; rank 0 is "[]".
func encodeShape(s types.Shape) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	if s == nil {
		s = types.Shape{}
	}
	data, err := json.Marshal([]int(s))
	if err != nil {
		return "", fmt.Errorf("encoding shape: %w", err)
	}
	return string(data), nil
}

func decodeShape(raw string) (types.Shape, error) {
	var dims []int
	if err := json.Unmarshal([]byte(raw), &dims); err != nil {
		return nil, fmt.Errorf("%w: shape %q: %v", types.ErrCorruptRecord, raw, err)
	}
	if dims == nil {
		return nil, fmt.Errorf("%w: shape %q", types.ErrCorruptRecord, raw)
	}
	return types.Shape(dims), nil
}
