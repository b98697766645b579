package sqlite

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

// Dump formats.
const (
	FormatJSONL = "jsonl"
	FormatCBOR  = "cbor"
)

// ErrFormatUnknown is returned for dump formats other than jsonl and cbor.
var ErrFormatUnknown = errors.New("unknown dump format")

// DumpStats counts what an Export wrote or an Import applied.
type DumpStats struct {
	Nodes      int
	Attributes int
}

// Export writes every node and attribute to file atomically.
func (b *Backend) Export(file, format string) (DumpStats, error) {
	if format != FormatJSONL && format != FormatCBOR {
		return DumpStats{}, fmt.Errorf("%w: %q", ErrFormatUnknown, format)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return DumpStats{}, types.ErrContainerDetached
	}

	nodes, err := b.dumpNodes()
	if err != nil {
		return DumpStats{}, err
	}
	attributes, err := b.dumpAttributes()
	if err != nil {
		return DumpStats{}, err
	}

	records := make([]any, 0, len(nodes)+len(attributes))
	for _, n := range nodes {
		records = append(records, n)
	}
	for _, a := range attributes {
		records = append(records, a)
	}

	err = writeAtomic(file, func(w io.Writer) error {
		if format == FormatCBOR {
			return writeCBOR(w, records)
		}
		return writeJSONL(w, records)
	})
	if err != nil {
		return DumpStats{}, fmt.Errorf("exporting %s: %w", file, err)
	}

	stats := DumpStats{Nodes: len(nodes), Attributes: len(attributes)}
	b.log.Info().Str("file", file).Str("format", format).
		Int("nodes", stats.Nodes).Int("attributes", stats.Attributes).Msg("container exported")
	return stats, nil
}

func (b *Backend) dumpNodes() ([]nodeJSON, error) {
	rows, err := b.db.Query("SELECT node_id, path, created_at FROM nodes ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	var out []nodeJSON
	for rows.Next() {
		n := nodeJSON{Kind: kindNode}
		if err := rows.Scan(&n.NodeID, &n.Path, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (b *Backend) dumpAttributes() ([]attributeJSON, error) {
	rows, err := b.db.Query(`SELECT n.path, a.name, a.dtype, a.shape, a.payload, a.checksum,
    a.created_at, a.updated_at
FROM attributes a JOIN nodes n ON n.node_id = a.node_id
ORDER BY n.path, a.attr_seq`)
	if err != nil {
		return nil, fmt.Errorf("querying attributes: %w", err)
	}
	defer rows.Close()

	var out []attributeJSON
	for rows.Next() {
		var (
			a                 = attributeJSON{Kind: kindAttribute}
			name              []byte
			dtype, shape      string
			payload, checksum []byte
		)
		if err := rows.Scan(&a.Path, &name, &dtype, &shape, &payload, &checksum,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning attribute: %w", err)
		}
		rec, err := buildRecord(dtype, shape, payload, checksum)
		if err != nil {
			return nil, fmt.Errorf("attribute %s on %s: %w", types.KeyOf(name), a.Path, err)
		}
		if key := types.KeyOf(name); key.IsText() {
			a.Name = string(name)
		} else {
			a.NameBytes = name
		}
		a.DType = string(rec.DType)
		a.Shape = []int(rec.Shape)
		a.Payload = rec.Payload
		out = append(out, a)
	}
	return out, rows.Err()
}

// Import loads a dump into the container in one transaction: either every
// record applies or none does. Nodes are matched by path and created when
// missing; attributes overwrite existing records with the same name.
// Malformed JSONL lines are skipped.
func (b *Backend) Import(file, format string) (DumpStats, error) {
	f, err := os.Open(file)
	if err != nil {
		return DumpStats{}, fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()

	var nodes []nodeJSON
	var attributes []attributeJSON
	switch format {
	case FormatJSONL:
		nodes, attributes, err = readJSONLDump(f)
	case FormatCBOR:
		nodes, attributes, err = readCBORDump(bufio.NewReader(f))
	default:
		return DumpStats{}, fmt.Errorf("%w: %q", ErrFormatUnknown, format)
	}
	if err != nil {
		return DumpStats{}, fmt.Errorf("reading %s: %w", file, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return DumpStats{}, types.ErrContainerDetached
	}

	stats, err := b.applyDump(nodes, attributes)
	if err != nil {
		return DumpStats{}, fmt.Errorf("importing %s: %w", file, err)
	}

	b.log.Info().Str("file", file).Str("format", format).
		Int("nodes", stats.Nodes).Int("attributes", stats.Attributes).Msg("container imported")
	return stats, nil
}

func (b *Backend) applyDump(nodes []nodeJSON, attributes []attributeJSON) (DumpStats, error) {
	tx, err := b.db.Begin()
	if err != nil {
		return DumpStats{}, fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	now := b.timestamp()
	var stats DumpStats

	// Parents sort before children.
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Path < nodes[j].Path })
	ids := make(map[string]types.NodeID)
	for _, n := range nodes {
		if err := validatePath(n.Path); err != nil {
			return DumpStats{}, err
		}
		id, err := lookupNode(tx, n.Path)
		if errors.Is(err, types.ErrNodeNotFound) {
			if _, err := lookupNode(tx, path.Dir(n.Path)); err != nil {
				return DumpStats{}, fmt.Errorf("parent of %s: %w", n.Path, err)
			}
			id = types.NodeID(newUUID())
			createdAt := n.CreatedAt
			if createdAt == "" {
				createdAt = now
			}
			if _, err := tx.Exec("INSERT INTO nodes (node_id, path, created_at) VALUES (?, ?, ?)",
				string(id), n.Path, createdAt); err != nil {
				return DumpStats{}, fmt.Errorf("inserting node %s: %w", n.Path, err)
			}
			stats.Nodes++
		} else if err != nil {
			return DumpStats{}, err
		}
		ids[n.Path] = id
	}

	for _, a := range attributes {
		id, ok := ids[a.Path]
		if !ok {
			found, err := lookupNode(tx, a.Path)
			if err != nil {
				return DumpStats{}, fmt.Errorf("attribute on %s: %w", a.Path, err)
			}
			id = found
			ids[a.Path] = id
		}
		key, err := types.ByteName(a.key()).Resolve()
		if err != nil {
			return DumpStats{}, fmt.Errorf("attribute on %s: %w", a.Path, err)
		}
		dtype, err := types.ParseDType(a.DType)
		if err != nil {
			return DumpStats{}, fmt.Errorf("attribute %s on %s: %w", key, a.Path, err)
		}
		rec := types.Record{DType: dtype, Shape: types.Shape(a.Shape), Payload: a.Payload}
		if err := writeAttr(tx, id, key.Bytes(), rec, now); err != nil {
			return DumpStats{}, fmt.Errorf("attribute %s on %s: %w", key, a.Path, err)
		}
		stats.Attributes++
	}

	if err := tx.Commit(); err != nil {
		return DumpStats{}, fmt.Errorf("committing import: %w", err)
	}
	return stats, nil
}

// readJSONLDump routes each JSONL line by its kind. Lines of unknown kind
// are ignored.
func readJSONLDump(r io.Reader) ([]nodeJSON, []attributeJSON, error) {
	lines, err := readJSONL(r)
	if err != nil {
		return nil, nil, err
	}
	var nodes []nodeJSON
	var attributes []attributeJSON
	for _, line := range lines {
		var h recordHeader
		if err := json.Unmarshal(line, &h); err != nil {
			continue
		}
		switch h.Kind {
		case kindNode:
			var n nodeJSON
			if err := json.Unmarshal(line, &n); err != nil {
				continue
			}
			nodes = append(nodes, n)
		case kindAttribute:
			var a attributeJSON
			if err := json.Unmarshal(line, &a); err != nil {
				continue
			}
			attributes = append(attributes, a)
		}
	}
	return nodes, attributes, nil
}

// writeCBOR writes records as a sequence of CBOR data items.
func writeCBOR(w io.Writer, records []any) error {
	enc := cbor.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	return nil
}

// readCBORDump decodes a CBOR sequence. Unlike JSONL there are no line
// boundaries to resynchronize on, so a malformed item fails the read.
func readCBORDump(r io.Reader) ([]nodeJSON, []attributeJSON, error) {
	dec := cbor.NewDecoder(r)
	var nodes []nodeJSON
	var attributes []attributeJSON
	for {
		var raw cbor.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("decoding cbor item: %w", err)
		}
		var h recordHeader
		if err := cbor.Unmarshal(raw, &h); err != nil {
			return nil, nil, fmt.Errorf("decoding cbor header: %w", err)
		}
		switch h.Kind {
		case kindNode:
			var n nodeJSON
			if err := cbor.Unmarshal(raw, &n); err != nil {
				return nil, nil, fmt.Errorf("decoding node: %w", err)
			}
			nodes = append(nodes, n)
		case kindAttribute:
			var a attributeJSON
			if err := cbor.Unmarshal(raw, &a); err != nil {
				return nil, nil, fmt.Errorf("decoding attribute: %w", err)
			}
			attributes = append(attributes, a)
		}
	}
	return nodes, attributes, nil
}
