// Package attrs implements the attribute table of a container node on top
// of a storage engine's attribute primitives.
//
// The table resolves names to canonical keys, converts values to typed,
// shape-tagged records and back, and maps engine results onto the
// mapping contract of types.AttributeTable. It holds no state beyond the
// node it is bound to and takes no locks; callers serialize mutation of a
// node.
package attrs

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

// Table implements types.AttributeTable for a single node.
type Table struct {
	engine types.AttrEngine
	node   types.NodeID
}

// New returns the attribute table of node.
func New(engine types.AttrEngine, node types.NodeID) *Table {
	return &Table{engine: engine, node: node}
}

// Node returns the node the table belongs to.
func (t *Table) Node() types.NodeID {
	return t.node
}

// Set stores value under name, replacing any existing attribute.
func (t *Table) Set(name types.Name, value types.Value) error {
	key, err := types.ResolveName(name)
	if err != nil {
		return err
	}
	rec, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("setting attribute %s: %w", key, err)
	}
	if err := t.engine.WriteAttr(t.node, key.Bytes(), rec); err != nil {
		return fmt.Errorf("setting attribute %s: %w", key, err)
	}
	return nil
}

// Get returns the value stored under name.
func (t *Table) Get(name types.Name) (types.Value, error) {
	key, err := types.ResolveName(name)
	if err != nil {
		return types.Value{}, err
	}
	rec, err := t.engine.ReadAttr(t.node, key.Bytes())
	if err != nil {
		return types.Value{}, fmt.Errorf("getting attribute %s: %w", key, err)
	}
	v, err := decodeRecord(rec)
	if err != nil {
		return types.Value{}, fmt.Errorf("getting attribute %s: %w", key, err)
	}
	return v, nil
}

// Delete removes the attribute stored under name.
func (t *Table) Delete(name types.Name) error {
	key, err := types.ResolveName(name)
	if err != nil {
		return err
	}
	if err := t.engine.DeleteAttr(t.node, key.Bytes()); err != nil {
		return fmt.Errorf("deleting attribute %s: %w", key, err)
	}
	return nil
}

// Contains reports whether an attribute is stored under name.
func (t *Table) Contains(name types.Name) bool {
	key, err := types.ResolveName(name)
	if err != nil {
		return false
	}
	ok, err := t.engine.AttrExists(t.node, key.Bytes())
	return err == nil && ok
}

// Keys returns every stored identity in the engine's order.
func (t *Table) Keys() ([]types.Key, error) {
	raw, err := t.engine.ListAttrs(t.node)
	if err != nil {
		return nil, fmt.Errorf("listing attributes: %w", err)
	}
	keys := make([]types.Key, len(raw))
	for i, b := range raw {
		keys[i] = types.KeyOf(b)
	}
	return keys, nil
}

// Names returns Keys as display strings.
func (t *Table) Names() ([]string, error) {
	keys, err := t.Keys()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return names, nil
}

// Len returns the number of attributes on the node.
func (t *Table) Len() (int, error) {
	raw, err := t.engine.ListAttrs(t.node)
	if err != nil {
		return 0, fmt.Errorf("listing attributes: %w", err)
	}
	return len(raw), nil
}

// Clear deletes every attribute on the node. A key removed concurrently
// between listing and deletion is not an error.
func (t *Table) Clear() error {
	raw, err := t.engine.ListAttrs(t.node)
	if err != nil {
		return fmt.Errorf("listing attributes: %w", err)
	}
	for _, b := range raw {
		err := t.engine.DeleteAttr(t.node, b)
		if err != nil && !errors.Is(err, types.ErrKeyNotFound) {
			return fmt.Errorf("deleting attribute %s: %w", types.KeyOf(b), err)
		}
	}
	return nil
}

var _ types.AttributeTable = (*Table)(nil)
