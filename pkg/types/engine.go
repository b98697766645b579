package types

// NodeID identifies a container node inside a storage engine.
type NodeID string

// Record is the persisted form of an attribute: a type and shape
// descriptor plus the encoded payload.
type Record struct {
	DType   DType
	Shape   Shape
	Payload []byte
}

// AttrEngine is the attribute storage primitive a container engine exposes
// per node. Keys are canonical identity bytes; the engine stores them
// verbatim.
type AttrEngine interface {
	// WriteAttr stores rec under key, replacing any existing record in one
	// step. Returns ErrNodeNotFound if node does not exist.
	WriteAttr(node NodeID, key []byte, rec Record) error

	// ReadAttr returns the record stored under key.
	// Returns ErrKeyNotFound if there is none.
	ReadAttr(node NodeID, key []byte) (Record, error)

	// DeleteAttr removes the record stored under key.
	// Returns ErrKeyNotFound if there is none.
	DeleteAttr(node NodeID, key []byte) error

	// ListAttrs returns every key on node in a stable order.
	ListAttrs(node NodeID) ([][]byte, error)

	// AttrExists reports whether key is stored on node.
	AttrExists(node NodeID, key []byte) (bool, error)
}
