package sqlite

// Dump record structures. A dump is a stream of records: every node
// first, in path order, then every attribute in node path and creation
// order. The same structs serve the JSONL and CBOR formats.

// Record kinds.
const (
	kindNode      = "node"
	kindAttribute = "attribute"
)

// recordHeader is decoded first to route a record to its struct.
type recordHeader struct {
	Kind string `json:"kind" cbor:"kind"`
}

// nodeJSON represents a container node in a dump.
type nodeJSON struct {
	Kind      string `json:"kind" cbor:"kind"`
	NodeID    string `json:"node_id" cbor:"node_id"`
	Path      string `json:"path" cbor:"path"`
	CreatedAt string `json:"created_at" cbor:"created_at"`
}

// attributeJSON represents an attribute record in a dump. Name carries
// text identities; NameBytes carries identities that are not valid UTF-8.
type attributeJSON struct {
	Kind      string `json:"kind" cbor:"kind"`
	Path      string `json:"path" cbor:"path"`
	Name      string `json:"name,omitempty" cbor:"name,omitempty"`
	NameBytes []byte `json:"name_bytes,omitempty" cbor:"name_bytes,omitempty"`
	DType     string `json:"dtype" cbor:"dtype"`
	Shape     []int  `json:"shape" cbor:"shape"`
	Payload   []byte `json:"payload" cbor:"payload"`
	CreatedAt string `json:"created_at" cbor:"created_at"`
	UpdatedAt string `json:"updated_at" cbor:"updated_at"`
}

// key returns the stored identity bytes of the record.
func (a attributeJSON) key() []byte {
	if len(a.NameBytes) > 0 {
		return a.NameBytes
	}
	return []byte(a.Name)
}
