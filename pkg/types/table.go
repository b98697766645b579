package types

import "errors"

// AttributeTable provides mapping operations over the attributes of one
// container node. Every method taking a Name resolves it to a canonical
// Key first, so TextName and ByteName spellings of the same text address
// the same record.
type AttributeTable interface {
	// Set creates the attribute or replaces it entirely. dtype and shape
	// come from value; an existing record of another type or shape is
	// overwritten without error.
	Set(name Name, value Value) error

	// Get returns the stored value with its exact dtype and shape.
	// Returns ErrKeyNotFound if no attribute has the name.
	Get(name Name) (Value, error)

	// Delete removes the attribute.
	// Returns ErrKeyNotFound if no attribute has the name.
	Delete(name Name) error

	// Contains reports whether an attribute with the name exists. Names
	// that cannot be resolved report false.
	Contains(name Name) bool

	// Keys returns the stored identities in creation order.
	Keys() ([]Key, error)

	// Names returns Keys rendered with Key.String.
	Names() ([]string, error)

	// Len returns the number of attributes.
	Len() (int, error)

	// Clear removes every attribute on the node.
	Clear() error
}

// Attribute errors.
var (
	ErrKeyNotFound      = errors.New("attribute not found")
	ErrInvalidKey       = errors.New("invalid attribute name")
	ErrUnsupportedValue = errors.New("unsupported attribute value")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrCorruptRecord    = errors.New("corrupt attribute record")
)
