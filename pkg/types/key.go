package types

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Key is the canonical byte identity of an attribute name. Keys compare
// with == and may be used as map keys.
type Key struct {
	b string
}

// KeyOf wraps raw stored bytes as a Key without validation. Engines use it
// when enumerating identities they already hold.
func KeyOf(b []byte) Key {
	return Key{b: string(b)}
}

// Bytes returns a copy of the key's canonical bytes.
func (k Key) Bytes() []byte {
	return []byte(k.b)
}

// IsText reports whether the identity decodes as UTF-8 text.
func (k Key) IsText() bool {
	return utf8.ValidString(k.b)
}

// String returns the key as text when it is valid UTF-8, and a quoted
// escape form such as "non-ascii\xfe" otherwise.
func (k Key) String() string {
	if k.IsText() {
		return k.b
	}
	return strconv.Quote(k.b)
}

// Resolve lets a Key be passed wherever a Name is accepted.
func (k Key) Resolve() (Key, error) {
	if err := checkKeyBytes(k.b); err != nil {
		return Key{}, err
	}
	return k, nil
}

// Name is an attribute name in any accepted external encoding.
type Name interface {
	// Resolve returns the canonical identity for the name.
	// Returns ErrInvalidKey if the name cannot be stored.
	Resolve() (Key, error)
}

// TextName is a Unicode attribute name. It must be valid UTF-8; opaque
// bytes belong in a ByteName.
type TextName string

// Resolve encodes the name to its UTF-8 bytes.
func (n TextName) Resolve() (Key, error) {
	if !utf8.ValidString(string(n)) {
		return Key{}, fmt.Errorf("%w: text name is not valid UTF-8", ErrInvalidKey)
	}
	if err := checkKeyBytes(string(n)); err != nil {
		return Key{}, err
	}
	return Key{b: string(n)}, nil
}

// ByteName is a byte-string attribute name, used verbatim even when it is
// not valid text.
type ByteName []byte

// Resolve uses the bytes as the identity without re-encoding.
func (n ByteName) Resolve() (Key, error) {
	if err := checkKeyBytes(string(n)); err != nil {
		return Key{}, err
	}
	return Key{b: string(n)}, nil
}

// ResolveName resolves n, treating a nil Name as invalid.
func ResolveName(n Name) (Key, error) {
	if n == nil {
		return Key{}, fmt.Errorf("%w: nil name", ErrInvalidKey)
	}
	return n.Resolve()
}

func checkKeyBytes(b string) error {
	if b == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidKey)
	}
	if strings.IndexByte(b, 0) >= 0 {
		return fmt.Errorf("%w: name contains NUL", ErrInvalidKey)
	}
	return nil
}
