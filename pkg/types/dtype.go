package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DType names the element type of an attribute value.
type DType string

// Element types. Numeric payloads are stored little-endian; String holds
// UTF-8 text and is only valid for rank-0 values.
const (
	Int8    DType = "int8"
	Int16   DType = "int16"
	Int32   DType = "int32"
	Int64   DType = "int64"
	Uint8   DType = "uint8"
	Uint16  DType = "uint16"
	Uint32  DType = "uint32"
	Uint64  DType = "uint64"
	Float32 DType = "float32"
	Float64 DType = "float64"
	Bool    DType = "bool"
	String  DType = "str"
)

// dtypeSizes maps each element type to its width in bytes. String counts
// one byte per UTF-8 code unit.
var dtypeSizes = map[DType]int{
	Int8:    1,
	Int16:   2,
	Int32:   4,
	Int64:   8,
	Uint8:   1,
	Uint16:  2,
	Uint32:  4,
	Uint64:  8,
	Float32: 4,
	Float64: 8,
	Bool:    1,
	String:  1,
}

// Valid reports whether d is a recognized element type.
func (d DType) Valid() bool {
	_, ok := dtypeSizes[d]
	return ok
}

// Size returns the byte width of one element, or 0 for an unknown type.
func (d DType) Size() int {
	return dtypeSizes[d]
}

// ParseDType returns the DType named by s.
// Returns ErrUnsupportedValue if s is not a recognized element type.
func ParseDType(s string) (DType, error) {
	d := DType(strings.TrimSpace(s))
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown dtype %q", ErrUnsupportedValue, s)
	}
	return d, nil
}

// MaxRank is the largest number of dimensions a persisted descriptor holds.
const MaxRank = 32

// MaxElements bounds the product of a shape's dimensions, counting zero
// dimensions as one, so that element counts and payload byte sizes fit
// in an int on every platform.
const MaxElements = math.MaxInt32 / 8

// Shape is the tuple of dimension lengths of a value. A nil or empty Shape
// is rank 0.
type Shape []int

// Rank returns the number of dimensions.
func (s Shape) Rank() int { return len(s) }

// Size returns the number of elements the shape describes. Rank 0 holds
// exactly one element.
func (s Shape) Size() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Equal reports whether s and o have the same rank and dimensions.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders the shape as a tuple: (), (1,), (2, 3).
func (s Shape) String() string {
	switch len(s) {
	case 0:
		return "()"
	case 1:
		return "(" + strconv.Itoa(s[0]) + ",)"
	}
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Validate checks that the shape can be persisted.
// Returns ErrUnsupportedValue for negative dimensions, rank above MaxRank,
// or dimensions whose product exceeds MaxElements.
func (s Shape) Validate() error {
	if len(s) > MaxRank {
		return fmt.Errorf("%w: rank %d exceeds %d", ErrUnsupportedValue, len(s), MaxRank)
	}
	n := 1
	for i, d := range s {
		if d < 0 {
			return fmt.Errorf("%w: dimension %d is negative (%d)", ErrUnsupportedValue, i, d)
		}
		if d == 0 {
			continue
		}
		if d > MaxElements/n {
			return fmt.Errorf("%w: shape %s exceeds %d elements", ErrUnsupportedValue, s, MaxElements)
		}
		n *= d
	}
	return nil
}

// ParseShape parses a comma-separated dimension list such as "2,3".
// The empty string yields rank 0.
func ParseShape(s string) (Shape, error) {
	s = strings.Trim(strings.TrimSpace(s), "()")
	if s == "" {
		return Shape{}, nil
	}
	var shape Shape
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: bad dimension %q", ErrUnsupportedValue, part)
		}
		shape = append(shape, d)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return shape, nil
}
