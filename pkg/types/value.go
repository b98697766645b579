package types

import (
	"fmt"
	"reflect"
	"slices"
)

// Kind tags the variant held by a Value.
type Kind uint8

// Value variants. The zero Value has no kind and cannot be stored.
const (
	KindScalar Kind = iota + 1
	KindArray
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindText:
		return "text"
	default:
		return "invalid"
	}
}

// Element is the set of Go types a numeric Scalar or Array may hold.
// int and uint are stored as int64 and uint64.
type Element interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 |
		float32 | float64 | bool | int | uint
}

// Value is an attribute value: Scalar(T) | Array(T, shape) | Text(string).
// Numeric data is held as a flat, row-major slice of the element type.
type Value struct {
	kind  Kind
	dtype DType
	shape Shape
	data  any
}

// Scalar returns a rank-0 value holding v.
func Scalar[T Element](v T) Value {
	data, dt := normalize([]T{v})
	return Value{kind: KindScalar, dtype: dt, shape: Shape{}, data: data}
}

// Array returns an array value over data. With no shape arguments the
// value is one-dimensional with shape (len(data),), including length 1.
// Returns ErrUnsupportedValue if the shape does not match len(data).
func Array[T Element](data []T, shape ...int) (Value, error) {
	s := Shape(slices.Clone(shape))
	if len(shape) == 0 {
		s = Shape{len(data)}
	}
	if err := s.Validate(); err != nil {
		return Value{}, err
	}
	if s.Size() != len(data) {
		return Value{}, fmt.Errorf("%w: shape %s holds %d elements, got %d",
			ErrUnsupportedValue, s, s.Size(), len(data))
	}
	cp := make([]T, len(data))
	copy(cp, data)
	d, dt := normalize(cp)
	return Value{kind: KindArray, dtype: dt, shape: s, data: d}, nil
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, dtype: String, shape: Shape{}, data: s}
}

// NewValue builds a value from a dtype, a shape and raw data. data is a
// string for String and a flat slice of the dtype's Go type otherwise
// ([]float64 for Float64, []bool for Bool and so on). Rank 0 yields a
// Scalar, higher ranks an Array.
// Returns ErrUnsupportedValue if the pieces do not agree.
func NewValue(dtype DType, shape Shape, data any) (Value, error) {
	if !dtype.Valid() {
		return Value{}, fmt.Errorf("%w: unknown dtype %q", ErrUnsupportedValue, dtype)
	}
	if err := shape.Validate(); err != nil {
		return Value{}, err
	}
	if dtype == String {
		s, ok := data.(string)
		if !ok {
			return Value{}, fmt.Errorf("%w: str data must be a string, got %T", ErrUnsupportedValue, data)
		}
		if shape.Rank() != 0 {
			return Value{}, fmt.Errorf("%w: text must be rank 0, got %s", ErrUnsupportedValue, shape)
		}
		return Text(s), nil
	}
	if data == nil || goType(dtype) != reflect.TypeOf(data) {
		return Value{}, fmt.Errorf("%w: %s data must be %v, got %T",
			ErrUnsupportedValue, dtype, goType(dtype), data)
	}
	n := reflect.ValueOf(data).Len()
	if n != shape.Size() {
		return Value{}, fmt.Errorf("%w: shape %s holds %d elements, got %d",
			ErrUnsupportedValue, shape, shape.Size(), n)
	}
	kind := KindArray
	if shape.Rank() == 0 {
		kind = KindScalar
	}
	return Value{kind: kind, dtype: dtype, shape: slices.Clone(shape), data: cloneData(data)}, nil
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// DType returns the element type.
func (v Value) DType() DType { return v.dtype }

// Shape returns a copy of the value's shape. Scalars and text are ().
func (v Value) Shape() Shape {
	if v.shape == nil {
		return Shape{}
	}
	return slices.Clone(v.shape)
}

// Rank returns the number of dimensions.
func (v Value) Rank() int { return len(v.shape) }

// Len returns the number of elements. Text counts as one element.
func (v Value) Len() int {
	switch v.kind {
	case KindText:
		return 1
	case KindScalar, KindArray:
		return reflect.ValueOf(v.data).Len()
	default:
		return 0
	}
}

// Valid reports whether the value carries a kind.
func (v Value) Valid() bool { return v.kind != 0 }

// Data returns a copy of the raw data: a string for text, a flat slice of
// the element type otherwise.
func (v Value) Data() any {
	if v.kind == KindText {
		return v.data
	}
	return cloneData(v.data)
}

// Text returns the string held by a text value.
func (v Value) Text() (string, bool) {
	s, ok := v.data.(string)
	return s, ok && v.kind == KindText
}

// Interface returns the value as a plain Go value: the element for a
// scalar, a copy of the flat slice for an array, the string for text.
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.data
	case KindScalar:
		return reflect.ValueOf(v.data).Index(0).Interface()
	case KindArray:
		return cloneData(v.data)
	default:
		return nil
	}
}

// Equal reports whether v and o have the same kind, dtype, shape and data.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind &&
		v.dtype == o.dtype &&
		v.Shape().Equal(o.Shape()) &&
		reflect.DeepEqual(v.data, o.data)
}

// String renders the value for display.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return fmt.Sprintf("%q", v.data)
	case KindScalar, KindArray:
		return fmt.Sprint(v.Interface())
	default:
		return "<invalid>"
	}
}

// Elements returns a copy of the value's flat data as []T.
// Returns ErrTypeMismatch if the value does not hold T.
func Elements[T Element](v Value) ([]T, error) {
	var zero T
	if v.kind != KindScalar && v.kind != KindArray {
		return nil, fmt.Errorf("%w: %s value has no elements", ErrTypeMismatch, v.kind)
	}
	if want := dtypeOf(zero); want != v.dtype {
		return nil, fmt.Errorf("%w: value is %s, not %s", ErrTypeMismatch, v.dtype, want)
	}
	switch any(zero).(type) {
	case int:
		src := v.data.([]int64)
		out := make([]T, len(src))
		for i, x := range src {
			out[i] = any(int(x)).(T)
		}
		return out, nil
	case uint:
		src := v.data.([]uint64)
		out := make([]T, len(src))
		for i, x := range src {
			out[i] = any(uint(x)).(T)
		}
		return out, nil
	}
	return slices.Clone(v.data.([]T)), nil
}

// ScalarOf returns the element held by a rank-0 value.
// Returns ErrTypeMismatch for arrays (including shape (1,)), text, or a
// different element type.
func ScalarOf[T Element](v Value) (T, error) {
	var zero T
	if v.kind != KindScalar {
		return zero, fmt.Errorf("%w: %s value with shape %s is not a scalar",
			ErrTypeMismatch, v.kind, v.Shape())
	}
	elems, err := Elements[T](v)
	if err != nil {
		return zero, err
	}
	return elems[0], nil
}

func dtypeOf[T Element](zero T) DType {
	switch any(zero).(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64, int:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64, uint:
		return Uint64
	case float32:
		return Float32
	case float64:
		return Float64
	case bool:
		return Bool
	}
	return ""
}

// normalize widens int and uint slices to their fixed-width forms and
// reports the resulting dtype.
func normalize[T Element](data []T) (any, DType) {
	var zero T
	switch d := any(data).(type) {
	case []int:
		out := make([]int64, len(d))
		for i, x := range d {
			out[i] = int64(x)
		}
		return out, Int64
	case []uint:
		out := make([]uint64, len(d))
		for i, x := range d {
			out[i] = uint64(x)
		}
		return out, Uint64
	}
	return data, dtypeOf(zero)
}

var goTypes = map[DType]reflect.Type{
	Int8:    reflect.TypeOf([]int8(nil)),
	Int16:   reflect.TypeOf([]int16(nil)),
	Int32:   reflect.TypeOf([]int32(nil)),
	Int64:   reflect.TypeOf([]int64(nil)),
	Uint8:   reflect.TypeOf([]uint8(nil)),
	Uint16:  reflect.TypeOf([]uint16(nil)),
	Uint32:  reflect.TypeOf([]uint32(nil)),
	Uint64:  reflect.TypeOf([]uint64(nil)),
	Float32: reflect.TypeOf([]float32(nil)),
	Float64: reflect.TypeOf([]float64(nil)),
	Bool:    reflect.TypeOf([]bool(nil)),
}

// goType returns the flat slice type that holds elements of d.
func goType(d DType) reflect.Type {
	return goTypes[d]
}

// MakeData allocates a zeroed flat slice for n elements of d.
// Returns nil for String and unknown types.
func MakeData(d DType, n int) any {
	t := goType(d)
	if t == nil {
		return nil
	}
	return reflect.MakeSlice(t, n, n).Interface()
}

func cloneData(data any) any {
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice {
		return data
	}
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(out, rv)
	return out.Interface()
}
