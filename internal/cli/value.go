package cli

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"

	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

// valueFlags are the set command's typing options.
type valueFlags struct {
	dtype string
	shape string
}

// parseValue turns a command-line argument into an attribute value.
//
// A JSON number or boolean becomes a scalar and a nested JSON array an
// array whose shape is read from the nesting. Anything else, including a
// JSON string or text that is not JSON at all, is stored as text.
// Integers default to int64 and other numbers to float64 unless --dtype
// names a type. --shape reshapes the flattened elements; --shape 1 turns
// a scalar into a (1,) array.
func parseValue(raw string, vf valueFlags) (types.Value, error) {
	var dtype types.DType
	if vf.dtype != "" {
		d, err := types.ParseDType(vf.dtype)
		if err != nil {
			return types.Value{}, err
		}
		dtype = d
	}
	var shape types.Shape
	if vf.shape != "" {
		s, err := types.ParseShape(vf.shape)
		if err != nil {
			return types.Value{}, err
		}
		shape = s
	}

	if dtype == types.String {
		if shape.Rank() != 0 {
			return types.Value{}, fmt.Errorf("%w: str values are rank 0", types.ErrUnsupportedValue)
		}
		return types.Text(raw), nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil || dec.More() {
		return textOnly(raw, dtype, shape)
	}
	switch d := doc.(type) {
	case string:
		return textOnly(d, dtype, shape)
	case nil, map[string]any:
		return textOnly(raw, dtype, shape)
	}

	leaves, inferred, err := flatten(doc)
	if err != nil {
		return types.Value{}, err
	}
	if dtype == "" {
		dtype = inferDType(leaves)
	}
	if vf.shape == "" {
		shape = inferred
	}
	data, err := convertLeaves(leaves, dtype)
	if err != nil {
		return types.Value{}, err
	}
	return types.NewValue(dtype, shape, data)
}

func textOnly(s string, dtype types.DType, shape types.Shape) (types.Value, error) {
	if dtype != "" || shape.Rank() != 0 {
		return types.Value{}, fmt.Errorf("%w: %q is not a numeric or boolean value", types.ErrUnsupportedValue, s)
	}
	return types.Text(s), nil
}

// flatten walks a decoded JSON document and returns its leaves in
// row-major order with the shape of the nesting. Ragged arrays and
// non-scalar leaves are rejected.
func flatten(doc any) ([]any, types.Shape, error) {
	arr, ok := doc.([]any)
	if !ok {
		if err := checkLeaf(doc); err != nil {
			return nil, nil, err
		}
		return []any{doc}, types.Shape{}, nil
	}
	if len(arr) == 0 {
		return []any{}, types.Shape{0}, nil
	}

	var leaves []any
	var inner types.Shape
	for i, item := range arr {
		l, s, err := flatten(item)
		if err != nil {
			return nil, nil, err
		}
		if i == 0 {
			inner = s
		} else if !inner.Equal(s) {
			return nil, nil, fmt.Errorf("%w: ragged array: element %d has shape %s, want %s",
				types.ErrUnsupportedValue, i, s, inner)
		}
		leaves = append(leaves, l...)
	}
	shape := append(types.Shape{len(arr)}, inner...)
	if err := shape.Validate(); err != nil {
		return nil, nil, err
	}
	return leaves, shape, nil
}

func checkLeaf(v any) error {
	switch v.(type) {
	case json.Number, bool:
		return nil
	default:
		return fmt.Errorf("%w: array elements must be numbers or booleans, got %T", types.ErrUnsupportedValue, v)
	}
}

// inferDType picks bool for all-boolean leaves, int64 when every number
// is integral and float64 otherwise. Mixed leaves are left to
// convertLeaves to reject.
func inferDType(leaves []any) types.DType {
	if len(leaves) == 0 {
		return types.Float64
	}
	if _, ok := leaves[0].(bool); ok {
		return types.Bool
	}
	for _, l := range leaves {
		n, ok := l.(json.Number)
		if !ok {
			continue
		}
		if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
			return types.Float64
		}
	}
	return types.Int64
}

// convertLeaves builds the flat data slice of dtype from leaves.
func convertLeaves(leaves []any, dtype types.DType) (any, error) {
	data := types.MakeData(dtype, len(leaves))
	if data == nil {
		return nil, fmt.Errorf("%w: cannot build %s elements", types.ErrUnsupportedValue, dtype)
	}
	rv := reflect.ValueOf(data)
	bits := dtype.Size() * 8
	for i, l := range leaves {
		elem := rv.Index(i)
		if dtype == types.Bool {
			b, ok := l.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %v, want a boolean", types.ErrUnsupportedValue, i, l)
			}
			elem.SetBool(b)
			continue
		}
		n, ok := l.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %v, want a number", types.ErrUnsupportedValue, i, l)
		}
		var err error
		switch elem.Kind() {
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			var x int64
			x, err = strconv.ParseInt(n.String(), 10, bits)
			elem.SetInt(x)
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			var x uint64
			x, err = strconv.ParseUint(n.String(), 10, bits)
			elem.SetUint(x)
		case reflect.Float32, reflect.Float64:
			var x float64
			x, err = strconv.ParseFloat(n.String(), bits)
			elem.SetFloat(x)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %s does not fit %s", types.ErrUnsupportedValue, i, n, dtype)
		}
	}
	return data, nil
}

// parseName reads a name argument as text, or as hex-encoded bytes when
// hexName is set.
func parseName(arg string, hexName bool) (types.Name, error) {
	if !hexName {
		return types.TextName(arg), nil
	}
	b, err := hex.DecodeString(arg)
	if err != nil {
		return nil, fmt.Errorf("%w: bad hex name: %v", types.ErrInvalidKey, err)
	}
	return types.ByteName(b), nil
}

// valueJSON is the --json rendering of one attribute.
type valueJSON struct {
	Name    string `json:"name"`
	NameHex string `json:"name_hex"`
	Text    bool   `json:"text_name"`
	DType   string `json:"dtype"`
	Shape   []int  `json:"shape"`
	Value   any    `json:"value"`
}

func newValueJSON(key types.Key, v types.Value) valueJSON {
	return valueJSON{
		Name:    key.String(),
		NameHex: hex.EncodeToString(key.Bytes()),
		Text:    key.IsText(),
		DType:   string(v.DType()),
		Shape:   []int(v.Shape()),
		Value:   nest(v),
	}
}

// nest returns the value's data nested to its shape, for JSON output.
// Non-finite floats render as strings since JSON has no literal for them.
func nest(v types.Value) any {
	if s, ok := v.Text(); ok {
		return s
	}
	flat := reflect.ValueOf(v.Data())
	shape := v.Shape()
	if shape.Rank() == 0 {
		return jsonElem(flat.Index(0))
	}
	var build func(dim, offset int) any
	build = func(dim, offset int) any {
		n := shape[dim]
		out := make([]any, n)
		stride := types.Shape(shape[dim+1:]).Size()
		for i := range n {
			if dim == len(shape)-1 {
				out[i] = jsonElem(flat.Index(offset + i))
			} else {
				out[i] = build(dim+1, offset+i*stride)
			}
		}
		return out
	}
	return build(0, 0)
}

func jsonElem(e reflect.Value) any {
	if e.Kind() == reflect.Float32 || e.Kind() == reflect.Float64 {
		f := e.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	}
	return e.Interface()
}

// formatValue renders a value for plain output: text verbatim, numbers as
// compact JSON nested to the shape.
func formatValue(v types.Value) string {
	if s, ok := v.Text(); ok {
		return s
	}
	data, err := json.Marshal(nest(v))
	if err != nil {
		return v.String()
	}
	return string(data)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	return nil
}
