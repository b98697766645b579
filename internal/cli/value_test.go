package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		flags     valueFlags
		wantDType types.DType
		wantShape string
		wantData  any
	}{
		{"float scalar", "4.0", valueFlags{}, types.Float64, "()", []float64{4}},
		{"integer scalar", "42", valueFlags{}, types.Int64, "()", []int64{42}},
		{"bool scalar", "true", valueFlags{}, types.Bool, "()", []bool{true}},
		{"one element array", "[1.5]", valueFlags{}, types.Float64, "(1,)", []float64{1.5}},
		{"mixed int and float", "[1, 2.5]", valueFlags{}, types.Float64, "(2,)", []float64{1, 2.5}},
		{"nested", "[[1,2,3],[4,5,6]]", valueFlags{}, types.Int64, "(2, 3)", []int64{1, 2, 3, 4, 5, 6}},
		{"empty array", "[]", valueFlags{}, types.Float64, "(0,)", []float64{}},
		{"dtype override", "[1, 2]", valueFlags{dtype: "uint8"}, types.Uint8, "(2,)", []uint8{1, 2}},
		{"float32", "0.5", valueFlags{dtype: "float32"}, types.Float32, "()", []float32{0.5}},
		{"scalar reshaped to (1,)", "7", valueFlags{shape: "1"}, types.Int64, "(1,)", []int64{7}},
		{"reshape flat", "[1,2,3,4]", valueFlags{dtype: "int16", shape: "2,2"}, types.Int16, "(2, 2)", []int16{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := parseValue(tt.raw, tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDType, v.DType())
			assert.Equal(t, tt.wantShape, v.Shape().String())
			assert.Equal(t, tt.wantData, v.Data())
		})
	}
}

func TestParseValue_Text(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare word", "b", "b"},
		{"json string", `"hello"`, "hello"},
		{"two values", "4 5", "4 5"},
		{"object", `{"a":1}`, `{"a":1}`},
		{"null", "null", "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := parseValue(tt.raw, valueFlags{})
			require.NoError(t, err)
			s, ok := v.Text()
			require.True(t, ok)
			assert.Equal(t, tt.want, s)
		})
	}

	v, err := parseValue("42", valueFlags{dtype: "str"})
	require.NoError(t, err)
	s, ok := v.Text()
	require.True(t, ok)
	assert.Equal(t, "42", s, "str dtype keeps the literal")
}

func TestParseValue_Errors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		flags valueFlags
	}{
		{"ragged", "[[1,2],[3]]", valueFlags{}},
		{"mixed bool and number", "[true, 1]", valueFlags{}},
		{"nested object", `[{"a":1}]`, valueFlags{}},
		{"overflow", "300", valueFlags{dtype: "uint8"}},
		{"negative unsigned", "-1", valueFlags{dtype: "uint32"}},
		{"fraction in int", "1.5", valueFlags{dtype: "int32"}},
		{"shape mismatch", "[1,2,3]", valueFlags{shape: "2,2"}},
		{"unknown dtype", "1", valueFlags{dtype: "complex128"}},
		{"text with dtype", "abc", valueFlags{dtype: "int8"}},
		{"text with shape", "abc", valueFlags{shape: "1"}},
		{"str with shape", "abc", valueFlags{dtype: "str", shape: "2"}},
		{"overflowing shape", "[]", valueFlags{shape: "4294967296,4294967296"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseValue(tt.raw, tt.flags)
			assert.ErrorIs(t, err, types.ErrUnsupportedValue)
		})
	}
}

func TestParseName(t *testing.T) {
	n, err := parseName("6e6f6e2d6173636969fe", true)
	require.NoError(t, err)
	key, err := n.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []byte("non-ascii\xfe"), key.Bytes())

	_, err = parseName("zz", true)
	assert.ErrorIs(t, err, types.ErrInvalidKey)

	n, err = parseName("gain", false)
	require.NoError(t, err)
	assert.Equal(t, types.TextName("gain"), n)
}

func TestFormatValue(t *testing.T) {
	grid, err := types.Array([]int32{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	one, err := types.Array([]float64{1.5})
	require.NoError(t, err)

	assert.Equal(t, "4", formatValue(types.Scalar(4.0)))
	assert.Equal(t, "[1.5]", formatValue(one))
	assert.Equal(t, "[[1,2,3],[4,5,6]]", formatValue(grid))
	assert.Equal(t, "b", formatValue(types.Text("b")))
	assert.Equal(t, "true", formatValue(types.Scalar(true)))
}
