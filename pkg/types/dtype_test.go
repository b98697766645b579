package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDType(t *testing.T) {
	for _, d := range []DType{Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64, Float32, Float64, Bool, String} {
		t.Run(string(d), func(t *testing.T) {
			got, err := ParseDType(string(d))
			require.NoError(t, err)
			assert.Equal(t, d, got)
			assert.Positive(t, got.Size())
		})
	}

	_, err := ParseDType("complex128")
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestShape(t *testing.T) {
	tests := []struct {
		shape    Shape
		wantStr  string
		wantSize int
	}{
		{Shape{}, "()", 1},
		{Shape{1}, "(1,)", 1},
		{Shape{2}, "(2,)", 2},
		{Shape{2, 3}, "(2, 3)", 6},
		{Shape{0}, "(0,)", 0},
	}
	for _, tt := range tests {
		t.Run(tt.wantStr, func(t *testing.T) {
			assert.Equal(t, tt.wantStr, tt.shape.String())
			assert.Equal(t, tt.wantSize, tt.shape.Size())
			assert.NoError(t, tt.shape.Validate())
		})
	}

	assert.False(t, Shape{}.Equal(Shape{1}), "rank 0 and (1,) differ")
	assert.True(t, Shape{2, 3}.Equal(Shape{2, 3}))
	assert.ErrorIs(t, Shape{-1}.Validate(), ErrUnsupportedValue)
	assert.ErrorIs(t, make(Shape, MaxRank+1).Validate(), ErrUnsupportedValue)
}

func TestShapeValidate_ElementBound(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		ok    bool
	}{
		{"at bound", Shape{MaxElements}, true},
		{"split at bound", Shape{MaxElements / 4, 4}, true},
		{"zero dimension", Shape{0, 1 << 20}, true},
		{"one past bound", Shape{MaxElements + 1}, false},
		{"product overflows int", Shape{1 << 32, 1 << 32}, false},
		{"zero does not hide huge dimensions", Shape{1 << 32, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUnsupportedValue)
			}
		})
	}
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		in      string
		want    Shape
		wantErr bool
	}{
		{in: "", want: Shape{}},
		{in: "()", want: Shape{}},
		{in: "1", want: Shape{1}},
		{in: "(1,)", want: Shape{1}},
		{in: "2, 3", want: Shape{2, 3}},
		{in: "x", wantErr: true},
		{in: "-2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseShape(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedValue)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}
