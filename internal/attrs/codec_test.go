package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

func TestEncodeValue_Payload(t *testing.T) {
	arr, err := types.Array([]uint16{1, 0x0203})
	require.NoError(t, err)

	rec, err := encodeValue(arr)
	require.NoError(t, err)
	assert.Equal(t, types.Uint16, rec.DType)
	assert.True(t, types.Shape{2}.Equal(rec.Shape))
	assert.Equal(t, []byte{0x01, 0x00, 0x03, 0x02}, rec.Payload, "little-endian")

	rec, err = encodeValue(types.Text("hé"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hé"), rec.Payload)

	rec, err = encodeValue(types.Scalar(true))
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, rec.Payload)
	assert.Zero(t, rec.Shape.Rank())
}

func TestDecodeRecord_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		rec  types.Record
	}{
		{"short payload", types.Record{DType: types.Float64, Shape: types.Shape{2}, Payload: make([]byte, 8)}},
		{"long payload", types.Record{DType: types.Int8, Shape: types.Shape{}, Payload: []byte{1, 2}}},
		{"unknown dtype", types.Record{DType: "complex64", Shape: types.Shape{}, Payload: make([]byte, 8)}},
		{"shaped text", types.Record{DType: types.String, Shape: types.Shape{1}, Payload: []byte("x")}},
		{"negative dimension", types.Record{DType: types.Int8, Shape: types.Shape{-1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeRecord(tt.rec)
			assert.ErrorIs(t, err, types.ErrCorruptRecord)
		})
	}
}
