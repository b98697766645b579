package attrs

import (
	"encoding/binary"
	"fmt"

	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

// byteOrder is the payload order for every numeric dtype.
var byteOrder = binary.LittleEndian

// encodeValue converts a value to its persisted record. Nothing is written;
// a failure here leaves any stored record untouched.
func encodeValue(v types.Value) (types.Record, error) {
	if !v.Valid() {
		return types.Record{}, fmt.Errorf("%w: zero value", types.ErrUnsupportedValue)
	}
	shape := v.Shape()
	if err := shape.Validate(); err != nil {
		return types.Record{}, err
	}
	rec := types.Record{DType: v.DType(), Shape: shape}

	if s, ok := v.Text(); ok {
		rec.Payload = []byte(s)
		return rec, nil
	}

	payload, err := binary.Append(make([]byte, 0, v.Len()*v.DType().Size()), byteOrder, v.Data())
	if err != nil {
		return types.Record{}, fmt.Errorf("%w: encoding %s payload: %v", types.ErrUnsupportedValue, v.DType(), err)
	}
	rec.Payload = payload
	return rec, nil
}

// decodeRecord rebuilds a value from its persisted record, keeping the
// stored shape exactly.
func decodeRecord(rec types.Record) (types.Value, error) {
	if !rec.DType.Valid() {
		return types.Value{}, fmt.Errorf("%w: unknown dtype %q", types.ErrCorruptRecord, rec.DType)
	}
	if err := rec.Shape.Validate(); err != nil {
		return types.Value{}, fmt.Errorf("%w: %v", types.ErrCorruptRecord, err)
	}

	if rec.DType == types.String {
		if rec.Shape.Rank() != 0 {
			return types.Value{}, fmt.Errorf("%w: str record has shape %s", types.ErrCorruptRecord, rec.Shape)
		}
		return types.Text(string(rec.Payload)), nil
	}

	n := rec.Shape.Size()
	if want := n * rec.DType.Size(); len(rec.Payload) != want {
		return types.Value{}, fmt.Errorf("%w: %s %s payload is %d bytes, want %d",
			types.ErrCorruptRecord, rec.DType, rec.Shape, len(rec.Payload), want)
	}
	data := types.MakeData(rec.DType, n)
	if _, err := binary.Decode(rec.Payload, byteOrder, data); err != nil {
		return types.Value{}, fmt.Errorf("%w: decoding %s payload: %v", types.ErrCorruptRecord, rec.DType, err)
	}
	return types.NewValue(rec.DType, rec.Shape, data)
}
