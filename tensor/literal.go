package tensor

import (
	"bytes"
	"encoding/binary"
	"reflect"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/pkg/errors"
)

// ToLiteral encodes the tensor in the wire format: little-endian, row-major, one byte per boolean.
func (t *Tensor) ToLiteral() (device.Literal, error) {
	var buf bytes.Buffer
	buf.Grow(int(t.shape.Memory()))
	if err := binary.Write(&buf, binary.LittleEndian, t.flat); err != nil {
		return device.Literal{}, errors.Wrapf(err, "encoding tensor %s to literal", t.shape)
	}
	return device.Literal{
		Shape: shapes.Make(t.shape.DType, t.shape.Dimensions...),
		Bytes: buf.Bytes(),
	}, nil
}

// FromLiteral decodes a literal in the wire format into a tensor with elements of type dtype.
//
// dtype is the element type the bytes are encoded with, which callers should take from the literal
// itself (literal.Shape.DType). It fails if the dtype is not supported, if the literal is a tuple,
// or if the number of bytes doesn't match the literal dimensions.
func FromLiteral(literal device.Literal, dtype dtypes.DType) (*Tensor, error) {
	if literal.Shape.IsTuple() {
		return nil, errors.Errorf("cannot decode tuple literal %s into a tensor", literal.Shape)
	}
	if !IsSupported(dtype) {
		return nil, errors.Errorf("cannot decode literal %s, element type %s not supported", literal.Shape, dtype)
	}
	shape := shapes.Make(dtype, literal.Shape.Dimensions...)
	if uintptr(len(literal.Bytes)) != shape.Memory() {
		return nil, errors.Errorf("cannot decode literal as %s: it has %d bytes, but %d bytes were expected",
			shape, len(literal.Bytes), shape.Memory())
	}
	size := shape.Size()
	flatV := reflect.MakeSlice(reflect.SliceOf(dtype.GoType()), size, size)
	if size > 0 {
		if err := binary.Read(bytes.NewReader(literal.Bytes), binary.LittleEndian, flatV.Interface()); err != nil {
			return nil, errors.Wrapf(err, "decoding literal %s", shape)
		}
	}
	return &Tensor{shape: shape, flat: flatV.Interface()}, nil
}
