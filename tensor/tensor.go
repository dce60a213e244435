// Package tensor implements the host tensor: a typed, shaped, host-resident array.
//
// Tensors are stored as a flat Go slice (row-major) of the Go type of their dtype, e.g. []float32 for
// dtypes.Float32, []float16.Float16 for dtypes.Float16 and []bfloat16.BFloat16 for dtypes.BFloat16.
//
// A Tensor is immutable after creation: all operations that change values or dtype return a new Tensor.
package tensor

import (
	"reflect"
	"strconv"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Tensor is a host-resident array.
type Tensor struct {
	shape shapes.Shape
	flat  any
}

// supportedDTypes are the dtypes a Tensor can hold.
var supportedDTypes = map[dtypes.DType]bool{
	dtypes.Bool:       true,
	dtypes.Int8:       true,
	dtypes.Int16:      true,
	dtypes.Int32:      true,
	dtypes.Int64:      true,
	dtypes.Uint8:      true,
	dtypes.Uint16:     true,
	dtypes.Uint32:     true,
	dtypes.Uint64:     true,
	dtypes.Float16:    true,
	dtypes.BFloat16:   true,
	dtypes.Float32:    true,
	dtypes.Float64:    true,
	dtypes.Complex64:  true,
	dtypes.Complex128: true,
}

// IsSupported returns whether a Tensor can hold values of the given dtype.
func IsSupported(dtype dtypes.DType) bool {
	return supportedDTypes[dtype]
}

var (
	typeInt      = reflect.TypeOf(int(0))
	typeFloat16  = reflect.TypeOf(float16.Float16(0))
	typeBFloat16 = reflect.TypeOf(bfloat16.BFloat16(0))
)

// Zeros returns a tensor of the given shape filled with zeros.
func Zeros(shape shapes.Shape) (*Tensor, error) {
	if !shape.Ok() || shape.IsTuple() {
		return nil, errors.Errorf("tensor.Zeros: invalid or tuple shape %s", shape)
	}
	if !IsSupported(shape.DType) {
		return nil, errors.Errorf("tensor.Zeros: dtype %s not supported", shape.DType)
	}
	size := shape.Size()
	return &Tensor{
		shape: shapes.Make(shape.DType, shape.Dimensions...),
		flat:  reflect.MakeSlice(reflect.SliceOf(shape.DType.GoType()), size, size).Interface(),
	}, nil
}

// FromFlatAndDimensions creates a tensor with the given dimensions, holding a copy of the given flat values.
// The dtype is inferred from T, with Go's int mapped to dtypes.Int64.
//
// It panics if the size of flat doesn't match the dimensions.
func FromFlatAndDimensions[T dtypes.Supported](flat []T, dimensions ...int) *Tensor {
	t, err := FromAnyFlat(flat, dimensions...)
	if err != nil {
		panic(err)
	}
	return t
}

// FromAnyFlat is the non-generic version of FromFlatAndDimensions. flat must be a slice of a supported type.
func FromAnyFlat(flat any, dimensions ...int) (*Tensor, error) {
	flatV := reflect.ValueOf(flat)
	if flatV.Kind() != reflect.Slice {
		return nil, errors.Errorf("tensor.FromAnyFlat: flat values must be a slice, got %T", flat)
	}
	dtype := dtypes.FromGoType(flatV.Type().Elem())
	if !IsSupported(dtype) {
		return nil, errors.Errorf("tensor.FromAnyFlat: unsupported flat values type %T", flat)
	}
	for _, dim := range dimensions {
		if dim < 0 {
			return nil, errors.Errorf("tensor.FromAnyFlat: negative dimension in %v", dimensions)
		}
	}
	shape := shapes.Make(dtype, dimensions...)
	if shape.Size() != flatV.Len() {
		return nil, errors.Errorf("tensor.FromAnyFlat: flat values have %d elements, but shape %s has size %d",
			flatV.Len(), shape, shape.Size())
	}
	t, err := Zeros(shape)
	if err != nil {
		return nil, err
	}
	copyFlat(reflect.ValueOf(t.flat), flatV)
	return t, nil
}

// copyFlat copies src into dst, converting int elements to the sized integer type of dst.
func copyFlat(dst, src reflect.Value) {
	if src.Type().Elem() != typeInt {
		reflect.Copy(dst, src)
		return
	}
	elemType := dst.Type().Elem()
	for ii := range src.Len() {
		dst.Index(ii).Set(src.Index(ii).Convert(elemType))
	}
}

// FromScalar returns a scalar tensor holding value.
func FromScalar[T dtypes.Supported](value T) *Tensor {
	return FromFlatAndDimensions([]T{value})
}

// FromValue creates a tensor from a scalar or a multi-dimensional slice (e.g. [][]float32) with regular shape.
//
// Empty slices are not accepted, since their shape can't be inferred: use Zeros instead.
func FromValue(value any) (*Tensor, error) {
	if t, ok := value.(*Tensor); ok {
		return t, nil
	}
	shape, err := shapeOfValue(reflect.ValueOf(value))
	if err != nil {
		return nil, errors.WithMessagef(err, "tensor.FromValue(%T)", value)
	}
	t, err := Zeros(shape)
	if err != nil {
		return nil, err
	}
	flatV := reflect.ValueOf(t.flat)
	valueV := reflect.ValueOf(value)
	if shape.IsScalar() {
		copyFlat(flatV, reflect.Append(reflect.MakeSlice(reflect.SliceOf(valueV.Type()), 0, 1), valueV))
		return t, nil
	}
	copySlicesRecursively(flatV, valueV, strides(shape.Dimensions))
	return t, nil
}

// shapeOfValue returns the shape of a scalar or of a regular multi-dimensional slice.
func shapeOfValue(v reflect.Value) (shapes.Shape, error) {
	if !v.IsValid() {
		return shapes.Shape{}, errors.New("nil value has no shape")
	}
	var dims []int
	elem := v
	for elem.Kind() == reflect.Slice {
		if elem.Len() == 0 {
			return shapes.Shape{}, errors.Errorf("empty slice in %s: inner dimensions are unknown", v.Type())
		}
		dims = append(dims, elem.Len())
		elem = elem.Index(0)
	}
	dtype := dtypes.FromGoType(elem.Type())
	if dtype == dtypes.InvalidDType {
		return shapes.Shape{}, errors.Errorf("unsupported element type %s", elem.Type())
	}
	if err := checkRegular(v, dims); err != nil {
		return shapes.Shape{}, err
	}
	return shapes.Make(dtype, dims...), nil
}

// checkRegular verifies every sub-slice of v at depth i has length dims[i].
func checkRegular(v reflect.Value, dims []int) error {
	if len(dims) == 0 {
		return nil
	}
	if v.Len() != dims[0] {
		return errors.Errorf("irregular slice: got a sub-slice of length %d, expected %d", v.Len(), dims[0])
	}
	if len(dims) == 1 {
		return nil
	}
	for ii := range v.Len() {
		if err := checkRegular(v.Index(ii), dims[1:]); err != nil {
			return err
		}
	}
	return nil
}

// MustFromValue is like FromValue, but panics on error.
func MustFromValue(value any) *Tensor {
	t, err := FromValue(value)
	if err != nil {
		exceptions.Panicf("tensor.MustFromValue: %+v", err)
	}
	return t
}

// strides returns the row-major strides (in number of elements) of each axis.
func strides(dimensions []int) []int {
	s := make([]int, len(dimensions))
	current := 1
	for axis := len(dimensions) - 1; axis >= 0; axis-- {
		s[axis] = current
		current *= dimensions[axis]
	}
	return s
}

// copySlicesRecursively copies the values of a multi-dimensional slice into the flat slice.
func copySlicesRecursively(flat, mdSlice reflect.Value, strides []int) {
	if len(strides) == 1 {
		copyFlat(flat, mdSlice)
		return
	}
	for ii := range mdSlice.Len() {
		start := ii * strides[0]
		copySlicesRecursively(flat.Slice(start, start+strides[0]), mdSlice.Index(ii), strides[1:])
	}
}

// Shape of the tensor.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// DType of the tensor's elements.
func (t *Tensor) DType() dtypes.DType { return t.shape.DType }

// Dimensions returns the sizes of each axis. It must not be modified.
func (t *Tensor) Dimensions() []int { return t.shape.Dimensions }

// Rank is the number of axes.
func (t *Tensor) Rank() int { return t.shape.Rank() }

// Size is the number of elements.
func (t *Tensor) Size() int { return t.shape.Size() }

// Flat returns the flat slice of values, e.g. a []float32 for a Float32 tensor. It must not be modified.
func (t *Tensor) Flat() any { return t.flat }

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	flatV := reflect.ValueOf(t.flat)
	clone := reflect.MakeSlice(flatV.Type(), flatV.Len(), flatV.Len())
	reflect.Copy(clone, flatV)
	return &Tensor{shape: t.shape.Clone(), flat: clone.Interface()}
}

// Value returns the tensor as a multi-dimensional slice (e.g. [][]float32), or a scalar for rank-0 tensors.
// The returned value shares no memory with the tensor.
func (t *Tensor) Value() any {
	flatV := reflect.ValueOf(t.Clone().flat)
	if t.shape.IsScalar() {
		return flatV.Index(0).Interface()
	}
	return toSlicesRecursively(flatV, t.shape.Dimensions, strides(t.shape.Dimensions)).Interface()
}

func toSlicesRecursively(flat reflect.Value, dimensions, strides []int) reflect.Value {
	if len(dimensions) == 1 {
		return flat
	}
	resultType := flat.Type()
	for range len(dimensions) - 1 {
		resultType = reflect.SliceOf(resultType)
	}
	slice := reflect.MakeSlice(resultType, dimensions[0], dimensions[0])
	for ii := range dimensions[0] {
		start := ii * strides[0]
		slice.Index(ii).Set(toSlicesRecursively(flat.Slice(start, start+strides[0]), dimensions[1:], strides[1:]))
	}
	return slice
}

// Equal returns whether both tensors have the same shape and exactly the same values.
// NaN values are never equal.
func (t *Tensor) Equal(other *Tensor) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	flatV, otherV := reflect.ValueOf(t.flat), reflect.ValueOf(other.flat)
	switch t.shape.DType {
	case dtypes.Float16, dtypes.BFloat16:
		// The values are stored as bits, so compare them as float32.
		a, b := toFloat32s(t.flat), toFloat32s(other.flat)
		for ii := range a {
			if a[ii] != b[ii] {
				return false
			}
		}
		return true
	}
	for ii := range flatV.Len() {
		if !flatV.Index(ii).Equal(otherV.Index(ii)) {
			return false
		}
	}
	return true
}

// String returns the full contents of the tensor, e.g. "(Float32)[2 2]: [[1 2] [3 4]]".
func (t *Tensor) String() string {
	buf := []byte(t.shape.String())
	buf = append(buf, ": "...)
	flatV := reflect.ValueOf(t.flat)
	if t.shape.IsScalar() {
		return string(appendElement(buf, flatV.Index(0)))
	}
	if t.shape.Size() == 0 {
		return string(append(buf, "[]"...))
	}
	buf, _ = appendAxis(buf, flatV, t.shape.Dimensions, 0)
	return string(buf)
}

func appendAxis(buf []byte, flatV reflect.Value, dimensions []int, offset int) ([]byte, int) {
	buf = append(buf, '[')
	for ii := range dimensions[0] {
		if ii > 0 {
			buf = append(buf, ' ')
		}
		if len(dimensions) == 1 {
			buf = appendElement(buf, flatV.Index(offset))
			offset++
		} else {
			buf, offset = appendAxis(buf, flatV, dimensions[1:], offset)
		}
	}
	return append(buf, ']'), offset
}

func appendElement(buf []byte, v reflect.Value) []byte {
	switch v.Type() {
	case typeFloat16:
		return strconv.AppendFloat(buf, float64(v.Interface().(float16.Float16).Float32()), 'g', -1, 32)
	case typeBFloat16:
		return strconv.AppendFloat(buf, float64(v.Interface().(bfloat16.BFloat16).Float32()), 'g', -1, 32)
	}
	switch v.Kind() {
	case reflect.Bool:
		return strconv.AppendBool(buf, v.Bool())
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.AppendInt(buf, v.Int(), 10)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.AppendUint(buf, v.Uint(), 10)
	case reflect.Float32:
		return strconv.AppendFloat(buf, v.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.AppendFloat(buf, v.Float(), 'g', -1, 64)
	case reflect.Complex64:
		return append(buf, strconv.FormatComplex(v.Complex(), 'g', -1, 64)...)
	}
	return append(buf, strconv.FormatComplex(v.Complex(), 'g', -1, 128)...)
}
