package tensor

import (
	"math"
	"math/cmplx"
	"reflect"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// ConvertDType returns a copy of the tensor with its values converted to dtype.
//
// Conversions follow Go's conversion rules, plus: booleans convert to 0 or 1 and from "!= 0";
// complex values convert to real types by discarding the imaginary part; half-precision types
// convert through float32.
//
// If the tensor already has the requested dtype, a clone is returned.
func (t *Tensor) ConvertDType(dtype dtypes.DType) (*Tensor, error) {
	if !IsSupported(dtype) {
		return nil, errors.Errorf("Tensor.ConvertDType: dtype %s not supported", dtype)
	}
	if dtype == t.shape.DType {
		return t.Clone(), nil
	}
	size := t.shape.Size()
	outputV := reflect.MakeSlice(reflect.SliceOf(dtype.GoType()), size, size)
	inputV := reflect.ValueOf(t.flat)
	for ii := range size {
		setFromComplex(outputV.Index(ii), toComplex(inputV.Index(ii)))
	}
	return &Tensor{
		shape: shapes.Make(dtype, t.shape.Dimensions...),
		flat:  outputV.Interface(),
	}, nil
}

// toComplex returns the element v as a complex128.
func toComplex(v reflect.Value) complex128 {
	switch v.Type() {
	case typeFloat16:
		return complex(float64(v.Interface().(float16.Float16).Float32()), 0)
	case typeBFloat16:
		return complex(float64(v.Interface().(bfloat16.BFloat16).Float32()), 0)
	}
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return complex(float64(v.Int()), 0)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return complex(float64(v.Uint()), 0)
	case reflect.Float32, reflect.Float64:
		return complex(v.Float(), 0)
	}
	return v.Complex()
}

// setFromComplex sets the element v from c, discarding the imaginary part for non-complex elements.
func setFromComplex(v reflect.Value, c complex128) {
	re := real(c)
	switch v.Type() {
	case typeFloat16:
		v.Set(reflect.ValueOf(float16.Fromfloat32(float32(re))))
		return
	case typeBFloat16:
		v.Set(reflect.ValueOf(bfloat16.FromFloat32(float32(re))))
		return
	}
	switch v.Kind() {
	case reflect.Bool:
		v.SetBool(c != 0)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(re))
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(uint64(re))
	case reflect.Float32, reflect.Float64:
		v.SetFloat(re)
	default:
		v.SetComplex(c)
	}
}

// toFloat32s converts a []float16.Float16 or a []bfloat16.BFloat16 to []float32.
func toFloat32s(flat any) []float32 {
	switch values := flat.(type) {
	case []float16.Float16:
		converted := make([]float32, len(values))
		for ii, v := range values {
			converted[ii] = v.Float32()
		}
		return converted
	case []bfloat16.BFloat16:
		converted := make([]float32, len(values))
		for ii, v := range values {
			converted[ii] = v.Float32()
		}
		return converted
	}
	return nil
}

// AllClose returns whether both tensors have the same shape and every pair of elements a (from t)
// and b (from other) satisfies |a-b| <= atol + rtol*|b|.
//
// Equal values are always close. An infinity is close only to an infinity of the same sign, and NaN
// is never close to anything. Booleans must be equal.
func (t *Tensor) AllClose(other *Tensor, rtol, atol float64) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	switch a := t.flat.(type) {
	case []bool:
		return t.Equal(other)
	case []int8:
		return allCloseReal(a, other.flat.([]int8), rtol, atol)
	case []int16:
		return allCloseReal(a, other.flat.([]int16), rtol, atol)
	case []int32:
		return allCloseReal(a, other.flat.([]int32), rtol, atol)
	case []int64:
		return allCloseReal(a, other.flat.([]int64), rtol, atol)
	case []uint8:
		return allCloseReal(a, other.flat.([]uint8), rtol, atol)
	case []uint16:
		return allCloseReal(a, other.flat.([]uint16), rtol, atol)
	case []uint32:
		return allCloseReal(a, other.flat.([]uint32), rtol, atol)
	case []uint64:
		return allCloseReal(a, other.flat.([]uint64), rtol, atol)
	case []float32:
		return allCloseReal(a, other.flat.([]float32), rtol, atol)
	case []float64:
		return allCloseReal(a, other.flat.([]float64), rtol, atol)
	case []float16.Float16, []bfloat16.BFloat16:
		return allCloseReal(toFloat32s(a), toFloat32s(other.flat), rtol, atol)
	case []complex64:
		b := other.flat.([]complex64)
		for ii := range a {
			if !isClose(complex128(a[ii]), complex128(b[ii]), rtol, atol) {
				return false
			}
		}
		return true
	case []complex128:
		b := other.flat.([]complex128)
		for ii := range a {
			if !isClose(a[ii], b[ii], rtol, atol) {
				return false
			}
		}
		return true
	}
	return false
}

func allCloseReal[T constraints.Integer | constraints.Float](a, b []T, rtol, atol float64) bool {
	for ii := range a {
		if a[ii] == b[ii] {
			continue
		}
		x, y := float64(a[ii]), float64(b[ii])
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return false
		}
		if math.Abs(x-y) > atol+rtol*math.Abs(y) {
			return false
		}
	}
	return true
}

func isClose(a, b complex128, rtol, atol float64) bool {
	if a == b {
		return true
	}
	if cmplx.IsNaN(a) || cmplx.IsNaN(b) || cmplx.IsInf(a) || cmplx.IsInf(b) {
		return false
	}
	return cmplx.Abs(a-b) <= atol+rtol*cmplx.Abs(b)
}
