package hostref

import (
	"reflect"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/gomlx/lazyhlo/types/shapes"
)

// class of a dtype, for the element-wise kernels.
type class int

const (
	classBool class = iota
	classInt
	classUint
	classFloat
	classComplex
)

func classOf(dtype dtypes.DType) class {
	switch dtype {
	case dtypes.Bool:
		return classBool
	case dtypes.Int8, dtypes.Int16, dtypes.Int32, dtypes.Int64:
		return classInt
	case dtypes.Uint8, dtypes.Uint16, dtypes.Uint32, dtypes.Uint64:
		return classUint
	case dtypes.Float16, dtypes.BFloat16, dtypes.Float32, dtypes.Float64:
		return classFloat
	case dtypes.Complex64, dtypes.Complex128:
		return classComplex
	}
	exceptions.Panicf("dtype %s not supported by the host reference client", dtype)
	panic(nil) // Unreachable.
}

// isHalf returns whether dtype is a 16 bits float, which Go stores as a named uint16.
func isHalf(dtype dtypes.DType) bool {
	return dtype == dtypes.Float16 || dtype == dtypes.BFloat16
}

// wide holds the elements of a tensor converted to the widest Go type of its class, which is what
// the element-wise kernels compute with. Narrowing back truncates integers the same way Go
// conversions do, so modular arithmetic is preserved.
type wide struct {
	class     class
	bools     []bool
	ints      []int64
	uints     []uint64
	floats    []float64
	complexes []complex128
}

// widen converts the tensor elements.
func widen(t *tensor.Tensor) *wide {
	if isHalf(t.DType()) {
		t = mustOk(t.ConvertDType(dtypes.Float64))
	}
	w := &wide{class: classOf(t.DType())}
	flatV := reflect.ValueOf(t.Flat())
	size := flatV.Len()
	switch w.class {
	case classBool:
		w.bools = append([]bool(nil), t.Flat().([]bool)...)
	case classInt:
		w.ints = make([]int64, size)
		for ii := range size {
			w.ints[ii] = flatV.Index(ii).Int()
		}
	case classUint:
		w.uints = make([]uint64, size)
		for ii := range size {
			w.uints[ii] = flatV.Index(ii).Uint()
		}
	case classFloat:
		w.floats = make([]float64, size)
		for ii := range size {
			w.floats[ii] = flatV.Index(ii).Float()
		}
	case classComplex:
		w.complexes = make([]complex128, size)
		for ii := range size {
			w.complexes[ii] = flatV.Index(ii).Complex()
		}
	}
	return w
}

// narrow converts the elements back to a tensor of the given shape. The shape dtype must be of the
// same class as w.
func (w *wide) narrow(shape shapes.Shape) *tensor.Tensor {
	dtype := shape.DType
	if classOf(dtype) != w.class {
		exceptions.Panicf("cannot store %d elements of class %d as %s", w.len(), w.class, shape)
	}
	if isHalf(dtype) {
		t := mustOk(tensor.FromAnyFlat(w.floats, shape.Dimensions...))
		return mustOk(t.ConvertDType(dtype))
	}
	size := w.len()
	flatV := reflect.MakeSlice(reflect.SliceOf(dtype.GoType()), size, size)
	for ii := range size {
		element := flatV.Index(ii)
		switch w.class {
		case classBool:
			element.SetBool(w.bools[ii])
		case classInt:
			element.SetInt(w.ints[ii])
		case classUint:
			element.SetUint(w.uints[ii])
		case classFloat:
			element.SetFloat(w.floats[ii])
		case classComplex:
			element.SetComplex(w.complexes[ii])
		}
	}
	return mustOk(tensor.FromAnyFlat(flatV.Interface(), shape.Dimensions...))
}

func (w *wide) len() int {
	switch w.class {
	case classBool:
		return len(w.bools)
	case classInt:
		return len(w.ints)
	case classUint:
		return len(w.uints)
	case classFloat:
		return len(w.floats)
	default:
		return len(w.complexes)
	}
}

// mustOk panics with err, if not nil, and returns the value otherwise.
func mustOk[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}
	return value
}
