package hostref

import (
	"math"
	"math/cmplx"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/lazyhlo/hlo"
	"github.com/gomlx/lazyhlo/internal/optypes"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/gomlx/lazyhlo/types"
)

// executor computes the output of one program statement, given its inputs.
// Errors are raised with panics, and caught by the interpreter.
type executor func(stmt *hlo.Statement, inputs []*tensor.Tensor) *tensor.Tensor

// executors is the dispatch table of the interpreter, per operation type.
var executors = map[optypes.OpType]executor{}

// unaryKernel implements an element-wise operation per class. A nil function means the class is not supported.
type unaryKernel struct {
	ints      func(int64) int64
	uints     func(uint64) uint64
	floats    func(float64) float64
	complexes func(complex128) complex128
}

// binaryKernel is the two operands version of unaryKernel.
type binaryKernel struct {
	ints      func(a, b int64) int64
	uints     func(a, b uint64) uint64
	floats    func(a, b float64) float64
	complexes func(a, b complex128) complex128
}

var unaryKernels = map[optypes.OpType]unaryKernel{
	optypes.Negate: {
		ints:      func(x int64) int64 { return -x },
		uints:     func(x uint64) uint64 { return -x },
		floats:    func(x float64) float64 { return -x },
		complexes: func(x complex128) complex128 { return -x },
	},
	optypes.Abs: {
		ints: func(x int64) int64 {
			if x < 0 {
				return -x
			}
			return x
		},
		uints:  func(x uint64) uint64 { return x },
		floats: math.Abs,
	},
	optypes.Exponential: {floats: math.Exp, complexes: cmplx.Exp},
	optypes.Log:         {floats: math.Log, complexes: cmplx.Log},
	optypes.Sqrt:        {floats: math.Sqrt, complexes: cmplx.Sqrt},
	optypes.Tanh:        {floats: math.Tanh, complexes: cmplx.Tanh},
}

var binaryKernels = map[optypes.OpType]binaryKernel{
	optypes.Add: {
		ints:      func(a, b int64) int64 { return a + b },
		uints:     func(a, b uint64) uint64 { return a + b },
		floats:    func(a, b float64) float64 { return a + b },
		complexes: func(a, b complex128) complex128 { return a + b },
	},
	optypes.Subtract: {
		ints:      func(a, b int64) int64 { return a - b },
		uints:     func(a, b uint64) uint64 { return a - b },
		floats:    func(a, b float64) float64 { return a - b },
		complexes: func(a, b complex128) complex128 { return a - b },
	},
	optypes.Multiply: {
		ints:      func(a, b int64) int64 { return a * b },
		uints:     func(a, b uint64) uint64 { return a * b },
		floats:    func(a, b float64) float64 { return a * b },
		complexes: func(a, b complex128) complex128 { return a * b },
	},
	optypes.Divide: {
		ints: func(a, b int64) int64 {
			if b == 0 {
				exceptions.Panicf("integer division by zero")
			}
			return a / b
		},
		uints: func(a, b uint64) uint64 {
			if b == 0 {
				exceptions.Panicf("integer division by zero")
			}
			return a / b
		},
		floats:    func(a, b float64) float64 { return a / b },
		complexes: func(a, b complex128) complex128 { return a / b },
	},
	optypes.Maximum: {
		ints:  func(a, b int64) int64 { return max(a, b) },
		uints: func(a, b uint64) uint64 { return max(a, b) },
		// The builtins max and min propagate NaNs.
		floats: func(a, b float64) float64 { return max(a, b) },
	},
	optypes.Minimum: {
		ints:   func(a, b int64) int64 { return min(a, b) },
		uints:  func(a, b uint64) uint64 { return min(a, b) },
		floats: func(a, b float64) float64 { return min(a, b) },
	},
	optypes.Power: {
		ints:      powInt,
		uints:     powUint,
		floats:    math.Pow,
		complexes: cmplx.Pow,
	},
}

// powInt raises base to exp. Negative exponents truncate the fractional result towards zero.
func powInt(base, exp int64) int64 {
	if exp < 0 {
		switch base {
		case 1:
			return 1
		case -1:
			if exp%2 == 0 {
				return 1
			}
			return -1
		}
		return 0
	}
	return int64(powUint(uint64(base), uint64(exp)))
}

// powUint raises base to exp in O(bits of exp) multiplications.
func powUint(base, exp uint64) uint64 {
	result := uint64(1)
	for exp > 0 {
		if exp%2 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func init() {
	for op, kernel := range unaryKernels {
		executors[op] = func(stmt *hlo.Statement, inputs []*tensor.Tensor) *tensor.Tensor {
			return execUnary(stmt, kernel, inputs[0])
		}
	}
	for op, kernel := range binaryKernels {
		executors[op] = func(stmt *hlo.Statement, inputs []*tensor.Tensor) *tensor.Tensor {
			return execBinary(stmt, kernel, inputs[0], inputs[1])
		}
	}
	executors[optypes.Compare] = execCompare
}

func unsupported(stmt *hlo.Statement, operand *tensor.Tensor) {
	exceptions.Panicf("%s not supported for operand %s", stmt.OpType, operand.Shape())
}

func execUnary(stmt *hlo.Statement, kernel unaryKernel, operand *tensor.Tensor) *tensor.Tensor {
	outputShape := stmt.Outputs[0].Shape()
	x := widen(operand)
	if x.class == classComplex && stmt.OpType == optypes.Abs {
		// The only operation changing the class: |complex| is real.
		out := &wide{class: classFloat, floats: make([]float64, len(x.complexes))}
		for ii, v := range x.complexes {
			out.floats[ii] = cmplx.Abs(v)
		}
		return out.narrow(outputShape)
	}
	out := &wide{class: x.class}
	switch {
	case x.class == classInt && kernel.ints != nil:
		out.ints = mapSlice(x.ints, kernel.ints)
	case x.class == classUint && kernel.uints != nil:
		out.uints = mapSlice(x.uints, kernel.uints)
	case x.class == classFloat && kernel.floats != nil:
		out.floats = mapSlice(x.floats, kernel.floats)
	case x.class == classComplex && kernel.complexes != nil:
		out.complexes = mapSlice(x.complexes, kernel.complexes)
	default:
		unsupported(stmt, operand)
	}
	return out.narrow(outputShape)
}

func execBinary(stmt *hlo.Statement, kernel binaryKernel, lhs, rhs *tensor.Tensor) *tensor.Tensor {
	outputShape := stmt.Outputs[0].Shape()
	a, b := widen(lhs), widen(rhs)
	out := &wide{class: a.class}
	switch {
	case a.class == classInt && kernel.ints != nil:
		out.ints = zipSlices(a.ints, b.ints, kernel.ints)
	case a.class == classUint && kernel.uints != nil:
		out.uints = zipSlices(a.uints, b.uints, kernel.uints)
	case a.class == classFloat && kernel.floats != nil:
		out.floats = zipSlices(a.floats, b.floats, kernel.floats)
	case a.class == classComplex && kernel.complexes != nil:
		out.complexes = zipSlices(a.complexes, b.complexes, kernel.complexes)
	default:
		unsupported(stmt, lhs)
	}
	return out.narrow(outputShape)
}

func execCompare(stmt *hlo.Statement, inputs []*tensor.Tensor) *tensor.Tensor {
	direction, ok := stmt.Attributes["comparison_direction"].(types.ComparisonDirection)
	if !ok {
		exceptions.Panicf("%s without a comparison direction", stmt.OpType)
	}
	a, b := widen(inputs[0]), widen(inputs[1])
	out := &wide{class: classBool}
	switch a.class {
	case classBool:
		out.bools = zipSlices(a.bools, b.bools, func(x, y bool) bool {
			return compareOrdered(direction, boolToInt(x), boolToInt(y))
		})
	case classInt:
		out.bools = zipSlices(a.ints, b.ints, func(x, y int64) bool { return compareOrdered(direction, x, y) })
	case classUint:
		out.bools = zipSlices(a.uints, b.uints, func(x, y uint64) bool { return compareOrdered(direction, x, y) })
	case classFloat:
		out.bools = zipSlices(a.floats, b.floats, func(x, y float64) bool { return compareOrdered(direction, x, y) })
	case classComplex:
		if direction != types.CompareEQ && direction != types.CompareNE {
			exceptions.Panicf("%s %s not supported for complex numbers", stmt.OpType, direction)
		}
		out.bools = zipSlices(a.complexes, b.complexes, func(x, y complex128) bool {
			return (x == y) == (direction == types.CompareEQ)
		})
	}
	return out.narrow(stmt.Outputs[0].Shape())
}

func compareOrdered[T int64 | uint64 | float64](direction types.ComparisonDirection, x, y T) bool {
	switch direction {
	case types.CompareEQ:
		return x == y
	case types.CompareNE:
		return x != y
	case types.CompareGE:
		return x >= y
	case types.CompareGT:
		return x > y
	case types.CompareLE:
		return x <= y
	case types.CompareLT:
		return x < y
	}
	exceptions.Panicf("unknown comparison direction %s", direction)
	return false
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func mapSlice[T, R any](xs []T, fn func(T) R) []R {
	out := make([]R, len(xs))
	for ii, x := range xs {
		out[ii] = fn(x)
	}
	return out
}

// zipSlices applies fn element-wise. Operands of different sizes are a shape-inference bug upstream.
func zipSlices[T, R any](xs, ys []T, fn func(T, T) R) []R {
	if len(xs) != len(ys) {
		exceptions.Panicf("element-wise operands with different sizes %d and %d", len(xs), len(ys))
	}
	out := make([]R, len(xs))
	for ii := range xs {
		out[ii] = fn(xs[ii], ys[ii])
	}
	return out
}
