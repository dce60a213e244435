package hlo

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/x448/float16"
)

// intArray is an attribute rendered as a StableHLO dense i64 array, e.g. `array<i64: 1, 0>`.
type intArray []int

// ToStableHLO implements stableHLOer.
func (a intArray) ToStableHLO() string {
	var sb strings.Builder
	sb.WriteString("array<i64")
	for i, v := range a {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(v))
	}
	sb.WriteString(">")
	return sb.String()
}

// denseLiteral is the value of a constant, rendered as `dense<...> : tensor<...>`.
type denseLiteral struct {
	shape shapes.Shape
	flat  any
}

// ToStableHLO implements stableHLOer.
func (l *denseLiteral) ToStableHLO() string {
	var sb strings.Builder
	flatV := reflect.ValueOf(l.flat)
	sb.WriteString("dense<")
	if l.shape.IsScalar() {
		sb.WriteString(formatElement(l.shape.DType, flatV.Index(0).Interface()))
	} else if l.shape.Size() == 0 {
		sb.WriteString("[]")
	} else {
		writeDenseAxis(&sb, l.shape, flatV, 0, 0)
	}
	sb.WriteString("> : ")
	sb.WriteString(l.shape.ToStableHLO())
	return sb.String()
}

// writeDenseAxis recursively writes the nested list of elements of axis, starting at the flat index offset.
// It returns the flat index after the last element written.
func writeDenseAxis(sb *strings.Builder, shape shapes.Shape, flatV reflect.Value, axis, offset int) int {
	sb.WriteString("[")
	for i := range shape.Dimensions[axis] {
		if i > 0 {
			sb.WriteString(", ")
		}
		if axis == shape.Rank()-1 {
			sb.WriteString(formatElement(shape.DType, flatV.Index(offset).Interface()))
			offset++
		} else {
			offset = writeDenseAxis(sb, shape, flatV, axis+1, offset)
		}
	}
	sb.WriteString("]")
	return offset
}

// formatElement formats one element of a constant in the StableHLO syntax.
func formatElement(dtype dtypes.DType, element any) string {
	switch v := element.(type) {
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float32:
		return formatFloat(float64(v), dtype)
	case float64:
		return formatFloat(v, dtype)
	case float16.Float16:
		if v.IsNaN() || v.IsInf(0) {
			return fmt.Sprintf("0x%04X", v.Bits())
		}
		return formatFloat(float64(v.Float32()), dtypes.Float32)
	case bfloat16.BFloat16:
		f := v.Float32()
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Sprintf("0x%04X", uint16(v))
		}
		return formatFloat(float64(f), dtypes.Float32)
	case complex64:
		return fmt.Sprintf("(%s, %s)", formatFloat(float64(real(v)), dtypes.Float32), formatFloat(float64(imag(v)), dtypes.Float32))
	case complex128:
		return fmt.Sprintf("(%s, %s)", formatFloat(real(v), dtypes.Float64), formatFloat(imag(v), dtypes.Float64))
	default:
		return fmt.Sprintf("%d", v)
	}
}

// formatFloat formats a float with a mandatory decimal point, or as a hexadecimal bit pattern for
// non-finite values, which is what the StableHLO parser accepts.
func formatFloat(f float64, dtype dtypes.DType) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		if dtype == dtypes.Float32 {
			return fmt.Sprintf("0x%08X", math.Float32bits(float32(f)))
		}
		return fmt.Sprintf("0x%016X", math.Float64bits(f))
	}
	bitSize := 64
	if dtype == dtypes.Float32 {
		bitSize = 32
	}
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if strings.ContainsRune(s, '.') {
		return s
	}
	if pos := strings.IndexRune(s, 'e'); pos >= 0 {
		return s[:pos] + ".0" + s[pos:]
	}
	return s + ".0"
}
