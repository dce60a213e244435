// Package shapes defines Shape and Layout, and the relation between Go types and dtypes.
//
// A Shape is the DType and the dimensions of a value, optionally annotated with the physical
// memory Layout a device uses to store it. The Layout is an annotation only: two shapes with the
// same DType and Dimensions are Equal regardless of their layouts.
package shapes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// Shape represents the shape of either an array or a tuple of shapes.
//
// Use Make to create a new array shape, or MakeTuple for tuples.
type Shape struct {
	DType       dtypes.DType
	Dimensions  []int
	TupleShapes []Shape

	// Layout is optional, and it is only set on shapes that have been assigned to a device.
	Layout *Layout
}

// Make returns a Shape structure filled with the values given.
// It panics if any of the dimensions is negative.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{Dimensions: slices.Clone(dimensions), DType: dtype}
	for _, dim := range dimensions {
		if dim < 0 {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with an axis with negative dimension", s)
		}
	}
	return s
}

// Invalid returns an invalid shape.
//
// Invalid().Ok() == false.
func Invalid() Shape {
	return Shape{DType: dtypes.InvalidDType}
}

// MakeTuple returns a tuple shape with the given elements.
func MakeTuple(elements []Shape) Shape {
	return Shape{DType: dtypes.InvalidDType, TupleShapes: slices.Clone(elements)}
}

// Ok returns whether this is a valid Shape.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType || len(s.TupleShapes) > 0 }

// Rank of the shape, that is, the number of dimensions.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape represents a scalar, that is there are no dimensions (rank==0).
func (s Shape) IsScalar() bool { return s.Ok() && !s.IsTuple() && s.Rank() == 0 }

// IsTuple returns whether the shape represents a tuple.
func (s Shape) IsTuple() bool { return s.DType == dtypes.InvalidDType && len(s.TupleShapes) > 0 }

// TupleSize returns the number of elements in the tuple, or 0 if it is not a tuple.
func (s Shape) TupleSize() int { return len(s.TupleShapes) }

// Dim returns the dimension of the given axis. axis can take negative numbers, in which
// case it counts as starting from the end -- so axis=-1 refers to the last axis.
// Like with a slice indexing, it panics for an out-of-bound axis.
func (s Shape) Dim(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// Size returns the number of elements of DType are needed for this shape. It's the product of all dimensions.
func (s Shape) Size() int {
	size := 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return size
}

// Memory returns the number of bytes for that would be used in Go to store the given data -- the actual
// memory may depend on the device implementation in some cases (e.g. bool).
//
// For tuples it is the sum of the memory of its elements.
func (s Shape) Memory() uintptr {
	if s.IsTuple() {
		var total uintptr
		for _, element := range s.TupleShapes {
			total += element.Memory()
		}
		return total
	}
	return s.DType.Memory() * uintptr(s.Size())
}

// String implements fmt.Stringer and pretty-prints the shape.
func (s Shape) String() string {
	if s.IsTuple() {
		parts := make([]string, 0, s.TupleSize())
		for _, element := range s.TupleShapes {
			parts = append(parts, element.String())
		}
		return fmt.Sprintf("Tuple<%s>", strings.Join(parts, ", "))
	}
	var layout string
	if s.Layout != nil {
		layout = s.Layout.String()
	}
	if s.Rank() == 0 {
		return fmt.Sprintf("(%s)%s", s.DType, layout)
	}
	return fmt.Sprintf("(%s)%v%s", s.DType, s.Dimensions, layout)
}

// Equal compares two shapes for equality: dtype and dimensions are compared, the layout is not.
func (s Shape) Equal(s2 Shape) bool {
	if s.IsTuple() != s2.IsTuple() {
		return false
	}
	if s.IsTuple() {
		if s.TupleSize() != s2.TupleSize() {
			return false
		}
		for ii, element := range s.TupleShapes {
			if !element.Equal(s2.TupleShapes[ii]) {
				return false
			}
		}
		return true
	}
	if s.DType != s2.DType {
		return false
	}
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// EqualDimensions compares two shapes for equality of dimensions. Dtypes can be different.
func (s Shape) EqualDimensions(s2 Shape) bool {
	if s.IsTuple() || s2.IsTuple() {
		return false
	}
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// EqualWithLayout is like Equal, but also requires the layouts (of every tuple element) to match.
func (s Shape) EqualWithLayout(s2 Shape) bool {
	if !s.Equal(s2) {
		return false
	}
	if s.IsTuple() {
		for ii, element := range s.TupleShapes {
			if !element.EqualWithLayout(s2.TupleShapes[ii]) {
				return false
			}
		}
		return true
	}
	return s.Layout.Equal(s2.Layout)
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() (s2 Shape) {
	s2.DType = s.DType
	s2.Dimensions = slices.Clone(s.Dimensions)
	if s.TupleShapes != nil {
		s2.TupleShapes = make([]Shape, len(s.TupleShapes))
		for ii, element := range s.TupleShapes {
			s2.TupleShapes[ii] = element.Clone()
		}
	}
	s2.Layout = s.Layout.Clone()
	return
}

// WithLayout returns a copy of the shape with the given layout.
func (s Shape) WithLayout(layout *Layout) Shape {
	s2 := s.Clone()
	s2.Layout = layout.Clone()
	return s2
}

// CheckDims returns an error if the dimensions of the shape don't match the given ones.
func (s Shape) CheckDims(dimensions ...int) error {
	if s.Rank() != len(dimensions) {
		return errors.Errorf("shape %s has incompatible rank %d (wanted %d)", s, s.Rank(), len(dimensions))
	}
	for ii, wantDim := range dimensions {
		if s.Dimensions[ii] != wantDim {
			return errors.Errorf("shape %s axis %d has dimension %d, wanted %d", s, ii, s.Dimensions[ii], wantDim)
		}
	}
	return nil
}

// Check returns an error if the dtype or the dimensions of the shape don't match.
func (s Shape) Check(dtype dtypes.DType, dimensions ...int) error {
	if s.DType != dtype {
		return errors.Errorf("shape %s has incompatible dtype %s (wanted %s)", s, s.DType, dtype)
	}
	return s.CheckDims(dimensions...)
}

// ToStableHLO returns the StableHLO type representation of the shape, e.g. "tensor<1x10xf32>".
func (s Shape) ToStableHLO() string {
	if s.IsTuple() {
		parts := make([]string, 0, s.TupleSize())
		for _, element := range s.TupleShapes {
			parts = append(parts, element.ToStableHLO())
		}
		return fmt.Sprintf("tuple<%s>", strings.Join(parts, ", "))
	}
	var sb strings.Builder
	sb.WriteString("tensor<")
	for _, dim := range s.Dimensions {
		fmt.Fprintf(&sb, "%dx", dim)
	}
	sb.WriteString(ElementTypeToStableHLO(s.DType))
	sb.WriteString(">")
	return sb.String()
}

var stableHLOElementTypes = map[dtypes.DType]string{
	dtypes.Bool:       "i1",
	dtypes.Int8:       "i8",
	dtypes.Int16:      "i16",
	dtypes.Int32:      "i32",
	dtypes.Int64:      "i64",
	dtypes.Uint8:      "ui8",
	dtypes.Uint16:     "ui16",
	dtypes.Uint32:     "ui32",
	dtypes.Uint64:     "ui64",
	dtypes.Float16:    "f16",
	dtypes.BFloat16:   "bf16",
	dtypes.Float32:    "f32",
	dtypes.Float64:    "f64",
	dtypes.Complex64:  "complex<f32>",
	dtypes.Complex128: "complex<f64>",
}

// ElementTypeToStableHLO returns the StableHLO element type of dtype, e.g. "f32" or "ui8".
func ElementTypeToStableHLO(dtype dtypes.DType) string {
	if name, found := stableHLOElementTypes[dtype]; found {
		return name
	}
	return fmt.Sprintf("unknown_dtype<%s>", dtype)
}
