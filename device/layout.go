package device

import (
	"github.com/gomlx/lazyhlo/types/shapes"
)

// TPU tiling of the two minor-most axes, and of the only axis of rank-1 values.
var (
	tpuTile2D = []int{8, 128}
	tpuTile1D = []int{128}
)

// LayoutFor returns the layout a device of the given kind uses to store an array of the given shape.
//
// All kinds use the row-major ("host-linear") axes order, minor-to-major = rank-1, ..., 0.
// TPUs also tile the minor-most axes. Scalars on a TPU are not tiled.
// It returns nil for tuples and invalid kinds.
func LayoutFor(kind Kind, shape shapes.Shape) *shapes.Layout {
	if shape.IsTuple() || !kind.IsAKind() || kind == KindInvalid {
		return nil
	}
	rank := shape.Rank()
	layout := &shapes.Layout{MinorToMajor: make([]int, rank)}
	for i := range rank {
		layout.MinorToMajor[i] = rank - 1 - i
	}
	if kind == KindTPU {
		switch {
		case rank >= 2:
			layout.Tiles = [][]int{append([]int(nil), tpuTile2D...)}
		case rank == 1:
			layout.Tiles = [][]int{append([]int(nil), tpuTile1D...)}
		}
	}
	return layout
}

// MakeShapeWithDeviceLayout returns a copy of shape with the layout required by devices of the given kind.
// Tuples are rewritten element-wise.
func MakeShapeWithDeviceLayout(shape shapes.Shape, kind Kind) shapes.Shape {
	if shape.IsTuple() {
		elements := make([]shapes.Shape, len(shape.TupleShapes))
		for i, element := range shape.TupleShapes {
			elements[i] = MakeShapeWithDeviceLayout(element, kind)
		}
		return shapes.MakeTuple(elements)
	}
	return shape.WithLayout(LayoutFor(kind, shape))
}

// HasDeviceLayout returns whether shape (every element, for tuples) carries the layout required by kind.
func HasDeviceLayout(shape shapes.Shape, kind Kind) bool {
	if shape.IsTuple() {
		for _, element := range shape.TupleShapes {
			if !HasDeviceLayout(element, kind) {
				return false
			}
		}
		return true
	}
	return shape.Layout != nil && shape.Layout.Equal(LayoutFor(kind, shape))
}
