package shapes

import (
	"fmt"
	"slices"
	"strings"
)

// Layout describes how the elements of an array are physically arranged in device memory.
//
// MinorToMajor lists the axes from the fastest varying (minor) to the slowest varying (major) one.
// Tiles, if set, describe the tiling applied on top of that order, each tile listing the dimensions
// of the minor-most axes it covers.
type Layout struct {
	MinorToMajor []int
	Tiles        [][]int
}

// String returns the layout in the usual XLA notation, e.g. "{1,0:T(8,128)}".
func (l *Layout) String() string {
	if l == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("{")
	for ii, axis := range l.MinorToMajor {
		if ii > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "%d", axis)
	}
	if len(l.Tiles) > 0 {
		sb.WriteString(":")
		for _, tile := range l.Tiles {
			sb.WriteString("T(")
			for ii, dim := range tile {
				if ii > 0 {
					sb.WriteString(",")
				}
				fmt.Fprintf(&sb, "%d", dim)
			}
			sb.WriteString(")")
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// Equal returns whether both layouts are the same. Two nil layouts are equal.
func (l *Layout) Equal(l2 *Layout) bool {
	if l == nil || l2 == nil {
		return l == l2
	}
	return slices.Equal(l.MinorToMajor, l2.MinorToMajor) &&
		slices.EqualFunc(l.Tiles, l2.Tiles, func(a, b []int) bool { return slices.Equal(a, b) })
}

// Clone returns a deep copy of the layout, or nil if l is nil.
func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	l2 := &Layout{MinorToMajor: slices.Clone(l.MinorToMajor)}
	if l.Tiles != nil {
		l2.Tiles = make([][]int, len(l.Tiles))
		for ii, tile := range l.Tiles {
			l2.Tiles[ii] = slices.Clone(tile)
		}
	}
	return l2
}
