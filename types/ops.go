// Package types defines the enums and attribute types used by program operations.
package types

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
)

// ComparisonType enum defined for the Compare op.
type ComparisonType int

//go:generate go tool enumer -type=ComparisonType -output=gen_comparisontype_enumer.go ops.go

const (
	// CompareFloat compares floats and complex numbers with IEEE semantics: NaN compares unequal to everything.
	CompareFloat ComparisonType = iota

	// CompareTotalOrder orders -NaN < -Inf < -Finite < -0 < +0 < +Finite < +Inf < +NaN.
	CompareTotalOrder

	CompareSigned
	CompareUnsigned
)

var comparisonTypeNames = [...]string{
	CompareFloat:      "FLOAT",
	CompareTotalOrder: "TOTALORDER",
	CompareSigned:     "SIGNED",
	CompareUnsigned:   "UNSIGNED",
}

// ToStableHLO returns the StableHLO attribute for the comparison type, e.g. "#stablehlo<comparison_type FLOAT>".
func (c ComparisonType) ToStableHLO() string {
	if !c.IsAComparisonType() {
		return fmt.Sprintf("#stablehlo<comparison_type UNKNOWN %d>", c)
	}
	return "#stablehlo<comparison_type " + comparisonTypeNames[c] + ">"
}

// ComparisonDirection enum defined for the Compare op.
type ComparisonDirection int

//go:generate go tool enumer -type=ComparisonDirection -trimprefix=Compare -output=gen_comparisondirection_enumer.go ops.go

const (
	CompareEQ ComparisonDirection = iota
	CompareGE
	CompareGT
	CompareLE
	CompareLT
	CompareNE
)

// ToStableHLO returns the StableHLO attribute for the direction, e.g. "#stablehlo<comparison_direction LT>".
func (c ComparisonDirection) ToStableHLO() string {
	if !c.IsAComparisonDirection() {
		return fmt.Sprintf("#stablehlo<comparison_direction UNKNOWN %d>", c)
	}
	return "#stablehlo<comparison_direction " + c.String() + ">"
}

// CompareTypeForDType returns the ComparisonType a Compare operation over values of the given dtype should use.
//
// Booleans are compared as unsigned integers.
func CompareTypeForDType(dtype dtypes.DType) ComparisonType {
	switch {
	case dtype.IsFloat() || dtype.IsComplex():
		return CompareFloat
	case dtype == dtypes.Bool || dtype.IsUnsigned():
		return CompareUnsigned
	default:
		return CompareSigned
	}
}
