package types

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
)

func TestComparisonToStableHLO(t *testing.T) {
	assert.Equal(t, "#stablehlo<comparison_direction LT>", CompareLT.ToStableHLO())
	assert.Equal(t, "#stablehlo<comparison_direction NE>", CompareNE.ToStableHLO())
	assert.Equal(t, "#stablehlo<comparison_type TOTALORDER>", CompareTotalOrder.ToStableHLO())
	assert.Equal(t, "#stablehlo<comparison_type UNSIGNED>", CompareUnsigned.ToStableHLO())
	assert.Contains(t, ComparisonDirection(17).ToStableHLO(), "UNKNOWN 17")
	assert.Contains(t, ComparisonType(-1).ToStableHLO(), "UNKNOWN -1")
}

func TestCompareTypeForDType(t *testing.T) {
	assert.Equal(t, CompareFloat, CompareTypeForDType(dtypes.Float16))
	assert.Equal(t, CompareFloat, CompareTypeForDType(dtypes.Complex64))
	assert.Equal(t, CompareUnsigned, CompareTypeForDType(dtypes.Bool))
	assert.Equal(t, CompareUnsigned, CompareTypeForDType(dtypes.Uint16))
	assert.Equal(t, CompareSigned, CompareTypeForDType(dtypes.Int64))
}
