package shapes

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	assert.False(t, Invalid().Ok())

	scalar := Make(dtypes.Float64)
	require.True(t, scalar.Ok())
	assert.True(t, scalar.IsScalar())
	assert.False(t, scalar.IsTuple())
	assert.Zero(t, scalar.Rank())
	assert.Equal(t, 1, scalar.Size())
	assert.EqualValues(t, 8, scalar.Memory())

	cube := Make(dtypes.Float32, 4, 3, 2)
	require.True(t, cube.Ok())
	assert.False(t, cube.IsScalar())
	assert.Equal(t, 3, cube.Rank())
	assert.Equal(t, 24, cube.Size())
	assert.EqualValues(t, 4*24, cube.Memory())
	require.NoError(t, cube.Check(dtypes.Float32, 4, 3, 2))
	require.Error(t, cube.Check(dtypes.Float32, 4, 3))
	require.Error(t, cube.Check(dtypes.Int32, 4, 3, 2))

	for axis, want := range map[int]int{0: 4, 1: 3, 2: 2, -1: 2, -3: 4} {
		assert.Equal(t, want, cube.Dim(axis), "axis %d", axis)
	}
	assert.Panics(t, func() { _ = cube.Dim(3) })
	assert.Panics(t, func() { _ = cube.Dim(-4) })
}

func TestTuple(t *testing.T) {
	tuple := MakeTuple([]Shape{Make(dtypes.Float32, 2), Make(dtypes.Int64)})
	assert.True(t, tuple.IsTuple())
	assert.False(t, tuple.IsScalar())
	assert.Equal(t, "Tuple<(Float32)[2], (Int64)>", tuple.String())
	assert.EqualValues(t, 2*4+8, tuple.Memory())
	assert.False(t, tuple.Equal(Make(dtypes.Float32, 2)))
}

func TestToStableHLO(t *testing.T) {
	assert.Equal(t, "tensor<1x10xf32>", Make(dtypes.Float32, 1, 10).ToStableHLO())
	assert.Equal(t, "tensor<i32>", Make(dtypes.Int32).ToStableHLO())
	assert.Equal(t, "tensor<3xi1>", Make(dtypes.Bool, 3).ToStableHLO())
	assert.Equal(t, "tuple<tensor<2xui8>, tensor<complex<f64>>>",
		MakeTuple([]Shape{Make(dtypes.Uint8, 2), Make(dtypes.Complex128)}).ToStableHLO())
	assert.Equal(t, "bf16", ElementTypeToStableHLO(dtypes.BFloat16))
	assert.Contains(t, ElementTypeToStableHLO(dtypes.InvalidDType), "unknown_dtype")
}

func TestLayout(t *testing.T) {
	shape := Make(dtypes.Float32, 8, 128)
	withLayout := shape.WithLayout(&Layout{MinorToMajor: []int{1, 0}, Tiles: [][]int{{8, 128}}})
	assert.Equal(t, "{1,0:T(8,128)}", withLayout.Layout.String())
	assert.Nil(t, shape.Layout, "WithLayout must not change the original shape")
	assert.True(t, shape.Equal(withLayout))
	assert.False(t, shape.EqualWithLayout(withLayout))

	cloned := withLayout.Clone()
	cloned.Layout.Tiles[0][0] = 1
	assert.Equal(t, 8, withLayout.Layout.Tiles[0][0])
}
