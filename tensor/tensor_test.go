package tensor

import (
	"math"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestFromValue(t *testing.T) {
	x := must.M1(FromValue([][]float32{{1, 2, 3}, {4, 5, 6}}))
	assert.Equal(t, dtypes.Float32, x.DType())
	assert.Equal(t, []int{2, 3}, x.Dimensions())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, x.Flat())
	assert.Equal(t, [][]float32{{1, 2, 3}, {4, 5, 6}}, x.Value())
	assert.Equal(t, "(Float32)[2 3]: [[1 2 3] [4 5 6]]", x.String())

	// Go's int is stored as int64.
	y := must.M1(FromValue([]int{7, 8}))
	assert.Equal(t, dtypes.Int64, y.DType())
	assert.Equal(t, []int64{7, 8}, y.Flat())

	s := must.M1(FromValue(true))
	assert.True(t, s.Shape().IsScalar())
	assert.Equal(t, true, s.Value())
	assert.Equal(t, "(Bool): true", s.String())

	c := must.M1(FromValue([][][]complex64{{{1, 2, -3}, {3, 4 + 2i, -7 - 1i}}}))
	require.NoError(t, c.Shape().Check(dtypes.Complex64, 1, 2, 3))

	_, err := FromValue([][]float32{{1, 2}, {3}})
	require.Error(t, err)
	_, err = FromValue([][][]int8{{{1}}, {{2}, {3}}})
	require.Error(t, err)
	_, err = FromValue([]float32{})
	require.Error(t, err)
	_, err = FromValue("string")
	require.Error(t, err)
}

func TestFromFlatAndDimensions(t *testing.T) {
	flat := []float64{1, 2, 3, 4}
	x := FromFlatAndDimensions(flat, 2, 2)
	flat[0] = 100
	assert.Equal(t, []float64{1, 2, 3, 4}, x.Flat(), "flat values must be copied")
	assert.Panics(t, func() { _ = FromFlatAndDimensions(flat, 3) })

	z := must.M1(Zeros(shapes.Make(dtypes.Int32, 2, 0)))
	assert.Equal(t, 0, z.Size())
	assert.Equal(t, "(Int32)[2 0]: []", z.String())

	half := FromFlatAndDimensions([]float16.Float16{float16.Fromfloat32(1.5)})
	assert.Equal(t, dtypes.Float16, half.DType())
	assert.Equal(t, "(Float16)[1]: [1.5]", half.String())
}

func TestConvertDType(t *testing.T) {
	x := must.M1(FromValue([]float32{1, 2.5, -3}))
	y := must.M1(x.ConvertDType(dtypes.Float64))
	assert.Equal(t, []float64{1, 2.5, -3}, y.Flat())
	assert.Equal(t, dtypes.Float32, x.DType(), "input must not change")

	i := must.M1(x.ConvertDType(dtypes.Int32))
	assert.Equal(t, []int32{1, 2, -3}, i.Flat())

	b := must.M1(x.ConvertDType(dtypes.Bool))
	assert.Equal(t, []bool{true, true, true}, b.Flat())
	back := must.M1(must.M1(FromValue([]bool{true, false})).ConvertDType(dtypes.Float32))
	assert.Equal(t, []float32{1, 0}, back.Flat())

	bf := must.M1(x.ConvertDType(dtypes.BFloat16))
	assert.Equal(t, bfloat16.FromFloat32(2.5), bf.Flat().([]bfloat16.BFloat16)[1])

	c := must.M1(x.ConvertDType(dtypes.Complex64))
	assert.Equal(t, []complex64{1, 2.5, -3}, c.Flat())
	r := must.M1(must.M1(FromValue([]complex128{complex(2, 7)})).ConvertDType(dtypes.Float64))
	assert.Equal(t, []float64{2}, r.Flat())

	_, err := x.ConvertDType(dtypes.InvalidDType)
	require.Error(t, err)
}

func TestEqualAndAllClose(t *testing.T) {
	a := must.M1(FromValue([]float32{1.0}))
	assert.True(t, a.AllClose(must.M1(FromValue([]float32{1.0009})), 1e-3, 1e-5))
	assert.False(t, a.AllClose(must.M1(FromValue([]float32{1.01})), 1e-3, 1e-5))
	assert.False(t, a.AllClose(must.M1(FromValue([]float64{1.0})), 1e-3, 1e-5), "dtype mismatch")
	assert.False(t, a.AllClose(must.M1(FromValue([][]float32{{1.0}})), 1e-3, 1e-5), "shape mismatch")

	inf := must.M1(FromValue([]float64{math.Inf(1), 1}))
	assert.True(t, inf.AllClose(inf.Clone(), 0, 0))
	assert.True(t, inf.Equal(inf.Clone()))
	finite := must.M1(FromValue([]float64{1, 1}))
	assert.False(t, finite.AllClose(inf, 1e-3, 1e-5))
	assert.False(t, inf.AllClose(finite, 1e-3, 1e-5))
	negInf := must.M1(FromValue([]float64{math.Inf(-1), 1}))
	assert.False(t, negInf.AllClose(inf, 1e-3, 1e-5))
	assert.False(t, must.M1(FromValue([]float32{1})).AllClose(must.M1(FromValue([]float32{float32(math.Inf(1))})), 1, 1))
	cInf := must.M1(FromValue([]complex128{complex(math.Inf(1), 0)}))
	assert.False(t, must.M1(FromValue([]complex128{1})).AllClose(cInf, 1e-3, 1e-5))
	assert.True(t, cInf.AllClose(cInf.Clone(), 0, 0))
	nan := must.M1(FromValue([]float64{math.NaN()}))
	assert.False(t, nan.AllClose(nan, 1, 1))
	assert.False(t, nan.Equal(nan))

	ints := must.M1(FromValue([]int32{100, 200}))
	assert.True(t, ints.AllClose(must.M1(FromValue([]int32{101, 200})), 0.01, 0))
	assert.False(t, ints.Equal(must.M1(FromValue([]int32{101, 200}))))

	m := must.M1(FromValue([][]int8{{1, 2, 3}, {4, 5, 6}}))
	mt := must.M1(FromValue([][]int8{{1, 2}, {3, 4}, {5, 6}}))
	assert.False(t, m.Equal(mt), "same contents, different shapes")

	h1 := FromFlatAndDimensions([]float16.Float16{float16.Fromfloat32(1), float16.Fromfloat32(2)})
	h2 := FromFlatAndDimensions([]float16.Float16{float16.Fromfloat32(1), float16.Fromfloat32(2.001)})
	assert.True(t, h1.AllClose(h2, 1e-2, 0))
	assert.True(t, h1.Equal(h1.Clone()))
}

func TestLiteral(t *testing.T) {
	for _, value := range []any{
		[][]float32{{1, 2}, {3, 4}},
		[]int64{-1, 1 << 40},
		[]bool{true, false, true},
		[]uint8{0, 255},
		[]complex128{complex(1, -1)},
		int16(-7),
	} {
		x := must.M1(FromValue(value))
		literal := must.M1(x.ToLiteral())
		assert.Equal(t, int(x.Shape().Memory()), len(literal.Bytes))
		y := must.M1(FromLiteral(literal, literal.Shape.DType))
		assert.Truef(t, x.Equal(y), "round trip of %v failed: got %s", value, y)
	}

	// Little-endian wire format.
	literal := must.M1(FromScalar(int32(0x01020304)).ToLiteral())
	assert.Equal(t, []byte{4, 3, 2, 1}, literal.Bytes)

	// The dtype given to FromLiteral is the one the bytes are interpreted with.
	asUint := must.M1(FromLiteral(literal, dtypes.Uint32))
	assert.Equal(t, uint32(0x01020304), asUint.Value())

	_, err := FromLiteral(literal, dtypes.Int64)
	require.Error(t, err, "wrong number of bytes")
	_, err = FromLiteral(literal, dtypes.InvalidDType)
	require.Error(t, err)
}
