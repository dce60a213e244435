package hlo

import (
	"fmt"
	"math"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lazyhlo/internal/optypes"
	"github.com/gomlx/lazyhlo/types"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func must[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}
	return value
}

func TestBuilder(t *testing.T) {
	t.Run("no inputs", func(t *testing.T) {
		b := New(t.Name())
		fn := b.Main()
		c1 := must(fn.ConstantFromFlatAndDimensions([]float64{1.0}))
		c2 := must(fn.ConstantFromFlatAndDimensions([]float64{2.0}))
		sum := must(Add(c1, c2))
		require.NoError(t, fn.Return(sum))
		program := string(must(b.Build()))
		fmt.Printf("%s program:\n%s", t.Name(), program)
		assert.Contains(t, program, "module @TestBuilder_no_inputs {\n")
		assert.Contains(t, program,
			`  func.func @main() -> tensor<f64> {
    %0 = "stablehlo.constant"() {value = dense<1.0> : tensor<f64>} : () -> tensor<f64>
    %1 = "stablehlo.constant"() {value = dense<2.0> : tensor<f64>} : () -> tensor<f64>
    %2 = "stablehlo.add"(%0, %1) : (tensor<f64>, tensor<f64>) -> tensor<f64>
    "func.return"(%2) : (tensor<f64>) -> ()
  }`)
	})

	t.Run("with inputs", func(t *testing.T) {
		builder := New(t.Name())
		shape := shapes.Make(dtypes.Float64)
		lhs, rhs := NamedValue("lhs", shape), NamedValue("rhs", shape)
		fn := builder.Main(lhs, rhs)
		sum := must(Add(lhs, rhs))
		require.NoError(t, fn.Return(sum))
		program := string(must(builder.Build()))
		fmt.Printf("%s program:\n%s", t.Name(), program)
		assert.Contains(t, program,
			`  func.func @main(%lhs: tensor<f64>, %rhs: tensor<f64>) -> tensor<f64> {
    %0 = "stablehlo.add"(%lhs, %rhs) : (tensor<f64>, tensor<f64>) -> tensor<f64>
    "func.return"(%0) : (tensor<f64>) -> ()
  }`)
	})

	t.Run("multiple outputs", func(t *testing.T) {
		builder := New(t.Name())
		fn := builder.Main()
		x := fn.Input(shapes.Make(dtypes.Float32, 2))
		y := fn.Input(shapes.Make(dtypes.Float32, 2))
		lt := must(Compare(x, y, types.CompareLT, types.CompareFloat))
		smallest := must(Select(lt, x, y))
		require.NoError(t, fn.Return(smallest, lt))
		program := string(must(builder.Build()))
		fmt.Printf("%s program:\n%s", t.Name(), program)
		assert.Contains(t, program,
			`  func.func @main(%arg0: tensor<2xf32>, %arg1: tensor<2xf32>) -> (tensor<2xf32>, tensor<2xi1>) {
    %0 = "stablehlo.compare"(%arg0, %arg1) {compare_type = #stablehlo<comparison_type FLOAT>, comparison_direction = #stablehlo<comparison_direction LT>} : (tensor<2xf32>, tensor<2xf32>) -> tensor<2xi1>
    %1 = "stablehlo.select"(%0, %arg0, %arg1) : (tensor<2xi1>, tensor<2xf32>, tensor<2xf32>) -> tensor<2xf32>
    "func.return"(%1, %0) : (tensor<2xf32>, tensor<2xi1>) -> ()
  }`)
	})
}

func TestConstants(t *testing.T) {
	fn := New(t.Name()).Main()
	c := must(fn.ConstantFromFlatAndDimensions([]float32{1, 2.5, float32(math.NaN()), 4}, 2, 2))
	stmt := fn.Statements[len(fn.Statements)-1]
	assert.Equal(t, `dense<[[1.0, 2.5], [0x7FC00000, 4.0]]> : tensor<2x2xf32>`, literalToStableHLO(stmt.Attributes["value"]))
	flat, shape, ok := stmt.ConstantValue()
	require.True(t, ok)
	assert.NoError(t, shape.Check(dtypes.Float32, 2, 2))
	assert.Len(t, flat, 4)
	assert.True(t, c.Shape().Equal(shape))

	must(fn.ConstantFromFlatAndDimensions([]int32{1, -2}, 2))
	stmt = fn.Statements[len(fn.Statements)-1]
	assert.Equal(t, `dense<[1, -2]> : tensor<2xi32>`, literalToStableHLO(stmt.Attributes["value"]))

	must(fn.ConstantFromFlatAndDimensions([]bool{true}))
	stmt = fn.Statements[len(fn.Statements)-1]
	assert.Equal(t, `dense<true> : tensor<i1>`, literalToStableHLO(stmt.Attributes["value"]))

	must(fn.ConstantFromFlatAndDimensions([]float64{1e20}))
	stmt = fn.Statements[len(fn.Statements)-1]
	assert.Equal(t, `dense<1.0e+20> : tensor<f64>`, literalToStableHLO(stmt.Attributes["value"]))

	_, err := fn.ConstantFromFlatAndDimensions([]float32{1, 2, 3}, 2, 2)
	require.Error(t, err)
	_, err = fn.ConstantFromFlatAndDimensions(float32(1))
	require.Error(t, err)
	_, err = fn.ConstantFromFlatAndDimensions([]string{"string"})
	require.Error(t, err)
}

func TestShapeOps(t *testing.T) {
	builder := New(t.Name())
	fn := builder.Main()
	iota := must(fn.Iota(shapes.Make(dtypes.Int32, 2, 3), -1))
	transposed := must(Transpose(iota, 1, 0))
	reshaped := must(Reshape(transposed, shapes.Make(dtypes.Int32, 6)))
	converted := must(Convert(reshaped, dtypes.Float32))
	broadcast := must(BroadcastInDim(converted, shapes.Make(dtypes.Float32, 2, 6), []int{-1}))
	require.NoError(t, fn.Return(broadcast))

	stmts := fn.Statements
	require.Len(t, stmts, 6)
	axis, ok := stmts[0].IntAttribute("iota_dimension")
	require.True(t, ok)
	assert.Equal(t, 1, axis)
	perm, ok := stmts[1].IntsAttribute("permutation")
	require.True(t, ok)
	assert.Equal(t, []int{1, 0}, perm)
	assert.Equal(t, optypes.Convert, stmts[3].OpType)
	axes, ok := stmts[4].IntsAttribute("broadcast_dimensions")
	require.True(t, ok)
	assert.Equal(t, []int{1}, axes)

	program := string(must(builder.Build()))
	fmt.Printf("%s program:\n%s", t.Name(), program)
	assert.Contains(t, program, `%0 = "stablehlo.iota"() {iota_dimension = 1 : i64} : () -> tensor<2x3xi32>`)
	assert.Contains(t, program, `%1 = "stablehlo.transpose"(%0) {permutation = array<i64: 1, 0>} : (tensor<2x3xi32>) -> tensor<3x2xi32>`)
	assert.Contains(t, program, `%2 = "stablehlo.reshape"(%1) : (tensor<3x2xi32>) -> tensor<6xi32>`)
	assert.Contains(t, program, `%3 = "stablehlo.convert"(%2) : (tensor<6xi32>) -> tensor<6xf32>`)
	assert.Contains(t, program, `%4 = "stablehlo.broadcast_in_dim"(%3) {broadcast_dimensions = array<i64: 1>} : (tensor<6xf32>) -> tensor<2x6xf32>`)
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("no main", func(t *testing.T) {
		b := New("test_program")
		fn := b.NewFunction("not_main")
		c1 := must(fn.ConstantFromFlatAndDimensions([]float64{1.0}))
		require.NoError(t, fn.Return(c1))
		_, err := b.Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "program must have a main function")
	})

	t.Run("no return", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		must(fn.ConstantFromFlatAndDimensions([]float64{1.0}))
		_, err := b.Build()
		require.Error(t, err)
	})

	t.Run("return twice", func(t *testing.T) {
		fn := New("test_program").Main()
		c1 := must(fn.ConstantFromFlatAndDimensions([]float64{1.0}))
		require.NoError(t, fn.Return(c1))
		require.Error(t, fn.Return(c1))
		_, err := Negate(c1)
		require.Error(t, err)
	})

	t.Run("operands from different functions", func(t *testing.T) {
		b := New("test_program")
		fn1, fn2 := b.Main(), b.NewFunction("other")
		c1 := must(fn1.ConstantFromFlatAndDimensions([]float64{1.0}))
		c2 := must(fn2.ConstantFromFlatAndDimensions([]float64{2.0}))
		_, err := Add(c1, c2)
		require.Error(t, err)
		require.Error(t, fn1.Return(c2))
	})

	t.Run("shape inference", func(t *testing.T) {
		fn := New("test_program").Main()
		x := fn.Input(shapes.Make(dtypes.Float32, 2))
		y := fn.Input(shapes.Make(dtypes.Float32, 3))
		_, err := Add(x, y)
		require.Error(t, err)
		_, err = Reshape(x, shapes.Make(dtypes.Float32, 3))
		require.Error(t, err)
		_, err = Reshape(x, shapes.Make(dtypes.Int32, 2))
		require.Error(t, err)
	})
}

func TestNormalizeIdentifier(t *testing.T) {
	for name, want := range map[string]string{
		"":            "",
		"fn_0":        "fn_0",
		"3d":          "_3d",
		"x.y-z":       "x_y_z",
		"pipeline/ñ":  "pipeline__",
		"graph:sqrt+": "graph_sqrt_",
	} {
		assert.Equal(t, want, NormalizeIdentifier(name), "name %q", name)
	}
}
