package ir

import (
	"fmt"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/gomlx/lazyhlo/types"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/google/uuid"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeData(id uint64, shape shapes.Shape) device.Data {
	return device.Data{
		Handle: device.Handle{Owner: uuid.New(), ID: id},
		Device: "cpu:0",
		Shape:  shape,
	}
}

func TestBuilders(t *testing.T) {
	g := NewGraph("test")
	f32 := shapes.Make(dtypes.Float32, 2, 3)
	x := must.M1(g.DeviceData(fakeData(1, f32.WithLayout(&shapes.Layout{MinorToMajor: []int{1, 0}}))))
	assert.Nil(t, x.Shape().Layout, "IR values have logical shapes")
	assert.True(t, x.Shape().Equal(f32))
	c := must.M1(g.Constant(tensor.MustFromValue([][]float32{{1, 2, 3}, {4, 5, 6}})))

	sum := must.M1(Add(x, c))
	assert.Equal(t, OpAdd, sum.Node().Kind())
	assert.Equal(t, []Value{x, c}, sum.Node().Inputs())
	assert.True(t, sum.Shape().Equal(f32))

	cmp := must.M1(Compare(sum, c, types.CompareGT))
	assert.Equal(t, dtypes.Bool, cmp.Shape().DType)
	assert.Equal(t, types.CompareGT, cmp.Node().Direction())

	where := must.M1(Where(cmp, sum, c))
	assert.True(t, where.Shape().Equal(f32))

	transposed := must.M1(Transpose(where, 1, 0))
	assert.Equal(t, []int{3, 2}, transposed.Shape().Dimensions)
	reshaped := must.M1(Reshape(transposed, 6))
	assert.Equal(t, []int{6}, reshaped.Shape().Dimensions)
	converted := must.M1(Convert(reshaped, dtypes.Int32))
	assert.Equal(t, dtypes.Int32, converted.Node().DType())

	row := must.M1(g.Constant(tensor.MustFromValue([]float32{1, 2, 3})))
	broadcast := must.M1(Broadcast(row, []int{2, 3}, []int{1}))
	assert.Equal(t, []int{2, 3}, broadcast.Shape().Dimensions)
	assert.Equal(t, []int{1}, broadcast.Node().BroadcastAxes())

	iota := must.M1(g.Iota(shapes.Make(dtypes.Int64, 4), -1))
	assert.Equal(t, 0, iota.Node().Axis())

	minimum, maximum, err := MinMax(x, c)
	require.NoError(t, err)
	assert.Equal(t, minimum.Node(), maximum.Node())
	assert.Equal(t, 2, minimum.Node().NumOutputs())
	assert.Equal(t, 1, maximum.Output())
	assert.Equal(t, fmt.Sprintf("%%%d.1", maximum.NodeID()), maximum.String())

	opaque := must.M1(g.Opaque("custom", f32, x))
	assert.Equal(t, OpOpaque, opaque.Node().Kind())
	assert.Equal(t, "custom", opaque.Node().Name())
}

func TestBuilderErrors(t *testing.T) {
	g := NewGraph("errors")
	x := must.M1(g.Constant(tensor.MustFromValue([]float32{1, 2})))
	y := must.M1(g.Constant(tensor.MustFromValue([]float64{1, 2})))
	_, err := Add(x, y)
	require.Error(t, err, "dtype mismatch")

	z := must.M1(g.Constant(tensor.MustFromValue([]float32{1, 2, 3})))
	_, err = Mul(x, z)
	require.Error(t, err, "shape mismatch")

	other := NewGraph("other")
	w := must.M1(other.Constant(tensor.MustFromValue([]float32{1, 2})))
	_, err = Add(x, w)
	require.Error(t, err, "values from different graphs")
	_, err = g.Opaque("foreign", x.Shape(), w)
	require.Error(t, err)

	_, err = Neg(Value{})
	require.Error(t, err, "invalid value")
	_, err = Reshape(x, 3)
	require.Error(t, err)
	_, err = Transpose(x, 1)
	require.Error(t, err)
	_, err = g.DeviceData(device.Data{Shape: x.Shape()})
	require.Error(t, err, "data without handle")
	_, err = Log(must.M1(g.Constant(tensor.MustFromValue([]int32{1}))))
	require.Error(t, err, "log of integers")
}

func TestDump(t *testing.T) {
	g := NewGraph("dump")
	shape := shapes.Make(dtypes.Float32, 2)
	a := must.M1(g.DeviceData(fakeData(7, shape)))
	b := must.M1(g.Constant(tensor.MustFromValue([]float32{1, 2})))
	unused := must.M1(Neg(b))
	sum := must.M1(Add(a, b))
	minimum, maximum := must.M2(MinMax(sum, b))
	numNodes := g.NumNodes()

	text := ToText(minimum, maximum)
	fmt.Printf("%s\n", text)
	assert.Contains(t, text, "%0 = DeviceData() {device=cpu:0, handle=#7@")
	assert.Contains(t, text, "%1 = Constant() {value=(Float32)[2]: [1 2]} : (Float32)[2]")
	assert.Contains(t, text, "%3 = Add(%0, %1) : (Float32)[2]")
	assert.Contains(t, text, "%4 = MinMax(%3, %1) : ((Float32)[2], (Float32)[2])")
	assert.Contains(t, text, "ROOT 0 = %4.0\n  ROOT 1 = %4.1\n")
	assert.NotContains(t, text, unused.String()+" =", "nodes not feeding the roots are not rendered")
	assert.Equal(t, numNodes, g.NumNodes(), "dumping must not change the graph")

	// Post-order: every node after its inputs, shared nodes only once.
	order := PostOrder(minimum, maximum)
	require.Len(t, order, 4)
	assert.Equal(t, []NodeID{0, 1, 3, 4}, []NodeID{order[0].ID(), order[1].ID(), order[2].ID(), order[3].ID()})

	dotText := must.M1(ToDot(minimum, maximum))
	fmt.Printf("%s\n", dotText)
	assert.Contains(t, dotText, "digraph dump {")
	assert.Contains(t, dotText, "n0 -> n3")
	assert.Contains(t, dotText, "n1 -> n3")
	assert.Contains(t, dotText, "n1 -> n4")
	assert.Contains(t, dotText, "n3 -> n4")
	assert.NotContains(t, dotText, "n2")

	_, err := ToDot(minimum, must.M1(NewGraph("other").Constant(tensor.FromScalar(float32(1)))))
	require.Error(t, err)
}
