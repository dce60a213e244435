package lazyhlo_test

import (
	"fmt"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/lazyhlo"
	"github.com/gomlx/lazyhlo/backends/hostref"
	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/ir"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

// interceptingClient wraps a device client to observe and tamper with the calls of the pipeline.
type interceptingClient struct {
	device.Client

	arguments [][]device.Data
	instances []device.CompileInstance

	// annotate, if set, rewrites the data returned by executions.
	annotate func(device.Data) device.Data

	// literals, if set, rewrites the literals returned by transfers to host.
	literals func([]device.Literal) []device.Literal
}

func (c *interceptingClient) Compile(instances []device.CompileInstance) ([]device.Computation, error) {
	c.instances = append(c.instances, instances...)
	return c.Client.Compile(instances)
}

func (c *interceptingClient) ExecuteComputation(computation device.Computation, arguments []device.Data, deviceName string,
	options device.ExecuteOptions) ([]device.Data, error) {
	c.arguments = append(c.arguments, arguments)
	results, err := c.Client.ExecuteComputation(computation, arguments, deviceName, options)
	if err == nil && c.annotate != nil {
		for ii := range results {
			results[ii] = c.annotate(results[ii])
		}
	}
	return results, err
}

func (c *interceptingClient) TransferFromServer(data []device.Data) ([]device.Literal, error) {
	literals, err := c.Client.TransferFromServer(data)
	if err == nil && c.literals != nil {
		literals = c.literals(literals)
	}
	return literals, err
}

func newPipeline(t *testing.T, config hostref.Config) (*lazyhlo.Pipeline, *hostref.Client, *interceptingClient) {
	client, err := hostref.New(config)
	require.NoError(t, err)
	intercepting := &interceptingClient{Client: client}
	return lazyhlo.New(intercepting), client, intercepting
}

func TestRoundTrip(t *testing.T) {
	values := []*tensor.Tensor{
		tensor.MustFromValue([][]float32{{1, 2, 3}, {4, 5, 6}}),
		tensor.MustFromValue([]float64{-1.5, 1e100}),
		tensor.MustFromValue([][][]int64{{{1}, {2}}}),
		tensor.MustFromValue([]uint8{0, 255}),
		tensor.MustFromValue([]bool{true, false, true}),
		tensor.MustFromValue([]complex64{1 + 2i}),
		tensor.FromFlatAndDimensions([]float16.Float16{float16.Fromfloat32(0.5), float16.Fromfloat32(-2)}, 2),
		tensor.FromFlatAndDimensions([]bfloat16.BFloat16{bfloat16.FromFloat32(3)}, 1),
		tensor.FromScalar(int32(-42)),
		must.M1(tensor.Zeros(shapes.Make(dtypes.Float32, 0, 3))),
	}
	for _, devName := range []string{"cpu:0", "gpu:1", "tpu:0"} {
		dev := device.MustParse(devName)
		p, client, _ := newPipeline(t, hostref.Config{LocalDevices: []string{"cpu:0", "gpu:1", "tpu:0"}})
		for _, value := range values {
			t.Run(fmt.Sprintf("%s/%s", dev, value.Shape()), func(t *testing.T) {
				g := ir.NewGraph(t.Name())
				v, err := p.WrapAsIRValue(g, value, dev)
				require.NoError(t, err)
				assert.Equal(t, devName, v.Node().Data().Device)
				assert.True(t, v.Shape().Equal(value.Shape()))
				results, err := p.ExecuteAndFetch([]ir.Value{v}, dev)
				require.NoError(t, err)
				require.Len(t, results, 1)
				assert.True(t, value.Equal(results[0]), "got %s, wanted %s", results[0], value)
			})
		}
		assert.Equal(t, 0, client.NumComputations(), "per-call computations are released")
	}
}

func TestOrderPreservation(t *testing.T) {
	p, client, intercepting := newPipeline(t, hostref.Config{})
	dev := device.MustParse("cpu:0")
	g := ir.NewGraph(t.Name())
	for numRoots := range 5 {
		roots := make([]ir.Value, numRoots)
		for ii := range roots {
			roots[ii] = must.M1(g.Constant(tensor.FromScalar(int64(ii * 10))))
		}
		results, err := p.ExecuteAndFetch(roots, dev)
		require.NoError(t, err)
		require.Len(t, results, numRoots)
		for ii, result := range results {
			assert.Equal(t, int64(ii*10), result.Value())
		}
	}
	assert.Len(t, intercepting.instances, 4, "nothing is compiled for zero roots")
	assert.Equal(t, 0, client.NumComputations())
}

func TestExecuteCompileInstance(t *testing.T) {
	p, _, intercepting := newPipeline(t, hostref.Config{LocalDevices: []string{"cpu:0", "tpu:0", "tpu:1"}})
	dev := device.MustParse("tpu:1")
	g := ir.NewGraph(t.Name())
	x := must.M1(p.WrapAsIRValue(g, tensor.MustFromValue([][]float32{{1, 2}, {3, 4}}), dev))
	handles := must.M1(p.Execute([]ir.Value{must.M1(ir.Neg(x)), x}, dev))
	require.Len(t, handles, 2)
	assert.Equal(t, "tpu:1", handles[0].Device)

	require.Len(t, intercepting.instances, 1)
	instance := intercepting.instances[0]
	assert.Equal(t, "tpu:1", instance.CompilationDevice)
	assert.Equal(t, []string{"tpu:0", "tpu:1"}, instance.Devices)
	require.NotNil(t, instance.OutputShape)
	require.Equal(t, 2, instance.OutputShape.TupleSize())
	assert.Equal(t, [][]int{{8, 128}}, instance.OutputShape.TupleShapes[0].Layout.Tiles, "TPU layout")
	assert.True(t, device.HasDeviceLayout(*instance.OutputShape, device.KindTPU))

	results := must.M1(p.Fetch(handles))
	assert.Equal(t, [][]float32{{-1, -2}, {-3, -4}}, results[0].Value())
	assert.Equal(t, [][]float32{{1, 2}, {3, 4}}, results[1].Value())
}

func TestExecuteOnAnotherDevice(t *testing.T) {
	p, client, _ := newPipeline(t, hostref.Config{LocalDevices: []string{"cpu:0", "cpu:1"}})
	g := ir.NewGraph(t.Name())
	x := must.M1(p.WrapAsIRValue(g, tensor.MustFromValue([]float32{1, 2}), device.MustParse("cpu:0")))
	_, err := p.Execute([]ir.Value{must.M1(ir.Neg(x))}, device.MustParse("cpu:1"))
	require.Error(t, err)
	assert.True(t, lazyhlo.IsStage(err, lazyhlo.StageExecution), "got %+v", err)
	assert.Equal(t, 0, client.NumComputations())
}

// A graph whose parameters are reached during lowering in the reverse order they were declared.
func TestParameterOrder(t *testing.T) {
	p, _, intercepting := newPipeline(t, hostref.Config{})
	dev := device.MustParse("cpu:0")
	g := ir.NewGraph(t.Name())
	a := must.M1(p.WrapAsIRValue(g, tensor.MustFromValue([]float32{1, 2}), dev))
	b := must.M1(p.WrapAsIRValue(g, tensor.MustFromValue([]float32{10, 20}), dev))
	root := must.M1(ir.Sub(b, a))

	results := must.M1(p.ExecuteAndFetch([]ir.Value{root}, dev))
	assert.Equal(t, []float32{9, 18}, results[0].Value())
	require.Len(t, intercepting.arguments, 1)
	assert.Equal(t, []device.Data{b.Node().Data(), a.Node().Data()}, intercepting.arguments[0])

	// Shared leaves are a single parameter, even when reached from several roots.
	results = must.M1(p.ExecuteAndFetch([]ir.Value{must.M1(ir.Add(a, a)), a, root}, dev))
	assert.Equal(t, []float32{2, 4}, results[0].Value())
	assert.Equal(t, []device.Data{a.Node().Data(), b.Node().Data()}, intercepting.arguments[1])
}

func TestFetchDecodesWithLiteralDType(t *testing.T) {
	p, _, intercepting := newPipeline(t, hostref.Config{})
	dev := device.MustParse("cpu:0")
	g := ir.NewGraph(t.Name())
	x := must.M1(g.Constant(tensor.MustFromValue([]int32{1, -1})))

	// The handle annotation is wrong, the literal is right.
	intercepting.annotate = func(data device.Data) device.Data {
		data.Shape = shapes.Make(dtypes.Float64, data.Shape.Dimensions...)
		return data
	}
	handles := must.M1(p.Execute([]ir.Value{x}, dev))
	assert.Equal(t, dtypes.Float64, handles[0].Shape.DType)
	results := must.M1(p.Fetch(handles))
	assert.Equal(t, dtypes.Int32, results[0].DType())
	assert.Equal(t, []int32{1, -1}, results[0].Value())

	// The literal dtype is taken at face value: the same bytes decoded as uint32.
	intercepting.literals = func(literals []device.Literal) []device.Literal {
		literals[0].Shape = shapes.Make(dtypes.Uint32, literals[0].Shape.Dimensions...)
		return literals
	}
	results = must.M1(p.Fetch(handles))
	assert.Equal(t, []uint32{1, 0xFFFFFFFF}, results[0].Value())
}

func TestStageErrors(t *testing.T) {
	p, client, intercepting := newPipeline(t, hostref.Config{})
	dev := device.MustParse("cpu:0")
	g := ir.NewGraph(t.Name())
	value := tensor.MustFromValue([]float32{1, 2})
	x := must.M1(p.WrapAsIRValue(g, value, dev))
	injected := errors.New("device lost")

	checkStage := func(t *testing.T, err error, stage lazyhlo.Stage) {
		require.Error(t, err)
		assert.True(t, lazyhlo.IsStage(err, stage), "expected a %s error, got %v", stage, err)
		assert.Equal(t, stage, lazyhlo.ErrorStage(err))
		var stageErr *lazyhlo.StageError
		require.True(t, errors.As(err, &stageErr))
		fmt.Printf("%s: %v\n", t.Name(), err)
	}

	t.Run("transfer to device", func(t *testing.T) {
		client.FailNext(hostref.CallTransferToServer, injected)
		_, err := p.WrapAsIRValue(g, value, dev)
		checkStage(t, err, lazyhlo.StageTransfer)
		require.ErrorIs(t, err, injected)

		_, err = p.ToDeviceData(value, device.MustParse("gpu:0"))
		checkStage(t, err, lazyhlo.StageTransfer)
	})

	t.Run("lowering", func(t *testing.T) {
		opaque := must.M1(g.Opaque("custom", x.Shape(), x))
		_, err := p.Execute([]ir.Value{x, opaque}, dev)
		checkStage(t, err, lazyhlo.StageLowering)
		assert.Contains(t, err.Error(), "root #1")

		_, err = p.Execute([]ir.Value{x, must.M1(ir.NewGraph("other").Constant(value))}, dev)
		checkStage(t, err, lazyhlo.StageLowering)
	})

	t.Run("compile", func(t *testing.T) {
		client.FailNext(hostref.CallCompile, injected)
		_, err := p.Execute([]ir.Value{x}, dev)
		checkStage(t, err, lazyhlo.StageCompile)
		require.ErrorIs(t, err, injected)

		client.FailNext(hostref.CallCompilationDevices, injected)
		_, err = p.Execute([]ir.Value{x}, dev)
		checkStage(t, err, lazyhlo.StageCompile)
	})

	t.Run("execution", func(t *testing.T) {
		client.FailNext(hostref.CallExecute, injected)
		_, err := p.ExecuteAndFetch([]ir.Value{x}, dev)
		checkStage(t, err, lazyhlo.StageExecution)
		assert.Equal(t, 0, client.NumComputations(), "computation released on failure")

		// Division by zero is caught by the device.
		zero := must.M1(g.Constant(tensor.MustFromValue([]int32{0})))
		_, err = p.Execute([]ir.Value{must.M1(ir.Div(zero, zero))}, dev)
		checkStage(t, err, lazyhlo.StageExecution)
	})

	t.Run("transfer to host", func(t *testing.T) {
		handles := must.M1(p.Execute([]ir.Value{x}, dev))
		client.FailNext(hostref.CallTransferFromServer, injected)
		_, err := p.Fetch(handles)
		checkStage(t, err, lazyhlo.StageTransfer)

		require.NoError(t, client.ReleaseData(handles...))
		_, err = p.Fetch(handles)
		checkStage(t, err, lazyhlo.StageTransfer)
	})

	t.Run("decode", func(t *testing.T) {
		handles := must.M1(p.Execute([]ir.Value{x, x}, dev))
		intercepting.literals = func(literals []device.Literal) []device.Literal {
			literals[1].Shape.DType = dtypes.InvalidDType
			return literals
		}
		defer func() { intercepting.literals = nil }()
		_, err := p.Fetch(handles)
		checkStage(t, err, lazyhlo.StageDecode)
	})
}
