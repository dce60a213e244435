package bridge_test

import (
	"testing"

	"github.com/gomlx/lazyhlo"
	"github.com/gomlx/lazyhlo/backends/hostref"
	"github.com/gomlx/lazyhlo/bridge"
	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/ir"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBridge(t *testing.T) (*bridge.Bridge, *hostref.Client) {
	client, err := hostref.New(hostref.Config{
		LocalDevices:  []string{"cpu:0", "cpu:1", "gpu:0"},
		DefaultDevice: "cpu:1",
	})
	require.NoError(t, err)
	return must.M1(bridge.New(client)), client
}

func TestDefaultDevice(t *testing.T) {
	b, _ := newBridge(t)
	dev, err := b.DefaultDevice()
	require.NoError(t, err)
	assert.Equal(t, device.New(device.KindCPU, 1), dev)

	handle, err := b.DefaultDeviceHandle()
	require.NoError(t, err)
	assert.Equal(t, 1, handle.Ordinal())
	assert.Equal(t, "lazy:1", handle.String())
	assert.Equal(t, dev, handle.Device())

	handle, err = b.DeviceHandleFor(device.MustParse("gpu:0"))
	require.NoError(t, err)
	assert.Equal(t, "lazy:2", handle.String())

	_, err = b.DeviceHandleFor(device.MustParse("tpu:0"))
	require.Error(t, err)
}

func TestNewWithoutDevices(t *testing.T) {
	client := must.M1(hostref.New(hostref.Config{}))
	_, err := bridge.New(noDevices{client})
	require.Error(t, err)
}

type noDevices struct {
	device.Client
}

func (noDevices) LocalDevices() []string { return nil }

func TestFromHost(t *testing.T) {
	b, client := newBridge(t)
	dev := device.MustParse("gpu:0")
	host := tensor.MustFromValue([][]int32{{1, 2}, {3, 4}})
	x, err := b.FromHost(host, dev)
	require.NoError(t, err)
	assert.Equal(t, dev, x.Device())
	assert.Equal(t, host.Shape(), x.Shape())
	assert.Equal(t, host.DType(), x.DType())
	assert.Equal(t, []int{2, 2}, x.Dimensions())
	assert.Equal(t, ir.OpDeviceData, x.IRValue().Node().Kind())
	assert.Equal(t, 1, client.NumData())

	got, err := x.ToHost()
	require.NoError(t, err)
	assert.True(t, host.Equal(got), "got %s", got)
	assert.Equal(t, 0, client.NumComputations())

	// Cached: the device is not accessed again.
	client.FailNext(hostref.CallTransferFromServer, errors.New("unexpected transfer"))
	again, err := x.ToHost()
	require.NoError(t, err)
	assert.Same(t, got, again)
}

func TestFromIR(t *testing.T) {
	b, client := newBridge(t)
	dev := must.M1(b.DefaultDevice())
	x := must.M1(b.FromHost(tensor.MustFromValue([]float32{1, 4, 9}), dev))
	root := must.M1(ir.Sqrt(x.IRValue()))
	root = must.M1(ir.Add(root, x.IRValue()))
	y, err := b.FromIR(root, dev)
	require.NoError(t, err)
	assert.Equal(t, x.Shape(), y.Shape())

	numData := client.NumData()
	got, err := y.ToHost()
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 6, 12}, got.Value())
	assert.Equal(t, 0, client.NumComputations())
	assert.Equal(t, numData, client.NumData(), "computed results are released after fetching")

	// Failures are reported with their stage, and nothing is cached.
	z := must.M1(b.FromIR(must.M1(ir.Neg(root)), dev))
	client.FailNext(hostref.CallExecute, errors.New("device lost"))
	_, err = z.ToHost()
	require.Error(t, err)
	assert.True(t, lazyhlo.IsStage(err, lazyhlo.StageExecution), "got %+v", err)
	got, err = z.ToHost()
	require.NoError(t, err)
	assert.Equal(t, []float32{-2, -6, -12}, got.Value())
	assert.Equal(t, numData, client.NumData())
}

func TestFromIRErrors(t *testing.T) {
	b, _ := newBridge(t)
	dev := must.M1(b.DefaultDevice())
	_, err := b.FromIR(ir.Value{}, dev)
	require.Error(t, err)

	other := ir.NewGraph("other")
	v := must.M1(other.Constant(tensor.FromScalar(float32(1))))
	_, err = b.FromIR(v, dev)
	require.ErrorContains(t, err, "other")
}
