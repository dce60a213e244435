package xla

import (
	"flag"
	"testing"

	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/google/uuid"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flagPlugin = flag.String("plugin", "cpu", "PJRT plugin name or path used by the tests. Tests are skipped if it can't be loaded.")

func TestKindForPlugin(t *testing.T) {
	for name, want := range map[string]device.Kind{
		"cpu":                              device.KindCPU,
		"cuda":                             device.KindGPU,
		"rocm":                             device.KindGPU,
		"/usr/local/lib/pjrt_c_api_cpu.so": device.KindCPU,
		"pjrt_c_api_cuda_plugin.so":        device.KindGPU,
		"TPU":                              device.KindTPU,
	} {
		got, err := KindForPlugin(name)
		require.NoError(t, err, "plugin %q", name)
		assert.Equal(t, want, got, "plugin %q", name)
	}
	_, err := KindForPlugin("metal")
	require.Error(t, err)
}

func newClient(t *testing.T) *Client {
	c, err := New(*flagPlugin, nil)
	if err != nil {
		t.Skipf("PJRT plugin %q not available: %v", *flagPlugin, err)
	}
	t.Cleanup(func() { require.NoError(t, c.Finalize()) })
	return c
}

func TestTransfers(t *testing.T) {
	c := newClient(t)
	require.NotEmpty(t, c.LocalDevices())
	assert.Equal(t, c.LocalDevices()[0], c.DefaultDevice())
	assert.Subset(t, c.AllDevices(), c.LocalDevices())

	value := tensor.MustFromValue([][]float32{{1, 2}, {3, 4}})
	literal, err := value.ToLiteral()
	require.NoError(t, err)
	data, err := c.TransferToServer([]device.Literal{literal}, c.DefaultDevice())
	require.NoError(t, err)
	require.Len(t, data, 1)
	assert.True(t, value.Shape().Equal(data[0].Shape))

	literals, err := c.TransferFromServer(data)
	require.NoError(t, err)
	got, err := tensor.FromLiteral(literals[0], literals[0].Shape.DType)
	require.NoError(t, err)
	assert.True(t, value.Equal(got), "got %s", got)

	require.NoError(t, c.ReleaseData(data...))
	_, err = c.TransferFromServer(data)
	require.Error(t, err)

	foreign := data[0]
	foreign.Owner = uuid.New()
	require.Error(t, c.ReleaseData(foreign))
}

func TestCompilationDevices(t *testing.T) {
	c := newClient(t)
	target := c.DefaultDevice()
	devices, err := c.CompilationDevices(target, nil)
	require.NoError(t, err)
	assert.Equal(t, c.LocalDevices(), devices)
	_, err = c.CompilationDevices(target, []string{"tpu:99"})
	require.Error(t, err)
	_, err = c.CompilationDevices("tpu:99", nil)
	require.Error(t, err)
}

func TestTransferFromServerBatch(t *testing.T) {
	c := newClient(t)
	values := []*tensor.Tensor{
		tensor.MustFromValue([]float32{1, 2, 3}),
		tensor.MustFromValue([][]int64{{-1}, {1 << 40}}),
		tensor.MustFromValue([]uint8{7}),
		tensor.FromScalar(float64(0.5)),
	}
	literals := make([]device.Literal, len(values))
	for ii, value := range values {
		literals[ii] = must.M1(value.ToLiteral())
	}
	data := must.M1(c.TransferToServer(literals, c.DefaultDevice()))
	fetched, err := c.TransferFromServer(data)
	require.NoError(t, err)
	require.Len(t, fetched, len(values))
	for ii, literal := range fetched {
		got := must.M1(tensor.FromLiteral(literal, literal.Shape.DType))
		assert.True(t, values[ii].Equal(got), "#%d: got %s, wanted %s", ii, got, values[ii])
	}

	// One unknown handle fails the whole batch.
	require.NoError(t, c.ReleaseData(data[2]))
	_, err = c.TransferFromServer(data)
	require.Error(t, err)
	require.NoError(t, c.ReleaseData(data[0], data[1], data[3]))
}
