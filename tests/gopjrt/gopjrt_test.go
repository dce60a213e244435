// Package gopjrt runs the pipeline end-to-end on PJRT plugins, and checks the results against the
// host reference client.
package gopjrt

import (
	"flag"
	"iter"
	"math"
	"strings"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lazyhlo"
	"github.com/gomlx/lazyhlo/backends/hostref"
	"github.com/gomlx/lazyhlo/backends/xla"
	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/ir"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/gomlx/lazyhlo/testutil"
	"github.com/gomlx/lazyhlo/types"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flagPluginNames = flag.String("plugins", "cpu", "List (|-separated) of PJRT plugin names or full paths. E.g. \"cpu|cuda\"")

func getPluginNames() []string {
	var names []string
	for _, name := range strings.Split(*flagPluginNames, "|") {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// xlaClientsIterator yields a client for each plugin that can be loaded, and finalizes it afterwards.
func xlaClientsIterator(t *testing.T) iter.Seq2[string, *xla.Client] {
	return func(yield func(string, *xla.Client) bool) {
		for _, pluginName := range getPluginNames() {
			client, err := xla.New(pluginName, nil)
			if err != nil {
				t.Logf("skipping PJRT plugin %q: %v", pluginName, err)
				continue
			}
			done := !yield(pluginName, client)
			require.NoError(t, client.Finalize())
			if done {
				return
			}
		}
	}
}

// testCase builds roots over the leaves created from inputs.
type testCase struct {
	name   string
	inputs []*tensor.Tensor
	roots  func(g *ir.Graph, leaves []ir.Value) []ir.Value
}

var testCases = []testCase{
	{
		name: "Arithmetic",
		inputs: []*tensor.Tensor{
			tensor.MustFromValue([][]float32{{1, 2, 3}, {4, 5, 6}}),
			tensor.MustFromValue([][]float32{{0.5, -1, 2}, {8, 0.25, -3}}),
		},
		roots: func(g *ir.Graph, x []ir.Value) []ir.Value {
			return []ir.Value{
				must.M1(ir.Add(x[0], x[1])),
				must.M1(ir.Sub(x[1], x[0])),
				must.M1(ir.Mul(x[0], x[1])),
				must.M1(ir.Div(x[0], x[1])),
				must.M1(ir.Max(x[0], x[1])),
				must.M1(ir.Min(x[0], x[1])),
			}
		},
	},
	{
		name:   "Math",
		inputs: []*tensor.Tensor{tensor.MustFromValue([]float64{0.25, 1, 4, 9})},
		roots: func(g *ir.Graph, x []ir.Value) []ir.Value {
			return []ir.Value{
				must.M1(ir.Exp(x[0])),
				must.M1(ir.Log(x[0])),
				must.M1(ir.Sqrt(x[0])),
				must.M1(ir.Tanh(x[0])),
				must.M1(ir.Pow(x[0], x[0])),
				must.M1(ir.Abs(must.M1(ir.Neg(x[0])))),
			}
		},
	},
	{
		name:   "Integers",
		inputs: []*tensor.Tensor{tensor.MustFromValue([]int32{-7, 3, 100}), tensor.MustFromValue([]int32{2, -2, 7})},
		roots: func(g *ir.Graph, x []ir.Value) []ir.Value {
			minimum, maximum := must.M2(ir.MinMax(x[0], x[1]))
			return []ir.Value{must.M1(ir.Div(x[0], x[1])), minimum, maximum}
		},
	},
	{
		name:   "Structural",
		inputs: []*tensor.Tensor{tensor.MustFromValue([][]float32{{1, 2, 3}, {4, 5, 6}})},
		roots: func(g *ir.Graph, x []ir.Value) []ir.Value {
			iota := must.M1(g.Iota(shapes.Make(dtypes.Float32, 2, 3), 1))
			return []ir.Value{
				must.M1(ir.Reshape(x[0], 3, 2)),
				must.M1(ir.Transpose(x[0], 1, 0)),
				must.M1(ir.Broadcast(must.M1(ir.Reshape(x[0], 1, 6)), []int{4, 6}, []int{0, 1})),
				must.M1(ir.Add(x[0], iota)),
				must.M1(g.Constant(tensor.MustFromValue([]int64{1, -2}))),
			}
		},
	},
	{
		name: "CompareAndSelect",
		inputs: []*tensor.Tensor{
			tensor.MustFromValue([]float32{1, float32(math.Inf(-1)), 3, 0}),
			tensor.MustFromValue([]float32{2, 0, 3, -1}),
		},
		roots: func(g *ir.Graph, x []ir.Value) []ir.Value {
			gt := must.M1(ir.Compare(x[0], x[1], types.CompareGT))
			return []ir.Value{
				gt,
				must.M1(ir.Compare(x[0], x[1], types.CompareEQ)),
				must.M1(ir.Where(gt, x[0], x[1])),
				must.M1(ir.Convert(gt, dtypes.Int8)),
				must.M1(ir.Convert(x[1], dtypes.Float64)),
			}
		},
	},
}

// TestPipeline runs every test case on the PJRT client and on the host reference client, and compares the results.
func TestPipeline(t *testing.T) {
	reference := lazyhlo.New(must.M1(hostref.New(hostref.Config{})))
	refDevice := device.MustParse("cpu:0")
	for pluginName, client := range xlaClientsIterator(t) {
		t.Run(pluginName, func(t *testing.T) {
			p := lazyhlo.New(client)
			dev := device.MustParse(client.DefaultDevice())
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					want := run(t, reference, refDevice, tc)
					got := run(t, p, dev, tc)
					require.Len(t, got, len(want))
					for ii := range want {
						assert.True(t, testutil.CloseValues(got[ii], want[ii], 1e-5, 1e-6),
							"result #%d: got %s, wanted %s", ii, got[ii], want[ii])
					}
				})
			}
		})
	}
}

func run(t *testing.T, p *lazyhlo.Pipeline, dev device.Device, tc testCase) []*tensor.Tensor {
	g := ir.NewGraph(tc.name)
	leaves := make([]ir.Value, len(tc.inputs))
	for ii, input := range tc.inputs {
		leaves[ii] = must.M1(testutil.GetTensorIRValue(p, g, input, dev))
	}
	results, err := p.ExecuteAndFetch(tc.roots(g, leaves), dev)
	require.NoErrorf(t, err, "%+v", err)
	return results
}

// TestRoundTrip stages values on the PJRT devices and brings them back unchanged.
func TestRoundTrip(t *testing.T) {
	values := []*tensor.Tensor{
		tensor.MustFromValue([][]float32{{1, 2}, {3, 4}}),
		tensor.MustFromValue([]bool{true, false}),
		tensor.MustFromValue([]uint8{0, 255}),
		tensor.MustFromValue([]complex128{1 - 1i}),
		tensor.FromScalar(int64(math.MinInt64)),
	}
	for pluginName, client := range xlaClientsIterator(t) {
		t.Run(pluginName, func(t *testing.T) {
			p := lazyhlo.New(client)
			err := testutil.WithAllDevices(client, device.KindCPU, func(local, all []device.Device) {
				for _, value := range values {
					g := ir.NewGraph("round_trip")
					leaf := must.M1(p.WrapAsIRValue(g, value, local[0]))
					results, err := p.ExecuteAndFetch([]ir.Value{leaf}, local[0])
					require.NoError(t, err)
					assert.True(t, testutil.EqualValues(value, results[0]))
				}
			})
			require.NoError(t, err)
		})
	}
}
