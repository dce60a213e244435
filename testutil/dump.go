package testutil

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/lazyhlo"
	"github.com/gomlx/lazyhlo/bridge"
	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/ir"
	"github.com/gomlx/lazyhlo/tensor"
)

// GetTensorTextGraph renders the IR computing t as text. It doesn't execute anything.
func GetTensorTextGraph(t *bridge.Tensor) string {
	return ir.ToText(t.IRValue())
}

// GetTensorDotGraph renders the IR computing t in the Graphviz DOT format. It doesn't execute anything.
func GetTensorDotGraph(t *bridge.Tensor) string {
	dot, err := ir.ToDot(t.IRValue())
	if err != nil {
		exceptions.Panicf("testutil.GetTensorDotGraph: %+v", err)
	}
	return dot
}

// GetTensorIRValue stages the host tensor t on dev and returns it as a leaf of g.
func GetTensorIRValue(p *lazyhlo.Pipeline, g *ir.Graph, t *tensor.Tensor, dev device.Device) (ir.Value, error) {
	return p.WrapAsIRValue(g, t, dev)
}

// Execute computes the roots on dev. See lazyhlo.Pipeline.Execute.
func Execute(p *lazyhlo.Pipeline, roots []ir.Value, dev device.Device) ([]device.Data, error) {
	return p.Execute(roots, dev)
}

// Fetch transfers the device data to host. See lazyhlo.Pipeline.Fetch.
func Fetch(p *lazyhlo.Pipeline, handles []device.Data) ([]*tensor.Tensor, error) {
	return p.Fetch(handles)
}

// ExecuteAndFetch computes the roots on dev, and transfers the results to host.
func ExecuteAndFetch(p *lazyhlo.Pipeline, roots []ir.Value, dev device.Device) ([]*tensor.Tensor, error) {
	return p.ExecuteAndFetch(roots, dev)
}
