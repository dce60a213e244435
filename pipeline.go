// Package lazyhlo executes deferred IR computations on devices, and fetches their results as host tensors.
//
// A Pipeline lowers a list of IR roots (see package ir) into a program, compiles it for one device,
// executes it with the device data the roots depend on, and returns one device result per root. Fetch
// transfers the results back to host tensors in one batch.
//
// All calls are synchronous: they block until the device client completes the request. Every call
// compiles a fresh program, there is no caching across calls.
//
// Fatal failures are returned as *StageError, see IsStage.
package lazyhlo

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/ir"
	"github.com/gomlx/lazyhlo/lowering"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Pipeline drives lowering, compilation, execution and transfers over a device client.
//
// It holds no state besides the client, and it is safe for concurrent use if the client is.
type Pipeline struct {
	client device.Client
}

// New creates a Pipeline over the given device client.
func New(client device.Client) *Pipeline {
	return &Pipeline{client: client}
}

// Client used by the pipeline.
func (p *Pipeline) Client() device.Client { return p.client }

// ToDeviceData stages the host tensor t on the device dev.
//
// The returned data has the tensor's shape and dtype. Failures are returned as a StageTransfer error.
func (p *Pipeline) ToDeviceData(t *tensor.Tensor, dev device.Device) (device.Data, error) {
	literal, err := t.ToLiteral()
	if err != nil {
		return device.Data{}, stageError(StageTransfer, err, "encoding tensor %s for %s", t.Shape(), dev)
	}
	start := time.Now()
	data, err := p.client.TransferToServer([]device.Literal{literal}, dev.String())
	if err != nil {
		return device.Data{}, stageError(StageTransfer, err, "staging tensor %s on %s", t.Shape(), dev)
	}
	if len(data) != 1 {
		return device.Data{}, stageError(StageTransfer,
			errors.Errorf("device client returned %d data handles for 1 literal", len(data)),
			"staging tensor %s on %s", t.Shape(), dev)
	}
	klog.V(1).Infof("staged %s (%s) on %s in %s", t.Shape(), humanize.Bytes(uint64(len(literal.Bytes))), dev, time.Since(start))
	return data[0], nil
}

// WrapAsIRValue stages the host tensor t on the device dev, and wraps the device data as a leaf of g.
func (p *Pipeline) WrapAsIRValue(g *ir.Graph, t *tensor.Tensor, dev device.Device) (ir.Value, error) {
	data, err := p.ToDeviceData(t, dev)
	if err != nil {
		return ir.Value{}, err
	}
	v, err := g.DeviceData(data)
	if err != nil {
		return ir.Value{}, stageError(StageLowering, err, "wrapping %s as an IR value", data)
	}
	return v, nil
}

// Execute computes the roots on the device dev, and returns one device result per root, in the
// same order.
//
// The roots are lowered, in order, into a single program whose parameters are the device data
// they depend on, in first-use order. The program is compiled for dev, with the result layout
// required by dev.Kind, and executed with the parameters data in that same order.
//
// Zero roots return an empty result without compiling anything.
// Any failure aborts the whole call, and it is returned as a *StageError.
func (p *Pipeline) Execute(roots []ir.Value, dev device.Device) ([]device.Data, error) {
	if len(roots) == 0 {
		return nil, nil
	}
	start := time.Now()
	lc := lowering.NewContext(fmt.Sprintf("execute_%s", dev.Kind))
	for ii, root := range roots {
		op, err := lc.GetOutputOp(root)
		if err != nil {
			return nil, stageError(StageLowering, err, "lowering root #%d", ii)
		}
		lc.AddResult(op)
	}
	program, err := lc.Build()
	if err != nil {
		return nil, stageError(StageLowering, err, "building program for %d roots", len(roots))
	}
	parameters := lc.ParametersData()
	klog.V(1).Infof("lowered %d roots into %q with %d parameters in %s", len(roots), program.Name, len(parameters), time.Since(start))
	if klog.V(2).Enabled() {
		klog.Infof("program %q:\n%s", program.Name, program.StableHLO)
	}

	start = time.Now()
	outputShape := device.MakeShapeWithDeviceLayout(program.Shape.Result, dev.Kind)
	target := dev.String()
	devices, err := p.client.CompilationDevices(target, nil)
	if err != nil {
		return nil, stageError(StageCompile, err, "listing compilation devices for %s", target)
	}
	computations, err := p.client.Compile([]device.CompileInstance{{
		Program:           program,
		CompilationDevice: target,
		Devices:           devices,
		OutputShape:       &outputShape,
	}})
	if err != nil {
		return nil, stageError(StageCompile, err, "compiling %q for %s", program.Name, target)
	}
	if len(computations) != 1 {
		return nil, stageError(StageCompile,
			errors.Errorf("device client returned %d computations for 1 program", len(computations)),
			"compiling %q for %s", program.Name, target)
	}
	computation := computations[0]
	defer func() {
		if err := p.client.ReleaseComputation(computation); err != nil {
			klog.Warningf("failed to release computation %q: %+v", computation.Name, err)
		}
	}()
	klog.V(1).Infof("compiled %q for %s in %s", program.Name, target, time.Since(start))

	start = time.Now()
	results, err := p.client.ExecuteComputation(computation, parameters, target, device.ExecuteOptions{})
	if err != nil {
		return nil, stageError(StageExecution, err, "executing %q on %s", program.Name, target)
	}
	if len(results) != len(roots) {
		return nil, stageError(StageExecution,
			errors.Errorf("device client returned %d results for %d roots", len(results), len(roots)),
			"executing %q on %s", program.Name, target)
	}
	klog.V(1).Infof("executed %q on %s in %s", program.Name, target, time.Since(start))
	return results, nil
}

// Fetch transfers the device data to host, in one batch, and decodes them into host tensors, in the
// same order.
//
// Each tensor is decoded with the dtype of the transferred literal, not the dtype annotated in the
// handle. Any failure aborts the whole batch: transfer failures are StageTransfer errors, and
// literals that can't be decoded are StageDecode errors.
func (p *Pipeline) Fetch(handles []device.Data) ([]*tensor.Tensor, error) {
	if len(handles) == 0 {
		return nil, nil
	}
	start := time.Now()
	literals, err := p.client.TransferFromServer(handles)
	if err != nil {
		return nil, stageError(StageTransfer, err, "fetching %d device data", len(handles))
	}
	if len(literals) != len(handles) {
		return nil, stageError(StageTransfer,
			errors.Errorf("device client returned %d literals for %d device data", len(literals), len(handles)),
			"fetching %d device data", len(handles))
	}
	tensors := make([]*tensor.Tensor, len(literals))
	var numBytes uint64
	for ii, literal := range literals {
		t, err := tensor.FromLiteral(literal, literal.Shape.DType)
		if err != nil {
			return nil, stageError(StageDecode, err, "decoding %s", handles[ii])
		}
		tensors[ii] = t
		numBytes += uint64(len(literal.Bytes))
	}
	klog.V(1).Infof("fetched %d device data (%s) in %s", len(handles), humanize.Bytes(numBytes), time.Since(start))
	return tensors, nil
}

// ExecuteAndFetch executes the roots on dev, and fetches the results as host tensors.
func (p *Pipeline) ExecuteAndFetch(roots []ir.Value, dev device.Device) ([]*tensor.Tensor, error) {
	handles, err := p.Execute(roots, dev)
	if err != nil {
		return nil, err
	}
	return p.Fetch(handles)
}
