package hostref

import (
	"slices"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/hlo"
	"github.com/gomlx/lazyhlo/internal/optypes"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

type computationEntry struct {
	computation device.Computation
	main        *hlo.Function
	device      device.Device
}

// CompilationDevices implements device.Client.
//
// With no requested devices, it returns the local devices of the same kind as target.
// Otherwise, requested is returned if it includes target.
func (c *Client) CompilationDevices(target string, requested []string) ([]string, error) {
	c.mu.Lock()
	err := c.injectedFailure(CallCompilationDevices)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	dev, err := c.localDevice(target)
	if err != nil {
		return nil, err
	}
	if len(requested) > 0 {
		if !slices.Contains(requested, target) {
			return nil, errors.Errorf("hostref: compilation target %q is not among the requested devices %v", target, requested)
		}
		return slices.Clone(requested), nil
	}
	var devices []string
	for _, local := range c.localDevices {
		if localDev, err := device.Parse(local); err == nil && localDev.Kind == dev.Kind {
			devices = append(devices, local)
		}
	}
	return devices, nil
}

// Compile implements device.Client.
//
// It validates the program of each instance: the compilation device must be local, the output shape
// must carry the layout of the device kind, and the program must have a main function whose
// signature matches the program shape.
func (c *Client) Compile(instances []device.CompileInstance) ([]device.Computation, error) {
	entries := make([]*computationEntry, len(instances))
	for ii, instance := range instances {
		entry, err := c.validate(instance)
		if err != nil {
			return nil, errors.WithMessagef(err, "hostref: compiling instance #%d", ii)
		}
		entries[ii] = entry
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.injectedFailure(CallCompile); err != nil {
		return nil, err
	}
	computations := make([]device.Computation, len(entries))
	for ii, entry := range entries {
		entry.computation.Handle = c.newHandle()
		c.computations[entry.computation.ID] = entry
		computations[ii] = entry.computation
	}
	return computations, nil
}

func (c *Client) validate(instance device.CompileInstance) (*computationEntry, error) {
	program := instance.Program
	if program == nil {
		return nil, errors.New("no program")
	}
	dev, err := c.localDevice(instance.CompilationDevice)
	if err != nil {
		return nil, err
	}
	if len(instance.Devices) > 0 && !slices.Contains(instance.Devices, instance.CompilationDevice) {
		return nil, errors.Errorf("compilation device %q not among the devices %v", instance.CompilationDevice, instance.Devices)
	}
	if instance.OutputShape == nil {
		return nil, errors.Errorf("program %q has no output shape", program.Name)
	}
	if !instance.OutputShape.Equal(program.Shape.Result) {
		return nil, errors.Errorf("program %q output shape %s doesn't match its result shape %s",
			program.Name, instance.OutputShape, program.Shape.Result)
	}
	if !device.HasDeviceLayout(*instance.OutputShape, dev.Kind) {
		return nil, errors.Errorf("program %q output shape %s doesn't have the layout required by %s devices",
			program.Name, instance.OutputShape, dev.Kind)
	}
	if len(program.StableHLO) == 0 || program.Module == nil {
		return nil, errors.Errorf("program %q was not built", program.Name)
	}
	main := program.Module.Function(hlo.MainFunctionName)
	if main == nil || !main.Returned {
		return nil, errors.Errorf("program %q has no complete %q function", program.Name, hlo.MainFunctionName)
	}
	if len(main.Inputs) != len(program.Shape.Parameters) {
		return nil, errors.Errorf("program %q main function has %d inputs, but the program shape has %d parameters",
			program.Name, len(main.Inputs), len(program.Shape.Parameters))
	}
	if len(main.Outputs) != program.Shape.Result.TupleSize() {
		return nil, errors.Errorf("program %q main function has %d outputs, but the program result is %s",
			program.Name, len(main.Outputs), program.Shape.Result)
	}
	for _, stmt := range main.Statements {
		if _, found := executors[stmt.OpType]; !found && stmt.OpType != optypes.FuncReturn {
			return nil, errors.Errorf("program %q uses unsupported operation %s", program.Name, stmt.OpType)
		}
	}
	return &computationEntry{
		computation: device.Computation{
			Name:   program.Name,
			Device: instance.CompilationDevice,
			Shape:  program.Shape,
		},
		main:   main,
		device: dev,
	}, nil
}

// ReleaseComputation implements device.Client.
func (c *Client) ReleaseComputation(computation device.Computation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.getComputation(computation); err != nil {
		return err
	}
	delete(c.computations, computation.ID)
	return nil
}

// getComputation must be called with c.mu locked.
func (c *Client) getComputation(computation device.Computation) (*computationEntry, error) {
	if computation.Owner != c.id {
		return nil, errors.Errorf("hostref: computation %q (%s) was not compiled by this client (%s)",
			computation.Name, computation.Handle, c.id)
	}
	entry, found := c.computations[computation.ID]
	if !found {
		return nil, errors.Errorf("hostref: computation %q (%s) not found, was it released?", computation.Name, computation.Handle)
	}
	return entry, nil
}

// ExecuteComputation implements device.Client.
//
// The arguments must live on deviceName, and match the program parameters in number and shape. It
// returns one data per element of the program result tuple. Donated arguments are released.
func (c *Client) ExecuteComputation(computation device.Computation, arguments []device.Data, deviceName string,
	options device.ExecuteOptions) ([]device.Data, error) {
	c.mu.Lock()
	if err := c.injectedFailure(CallExecute); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	entry, err := c.getComputation(computation)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	inputs := make([]*tensor.Tensor, len(arguments))
	for ii, argument := range arguments {
		var argEntry *dataEntry
		argEntry, err = c.getData(argument)
		if err != nil {
			c.mu.Unlock()
			return nil, errors.WithMessagef(err, "argument #%d", ii)
		}
		inputs[ii] = argEntry.value
	}
	c.mu.Unlock()

	if deviceName != entry.computation.Device {
		return nil, errors.Errorf("hostref: computation %q was compiled for %q, it can't execute on %q",
			entry.computation.Name, entry.computation.Device, deviceName)
	}
	for ii, argument := range arguments {
		if argument.Device != deviceName {
			return nil, errors.Errorf("hostref: computation %q argument #%d lives on %q, it can't be used on %q",
				entry.computation.Name, ii, argument.Device, deviceName)
		}
	}
	parameters := entry.computation.Shape.Parameters
	if len(inputs) != len(parameters) {
		return nil, errors.Errorf("hostref: computation %q takes %d parameters, %d arguments given",
			entry.computation.Name, len(parameters), len(inputs))
	}
	for ii, input := range inputs {
		if !input.Shape().Equal(parameters[ii]) {
			return nil, errors.Errorf("hostref: computation %q parameter #%d is %s, but argument is %s",
				entry.computation.Name, ii, parameters[ii], input.Shape())
		}
	}

	start := time.Now()
	results, err := interpret(entry.main, inputs)
	if err != nil {
		return nil, errors.WithMessagef(err, "hostref: executing %q", entry.computation.Name)
	}
	klog.V(2).Infof("hostref: executed %q on %s in %s", entry.computation.Name, deviceName, time.Since(start))

	c.mu.Lock()
	defer c.mu.Unlock()
	data := make([]device.Data, len(results))
	for ii, result := range results {
		data[ii] = c.storeData(result, entry.device)
	}
	if options.DonateArguments {
		for _, argument := range arguments {
			delete(c.data, argument.ID)
		}
	}
	return data, nil
}

// interpret runs the statements of fn in order, and returns the values of its return statement.
func interpret(fn *hlo.Function, inputs []*tensor.Tensor) (results []*tensor.Tensor, err error) {
	values := make(map[*hlo.Value]*tensor.Tensor, len(fn.Statements)+len(inputs))
	for ii, input := range fn.Inputs {
		values[input] = inputs[ii]
	}
	err = exceptions.TryCatch[error](func() {
		for _, stmt := range fn.Statements {
			operands := make([]*tensor.Tensor, len(stmt.Inputs))
			for ii, input := range stmt.Inputs {
				operand, found := values[input]
				if !found {
					exceptions.Panicf("%s uses undefined value %s", stmt.OpType, input)
				}
				operands[ii] = operand
			}
			if stmt.OpType == optypes.FuncReturn {
				results = operands
				return
			}
			output := executors[stmt.OpType](stmt, operands)
			if !output.Shape().Equal(stmt.Outputs[0].Shape()) {
				exceptions.Panicf("%s produced %s, but %s was expected", stmt.OpType, output.Shape(), stmt.Outputs[0].Shape())
			}
			values[stmt.Outputs[0]] = output
		}
		exceptions.Panicf("function %q has no return statement", fn.Name)
	})
	return results, err
}
