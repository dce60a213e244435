package xla

import (
	"slices"
	"time"

	"github.com/gomlx/gopjrt/pjrt"
	"github.com/gomlx/lazyhlo/device"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// CompilationDevices implements device.Client. All local devices share the plugin kind, so with no
// requested devices it returns all of them.
func (c *Client) CompilationDevices(target string, requested []string) ([]string, error) {
	if _, err := c.ordinal(target); err != nil {
		return nil, err
	}
	if len(requested) == 0 {
		return c.LocalDevices(), nil
	}
	if !slices.Contains(requested, target) {
		return nil, errors.Errorf("xla: compilation target %q is not among the requested devices %v", target, requested)
	}
	return slices.Clone(requested), nil
}

// Compile implements device.Client. PJRT picks the result layout, so OutputShape is only checked
// against the program result.
func (c *Client) Compile(instances []device.CompileInstance) ([]device.Computation, error) {
	computations := make([]device.Computation, 0, len(instances))
	loaded := make([]*loadedComputation, 0, len(instances))
	destroyLoaded := func() {
		for _, l := range loaded {
			if err := l.exec.Destroy(); err != nil {
				klog.Warningf("xla: failed to destroy executable: %+v", err)
			}
		}
	}
	for ii, instance := range instances {
		program := instance.Program
		if program == nil || len(program.StableHLO) == 0 {
			destroyLoaded()
			return nil, errors.Errorf("xla: compile instance #%d has no program", ii)
		}
		ordinal, err := c.ordinal(instance.CompilationDevice)
		if err != nil {
			destroyLoaded()
			return nil, err
		}
		if instance.OutputShape == nil || !instance.OutputShape.Equal(program.Shape.Result) {
			destroyLoaded()
			return nil, errors.Errorf("xla: program %q output shape %v doesn't match its result shape %s",
				program.Name, instance.OutputShape, program.Shape.Result)
		}
		start := time.Now()
		exec, err := c.compile(program.StableHLO)
		if err != nil {
			destroyLoaded()
			return nil, errors.WithMessagef(err, "xla: compiling %q for %s", program.Name, instance.CompilationDevice)
		}
		klog.V(1).Infof("xla: compiled %q for %s in %s", program.Name, instance.CompilationDevice, time.Since(start))
		loaded = append(loaded, &loadedComputation{exec: exec, ordinal: ordinal})
		computations = append(computations, device.Computation{
			Name:   program.Name,
			Device: instance.CompilationDevice,
			Shape:  program.Shape,
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for ii := range computations {
		computations[ii].Handle = c.newHandle()
		c.computations[computations[ii].ID] = loaded[ii]
	}
	return computations, nil
}

func (c *Client) compile(program []byte) (*pjrt.LoadedExecutable, error) {
	c.mu.Lock()
	pjrtClient := c.client
	c.mu.Unlock()
	if pjrtClient == nil {
		return nil, errors.New("client already finalized")
	}
	return pjrtClient.Compile().WithStableHLO(program).Done()
}

// ReleaseComputation implements device.Client.
func (c *Client) ReleaseComputation(computation device.Computation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	loaded, err := c.getComputation(computation)
	if err != nil {
		return err
	}
	delete(c.computations, computation.ID)
	return errors.WithMessagef(loaded.exec.Destroy(), "xla: releasing computation %q", computation.Name)
}

// getComputation must be called with c.mu locked.
func (c *Client) getComputation(computation device.Computation) (*loadedComputation, error) {
	if computation.Owner != c.id {
		return nil, errors.Errorf("xla: computation %q (%s) was not compiled by this client (%s)",
			computation.Name, computation.Handle, c.id)
	}
	loaded, found := c.computations[computation.ID]
	if !found {
		return nil, errors.Errorf("xla: computation %q (%s) not found, was it released?", computation.Name, computation.Handle)
	}
	return loaded, nil
}

// ExecuteComputation implements device.Client. Arguments are never donated to PJRT: if
// options.DonateArguments is set, they are released after the execution.
func (c *Client) ExecuteComputation(computation device.Computation, arguments []device.Data, deviceName string,
	options device.ExecuteOptions) ([]device.Data, error) {
	c.mu.Lock()
	loaded, err := c.getComputation(computation)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	buffers := make([]*pjrt.Buffer, len(arguments))
	for ii, argument := range arguments {
		if buffers[ii], err = c.getBuffer(argument); err != nil {
			c.mu.Unlock()
			return nil, errors.WithMessagef(err, "argument #%d", ii)
		}
	}
	c.mu.Unlock()

	if deviceName != computation.Device {
		return nil, errors.Errorf("xla: computation %q was compiled for %q, it can't execute on %q",
			computation.Name, computation.Device, deviceName)
	}
	if len(arguments) != len(computation.Shape.Parameters) {
		return nil, errors.Errorf("xla: computation %q takes %d parameters, %d arguments given",
			computation.Name, len(computation.Shape.Parameters), len(arguments))
	}
	start := time.Now()
	outputs, err := loaded.exec.Execute(buffers...).OnDeviceByNum(loaded.ordinal).DonateNone().Done()
	if err != nil {
		return nil, errors.WithMessagef(err, "xla: executing %q on %s", computation.Name, deviceName)
	}
	klog.V(2).Infof("xla: executed %q on %s in %s", computation.Name, deviceName, time.Since(start))

	c.mu.Lock()
	defer c.mu.Unlock()
	results := make([]device.Data, len(outputs))
	for ii, output := range outputs {
		if results[ii], err = c.storeBuffer(output, deviceName); err != nil {
			return nil, err
		}
	}
	if options.DonateArguments {
		for _, argument := range arguments {
			if buffer, found := c.buffers[argument.ID]; found {
				delete(c.buffers, argument.ID)
				if err := buffer.Destroy(); err != nil {
					klog.Warningf("xla: failed to release donated %s: %+v", argument, err)
				}
			}
		}
	}
	return results, nil
}
