// Package hostref implements device.Client on the host, interpreting the lowered programs in pure Go.
//
// It is the reference against which the pipeline is tested: it requires no hardware, it can be
// configured with any list of (fake) devices, and it can be instructed to fail any call, see
// Client.FailNext.
//
// All "devices" share the host memory: device data are immutable host tensors, stored in an arena
// keyed by handle.
package hostref

import (
	"slices"
	"sync"

	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Config of a Client. The zero value is a client with a single "cpu:0" device.
type Config struct {
	// LocalDevices directly addressable by the client. Defaults to "cpu:0".
	LocalDevices []string

	// AllDevices, including remote ones. It must include all local devices. Defaults to LocalDevices.
	AllDevices []string

	// DefaultDevice must be a local device. Defaults to the first local device.
	DefaultDevice string
}

// Client is a device.Client that runs everything on the host. It is safe for concurrent use.
type Client struct {
	id            uuid.UUID
	localDevices  []string
	allDevices    []string
	defaultDevice string

	mu           sync.Mutex
	nextID       uint64
	data         map[uint64]*dataEntry
	computations map[uint64]*computationEntry
	failures     map[Call]error
}

type dataEntry struct {
	data  device.Data
	value *tensor.Tensor
}

var _ device.Client = (*Client)(nil)

// New creates a Client with the given configuration.
func New(config Config) (*Client, error) {
	c := &Client{
		id:            uuid.New(),
		localDevices:  slices.Clone(config.LocalDevices),
		allDevices:    slices.Clone(config.AllDevices),
		defaultDevice: config.DefaultDevice,
		data:          make(map[uint64]*dataEntry),
		computations:  make(map[uint64]*computationEntry),
		failures:      make(map[Call]error),
	}
	if len(c.localDevices) == 0 {
		c.localDevices = []string{device.New(device.KindCPU, 0).String()}
	}
	if len(c.allDevices) == 0 {
		c.allDevices = slices.Clone(c.localDevices)
	}
	if c.defaultDevice == "" {
		c.defaultDevice = c.localDevices[0]
	}
	if _, err := device.ParseAll(c.allDevices); err != nil {
		return nil, errors.WithMessage(err, "hostref.New")
	}
	for _, local := range c.localDevices {
		if _, err := device.Parse(local); err != nil {
			return nil, errors.WithMessage(err, "hostref.New")
		}
		if !slices.Contains(c.allDevices, local) {
			return nil, errors.Errorf("hostref.New: local device %q is not listed in all devices %v", local, c.allDevices)
		}
	}
	if !slices.Contains(c.localDevices, c.defaultDevice) {
		return nil, errors.Errorf("hostref.New: default device %q is not a local device %v", c.defaultDevice, c.localDevices)
	}
	klog.V(1).Infof("hostref client %s: local devices %v, all devices %v", c.id, c.localDevices, c.allDevices)
	return c, nil
}

// ID of the client: the owner of all the handles it issues.
func (c *Client) ID() uuid.UUID { return c.id }

// LocalDevices implements device.Client.
func (c *Client) LocalDevices() []string { return slices.Clone(c.localDevices) }

// AllDevices implements device.Client.
func (c *Client) AllDevices() []string { return slices.Clone(c.allDevices) }

// DefaultDevice implements device.Client.
func (c *Client) DefaultDevice() string { return c.defaultDevice }

// FailNext makes the next call of the given kind fail with err, for testing error paths.
func (c *Client) FailNext(call Call, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[call] = err
}

// injectedFailure returns and clears the failure set with FailNext for call. It must be called with c.mu locked.
func (c *Client) injectedFailure(call Call) error {
	err, found := c.failures[call]
	if !found {
		return nil
	}
	delete(c.failures, call)
	return errors.WithMessagef(err, "hostref: injected %s failure", call)
}

// newHandle must be called with c.mu locked.
func (c *Client) newHandle() device.Handle {
	c.nextID++
	return device.Handle{Owner: c.id, ID: c.nextID}
}

// localDevice returns the parsed device, or an error if it is not a local device.
func (c *Client) localDevice(name string) (device.Device, error) {
	if !slices.Contains(c.localDevices, name) {
		return device.Device{}, errors.Errorf("hostref: %q is not a local device, local devices are %v", name, c.localDevices)
	}
	return device.Parse(name)
}

// getData returns the entry for data. It must be called with c.mu locked.
func (c *Client) getData(data device.Data) (*dataEntry, error) {
	if data.Owner != c.id {
		return nil, errors.Errorf("hostref: %s was not issued by this client (%s)", data, c.id)
	}
	entry, found := c.data[data.ID]
	if !found {
		return nil, errors.Errorf("hostref: %s not found, was it released?", data)
	}
	return entry, nil
}

// storeData stores value as data on dev, and returns its handle. It must be called with c.mu locked.
func (c *Client) storeData(value *tensor.Tensor, dev device.Device) device.Data {
	data := device.Data{
		Handle: c.newHandle(),
		Device: dev.String(),
		Shape:  device.MakeShapeWithDeviceLayout(value.Shape(), dev.Kind),
	}
	c.data[data.ID] = &dataEntry{data: data, value: value}
	return data
}

// TransferToServer implements device.Client.
func (c *Client) TransferToServer(literals []device.Literal, deviceName string) ([]device.Data, error) {
	dev, err := c.localDevice(deviceName)
	if err != nil {
		return nil, err
	}
	values := make([]*tensor.Tensor, len(literals))
	for ii, literal := range literals {
		values[ii], err = tensor.FromLiteral(literal, literal.Shape.DType)
		if err != nil {
			return nil, errors.WithMessagef(err, "hostref: transferring literal #%d to %s", ii, deviceName)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.injectedFailure(CallTransferToServer); err != nil {
		return nil, err
	}
	data := make([]device.Data, len(values))
	for ii, value := range values {
		data[ii] = c.storeData(value, dev)
	}
	return data, nil
}

// TransferFromServer implements device.Client.
func (c *Client) TransferFromServer(data []device.Data) ([]device.Literal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.injectedFailure(CallTransferFromServer); err != nil {
		return nil, err
	}
	literals := make([]device.Literal, len(data))
	for ii, d := range data {
		entry, err := c.getData(d)
		if err != nil {
			return nil, err
		}
		literals[ii], err = entry.value.ToLiteral()
		if err != nil {
			return nil, errors.WithMessagef(err, "hostref: transferring %s", d)
		}
	}
	return literals, nil
}

// ReleaseData implements device.Client. No data is released if any of them is unknown.
func (c *Client) ReleaseData(data ...device.Data) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range data {
		if _, err := c.getData(d); err != nil {
			return err
		}
	}
	for _, d := range data {
		delete(c.data, d.ID)
	}
	return nil
}

// NumData returns the number of live device data, those transferred or computed and not yet released.
func (c *Client) NumData() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// NumComputations returns the number of compiled computations not yet released.
func (c *Client) NumComputations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.computations)
}
