// Package bridge converts between host tensors and device-backed tensors, whose values are deferred
// IR computations, and resolves the process default device.
//
// A Bridge owns one IR graph where all its tensors live. Building tensors is not safe for concurrent
// use, while fetching them (Tensor.ToHost) is.
package bridge

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lazyhlo"
	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/ir"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Bridge between host tensors and tensors on the devices of one client.
type Bridge struct {
	client   device.Client
	pipeline *lazyhlo.Pipeline
	graph    *ir.Graph

	// devices are the local devices, indexed by DeviceHandle ordinal.
	devices []device.Device
}

// New creates a Bridge over the given client.
func New(client device.Client) (*Bridge, error) {
	devices, err := device.ParseAll(client.LocalDevices())
	if err != nil {
		return nil, errors.WithMessage(err, "bridge.New: invalid local devices")
	}
	if len(devices) == 0 {
		return nil, errors.New("bridge.New: device client has no local devices")
	}
	return &Bridge{
		client:   client,
		pipeline: lazyhlo.New(client),
		graph:    ir.NewGraph("bridge"),
		devices:  devices,
	}, nil
}

// Client of the bridge.
func (b *Bridge) Client() device.Client { return b.client }

// Pipeline used to execute the bridge tensors.
func (b *Bridge) Pipeline() *lazyhlo.Pipeline { return b.pipeline }

// Graph owning the IR values of the bridge tensors.
func (b *Bridge) Graph() *ir.Graph { return b.graph }

// DefaultDevice returns the process default device, as configured in the client.
func (b *Bridge) DefaultDevice() (device.Device, error) {
	dev, err := device.Parse(b.client.DefaultDevice())
	if err != nil {
		return device.Device{}, errors.WithMessage(err, "invalid default device")
	}
	return dev, nil
}

// DeviceHandle is the bridge's name for a local device: "lazy:<ordinal>", where ordinal is the
// position of the device in the client's local devices.
type DeviceHandle struct {
	bridge  *Bridge
	ordinal int
}

// DefaultDeviceHandle returns the handle of the process default device: it resolves to the same
// device as DefaultDevice.
func (b *Bridge) DefaultDeviceHandle() (*DeviceHandle, error) {
	dev, err := b.DefaultDevice()
	if err != nil {
		return nil, err
	}
	return b.DeviceHandleFor(dev)
}

// DeviceHandleFor returns the handle for the local device dev.
func (b *Bridge) DeviceHandleFor(dev device.Device) (*DeviceHandle, error) {
	ordinal := slices.Index(b.devices, dev)
	if ordinal < 0 {
		return nil, errors.Errorf("device %s is not a local device of the client", dev)
	}
	return &DeviceHandle{bridge: b, ordinal: ordinal}, nil
}

// Ordinal of the handle.
func (h *DeviceHandle) Ordinal() int { return h.ordinal }

// Device the handle resolves to.
func (h *DeviceHandle) Device() device.Device { return h.bridge.devices[h.ordinal] }

// String implements fmt.Stringer.
func (h *DeviceHandle) String() string { return fmt.Sprintf("lazy:%d", h.ordinal) }

// Tensor is a device-backed tensor: its value is an IR value, computed on its device when needed.
type Tensor struct {
	bridge *Bridge
	value  ir.Value
	device device.Device

	mu   sync.Mutex
	host *tensor.Tensor
}

// FromHost stages the host tensor t on the device dev.
func (b *Bridge) FromHost(t *tensor.Tensor, dev device.Device) (*Tensor, error) {
	v, err := b.pipeline.WrapAsIRValue(b.graph, t, dev)
	if err != nil {
		return nil, err
	}
	return &Tensor{bridge: b, value: v, device: dev}, nil
}

// FromIR creates the tensor whose value is v, to be computed on dev. v must belong to the bridge graph.
func (b *Bridge) FromIR(v ir.Value, dev device.Device) (*Tensor, error) {
	if !v.Valid() {
		return nil, errors.Errorf("bridge.FromIR: invalid IR value %s", v)
	}
	if v.Graph() != b.graph {
		return nil, errors.Errorf("bridge.FromIR: IR value %s belongs to graph %q, not to the bridge graph", v, v.Graph().Name())
	}
	return &Tensor{bridge: b, value: v, device: dev}, nil
}

// IRValue underlying the tensor.
func (t *Tensor) IRValue() ir.Value { return t.value }

// Device where the tensor is computed.
func (t *Tensor) Device() device.Device { return t.device }

// Shape of the tensor.
func (t *Tensor) Shape() shapes.Shape { return t.value.Shape() }

// DType of the tensor.
func (t *Tensor) DType() dtypes.DType { return t.value.Shape().DType }

// Dimensions of the tensor.
func (t *Tensor) Dimensions() []int { return t.value.Shape().Dimensions }

// ToHost computes the tensor, if needed, and transfers it to host. The host copy is cached: later
// calls return the same tensor, which must not be modified.
func (t *Tensor) ToHost() (*tensor.Tensor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.host != nil {
		return t.host, nil
	}
	p := t.bridge.pipeline
	if node := t.value.Node(); node.Kind() == ir.OpDeviceData {
		hosts, err := p.Fetch([]device.Data{node.Data()})
		if err != nil {
			return nil, err
		}
		t.host = hosts[0]
		return t.host, nil
	}

	// Results are owned by the bridge: they are released once fetched.
	results, err := p.Execute([]ir.Value{t.value}, t.device)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := t.bridge.client.ReleaseData(results...); err != nil {
			klog.Warningf("failed to release results of %s: %+v", t, err)
		}
	}()
	hosts, err := p.Fetch(results)
	if err != nil {
		return nil, err
	}
	t.host = hosts[0]
	return t.host, nil
}

// String implements fmt.Stringer.
func (t *Tensor) String() string {
	return fmt.Sprintf("bridge.Tensor(%s on %s: %s)", t.value, t.device, t.Shape())
}
