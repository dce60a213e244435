// Package xla implements device.Client with a PJRT plugin (https://openxla.org/), through
// github.com/gomlx/gopjrt.
//
// Devices are named after the kind of the plugin: the "cpu" plugin devices are "cpu:0", "cpu:1", ...
// and "cuda" (or "rocm") plugin devices are "gpu:<n>". The ordinal is the PJRT device number.
package xla

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gopjrt/pjrt"
	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Client is a device.Client backed by a PJRT client. It is safe for concurrent use.
type Client struct {
	id         uuid.UUID
	pluginName string
	kind       device.Kind
	plugin     *pjrt.Plugin
	client     *pjrt.Client

	localDevices, allDevices []string

	// mu guards the maps and the lifetime of the buffers. Reads of buffers take it shared.
	mu           sync.RWMutex
	nextID       uint64
	buffers      map[uint64]*pjrt.Buffer
	computations map[uint64]*loadedComputation
}

type loadedComputation struct {
	exec    *pjrt.LoadedExecutable
	ordinal int
}

var _ device.Client = (*Client)(nil)

// KindForPlugin returns the kind of the devices of the given PJRT plugin, which can be a name ("cpu",
// "cuda") or the path to the plugin.
func KindForPlugin(pluginName string) (device.Kind, error) {
	name := strings.ToLower(filepath.Base(pluginName))
	switch {
	case strings.Contains(name, "cpu"):
		return device.KindCPU, nil
	case strings.Contains(name, "cuda"), strings.Contains(name, "rocm"), strings.Contains(name, "gpu"):
		return device.KindGPU, nil
	case strings.Contains(name, "tpu"):
		return device.KindTPU, nil
	}
	return device.KindInvalid, errors.Errorf("can't tell the kind of devices of PJRT plugin %q", pluginName)
}

// New loads the PJRT plugin and creates a client with the given options (they can be nil).
// Call Client.Finalize to release it.
func New(pluginName string, options pjrt.NamedValuesMap) (*Client, error) {
	kind, err := KindForPlugin(pluginName)
	if err != nil {
		return nil, err
	}
	plugin, err := pjrt.GetPlugin(pluginName)
	if err != nil {
		return nil, errors.WithMessagef(err, "xla.New: loading PJRT plugin %q", pluginName)
	}
	pjrtClient, err := plugin.NewClient(options)
	if err != nil {
		return nil, errors.WithMessagef(err, "xla.New: creating client for PJRT plugin %q", pluginName)
	}
	c := &Client{
		id:           uuid.New(),
		pluginName:   pluginName,
		kind:         kind,
		plugin:       plugin,
		client:       pjrtClient,
		buffers:      make(map[uint64]*pjrt.Buffer),
		computations: make(map[uint64]*loadedComputation),
	}
	for ordinal := range len(pjrtClient.AddressableDevices()) {
		c.localDevices = append(c.localDevices, device.New(kind, ordinal).String())
	}
	for ordinal := range max(pjrtClient.NumDevices(), len(c.localDevices)) {
		c.allDevices = append(c.allDevices, device.New(kind, ordinal).String())
	}
	klog.V(1).Infof("xla client %s for plugin %q: local devices %v", c.id, pluginName, c.localDevices)
	return c, nil
}

// Finalize releases all buffers, computations and the PJRT client. The Client can't be used afterwards.
func (c *Client) Finalize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	var firstErr error
	for id, buffer := range c.buffers {
		if err := buffer.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.buffers, id)
	}
	for id, computation := range c.computations {
		if err := computation.exec.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.computations, id)
	}
	if err := c.client.Destroy(); err != nil && firstErr == nil {
		firstErr = err
	}
	c.client = nil
	return errors.WithMessagef(firstErr, "xla: finalizing client for plugin %q", c.pluginName)
}

// PluginName the client was created with.
func (c *Client) PluginName() string { return c.pluginName }

// LocalDevices implements device.Client.
func (c *Client) LocalDevices() []string { return slices.Clone(c.localDevices) }

// AllDevices implements device.Client.
func (c *Client) AllDevices() []string { return slices.Clone(c.allDevices) }

// DefaultDevice implements device.Client. It is the first addressable device.
func (c *Client) DefaultDevice() string {
	if len(c.localDevices) == 0 {
		return ""
	}
	return c.localDevices[0]
}

func (c *Client) newHandle() device.Handle {
	c.nextID++
	return device.Handle{Owner: c.id, ID: c.nextID}
}

// ordinal returns the PJRT device number of a local device.
func (c *Client) ordinal(name string) (int, error) {
	if !slices.Contains(c.localDevices, name) {
		return 0, errors.Errorf("xla: %q is not a local device, local devices are %v", name, c.localDevices)
	}
	dev, err := device.Parse(name)
	if err != nil {
		return 0, err
	}
	return dev.Ordinal, nil
}

// getBuffer must be called with c.mu locked.
func (c *Client) getBuffer(data device.Data) (*pjrt.Buffer, error) {
	if c.client == nil {
		return nil, errors.New("xla: client already finalized")
	}
	if data.Owner != c.id {
		return nil, errors.Errorf("xla: %s was not issued by this client (%s)", data, c.id)
	}
	buffer, found := c.buffers[data.ID]
	if !found {
		return nil, errors.Errorf("xla: %s not found, was it released?", data)
	}
	return buffer, nil
}

// storeBuffer registers the buffer and returns its handle. It must be called with c.mu locked.
func (c *Client) storeBuffer(buffer *pjrt.Buffer, deviceName string) (device.Data, error) {
	dtype, err := buffer.DType()
	if err != nil {
		return device.Data{}, errors.WithMessage(err, "xla: reading buffer dtype")
	}
	dims, err := buffer.Dimensions()
	if err != nil {
		return device.Data{}, errors.WithMessage(err, "xla: reading buffer dimensions")
	}
	data := device.Data{
		Handle: c.newHandle(),
		Device: deviceName,
		Shape:  device.MakeShapeWithDeviceLayout(shapes.Make(dtype, dims...), c.kind),
	}
	c.buffers[data.ID] = buffer
	return data, nil
}

// TransferToServer implements device.Client.
func (c *Client) TransferToServer(literals []device.Literal, deviceName string) ([]device.Data, error) {
	ordinal, err := c.ordinal(deviceName)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil, errors.New("xla: client already finalized")
	}
	start := time.Now()
	var numBytes uint64
	data := make([]device.Data, 0, len(literals))
	for ii, literal := range literals {
		t, err := tensor.FromLiteral(literal, literal.Shape.DType)
		if err != nil {
			return nil, errors.WithMessagef(err, "xla: decoding literal #%d", ii)
		}
		buffer, err := c.client.BufferFromHost().
			FromFlatDataWithDimensions(t.Flat(), t.Dimensions()).
			ToDeviceNum(ordinal).
			Done()
		if err != nil {
			return nil, errors.WithMessagef(err, "xla: transferring literal #%d (%s) to %s", ii, literal.Shape, deviceName)
		}
		d, err := c.storeBuffer(buffer, deviceName)
		if err != nil {
			return nil, err
		}
		data = append(data, d)
		numBytes += uint64(len(literal.Bytes))
	}
	klog.V(2).Infof("xla: transferred %s to %s in %s", humanize.Bytes(numBytes), deviceName, time.Since(start))
	return data, nil
}

// TransferFromServer implements device.Client. The buffers are copied to host concurrently.
func (c *Client) TransferFromServer(data []device.Data) ([]device.Literal, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	buffers := make([]*pjrt.Buffer, len(data))
	for ii, d := range data {
		var err error
		if buffers[ii], err = c.getBuffer(d); err != nil {
			return nil, err
		}
	}
	start := time.Now()
	literals := make([]device.Literal, len(data))
	var eg errgroup.Group
	for ii, buffer := range buffers {
		eg.Go(func() error {
			flat, dims, err := buffer.ToFlatDataAndDimensions()
			if err != nil {
				return errors.WithMessagef(err, "xla: transferring %s to host", data[ii])
			}
			t, err := tensor.FromAnyFlat(flat, dims...)
			if err != nil {
				return errors.WithMessagef(err, "xla: transferring %s to host", data[ii])
			}
			literals[ii], err = t.ToLiteral()
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	klog.V(2).Infof("xla: transferred %d buffers to host in %s", len(data), time.Since(start))
	return literals, nil
}

// ReleaseData implements device.Client.
func (c *Client) ReleaseData(data ...device.Data) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range data {
		if _, err := c.getBuffer(d); err != nil {
			return err
		}
	}
	for _, d := range data {
		buffer := c.buffers[d.ID]
		delete(c.buffers, d.ID)
		if err := buffer.Destroy(); err != nil {
			return errors.WithMessagef(err, "xla: releasing %s", d)
		}
	}
	return nil
}
