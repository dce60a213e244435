package testutil

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/lazyhlo/bridge"
	"github.com/gomlx/lazyhlo/device"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// WithAllDevices calls fn with the local devices and all the devices of the given kind, as reported
// by the client, in the client's order.
//
// If the client has no local device of that kind, fn is not called: it is not an error.
func WithAllDevices(client device.Client, kind device.Kind, fn func(local, all []device.Device)) error {
	local, err := device.ParseAll(client.LocalDevices())
	if err != nil {
		return errors.WithMessage(err, "parsing local devices")
	}
	all, err := device.ParseAll(client.AllDevices())
	if err != nil {
		return errors.WithMessage(err, "parsing all devices")
	}
	local = device.FilterByKind(local, kind)
	if len(local) == 0 {
		klog.V(1).Infof("no local %s devices, skipping", kind)
		return nil
	}
	fn(local, device.FilterByKind(all, kind))
	return nil
}

// ForEachDevice calls fn once, with the process default device.
func ForEachDevice(b *bridge.Bridge, fn func(device.Device)) {
	dev, err := b.DefaultDevice()
	if err != nil {
		exceptions.Panicf("testutil.ForEachDevice: %+v", err)
	}
	fn(dev)
}

// ForEachDeviceHandle calls fn once, with the bridge handle of the process default device.
func ForEachDeviceHandle(b *bridge.Bridge, fn func(*bridge.DeviceHandle)) {
	handle, err := b.DefaultDeviceHandle()
	if err != nil {
		exceptions.Panicf("testutil.ForEachDeviceHandle: %+v", err)
	}
	fn(handle)
}
