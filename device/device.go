// Package device defines the device descriptors, the opaque handles and the contract a device client
// must implement to stage data, compile, execute and transfer results back.
//
// It also holds the device-kind layout policy: the physical layout each kind of device requires for
// the values it computes.
package device

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Device identifies a logical compute target: a kind and an ordinal.
//
// It is immutable, comparable, and its canonical string form is "<kind>:<ordinal>", e.g. "cpu:0".
type Device struct {
	Kind    Kind
	Ordinal int
}

// New returns a Device of the given kind and ordinal.
func New(kind Kind, ordinal int) Device {
	return Device{Kind: kind, Ordinal: ordinal}
}

// String implements fmt.Stringer and returns the canonical "<kind>:<ordinal>" form.
func (d Device) String() string {
	return fmt.Sprintf("%s:%d", d.Kind, d.Ordinal)
}

// Ok returns whether the device has a valid kind and a non-negative ordinal.
func (d Device) Ok() bool {
	return d.Kind != KindInvalid && d.Kind.IsAKind() && d.Ordinal >= 0
}

// Parse a device string of the form "<kind>:<ordinal>".
// The kind is case-insensitive, so "CPU:0" and "cpu:0" are the same device.
func Parse(s string) (Device, error) {
	kindStr, ordinalStr, found := strings.Cut(s, ":")
	if !found {
		return Device{}, errors.Errorf("invalid device %q, expected the form \"<kind>:<ordinal>\"", s)
	}
	kind, err := KindString(kindStr)
	if err != nil || kind == KindInvalid {
		return Device{}, errors.Errorf("invalid device %q, unknown kind %q (known kinds: %v)", s, kindStr, KindStrings()[1:])
	}
	ordinal, err := strconv.Atoi(ordinalStr)
	if err != nil || ordinal < 0 {
		return Device{}, errors.Errorf("invalid device %q, ordinal must be a non-negative integer", s)
	}
	return Device{Kind: kind, Ordinal: ordinal}, nil
}

// MustParse is like Parse, but panics on error.
func MustParse(s string) Device {
	d, err := Parse(s)
	if err != nil {
		exceptions.Panicf("device.MustParse: %v", err)
	}
	return d
}

// ParseAll parses a list of device strings.
func ParseAll(devices []string) ([]Device, error) {
	parsed := make([]Device, 0, len(devices))
	for _, s := range devices {
		d, err := Parse(s)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, d)
	}
	return parsed, nil
}

// FilterByKind returns the devices of the given kind, preserving their order.
func FilterByKind(devices []Device, kind Kind) []Device {
	filtered := make([]Device, 0, len(devices))
	for _, d := range devices {
		if d.Kind == kind {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
