// Package testutil holds the helpers used by tests of computations on devices: value comparison,
// device enumeration, and diagnostic dumps of deferred tensors.
//
// Comparisons always bring the values to host first: nothing is compared on device. Mismatches are
// not errors, they are reported to a diagnostic stream and the comparison returns false. Failures
// to bring a value to host do panic, with the pipeline stage and the cause.
package testutil

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/lazyhlo/bridge"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/pkg/errors"
)

// Value is anything that can be compared: a host *tensor.Tensor or a device-backed *bridge.Tensor.
type Value interface {
	Shape() shapes.Shape
}

var (
	_ Value = (*tensor.Tensor)(nil)
	_ Value = (*bridge.Tensor)(nil)
)

// ToHost returns the host tensor for v. Host tensors are returned as is, device-backed tensors are
// computed and transferred.
func ToHost(v Value) (*tensor.Tensor, error) {
	switch t := v.(type) {
	case *tensor.Tensor:
		return t, nil
	case *bridge.Tensor:
		return t.ToHost()
	}
	return nil, errors.Errorf("testutil.ToHost: unsupported value type %T", v)
}

// Comparator compares values, and writes the reports of mismatches to Out.
type Comparator struct {
	Out io.Writer
}

// DefaultComparator reports to os.Stderr. It is used by the package level comparison functions.
var DefaultComparator = &Comparator{Out: os.Stderr}

// EqualValues returns whether a and b have the same dimensions, the same dtype and exactly the same values.
// See Comparator.EqualValues.
func EqualValues(a, b Value) bool { return DefaultComparator.EqualValues(a, b) }

// EqualValuesNoElementTypeCheck is like EqualValues, but the dtypes can differ.
// See Comparator.EqualValuesNoElementTypeCheck.
func EqualValuesNoElementTypeCheck(a, b Value) bool {
	return DefaultComparator.EqualValuesNoElementTypeCheck(a, b)
}

// CloseValues returns whether a and b have the same dimensions, the same dtype, and all values within
// the given tolerance. See Comparator.CloseValues.
func CloseValues(a, b Value, rtol, atol float64) bool {
	return DefaultComparator.CloseValues(a, b, rtol, atol)
}

// EqualValues returns whether a and b have the same dimensions, the same dtype and exactly the same values.
//
// If the dimensions or the dtypes differ, the mismatch is reported and the values are not transferred.
func (c *Comparator) EqualValues(a, b Value) bool {
	if !c.sameShape(a, b, true) {
		return false
	}
	return c.equalOnHost(a, b)
}

// EqualValuesNoElementTypeCheck returns whether a and b have the same dimensions and the same values.
//
// If the dtypes differ, b is converted to the dtype of a before comparing. The conversion can hide
// precision loss: a Float64 b compared to a Float32 a is rounded to float32 first.
func (c *Comparator) EqualValuesNoElementTypeCheck(a, b Value) bool {
	if !c.sameShape(a, b, false) {
		return false
	}
	return c.equalOnHost(a, b)
}

// CloseValues returns whether a and b have the same dimensions, the same dtype, and every pair of elements
// x (from a) and y (from b) satisfies |x-y| <= atol + rtol*|y|.
//
// If the values are not close, both are written in full to the report.
func (c *Comparator) CloseValues(a, b Value, rtol, atol float64) bool {
	if !c.sameShape(a, b, true) {
		return false
	}
	hostA, hostB := mustToHost(a), mustToHost(b)
	if !hostA.AllClose(hostB, rtol, atol) {
		c.report("%s\n-vs-\n%s\n", hostA, hostB)
		return false
	}
	return true
}

// sameShape checks the dimensions, and optionally the dtypes, of the values, as declared: without
// transferring them. It reports the mismatch.
func (c *Comparator) sameShape(a, b Value, checkDType bool) bool {
	shapeA, shapeB := a.Shape(), b.Shape()
	if slices.Equal(shapeA.Dimensions, shapeB.Dimensions) && (!checkDType || shapeA.DType == shapeB.DType) {
		return true
	}
	c.report("Different shape:\n%s %v\n-vs-\n%s %v\n", shapeA.DType, shapeA.Dimensions, shapeB.DType, shapeB.Dimensions)
	return false
}

// equalOnHost transfers the values and compares them exactly, converting b to the dtype of a if needed.
func (c *Comparator) equalOnHost(a, b Value) bool {
	hostA, hostB := mustToHost(a), mustToHost(b)
	if hostA.DType() != hostB.DType() {
		converted, err := hostB.ConvertDType(hostA.DType())
		if err != nil {
			exceptions.Panicf("testutil: can't compare %s with %s: %+v", hostA.Shape(), hostB.Shape(), err)
		}
		hostB = converted
	}
	return hostA.Equal(hostB)
}

func (c *Comparator) report(format string, args ...any) {
	if c.Out == nil {
		return
	}
	_, _ = fmt.Fprintf(c.Out, format, args...)
}

func mustToHost(v Value) *tensor.Tensor {
	t, err := ToHost(v)
	if err != nil {
		exceptions.Panicf("testutil: failed to transfer %s to host: %+v", v.Shape(), err)
	}
	return t
}
