package ir

import (
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/internal/optypes"
	"github.com/gomlx/lazyhlo/shapeinference"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/gomlx/lazyhlo/types"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/pkg/errors"
)

// DeviceData creates a leaf node wrapping device-resident data.
//
// The value has the logical shape of the data: any device layout annotation is dropped.
func (g *Graph) DeviceData(data device.Data) (Value, error) {
	if !data.Handle.Ok() {
		return Value{}, errors.Errorf("DeviceData: data %s has no valid handle", data)
	}
	if !data.Shape.Ok() || data.Shape.IsTuple() {
		return Value{}, errors.Errorf("DeviceData: data %s must have a valid non-tuple shape", data)
	}
	node := g.newNode(OpDeviceData, []shapes.Shape{shapes.Make(data.Shape.DType, data.Shape.Dimensions...)})
	node.data = data
	return g.output(node, 0), nil
}

// Constant creates a leaf node holding a copy of the host tensor t.
func (g *Graph) Constant(t *tensor.Tensor) (Value, error) {
	if t == nil {
		return Value{}, errors.New("Constant: nil tensor")
	}
	node := g.newNode(OpConstant, []shapes.Shape{t.Shape().Clone()})
	node.constant = t.Clone()
	return g.output(node, 0), nil
}

// Iota creates a node of the given shape with values incrementing along the given axis, starting from 0.
func (g *Graph) Iota(shape shapes.Shape, axis int) (Value, error) {
	adjustedAxis, err := shapeinference.Iota(shape, axis)
	if err != nil {
		return Value{}, errors.WithMessage(err, "Iota")
	}
	node := g.newNode(OpIota, []shapes.Shape{shape.Clone().WithLayout(nil)})
	node.axis = adjustedAxis
	return g.output(node, 0), nil
}

// irToOpType maps the element-wise IR kinds to the program operation used for shape inference.
var irToOpType = map[OpKind]optypes.OpType{
	OpNeg:  optypes.Negate,
	OpAbs:  optypes.Abs,
	OpExp:  optypes.Exponential,
	OpLog:  optypes.Log,
	OpSqrt: optypes.Sqrt,
	OpTanh: optypes.Tanh,
	OpAdd:  optypes.Add,
	OpSub:  optypes.Subtract,
	OpMul:  optypes.Multiply,
	OpDiv:  optypes.Divide,
	OpMax:  optypes.Maximum,
	OpMin:  optypes.Minimum,
	OpPow:  optypes.Power,
}

// OpTypeFor returns the program operation an element-wise kind is lowered to.
func OpTypeFor(kind OpKind) (optypes.OpType, bool) {
	op, found := irToOpType[kind]
	return op, found
}

func unaryOp(kind OpKind, operand Value) (Value, error) {
	g, err := checkInputs(kind, operand)
	if err != nil {
		return Value{}, err
	}
	output, err := shapeinference.UnaryOp(irToOpType[kind], operand.Shape())
	if err != nil {
		return Value{}, errors.WithMessagef(err, "%s", kind)
	}
	return g.output(g.newNode(kind, []shapes.Shape{output}, operand), 0), nil
}

func binaryOp(kind OpKind, lhs, rhs Value) (Value, error) {
	g, err := checkInputs(kind, lhs, rhs)
	if err != nil {
		return Value{}, err
	}
	output, err := shapeinference.BinaryOp(irToOpType[kind], lhs.Shape(), rhs.Shape())
	if err != nil {
		return Value{}, errors.WithMessagef(err, "%s", kind)
	}
	return g.output(g.newNode(kind, []shapes.Shape{output}, lhs, rhs), 0), nil
}

// Neg returns -x.
func Neg(x Value) (Value, error) { return unaryOp(OpNeg, x) }

// Abs returns |x|. For complex values the output is real.
func Abs(x Value) (Value, error) { return unaryOp(OpAbs, x) }

// Exp returns e^x.
func Exp(x Value) (Value, error) { return unaryOp(OpExp, x) }

// Log returns the natural logarithm of x.
func Log(x Value) (Value, error) { return unaryOp(OpLog, x) }

// Sqrt returns the square root of x.
func Sqrt(x Value) (Value, error) { return unaryOp(OpSqrt, x) }

// Tanh returns the hyperbolic tangent of x.
func Tanh(x Value) (Value, error) { return unaryOp(OpTanh, x) }

// Add returns lhs + rhs. Operands must have the same shape.
func Add(lhs, rhs Value) (Value, error) { return binaryOp(OpAdd, lhs, rhs) }

// Sub returns lhs - rhs.
func Sub(lhs, rhs Value) (Value, error) { return binaryOp(OpSub, lhs, rhs) }

// Mul returns lhs * rhs.
func Mul(lhs, rhs Value) (Value, error) { return binaryOp(OpMul, lhs, rhs) }

// Div returns lhs / rhs.
func Div(lhs, rhs Value) (Value, error) { return binaryOp(OpDiv, lhs, rhs) }

// Max returns the element-wise maximum.
func Max(lhs, rhs Value) (Value, error) { return binaryOp(OpMax, lhs, rhs) }

// Min returns the element-wise minimum.
func Min(lhs, rhs Value) (Value, error) { return binaryOp(OpMin, lhs, rhs) }

// Pow returns lhs^rhs.
func Pow(lhs, rhs Value) (Value, error) { return binaryOp(OpPow, lhs, rhs) }

// Compare lhs and rhs element-wise in the given direction, returning a boolean value.
// The comparison type is derived from the operands dtype.
func Compare(lhs, rhs Value, direction types.ComparisonDirection) (Value, error) {
	g, err := checkInputs(OpCompare, lhs, rhs)
	if err != nil {
		return Value{}, err
	}
	output, err := shapeinference.Compare(lhs.Shape(), rhs.Shape(), direction, types.CompareTypeForDType(lhs.Shape().DType))
	if err != nil {
		return Value{}, errors.WithMessage(err, "Compare")
	}
	node := g.newNode(OpCompare, []shapes.Shape{output}, lhs, rhs)
	node.direction = direction
	return g.output(node, 0), nil
}

// Where returns onTrue where pred is true, and onFalse elsewhere.
// pred can be a scalar, or have the same dimensions as onTrue and onFalse.
func Where(pred, onTrue, onFalse Value) (Value, error) {
	g, err := checkInputs(OpWhere, pred, onTrue, onFalse)
	if err != nil {
		return Value{}, err
	}
	output, err := shapeinference.Select(pred.Shape(), onTrue.Shape(), onFalse.Shape())
	if err != nil {
		return Value{}, errors.WithMessage(err, "Where")
	}
	return g.output(g.newNode(OpWhere, []shapes.Shape{output}, pred, onTrue, onFalse), 0), nil
}

// Convert x to dtype.
func Convert(x Value, dtype dtypes.DType) (Value, error) {
	g, err := checkInputs(OpConvert, x)
	if err != nil {
		return Value{}, err
	}
	output, err := shapeinference.Convert(x.Shape(), dtype)
	if err != nil {
		return Value{}, errors.WithMessage(err, "Convert")
	}
	return g.output(g.newNode(OpConvert, []shapes.Shape{output}, x), 0), nil
}

// Reshape x to the given dimensions, which must have the same size.
func Reshape(x Value, dimensions ...int) (Value, error) {
	g, err := checkInputs(OpReshape, x)
	if err != nil {
		return Value{}, err
	}
	output, err := shapeinference.Reshape(x.Shape(), dimensions)
	if err != nil {
		return Value{}, errors.WithMessage(err, "Reshape")
	}
	return g.output(g.newNode(OpReshape, []shapes.Shape{output}, x), 0), nil
}

// Transpose permutes the axes of x: output axis i is x's axis permutation[i].
func Transpose(x Value, permutation ...int) (Value, error) {
	g, err := checkInputs(OpTranspose, x)
	if err != nil {
		return Value{}, err
	}
	output, err := shapeinference.Transpose(x.Shape(), permutation)
	if err != nil {
		return Value{}, errors.WithMessage(err, "Transpose")
	}
	node := g.newNode(OpTranspose, []shapes.Shape{output}, x)
	node.ints = slices.Clone(permutation)
	return g.output(node, 0), nil
}

// Broadcast x to the given dimensions. axes maps each axis of x to an output axis, and
// each axis of x must either have dimension 1 or match the output dimension.
func Broadcast(x Value, dimensions []int, axes []int) (Value, error) {
	g, err := checkInputs(OpBroadcast, x)
	if err != nil {
		return Value{}, err
	}
	output := shapes.Make(x.Shape().DType, dimensions...)
	axes = slices.Clone(axes)
	if err := shapeinference.BroadcastInDim(x.Shape(), output, axes); err != nil {
		return Value{}, errors.WithMessage(err, "Broadcast")
	}
	node := g.newNode(OpBroadcast, []shapes.Shape{output}, x)
	node.ints = axes
	return g.output(node, 0), nil
}

// MinMax returns both the element-wise minimum and maximum of lhs and rhs, from a single node with two outputs.
func MinMax(lhs, rhs Value) (minimum, maximum Value, err error) {
	g, err := checkInputs(OpMinMax, lhs, rhs)
	if err != nil {
		return
	}
	output, err := shapeinference.BinaryOp(optypes.Minimum, lhs.Shape(), rhs.Shape())
	if err != nil {
		err = errors.WithMessage(err, "MinMax")
		return
	}
	node := g.newNode(OpMinMax, []shapes.Shape{output, output.Clone()}, lhs, rhs)
	return g.output(node, 0), g.output(node, 1), nil
}

// Opaque creates a node with the given name and output shape, which has no lowering rule.
func (g *Graph) Opaque(name string, shape shapes.Shape, inputs ...Value) (Value, error) {
	if len(inputs) > 0 {
		inputsGraph, err := checkInputs(OpOpaque, inputs...)
		if err != nil {
			return Value{}, err
		}
		if inputsGraph != g {
			return Value{}, errors.Errorf("Opaque(%q): inputs belong to graph %q, not %q", name, inputsGraph.name, g.name)
		}
	}
	node := g.newNode(OpOpaque, []shapes.Shape{shape.Clone()}, inputs...)
	node.name = name
	return g.output(node, 0), nil
}
