package lowering

import (
	"github.com/gomlx/lazyhlo/hlo"
	"github.com/gomlx/lazyhlo/ir"
	"github.com/gomlx/lazyhlo/types"
	"github.com/pkg/errors"
)

// loweringFn emits the program operations computing the outputs of node, given its lowered inputs.
type loweringFn func(c *Context, node *ir.Node, inputs []*hlo.Value) ([]*hlo.Value, error)

// loweringRules is the dispatch table from IR node kind to its lowering.
// Kinds without an entry (e.g. ir.OpOpaque) can't be lowered.
var loweringRules = map[ir.OpKind]loweringFn{
	ir.OpDeviceData: lowerDeviceData,
	ir.OpConstant:   lowerConstant,
	ir.OpIota:       lowerIota,
	ir.OpCompare:    lowerCompare,
	ir.OpWhere:      lowerWhere,
	ir.OpConvert:    lowerConvert,
	ir.OpReshape:    lowerReshape,
	ir.OpTranspose:  lowerTranspose,
	ir.OpBroadcast:  lowerBroadcast,
	ir.OpMinMax:     lowerMinMax,
}

var unaryOps = map[ir.OpKind]func(operand *hlo.Value) (*hlo.Value, error){
	ir.OpNeg:  hlo.Negate,
	ir.OpAbs:  hlo.Abs,
	ir.OpExp:  hlo.Exponential,
	ir.OpLog:  hlo.Log,
	ir.OpSqrt: hlo.Sqrt,
	ir.OpTanh: hlo.Tanh,
}

var binaryOps = map[ir.OpKind]func(lhs, rhs *hlo.Value) (*hlo.Value, error){
	ir.OpAdd: hlo.Add,
	ir.OpSub: hlo.Subtract,
	ir.OpMul: hlo.Multiply,
	ir.OpDiv: hlo.Divide,
	ir.OpMax: hlo.Maximum,
	ir.OpMin: hlo.Minimum,
	ir.OpPow: hlo.Power,
}

func init() {
	for kind, op := range unaryOps {
		loweringRules[kind] = func(_ *Context, _ *ir.Node, inputs []*hlo.Value) ([]*hlo.Value, error) {
			return single(op(inputs[0]))
		}
	}
	for kind, op := range binaryOps {
		loweringRules[kind] = func(_ *Context, _ *ir.Node, inputs []*hlo.Value) ([]*hlo.Value, error) {
			return single(op(inputs[0], inputs[1]))
		}
	}
}

func single(op *hlo.Value, err error) ([]*hlo.Value, error) {
	if err != nil {
		return nil, err
	}
	return []*hlo.Value{op}, nil
}

func lowerDeviceData(c *Context, node *ir.Node, _ []*hlo.Value) ([]*hlo.Value, error) {
	return []*hlo.Value{c.parameter(node.Data(), node.OutputShape(0))}, nil
}

func lowerConstant(c *Context, node *ir.Node, _ []*hlo.Value) ([]*hlo.Value, error) {
	t := node.Constant()
	return single(c.fn.ConstantFromFlatAndDimensions(t.Flat(), t.Dimensions()...))
}

func lowerIota(c *Context, node *ir.Node, _ []*hlo.Value) ([]*hlo.Value, error) {
	return single(c.fn.Iota(node.OutputShape(0), node.Axis()))
}

func lowerCompare(_ *Context, node *ir.Node, inputs []*hlo.Value) ([]*hlo.Value, error) {
	compareType := types.CompareTypeForDType(inputs[0].Shape().DType)
	return single(hlo.Compare(inputs[0], inputs[1], node.Direction(), compareType))
}

func lowerWhere(_ *Context, _ *ir.Node, inputs []*hlo.Value) ([]*hlo.Value, error) {
	return single(hlo.Select(inputs[0], inputs[1], inputs[2]))
}

func lowerConvert(_ *Context, node *ir.Node, inputs []*hlo.Value) ([]*hlo.Value, error) {
	return single(hlo.Convert(inputs[0], node.DType()))
}

func lowerReshape(_ *Context, node *ir.Node, inputs []*hlo.Value) ([]*hlo.Value, error) {
	return single(hlo.Reshape(inputs[0], node.OutputShape(0)))
}

func lowerTranspose(_ *Context, node *ir.Node, inputs []*hlo.Value) ([]*hlo.Value, error) {
	return single(hlo.Transpose(inputs[0], node.Permutation()...))
}

func lowerBroadcast(_ *Context, node *ir.Node, inputs []*hlo.Value) ([]*hlo.Value, error) {
	return single(hlo.BroadcastInDim(inputs[0], node.OutputShape(0), node.BroadcastAxes()))
}

func lowerMinMax(_ *Context, _ *ir.Node, inputs []*hlo.Value) ([]*hlo.Value, error) {
	minimum, err := hlo.Minimum(inputs[0], inputs[1])
	if err != nil {
		return nil, errors.WithMessage(err, "minimum output")
	}
	maximum, err := hlo.Maximum(inputs[0], inputs[1])
	if err != nil {
		return nil, errors.WithMessage(err, "maximum output")
	}
	return []*hlo.Value{minimum, maximum}, nil
}
