package hlo

import (
	"reflect"
	"strconv"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lazyhlo/internal/optypes"
	"github.com/gomlx/lazyhlo/shapeinference"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/pkg/errors"
)

// Function is a `func.func` of the program: its parameters, its body and, once Return is called, its
// result types.
type Function struct {
	Builder *Builder

	// Name without the "@" prefix.
	Name string

	// Inputs are the parameters, in calling order.
	Inputs []*Value

	// Outputs are the result types, set by Return.
	Outputs []shapes.Shape

	// Statements of the body, in order. The last one is the "func.return" once Returned is set.
	Statements []*Statement

	// Returned is set by Return, after which the function can't be changed.
	Returned bool

	numArgs, numTemps int
}

func (fn *Function) checkOpen() error {
	if fn.Returned {
		return errors.Errorf("function %q already returned", fn.Name)
	}
	return nil
}

// Input appends a parameter named "arg<n>" to the function. Arguments are passed in the order the
// inputs were created.
func (fn *Function) Input(shape shapes.Shape) *Value {
	value := &Value{fn: fn, name: "arg" + strconv.Itoa(fn.numArgs), shape: shape}
	fn.numArgs++
	fn.Inputs = append(fn.Inputs, value)
	return value
}

// addOp appends a statement with one output of the given shape.
func (fn *Function) addOp(opType optypes.OpType, outputShape shapes.Shape, inputs ...*Value) *Statement {
	output := &Value{fn: fn, name: strconv.Itoa(fn.numTemps), shape: outputShape}
	fn.numTemps++
	stmt := &Statement{Function: fn, OpType: opType, Inputs: inputs, Outputs: []*Value{output}}
	fn.Statements = append(fn.Statements, stmt)
	return stmt
}

// ConstantFromFlatAndDimensions adds a constant with the given row-major values and dimensions.
// flat must be a slice of a supported Go type, and it is not copied.
func (fn *Function) ConstantFromFlatAndDimensions(flat any, dimensions ...int) (*Value, error) {
	if err := fn.checkOpen(); err != nil {
		return nil, err
	}
	flatV := reflect.ValueOf(flat)
	if flatV.Kind() != reflect.Slice {
		return nil, errors.Errorf("constant values must be given as a flat slice, got %T", flat)
	}
	dtype := dtypes.FromGoType(flatV.Type().Elem())
	if dtype == dtypes.InvalidDType {
		return nil, errors.Errorf("unsupported constant element type in %T", flat)
	}
	for _, dim := range dimensions {
		if dim < 0 {
			return nil, errors.Errorf("invalid constant dimensions %v", dimensions)
		}
	}
	shape := shapes.Make(dtype, dimensions...)
	if shape.Size() != flatV.Len() {
		return nil, errors.Errorf("constant of shape %s needs %d values, got %d", shape, shape.Size(), flatV.Len())
	}
	stmt := fn.addOp(optypes.Constant, shape)
	stmt.Attributes = map[string]any{"value": &denseLiteral{shape: shape, flat: flat}}
	return stmt.Outputs[0], nil
}

// Iota adds a value of the given shape counting 0, 1, 2, ... along axis, and constant along the other
// axes: Iota([2,2], 1) is [[0 1] [0 1]].
func (fn *Function) Iota(shape shapes.Shape, axis int) (*Value, error) {
	if err := fn.checkOpen(); err != nil {
		return nil, err
	}
	adjustedAxis, err := shapeinference.Iota(shape, axis)
	if err != nil {
		return nil, err
	}
	stmt := fn.addOp(optypes.Iota, shape)
	stmt.Attributes = map[string]any{"iota_dimension": int64(adjustedAxis)}
	return stmt.Outputs[0], nil
}

// Return closes the function, returning the given values (at least one) of the function.
func (fn *Function) Return(values ...*Value) error {
	if err := fn.checkOpen(); err != nil {
		return err
	}
	if len(values) == 0 {
		return errors.Errorf("function %q must return at least one value", fn.Name)
	}
	outputs := make([]shapes.Shape, len(values))
	for ii, value := range values {
		if value.fn != fn {
			return errors.Errorf("function %q can't return %s, which belongs to another function", fn.Name, value)
		}
		outputs[ii] = value.shape
	}
	fn.Returned = true
	fn.Outputs = outputs
	fn.Statements = append(fn.Statements, &Statement{Function: fn, OpType: optypes.FuncReturn, Inputs: values})
	return nil
}

func (fn *Function) print(p *printer, indent string) {
	p.printf("%sfunc.func @%s(", indent, NormalizeIdentifier(fn.Name))
	p.join(len(fn.Inputs), func(ii int) {
		p.printf("%s: %s", fn.Inputs[ii], fn.Inputs[ii].shape.ToStableHLO())
	})
	p.printf(") -> ")
	p.types(fn.Outputs, true)
	p.printf(" {\n")
	for _, stmt := range fn.Statements {
		stmt.print(p, indent+indentStep)
		p.printf("\n")
	}
	p.printf("%s}", indent)
}
