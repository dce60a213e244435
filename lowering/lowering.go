// Package lowering translates IR values into a program (see package hlo) for a device client to compile.
//
// A Context is created per execution request: it lowers the requested roots, records the device data
// parameters they depend on, in first-use order, and builds the program.
package lowering

import (
	"fmt"

	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/hlo"
	"github.com/gomlx/lazyhlo/ir"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/pkg/errors"
)

// Context accumulates IR roots into a program.
//
// It is not safe for concurrent use, and it can only be built once.
type Context struct {
	name    string
	builder *hlo.Builder
	fn      *hlo.Function
	graph   *ir.Graph

	// emitted maps each lowered IR value to its program value.
	emitted map[ir.Value]*hlo.Value

	// parameters in first-use order, and the program value of each distinct handle.
	parameters      []device.Data
	parameterValues map[device.Handle]*hlo.Value

	results []*hlo.Value
	built   bool
}

// NewContext creates an empty lowering context for a program with the given name.
func NewContext(name string) *Context {
	builder := hlo.New(name)
	return &Context{
		name:            name,
		builder:         builder,
		fn:              builder.Main(),
		emitted:         make(map[ir.Value]*hlo.Value),
		parameterValues: make(map[device.Handle]*hlo.Value),
	}
}

// Name of the program being built.
func (c *Context) Name() string { return c.name }

// GetOutputOp returns the program value computing v, lowering v and everything it depends on as needed.
//
// Each IR value is lowered only once. The device data leaves reached for the first time are appended
// to the parameters list.
func (c *Context) GetOutputOp(v ir.Value) (*hlo.Value, error) {
	if c.built {
		return nil, errors.Errorf("lowering context %q already built", c.name)
	}
	if !v.Valid() {
		return nil, errors.Errorf("cannot lower invalid IR value %s", v)
	}
	if c.graph == nil {
		c.graph = v.Graph()
	} else if v.Graph() != c.graph {
		return nil, errors.Errorf("cannot lower IR value %s from graph %q in a context lowering graph %q",
			v, v.Graph().Name(), c.graph.Name())
	}
	if op, found := c.emitted[v]; found {
		return op, nil
	}

	node := v.Node()
	inputs := make([]*hlo.Value, len(node.Inputs()))
	for ii, input := range node.Inputs() {
		op, err := c.GetOutputOp(input)
		if err != nil {
			return nil, err
		}
		inputs[ii] = op
	}
	rule, found := loweringRules[node.Kind()]
	if !found {
		return nil, errors.Errorf("no lowering rule for IR node %s of kind %s", v, node.Kind())
	}
	outputs, err := rule(c, node, inputs)
	if err != nil {
		return nil, errors.WithMessagef(err, "lowering IR node %%%d (%s)", node.ID(), node.Kind())
	}
	if len(outputs) != node.NumOutputs() {
		return nil, errors.Errorf("lowering IR node %%%d (%s) produced %d outputs, but the node has %d",
			node.ID(), node.Kind(), len(outputs), node.NumOutputs())
	}
	for output, op := range outputs {
		if !op.Shape().Equal(node.OutputShape(output)) {
			return nil, errors.Errorf("shape conflict lowering IR node %%%d (%s) output #%d: the IR declares %s, the program infers %s",
				node.ID(), node.Kind(), output, node.OutputShape(output), op.Shape())
		}
		c.emitted[ir.MakeValue(v.Graph(), node.ID(), output)] = op
	}
	return outputs[v.Output()], nil
}

// parameter returns the program input for the device data, creating it on first use.
func (c *Context) parameter(data device.Data, shape shapes.Shape) *hlo.Value {
	if op, found := c.parameterValues[data.Handle]; found {
		return op
	}
	op := c.fn.Input(shape)
	c.parameterValues[data.Handle] = op
	c.parameters = append(c.parameters, data)
	return op
}

// AddResult appends op to the program results and returns its position.
func (c *Context) AddResult(op *hlo.Value) int {
	c.results = append(c.results, op)
	return len(c.results) - 1
}

// NumResults added so far.
func (c *Context) NumResults() int { return len(c.results) }

// NumParameters recorded so far.
func (c *Context) NumParameters() int { return len(c.parameters) }

// ParametersData returns the device data the program parameters must be fed with, in the order of
// the program parameters, which is the order they were first reached during lowering.
func (c *Context) ParametersData() []device.Data {
	return append([]device.Data(nil), c.parameters...)
}

// Build finalizes the program: its result is a tuple with the results added, in order.
func (c *Context) Build() (*device.Program, error) {
	if c.built {
		return nil, errors.Errorf("lowering context %q already built", c.name)
	}
	if len(c.results) == 0 {
		return nil, errors.Errorf("lowering context %q has no results", c.name)
	}
	if err := c.fn.Return(c.results...); err != nil {
		return nil, err
	}
	c.built = true
	text, err := c.builder.Build()
	if err != nil {
		return nil, errors.WithMessagef(err, "building program %q", c.name)
	}
	programShape := device.ProgramShape{
		Parameters:     make([]shapes.Shape, len(c.fn.Inputs)),
		ParameterNames: make([]string, len(c.fn.Inputs)),
	}
	for ii, input := range c.fn.Inputs {
		programShape.Parameters[ii] = input.Shape()
		programShape.ParameterNames[ii] = input.Name()
	}
	resultShapes := make([]shapes.Shape, len(c.results))
	for ii, result := range c.results {
		resultShapes[ii] = result.Shape()
	}
	programShape.Result = shapes.MakeTuple(resultShapes)
	return &device.Program{
		Name:      c.name,
		StableHLO: text,
		Module:    c.builder,
		Shape:     programShape,
	}, nil
}

// String implements fmt.Stringer.
func (c *Context) String() string {
	return fmt.Sprintf("lowering.Context(%q, %d parameters, %d results)", c.name, len(c.parameters), len(c.results))
}
