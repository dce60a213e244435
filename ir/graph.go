// Package ir holds the deferred computation graph: an arena of nodes (Graph), and Value references into it.
//
// A Value is a (graph, node, output) triple: it doesn't own the node it refers to, the Graph does.
// Nodes are immutable once created, and their shapes are computed eagerly, so a graph is always
// well-shaped. Graph construction is not safe for concurrent use.
//
// Nodes are lowered to a program by the lowering package, and rendered for diagnostics by ToText and ToDot.
package ir

import (
	"fmt"
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lazyhlo/device"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/gomlx/lazyhlo/types"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/pkg/errors"
)

// Graph is the arena that owns the IR nodes.
type Graph struct {
	name  string
	nodes []*Node
}

// NewGraph creates an empty graph.
func NewGraph(name string) *Graph {
	return &Graph{name: name}
}

// Name of the graph.
func (g *Graph) Name() string { return g.name }

// NumNodes in the graph.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// Node returns the node with the given id, or nil if it doesn't exist.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// String implements fmt.Stringer.
func (g *Graph) String() string {
	return fmt.Sprintf("Graph(%q, %d nodes)", g.name, len(g.nodes))
}

// NodeID is the index of a node in its Graph.
type NodeID int

// Node is one operation of the graph.
type Node struct {
	id     NodeID
	kind   OpKind
	inputs []Value
	shapes []shapes.Shape

	// Attributes, set according to the kind.
	data      device.Data
	constant  *tensor.Tensor
	axis      int
	direction types.ComparisonDirection
	ints      []int
	name      string
}

// ID of the node in its graph.
func (n *Node) ID() NodeID { return n.id }

// Kind of the node.
func (n *Node) Kind() OpKind { return n.kind }

// Inputs of the node. It must not be modified.
func (n *Node) Inputs() []Value { return n.inputs }

// NumOutputs of the node.
func (n *Node) NumOutputs() int { return len(n.shapes) }

// OutputShape returns the shape of the given output.
func (n *Node) OutputShape(output int) shapes.Shape { return n.shapes[output] }

// Data held by an OpDeviceData node.
func (n *Node) Data() device.Data { return n.data }

// Constant held by an OpConstant node.
func (n *Node) Constant() *tensor.Tensor { return n.constant }

// Axis of an OpIota node.
func (n *Node) Axis() int { return n.axis }

// Direction of an OpCompare node.
func (n *Node) Direction() types.ComparisonDirection { return n.direction }

// DType an OpConvert node converts to.
func (n *Node) DType() dtypes.DType { return n.shapes[0].DType }

// Permutation of an OpTranspose node.
func (n *Node) Permutation() []int { return slices.Clone(n.ints) }

// BroadcastAxes of an OpBroadcast node: the output axis each operand axis is mapped to.
func (n *Node) BroadcastAxes() []int { return slices.Clone(n.ints) }

// Name of an OpOpaque node.
func (n *Node) Name() string { return n.name }

// Value is a reference to one output of a node.
//
// The zero Value is invalid.
type Value struct {
	graph  *Graph
	node   NodeID
	output int
}

// MakeValue returns the reference to the given output of a node of g. Use Value.Valid to check it.
func MakeValue(g *Graph, node NodeID, output int) Value {
	return Value{graph: g, node: node, output: output}
}

// Graph that owns the value's node.
func (v Value) Graph() *Graph { return v.graph }

// NodeID of the value's node.
func (v Value) NodeID() NodeID { return v.node }

// Node that produces the value.
func (v Value) Node() *Node {
	if v.graph == nil {
		return nil
	}
	return v.graph.Node(v.node)
}

// Output index of the value in its node.
func (v Value) Output() int { return v.output }

// Valid returns whether the value refers to an existing node output.
func (v Value) Valid() bool {
	node := v.Node()
	return node != nil && v.output >= 0 && v.output < node.NumOutputs()
}

// Shape of the value. It returns an invalid shape for an invalid value.
func (v Value) Shape() shapes.Shape {
	if !v.Valid() {
		return shapes.Invalid()
	}
	return v.Node().shapes[v.output]
}

// String implements fmt.Stringer, e.g. "%3" or "%3.1" for the second output of a multi-output node.
func (v Value) String() string {
	node := v.Node()
	if node == nil {
		return "%invalid"
	}
	if node.NumOutputs() == 1 {
		return fmt.Sprintf("%%%d", v.node)
	}
	return fmt.Sprintf("%%%d.%d", v.node, v.output)
}

// newNode adds a node to the graph and returns it.
func (g *Graph) newNode(kind OpKind, outputShapes []shapes.Shape, inputs ...Value) *Node {
	node := &Node{
		id:     NodeID(len(g.nodes)),
		kind:   kind,
		inputs: slices.Clone(inputs),
		shapes: outputShapes,
	}
	g.nodes = append(g.nodes, node)
	return node
}

// output returns the Value for the given output of the node.
func (g *Graph) output(node *Node, output int) Value {
	return Value{graph: g, node: node.id, output: output}
}

// checkInputs returns the common graph of the values, or an error if they are invalid or belong to different graphs.
func checkInputs(kind OpKind, values ...Value) (*Graph, error) {
	var g *Graph
	for ii, v := range values {
		if !v.Valid() {
			return nil, errors.Errorf("%s: operand #%d is not a valid IR value", kind, ii)
		}
		if g == nil {
			g = v.graph
		} else if v.graph != g {
			return nil, errors.Errorf("%s: operand #%d belongs to graph %q, but operand #0 belongs to graph %q",
				kind, ii, v.graph.name, g.name)
		}
	}
	return g, nil
}
