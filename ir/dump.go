package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

// PostOrder returns the nodes feeding the roots (including the roots' nodes), each node after all
// its inputs. Inputs are visited in order, and roots in the given order, so the result is deterministic.
//
// Invalid roots are ignored.
func PostOrder(roots ...Value) []*Node {
	var sorted []*Node
	visited := make(map[*Node]bool)
	var visit func(node *Node)
	visit = func(node *Node) {
		if visited[node] {
			return
		}
		visited[node] = true
		for _, input := range node.inputs {
			visit(input.Node())
		}
		sorted = append(sorted, node)
	}
	for _, root := range roots {
		if root.Valid() {
			visit(root.Node())
		}
	}
	return sorted
}

// attributesText describes the node attributes, or returns "" if it has none.
func (n *Node) attributesText() string {
	switch n.kind {
	case OpDeviceData:
		return fmt.Sprintf("device=%s, handle=%s", n.data.Device, n.data.Handle)
	case OpConstant:
		return fmt.Sprintf("value=%s", n.constant)
	case OpIota:
		return fmt.Sprintf("axis=%d", n.axis)
	case OpCompare:
		return fmt.Sprintf("direction=%s", n.direction)
	case OpTranspose:
		return fmt.Sprintf("permutation=%v", n.ints)
	case OpBroadcast:
		return fmt.Sprintf("axes=%v", n.ints)
	case OpOpaque:
		return fmt.Sprintf("name=%q", n.name)
	}
	return ""
}

// outputsText returns the shapes of the node outputs.
func (n *Node) outputsText() string {
	if len(n.shapes) == 1 {
		return n.shapes[0].String()
	}
	parts := make([]string, len(n.shapes))
	for ii, shape := range n.shapes {
		parts[ii] = shape.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ToText renders the nodes feeding the roots, one per line, followed by the list of roots.
//
// It is read-only and can be called at any point after the roots were created.
func ToText(roots ...Value) string {
	var sb strings.Builder
	sb.WriteString("IR {\n")
	for _, node := range PostOrder(roots...) {
		fmt.Fprintf(&sb, "  %%%d = %s(", node.id, node.kind)
		for ii, input := range node.inputs {
			if ii > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(input.String())
		}
		sb.WriteString(")")
		if attrs := node.attributesText(); attrs != "" {
			fmt.Fprintf(&sb, " {%s}", attrs)
		}
		fmt.Fprintf(&sb, " : %s\n", node.outputsText())
	}
	for ii, root := range roots {
		fmt.Fprintf(&sb, "  ROOT %d = %s\n", ii, root)
	}
	sb.WriteString("}\n")
	return sb.String()
}

// dotNode is a Node as seen by the gonum graph.
type dotNode struct {
	node   *Node
	isRoot bool
}

var (
	_ dot.Node            = dotNode{}
	_ encoding.Attributer = dotNode{}
)

// ID implements graph.Node.
func (n dotNode) ID() int64 { return int64(n.node.id) }

// DOTID implements dot.Node.
func (n dotNode) DOTID() string { return "n" + strconv.Itoa(int(n.node.id)) }

// Attributes implements encoding.Attributer.
func (n dotNode) Attributes() []encoding.Attribute {
	label := fmt.Sprintf("%%%d %s\n%s", n.node.id, n.node.kind, n.node.outputsText())
	if attrs := n.node.attributesText(); attrs != "" && n.node.kind != OpConstant {
		label += "\n" + attrs
	}
	attributes := []encoding.Attribute{
		{Key: "label", Value: label},
		{Key: "shape", Value: "box"},
	}
	if n.isRoot {
		attributes = append(attributes, encoding.Attribute{Key: "style", Value: "bold"})
	}
	return attributes
}

// dotEdge connects an input node to the node that uses it. label lists the input positions.
type dotEdge struct {
	from, to dotNode
	label    string
}

// From implements graph.Edge.
func (e dotEdge) From() graph.Node { return e.from }

// To implements graph.Edge.
func (e dotEdge) To() graph.Node { return e.to }

// ReversedEdge implements graph.Edge.
func (e dotEdge) ReversedEdge() graph.Edge { return dotEdge{from: e.to, to: e.from, label: e.label} }

// Attributes implements encoding.Attributer.
func (e dotEdge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: e.label}}
}

// ToDot renders the nodes feeding the roots in the Graphviz DOT format. All roots must belong to the same graph.
//
// Each edge goes from an input to its user, labeled with the input position (and the output used, for
// multi-output nodes). Root nodes are drawn in bold.
func ToDot(roots ...Value) (string, error) {
	var irGraph *Graph
	for ii, root := range roots {
		if !root.Valid() {
			return "", errors.Errorf("ToDot: root #%d is not a valid IR value", ii)
		}
		if irGraph == nil {
			irGraph = root.graph
		} else if root.graph != irGraph {
			return "", errors.Errorf("ToDot: root #%d belongs to graph %q, but root #0 belongs to graph %q",
				ii, root.graph.name, irGraph.name)
		}
	}
	name := "IR"
	if irGraph != nil && irGraph.name != "" {
		name = irGraph.name
	}

	g := simple.NewDirectedGraph()
	rootNodes := make(map[NodeID]bool, len(roots))
	for _, root := range roots {
		rootNodes[root.node] = true
	}
	nodes := PostOrder(roots...)
	dotNodes := make(map[NodeID]dotNode, len(nodes))
	for _, node := range nodes {
		dn := dotNode{node: node, isRoot: rootNodes[node.id]}
		dotNodes[node.id] = dn
		g.AddNode(dn)
	}

	type edgeKey struct{ from, to NodeID }
	labels := make(map[edgeKey][]string)
	var keys []edgeKey
	for _, node := range nodes {
		for ii, input := range node.inputs {
			key := edgeKey{from: input.node, to: node.id}
			if _, found := labels[key]; !found {
				keys = append(keys, key)
			}
			label := strconv.Itoa(ii)
			if input.Node().NumOutputs() > 1 {
				label = fmt.Sprintf("%d:out%d", ii, input.output)
			}
			labels[key] = append(labels[key], label)
		}
	}
	for _, key := range keys {
		g.SetEdge(dotEdge{from: dotNodes[key.from], to: dotNodes[key.to], label: strings.Join(labels[key], ",")})
	}

	encoded, err := dot.Marshal(g, name, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "rendering IR as DOT")
	}
	return string(encoded), nil
}
