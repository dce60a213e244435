package hlo

import "github.com/gomlx/lazyhlo/types/shapes"

// Value is an SSA value of a function, rendered as `%<name>`: a parameter (`%arg0`) or a statement
// output (`%3`).
type Value struct {
	fn    *Function
	name  string
	shape shapes.Shape
}

// NamedValue returns a parameter with the given name, to be passed to Builder.NewFunction.
func NamedValue(name string, shape shapes.Shape) *Value {
	return &Value{name: NormalizeIdentifier(name), shape: shape}
}

// Shape of the value.
func (v *Value) Shape() shapes.Shape { return v.shape }

// Name without the "%" prefix.
func (v *Value) Name() string { return v.name }

// Function the value belongs to.
func (v *Value) Function() *Function { return v.fn }

// String implements fmt.Stringer.
func (v *Value) String() string { return "%" + v.name }
