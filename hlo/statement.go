package hlo

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lazyhlo/internal/optypes"
	"github.com/gomlx/lazyhlo/types/shapes"
)

// Statement is one operation of a function body, in the generic StableHLO form:
//
//	%out = "stablehlo.op"(%in0, %in1) {attr = ...} : (tensor<...>, tensor<...>) -> tensor<...>
type Statement struct {
	Function *Function
	OpType   optypes.OpType
	Inputs   []*Value

	// Attributes are rendered sorted by name.
	Attributes map[string]any

	// Outputs is empty for "func.return".
	Outputs []*Value
}

func (s *Statement) print(p *printer, indent string) {
	p.printf("%s", indent)
	if len(s.Outputs) > 0 {
		p.join(len(s.Outputs), func(ii int) { p.printf("%s", s.Outputs[ii]) })
		p.printf(" = ")
	}
	p.printf("%q(", s.OpType.ToStableHLO())
	p.join(len(s.Inputs), func(ii int) { p.printf("%s", s.Inputs[ii]) })
	p.printf(")")
	if len(s.Attributes) > 0 {
		keys := slices.Sorted(maps.Keys(s.Attributes))
		p.printf(" {")
		p.join(len(keys), func(ii int) {
			p.printf("%s = %s", keys[ii], literalToStableHLO(s.Attributes[keys[ii]]))
		})
		p.printf("}")
	}
	p.printf(" : ")
	p.types(valueShapes(s.Inputs), false)
	p.printf(" -> ")
	p.types(valueShapes(s.Outputs), true)
}

func valueShapes(values []*Value) []shapes.Shape {
	list := make([]shapes.Shape, len(values))
	for ii, v := range values {
		list[ii] = v.shape
	}
	return list
}

// IntsAttribute returns an integer list attribute, like "permutation".
func (s *Statement) IntsAttribute(key string) ([]int, bool) {
	v, found := s.Attributes[key].(intArray)
	if !found {
		return nil, false
	}
	return slices.Clone(v), true
}

// IntAttribute returns an integer attribute, like "iota_dimension".
func (s *Statement) IntAttribute(key string) (int, bool) {
	switch v := s.Attributes[key].(type) {
	case int64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// ConstantValue returns the flat values and the shape of a Constant statement.
func (s *Statement) ConstantValue() (flat any, shape shapes.Shape, ok bool) {
	literal, found := s.Attributes["value"].(*denseLiteral)
	if s.OpType != optypes.Constant || !found {
		return nil, shapes.Invalid(), false
	}
	return literal.flat, literal.shape, true
}

// stableHLOer is implemented by attribute values with their own StableHLO rendering.
type stableHLOer interface {
	ToStableHLO() string
}

// literalToStableHLO renders an attribute value.
func literalToStableHLO(attr any) string {
	switch v := attr.(type) {
	case stableHLOer:
		return v.ToStableHLO()
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case float32:
		return formatFloat(float64(v), dtypes.Float32) + " : f32"
	case float64:
		return formatFloat(v, dtypes.Float64) + " : f64"
	case int, int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d : %s", v, shapes.ElementTypeToStableHLO(dtypes.FromAny(v)))
	}
	return fmt.Sprintf("unknown attribute type %T: %#v", attr, attr)
}
