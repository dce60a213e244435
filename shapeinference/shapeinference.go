// Package shapeinference calculates the shape resulting from operations and validates their inputs.
//
// It is used twice: when building the IR graph, to know the shape of every value as soon as it is created,
// and again when the lowered program is built.
//
// Element-wise operations never broadcast implicitly: operands must have equal shapes, and broadcasting
// is done explicitly with BroadcastInDim.
package shapeinference

import (
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lazyhlo/internal/optypes"
	"github.com/gomlx/lazyhlo/types"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/pkg/errors"
)

// dtypeClass is the set of element types an element-wise operation accepts.
type dtypeClass int

const (
	anyNumber dtypeClass = iota
	signedNumber
	orderedNumber
	floatOnly
	floatOrComplex
)

func (c dtypeClass) accepts(dtype dtypes.DType) bool {
	isNumber := dtype.IsInt() || dtype.IsFloat() || dtype.IsComplex()
	switch c {
	case anyNumber:
		return isNumber
	case signedNumber:
		return isNumber && !dtype.IsUnsigned()
	case orderedNumber:
		return dtype.IsInt() || dtype.IsFloat()
	case floatOnly:
		return dtype.IsFloat()
	case floatOrComplex:
		return dtype.IsFloat() || dtype.IsComplex()
	}
	return false
}

func (c dtypeClass) String() string {
	return [...]string{
		anyNumber:      "a number (integer, float or complex)",
		signedNumber:   "a signed number",
		orderedNumber:  "an integer or float",
		floatOnly:      "a float",
		floatOrComplex: "a float or complex",
	}[c]
}

// unaryOps maps the element-wise unary operations to the dtypes they accept.
var unaryOps = map[optypes.OpType]dtypeClass{
	optypes.Abs:         anyNumber,
	optypes.Negate:      signedNumber,
	optypes.Exponential: floatOrComplex,
	optypes.Log:         floatOrComplex,
	optypes.Sqrt:        floatOrComplex,
	optypes.Tanh:        floatOnly,
}

// binaryOps maps the element-wise binary operations to the dtypes they accept.
var binaryOps = map[optypes.OpType]dtypeClass{
	optypes.Add:      anyNumber,
	optypes.Subtract: anyNumber,
	optypes.Multiply: anyNumber,
	optypes.Divide:   anyNumber,
	optypes.Power:    anyNumber,
	optypes.Maximum:  orderedNumber,
	optypes.Minimum:  orderedNumber,
}

// IsUnaryOp returns whether op is an element-wise unary operation handled by UnaryOp.
func IsUnaryOp(op optypes.OpType) bool {
	_, found := unaryOps[op]
	return found
}

// IsBinaryOp returns whether op is an element-wise binary operation handled by BinaryOp.
func IsBinaryOp(op optypes.OpType) bool {
	_, found := binaryOps[op]
	return found
}

// BinaryOp returns the output shape of an element-wise binary operation: both operands must have the
// same shape, with a dtype accepted by the operation.
func BinaryOp(opType optypes.OpType, lhsShape, rhsShape shapes.Shape) (shapes.Shape, error) {
	class, found := binaryOps[opType]
	if !found {
		return shapes.Invalid(), errors.Errorf("%s is not an element-wise binary operation", opType)
	}
	if err := sameShape(opType.String(), lhsShape, rhsShape); err != nil {
		return shapes.Invalid(), err
	}
	if !class.accepts(lhsShape.DType) {
		return shapes.Invalid(), errors.Errorf("%s requires %s operands, got %s", opType, class, lhsShape)
	}
	return lhsShape.Clone(), nil
}

func sameShape(opName string, lhsShape, rhsShape shapes.Shape) error {
	if !lhsShape.Ok() || !rhsShape.Ok() || lhsShape.IsTuple() || rhsShape.IsTuple() {
		return errors.Errorf("%s got invalid operand shapes %s and %s", opName, lhsShape, rhsShape)
	}
	if !lhsShape.Equal(rhsShape) {
		return errors.Errorf("%s operands must have the same shape, got %s and %s", opName, lhsShape, rhsShape)
	}
	return nil
}

// UnaryOp returns the output shape of an element-wise unary operation. It is the operand shape, except
// for Abs of complex numbers, which returns the real dtype.
func UnaryOp(opType optypes.OpType, operand shapes.Shape) (shapes.Shape, error) {
	class, found := unaryOps[opType]
	if !found {
		return shapes.Invalid(), errors.Errorf("%s is not an element-wise unary operation", opType)
	}
	if !operand.Ok() || operand.IsTuple() {
		return shapes.Invalid(), errors.Errorf("%s got invalid operand shape %s", opType, operand)
	}
	if !class.accepts(operand.DType) {
		return shapes.Invalid(), errors.Errorf("%s requires %s operand, got %s", opType, class, operand)
	}
	output := operand.Clone()
	if opType == optypes.Abs && operand.DType.IsComplex() {
		output.DType = operand.DType.RealDType()
	}
	return output, nil
}

// compareTypeAccepts lists, per comparison type, the dtypes it can compare.
var compareTypeAccepts = map[types.ComparisonType]func(dtypes.DType) bool{
	types.CompareFloat:      func(d dtypes.DType) bool { return d.IsFloat() || d.IsComplex() },
	types.CompareTotalOrder: func(d dtypes.DType) bool { return d.IsFloat() },
	types.CompareSigned:     func(d dtypes.DType) bool { return d.IsInt() && !d.IsUnsigned() },
	types.CompareUnsigned:   func(d dtypes.DType) bool { return d.IsUnsigned() || d == dtypes.Bool },
}

// Compare returns the shape of an element-wise comparison: the operands shape with a Bool dtype.
func Compare(lhsShape, rhsShape shapes.Shape, direction types.ComparisonDirection, compareType types.ComparisonType) (shapes.Shape, error) {
	if err := sameShape("Compare", lhsShape, rhsShape); err != nil {
		return shapes.Invalid(), err
	}
	accepts, found := compareTypeAccepts[compareType]
	if !found {
		return shapes.Invalid(), errors.Errorf("invalid comparison type %d for Compare", compareType)
	}
	if !accepts(lhsShape.DType) {
		return shapes.Invalid(), errors.Errorf("Compare(direction=%s, type=%s) can't compare %s values",
			direction, compareType, lhsShape.DType)
	}
	if direction < types.CompareEQ || direction > types.CompareNE {
		return shapes.Invalid(), errors.Errorf("invalid comparison direction %d for Compare", direction)
	}
	output := lhsShape.Clone()
	output.DType = dtypes.Bool
	return output, nil
}

// Select returns the shape of Select(pred, onTrue, onFalse): onTrue and onFalse must have the same shape,
// and pred must be a Bool scalar or have their dimensions.
func Select(pred, onTrue, onFalse shapes.Shape) (shapes.Shape, error) {
	if pred.DType != dtypes.Bool {
		return shapes.Invalid(), errors.Errorf("Select requires a Bool predicate, got %s", pred)
	}
	if !onTrue.Equal(onFalse) {
		return shapes.Invalid(), errors.Errorf("Select requires onTrue and onFalse of the same shape, got %s and %s",
			onTrue, onFalse)
	}
	if !pred.IsScalar() && pred.CheckDims(onTrue.Dimensions...) != nil {
		return shapes.Invalid(), errors.Errorf("Select predicate %s must be a scalar or have the dimensions of %s",
			pred, onTrue)
	}
	return onTrue.Clone(), nil
}

// Transpose returns the operand shape with its axes permuted: output axis i is operand axis permutation[i].
func Transpose(operand shapes.Shape, permutation []int) (shapes.Shape, error) {
	rank := operand.Rank()
	if len(permutation) != rank {
		return shapes.Invalid(), errors.Errorf("Transpose(%s) requires a permutation of %d axes, got %v",
			operand, rank, permutation)
	}
	sorted := slices.Sorted(slices.Values(permutation))
	for ii, axis := range sorted {
		if axis != ii {
			return shapes.Invalid(), errors.Errorf("Transpose(%s) permutation %v must hold each axis in [0, %d) exactly once",
				operand, permutation, rank)
		}
	}
	output := operand.Clone()
	for axis, srcAxis := range permutation {
		output.Dimensions[axis] = operand.Dimensions[srcAxis]
	}
	return output, nil
}

// BroadcastInDim validates broadcasting operand to targetShape, with operand axis i mapped to target axis
// axesMapping[i]. Negative axes in axesMapping are replaced in place by their non-negative equivalent.
func BroadcastInDim(operand, targetShape shapes.Shape, axesMapping []int) error {
	if operand.DType != targetShape.DType {
		return errors.Errorf("BroadcastInDim(%s) can't change the dtype to the one of %s", operand, targetShape)
	}
	targetRank := targetShape.Rank()
	if targetRank < operand.Rank() {
		return errors.Errorf("BroadcastInDim(%s) can't shrink the rank to the one of %s", operand, targetShape)
	}
	if len(axesMapping) != operand.Rank() {
		return errors.Errorf("BroadcastInDim(%s) requires one axis mapping per operand axis, got %v", operand, axesMapping)
	}
	used := make([]bool, targetRank)
	for operandAxis, mapped := range axesMapping {
		targetAxis, err := AdjustAxisToRank(mapped, targetRank)
		if err != nil {
			return errors.WithMessagef(err, "BroadcastInDim(%s) mapping of operand axis %d", operand, operandAxis)
		}
		if used[targetAxis] {
			return errors.Errorf("BroadcastInDim(%s) maps two operand axes to target axis %d", operand, targetAxis)
		}
		used[targetAxis] = true
		operandDim, targetDim := operand.Dimensions[operandAxis], targetShape.Dimensions[targetAxis]
		if operandDim != 1 && operandDim != targetDim {
			return errors.Errorf("BroadcastInDim(%s) can't broadcast operand axis %d (dimension %d) to target axis %d (dimension %d)",
				operand, operandAxis, operandDim, targetAxis, targetDim)
		}
		axesMapping[operandAxis] = targetAxis
	}
	return nil
}

// AdjustAxisToRank returns axis, with negative values counted from the end, and checks it is within rank.
func AdjustAxisToRank(axis, rank int) (int, error) {
	if axis < -rank || axis >= rank {
		return -1, errors.Errorf("axis %d is out of range for rank %d", axis, rank)
	}
	if axis < 0 {
		axis += rank
	}
	return axis, nil
}

// Reshape returns the operand shape with the given dimensions. The number of elements must be preserved.
func Reshape(operand shapes.Shape, dimensions []int) (shapes.Shape, error) {
	if !operand.Ok() || operand.IsTuple() {
		return shapes.Invalid(), errors.Errorf("Reshape got invalid operand shape %s", operand)
	}
	if slices.ContainsFunc(dimensions, func(dim int) bool { return dim < 0 }) {
		return shapes.Invalid(), errors.Errorf("Reshape(%s, %v) has a negative dimension", operand, dimensions)
	}
	output := shapes.Make(operand.DType, dimensions...)
	if output.Size() != operand.Size() {
		return shapes.Invalid(), errors.Errorf("Reshape(%s, %v) changes the number of elements", operand, dimensions)
	}
	return output, nil
}

// Convert returns the operand shape with the dtype changed.
func Convert(operand shapes.Shape, dtype dtypes.DType) (shapes.Shape, error) {
	if operand.DType == dtypes.InvalidDType || dtype == dtypes.InvalidDType {
		return shapes.Invalid(), errors.Errorf("invalid dtypes for Convert(%s, %s)", operand, dtype)
	}
	output := operand.Clone()
	output.DType = dtype
	return output, nil
}

// Iota validates the shape and the iota axis, and returns the adjusted (non-negative) axis.
func Iota(shape shapes.Shape, axis int) (int, error) {
	if shape.IsScalar() {
		return -1, errors.Errorf("Iota requires a shape with rank >= 1, got %s", shape)
	}
	if shape.DType == dtypes.Bool || shape.DType == dtypes.InvalidDType {
		return -1, errors.Errorf("Iota requires a numeric dtype, got %s", shape)
	}
	adjusted, err := AdjustAxisToRank(axis, shape.Rank())
	if err != nil {
		return -1, errors.WithMessagef(err, "Iota axis for shape %s", shape)
	}
	return adjusted, nil
}
