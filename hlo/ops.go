package hlo

import (
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lazyhlo/internal/optypes"
	"github.com/gomlx/lazyhlo/shapeinference"
	"github.com/gomlx/lazyhlo/types"
	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/pkg/errors"
)

// functionOf returns the open function all operands belong to.
func functionOf(op optypes.OpType, operands ...*Value) (*Function, error) {
	fn := operands[0].fn
	if fn == nil {
		return nil, errors.Errorf("%s: operand %s doesn't belong to a function", op, operands[0])
	}
	if fn.Returned {
		return nil, errors.Errorf("%s: function %q already returned", op, fn.Name)
	}
	for _, operand := range operands[1:] {
		if operand.fn != fn {
			return nil, errors.Errorf("%s: operand %s doesn't belong to function %q", op, operand, fn.Name)
		}
	}
	return fn, nil
}

// addInferred adds op over operands, with its output shape given by infer.
func addInferred(op optypes.OpType, infer func() (shapes.Shape, error), operands ...*Value) (*Statement, error) {
	fn, err := functionOf(op, operands...)
	if err != nil {
		return nil, err
	}
	output, err := infer()
	if err != nil {
		return nil, err
	}
	return fn.addOp(op, output, operands...), nil
}

func binaryOp(op optypes.OpType, lhs, rhs *Value) (*Value, error) {
	stmt, err := addInferred(op, func() (shapes.Shape, error) {
		return shapeinference.BinaryOp(op, lhs.shape, rhs.shape)
	}, lhs, rhs)
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

func unaryOp(op optypes.OpType, operand *Value) (*Value, error) {
	stmt, err := addInferred(op, func() (shapes.Shape, error) {
		return shapeinference.UnaryOp(op, operand.shape)
	}, operand)
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

// Compare lhs and rhs element-wise, returning booleans. Use types.CompareTypeForDType to pick the
// compareType.
func Compare(lhs, rhs *Value, direction types.ComparisonDirection, compareType types.ComparisonType) (*Value, error) {
	stmt, err := addInferred(optypes.Compare, func() (shapes.Shape, error) {
		return shapeinference.Compare(lhs.shape, rhs.shape, direction, compareType)
	}, lhs, rhs)
	if err != nil {
		return nil, err
	}
	stmt.Attributes = map[string]any{
		"compare_type":         compareType,
		"comparison_direction": direction,
	}
	return stmt.Outputs[0], nil
}

// Select picks onTrue where pred is true, and onFalse elsewhere. pred is a Bool scalar or has the
// dimensions of onTrue and onFalse.
func Select(pred, onTrue, onFalse *Value) (*Value, error) {
	stmt, err := addInferred(optypes.Select, func() (shapes.Shape, error) {
		return shapeinference.Select(pred.shape, onTrue.shape, onFalse.shape)
	}, pred, onTrue, onFalse)
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

// Convert x to dtype. Booleans convert to 0 and 1, and complex to real conversions drop the imaginary part.
func Convert(x *Value, dtype dtypes.DType) (*Value, error) {
	stmt, err := addInferred(optypes.Convert, func() (shapes.Shape, error) {
		return shapeinference.Convert(x.shape, dtype)
	}, x)
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

// Reshape operand to shape, which must have the same dtype and number of elements. The row-major order
// of the elements is kept.
func Reshape(operand *Value, shape shapes.Shape) (*Value, error) {
	stmt, err := addInferred(optypes.Reshape, func() (shapes.Shape, error) {
		if operand.shape.DType != shape.DType {
			return shapes.Invalid(), errors.Errorf("Reshape(%s) can't change the dtype to the one of %s", operand.shape, shape)
		}
		return shapeinference.Reshape(operand.shape, shape.Dimensions)
	}, operand)
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

// Transpose the axes of x: output axis i is axis permutation[i] of x.
func Transpose(x *Value, permutation ...int) (*Value, error) {
	stmt, err := addInferred(optypes.Transpose, func() (shapes.Shape, error) {
		return shapeinference.Transpose(x.shape, permutation)
	}, x)
	if err != nil {
		return nil, err
	}
	stmt.Attributes = map[string]any{"permutation": intArray(slices.Clone(permutation))}
	return stmt.Outputs[0], nil
}

// BroadcastInDim broadcasts operand to target, with operand axis i mapped to target axis axesMapping[i].
func BroadcastInDim(operand *Value, target shapes.Shape, axesMapping []int) (*Value, error) {
	axesMapping = slices.Clone(axesMapping)
	stmt, err := addInferred(optypes.BroadcastInDim, func() (shapes.Shape, error) {
		return target, shapeinference.BroadcastInDim(operand.shape, target, axesMapping)
	}, operand)
	if err != nil {
		return nil, err
	}
	stmt.Attributes = map[string]any{"broadcast_dimensions": intArray(axesMapping)}
	return stmt.Outputs[0], nil
}
