/***** File generated by ./internal/cmd/ops_generator, based on the lists of standard ops. Don't edit it directly. *****/

package hlo

import (
	"github.com/gomlx/lazyhlo/internal/optypes"
)

// Add returns the element-wise sum of the two values.
func Add(lhs, rhs *Value) (*Value, error) {
	return binaryOp(optypes.Add, lhs, rhs)
}

// Subtract returns the element-wise subtraction of the two values.
func Subtract(lhs, rhs *Value) (*Value, error) {
	return binaryOp(optypes.Subtract, lhs, rhs)
}

// Multiply returns the element-wise multiplication of the two values.
func Multiply(lhs, rhs *Value) (*Value, error) {
	return binaryOp(optypes.Multiply, lhs, rhs)
}

// Divide returns the element-wise division of the two values.
func Divide(lhs, rhs *Value) (*Value, error) {
	return binaryOp(optypes.Divide, lhs, rhs)
}

// Maximum returns the element-wise maximum of the two values.
func Maximum(lhs, rhs *Value) (*Value, error) {
	return binaryOp(optypes.Maximum, lhs, rhs)
}

// Minimum returns the element-wise minimum of the two values.
func Minimum(lhs, rhs *Value) (*Value, error) {
	return binaryOp(optypes.Minimum, lhs, rhs)
}

// Power returns the element-wise lhs raised to the power of rhs.
func Power(lhs, rhs *Value) (*Value, error) {
	return binaryOp(optypes.Power, lhs, rhs)
}

// Abs returns the element-wise absolute value. For complex values it returns the modulus, as a float.
func Abs(operand *Value) (*Value, error) {
	return unaryOp(optypes.Abs, operand)
}

// Negate returns the element-wise negation of the value.
func Negate(operand *Value) (*Value, error) {
	return unaryOp(optypes.Negate, operand)
}

// Exponential returns the element-wise e^x.
func Exponential(operand *Value) (*Value, error) {
	return unaryOp(optypes.Exponential, operand)
}

// Log returns the element-wise natural logarithm.
func Log(operand *Value) (*Value, error) {
	return unaryOp(optypes.Log, operand)
}

// Sqrt returns the element-wise square root.
func Sqrt(operand *Value) (*Value, error) {
	return unaryOp(optypes.Sqrt, operand)
}

// Tanh returns the element-wise hyperbolic tangent.
func Tanh(operand *Value) (*Value, error) {
	return unaryOp(optypes.Tanh, operand)
}
