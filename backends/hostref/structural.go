package hostref

import (
	"reflect"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/lazyhlo/hlo"
	"github.com/gomlx/lazyhlo/internal/optypes"
	"github.com/gomlx/lazyhlo/tensor"
	"github.com/gomlx/lazyhlo/types/shapes"
)

func init() {
	executors[optypes.Constant] = execConstant
	executors[optypes.Iota] = execIota
	executors[optypes.Select] = execSelect
	executors[optypes.Convert] = execConvert
	executors[optypes.Reshape] = execReshape
	executors[optypes.Transpose] = execTranspose
	executors[optypes.BroadcastInDim] = execBroadcastInDim
}

func execConstant(stmt *hlo.Statement, _ []*tensor.Tensor) *tensor.Tensor {
	flat, shape, ok := stmt.ConstantValue()
	if !ok {
		exceptions.Panicf("%s without a value", stmt.OpType)
	}
	return mustOk(tensor.FromAnyFlat(flat, shape.Dimensions...))
}

func execIota(stmt *hlo.Statement, _ []*tensor.Tensor) *tensor.Tensor {
	axis, ok := stmt.IntAttribute("iota_dimension")
	if !ok {
		exceptions.Panicf("%s without an iota_dimension", stmt.OpType)
	}
	shape := stmt.Outputs[0].Shape()
	flat := make([]int64, shape.Size())
	forEachIndex(shape.Dimensions, func(flatIdx int, indices []int) {
		flat[flatIdx] = int64(indices[axis])
	})
	return mustOk(mustOk(tensor.FromAnyFlat(flat, shape.Dimensions...)).ConvertDType(shape.DType))
}

func execSelect(stmt *hlo.Statement, inputs []*tensor.Tensor) *tensor.Tensor {
	pred := inputs[0].Flat().([]bool)
	onTrue, onFalse := reflect.ValueOf(inputs[1].Flat()), reflect.ValueOf(inputs[2].Flat())
	size := onTrue.Len()
	output := reflect.MakeSlice(onTrue.Type(), size, size)
	for ii := range size {
		choice := pred[0]
		if len(pred) > 1 {
			choice = pred[ii]
		}
		if choice {
			output.Index(ii).Set(onTrue.Index(ii))
		} else {
			output.Index(ii).Set(onFalse.Index(ii))
		}
	}
	return fromShapeAndFlat(stmt.Outputs[0].Shape(), output)
}

func execConvert(stmt *hlo.Statement, inputs []*tensor.Tensor) *tensor.Tensor {
	return mustOk(inputs[0].ConvertDType(stmt.Outputs[0].Shape().DType))
}

func execReshape(stmt *hlo.Statement, inputs []*tensor.Tensor) *tensor.Tensor {
	return mustOk(tensor.FromAnyFlat(inputs[0].Flat(), stmt.Outputs[0].Shape().Dimensions...))
}

func execTranspose(stmt *hlo.Statement, inputs []*tensor.Tensor) *tensor.Tensor {
	permutation, ok := stmt.IntsAttribute("permutation")
	if !ok {
		exceptions.Panicf("%s without a permutation", stmt.OpType)
	}
	operand := inputs[0]
	operandStrides := strides(operand.Dimensions())
	operandV := reflect.ValueOf(operand.Flat())
	outputShape := stmt.Outputs[0].Shape()
	output := reflect.MakeSlice(operandV.Type(), outputShape.Size(), outputShape.Size())
	forEachIndex(outputShape.Dimensions, func(flatIdx int, indices []int) {
		operandIdx := 0
		for axis, operandAxis := range permutation {
			operandIdx += indices[axis] * operandStrides[operandAxis]
		}
		output.Index(flatIdx).Set(operandV.Index(operandIdx))
	})
	return fromShapeAndFlat(outputShape, output)
}

func execBroadcastInDim(stmt *hlo.Statement, inputs []*tensor.Tensor) *tensor.Tensor {
	axes, ok := stmt.IntsAttribute("broadcast_dimensions")
	if !ok {
		exceptions.Panicf("%s without broadcast_dimensions", stmt.OpType)
	}
	operand := inputs[0]
	operandDims := operand.Dimensions()
	operandStrides := strides(operandDims)
	operandV := reflect.ValueOf(operand.Flat())
	outputShape := stmt.Outputs[0].Shape()
	output := reflect.MakeSlice(operandV.Type(), outputShape.Size(), outputShape.Size())
	forEachIndex(outputShape.Dimensions, func(flatIdx int, indices []int) {
		operandIdx := 0
		for operandAxis, axis := range axes {
			if operandDims[operandAxis] != 1 {
				operandIdx += indices[axis] * operandStrides[operandAxis]
			}
		}
		output.Index(flatIdx).Set(operandV.Index(operandIdx))
	})
	return fromShapeAndFlat(outputShape, output)
}

// fromShapeAndFlat creates the tensor with the given shape, for a flat slice of its Go type.
func fromShapeAndFlat(shape shapes.Shape, flat reflect.Value) *tensor.Tensor {
	t := mustOk(tensor.FromAnyFlat(flat.Interface(), shape.Dimensions...))
	if t.DType() != shape.DType {
		exceptions.Panicf("expected a result %s, got %s", shape, t.Shape())
	}
	return t
}

// strides of a row-major array with the given dimensions.
func strides(dimensions []int) []int {
	s := make([]int, len(dimensions))
	stride := 1
	for axis := len(dimensions) - 1; axis >= 0; axis-- {
		s[axis] = stride
		stride *= dimensions[axis]
	}
	return s
}

// forEachIndex calls fn for every position of an array with the given dimensions, in row-major order,
// with its flat index and its per-axis indices. The indices slice is reused between calls.
func forEachIndex(dimensions []int, fn func(flatIdx int, indices []int)) {
	size := 1
	for _, dim := range dimensions {
		size *= dim
	}
	indices := make([]int, len(dimensions))
	for flatIdx := range size {
		fn(flatIdx, indices)
		for axis := len(indices) - 1; axis >= 0; axis-- {
			indices[axis]++
			if indices[axis] < dimensions[axis] {
				break
			}
			indices[axis] = 0
		}
	}
}
