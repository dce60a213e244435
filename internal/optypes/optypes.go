// Package optypes defines OpType and lists the operations a lowered program can hold.
package optypes

import "strings"

// OpType is an enum of the program operations emitted by lowering and understood by the device clients.
type OpType int

//go:generate go tool enumer -type=OpType -output=gen_optype_enumer.go optypes.go

const (
	Invalid OpType = iota
	FuncReturn
	Constant
	Iota

	Abs
	Negate
	Exponential
	Log
	Sqrt
	Tanh

	Add
	Subtract
	Multiply
	Divide
	Maximum
	Minimum
	Power

	Compare
	Select
	Convert
	Reshape
	Transpose
	BroadcastInDim

	// Last should always be kept the last, it is used as a counter/marker for the number of ops.
	Last
)

// stableHLONames holds the op names that are not simply the lower-cased OpType prefixed by "stablehlo.".
var stableHLONames = map[OpType]string{
	FuncReturn:     "func.return",
	BroadcastInDim: "stablehlo.broadcast_in_dim",
}

// ToStableHLO returns the StableHLO name of the operation.
func (op OpType) ToStableHLO() string {
	if name, found := stableHLONames[op]; found {
		return name
	}
	return "stablehlo." + strings.ToLower(op.String())
}
