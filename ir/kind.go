package ir

//go:generate go tool enumer -type=OpKind -trimprefix=Op -output=gen_opkind_enumer.go kind.go

// OpKind is the closed set of IR node kinds. Lowering dispatches on it.
type OpKind int

const (
	OpInvalid OpKind = iota

	// OpDeviceData is a leaf holding device-resident data, lowered to a program parameter.
	OpDeviceData

	// OpConstant is a leaf holding a host tensor, lowered to a program constant.
	OpConstant

	OpIota

	OpNeg
	OpAbs
	OpExp
	OpLog
	OpSqrt
	OpTanh

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMax
	OpMin
	OpPow

	OpCompare
	OpWhere
	OpConvert
	OpReshape
	OpTranspose
	OpBroadcast

	// OpMinMax has two outputs: the element-wise minimum and maximum of its operands.
	OpMinMax

	// OpOpaque nodes are created by extensions that know how to compute a value, but have no lowering rule.
	OpOpaque
)
