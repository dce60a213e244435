package device

import (
	"fmt"

	"github.com/gomlx/lazyhlo/hlo"
	"github.com/gomlx/lazyhlo/types/shapes"
)

// ProgramShape is the signature of a program: its parameters and its result.
//
// The result is always a tuple, with one element per program output.
type ProgramShape struct {
	Parameters     []shapes.Shape
	ParameterNames []string
	Result         shapes.Shape
}

// String implements fmt.Stringer.
func (ps ProgramShape) String() string {
	return fmt.Sprintf("(%v) -> %s", ps.Parameters, ps.Result)
}

// Program is the portable description of a computation, ready to be compiled.
type Program struct {
	Name string

	// StableHLO is the rendered program text.
	StableHLO []byte

	// Module is the structured form of the same program.
	Module *hlo.Builder

	Shape ProgramShape
}

// CompileInstance is one program to be compiled for one device.
type CompileInstance struct {
	Program *Program

	// CompilationDevice is the device the program is compiled for.
	CompilationDevice string

	// Devices are all the devices the client considers valid compilation targets, for replication.
	Devices []string

	// OutputShape is the program result shape with the layout required by the compilation device kind.
	OutputShape *shapes.Shape
}

// Computation is a compiled program, owned by the client that compiled it.
type Computation struct {
	Handle
	Name   string
	Device string
	Shape  ProgramShape
}

// ExecuteOptions configures ExecuteComputation. The zero value is the default.
type ExecuteOptions struct {
	// DonateArguments allows the client to reuse the argument buffers for the outputs. Donated
	// arguments are no longer valid after the execution.
	DonateArguments bool
}
