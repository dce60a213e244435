package lazyhlo

// Stage of the pipeline where a fatal error happened.
type Stage int

//go:generate go tool enumer -type=Stage -trimprefix=Stage -output=gen_stage_enumer.go stage.go

const (
	StageInvalid Stage = iota

	// StageTransfer is the staging of host data on a device, or the transfer of device data back to host.
	StageTransfer

	// StageLowering is the translation of the IR roots to a program.
	StageLowering

	// StageCompile is the compilation of the program for the target device.
	StageCompile

	// StageExecution is the execution of the compiled program.
	StageExecution

	// StageDecode is the decoding of a transferred literal into a host tensor.
	StageDecode
)
