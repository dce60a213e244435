package hostref

// Call is a device.Client method that can be made to fail with Client.FailNext.
type Call int

//go:generate go tool enumer -type=Call -trimprefix=Call -output=gen_call_enumer.go call.go

const (
	CallTransferToServer Call = iota
	CallTransferFromServer
	CallCompilationDevices
	CallCompile
	CallExecute
)
