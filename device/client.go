package device

// Client is the contract required from a device runtime.
//
// Device identifiers are strings of the form "<kind>:<ordinal>". All methods block until the
// runtime completes the request. Implementations must be safe for concurrent use.
type Client interface {
	// LocalDevices lists the devices directly addressable by this process.
	LocalDevices() []string

	// AllDevices lists all devices, including remote or replicated ones.
	AllDevices() []string

	// DefaultDevice is the process configured default device.
	DefaultDevice() string

	// CompilationDevices returns the devices valid as compilation targets for target, used for
	// replication. If requested is empty the client picks them.
	CompilationDevices(target string, requested []string) ([]string, error)

	// Compile compiles each instance, returning one Computation per instance.
	Compile(instances []CompileInstance) ([]Computation, error)

	// ExecuteComputation runs a compiled program on device with the given arguments, in the order
	// of the program parameters. It returns one Data per element of the program result.
	ExecuteComputation(computation Computation, arguments []Data, device string, options ExecuteOptions) ([]Data, error)

	// TransferToServer stages each literal as device-resident data on device.
	TransferToServer(literals []Literal, device string) ([]Data, error)

	// TransferFromServer transfers all data to host, in one batch.
	TransferFromServer(data []Data) ([]Literal, error)

	// ReleaseData frees device-resident data. Releasing unknown data is an error.
	ReleaseData(data ...Data) error

	// ReleaseComputation frees a compiled program.
	ReleaseComputation(computation Computation) error
}
