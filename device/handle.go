package device

import (
	"fmt"

	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/google/uuid"
)

// Handle is an opaque capability token for a resource (data or compiled program) owned by a Client.
//
// Owner identifies the client that issued it, and ID the resource within that client. A Handle is
// a non-owning reference: it is only meaningful to the client that created it, and only until the
// resource is released.
type Handle struct {
	Owner uuid.UUID
	ID    uint64
}

// Ok returns whether the handle was issued by a client.
func (h Handle) Ok() bool {
	return h.Owner != uuid.Nil
}

// String implements fmt.Stringer.
func (h Handle) String() string {
	return fmt.Sprintf("#%d@%s", h.ID, h.Owner.String()[:8])
}

// Data is a reference to a value resident on a device.
//
// Shape is the client's annotation of the value's shape, including the device layout. It is
// sufficient to plan a transfer, but the Literal transferred back is authoritative for decoding.
type Data struct {
	Handle
	Device string
	Shape  shapes.Shape
}

// String implements fmt.Stringer.
func (d Data) String() string {
	return fmt.Sprintf("Data(%s on %s: %s)", d.Handle, d.Device, d.Shape)
}

// Literal is a value in the wire format: the shape it was transferred with, and the raw bytes of its
// elements in row-major order, little-endian encoded. Booleans take one byte each.
type Literal struct {
	Shape shapes.Shape
	Bytes []byte
}
