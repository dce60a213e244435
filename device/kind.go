package device

// Kind is the category of a compute target, e.g. a general-purpose host processor or an accelerator.
type Kind int

//go:generate go tool enumer -type=Kind -trimprefix=Kind -transform=lower -output=gen_kind_enumer.go kind.go

const (
	KindInvalid Kind = iota
	KindCPU
	KindGPU
	KindTPU
)

// IsAccelerator returns whether the kind is an accelerator (not the host processor).
func (k Kind) IsAccelerator() bool {
	return k == KindGPU || k == KindTPU
}
