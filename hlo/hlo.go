// Package hlo builds the portable programs IR graphs are lowered to: StableHLO modules in the generic
// text format (https://openxla.org/stablehlo/spec).
//
// PJRT compiles the rendered text, while the host reference client interprets the structured form
// (Builder, Function, Statement and Value) directly. Output shapes are inferred, and operands
// validated, as each operation is added.
package hlo

import (
	"strings"
	"unicode"
)

// Generates the trivial functions (binary and unary operators) automatically.
//go:generate go run ../internal/cmd/ops_generator

// NormalizeIdentifier maps name to a valid StableHLO identifier: any rune other than an ASCII letter,
// digit or underscore becomes an underscore, and a leading digit gets an underscore prefix.
func NormalizeIdentifier(name string) string {
	normalized := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return r
		}
		return '_'
	}, name)
	if normalized != "" && normalized[0] >= '0' && normalized[0] <= '9' {
		normalized = "_" + normalized
	}
	return normalized
}
