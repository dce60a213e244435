// ops_generator generates the hlo/gen_standard_ops.go file with the trivial unary and binary operations.
//
// It is meant to be run with `go generate` from the hlo package directory.
package main

import "log"

func main() {
	GenerateStandardOps()
}

func must(err error) {
	if err != nil {
		log.Fatalf("Failed: %+v", err)
	}
}

func must1[T any](value T, err error) T {
	must(err)
	return value
}
