package hlo

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/gomlx/lazyhlo/types/shapes"
	"github.com/pkg/errors"
)

// MainFunctionName is the name of the entry point of every program.
const MainFunctionName = "main"

// indentStep is added for each nesting level of the rendered program.
const indentStep = "  "

// Builder holds a program (a StableHLO module) under construction.
//
// Create the entry point with Builder.Main, add operations to it with the functions of this package
// (Add, Compare, Reshape, ...) and close it with Function.Return. Builder.Build then renders the
// program text that PJRT compiles.
type Builder struct {
	name      string
	functions []*Function
}

// New returns an empty Builder for a program with the given name.
func New(name string) *Builder {
	return &Builder{name: name}
}

// Name of the program.
func (b *Builder) Name() string { return b.name }

// NewFunction adds a function to the program. Its name must be unique in the program.
//
// The given inputs become the function parameters; more can be added with Function.Input.
func (b *Builder) NewFunction(name string, inputs ...*Value) *Function {
	fn := &Function{Builder: b, Name: name, Inputs: slices.Clone(inputs)}
	for _, input := range inputs {
		input.fn = fn
	}
	b.functions = append(b.functions, fn)
	return fn
}

// Main adds the entry point of the program, the function named MainFunctionName.
func (b *Builder) Main(inputs ...*Value) *Function {
	return b.NewFunction(MainFunctionName, inputs...)
}

// Function returns the function with the given name, or nil if there is none.
func (b *Builder) Function(name string) *Function {
	idx := slices.IndexFunc(b.functions, func(fn *Function) bool { return fn.Name == name })
	if idx < 0 {
		return nil
	}
	return b.functions[idx]
}

// Write renders the program as StableHLO text, even if it is incomplete: use Build to check it first.
func (b *Builder) Write(writer io.Writer) error {
	p := &printer{w: writer}
	p.printf("module @%s {\n", NormalizeIdentifier(b.name))
	for ii, fn := range b.functions {
		if ii > 0 {
			p.printf("\n\n")
		}
		fn.print(p, indentStep)
	}
	p.printf("\n}\n")
	return p.err
}

// Build checks that the program has a main function and that every function returned, and renders it.
func (b *Builder) Build() ([]byte, error) {
	for _, fn := range b.functions {
		switch {
		case len(fn.Statements) == 0:
			return nil, errors.Errorf("function %q has no statements", fn.Name)
		case !fn.Returned:
			return nil, errors.Errorf("function %q has no return statement", fn.Name)
		}
	}
	if b.Function(MainFunctionName) == nil {
		return nil, errors.New("program must have a main function")
	}
	var buf bytes.Buffer
	if err := b.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// printer renders StableHLO text, keeping the first write error and skipping everything after it.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

// join prints item(0) ... item(n-1) separated by commas.
func (p *printer) join(n int, item func(ii int)) {
	for ii := range n {
		if ii > 0 {
			p.printf(", ")
		}
		item(ii)
	}
}

// types prints a list of types, parenthesized unless there is exactly one and bareSingle is set.
func (p *printer) types(list []shapes.Shape, bareSingle bool) {
	parens := !bareSingle || len(list) != 1
	if parens {
		p.printf("(")
	}
	p.join(len(list), func(ii int) { p.printf("%s", list[ii].ToStableHLO()) })
	if parens {
		p.printf(")")
	}
}
