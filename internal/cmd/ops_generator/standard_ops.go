package main

import (
	"fmt"
	"os"
	"os/exec"
	"text/template"
)

const standardOpsFileName = "gen_standard_ops.go"

type opInfo struct {
	Name, Comment string
}

var (
	binaryOps = []opInfo{
		{"Add", "Add returns the element-wise sum of the two values."},
		{"Subtract", "Subtract returns the element-wise subtraction of the two values."},
		{"Multiply", "Multiply returns the element-wise multiplication of the two values."},
		{"Divide", "Divide returns the element-wise division of the two values."},
		{"Maximum", "Maximum returns the element-wise maximum of the two values."},
		{"Minimum", "Minimum returns the element-wise minimum of the two values."},
		{"Power", "Power returns the element-wise lhs raised to the power of rhs."},
	}

	unaryOps = []opInfo{
		{"Abs", "Abs returns the element-wise absolute value. For complex values it returns the modulus, as a float."},
		{"Negate", "Negate returns the element-wise negation of the value."},
		{"Exponential", "Exponential returns the element-wise e^x."},
		{"Log", "Log returns the element-wise natural logarithm."},
		{"Sqrt", "Sqrt returns the element-wise square root."},
		{"Tanh", "Tanh returns the element-wise hyperbolic tangent."},
	}

	standardOpsTemplate = template.Must(template.New(standardOpsFileName).Parse(`
/***** File generated by ./internal/cmd/ops_generator, based on the lists of standard ops. Don't edit it directly. *****/

package hlo

import (
	"github.com/gomlx/lazyhlo/internal/optypes"
)
{{range .Binary}}
// {{.Comment}}
func {{.Name}}(lhs, rhs *Value) (*Value, error) {
	return binaryOp(optypes.{{.Name}}, lhs, rhs)
}
{{end}}{{range .Unary}}
// {{.Comment}}
func {{.Name}}(operand *Value) (*Value, error) {
	return unaryOp(optypes.{{.Name}}, operand)
}
{{end}}`))
)

// GenerateStandardOps generates the unary and binary ops whose only logic is the shape inference.
func GenerateStandardOps() {
	f := must1(os.Create(standardOpsFileName))
	must(standardOpsTemplate.Execute(f, struct{ Binary, Unary []opInfo }{binaryOps, unaryOps}))
	must(f.Close())
	cmd := exec.Command("gofmt", "-w", standardOpsFileName)
	cmd.Stderr = os.Stderr
	must(cmd.Run())
	fmt.Printf("Generated %s\n", standardOpsFileName)
}
