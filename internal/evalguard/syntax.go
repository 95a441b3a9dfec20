package evalguard

import (
	"errors"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// ErrBodyEscapesFunction is reported when a body closes the function it is
// parsed inside and appends code after it
var ErrBodyEscapesFunction = errors.New("function body closes its enclosing function")

// JSSyntaxChecker parses snippets with the goja ECMAScript parser.
// Nothing is compiled or run, and source map comments are not followed.
type JSSyntaxChecker struct{}

// CheckFunctionBody parses body as the body of an anonymous function
func (JSSyntaxChecker) CheckFunctionBody(body string) error {
	// The newline before the closing brace keeps a trailing line comment
	// from swallowing it.
	src := "(function anonymous() {\n" + body + "\n})"

	program, err := parser.ParseFile(nil, "", src, 0, parser.WithDisableSourceMaps)
	if err != nil {
		return err
	}

	if len(program.Body) != 1 {
		return ErrBodyEscapesFunction
	}
	stmt, ok := program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return ErrBodyEscapesFunction
	}
	if _, ok := stmt.Expression.(*ast.FunctionLiteral); !ok {
		return ErrBodyEscapesFunction
	}
	return nil
}
