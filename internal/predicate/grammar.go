// Package predicate parses the test expressions of <if> elements, renders
// them as C conditions and evaluates them against a record.
package predicate

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// predicateLexer tokenizes test expressions.
var predicateLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `\d+(?:\.\d+)?(?:[eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Operator", Pattern: `==|!=|<=|>=|&&|\|\||[<>!()-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Expression is a disjunction; it is the root of every test.
type Expression struct {
	Pos   lexer.Position
	Left  *Conjunction   `@@`
	Right []*Conjunction `( ( "||" | "or" ) @@ )*`
}

// Conjunction is a chain of && terms.
type Conjunction struct {
	Left  *Unary   `@@`
	Right []*Unary `( ( "&&" | "and" ) @@ )*`
}

// Unary is a negation or a comparison.
type Unary struct {
	Not        *Unary      `  "!" @@`
	Comparison *Comparison `| @@`
}

// Comparison is an operand optionally compared to a second one.
type Comparison struct {
	Left  *Operand `@@`
	Op    string   `( @( "==" | "!=" | "<=" | ">=" | "<" | ">" )`
	Right *Operand `  @@ )?`
}

// Operand is a literal, an identifier or a parenthesized expression.
type Operand struct {
	Negative bool        `@"-"?`
	Number   *string     `(  @Number`
	Ident    *string     ` | @Ident`
	Group    *Expression ` | "(" @@ ")" )`
}

var parser = participle.MustBuild[Expression](
	participle.Lexer(predicateLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Parse parses a test expression.
func Parse(test string) (*Expression, error) {
	if strings.TrimSpace(test) == "" {
		return nil, fmt.Errorf("empty test expression")
	}
	expr, err := parser.ParseString("", test)
	if err != nil {
		return nil, fmt.Errorf("invalid test expression %q: %w", test, err)
	}
	return expr, nil
}
