package predicate

import (
	"sort"
	"strings"
)

// RenderC renders expr as a C condition. Identifiers for which isField
// reports true are read from the input record n; the rest are emitted
// verbatim so runtime macros such as YB_INT_NULL keep working.
func RenderC(expr *Expression, isField func(string) bool) string {
	r := &cRenderer{isField: isField}
	r.expression(expr)
	return r.sb.String()
}

// LegacyC renders a test that did not parse as a single record member.
func LegacyC(test string) string {
	return "n->" + strings.TrimSpace(test)
}

type cRenderer struct {
	sb      strings.Builder
	isField func(string) bool
}

func (r *cRenderer) expression(e *Expression) {
	r.conjunction(e.Left)
	for _, c := range e.Right {
		r.sb.WriteString(" || ")
		r.conjunction(c)
	}
}

func (r *cRenderer) conjunction(c *Conjunction) {
	r.unary(c.Left)
	for _, u := range c.Right {
		r.sb.WriteString(" && ")
		r.unary(u)
	}
}

func (r *cRenderer) unary(u *Unary) {
	if u.Not != nil {
		r.sb.WriteString("!")
		if u.Not.isBareOperand() {
			r.unary(u.Not)
			return
		}
		r.sb.WriteString("(")
		r.unary(u.Not)
		r.sb.WriteString(")")
		return
	}
	r.comparison(u.Comparison)
}

func (r *cRenderer) comparison(c *Comparison) {
	r.operand(c.Left)
	if c.Right != nil {
		r.sb.WriteString(" " + c.Op + " ")
		r.operand(c.Right)
	}
}

func (r *cRenderer) operand(o *Operand) {
	if o.Negative {
		r.sb.WriteString("-")
	}
	switch {
	case o.Number != nil:
		r.sb.WriteString(*o.Number)
	case o.Ident != nil:
		if r.isField != nil && r.isField(*o.Ident) {
			r.sb.WriteString("n->")
		}
		r.sb.WriteString(*o.Ident)
	case o.Group != nil:
		r.sb.WriteString("(")
		r.expression(o.Group)
		r.sb.WriteString(")")
	}
}

func (u *Unary) isBareOperand() bool {
	if u.Not != nil {
		return true
	}
	c := u.Comparison
	return c.Right == nil && !c.Left.Negative
}

// Identifiers returns the distinct identifiers used by expr, sorted.
func Identifiers(expr *Expression) []string {
	seen := make(map[string]struct{})
	var walkExpr func(e *Expression)
	walkOperand := func(o *Operand) {
		switch {
		case o.Ident != nil:
			seen[*o.Ident] = struct{}{}
		case o.Group != nil:
			walkExpr(o.Group)
		}
	}
	var walkUnary func(u *Unary)
	walkUnary = func(u *Unary) {
		if u.Not != nil {
			walkUnary(u.Not)
			return
		}
		walkOperand(u.Comparison.Left)
		if u.Comparison.Right != nil {
			walkOperand(u.Comparison.Right)
		}
	}
	walkExpr = func(e *Expression) {
		for _, c := range append([]*Conjunction{e.Left}, e.Right...) {
			for _, u := range append([]*Unary{c.Left}, c.Right...) {
				walkUnary(u)
			}
		}
	}
	walkExpr(expr)

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
