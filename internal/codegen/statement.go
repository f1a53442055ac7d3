package codegen

import (
	"fmt"

	"github.com/yobatis-go/yobatis/internal/debug"
	"github.com/yobatis-go/yobatis/internal/mapper"
	"github.com/yobatis-go/yobatis/internal/predicate"
)

// statementRenderer emits the C that assembles the SQL text of one statement.
type statementRenderer struct {
	m     *mapper.Mapper
	st    *mapper.Statement
	shape *mapper.ResultMap
	w     *cWriter
	tmp   int
}

func (r *statementRenderer) temp() string {
	name := fmt.Sprintf("tmp_%d", r.tmp)
	r.tmp++
	return name
}

// nodes appends the rendering of each node to the buffer named dest.
func (r *statementRenderer) nodes(nodes []mapper.Node, dest string) error {
	for _, node := range nodes {
		switch n := node.(type) {
		case mapper.Text:
			r.w.line("yb_string_append_c_str(%s, %s);", dest, cString(n.Value))

		case mapper.Include:
			text, err := r.m.FragmentText(r.st, n.RefID)
			if err != nil {
				return err
			}
			r.w.line("yb_string_append_c_str(%s, %s);", dest, cString(text))

		case mapper.Conditional:
			tmp := r.temp()
			r.w.open("if (%s) {", r.condition(n.Test))
			r.w.line("yb_string_t %s = yb_string_new();", tmp)
			if err := r.nodes(n.Content, tmp); err != nil {
				return err
			}
			r.w.line("yb_string_append(%s, %s);", dest, tmp)
			r.w.line("yb_string_free(%s);", tmp)
			r.w.close("}")

		case mapper.Trim:
			src := r.temp()
			out := r.temp()
			r.w.open("{")
			r.w.line("yb_string_t %s = yb_string_new();", src)
			r.w.line("yb_string_t %s = yb_string_new();", out)
			if err := r.nodes(n.Content, src); err != nil {
				return err
			}
			r.w.line("yb_string_trim(%s, %s, %s, %s, %s, %s);", src,
				cString(n.Prefix), cString(n.Suffix),
				cString(n.PrefixOverrides), cString(n.SuffixOverrides), out)
			r.w.line("yb_string_append(%s, %s);", dest, out)
			r.w.line("yb_string_free(%s);", out)
			r.w.line("yb_string_free(%s);", src)
			r.w.close("}")
		}
	}
	return nil
}

// condition renders an <if> test. Tests outside the expression grammar fall
// back to a plain member access.
func (r *statementRenderer) condition(test string) string {
	expr, err := predicate.Parse(test)
	if err != nil {
		debug.Warn("test expression not understood, emitting it as a member access",
			"document", r.m.Document, "statement", r.st.ID, "test", test, "error", err)
		return predicate.LegacyC(test)
	}

	isField := func(name string) bool {
		_, ok := r.shape.Field(name)
		return ok
	}
	for _, id := range predicate.Identifiers(expr) {
		if _, known := predicate.Constants[id]; !known && !isField(id) {
			debug.Warn("test references a name that is neither a field nor a runtime constant",
				"document", r.m.Document, "statement", r.st.ID, "name", id)
		}
	}
	return predicate.RenderC(expr, isField)
}
