// Package dynsql evaluates mapper statements in Go with the same semantics
// as the generated C: it builds the final SQL text for a record, then turns
// placeholders into positional bind slots.
package dynsql

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yobatis-go/yobatis/internal/mapper"
	"github.com/yobatis-go/yobatis/internal/predicate"
)

// Record holds field values keyed by property name.
type Record map[string]predicate.Value

// NewRecord returns a record with every field of shape set to its null
// sentinel, like the generated constructor.
func NewRecord(shape *mapper.ResultMap) Record {
	r := make(Record, len(shape.Fields))
	for _, f := range shape.Fields {
		r[f.Property] = nullValue(f.Kind)
	}
	return r
}

func nullValue(kind mapper.FieldKind) predicate.Value {
	switch kind {
	case mapper.KindInteger:
		return predicate.Int(math.MinInt64)
	case mapper.KindFloatingPoint:
		return predicate.Float(predicate.DBLMin)
	default:
		return predicate.NullText()
	}
}

// Set parses raw according to the kind of field property and stores it.
// The literal "null" stores the sentinel.
func (r Record) Set(shape *mapper.ResultMap, property, raw string) error {
	f, ok := shape.Field(property)
	if !ok {
		return fmt.Errorf("%s has no field %q: %w", shape.Type, property, mapper.ErrReference)
	}
	if raw == "null" {
		r[property] = nullValue(f.Kind)
		return nil
	}
	switch f.Kind {
	case mapper.KindInteger:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("field %s: %q is not an integer: %w", property, raw, err)
		}
		r[property] = predicate.Int(v)
	case mapper.KindFloatingPoint:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("field %s: %q is not a number: %w", property, raw, err)
		}
		r[property] = predicate.Float(v)
	case mapper.KindText:
		r[property] = predicate.String(raw)
	default:
		return fmt.Errorf("field %s: %w", property, mapper.ErrUnsupportedType)
	}
	return nil
}

func (r Record) env(name string) (predicate.Value, bool) {
	v, ok := r[name]
	return v, ok
}

// Binding is one positional parameter of a prepared statement.
type Binding struct {
	Position int
	Field    mapper.Field
	Value    predicate.Value
}

// IsNull reports whether the parameter is sent as SQL NULL.
func (b Binding) IsNull() bool {
	return b.Value.IsNull()
}

// MySQLType returns the MYSQL_TYPE_* constant the generated code binds.
func (b Binding) MySQLType() string {
	if b.IsNull() {
		return "MYSQL_TYPE_NULL"
	}
	switch b.Field.Kind {
	case mapper.KindInteger:
		return "MYSQL_TYPE_LONGLONG"
	case mapper.KindFloatingPoint:
		return "MYSQL_TYPE_DOUBLE"
	default:
		return "MYSQL_TYPE_STRING"
	}
}

// Display renders the bound value for humans.
func (b Binding) Display() string {
	if b.IsNull() {
		return "NULL"
	}
	switch b.Value.Kind {
	case predicate.IntValue:
		return strconv.FormatInt(b.Value.Int, 10)
	case predicate.FloatValue:
		return strconv.FormatFloat(b.Value.Float, 'g', -1, 64)
	default:
		return strconv.Quote(*b.Value.Text)
	}
}

// Result is the outcome of evaluating a statement.
type Result struct {
	// SQL is the text after conditionals, includes and trims.
	SQL string
	// Prepared is SQL with every placeholder replaced by ?.
	Prepared string
	Bindings []Binding
}

// Evaluate renders st for rec and prepares the result.
func Evaluate(m *mapper.Mapper, st *mapper.Statement, rec Record) (*Result, error) {
	shape, err := m.ParameterShape(st)
	if err != nil {
		return nil, err
	}
	sql, err := Render(m, st, rec)
	if err != nil {
		return nil, err
	}
	prepared, bindings, err := Prepare(sql, shape, rec)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", st.Kind, st.ID, err)
	}
	return &Result{SQL: sql, Prepared: prepared, Bindings: bindings}, nil
}

// Render builds the final SQL text of st for rec.
func Render(m *mapper.Mapper, st *mapper.Statement, rec Record) (string, error) {
	shape, err := m.ParameterShape(st)
	if err != nil {
		return "", err
	}
	r := &renderer{m: m, st: st, shape: shape, rec: rec}
	var sb strings.Builder
	if err := r.nodes(st.Body, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

type renderer struct {
	m     *mapper.Mapper
	st    *mapper.Statement
	shape *mapper.ResultMap
	rec   Record
}

func (r *renderer) nodes(nodes []mapper.Node, sb *strings.Builder) error {
	for _, node := range nodes {
		switch n := node.(type) {
		case mapper.Text:
			sb.WriteString(n.Value)
		case mapper.Include:
			text, err := r.m.FragmentText(r.st, n.RefID)
			if err != nil {
				return err
			}
			sb.WriteString(text)
		case mapper.Conditional:
			ok, err := r.test(n.Test)
			if err != nil {
				return err
			}
			if ok {
				if err := r.nodes(n.Content, sb); err != nil {
					return err
				}
			}
		case mapper.Trim:
			var inner strings.Builder
			if err := r.nodes(n.Content, &inner); err != nil {
				return err
			}
			sb.WriteString(Trim(inner.String(), n.Prefix, n.Suffix, n.PrefixOverrides, n.SuffixOverrides))
		}
	}
	return nil
}

// test evaluates an <if> test. Tests outside the predicate grammar are
// pasted into the generated C verbatim and cannot be evaluated here.
func (r *renderer) test(test string) (bool, error) {
	expr, err := predicate.Parse(test)
	if err != nil {
		return false, fmt.Errorf("%s %s: test %q cannot be evaluated: %w", r.st.Kind, r.st.ID, test, err)
	}
	ok, err := predicate.Eval(expr, r.rec.env)
	if err != nil {
		return false, fmt.Errorf("%s %s: test %q: %w", r.st.Kind, r.st.ID, test, err)
	}
	return ok, nil
}

// cSpace matches the characters isspace accepts in the C locale.
const cSpace = " \t\n\v\f\r"

// Trim drops surrounding whitespace from content, removes the first
// matching '|'-separated token of prefixOverrides from the start and of
// suffixOverrides from the end, then wraps the rest in prefix and suffix.
func Trim(content, prefix, suffix, prefixOverrides, suffixOverrides string) string {
	s := strings.Trim(content, cSpace)
	if tok := firstToken(prefixOverrides, func(t string) bool { return strings.HasPrefix(s, t) }); tok != "" {
		s = s[len(tok):]
	}
	if tok := firstToken(suffixOverrides, func(t string) bool { return strings.HasSuffix(s, t) }); tok != "" {
		s = s[:len(s)-len(tok)]
	}
	return prefix + s + suffix
}

func firstToken(tokens string, match func(string) bool) string {
	if tokens == "" {
		return ""
	}
	for _, tok := range strings.Split(tokens, "|") {
		if tok != "" && match(tok) {
			return tok
		}
	}
	return ""
}

// Prepare replaces each #{name} in sql with ? and returns one binding per
// occurrence, in order. An unterminated "#{" is kept verbatim.
func Prepare(sql string, shape *mapper.ResultMap, rec Record) (string, []Binding, error) {
	var sb strings.Builder
	var bindings []Binding
	pre := 0
	for i := 0; i+1 < len(sql); i++ {
		if sql[i] != '#' || sql[i+1] != '{' {
			continue
		}
		end := strings.IndexByte(sql[i+2:], '}')
		if end < 0 {
			break
		}
		end += i + 2
		name := sql[i+2 : end]

		f, ok := shape.Field(name)
		if !ok {
			return "", nil, fmt.Errorf("placeholder #{%s}: %w", name, mapper.ErrReference)
		}
		v, ok := rec[name]
		if !ok {
			v = nullValue(f.Kind)
		}

		sb.WriteString(sql[pre:i])
		sb.WriteByte('?')
		bindings = append(bindings, Binding{Position: len(bindings), Field: f, Value: v})
		pre = end + 1
		i = end
	}
	sb.WriteString(sql[pre:])
	return sb.String(), bindings, nil
}
