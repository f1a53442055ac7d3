package codegen

import (
	"fmt"
	"strings"

	"github.com/yobatis-go/yobatis/internal/mapper"
)

// placeholderSlots checks every placeholder that can reach the final SQL
// text of the statement and returns how many occurrences there are. A "#"
// that can end one piece of text while the next piece can start with "{"
// would form a placeholder only at run time, so it is rejected.
func (r *statementRenderer) placeholderSlots() (int, error) {
	count := 0

	check := func(text string) error {
		names, ok := mapper.Placeholders(text)
		if !ok {
			return mapper.NewMalformedError(r.m.Document, r.st.Kind.String(), r.st.ID,
				fmt.Sprintf("unterminated placeholder in %s", cString(text)))
		}
		for _, name := range names {
			if _, found := r.shape.Field(name); !found {
				return mapper.NewReferenceError(r.m.Document, r.st.Kind.String(), r.st.ID,
					fmt.Sprintf("placeholder #{%s} names no field of %s", name, r.shape.Type))
			}
		}
		count += len(names)
		return nil
	}

	// piece checks one literal and reports whether the output may now end
	// in a dangling "#".
	piece := func(text string, hash bool, strip stripping) (bool, error) {
		if text == "" {
			return hash, nil
		}
		if hash && strip.startsBrace(text) {
			return false, mapper.NewMalformedError(r.m.Document, r.st.Kind.String(), r.st.ID,
				fmt.Sprintf("placeholder split across elements before %s", cString(text)))
		}
		if err := check(text); err != nil {
			return false, err
		}
		return strip.endsHash(text), nil
	}

	var walk func(nodes []mapper.Node, hash bool, strip stripping) (bool, error)
	walk = func(nodes []mapper.Node, hash bool, strip stripping) (bool, error) {
		for _, node := range nodes {
			var err error
			switch n := node.(type) {
			case mapper.Text:
				hash, err = piece(n.Value, hash, strip)
			case mapper.Include:
				var text string
				if text, err = r.m.FragmentText(r.st, n.RefID); err == nil {
					hash, err = piece(text, hash, strip)
				}
			case mapper.Conditional:
				var taken bool
				taken, err = walk(n.Content, hash, strip)
				hash = hash || taken
			case mapper.Trim:
				inner := strip.with(n.PrefixOverrides, n.SuffixOverrides)
				if hash, err = piece(n.Prefix, hash, strip); err == nil {
					if hash, err = walk(n.Content, hash, inner); err == nil {
						hash, err = piece(n.Suffix, hash, strip)
					}
				}
			}
			if err != nil {
				return false, err
			}
		}
		return hash, nil
	}

	if _, err := walk(r.st.Body, false, stripping{}); err != nil {
		return 0, err
	}
	return count, nil
}

// cSpace matches the characters isspace accepts in the C locale.
const cSpace = " \t\n\v\f\r"

// stripping describes what an enclosing trim may remove from the ends of
// its content, so a "#" or "{" hidden behind whitespace or an override
// token still counts as adjacent.
type stripping struct {
	active   bool
	prefixes []string
	suffixes []string
}

func (s stripping) with(prefixOverrides, suffixOverrides string) stripping {
	return stripping{
		active:   true,
		prefixes: append(append([]string(nil), s.prefixes...), splitTokens(prefixOverrides)...),
		suffixes: append(append([]string(nil), s.suffixes...), splitTokens(suffixOverrides)...),
	}
}

func (s stripping) startsBrace(text string) bool {
	if strings.HasPrefix(text, "{") {
		return true
	}
	if !s.active {
		return false
	}
	t := strings.TrimLeft(text, cSpace)
	if strings.HasPrefix(t, "{") {
		return true
	}
	for _, tok := range s.prefixes {
		if strings.HasPrefix(t, tok) && strings.HasPrefix(t[len(tok):], "{") {
			return true
		}
	}
	return false
}

func (s stripping) endsHash(text string) bool {
	if strings.HasSuffix(text, "#") {
		return true
	}
	if !s.active {
		return false
	}
	t := strings.TrimRight(text, cSpace)
	if strings.HasSuffix(t, "#") {
		return true
	}
	for _, tok := range s.suffixes {
		if strings.HasSuffix(t, tok) && strings.HasSuffix(t[:len(t)-len(tok)], "#") {
			return true
		}
	}
	return false
}

func splitTokens(tokens string) []string {
	var out []string
	for _, tok := range strings.Split(tokens, "|") {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// writeBindPass emits the loop that rewrites each #{name} in cmd to ? in
// prepare_sql and fills bind[] from the matching field of n.
func (r *statementRenderer) writeBindPass(slots int) error {
	w := r.w

	w.open("for (int64_t i = 0; i + 1 < yb_string_length(cmd); ++i) {")
	w.line("const char* data = yb_string_data(cmd);")
	w.open("if (data[i] != '#' || data[i + 1] != '{') {")
	w.line("continue;")
	w.close("}")
	w.line("int64_t end = i + 2;")
	w.open("while (end < yb_string_length(cmd) && data[end] != '}') {")
	w.line("++end;")
	w.close("}")
	w.open("if (end >= yb_string_length(cmd)) {")
	w.line("break;")
	w.close("}")
	w.line("yb_string_append_data(prepare_sql, data + pre, i - pre);")
	w.line("yb_string_append_c_str(prepare_sql, \"?\");")
	w.line("const char* name = data + i + 2;")
	w.line("int64_t name_len = end - i - 2;")
	w.open("if (bind_num >= %d) {", slots)
	w.line("goto done;")
	w.close("}")

	for i, f := range r.shape.Fields {
		cond := fmt.Sprintf("name_len == %d && memcmp(name, %s, %d) == 0", len(f.Property), cString(f.Property), len(f.Property))
		if i == 0 {
			w.open("if (%s) {", cond)
		} else {
			w.close("} else if (%s) {", cond)
			w.indent++
		}
		if err := r.writeBindField(f); err != nil {
			return err
		}
	}
	if len(r.shape.Fields) > 0 {
		w.close("} else {")
		w.indent++
		w.line("goto done;")
		w.close("}")
	} else {
		w.line("goto done;")
	}

	w.line("++bind_num;")
	w.line("pre = end + 1;")
	w.line("i = end;")
	w.close("}")
	w.line("yb_string_append_data(prepare_sql, yb_string_data(cmd) + pre, yb_string_length(cmd) - pre);")

	return nil
}

// writeBindField binds one field, or SQL NULL when it holds its sentinel.
func (r *statementRenderer) writeBindField(f mapper.Field) error {
	w := r.w

	var bufferType string
	switch f.Kind {
	case mapper.KindInteger:
		bufferType = "MYSQL_TYPE_LONGLONG"
	case mapper.KindFloatingPoint:
		bufferType = "MYSQL_TYPE_DOUBLE"
	case mapper.KindText:
		bufferType = "MYSQL_TYPE_STRING"
	default:
		return mapper.NewUnsupportedTypeError(r.m.Document, r.st.Kind.String(), r.st.ID, f.YoType)
	}

	w.open("if (n->%s == %s) {", f.Property, f.Kind.NullSentinel())
	w.line("bind[bind_num].buffer_type = MYSQL_TYPE_NULL;")
	w.close("} else {")
	w.indent++
	w.line("bind[bind_num].buffer_type = %s;", bufferType)
	if f.Kind == mapper.KindText {
		w.line("bind[bind_num].buffer = (void*)yb_string_data(n->%s);", f.Property)
		w.line("bind[bind_num].buffer_length = (unsigned long)yb_string_length(n->%s);", f.Property)
	} else {
		w.line("bind[bind_num].buffer = &n->%s;", f.Property)
	}
	w.close("}")

	return nil
}
