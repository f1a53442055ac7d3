package codegen

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	upper        = cases.Upper(language.Und)
)

// HeaderFile returns the header file name for a namespace.
func HeaderFile(namespace string) string {
	return "yb_" + namespace + ".h"
}

// SourceFile returns the source file name for a namespace.
func SourceFile(namespace string) string {
	return "yb_" + namespace + ".c"
}

// Guard returns the include guard macro for a namespace.
func Guard(namespace string) string {
	return "YB_" + upper.String(namespace) + "_H__"
}

func isIdent(s string) bool {
	return identPattern.MatchString(s)
}

// cString renders s as a C string literal.
func cString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&sb, `\%03o`, c)
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
