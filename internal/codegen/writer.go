package codegen

import (
	"bytes"
	"fmt"
	"strings"
)

const indentUnit = "    "

// cWriter accumulates C source with four-space indentation.
type cWriter struct {
	buf    bytes.Buffer
	indent int
}

// line writes one indented line. An empty format writes a bare newline.
func (w *cWriter) line(format string, args ...any) {
	if format == "" {
		w.buf.WriteByte('\n')
		return
	}
	w.buf.WriteString(strings.Repeat(indentUnit, w.indent))
	if len(args) > 0 {
		fmt.Fprintf(&w.buf, format, args...)
	} else {
		w.buf.WriteString(format)
	}
	w.buf.WriteByte('\n')
}

// open writes a line and indents what follows.
func (w *cWriter) open(format string, args ...any) {
	w.line(format, args...)
	w.indent++
}

// close dedents and writes a line.
func (w *cWriter) close(format string, args ...any) {
	if w.indent > 0 {
		w.indent--
	}
	w.line(format, args...)
}

// label writes a goto label one level left of the current indentation.
func (w *cWriter) label(name string) {
	w.indent--
	w.line("%s:", name)
	w.indent++
}

func (w *cWriter) bytes() []byte {
	return w.buf.Bytes()
}

func (w *cWriter) String() string {
	return w.buf.String()
}
