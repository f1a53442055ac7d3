// Package codegen renders a parsed mapper into a C header and source file
// that execute its statements through MySQL prepared statements.
package codegen

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/yobatis-go/yobatis/internal/cruntime"
	"github.com/yobatis-go/yobatis/internal/debug"
	"github.com/yobatis-go/yobatis/internal/mapper"
)

// Output is the rendered header and source of one mapper.
type Output struct {
	Namespace  string
	Document   string
	HeaderName string
	SourceName string
	Header     []byte
	Source     []byte
	// Records lists the emitted record types in emission order.
	Records []string
	// Functions lists the emitted statement functions by kind.
	Functions map[mapper.StatementKind][]string
}

// Compile renders m. Nothing is written; the caller decides where the
// output goes once the whole document compiled.
func Compile(m *mapper.Mapper) (*Output, error) {
	debug.Debug("Compiling mapper", "document", m.Document, "namespace", m.Namespace)

	if !isIdent(m.Namespace) {
		return nil, mapper.NewMalformedError(m.Document, "mapper", m.Namespace, "namespace is not a C identifier")
	}

	out := &Output{
		Namespace:  m.Namespace,
		Document:   m.Document,
		HeaderName: HeaderFile(m.Namespace),
		SourceName: SourceFile(m.Namespace),
		Functions:  make(map[mapper.StatementKind][]string),
	}

	h := &cWriter{}
	c := &cWriter{}
	guard := Guard(m.Namespace)

	h.line("#ifndef %s", guard)
	h.line("#define %s", guard)
	h.line("")
	h.line("#include \"%s\"", cruntime.HeaderName)
	h.line("")

	c.line("#include \"%s\"", out.HeaderName)
	c.line("")
	c.line("#include <stdlib.h>")
	c.line("#include <string.h>")
	c.line("")
	c.line("#include \"%s\"", cruntime.HeaderName)
	c.line("")

	for _, rm := range m.ResultMaps.Values() {
		if err := writeRecord(h, c, m, rm); err != nil {
			return nil, err
		}
		out.Records = append(out.Records, rm.Type)
	}

	for _, kind := range mapper.StatementKinds {
		for _, st := range m.Statements(kind).Values() {
			if err := writeStatement(h, c, m, st); err != nil {
				return nil, err
			}
			out.Functions[kind] = append(out.Functions[kind], st.ID)
		}
	}

	h.line("")
	h.line("#endif // %s", guard)

	out.Header = h.bytes()
	out.Source = c.bytes()

	debug.Debug("Mapper compiled",
		"namespace", m.Namespace,
		"records", len(out.Records),
		"statements", m.StatementCount())

	return out, nil
}

// Write stores the header and source in dir.
func (o *Output) Write(fs afero.Fs, dir string) error {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	files := []struct {
		name string
		data []byte
	}{
		{o.HeaderName, o.Header},
		{o.SourceName, o.Source},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := afero.WriteFile(fs, path, f.data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// FunctionCount returns the number of emitted statement functions.
func (o *Output) FunctionCount() int {
	n := 0
	for _, ids := range o.Functions {
		n += len(ids)
	}
	return n
}
