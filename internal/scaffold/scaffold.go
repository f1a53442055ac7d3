// Package scaffold writes the initial mapper documents for an introspected
// database: db.xml with the database DDL and one <table>-mapper.xml per
// table with the usual insert, update, select and delete statements.
package scaffold

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"github.com/spf13/afero"

	"github.com/yobatis-go/yobatis/internal/debug"
	"github.com/yobatis-go/yobatis/internal/introspect"
)

const (
	// DatabaseFile is the name of the database description document.
	DatabaseFile = "db.xml"

	baseResultMap  = "BaseResultMap"
	baseColumnList = "base_column_list"
	indentUnit     = "    "
)

var nonIdent = regexp.MustCompile(`[^0-9a-zA-Z_]`)

// Normalize turns a table or column name into a C identifier.
func Normalize(name string) string {
	n := nonIdent.ReplaceAllString(name, "_")
	if n == "" || (n[0] >= '0' && n[0] <= '9') {
		n = "_" + n
	}
	return n
}

// MapperFile returns the document name scaffolded for table.
func MapperFile(table string) string {
	return Normalize(table) + "-mapper.xml"
}

// Generate writes db.xml and one mapper document per table of db into dir
// and returns the written paths.
func Generate(fs afero.Fs, dir string, db *introspect.Database) ([]string, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	write := func(name string, doc *etree.Document) error {
		data, err := doc.WriteToBytes()
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", name, err)
		}
		path := filepath.Join(dir, name)
		if err := afero.WriteFile(fs, path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		debug.Debug("Scaffolded document", "path", path)
		written = append(written, path)
		return nil
	}

	if err := write(DatabaseFile, DatabaseDocument(db)); err != nil {
		return nil, err
	}
	seen := make(map[string]string, len(db.Tables))
	for _, t := range db.Tables {
		name := MapperFile(t.Name)
		if other, ok := seen[name]; ok {
			return nil, fmt.Errorf("tables %q and %q both normalize to %s", other, t.Name, name)
		}
		seen[name] = t.Name
		if err := write(name, MapperDocument(t)); err != nil {
			return nil, err
		}
	}
	return written, nil
}

// DatabaseDocument returns <db><name/><create/></db> for db.
func DatabaseDocument(db *introspect.Database) *etree.Document {
	doc := newDocument()
	root := doc.CreateElement("db")
	child(root, 1, "name").SetText(db.Name)
	child(root, 1, "create").SetText(db.Create)
	root.CreateText("\n")
	doc.CreateText("\n")
	return doc
}

// MapperDocument returns the scaffolded mapper for t.
func MapperDocument(t introspect.Table) *etree.Document {
	b := &builder{
		table:  t,
		norm:   Normalize(t.Name),
		quoted: "`" + strings.ReplaceAll(t.Name, "`", "``") + "`",
	}
	b.recordType = "yb_" + b.norm + "_t"

	doc := newDocument()
	root := doc.CreateElement("mapper")
	root.CreateAttr("namespace", b.norm+"_mapper")

	b.resultMap(root)
	b.columnList(root)
	b.insert(root)
	b.insertSelective(root)
	for _, key := range t.PrimaryKeys() {
		b.updateBy(root, key)
		b.updateBySelective(root, key)
		b.selectBy(root, key)
		b.deleteBy(root, key)
	}

	root.CreateText("\n")
	doc.CreateText("\n")
	return doc
}

func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateText("\n")
	return doc
}

// child appends an element to parent on its own line.
func child(parent *etree.Element, depth int, tag string) *etree.Element {
	parent.CreateText("\n" + strings.Repeat(indentUnit, depth))
	return parent.CreateElement(tag)
}

type builder struct {
	table      introspect.Table
	norm       string
	quoted     string
	recordType string
}

func column(c introspect.Column) string {
	return "`" + strings.ReplaceAll(c.Name, "`", "``") + "`"
}

func placeholder(c introspect.Column) string {
	return "#{" + Normalize(c.Name) + "}"
}

func notNull(c introspect.Column) string {
	return Normalize(c.Name) + " != " + c.Kind.NullSentinel()
}

func (b *builder) statement(root *etree.Element, tag, id string) *etree.Element {
	el := child(root, 1, tag)
	el.CreateAttr("id", b.norm+"_"+id)
	el.CreateAttr("parameterType", b.recordType)
	return el
}

func (b *builder) resultMap(root *etree.Element) {
	rm := child(root, 1, "resultMap")
	rm.CreateAttr("id", baseResultMap)
	rm.CreateAttr("type", b.recordType)
	for _, c := range b.table.Columns {
		r := child(rm, 2, "result")
		r.CreateAttr("column", c.Name)
		r.CreateAttr("property", Normalize(c.Name))
		r.CreateAttr("yo_type", c.Kind.CType())
	}
	rm.CreateText("\n" + indentUnit)
}

func (b *builder) columnList(root *etree.Element) {
	el := child(root, 1, "sql")
	el.CreateAttr("id", baseColumnList)
	el.SetText(b.join(column))
}

// join renders every column with render.
func (b *builder) join(render func(introspect.Column) string) string {
	parts := make([]string, 0, len(b.table.Columns))
	for _, c := range b.table.Columns {
		parts = append(parts, render(c))
	}
	return strings.Join(parts, ", ")
}

func (b *builder) insert(root *etree.Element) {
	el := b.statement(root, "insert", "insert")
	el.SetText(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		b.quoted, b.join(column), b.join(placeholder)))
}

func (b *builder) insertSelective(root *etree.Element) {
	el := b.statement(root, "insert", "insert_selective")
	el.CreateText("INSERT INTO " + b.quoted + " ")

	cols := el.CreateElement("trim")
	cols.CreateAttr("prefix", "(")
	cols.CreateAttr("suffix", ")")
	cols.CreateAttr("suffixOverrides", ",")
	for _, c := range b.table.Columns {
		cond := cols.CreateElement("if")
		cond.CreateAttr("test", notNull(c))
		cond.SetText(column(c) + ",")
	}

	values := el.CreateElement("trim")
	values.CreateAttr("prefix", " VALUES (")
	values.CreateAttr("suffix", ")")
	values.CreateAttr("suffixOverrides", ",")
	for _, c := range b.table.Columns {
		cond := values.CreateElement("if")
		cond.CreateAttr("test", notNull(c))
		cond.SetText(placeholder(c) + ",")
	}
}

func (b *builder) updateBy(root *etree.Element, key introspect.Column) {
	el := b.statement(root, "update", "update_by_"+Normalize(key.Name))
	set := b.join(func(c introspect.Column) string {
		return column(c) + " = " + placeholder(c)
	})
	el.SetText(fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s", b.quoted, set, column(key), placeholder(key)))
}

func (b *builder) updateBySelective(root *etree.Element, key introspect.Column) {
	el := b.statement(root, "update", "update_by_"+Normalize(key.Name)+"_selective")
	el.CreateText("UPDATE " + b.quoted + " ")

	set := el.CreateElement("trim")
	set.CreateAttr("prefix", "SET ")
	set.CreateAttr("suffixOverrides", ",")
	for _, c := range b.table.Columns {
		if c.Name == key.Name {
			continue
		}
		cond := set.CreateElement("if")
		cond.CreateAttr("test", notNull(c))
		cond.SetText(column(c) + " = " + placeholder(c) + ", ")
	}

	el.CreateText(" WHERE " + column(key) + " = " + placeholder(key))
}

func (b *builder) selectBy(root *etree.Element, key introspect.Column) {
	el := b.statement(root, "select", "select_by_"+Normalize(key.Name))
	el.CreateAttr("resultMap", baseResultMap)
	el.CreateText("SELECT ")
	el.CreateElement("include").CreateAttr("refid", baseColumnList)
	el.CreateText(" FROM " + b.quoted + " WHERE " + column(key) + " = " + placeholder(key))
}

func (b *builder) deleteBy(root *etree.Element, key introspect.Column) {
	el := b.statement(root, "delete", "delete_by_"+Normalize(key.Name))
	el.SetText(fmt.Sprintf("DELETE FROM %s WHERE %s = %s", b.quoted, column(key), placeholder(key)))
}
