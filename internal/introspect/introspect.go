// Package introspect reads table definitions from a MySQL database so that
// mapper documents can be scaffolded from them.
package introspect

import (
	"context"
	"regexp"
	"strings"

	"github.com/yobatis-go/yobatis/internal/mapper"
)

// Introspector reads a database description.
type Introspector interface {
	Introspect(ctx context.Context) (*Database, error)
}

// Database describes one database and its tables.
type Database struct {
	Name string
	// Create is the database DDL, rewritten to CREATE DATABASE IF NOT EXISTS.
	Create string
	Tables []Table
}

// Table describes one table.
type Table struct {
	Name    string
	Columns []Column
	// Create is the table DDL, rewritten to CREATE TABLE IF NOT EXISTS.
	Create string
}

// PrimaryKeys returns the primary key columns in column order.
func (t Table) PrimaryKeys() []Column {
	var keys []Column
	for _, c := range t.Columns {
		if c.PrimaryKey {
			keys = append(keys, c)
		}
	}
	return keys
}

// Column describes one column as reported by SHOW FULL COLUMNS.
type Column struct {
	Name       string
	Type       string
	Kind       mapper.FieldKind
	Nullable   bool
	Default    *string
	Comment    string
	PrimaryKey bool
}

var (
	integerType = regexp.MustCompile(`int|bit`)
	floatType   = regexp.MustCompile(`float|dec|numeric|double`)
)

// ClassifyType maps a MySQL column type to one of the three field kinds.
// Every type that is neither integral nor floating point is text.
func ClassifyType(columnType string) mapper.FieldKind {
	t := strings.ToLower(columnType)
	switch {
	case integerType.MatchString(t):
		return mapper.KindInteger
	case floatType.MatchString(t):
		return mapper.KindFloatingPoint
	default:
		return mapper.KindText
	}
}

// quoteIdent quotes a MySQL identifier with backticks.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// ifNotExists rewrites the first "CREATE <object>" of ddl to
// "CREATE <object> IF NOT EXISTS".
func ifNotExists(ddl, object string) string {
	create := "CREATE " + object
	if strings.Contains(ddl, create+" IF NOT EXISTS") {
		return ddl
	}
	return strings.Replace(ddl, create, create+" IF NOT EXISTS", 1)
}
