// Package mapper holds the in-memory model of a mapper document and the
// parser that builds it.
package mapper

import "fmt"

// FieldKind is the scalar kind of a record field.
type FieldKind int

const (
	// KindUnknown is any declared type outside the three supported scalars.
	KindUnknown FieldKind = iota
	// KindInteger maps to int64_t.
	KindInteger
	// KindFloatingPoint maps to double.
	KindFloatingPoint
	// KindText maps to yb_string_t.
	KindText
)

// ParseFieldKind maps a declared C type to its kind.
func ParseFieldKind(yoType string) FieldKind {
	switch yoType {
	case "int64_t":
		return KindInteger
	case "double":
		return KindFloatingPoint
	case "yb_string_t":
		return KindText
	default:
		return KindUnknown
	}
}

func (k FieldKind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindFloatingPoint:
		return "FloatingPoint"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// CType returns the C type used for the kind.
func (k FieldKind) CType() string {
	switch k {
	case KindInteger:
		return "int64_t"
	case KindFloatingPoint:
		return "double"
	case KindText:
		return "yb_string_t"
	default:
		return ""
	}
}

// NullSentinel returns the runtime macro that marks an unset field.
func (k FieldKind) NullSentinel() string {
	switch k {
	case KindInteger:
		return "YB_INT_NULL"
	case KindFloatingPoint:
		return "YB_FLOAT_NULL"
	case KindText:
		return "YB_STRING_NULL"
	default:
		return ""
	}
}

// Field is one column-to-property mapping of a result map.
type Field struct {
	Column   string
	Property string
	// YoType is the type exactly as declared in the document.
	YoType string
	Kind   FieldKind
}

// ResultMap is a record shape used for statement input and row output.
type ResultMap struct {
	ID     string
	Type   string
	Fields []Field
}

// Field looks up a field by property name.
func (r *ResultMap) Field(property string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Property == property {
			return f, true
		}
	}
	return Field{}, false
}

// Node is one element of a dynamic SQL body.
type Node interface {
	node()
}

// Text is literal SQL.
type Text struct {
	Value string
}

// Include inlines the text of a named fragment.
type Include struct {
	RefID string
}

// Conditional renders Content only when Test holds for the input record.
type Conditional struct {
	Test    string
	Content []Node
}

// Trim renders Content, strips one override token from each end and wraps
// the rest in Prefix and Suffix.
type Trim struct {
	Prefix          string
	Suffix          string
	PrefixOverrides string
	SuffixOverrides string
	Content         []Node
}

func (Text) node()        {}
func (Include) node()     {}
func (Conditional) node() {}
func (Trim) node()        {}

// Fragment is a reusable piece of SQL text.
type Fragment struct {
	ID   string
	Text string
}

// StatementKind identifies the SQL verb of a statement.
type StatementKind int

const (
	Insert StatementKind = iota
	Update
	Select
	Delete
)

// StatementKinds lists the kinds in emission order.
var StatementKinds = []StatementKind{Insert, Update, Select, Delete}

func (k StatementKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Select:
		return "select"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("StatementKind(%d)", int(k))
	}
}

// Statement is one parameterized SQL statement.
type Statement struct {
	Kind          StatementKind
	ID            string
	ParameterType string
	// ResultMap is the id of the row shape; set for selects only.
	ResultMap string
	Body      []Node
}

// Mapper is one compiled document.
type Mapper struct {
	Namespace string
	// Document is the name the mapper was parsed from, used in errors.
	Document   string
	ResultMaps *Table[*ResultMap]
	Fragments  *Table[*Fragment]

	resultTypes map[string]*ResultMap
	statements  map[StatementKind]*Table[*Statement]
}

// New creates an empty mapper for namespace.
func New(namespace, document string) *Mapper {
	m := &Mapper{
		Namespace:   namespace,
		Document:    document,
		ResultMaps:  NewTable[*ResultMap](),
		Fragments:   NewTable[*Fragment](),
		resultTypes: make(map[string]*ResultMap),
		statements:  make(map[StatementKind]*Table[*Statement]),
	}
	for _, k := range StatementKinds {
		m.statements[k] = NewTable[*Statement]()
	}
	return m
}

// AddResultMap registers rm under both its id and its type.
func (m *Mapper) AddResultMap(rm *ResultMap) error {
	if _, ok := m.resultTypes[rm.Type]; ok {
		return NewMalformedError(m.Document, "resultMap", rm.ID, fmt.Sprintf("type %q is already mapped", rm.Type))
	}
	if !m.ResultMaps.Add(rm.ID, rm) {
		return NewDuplicateError(m.Document, "resultMap", rm.ID)
	}
	m.resultTypes[rm.Type] = rm
	return nil
}

// AddFragment registers a sql fragment.
func (m *Mapper) AddFragment(f *Fragment) error {
	if !m.Fragments.Add(f.ID, f) {
		return NewDuplicateError(m.Document, "sql", f.ID)
	}
	return nil
}

// AddStatement registers st in the table for its kind. Ids are unique across
// kinds since each statement becomes a C function.
func (m *Mapper) AddStatement(st *Statement) error {
	if _, ok := m.FindStatement(st.ID); ok {
		return NewDuplicateError(m.Document, st.Kind.String(), st.ID)
	}
	if !m.statements[st.Kind].Add(st.ID, st) {
		return NewDuplicateError(m.Document, st.Kind.String(), st.ID)
	}
	return nil
}

// Statements returns the table holding statements of kind.
func (m *Mapper) Statements(kind StatementKind) *Table[*Statement] {
	return m.statements[kind]
}

// ResultMapByType finds a result map by its declared type name.
func (m *Mapper) ResultMapByType(typeName string) (*ResultMap, bool) {
	rm, ok := m.resultTypes[typeName]
	return rm, ok
}

// ParameterShape resolves the parameterType of st.
func (m *Mapper) ParameterShape(st *Statement) (*ResultMap, error) {
	rm, ok := m.ResultMapByType(st.ParameterType)
	if !ok {
		return nil, NewReferenceError(m.Document, st.Kind.String(), st.ID,
			fmt.Sprintf("parameterType %q names no resultMap type", st.ParameterType))
	}
	return rm, nil
}

// RowShape resolves the resultMap of a select.
func (m *Mapper) RowShape(st *Statement) (*ResultMap, error) {
	rm, ok := m.ResultMaps.Get(st.ResultMap)
	if !ok {
		return nil, NewReferenceError(m.Document, st.Kind.String(), st.ID,
			fmt.Sprintf("resultMap %q is not defined", st.ResultMap))
	}
	return rm, nil
}

// FragmentText resolves an include inside statement st.
func (m *Mapper) FragmentText(st *Statement, refID string) (string, error) {
	f, ok := m.Fragments.Get(refID)
	if !ok {
		return "", NewReferenceError(m.Document, st.Kind.String(), st.ID,
			fmt.Sprintf("include refid %q is not defined", refID))
	}
	return f.Text, nil
}

// StatementCount returns the number of statements across all kinds.
func (m *Mapper) StatementCount() int {
	n := 0
	for _, t := range m.statements {
		n += t.Len()
	}
	return n
}

// FindStatement looks a statement up by id across all kinds.
func (m *Mapper) FindStatement(id string) (*Statement, bool) {
	for _, k := range StatementKinds {
		if st, ok := m.statements[k].Get(id); ok {
			return st, true
		}
	}
	return nil, false
}
