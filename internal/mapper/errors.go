package mapper

import (
	"errors"
	"fmt"
)

var (
	// ErrReference marks an include, parameterType, resultMap or placeholder
	// name that does not resolve.
	ErrReference = errors.New("unresolved reference")
	// ErrUnsupportedType marks a field kind outside int64_t, double and yb_string_t.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrMalformed marks a document that cannot be turned into a mapper.
	ErrMalformed = errors.New("malformed mapper document")
)

// CompileError describes a fatal problem in one mapper document.
type CompileError struct {
	Kind     error
	Document string
	Element  string
	Name     string
	Message  string
}

func (e *CompileError) Error() string {
	loc := e.Element
	if e.Name != "" {
		loc = fmt.Sprintf("%s %q", e.Element, e.Name)
	}
	if e.Document != "" {
		loc = e.Document + ": " + loc
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Message, e.Kind)
}

func (e *CompileError) Unwrap() error {
	return e.Kind
}

// NewReferenceError reports that name, used by element, does not resolve.
func NewReferenceError(document, element, name, message string) *CompileError {
	return &CompileError{Kind: ErrReference, Document: document, Element: element, Name: name, Message: message}
}

// NewUnsupportedTypeError reports a field whose declared type has no C mapping.
func NewUnsupportedTypeError(document, element, name, yoType string) *CompileError {
	return &CompileError{
		Kind:     ErrUnsupportedType,
		Document: document,
		Element:  element,
		Name:     name,
		Message:  fmt.Sprintf("type %q is not one of int64_t, double, yb_string_t", yoType),
	}
}

// NewMalformedError reports a structural problem in the document.
func NewMalformedError(document, element, name, message string) *CompileError {
	return &CompileError{Kind: ErrMalformed, Document: document, Element: element, Name: name, Message: message}
}

// NewMissingAttributeError reports a required attribute that is absent.
func NewMissingAttributeError(document, element, name, attr string) *CompileError {
	return NewMalformedError(document, element, name, fmt.Sprintf("attribute %q is required", attr))
}

// NewDuplicateError reports a key defined twice in the same table.
func NewDuplicateError(document, element, name string) *CompileError {
	return NewMalformedError(document, element, name, "defined more than once")
}
