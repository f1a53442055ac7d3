package codegen

import (
	"github.com/yobatis-go/yobatis/internal/mapper"
)

// writeRecord emits the struct, typedef, constructor and destructor for rm.
func writeRecord(h, c *cWriter, m *mapper.Mapper, rm *mapper.ResultMap) error {
	if !isIdent(rm.Type) {
		return mapper.NewMalformedError(m.Document, "resultMap", rm.ID, "type "+rm.Type+" is not a C identifier")
	}
	for _, f := range rm.Fields {
		if !isIdent(f.Property) {
			return mapper.NewMalformedError(m.Document, "resultMap", rm.ID, "property "+f.Property+" is not a C identifier")
		}
		if f.Kind == mapper.KindUnknown {
			return mapper.NewUnsupportedTypeError(m.Document, "resultMap", rm.ID, f.YoType)
		}
	}

	t := rm.Type

	h.open("struct %s_s {", t)
	for _, f := range rm.Fields {
		h.line("%s %s;", f.Kind.CType(), f.Property)
	}
	h.close("};")
	h.line("typedef struct %s_s* %s;", t, t)
	h.line("%s %s_new(void);", t, t)
	h.line("void %s_free(%s n);", t, t)
	h.line("")

	c.open("%s %s_new(void) {", t, t)
	c.line("%s n = (%s)malloc(sizeof(struct %s_s));", t, t, t)
	c.open("if (n == NULL) {")
	c.line("return NULL;")
	c.close("}")
	for _, f := range rm.Fields {
		c.line("n->%s = %s;", f.Property, f.Kind.NullSentinel())
	}
	c.line("return n;")
	c.close("}")
	c.line("")

	c.open("void %s_free(%s n) {", t, t)
	c.open("if (n == NULL) {")
	c.line("return;")
	c.close("}")
	for _, f := range rm.Fields {
		if f.Kind != mapper.KindText {
			continue
		}
		c.open("if (n->%s != YB_STRING_NULL) {", f.Property)
		c.line("yb_string_free(n->%s);", f.Property)
		c.close("}")
	}
	c.line("free(n);")
	c.close("}")
	c.line("")

	return nil
}
