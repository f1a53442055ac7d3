package codegen

import (
	"github.com/yobatis-go/yobatis/internal/mapper"
)

// writeStatement emits the declaration and definition of one statement.
// Every function returns YB_OK or YB_FAIL and releases what it allocated on
// both paths.
func writeStatement(h, c *cWriter, m *mapper.Mapper, st *mapper.Statement) error {
	kind := st.Kind.String()
	if !isIdent(st.ID) {
		return mapper.NewMalformedError(m.Document, kind, st.ID, "id is not a C identifier")
	}

	shape, err := m.ParameterShape(st)
	if err != nil {
		return err
	}

	var row *mapper.ResultMap
	signature := "int " + st.ID + "(MYSQL* conn, " + shape.Type + " n"
	if st.Kind == mapper.Select {
		if row, err = m.RowShape(st); err != nil {
			return err
		}
		for _, f := range row.Fields {
			if f.Kind == mapper.KindUnknown {
				return mapper.NewUnsupportedTypeError(m.Document, kind, st.ID, f.YoType)
			}
		}
		signature += ", " + row.Type + " out"
	}
	signature += ")"

	r := &statementRenderer{m: m, st: st, shape: shape, w: c}
	slots, err := r.placeholderSlots()
	if err != nil {
		return err
	}
	if slots == 0 {
		slots = 1
	}

	h.line("%s;", signature)

	c.open("%s {", signature)
	c.line("int ret = YB_FAIL;")
	c.line("MYSQL_STMT* stmt = NULL;")
	c.line("yb_string_t cmd = yb_string_new();")
	c.line("yb_string_t prepare_sql = yb_string_new();")
	c.line("MYSQL_BIND bind[%d];", slots)
	c.line("int bind_num = 0;")
	c.line("int64_t pre = 0;")
	if row != nil {
		cols := len(row.Fields)
		if cols == 0 {
			cols = 1
		}
		c.line("MYSQL_BIND bind_out[%d];", cols)
		c.line("unsigned long out_length[%d];", cols)
		c.line("yb_mysql_bool out_is_null[%d];", cols)
		c.line("int fetch_status;")
	}
	c.line("")
	c.line("memset(bind, 0, sizeof(bind));")
	if row != nil {
		c.line("memset(bind_out, 0, sizeof(bind_out));")
		c.line("memset(out_length, 0, sizeof(out_length));")
		c.line("memset(out_is_null, 0, sizeof(out_is_null));")
		c.open("if (out == NULL) {")
		c.line("goto done;")
		c.close("}")
	}
	c.open("if (n == NULL || cmd == NULL || prepare_sql == NULL) {")
	c.line("goto done;")
	c.close("}")
	c.line("")

	if err := r.nodes(st.Body, "cmd"); err != nil {
		return err
	}
	c.line("")

	if err := r.writeBindPass(slots); err != nil {
		return err
	}
	c.line("")

	c.line("stmt = mysql_stmt_init(conn);")
	c.open("if (stmt == NULL) {")
	c.line("goto done;")
	c.close("}")
	c.open("if (mysql_stmt_prepare(stmt, yb_string_data(prepare_sql), (unsigned long)yb_string_length(prepare_sql)) != 0) {")
	c.line("goto done;")
	c.close("}")
	c.open("if (mysql_stmt_param_count(stmt) != (unsigned long)bind_num) {")
	c.line("goto done;")
	c.close("}")
	c.open("if (bind_num > 0 && mysql_stmt_bind_param(stmt, bind) != 0) {")
	c.line("goto done;")
	c.close("}")
	c.open("if (mysql_stmt_execute(stmt) != 0) {")
	c.line("goto done;")
	c.close("}")

	if row != nil {
		writeFetch(c, row)
	}

	c.line("ret = YB_OK;")
	c.line("")
	c.label("done")
	c.open("if (stmt != NULL) {")
	c.line("mysql_stmt_close(stmt);")
	c.close("}")
	c.line("yb_string_free(prepare_sql);")
	c.line("yb_string_free(cmd);")
	c.line("return ret;")
	c.close("}")
	c.line("")

	return nil
}

// writeFetch binds the columns of the first row into out in field order.
// NULL columns keep the sentinel and text columns are copied with
// mysql_stmt_fetch_column once their length is known.
func writeFetch(c *cWriter, row *mapper.ResultMap) {
	c.open("if (mysql_stmt_field_count(stmt) != %d) {", len(row.Fields))
	c.line("goto done;")
	c.close("}")

	for i, f := range row.Fields {
		switch f.Kind {
		case mapper.KindInteger:
			c.line("bind_out[%d].buffer_type = MYSQL_TYPE_LONGLONG;", i)
			c.line("bind_out[%d].buffer = &out->%s;", i, f.Property)
		case mapper.KindFloatingPoint:
			c.line("bind_out[%d].buffer_type = MYSQL_TYPE_DOUBLE;", i)
			c.line("bind_out[%d].buffer = &out->%s;", i, f.Property)
		case mapper.KindText:
			c.line("bind_out[%d].buffer_type = MYSQL_TYPE_STRING;", i)
			c.line("bind_out[%d].buffer = NULL;", i)
			c.line("bind_out[%d].buffer_length = 0;", i)
		}
		c.line("bind_out[%d].length = &out_length[%d];", i, i)
		c.line("bind_out[%d].is_null = &out_is_null[%d];", i, i)
	}
	if len(row.Fields) > 0 {
		c.open("if (mysql_stmt_bind_result(stmt, bind_out) != 0) {")
		c.line("goto done;")
		c.close("}")
	}

	c.line("fetch_status = mysql_stmt_fetch(stmt);")
	c.open("if (fetch_status != 0 && fetch_status != MYSQL_DATA_TRUNCATED) {")
	c.line("goto done;")
	c.close("}")

	for i, f := range row.Fields {
		switch f.Kind {
		case mapper.KindInteger, mapper.KindFloatingPoint:
			c.open("if (out_is_null[%d]) {", i)
			c.line("out->%s = %s;", f.Property, f.Kind.NullSentinel())
			c.close("}")
		case mapper.KindText:
			c.open("if (out->%s != YB_STRING_NULL) {", f.Property)
			c.line("yb_string_free(out->%s);", f.Property)
			c.line("out->%s = YB_STRING_NULL;", f.Property)
			c.close("}")
			c.open("if (!out_is_null[%d]) {", i)
			c.line("char* out_buf_%d = (char*)malloc(out_length[%d] + 1);", i, i)
			c.open("if (out_buf_%d == NULL) {", i)
			c.line("goto done;")
			c.close("}")
			c.line("bind_out[%d].buffer = out_buf_%d;", i, i)
			c.line("bind_out[%d].buffer_length = out_length[%d] + 1;", i, i)
			c.open("if (mysql_stmt_fetch_column(stmt, &bind_out[%d], %d, 0) != 0) {", i, i)
			c.line("free(out_buf_%d);", i)
			c.line("goto done;")
			c.close("}")
			c.line("out->%s = yb_string_from(out_buf_%d, (int64_t)out_length[%d]);", f.Property, i, i)
			c.line("free(out_buf_%d);", i)
			c.line("bind_out[%d].buffer = NULL;", i)
			c.line("bind_out[%d].buffer_length = 0;", i)
			c.close("}")
		}
	}
}
