package predicate

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(s string) bool { return set[s] }
}

func TestRenderC(t *testing.T) {
	isField := fieldSet("id", "name", "score", "age")

	tests := []struct {
		test string
		want string
	}{
		{"id", "n->id"},
		{"id != YB_INT_NULL", "n->id != YB_INT_NULL"},
		{"name != YB_STRING_NULL && score > 1.5", "n->name != YB_STRING_NULL && n->score > 1.5"},
		{"id == 1 || age >= 18", "n->id == 1 || n->age >= 18"},
		{"id and age or name", "n->id && n->age || n->name"},
		{"!(id == 3)", "!(n->id == 3)"},
		{"!id", "!n->id"},
		{"!!id", "!!n->id"},
		{"(id < 0 || id > 10) && age != -1", "(n->id < 0 || n->id > 10) && n->age != -1"},
		{"  id<=2  ", "n->id <= 2"},
		{"other == 1", "other == 1"},
		{"(age) == 5", "(n->age) == 5"},
	}

	for _, tt := range tests {
		t.Run(tt.test, func(t *testing.T) {
			expr, err := Parse(tt.test)
			require.NoError(t, err)
			assert.Equal(t, tt.want, RenderC(expr, isField))
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, test := range []string{
		"",
		"   ",
		"id ==",
		"id = 1",
		"name != 'x'",
		"(id",
		"id == 1 &&",
	} {
		t.Run(test, func(t *testing.T) {
			_, err := Parse(test)
			assert.Error(t, err)
		})
	}
}

func TestLegacyC(t *testing.T) {
	assert.Equal(t, "n->flag", LegacyC(" flag "))
}

func TestIdentifiers(t *testing.T) {
	expr, err := Parse("!(b == YB_INT_NULL) && (a || c > 2) || a")
	require.NoError(t, err)
	assert.Equal(t, []string{"YB_INT_NULL", "a", "b", "c"}, Identifiers(expr))
}

func TestEval(t *testing.T) {
	record := map[string]Value{
		"id":      Int(7),
		"unset":   Int(math.MinInt64),
		"score":   Float(2.5),
		"noscore": Float(DBLMin),
		"name":    String("bob"),
		"noname":  NullText(),
		"zero":    Int(0),
	}
	env := func(name string) (Value, bool) {
		v, ok := record[name]
		return v, ok
	}

	tests := []struct {
		test string
		want bool
	}{
		{"id", true},
		{"zero", false},
		{"unset", true},
		{"id != YB_INT_NULL", true},
		{"unset != YB_INT_NULL", false},
		{"unset == YB_INT_NULL", true},
		{"score != YB_FLOAT_NULL", true},
		{"noscore != YB_FLOAT_NULL", false},
		{"name != YB_STRING_NULL", true},
		{"noname != YB_STRING_NULL", false},
		{"noname == NULL", true},
		{"name", true},
		{"noname", false},
		{"id > 5 && score < 3", true},
		{"id > 5 && score < 2", false},
		{"id < 5 || score == 2.5", true},
		{"!(id == 7)", false},
		{"!zero", true},
		{"id >= 7 and id <= 7", true},
		{"score > 2", true},
		{"id == 7.0", true},
		{"-id < 0", true},
		{"(id == 7) == 1", true},
		{"(id) == 7", true},
		{"((id)) == 7", true},
		{"-(id) < 0", true},
		{"(score) == 2.5", true},
		{"(noname) == YB_STRING_NULL", true},
		{"(zero)", false},
		{"!(id)", false},
	}

	for _, tt := range tests {
		t.Run(tt.test, func(t *testing.T) {
			expr, err := Parse(tt.test)
			require.NoError(t, err)
			got, err := Eval(expr, env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	env := func(name string) (Value, bool) {
		switch name {
		case "name":
			return String("x"), true
		case "other":
			return String("y"), true
		case "id":
			return Int(1), true
		}
		return Value{}, false
	}

	t.Run("unknown identifier", func(t *testing.T) {
		expr, err := Parse("missing == 1")
		require.NoError(t, err)
		_, err = Eval(expr, env)
		assert.True(t, errors.Is(err, ErrUnknownIdentifier))
	})

	for _, test := range []string{
		"name == 1",
		"name == other",
		"name < YB_STRING_NULL",
		"-name",
	} {
		t.Run(test, func(t *testing.T) {
			expr, err := Parse(test)
			require.NoError(t, err)
			_, err = Eval(expr, env)
			assert.Error(t, err)
		})
	}
}

func TestEvalShortCircuit(t *testing.T) {
	env := func(name string) (Value, bool) {
		if name == "id" {
			return Int(0), true
		}
		return Value{}, false
	}

	expr, err := Parse("id && missing")
	require.NoError(t, err)
	ok, err := Eval(expr, env)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValueIsNull(t *testing.T) {
	assert.True(t, Int(math.MinInt64).IsNull())
	assert.False(t, Int(0).IsNull())
	assert.True(t, Float(DBLMin).IsNull())
	assert.False(t, Float(0).IsNull())
	assert.True(t, NullText().IsNull())
	assert.False(t, String("").IsNull())
}

func TestEvalAgreesWithRenderedGroups(t *testing.T) {
	env := func(name string) (Value, bool) {
		if name == "age" {
			return Int(5), true
		}
		return Value{}, false
	}

	tests := []struct {
		test string
		want bool
	}{
		{"(age) == 5", true},
		{"(age) == 1", false},
		{"(age == 5) == 1", true},
		{"(age > 1 && age < 9) == 1", true},
	}

	for _, tt := range tests {
		t.Run(tt.test, func(t *testing.T) {
			expr, err := Parse(tt.test)
			require.NoError(t, err)
			got, err := Eval(expr, env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
