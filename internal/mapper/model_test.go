package mapper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablePreservesInsertionOrder(t *testing.T) {
	tbl := NewTable[int]()
	assert.True(t, tbl.Add("c", 3))
	assert.True(t, tbl.Add("a", 1))
	assert.True(t, tbl.Add("b", 2))
	assert.False(t, tbl.Add("a", 10))

	assert.Equal(t, []string{"c", "a", "b"}, tbl.Keys())
	assert.Equal(t, []int{3, 1, 2}, tbl.Values())
	assert.Equal(t, 3, tbl.Len())

	v, ok := tbl.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.False(t, tbl.Has("z"))
}

func TestFieldKind(t *testing.T) {
	tests := []struct {
		yoType   string
		kind     FieldKind
		sentinel string
	}{
		{"int64_t", KindInteger, "YB_INT_NULL"},
		{"double", KindFloatingPoint, "YB_FLOAT_NULL"},
		{"yb_string_t", KindText, "YB_STRING_NULL"},
		{"int", KindUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.yoType, func(t *testing.T) {
			k := ParseFieldKind(tt.yoType)
			assert.Equal(t, tt.kind, k)
			assert.Equal(t, tt.sentinel, k.NullSentinel())
			if k != KindUnknown {
				assert.Equal(t, tt.yoType, k.CType())
			}
		})
	}
}

func TestMapperReferences(t *testing.T) {
	m := New("ns", "ns-mapper.xml")
	require.NoError(t, m.AddResultMap(&ResultMap{ID: "R", Type: "rec"}))
	require.NoError(t, m.AddFragment(&Fragment{ID: "cols", Text: "a, b"}))

	st := &Statement{Kind: Select, ID: "s", ParameterType: "rec", ResultMap: "R"}

	rm, err := m.ParameterShape(st)
	require.NoError(t, err)
	assert.Equal(t, "R", rm.ID)

	rm, err = m.RowShape(st)
	require.NoError(t, err)
	assert.Equal(t, "rec", rm.Type)

	text, err := m.FragmentText(st, "cols")
	require.NoError(t, err)
	assert.Equal(t, "a, b", text)

	t.Run("missing parameter type", func(t *testing.T) {
		_, err := m.ParameterShape(&Statement{Kind: Insert, ID: "i", ParameterType: "R"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrReference))
		assert.Contains(t, err.Error(), `insert "i"`)
	})

	t.Run("missing result map", func(t *testing.T) {
		_, err := m.RowShape(&Statement{Kind: Select, ID: "s", ResultMap: "rec"})
		assert.True(t, errors.Is(err, ErrReference))
	})

	t.Run("missing fragment", func(t *testing.T) {
		_, err := m.FragmentText(st, "nope")
		assert.True(t, errors.Is(err, ErrReference))
		assert.Contains(t, err.Error(), `"nope"`)
	})
}
