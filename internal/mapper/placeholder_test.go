package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		text  string
		names []string
		ok    bool
	}{
		{"SELECT 1", nil, true},
		{"WHERE id = #{id} AND age = #{age}", []string{"id", "age"}, true},
		{"#{a}#{b}", []string{"a", "b"}, true},
		{"#{}", []string{""}, true},
		{"a = #{a", nil, false},
		{"a = #{a} AND b = #{b", []string{"a"}, false},
		{"# {a} {b}", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			names, ok := Placeholders(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.names, names)
		})
	}
}
