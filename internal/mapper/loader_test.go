package mapper

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{
		"in/user-mapper.xml",
		"in/order-mapper.xml",
		"in/db.xml",
		"in/notes.txt",
		"in/nested/item-mapper.xml",
	} {
		require.NoError(t, afero.WriteFile(fs, name, []byte("<mapper/>"), 0644))
	}

	t.Run("default pattern stays in directory", func(t *testing.T) {
		files, err := Discover(fs, "in", "")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join("in", "order-mapper.xml"),
			filepath.Join("in", "user-mapper.xml"),
		}, files)
	})

	t.Run("recursive pattern", func(t *testing.T) {
		files, err := Discover(fs, "in", "**/*-mapper.xml")
		require.NoError(t, err)
		assert.Len(t, files, 3)
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, err := Discover(fs, "in", "[")
		assert.Error(t, err)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := Discover(fs, "nope", "")
		assert.Error(t, err)
	})

	t.Run("file instead of directory", func(t *testing.T) {
		_, err := Discover(fs, "in/db.xml", "")
		assert.Error(t, err)
	})
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("in", "", filepath.Join("in", "a-mapper.xml")))
	assert.False(t, Matches("in", "", filepath.Join("in", "a.xml")))
	assert.False(t, Matches("in", "", filepath.Join("in", "sub", "a-mapper.xml")))
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "in/user-mapper.xml", []byte(userMapper), 0644))

	m, err := Load(fs, "in/user-mapper.xml")
	require.NoError(t, err)
	assert.Equal(t, "user_mapper", m.Namespace)
	assert.Equal(t, "user-mapper.xml", m.Document)

	_, err = Load(fs, "in/missing-mapper.xml")
	assert.Error(t, err)
}
