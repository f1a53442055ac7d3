package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yobatis-go/yobatis/internal/config"
	"github.com/yobatis-go/yobatis/internal/cruntime"
	"github.com/yobatis-go/yobatis/internal/ui"
	"github.com/yobatis-go/yobatis/internal/version"
)

const userDoc = `<mapper namespace="user_mapper">
<resultMap id="R" type="yb_user_t"><result column="id" property="id" yo_type="int64_t"/><result column="name" property="name" yo_type="yb_string_t"/></resultMap>
<update id="user_rename" parameterType="yb_user_t">UPDATE user <trim prefix="SET " suffixOverrides=","><if test="name != YB_STRING_NULL">name = #{name},</if></trim> WHERE id = #{id}</update>
<select id="user_get" parameterType="yb_user_t" resultMap="R">SELECT id, name FROM user WHERE id = #{id}</select>
</mapper>`

func setup(t *testing.T) (afero.Fs, *bytes.Buffer) {
	t.Helper()
	viper.Reset()
	fs := afero.NewMemMapFs()
	var out bytes.Buffer
	oldFs, oldOut, oldErr := config.AppFs, ui.Out, ui.Err
	oldNoColor := color.NoColor
	config.AppFs, ui.Out, ui.Err = fs, &out, &out
	color.NoColor = true
	pterm.DisableOutput()
	t.Cleanup(func() {
		pterm.EnableOutput()
		config.AppFs, ui.Out, ui.Err = oldFs, oldOut, oldErr
		color.NoColor = oldNoColor
		viper.Reset()
	})
	return fs, &out
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestVersionCommand(t *testing.T) {
	_, out := setup(t)

	require.NoError(t, execute(t, "version", "--short"))
	assert.Equal(t, version.Get().String()+"\n", out.String())

	out.Reset()
	require.NoError(t, execute(t, "version"))
	assert.Contains(t, out.String(), "yobatis version "+version.Version)
	assert.Contains(t, out.String(), "Git Commit:")
}

func TestVersionCommandShowsRequiredVersion(t *testing.T) {
	fs, out := setup(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, filepath.Join(wd, ".yobatis.yaml"), []byte("required_version: \">= 99.0\"\n"), 0644))

	require.NoError(t, execute(t, "version", "--short"))
	assert.Contains(t, out.String(), `does not satisfy ">= 99.0"`)

	out.Reset()
	require.NoError(t, execute(t, "version"))
	assert.Contains(t, out.String(), "Required: >= 99.0")

	err = execute(t, "gen")
	require.Error(t, err)
	assert.ErrorIs(t, err, version.ErrUnsatisfied)
}

func TestGenCommand(t *testing.T) {
	fs, out := setup(t)
	require.NoError(t, afero.WriteFile(fs, filepath.Join("in", "user-mapper.xml"), []byte(userDoc), 0644))

	require.NoError(t, execute(t, "gen", "-i", "in", "-o", "out", "-j", "1"))

	for _, name := range []string{"yb_user_mapper.h", "yb_user_mapper.c", cruntime.HeaderName, cruntime.SourceName} {
		exists, err := afero.Exists(fs, filepath.Join("out", name))
		require.NoError(t, err)
		assert.True(t, exists, name)
	}
	assert.Contains(t, out.String(), "Compiled 1 documents into out")
	assert.Contains(t, out.String(), filepath.Join("out", "yb_user_mapper.c"))
}

func TestGenCommandFailure(t *testing.T) {
	fs, _ := setup(t)
	require.NoError(t, afero.WriteFile(fs, filepath.Join("in", "bad-mapper.xml"),
		[]byte(`<mapper namespace="bad_mapper"><delete id="d" parameterType="nope_t">DELETE FROM t</delete></mapper>`), 0644))

	err := execute(t, "gen", "-i", "in", "-o", "out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation failed")

	exists, err := afero.DirExists(fs, "out")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenCommandRejectsBadConfig(t *testing.T) {
	setup(t)

	err := execute(t, "gen", "--pattern", "[")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRenderCommand(t *testing.T) {
	fs, out := setup(t)
	require.NoError(t, afero.WriteFile(fs, "user-mapper.xml", []byte(userDoc), 0644))

	require.NoError(t, execute(t, "render", "user-mapper.xml", "user_rename", "-s", "id=7", "-s", "name=bob"))

	s := out.String()
	assert.Contains(t, s, "UPDATE user SET name = #{name} WHERE id = #{id}")
	assert.Contains(t, s, "UPDATE user SET name = ? WHERE id = ?")
	assert.Contains(t, s, "MYSQL_TYPE_STRING")
	assert.Contains(t, s, `"bob"`)
	assert.Contains(t, s, "MYSQL_TYPE_LONGLONG")
}

func TestRenderCommandErrors(t *testing.T) {
	fs, _ := setup(t)
	require.NoError(t, afero.WriteFile(fs, "user-mapper.xml", []byte(userDoc), 0644))

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing args", args: []string{"render", "user-mapper.xml"}},
		{name: "bad set", args: []string{"render", "user-mapper.xml", "user_get", "-s", "id"}},
		{name: "unknown statement", args: []string{"render", "user-mapper.xml", "nope"}},
		{name: "unknown field", args: []string{"render", "user-mapper.xml", "user_get", "-s", "age=3"}},
		{name: "missing document", args: []string{"render", "other.xml", "user_get"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, execute(t, tt.args...))
		})
	}
}

func TestParseSets(t *testing.T) {
	values, err := parseSets([]string{"id=7", "name=a=b", "note="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"id": "7", "name": "a=b", "note": ""}, values)

	_, err = parseSets([]string{"=1"})
	assert.Error(t, err)
}

func TestInitCommandRequiresConnection(t *testing.T) {
	setup(t)

	err := execute(t, "init", "-o", "mappers")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "mysql.user")
}
