package version

import (
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.True(t, info.Satisfied())
	assert.Equal(t, "yobatis version "+Version+" ("+info.Platform+" "+info.GoVersion+")", info.String())
}

func TestInfoAgainst(t *testing.T) {
	base := Info{Version: "0.2.0", Platform: "linux/amd64", GoVersion: "go1.24.1"}

	tests := []struct {
		name       string
		constraint string
		satisfied  bool
		suffix     string
	}{
		{name: "none", constraint: "", satisfied: true, suffix: "go1.24.1)"},
		{name: "satisfied", constraint: ">= 0.2", satisfied: true, suffix: `, satisfies ">= 0.2"`},
		{name: "unsatisfied", constraint: ">= 1.0", satisfied: false, suffix: `, does not satisfy ">= 1.0"`},
		{name: "invalid", constraint: "soon", satisfied: false, suffix: `, does not satisfy "soon"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := base.Against(tt.constraint)
			assert.Equal(t, tt.constraint, info.Constraint)
			assert.Equal(t, tt.satisfied, info.Satisfied())
			assert.True(t, strings.HasSuffix(info.String(), tt.suffix), info.String())
		})
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name        string
		current     string
		constraint  string
		wantErr     bool
		unsatisfied bool
	}{
		{name: "no constraint", current: "0.2.0", constraint: ""},
		{name: "satisfied", current: "0.2.0", constraint: ">= 0.2.0"},
		{name: "range", current: "0.2.1", constraint: ">= 0.2, < 1.0"},
		{name: "pessimistic", current: "0.2.5", constraint: "~> 0.2.0"},
		{name: "too old", current: "0.1.0", constraint: ">= 0.2.0", wantErr: true, unsatisfied: true},
		{name: "too new", current: "1.0.0", constraint: "< 1.0", wantErr: true, unsatisfied: true},
		{name: "bad constraint", current: "0.2.0", constraint: "soon", wantErr: true},
		{name: "bad version", current: "dev", constraint: ">= 0.1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.current, tt.constraint)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.unsatisfied, errors.Is(err, ErrUnsatisfied))
		})
	}
}

func TestCheckRequired(t *testing.T) {
	assert.NoError(t, CheckRequired(">= 0.1.0"))
	assert.Error(t, CheckRequired("< 0.0.1"))
}
