// Package version reports build information and enforces the version
// constraint a project may pin in its configuration.
package version

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// Set at build time with -ldflags "-X".
var (
	Version   = "0.2.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// ErrUnsatisfied is returned when the running version does not meet the
// configured constraint.
var ErrUnsatisfied = errors.New("version constraint not satisfied")

// Info describes the running binary and, once Against was called, how it
// relates to a project's required_version.
type Info struct {
	Version   string
	BuildDate string
	GitCommit string
	GoVersion string
	Platform  string

	Constraint string
	// Problem is empty when Version satisfies Constraint.
	Problem string
}

// Get returns the build information of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Against records whether i satisfies constraint. An empty constraint
// leaves i unchanged.
func (i Info) Against(constraint string) Info {
	if constraint == "" {
		return i
	}
	i.Constraint = constraint
	i.Problem = ""
	if err := Check(i.Version, constraint); err != nil {
		i.Problem = err.Error()
	}
	return i
}

// Satisfied reports whether no constraint was recorded or it holds.
func (i Info) Satisfied() bool {
	return i.Problem == ""
}

// String returns a one-line summary, including the recorded constraint.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "yobatis version %s (%s %s)", i.Version, i.Platform, i.GoVersion)
	switch {
	case i.Constraint == "":
	case i.Satisfied():
		fmt.Fprintf(&sb, ", satisfies %q", i.Constraint)
	default:
		fmt.Fprintf(&sb, ", does not satisfy %q", i.Constraint)
	}
	return sb.String()
}

// Check reports whether current satisfies constraint, such as ">= 0.2, < 1.0".
// An empty constraint is always satisfied.
func Check(current, constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := goversion.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	v, err := goversion.NewVersion(current)
	if err != nil {
		return fmt.Errorf("invalid version format: %w", err)
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: yobatis %s does not match %q", ErrUnsatisfied, current, constraint)
	}
	return nil
}

// CheckRequired checks the running version against constraint.
func CheckRequired(constraint string) error {
	return Check(Version, constraint)
}
