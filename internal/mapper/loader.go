package mapper

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// DefaultPattern selects mapper documents by file name.
const DefaultPattern = "*-mapper.xml"

// Discover returns the files under dir whose slash-separated path relative to
// dir matches pattern, sorted. "*" does not cross directories, so the default
// pattern only looks at dir itself; "**/" descends.
func Discover(fs afero.Fs, dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !ValidPattern(pattern) {
		return nil, fmt.Errorf("invalid mapper pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	info, err := fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input %s is not a directory", dir)
	}

	var files []string
	err = afero.Walk(fs, dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		matched, err := doublestar.Match(pattern, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if matched {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// ValidPattern reports whether pattern is a well-formed doublestar pattern.
func ValidPattern(pattern string) bool {
	return doublestar.ValidatePattern(pattern)
}

// Matches reports whether path, relative to dir, is selected by pattern.
func Matches(dir, pattern, path string) bool {
	if pattern == "" {
		pattern = DefaultPattern
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	matched, err := doublestar.Match(pattern, filepath.ToSlash(rel))
	return err == nil && matched
}

// Load reads and parses one mapper document.
func Load(fs afero.Fs, path string) (*Mapper, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapper %s: %w", path, err)
	}
	return Parse(filepath.Base(path), data)
}
