// Package cruntime ships the C support library that generated mapper code
// links against.
package cruntime

import (
	_ "embed"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Embedded runtime sources
//
//go:embed files/yb_common.h
var header []byte

//go:embed files/yb_common.c
var source []byte

const (
	// HeaderName is the file name every generated header includes.
	HeaderName = "yb_common.h"
	// SourceName is the runtime implementation file name.
	SourceName = "yb_common.c"
)

// Files returns the runtime files keyed by file name.
func Files() map[string][]byte {
	return map[string][]byte{
		HeaderName: header,
		SourceName: source,
	}
}

// Write copies the runtime files into dir, overwriting existing copies.
func Write(fs afero.Fs, dir string) error {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, name := range []string{HeaderName, SourceName} {
		path := filepath.Join(dir, name)
		if err := afero.WriteFile(fs, path, Files()[name], 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
