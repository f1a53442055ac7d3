package service

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/yobatis-go/yobatis/internal/introspect"
	"github.com/yobatis-go/yobatis/internal/scaffold"
)

// InitService scaffolds mapper documents from a live database.
type InitService struct {
	fs           afero.Fs
	introspector introspect.Introspector
}

// NewInitService creates a new init service.
func NewInitService(fs afero.Fs, introspector introspect.Introspector) *InitService {
	return &InitService{fs: fs, introspector: introspector}
}

// InitInput contains init input parameters.
type InitInput struct {
	OutputDir string
}

// Init introspects the database and writes db.xml plus one mapper document
// per table. It returns the written paths.
func (s *InitService) Init(ctx context.Context, input InitInput) ([]string, error) {
	if s.introspector == nil {
		return nil, fmt.Errorf("introspector not initialized")
	}

	db, err := s.introspector.Introspect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect database: %w", err)
	}

	paths, err := scaffold.Generate(s.fs, input.OutputDir, db)
	if err != nil {
		return nil, fmt.Errorf("failed to scaffold mappers: %w", err)
	}
	return paths, nil
}
