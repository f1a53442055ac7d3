// Package service implements the application use cases behind the CLI.
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/yobatis-go/yobatis/internal/codegen"
	"github.com/yobatis-go/yobatis/internal/cruntime"
	"github.com/yobatis-go/yobatis/internal/debug"
	"github.com/yobatis-go/yobatis/internal/mapper"
)

// GenerateService compiles mapper documents into C sources.
type GenerateService struct {
	fs afero.Fs
}

// NewGenerateService creates a new generate service.
func NewGenerateService(fs afero.Fs) *GenerateService {
	return &GenerateService{fs: fs}
}

// GenerateInput contains generation input parameters.
type GenerateInput struct {
	InputDir  string
	OutputDir string
	// Pattern selects mapper documents in InputDir; empty means
	// mapper.DefaultPattern.
	Pattern string
	// Jobs bounds the number of documents compiled at once; zero means
	// runtime.NumCPU().
	Jobs int
}

// GenerateResult describes what a run wrote.
type GenerateResult struct {
	// Outputs holds one entry per document, ordered by document path.
	Outputs []*codegen.Output
	// Files lists every written path.
	Files []string
}

// Generate compiles every mapper document of the input directory. All
// documents compile before anything is written, so one failing document
// leaves the output directory untouched.
func (s *GenerateService) Generate(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	pattern := input.Pattern
	if pattern == "" {
		pattern = mapper.DefaultPattern
	}
	jobs := input.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	paths, err := mapper.Discover(s.fs, input.InputDir, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to discover mapper documents: %w", err)
	}
	debug.Debug("Discovered mapper documents", "dir", input.InputDir, "pattern", pattern, "count", len(paths))

	outputs := make([]*codegen.Output, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := mapper.Load(s.fs, path)
			if err != nil {
				return err
			}
			out, err := codegen.Compile(m)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := checkNamespaces(outputs); err != nil {
		return nil, err
	}

	result := &GenerateResult{Outputs: outputs}
	for _, out := range outputs {
		if err := out.Write(s.fs, input.OutputDir); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, filepath.Join(input.OutputDir, out.HeaderName), filepath.Join(input.OutputDir, out.SourceName))
	}

	if err := cruntime.Write(s.fs, input.OutputDir); err != nil {
		return nil, err
	}
	result.Files = append(result.Files, filepath.Join(input.OutputDir, cruntime.HeaderName), filepath.Join(input.OutputDir, cruntime.SourceName))

	debug.Info("Generation finished", "documents", len(outputs), "files", len(result.Files))
	return result, nil
}

// checkNamespaces rejects two documents that would write the same files.
func checkNamespaces(outputs []*codegen.Output) error {
	seen := make(map[string]string, len(outputs))
	for _, out := range outputs {
		if other, ok := seen[out.Namespace]; ok {
			return mapper.NewMalformedError(out.Document, "mapper", out.Namespace,
				fmt.Sprintf("namespace is also declared by %s", other))
		}
		seen[out.Namespace] = out.Document
	}
	return nil
}

// Summary counts what a result contains.
type Summary struct {
	Documents  int
	Records    int
	Statements map[mapper.StatementKind]int
}

// Summarize counts the documents, records and statements of r.
func (r *GenerateResult) Summarize() Summary {
	sum := Summary{Documents: len(r.Outputs), Statements: make(map[mapper.StatementKind]int)}
	for _, out := range r.Outputs {
		sum.Records += len(out.Records)
		for kind, ids := range out.Functions {
			sum.Statements[kind] += len(ids)
		}
	}
	return sum
}

