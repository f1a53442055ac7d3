package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/afero"

	"github.com/yobatis-go/yobatis/internal/codegen"
	"github.com/yobatis-go/yobatis/internal/dynsql"
	"github.com/yobatis-go/yobatis/internal/mapper"
)

// RenderService evaluates one statement against a record.
type RenderService struct {
	fs afero.Fs
}

// NewRenderService creates a new render service.
func NewRenderService(fs afero.Fs) *RenderService {
	return &RenderService{fs: fs}
}

// RenderInput contains render input parameters.
type RenderInput struct {
	Document  string
	Statement string
	// Values maps properties to raw values; the literal "null" and absent
	// properties keep the null sentinel.
	Values map[string]string
}

// RenderOutput is the evaluated statement.
type RenderOutput struct {
	Mapper    *mapper.Mapper
	Statement *mapper.Statement
	*dynsql.Result
}

// Render loads the document and evaluates the named statement.
func (s *RenderService) Render(ctx context.Context, input RenderInput) (*RenderOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := mapper.Load(s.fs, input.Document)
	if err != nil {
		return nil, err
	}
	if _, err := codegen.Compile(m); err != nil {
		return nil, err
	}
	st, ok := m.FindStatement(input.Statement)
	if !ok {
		return nil, mapper.NewReferenceError(m.Document, "statement", input.Statement, "no statement has this id")
	}
	shape, err := m.ParameterShape(st)
	if err != nil {
		return nil, err
	}

	rec := dynsql.NewRecord(shape)
	props := make([]string, 0, len(input.Values))
	for p := range input.Values {
		props = append(props, p)
	}
	sort.Strings(props)
	for _, p := range props {
		if err := rec.Set(shape, p, input.Values[p]); err != nil {
			return nil, fmt.Errorf("invalid value: %w", err)
		}
	}

	res, err := dynsql.Evaluate(m, st, rec)
	if err != nil {
		return nil, err
	}
	return &RenderOutput{Mapper: m, Statement: st, Result: res}, nil
}
