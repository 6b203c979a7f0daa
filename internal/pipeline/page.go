package pipeline

import (
	"context"

	"github.com/ppiankov/claimoverlap/internal/model"
	"github.com/ppiankov/claimoverlap/internal/worker"
)

// PageResult is the normalized content of one LIMIT/OFFSET window
type PageResult struct {
	Offset   int
	Bindings int
	Records  *model.Aggregate // empty, never nil, when Error is set
	Error    error
}

// GetError returns the page failure, if any
func (r *PageResult) GetError() error {
	return r.Error
}

// pageJob fetches and normalizes a single page
type pageJob struct {
	offset int
	fetch  func(ctx context.Context, offset int) *PageResult
}

// Execute runs the page fetch
func (j *pageJob) Execute(ctx context.Context) worker.Result {
	return j.fetch(ctx, j.offset)
}
