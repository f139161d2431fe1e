package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/docuvault/prescription-extractor/internal/schema"
)

// BatchResult pairs one input with its outcome. Exactly one of Document or
// Err is meaningful; Record is present whenever the pipeline started.
type BatchResult struct {
	Input    string
	Document *schema.ExtractedPrescription
	Record   *ProcessingRecord
	Err      error
}

// ProcessBatch runs every input through Process with a bounded worker pool.
// One document failing never stops the batch; results come back in input
// order with per-document errors recorded in place.
func (p *Processor) ProcessBatch(ctx context.Context, inputs []string, forceVision bool) []BatchResult {
	results := make([]BatchResult, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			doc, record, err := p.Process(ctx, input, forceVision)
			results[i] = BatchResult{Input: input, Document: doc, Record: record, Err: err}
			return nil // per-document errors stay in the result slice
		})
	}
	_ = g.Wait() // workers never return errors

	return results
}
