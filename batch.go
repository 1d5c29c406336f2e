package cloudshift

import (
	"context"
	"sync"
)

// BatchResult is the per-resource result of a batch translation.
type BatchResult struct {
	Block   Block   // Translated document, nil when Err is set
	Outcome Outcome // How the request was satisfied
	Err     error   // Per-resource failure; other resources still proceed
}

// BatchSummary aggregates batch translation outcomes.
type BatchSummary struct {
	Total  int
	Hits   int
	Misses int
	Failed int
}

// defaultBatchWorkers bounds concurrent external calls when the caller does
// not specify a worker count.
const defaultBatchWorkers = 4

// TranslateBatch translates every block of a manifest with bounded
// concurrency, preserving input order in the results. A failed resource does
// not abort the batch; its error is recorded in its slot. Duplicate resources
// in the batch coalesce to a single external call through the engine's
// per-key coalescing.
func (e *Engine) TranslateBatch(ctx context.Context, blocks []Block, sourceProvider, targetProvider, modelID string, fn TranslateFunc, workers int) ([]BatchResult, BatchSummary) {
	results := make([]BatchResult, len(blocks))
	if len(blocks) == 0 {
		return results, BatchSummary{}
	}
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	if workers > len(blocks) {
		workers = len(blocks)
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, block := range blocks {
		wg.Add(1)
		go func(i int, block Block) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			translated, outcome, err := e.Translate(ctx, block, sourceProvider, targetProvider, modelID, fn)
			results[i] = BatchResult{Block: translated, Outcome: outcome, Err: err}
		}(i, block)
	}
	wg.Wait()

	summary := BatchSummary{Total: len(blocks)}
	for _, r := range results {
		switch {
		case r.Err != nil:
			summary.Failed++
		case r.Outcome == OutcomeHit:
			summary.Hits++
		default:
			summary.Misses++
		}
	}
	return results, summary
}
