package cloudshift

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

func TestTranslateBatch(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := New(store, WithLogger(quietLogger()))

	blocks := make([]Block, 5)
	for i := range blocks {
		blocks[i] = Block{
			"id":            fmt.Sprintf("res-%d", i),
			"service":       "ec2",
			"resource_type": "instance",
			"index":         i,
		}
	}

	fn := func(ctx context.Context, block Block, src, dst, model string) (Block, error) {
		if block.ID() == "res-2" {
			return nil, errors.New("model rejected the document")
		}
		out := block.Clone()
		out["service"] = "Compute Engine"
		return out, nil
	}

	results, summary := engine.TranslateBatch(ctx, blocks, "aws", "gcp", "model-a", fn, 3)
	if len(results) != len(blocks) {
		t.Fatalf("results = %d, want %d", len(results), len(blocks))
	}
	if summary.Total != 5 || summary.Failed != 1 || summary.Misses != 4 || summary.Hits != 0 {
		t.Errorf("summary = %+v, want total 5 / failed 1 / misses 4", summary)
	}

	for i, res := range results {
		if i == 2 {
			if res.Err == nil {
				t.Error("failing resource carries no error")
			}
			continue
		}
		if res.Err != nil {
			t.Errorf("resource %d errored: %v", i, res.Err)
			continue
		}
		// Results must line up with the input order.
		if got := res.Block["index"]; got != i {
			t.Errorf("result %d carries index %v, want %d", i, got, i)
		}
	}
}

func TestTranslateBatchEmpty(t *testing.T) {
	engine := New(newFakeStore(), WithLogger(quietLogger()))
	results, summary := engine.TranslateBatch(context.Background(), nil, "aws", "gcp", "m", nil, 4)
	if len(results) != 0 || summary.Total != 0 {
		t.Errorf("empty batch produced results %v summary %+v", results, summary)
	}
}

func TestTranslateBatchDuplicatesShareOneCall(t *testing.T) {
	ctx := context.Background()
	engine := New(newFakeStore(), WithLogger(quietLogger()))

	var calls int32
	fn := func(ctx context.Context, block Block, src, dst, model string) (Block, error) {
		atomic.AddInt32(&calls, 1)
		return Block{"service": "Compute Engine", "resource_type": "gce-instance"}, nil
	}

	dup := testBlock()
	blocks := []Block{dup, dup.Clone(), dup.Clone(), dup.Clone()}
	results, summary := engine.TranslateBatch(ctx, blocks, "aws", "gcp", "model-a", fn, 4)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("translation function called %d times for identical documents, want 1", got)
	}
	if summary.Failed != 0 {
		t.Errorf("summary = %+v, want no failures", summary)
	}
	for i, res := range results {
		if res.Block["service"] != "Compute Engine" {
			t.Errorf("result %d = %v", i, res.Block)
		}
	}
}

func TestTranslateBatchSecondRunHitsCache(t *testing.T) {
	ctx := context.Background()
	engine := New(newFakeStore(), WithLogger(quietLogger()))

	blocks := []Block{
		{"id": "a", "service": "ec2", "resource_type": "instance"},
		{"id": "b", "service": "s3", "resource_type": "bucket"},
	}
	var calls int32
	fn := stubTranslate(&calls)

	if _, summary := engine.TranslateBatch(ctx, blocks, "aws", "gcp", "m", fn, 2); summary.Misses != 2 {
		t.Fatalf("first run summary = %+v, want 2 misses", summary)
	}
	if _, summary := engine.TranslateBatch(ctx, blocks, "aws", "gcp", "m", fn, 2); summary.Hits != 2 {
		t.Errorf("second run summary = %+v, want 2 hits", summary)
	}
	if calls != 2 {
		t.Errorf("translation function called %d times across both runs, want 2", calls)
	}
}
