package cloudshift_test

import (
	"context"
	"testing"

	"github.com/cloudshift-ai/cloudshift"
	"github.com/cloudshift-ai/cloudshift/cache"
	"github.com/cloudshift-ai/cloudshift/provider"
	"github.com/cloudshift-ai/cloudshift/validate"
)

// Exercises the full pipeline against the in-process store: translate, hit
// the cache, validate, accept a correction and replay the edit history.
func TestPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	defer store.Close()

	engine := cloudshift.New(store)
	mock := provider.NewMockProvider()

	source := cloudshift.Block{
		"id":            "app-servers",
		"service":       "ec2",
		"resource_type": "instance",
		"region":        "us-east-1",
		"quantity":      map[string]any{"amount": 4, "unit": "instances"},
		"configuration": map[string]any{"instance_type": "t3.medium"},
	}

	translated, outcome, err := engine.Translate(ctx, source, "aws", "gcp", "mock-model", mock.Translate)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if outcome != cloudshift.OutcomeMiss {
		t.Errorf("first outcome = %s, want miss", outcome)
	}
	if translated["service"] != "Compute Engine" {
		t.Errorf("translated service = %v", translated["service"])
	}

	if _, outcome, err = engine.Translate(ctx, source, "aws", "gcp", "mock-model", mock.Translate); err != nil {
		t.Fatalf("second translate: %v", err)
	}
	if outcome != cloudshift.OutcomeHit {
		t.Errorf("second outcome = %s, want hit", outcome)
	}
	if mock.CallCount != 1 {
		t.Errorf("provider called %d times, want 1", mock.CallCount)
	}

	runner := validate.NewRunner(store)
	report, err := runner.Validate(ctx, source, translated, "aws", "gcp", validate.Options{
		UseAI:   true,
		ScoreFn: mock.Score,
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if report.ConfidenceScore == nil || *report.ConfidenceScore != 90 {
		t.Errorf("confidence = %v, want 90", report.ConfidenceScore)
	}
	if report.HasStructuralIssues() {
		t.Errorf("unexpected structural issues: %+v", report.Issues)
	}

	// Accept a correction and confirm the next lookup serves it.
	key := cloudshift.Fingerprint(source, "aws", "gcp", "mock-model")
	corrected := translated.Clone()
	corrected["region"] = "us-east1"
	if err := runner.AcceptSuggestion(ctx, key, translated, corrected); err != nil {
		t.Fatalf("accept suggestion: %v", err)
	}

	served, outcome, err := engine.Translate(ctx, source, "aws", "gcp", "mock-model", mock.Translate)
	if err != nil {
		t.Fatalf("translate after edit: %v", err)
	}
	if outcome != cloudshift.OutcomeHit {
		t.Errorf("outcome after edit = %s, want hit", outcome)
	}
	if served["region"] != "us-east1" {
		t.Errorf("served region = %v, want the accepted correction", served["region"])
	}

	rec, ok := store.Lookup(ctx, key)
	if !ok {
		t.Fatal("record vanished")
	}
	if !rec.UserEdited || len(rec.EditHistory) != 1 {
		t.Fatalf("record = edited %v, history %d, want edited with 1 entry", rec.UserEdited, len(rec.EditHistory))
	}
	entry := rec.EditHistory[0]
	if entry.Reason != cloudshift.EditReasonValidation {
		t.Errorf("edit reason = %s, want %s", entry.Reason, cloudshift.EditReasonValidation)
	}
	if entry.Previous["region"] != "us-east-1" || entry.New["region"] != "us-east1" {
		t.Errorf("edit snapshot = %v -> %v", entry.Previous["region"], entry.New["region"])
	}

	// Clearing edits keeps the base translation.
	if err := store.Clear(ctx, cloudshift.ClearEdits); err != nil {
		t.Fatalf("clear edits: %v", err)
	}
	served, _, err = engine.Translate(ctx, source, "aws", "gcp", "mock-model", mock.Translate)
	if err != nil {
		t.Fatal(err)
	}
	if served["region"] != "us-east-1" {
		t.Errorf("region after clearing edits = %v, want the base translation restored", served["region"])
	}
	if mock.CallCount != 1 {
		t.Errorf("provider called %d times, want still 1", mock.CallCount)
	}
}
