package validate

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudshift-ai/cloudshift"
	"github.com/cloudshift-ai/cloudshift/cache"
)

func seededStore(t *testing.T, key string, translated cloudshift.Block) *cache.MemoryStore {
	t.Helper()
	store := cache.NewMemoryStore()
	err := store.Put(context.Background(), key, &cloudshift.Record{
		Key:            key,
		Translated:     translated,
		SourceProvider: "aws",
		TargetProvider: "gcp",
		ModelID:        "model-a",
		CreatedAt:      time.Now().UTC(),
	})
	require.NoError(t, err)
	return store
}

func TestRunnerValidateStructuralOnly(t *testing.T) {
	runner := NewRunner(cache.NewMemoryStore())

	source := cloudshift.Block{"service": "ec2", "resource_type": "instance", "region": "us-east-1"}
	translated := cloudshift.Block{"service": "Compute Engine", "resource_type": "gce-instance"}

	report, err := runner.Validate(context.Background(), source, translated, "aws", "gcp", Options{})
	require.NoError(t, err)

	assert.Nil(t, report.ConfidenceScore, "no score without the AI phase")
	assert.True(t, report.HasStructuralIssues(), "missing region must be flagged")
	assert.False(t, report.Unavailable)
}

func TestRunnerValidateMergesPhases(t *testing.T) {
	runner := NewRunner(cache.NewMemoryStore())

	source := cloudshift.Block{"service": "ec2", "region": "us-east-1"}
	translated := cloudshift.Block{"service": "Compute Engine"}

	semantic := fixedScorer(&Report{
		ConfidenceScore: scoreOf(72),
		Issues: []Issue{
			{Path: "service", Severity: SeverityAdvisory, Message: "mapping is approximate"},
		},
		SuggestedCorrection: cloudshift.Block{
			"service": "Compute Engine", "resource_type": "gce-instance", "region": "us-east1",
		},
	}, nil)

	report, err := runner.Validate(context.Background(), source, translated, "aws", "gcp",
		Options{UseAI: true, ScoreFn: semantic})
	require.NoError(t, err)

	require.Len(t, report.Issues, 2)
	// Structural findings lead the merged report.
	assert.Equal(t, SeverityStructural, report.Issues[0].Severity)
	assert.Equal(t, "region", report.Issues[0].Path)
	assert.Equal(t, "mapping is approximate", report.Issues[1].Message)

	require.NotNil(t, report.ConfidenceScore)
	assert.Equal(t, 72.0, *report.ConfidenceScore)
	assert.NotNil(t, report.SuggestedCorrection)
}

func TestRunnerValidateDegradesWhenScorerFails(t *testing.T) {
	runner := NewRunner(cache.NewMemoryStore())

	source := cloudshift.Block{"service": "ec2", "region": "us-east-1"}
	translated := cloudshift.Block{"service": "Compute Engine"}

	report, err := runner.Validate(context.Background(), source, translated, "aws", "gcp",
		Options{UseAI: true, ScoreFn: fixedScorer(nil, errors.New("timeout"))})
	require.NoError(t, err)

	assert.True(t, report.Unavailable)
	assert.Nil(t, report.ConfidenceScore)
	assert.True(t, report.HasStructuralIssues(), "structural findings survive the degraded AI phase")
}

func TestRunnerValidateDegradesOnMalformedReport(t *testing.T) {
	runner := NewRunner(cache.NewMemoryStore())

	// The translated document drops a key, so the structural phase has a real
	// finding. A scorer returning a shapeless report (no confidence score)
	// must not discard it.
	source := cloudshift.Block{"service": "ec2", "region": "us-east-1"}
	translated := cloudshift.Block{"service": "Compute Engine"}

	report, err := runner.Validate(context.Background(), source, translated, "aws", "gcp",
		Options{UseAI: true, ScoreFn: fixedScorer(&Report{}, nil)})
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.True(t, report.Unavailable)
	assert.Nil(t, report.ConfidenceScore)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "region", report.Issues[0].Path)
	assert.True(t, report.HasStructuralIssues(), "structural findings must survive a malformed report")
}

func TestRunnerValidateDegradesOnMalformedReportError(t *testing.T) {
	runner := NewRunner(cache.NewMemoryStore())

	source := cloudshift.Block{"service": "ec2", "region": "us-east-1"}
	translated := cloudshift.Block{"service": "Compute Engine"}
	cause := &cloudshift.MalformedReportError{Message: "report is not valid JSON"}

	report, err := runner.Validate(context.Background(), source, translated, "aws", "gcp",
		Options{UseAI: true, ScoreFn: fixedScorer(nil, cause)})
	require.NoError(t, err)

	assert.True(t, report.Unavailable)
	assert.True(t, report.HasStructuralIssues())
}

func TestRunnerUsesInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	runner := NewRunner(cache.NewMemoryStore(), WithRunnerLogger(logger))

	_, err := runner.Validate(context.Background(), cloudshift.Block{}, cloudshift.Block{}, "aws", "gcp",
		Options{UseAI: true, ScoreFn: fixedScorer(nil, errors.New("timeout"))})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "degrading to structural-only")
}

func TestAcceptSuggestion(t *testing.T) {
	ctx := context.Background()
	current := cloudshift.Block{"service": "Compute Engine", "resource_type": "gce-instance", "region": "us-east-1"}
	suggestion := cloudshift.Block{"service": "Compute Engine", "resource_type": "gce-instance", "region": "us-east1"}

	store := seededStore(t, "k1", current)
	runner := NewRunner(store)

	require.NoError(t, runner.AcceptSuggestion(ctx, "k1", current, suggestion))

	rec, ok := store.Lookup(ctx, "k1")
	require.True(t, ok)
	assert.True(t, rec.UserEdited)
	require.Len(t, rec.EditHistory, 1)

	entry := rec.EditHistory[0]
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
	assert.Equal(t, cloudshift.EditReasonValidation, entry.Reason)
	assert.Equal(t, "us-east-1", entry.Previous["region"])
	assert.Equal(t, "us-east1", entry.New["region"])
	assert.Equal(t, suggestion, rec.CurrentBlock())
}

func TestAcceptSuggestionRejectsMalformedCorrection(t *testing.T) {
	ctx := context.Background()
	current := cloudshift.Block{"service": "Compute Engine", "resource_type": "gce-instance"}
	store := seededStore(t, "k1", current)
	runner := NewRunner(store)

	err := runner.AcceptSuggestion(ctx, "k1", current, cloudshift.Block{"service": "only"})
	var terr *cloudshift.TranslationError
	require.ErrorAs(t, err, &terr)

	rec, ok := store.Lookup(ctx, "k1")
	require.True(t, ok)
	assert.Empty(t, rec.EditHistory, "a rejected correction must not enter the history")
}

func TestAcceptSuggestionMissingRecord(t *testing.T) {
	runner := NewRunner(cache.NewMemoryStore())
	block := cloudshift.Block{"service": "s", "resource_type": "t"}

	err := runner.AcceptSuggestion(context.Background(), "absent", block, block)
	var nferr *cloudshift.NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestRecordUserEdit(t *testing.T) {
	ctx := context.Background()
	current := cloudshift.Block{"service": "Compute Engine", "resource_type": "gce-instance"}
	edited := cloudshift.Block{"service": "Compute Engine", "resource_type": "gce-instance", "labels": map[string]any{"team": "infra"}}

	store := seededStore(t, "k1", current)
	runner := NewRunner(store)

	require.NoError(t, runner.RecordUserEdit(ctx, "k1", current, edited))

	rec, ok := store.Lookup(ctx, "k1")
	require.True(t, ok)
	require.Len(t, rec.EditHistory, 1)
	assert.Equal(t, cloudshift.EditReasonUser, rec.EditHistory[0].Reason)
	assert.Equal(t, edited, rec.CurrentBlock())
}
