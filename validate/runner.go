package validate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cloudshift-ai/cloudshift"
	"github.com/cloudshift-ai/cloudshift/metrics"
)

// Options controls a validation run.
type Options struct {
	// UseAI enables the AI-scored semantic phase. The structural phase is
	// free and always runs; the semantic phase costs a model call.
	UseAI bool

	// ScoreFn is the injected scoring call, required when UseAI is set.
	ScoreFn ScoreFunc

	// ModelID names the scoring model. Opaque to the runner.
	ModelID string
}

// Runner orchestrates the two validation phases and reconciles accepted
// corrections with the cache store.
type Runner struct {
	store  cloudshift.Store
	logger *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the runner's logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a validation runner writing through the given store.
func NewRunner(store cloudshift.Store, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Validate runs the structural check and, when enabled, the semantic check,
// and merges their findings. Structural issues come first in the merged
// report. A failed or malformed semantic phase degrades to structural-only
// results with a nil confidence score; it never fails the whole operation.
func (r *Runner) Validate(ctx context.Context, source, translated cloudshift.Block, sourceProvider, targetProvider string, opts Options) (*Report, error) {
	start := time.Now()
	structural := CheckHierarchy(source, translated)
	metrics.ObserveValidationDuration("structural", time.Since(start))
	metrics.IncValidationRun("structural", passFail(len(structural) == 0))

	report := &Report{Issues: structural}
	if !opts.UseAI {
		return report, nil
	}

	start = time.Now()
	semantic, err := scoreTranslation(ctx, source, translated, sourceProvider, targetProvider, opts.ModelID, opts.ScoreFn, r.logger)
	metrics.ObserveValidationDuration("semantic", time.Since(start))
	if err != nil {
		metrics.IncValidationRun("semantic", "error")
		var malformed *cloudshift.MalformedReportError
		if errors.As(err, &malformed) {
			r.logger.Warn("scorer returned a malformed report, degrading to structural-only",
				"model", opts.ModelID, "error", err)
			report.Unavailable = true
			return report, nil
		}
		return nil, err
	}
	if semantic.Unavailable {
		metrics.IncValidationRun("semantic", "error")
		report.Unavailable = true
		return report, nil
	}

	metrics.IncValidationRun("semantic", passFail(len(semantic.Issues) == 0))
	report.Issues = append(report.Issues, semantic.Issues...)
	report.ConfidenceScore = semantic.ConfidenceScore
	report.SuggestedCorrection = semantic.SuggestedCorrection
	return report, nil
}

// AcceptSuggestion records a user-accepted validation suggestion as an edit
// history entry on the cached record. The suggestion is shape-checked again
// before it is written: a correction that lost the document shape must not
// enter the cache.
func (r *Runner) AcceptSuggestion(ctx context.Context, key string, current, suggestion cloudshift.Block) error {
	if err := suggestion.CheckShape(); err != nil {
		return &cloudshift.TranslationError{Message: "suggested correction is malformed", Cause: err}
	}
	entry := cloudshift.EditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Previous:  current.Clone(),
		New:       suggestion.Clone(),
		Reason:    cloudshift.EditReasonValidation,
	}
	if err := r.store.AppendEdit(ctx, key, entry); err != nil {
		return err
	}
	r.logger.Info("validation suggestion accepted", "key", key, "id", suggestion.ID())
	return nil
}

// RecordUserEdit records a manual user correction as an edit history entry.
func (r *Runner) RecordUserEdit(ctx context.Context, key string, previous, edited cloudshift.Block) error {
	if err := edited.CheckShape(); err != nil {
		return &cloudshift.TranslationError{Message: "edited document is malformed", Cause: err}
	}
	entry := cloudshift.EditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Previous:  previous.Clone(),
		New:       edited.Clone(),
		Reason:    cloudshift.EditReasonUser,
	}
	if err := r.store.AppendEdit(ctx, key, entry); err != nil {
		return err
	}
	r.logger.Info("user edit recorded", "key", key, "id", edited.ID())
	return nil
}

func passFail(pass bool) string {
	if pass {
		return "pass"
	}
	return "fail"
}
