package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cloudshift-ai/cloudshift"
)

// Report is the outcome of a validation run. Reports are produced fresh per
// call and never persisted, except as an edit history entry when a suggested
// correction is accepted.
type Report struct {
	// ConfidenceScore is the model's 0-100 confidence in the translation.
	// Nil when AI validation was skipped or unavailable; a score is never
	// fabricated locally.
	ConfidenceScore *float64 `json:"confidence_score"`

	// Issues lists structural findings followed by semantic findings.
	Issues []Issue `json:"issues"`

	// SuggestedCorrection is the model's proposed replacement document, if
	// any.
	SuggestedCorrection cloudshift.Block `json:"suggested_correction,omitempty"`

	// Unavailable is set when the scoring call failed outright and the
	// report degraded to structural-only findings.
	Unavailable bool `json:"unavailable,omitempty"`
}

// HasStructuralIssues reports whether any issue is a shape violation.
func (r *Report) HasStructuralIssues() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityStructural {
			return true
		}
	}
	return false
}

// ScoreFunc is the externally supplied scoring call: an opaque remote
// function judging a translation against its source.
type ScoreFunc func(ctx context.Context, source, translated cloudshift.Block, sourceProvider, targetProvider, modelID string) (*Report, error)

// ScoreTranslation delegates to the injected scoring function and validates
// the returned report shape. An unparsable result surfaces as a
// MalformedReportError; an outright call failure degrades to a report marked
// unavailable so callers can fall back to structural-only findings.
func ScoreTranslation(ctx context.Context, source, translated cloudshift.Block, sourceProvider, targetProvider, modelID string, fn ScoreFunc) (*Report, error) {
	return scoreTranslation(ctx, source, translated, sourceProvider, targetProvider, modelID, fn, slog.Default())
}

func scoreTranslation(ctx context.Context, source, translated cloudshift.Block, sourceProvider, targetProvider, modelID string, fn ScoreFunc, logger *slog.Logger) (*Report, error) {
	report, err := fn(ctx, source, translated, sourceProvider, targetProvider, modelID)
	if err != nil {
		var malformed *cloudshift.MalformedReportError
		if errors.As(err, &malformed) {
			return nil, err
		}
		logger.Warn("AI validation unavailable, degrading to structural-only",
			"model", modelID, "error", err)
		return &Report{Unavailable: true}, nil
	}

	if err := checkReportShape(report); err != nil {
		return nil, err
	}
	return report, nil
}

func checkReportShape(report *Report) error {
	if report == nil {
		return &cloudshift.MalformedReportError{Message: "scorer returned no report"}
	}
	if report.ConfidenceScore == nil {
		return &cloudshift.MalformedReportError{Message: "report carries no confidence score"}
	}
	if score := *report.ConfidenceScore; score < 0 || score > 100 {
		return &cloudshift.MalformedReportError{
			Message: fmt.Sprintf("confidence score %v outside [0,100]", score),
		}
	}
	for i, issue := range report.Issues {
		switch issue.Severity {
		case SeverityStructural, SeverityAdvisory:
		default:
			return &cloudshift.MalformedReportError{
				Message: fmt.Sprintf("issue %d carries unknown severity %q", i, issue.Severity),
			}
		}
		if issue.Message == "" {
			return &cloudshift.MalformedReportError{
				Message: fmt.Sprintf("issue %d carries no message", i),
			}
		}
	}
	return nil
}
