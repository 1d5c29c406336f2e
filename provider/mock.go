package provider

import (
	"context"
	"strings"
	"sync"

	"github.com/cloudshift-ai/cloudshift"
	"github.com/cloudshift-ai/cloudshift/validate"
)

// MockProvider is a deterministic fake for tests and offline runs. It maps a
// handful of well-known AWS/GCP/Azure services and falls back to tagging the
// service name with the target provider.
type MockProvider struct {
	mu            sync.Mutex
	Translations  map[string]cloudshift.Block // Keyed by resource ID
	TranslateErr  error                       // Forced translation failure
	ScoreErr      error                       // Forced scoring failure
	CallCount     int                         // Number of Translate calls
	ScoreCount    int                         // Number of Score calls
	LastBlock     cloudshift.Block            // Last block passed to Translate
	FixedScore    float64                     // Confidence returned by Score (default 90)
	ScoreIssues   []validate.Issue            // Issues returned by Score
	Suggestion    cloudshift.Block            // Suggested correction returned by Score
	serviceByName map[string]string
}

// NewMockProvider creates a mock with default service mappings.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		FixedScore: 90,
		serviceByName: map[string]string{
			"ec2":    "Compute Engine",
			"s3":     "Cloud Storage",
			"rds":    "Cloud SQL",
			"lambda": "Cloud Functions",
		},
	}
}

// Translate returns the canned translation for the block's ID when present,
// otherwise a generic structural rewrite of the source.
func (m *MockProvider) Translate(ctx context.Context, block cloudshift.Block, sourceProvider, targetProvider, modelID string) (cloudshift.Block, error) {
	m.mu.Lock()
	m.CallCount++
	m.LastBlock = block.Clone()
	err := m.TranslateErr
	canned, ok := m.Translations[block.ID()]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if ok {
		return canned.Clone(), nil
	}

	out := block.Clone()
	if service, isStr := out["service"].(string); isStr {
		if mapped, known := m.serviceByName[strings.ToLower(service)]; known {
			out["service"] = mapped
		} else {
			out["service"] = service + " (" + targetProvider + ")"
		}
	}
	if rt, isStr := out["resource_type"].(string); isStr {
		out["resource_type"] = targetProvider + ":" + rt
	}
	return out, nil
}

// Score returns the configured fixed report.
func (m *MockProvider) Score(ctx context.Context, source, translated cloudshift.Block, sourceProvider, targetProvider, modelID string) (*validate.Report, error) {
	m.mu.Lock()
	m.ScoreCount++
	err := m.ScoreErr
	score := m.FixedScore
	issues := append([]validate.Issue(nil), m.ScoreIssues...)
	suggestion := m.Suggestion.Clone()
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &validate.Report{
		ConfidenceScore:     &score,
		Issues:              issues,
		SuggestedCorrection: suggestion,
	}, nil
}

// Reset clears call counters and recorded requests.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.ScoreCount = 0
	m.LastBlock = nil
}

// Verify the mock satisfies the injected function signatures.
var (
	_ cloudshift.TranslateFunc = (*MockProvider)(nil).Translate
	_ validate.ScoreFunc       = (*MockProvider)(nil).Score
)
