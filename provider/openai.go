package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/cloudshift-ai/cloudshift"
	"github.com/cloudshift-ai/cloudshift/validate"
)

// OpenAIProvider implements the translation and scoring calls over OpenAI's
// chat completion API. Prompt templates are configuration, not logic:
// placeholders {source_cloud}, {target_cloud}, {service_block_json},
// {source_config_json} and {translated_config_json} are substituted per call.
type OpenAIProvider struct {
	client             *openai.Client
	model              string
	temperature        float32
	maxTokens          int
	systemPrompt       string
	userTemplate       string
	validationTemplate string
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey             string  // OpenAI API key (uses OPENAI_API_KEY env var if empty)
	Model              string  // Model to use (default: "gpt-4o-mini")
	Temperature        float32 // Temperature for generation (default: 0.2)
	MaxTokens          int     // Completion token cap (default: 4096)
	BaseURL            string  // Custom base URL (optional)
	SystemPrompt       string  // System prompt (optional override)
	UserTemplate       string  // Translation prompt template (optional override)
	ValidationTemplate string  // Validation prompt template (optional override)
}

const defaultSystemPrompt = "You are a cloud infrastructure migration expert. " +
	"You respond with a single JSON object and no surrounding prose."

const defaultUserTemplate = "Translate the following {source_cloud} resource " +
	"configuration to its {target_cloud} equivalent. Preserve the document " +
	"structure, the id, the region mapping and all quantities. Respond with " +
	"the translated JSON object only.\n\n{service_block_json}"

const defaultValidationTemplate = "Review this translation of a " +
	"{source_cloud} resource configuration to {target_cloud}. Respond with a " +
	"JSON object of the form {\"confidence_score\": 0-100, \"issues\": " +
	"[{\"path\": \"...\", \"severity\": \"structural\"|\"advisory\", " +
	"\"message\": \"...\"}], \"suggested_correction\": {...}|null}.\n\n" +
	"Source:\n{source_config_json}\n\nTranslated:\n{translated_config_json}"

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	p := &OpenAIProvider{
		client:             openai.NewClientWithConfig(clientCfg),
		model:              cfg.Model,
		temperature:        cfg.Temperature,
		maxTokens:          cfg.MaxTokens,
		systemPrompt:       cfg.SystemPrompt,
		userTemplate:       cfg.UserTemplate,
		validationTemplate: cfg.ValidationTemplate,
	}
	if p.model == "" {
		p.model = "gpt-4o-mini"
	}
	if p.temperature == 0 {
		p.temperature = 0.2
	}
	if p.maxTokens == 0 {
		p.maxTokens = 4096
	}
	if p.systemPrompt == "" {
		p.systemPrompt = defaultSystemPrompt
	}
	if p.userTemplate == "" {
		p.userTemplate = defaultUserTemplate
	}
	if p.validationTemplate == "" {
		p.validationTemplate = defaultValidationTemplate
	}
	return p
}

// Translate maps a source document to the target provider's schema. The
// modelID parameter overrides the configured model when non-empty, so one
// provider instance can serve a model catalog.
func (p *OpenAIProvider) Translate(ctx context.Context, block cloudshift.Block, sourceProvider, targetProvider, modelID string) (cloudshift.Block, error) {
	blockJSON, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding source document: %w", err)
	}

	userPrompt := strings.NewReplacer(
		"{source_cloud}", strings.ToUpper(sourceProvider),
		"{target_cloud}", strings.ToUpper(targetProvider),
		"{service_block_json}", string(blockJSON),
	).Replace(p.userTemplate)

	content, err := p.complete(ctx, modelID, userPrompt)
	if err != nil {
		return nil, err
	}

	raw, err := extractJSON(content)
	if err != nil {
		return nil, &cloudshift.ProviderError{Message: "no JSON object in model response", Cause: err}
	}
	var out cloudshift.Block
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &cloudshift.ProviderError{Message: "model returned invalid JSON", Cause: err}
	}
	return out, nil
}

// rawReport mirrors the JSON shape the validation prompt asks for. Issues
// may arrive as plain strings from weaker models; both forms are accepted.
type rawReport struct {
	ConfidenceScore     *float64          `json:"confidence_score"`
	Issues              []json.RawMessage `json:"issues"`
	SuggestedCorrection cloudshift.Block  `json:"suggested_correction"`
}

// Score judges a translation against its source and returns a structured
// report. An unparsable model response surfaces as a MalformedReportError so
// the semantic validator can distinguish it from an outright call failure.
func (p *OpenAIProvider) Score(ctx context.Context, source, translated cloudshift.Block, sourceProvider, targetProvider, modelID string) (*validate.Report, error) {
	srcJSON, err := json.MarshalIndent(source, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding source document: %w", err)
	}
	dstJSON, err := json.MarshalIndent(translated, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding translated document: %w", err)
	}

	userPrompt := strings.NewReplacer(
		"{source_cloud}", strings.ToUpper(sourceProvider),
		"{target_cloud}", strings.ToUpper(targetProvider),
		"{source_config_json}", string(srcJSON),
		"{translated_config_json}", string(dstJSON),
	).Replace(p.validationTemplate)

	content, err := p.complete(ctx, modelID, userPrompt)
	if err != nil {
		return nil, err
	}

	raw, err := extractJSON(content)
	if err != nil {
		return nil, &cloudshift.MalformedReportError{Message: "no JSON object in model response", Cause: err}
	}
	var parsed rawReport
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &cloudshift.MalformedReportError{Message: "report is not valid JSON", Cause: err}
	}

	report := &validate.Report{
		ConfidenceScore:     parsed.ConfidenceScore,
		SuggestedCorrection: parsed.SuggestedCorrection,
	}
	for i, rawIssue := range parsed.Issues {
		issue, err := parseIssue(rawIssue)
		if err != nil {
			return nil, &cloudshift.MalformedReportError{
				Message: fmt.Sprintf("issue %d is malformed", i), Cause: err,
			}
		}
		report.Issues = append(report.Issues, issue)
	}
	return report, nil
}

func parseIssue(raw json.RawMessage) (validate.Issue, error) {
	var issue validate.Issue
	if err := json.Unmarshal(raw, &issue); err == nil {
		if issue.Severity == "" {
			issue.Severity = validate.SeverityAdvisory
		}
		return issue, nil
	}

	var message string
	if err := json.Unmarshal(raw, &message); err != nil {
		return validate.Issue{}, fmt.Errorf("issue is neither object nor string")
	}
	return validate.Issue{Severity: validate.SeverityAdvisory, Message: message}, nil
}

// complete runs one chat completion and returns the response text.
func (p *OpenAIProvider) complete(ctx context.Context, modelID, userPrompt string) (string, error) {
	model := modelID
	if model == "" {
		model = p.model
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", &cloudshift.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}
	if len(resp.Choices) == 0 {
		return "", &cloudshift.ProviderError{Message: "no response from OpenAI", Retryable: true}
	}
	return resp.Choices[0].Message.Content, nil
}

// extractJSON returns the outermost JSON object embedded in text. Models
// occasionally wrap the object in prose or code fences despite instructions.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object found in %d bytes of response", len(text))
	}
	return text[start : end+1], nil
}

// isRetryableError classifies OpenAI API failures. Rate limits and server
// errors are transient; auth and request errors are not.
func isRetryableError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	return false
}
