package blockio

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// HCLIssue is one finding from the static pre-check of a provider-native
// HCL document.
type HCLIssue struct {
	File    string
	Message string
	Line    int
	Column  int
}

// HCLAnalysis is the result of statically checking HCL sources before they
// are fed to the translation pipeline.
type HCLAnalysis struct {
	Passed bool
	Issues []HCLIssue
}

// sensitiveKeywords flags attributes that look like embedded credentials.
// Configuration documents travel to an external model; secrets must not.
var sensitiveKeywords = []string{"password", "secret", "token", "access_key", "secret_key", "api_key"}

// AnalyzeHCL parses provider-native HCL (Terraform-style) sources and
// reports syntax errors and attributes that appear to embed credentials.
// Documents that fail this check should not be sent to the model.
func AnalyzeHCL(filename string, src []byte) *HCLAnalysis {
	result := &HCLAnalysis{Passed: true}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		for _, diag := range diags {
			result.Issues = append(result.Issues, issueFromDiag(filename, diag))
		}
		result.Passed = false
		return result
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return result
	}
	scanBody(filename, body, result)
	if len(result.Issues) > 0 {
		result.Passed = false
	}
	return result
}

// scanBody walks attributes and nested blocks looking for sensitive names.
func scanBody(filename string, body *hclsyntax.Body, result *HCLAnalysis) {
	for name, attr := range body.Attributes {
		lower := strings.ToLower(name)
		for _, keyword := range sensitiveKeywords {
			if strings.Contains(lower, keyword) {
				result.Issues = append(result.Issues, HCLIssue{
					File:    filename,
					Message: fmt.Sprintf("attribute %q looks like an embedded credential; move it to a variable before translation", name),
					Line:    attr.SrcRange.Start.Line,
					Column:  attr.SrcRange.Start.Column,
				})
				break
			}
		}
	}
	for _, block := range body.Blocks {
		scanBody(filename, block.Body, result)
	}
}

func issueFromDiag(filename string, diag *hcl.Diagnostic) HCLIssue {
	issue := HCLIssue{
		File:    filename,
		Message: fmt.Sprintf("%s: %s", diag.Summary, diag.Detail),
	}
	if diag.Subject != nil {
		issue.Line = diag.Subject.Start.Line
		issue.Column = diag.Subject.Start.Column
	}
	return issue
}
