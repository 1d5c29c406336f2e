// Package validate assesses translation quality in two phases: a
// deterministic structural check of shape preservation, and an AI-scored
// semantic check through an injected scoring function. A runner merges both
// and writes accepted corrections back through the cache store.
package validate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cloudshift-ai/cloudshift"
)

// Severity classifies an issue.
type Severity string

const (
	// SeverityStructural marks a shape violation: the translated document
	// lost structure the source carried.
	SeverityStructural Severity = "structural"
	// SeverityAdvisory marks a finding worth reviewing but not a shape
	// violation.
	SeverityAdvisory Severity = "advisory"
)

// Issue is one validation finding at a path into the document. Paths use dot
// notation with bracketed sequence indexes ("configuration.disks[0].size").
type Issue struct {
	Path     string   `json:"path"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// quantityDriftPct is the tolerated relative change of a quantity amount
// before it is flagged. Quantities drive cost estimation and must survive
// translation.
const quantityDriftPct = 5.0

// CheckHierarchy verifies that the translated document preserves the
// hierarchical shape of the source document. It compares structure, not
// domain values: whether "t3.medium" correctly maps to "e2-medium" is the
// semantic validator's job. Pure and deterministic.
func CheckHierarchy(source, translated cloudshift.Block) []Issue {
	var issues []Issue

	for _, key := range sortedKeys(source) {
		srcVal := source[key]
		dstVal, ok := translated[key]
		if !ok {
			issues = append(issues, Issue{
				Path:     key,
				Severity: SeverityStructural,
				Message:  fmt.Sprintf("key %q present in source is missing from translated document", key),
			})
			continue
		}
		issues = append(issues, compareShape(key, srcVal, dstVal)...)
	}

	for _, key := range sortedKeys(translated) {
		if _, ok := source[key]; !ok {
			issues = append(issues, Issue{
				Path:     key,
				Severity: SeverityAdvisory,
				Message:  fmt.Sprintf("key %q not present in source was added by translation", key),
			})
		}
	}

	issues = append(issues, checkConfiguration(source, translated)...)
	issues = append(issues, checkConversion(source, translated)...)
	issues = append(issues, checkQuantity(source, translated)...)
	return issues
}

// compareShape flags kind mismatches at corresponding paths and recurses
// into shared mappings. Key names inside mappings may legitimately differ
// across providers; only keys present on both sides are descended into.
func compareShape(path string, src, dst any) []Issue {
	var issues []Issue

	srcKind := kindOf(src)
	dstKind := kindOf(dst)
	if srcKind != dstKind {
		// A null placeholder in the translated document is an empty-value
		// advisory, not a shape violation.
		if dstKind == "null" {
			return []Issue{{
				Path:     path,
				Severity: SeverityAdvisory,
				Message:  fmt.Sprintf("value at %q is null in translated document", path),
			}}
		}
		return []Issue{{
			Path:     path,
			Severity: SeverityStructural,
			Message:  fmt.Sprintf("type mismatch at %q: source is %s, translated is %s", path, srcKind, dstKind),
		}}
	}

	switch srcMap := asMap(src); {
	case srcMap != nil:
		dstMap := asMap(dst)
		for _, key := range sortedMapKeys(srcMap) {
			if dstVal, ok := dstMap[key]; ok {
				issues = append(issues, compareShape(path+"."+key, srcMap[key], dstVal)...)
			}
		}
	case srcKind == "sequence":
		srcSeq := src.([]any)
		dstSeq := dst.([]any)
		for i := 0; i < len(srcSeq) && i < len(dstSeq); i++ {
			issues = append(issues, compareShape(fmt.Sprintf("%s[%d]", path, i), srcSeq[i], dstSeq[i])...)
		}
	}
	return issues
}

// checkConfiguration flags a translated configuration that lost the source's
// nested settings entirely.
func checkConfiguration(source, translated cloudshift.Block) []Issue {
	srcCfg := asMap(source["configuration"])
	if len(srcCfg) == 0 {
		return nil
	}

	dstCfgRaw, ok := translated["configuration"]
	if !ok {
		// Already reported as a missing key.
		return nil
	}
	if dstCfg := asMap(dstCfgRaw); dstCfg != nil && len(dstCfg) == 0 {
		return []Issue{{
			Path:     "configuration",
			Severity: SeverityStructural,
			Message:  "translated configuration is empty but source configuration is not",
		}}
	}
	return nil
}

// checkConversion flags service and resource type fields left identical to
// the source, which usually means the model skipped the conversion.
func checkConversion(source, translated cloudshift.Block) []Issue {
	var issues []Issue
	for _, key := range []string{"service", "resource_type"} {
		srcVal, srcOK := source[key].(string)
		dstVal, dstOK := translated[key].(string)
		if srcOK && dstOK && srcVal != "" && srcVal == dstVal {
			issues = append(issues, Issue{
				Path:     key,
				Severity: SeverityAdvisory,
				Message:  fmt.Sprintf("%s %q was not converted from the source provider format", key, dstVal),
			})
		}
	}
	return issues
}

// checkQuantity verifies quantity amounts and units survived translation.
func checkQuantity(source, translated cloudshift.Block) []Issue {
	srcQty, srcOK := source["quantity"]
	dstQty, dstOK := translated["quantity"]
	if !srcOK || !dstOK {
		// Presence mismatches are handled by the key checks.
		return nil
	}

	srcMap := asMap(srcQty)
	dstMap := asMap(dstQty)
	if srcMap != nil && dstMap != nil {
		var issues []Issue
		issues = append(issues, compareAmount("quantity.amount", srcMap["amount"], dstMap["amount"])...)
		if srcUnit, ok := srcMap["unit"].(string); ok {
			if dstUnit, ok := dstMap["unit"].(string); ok && srcUnit != dstUnit {
				issues = append(issues, Issue{
					Path:     "quantity.unit",
					Severity: SeverityAdvisory,
					Message:  fmt.Sprintf("quantity unit changed from %q to %q; verify the target provider uses this unit", srcUnit, dstUnit),
				})
			}
		}
		return issues
	}
	return compareAmount("quantity", srcQty, dstQty)
}

// compareAmount flags numeric drift above the tolerance, or any change for
// non-numeric amounts.
func compareAmount(path string, src, dst any) []Issue {
	srcNum, srcOK := toFloat(src)
	dstNum, dstOK := toFloat(dst)

	if srcOK && dstOK {
		if math.Abs(srcNum-dstNum) <= 0.001 {
			return nil
		}
		pct := 100.0
		if srcNum != 0 {
			pct = math.Abs((dstNum - srcNum) / srcNum * 100)
		}
		if pct > quantityDriftPct {
			return []Issue{{
				Path:     path,
				Severity: SeverityAdvisory,
				Message:  fmt.Sprintf("amount changed from %v to %v (%.1f%% difference)", src, dst, pct),
			}}
		}
		return nil
	}

	if fmt.Sprintf("%v", src) != fmt.Sprintf("%v", dst) {
		return []Issue{{
			Path:     path,
			Severity: SeverityAdvisory,
			Message:  fmt.Sprintf("amount changed from %v to %v", src, dst),
		}}
	}
	return nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any, cloudshift.Block:
		return "mapping"
	case []any:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int32, int64, uint64, float32, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func asMap(v any) map[string]any {
	switch val := v.(type) {
	case map[string]any:
		return val
	case cloudshift.Block:
		return val
	default:
		return nil
	}
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func sortedKeys(b cloudshift.Block) []string {
	return sortedMapKeys(map[string]any(b))
}

// sortedMapKeys keeps issue ordering deterministic across runs.
func sortedMapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
