package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudshift-ai/cloudshift"
)

func sampleComparison() *Comparison {
	return &Comparison{
		SourceProvider: "aws",
		TargetProvider: "gcp",
		Entries: []Entry{
			{
				ResourceID: "app-servers",
				Original: cloudshift.Block{
					"id":            "app-servers",
					"service":       "ec2",
					"resource_type": "instance",
					"configuration": map[string]any{"instance_type": "t3.medium"},
				},
				Translations: map[string]cloudshift.Block{
					"fast": {
						"id":            "app-servers",
						"service":       "Compute Engine",
						"resource_type": "gce-instance",
					},
					"accurate": {
						"id":            "app-servers",
						"service":       "Compute Engine",
						"resource_type": "gce-instance",
						"configuration": map[string]any{"machine_type": "e2-medium"},
					},
				},
			},
		},
	}
}

func TestWriteComparison(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleComparison()))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	assert.Contains(t, doc.Find("h1").Text(), "AWS to GCP")
	assert.Contains(t, doc.Find("h2").Text(), "app-servers")

	// Model columns are sorted by name for a stable layout.
	var headers []string
	doc.Find("th").Each(func(i int, s *goquery.Selection) {
		headers = append(headers, s.Text())
	})
	require.Len(t, headers, 3)
	assert.Contains(t, headers[0], "Original")
	assert.Equal(t, "accurate", headers[1])
	assert.Equal(t, "fast", headers[2])

	// Documents render as YAML with conventional key order.
	cells := doc.Find("td pre")
	require.Equal(t, 3, cells.Length())
	original := cells.First().Text()
	assert.Contains(t, original, "service: ec2")
	assert.Less(t, strings.Index(original, "id:"), strings.Index(original, "service:"))
}

func TestWriteComparisonMissingTranslation(t *testing.T) {
	cmp := &Comparison{
		SourceProvider: "aws",
		TargetProvider: "azure",
		Entries: []Entry{{
			ResourceID:   "db",
			Original:     cloudshift.Block{"id": "db", "service": "rds", "resource_type": "postgres"},
			Translations: map[string]cloudshift.Block{"fast": nil},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cmp))
	assert.Contains(t, buf.String(), "(no translation)")
}

func TestWriteComparisonEscapesContent(t *testing.T) {
	cmp := &Comparison{
		SourceProvider: "aws",
		TargetProvider: "gcp",
		Entries: []Entry{{
			ResourceID: "<script>alert(1)</script>",
			Original:   cloudshift.Block{"id": "x", "service": "s", "resource_type": "t"},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cmp))
	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, WriteFile(path, sampleComparison()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<!DOCTYPE html>")
}
