// Package report renders side-by-side HTML comparison reports of a source
// manifest against its translations, optionally across several models.
package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cloudshift-ai/cloudshift"
	"github.com/cloudshift-ai/cloudshift/blockio"
)

// Entry is one resource row of the comparison: the original document and its
// translation per model name.
type Entry struct {
	ResourceID   string
	Original     cloudshift.Block
	Translations map[string]cloudshift.Block
}

// Comparison is the full report input.
type Comparison struct {
	SourceProvider string
	TargetProvider string
	Entries        []Entry
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Cloud Translation Comparison</title>
<style>
body { font-family: sans-serif; margin: 2em; background-color: #f0f2f6; }
table { width: 100%; border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #ddd; padding: 12px; text-align: left; vertical-align: top; }
th { background-color: #e9ecef; color: #495057; }
pre { white-space: pre-wrap; word-wrap: break-word; background-color: #fff; padding: 10px; border-radius: 5px; border: 1px solid #eee; }
h1, h2 { color: #333; border-bottom: 2px solid #ccc; padding-bottom: 10px; }
</style>
</head>
<body>
<h1>Translation Comparison: {{.Source}} to {{.Target}}</h1>
{{range .Rows}}
<h2>Resource: {{.ResourceID}}</h2>
<table>
<tr>
<th>Original {{$.Source}}</th>
{{range .Models}}<th>{{.}}</th>{{end}}
</tr>
<tr>
<td><pre>{{.OriginalYAML}}</pre></td>
{{range .TranslationYAML}}<td><pre>{{.}}</pre></td>{{end}}
</tr>
</table>
{{end}}
</body>
</html>
`))

type reportRow struct {
	ResourceID      string
	Models          []string
	OriginalYAML    string
	TranslationYAML []string
}

type reportData struct {
	Source string
	Target string
	Rows   []reportRow
}

// Write renders the comparison as a standalone HTML document.
func Write(w io.Writer, cmp *Comparison) error {
	data := reportData{
		Source: strings.ToUpper(cmp.SourceProvider),
		Target: strings.ToUpper(cmp.TargetProvider),
	}

	for _, entry := range cmp.Entries {
		row := reportRow{ResourceID: entry.ResourceID}

		models := make([]string, 0, len(entry.Translations))
		for model := range entry.Translations {
			models = append(models, model)
		}
		sort.Strings(models)
		row.Models = models

		original, err := renderBlockYAML(entry.Original)
		if err != nil {
			return fmt.Errorf("rendering resource %s: %w", entry.ResourceID, err)
		}
		row.OriginalYAML = original

		for _, model := range models {
			rendered, err := renderBlockYAML(entry.Translations[model])
			if err != nil {
				return fmt.Errorf("rendering %s translation of %s: %w", model, entry.ResourceID, err)
			}
			row.TranslationYAML = append(row.TranslationYAML, rendered)
		}
		data.Rows = append(data.Rows, row)
	}

	return reportTemplate.Execute(w, data)
}

// WriteFile renders the comparison to an HTML file.
// The path is provided by the caller and is intentionally user-controlled.
func WriteFile(path string, cmp *Comparison) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return err
	}
	defer f.Close()
	return Write(f, cmp)
}

// renderBlockYAML renders a block with conventional key ordering.
func renderBlockYAML(b cloudshift.Block) (string, error) {
	if b == nil {
		return "(no translation)", nil
	}
	raw, err := yaml.Marshal(blockio.Reorder(b))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
