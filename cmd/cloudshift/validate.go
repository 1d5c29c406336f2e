package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudshift-ai/cloudshift"
	"github.com/cloudshift-ai/cloudshift/blockio"
	"github.com/cloudshift-ai/cloudshift/provider"
	"github.com/cloudshift-ai/cloudshift/validate"
)

var (
	validateSource     string
	validateTarget     string
	validateSourceFile string
	validateResultFile string
	validateModel      string
	validateUseAI      bool
	validateMock       bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a translated manifest against its source",
	Long: `Validate runs the free structural check on every resource pair and,
with --ai, an additional model-scored semantic check. Resources are paired
by position.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateSource, "source", "", "source cloud provider")
	validateCmd.Flags().StringVar(&validateTarget, "target", "", "target cloud provider")
	validateCmd.Flags().StringVar(&validateSourceFile, "input", "", "source manifest YAML")
	validateCmd.Flags().StringVar(&validateResultFile, "translated", "", "translated manifest YAML")
	validateCmd.Flags().StringVar(&validateModel, "model", "", "model catalog entry for the semantic check")
	validateCmd.Flags().BoolVar(&validateUseAI, "ai", false, "run the model-scored semantic check (costs a model call per resource)")
	validateCmd.Flags().BoolVar(&validateMock, "mock", false, "use the built-in mock scorer")
	_ = validateCmd.MarkFlagRequired("source")
	_ = validateCmd.MarkFlagRequired("target")
	_ = validateCmd.MarkFlagRequired("input")
	_ = validateCmd.MarkFlagRequired("translated")
}

func runValidate(cmd *cobra.Command, args []string) error {
	sourceManifest, err := blockio.LoadYAML(validateSourceFile)
	if err != nil {
		return err
	}
	translatedManifest, err := blockio.LoadYAML(validateResultFile)
	if err != nil {
		return err
	}
	if len(sourceManifest.Resources) != len(translatedManifest.Resources) {
		return fmt.Errorf("manifest size mismatch: %d source resources, %d translated",
			len(sourceManifest.Resources), len(translatedManifest.Resources))
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	opts := validate.Options{UseAI: validateUseAI}
	if validateUseAI {
		if validateMock {
			opts.ScoreFn = provider.NewMockProvider().Score
		} else {
			model, err := cfg.Model(validateModel)
			if err != nil {
				return err
			}
			opts.ModelID = model.ID
			opts.ScoreFn = newOpenAIProvider().Score
		}
	}

	runner := validate.NewRunner(store)
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	failed := 0
	for i, source := range sourceManifest.Resources {
		translated := translatedManifest.Resources[i]
		report, err := runner.Validate(cmd.Context(), source, translated,
			validateSource, validateTarget, opts)
		if err != nil {
			return err
		}
		if report.HasStructuralIssues() {
			failed++
		}

		fmt.Fprintf(out, "resource %s:\n", fallbackID(source, i))
		if err := enc.Encode(report); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d resources have structural issues",
			failed, len(sourceManifest.Resources))
	}
	return nil
}

func fallbackID(b cloudshift.Block, i int) string {
	if id := b.ID(); id != "" {
		return id
	}
	return fmt.Sprintf("#%d", i)
}
