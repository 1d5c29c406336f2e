package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudshift-ai/cloudshift"
	"github.com/cloudshift-ai/cloudshift/blockio"
	"github.com/cloudshift-ai/cloudshift/provider"
	"github.com/cloudshift-ai/cloudshift/report"
)

var (
	translateSource  string
	translateTarget  string
	translateInput   string
	translateOutput  string
	translateModel   string
	translateCompare string
	translateWorkers int
	translateMock    bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a resource manifest to another provider's schema",
	RunE:  runTranslate,
}

func init() {
	translateCmd.Flags().StringVar(&translateSource, "source", "", "source cloud provider (aws|azure|gcp)")
	translateCmd.Flags().StringVar(&translateTarget, "target", "", "target cloud provider (aws|azure|gcp)")
	translateCmd.Flags().StringVar(&translateInput, "input", "", "path to the source manifest YAML")
	translateCmd.Flags().StringVar(&translateOutput, "output", "", "path for the translated manifest YAML")
	translateCmd.Flags().StringVar(&translateModel, "model", "", "model catalog entry to use (default: configured default_model)")
	translateCmd.Flags().StringVar(&translateCompare, "compare-report", "", "write an HTML comparison across all catalog models to this path")
	translateCmd.Flags().IntVar(&translateWorkers, "workers", 4, "concurrent translation workers")
	translateCmd.Flags().BoolVar(&translateMock, "mock", false, "use the built-in mock provider instead of a real model")
	_ = translateCmd.MarkFlagRequired("source")
	_ = translateCmd.MarkFlagRequired("target")
	_ = translateCmd.MarkFlagRequired("input")
	_ = translateCmd.MarkFlagRequired("output")
}

// buildTranslateFunc wires the provider call with the configured retry and
// rate limit wrappers.
func buildTranslateFunc() cloudshift.TranslateFunc {
	var fn cloudshift.TranslateFunc
	if translateMock {
		fn = provider.NewMockProvider().Translate
	} else {
		fn = newOpenAIProvider().Translate
	}

	fn = provider.NewBreakerTranslateFunc(fn, provider.NewBreaker(provider.BreakerConfig{}))
	fn = cloudshift.NewRetryableTranslateFunc(fn, cloudshift.RetryConfig{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  time.Duration(cfg.Retry.BaseDelaySeconds) * time.Second,
		MaxDelay:   time.Duration(cfg.Retry.MaxDelaySeconds) * time.Second,
	})
	fn = cloudshift.NewRateLimitedTranslateFunc(fn, cloudshift.NewRateLimiter(cloudshift.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		BurstSize:         cfg.RateLimit.BurstSize,
	}))
	return fn
}

func newOpenAIProvider() *provider.OpenAIProvider {
	return provider.NewOpenAIProvider(provider.OpenAIConfig{
		APIKey:             cfg.OpenAI.APIKey,
		BaseURL:            cfg.OpenAI.BaseURL,
		SystemPrompt:       cfg.Prompts.System,
		UserTemplate:       cfg.Prompts.UserTemplate,
		ValidationTemplate: cfg.Prompts.ValidationTemplate,
	})
}

func runTranslate(cmd *cobra.Command, args []string) error {
	if err := cloudshift.CheckDirection(translateSource, translateTarget); err != nil {
		return err
	}

	manifest, err := blockio.LoadYAML(translateInput)
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	engine := cloudshift.New(store)
	fn := buildTranslateFunc()

	if translateCompare != "" {
		return runComparison(cmd, engine, fn, manifest)
	}

	model, err := cfg.Model(translateModel)
	if err != nil && !translateMock {
		return err
	}

	results, summary := engine.TranslateBatch(cmd.Context(), manifest.Resources,
		translateSource, translateTarget, model.ID, fn, translateWorkers)

	out := &blockio.Manifest{Version: 1, Provider: translateTarget}
	for i, res := range results {
		if res.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping resource %s: %v\n",
				manifest.Resources[i].ID(), res.Err)
			continue
		}
		out.Resources = append(out.Resources, res.Block)
	}

	if err := blockio.SaveYAML(translateOutput, out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"translated %d resources (%d cache hits, %d model calls, %d failed) -> %s\n",
		summary.Total, summary.Hits, summary.Misses, summary.Failed, translateOutput)
	return nil
}

// runComparison translates every resource with every catalog model and
// writes the side-by-side HTML report.
func runComparison(cmd *cobra.Command, engine *cloudshift.Engine, fn cloudshift.TranslateFunc, manifest *blockio.Manifest) error {
	models := cfg.ModelNames()
	if len(models) == 0 {
		return fmt.Errorf("comparison run needs a model catalog in the config")
	}

	cmp := &report.Comparison{
		SourceProvider: translateSource,
		TargetProvider: translateTarget,
	}
	for _, res := range manifest.Resources {
		entry := report.Entry{
			ResourceID:   res.ID(),
			Original:     res,
			Translations: make(map[string]cloudshift.Block, len(models)),
		}
		for _, name := range models {
			info := cfg.Models[name]
			translated, _, err := engine.Translate(cmd.Context(), res,
				translateSource, translateTarget, info.ID, fn)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "model %s failed on %s: %v\n", name, res.ID(), err)
				continue
			}
			entry.Translations[name] = translated
		}
		cmp.Entries = append(cmp.Entries, entry)
	}

	if err := report.WriteFile(translateCompare, cmp); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "comparison report written to %s\n", translateCompare)
	return nil
}
