package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudshift-ai/cloudshift"
	"github.com/cloudshift-ai/cloudshift/cache"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(),
			"records: %d\nuser-edited: %d\nsize: %d bytes\n",
			stats.TotalRecords, stats.EditedCount, stats.TotalSizeBytes)
		return nil
	},
}

var clearScope string

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Irreversibly clear cached translations or edit history",
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := parseClearScope(clearScope)
		if err != nil {
			return err
		}

		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Clear(cmd.Context(), scope); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cache cleared (scope %s)\n", scope)
		return nil
	},
}

func parseClearScope(s string) (cloudshift.ClearScope, error) {
	scope := cloudshift.ClearScope(s)
	switch scope {
	case cloudshift.ClearAll, cloudshift.ClearTranslations, cloudshift.ClearEdits:
		return scope, nil
	default:
		return "", fmt.Errorf("unknown scope %q (want all, translations or edits)", s)
	}
}

var (
	exportPath string
	importPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the cache to a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		metadata := map[string]string{"cloudshift_version": cloudshift.Version}
		if err := cache.NewExporter(store).ExportToFile(cmd.Context(), exportPath, metadata); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cache exported to %s\n", exportPath)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import cache records from a JSON export",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := cache.NewImporter(store).ImportFromFile(cmd.Context(), importPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d records (%d failed)\n",
			result.Imported, result.Failed)
		return nil
	},
}

func init() {
	clearCmd.Flags().StringVar(&clearScope, "scope", "all", "what to clear: all, translations or edits")
	exportCmd.Flags().StringVar(&exportPath, "out", "cache-export.json", "output path")
	importCmd.Flags().StringVar(&importPath, "in", "", "input path")
	_ = importCmd.MarkFlagRequired("in")
}
