// Command cloudshift is the command-line front end of the translation
// pipeline. It stays thin: all caching, coalescing and validation logic
// lives in the library packages.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cloudshift-ai/cloudshift"
	"github.com/cloudshift-ai/cloudshift/cache"
	"github.com/cloudshift-ai/cloudshift/config"
	"github.com/cloudshift-ai/cloudshift/metrics"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "cloudshift",
	Short:   "Translate cloud infrastructure configurations between providers",
	Version: cloudshift.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cfg.MetricsAddr != "" {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
					slog.Warn("metrics server stopped", "error", err)
				}
			}()
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults)")
	rootCmd.AddCommand(translateCmd, validateCmd, statsCmd, clearCmd, exportCmd, importCmd)
}

// openStore builds the configured cache backend.
func openStore(ctx context.Context) (cloudshift.Store, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryStore(), nil
	case "redis":
		return cache.NewRedisStore(cache.RedisConfig{
			URL:       cfg.Cache.Redis.URL,
			TTL:       cfg.Cache.Redis.TTL,
			KeyPrefix: cfg.Cache.Redis.KeyPrefix,
		})
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Cache.Mongo.URI))
		if err != nil {
			return nil, err
		}
		return cache.NewMongoStore(client.Database(cfg.Cache.Mongo.Database)), nil
	default:
		return cache.OpenFileStore(cfg.Cache.Dir)
	}
}
