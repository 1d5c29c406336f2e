// Package cloudshift translates cloud-infrastructure resource documents
// between providers (AWS, Azure, GCP) using an injected AI translation
// function, with content-addressed caching, an append-only edit history,
// and a two-phase (structural + AI) validation pipeline.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/cloudshift-ai/cloudshift"
//	    "github.com/cloudshift-ai/cloudshift/cache"
//	    "github.com/cloudshift-ai/cloudshift/provider"
//	)
//
//	func main() {
//	    store, err := cache.OpenFileStore("cache")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer store.Close()
//
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    engine := cloudshift.New(store)
//	    block := cloudshift.Block{
//	        "id": "app-servers", "service": "ec2", "resource_type": "instance",
//	        "region": "us-east-1",
//	        "configuration": map[string]any{"instance_type": "t3.medium"},
//	    }
//
//	    translated, outcome, err := engine.Translate(
//	        context.Background(), block, "aws", "gcp", "gpt-4o-mini", p.Translate)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(outcome, translated["service"])
//	}
//
// The AI call itself is always an injected function, so the engine's caching,
// coalescing and error handling are testable with deterministic fakes.
package cloudshift
