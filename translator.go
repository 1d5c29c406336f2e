package cloudshift

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cloudshift-ai/cloudshift/metrics"
)

// Engine orchestrates translation requests: it fingerprints the request,
// consults the cache store, and on a miss invokes the injected translation
// function, coalescing concurrent requests for the same key into a single
// external call.
type Engine struct {
	store  Store
	logger *slog.Logger
	group  singleflight.Group
}

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates a translation engine backed by the given store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the engine's cache store.
func (e *Engine) Store() Store {
	return e.store
}

// missResult carries the shared result of one coalesced external call.
type missResult struct {
	block  Block
	putErr error
}

// Translate returns the translated form of block for the given direction and
// model. On a cache hit the stored translation is returned without invoking
// fn. On a miss fn is called at most once per key across concurrent callers;
// its result is shape-checked and stored before being returned.
//
// A failed or malformed external call surfaces as a TranslationError and is
// never cached. If the translation succeeds but the durable write fails, the
// translated block is returned together with a StoreWriteError so the caller
// can still use the result.
func (e *Engine) Translate(ctx context.Context, block Block, sourceProvider, targetProvider, modelID string, fn TranslateFunc) (Block, Outcome, error) {
	key := Fingerprint(block, sourceProvider, targetProvider, modelID)

	if rec, ok := e.store.Lookup(ctx, key); ok {
		metrics.IncTranslation(OutcomeHit.String())
		e.logger.Debug("cache hit", "key", key, "id", block.ID(), "model", modelID)
		return rec.CurrentBlock().Clone(), OutcomeHit, nil
	}

	v, err, shared := e.group.Do(key, func() (any, error) {
		return e.translateMiss(ctx, key, block, sourceProvider, targetProvider, modelID, fn)
	})
	if err != nil {
		metrics.IncError("engine", "translation")
		return nil, OutcomeMiss, err
	}

	res := v.(missResult)
	if shared {
		e.logger.Debug("coalesced in-flight translation", "key", key, "id", block.ID())
	}
	metrics.IncTranslation(OutcomeMiss.String())
	if res.putErr != nil {
		return res.block.Clone(), OutcomeMiss, res.putErr
	}
	return res.block.Clone(), OutcomeMiss, nil
}

// translateMiss performs the external call and stores the result. Runs at
// most once per in-flight key.
func (e *Engine) translateMiss(ctx context.Context, key string, block Block, sourceProvider, targetProvider, modelID string, fn TranslateFunc) (missResult, error) {
	e.logger.Info("cache miss, querying model",
		"key", key, "id", block.ID(),
		"source", sourceProvider, "target", targetProvider, "model", modelID)
	metrics.IncLLMRequest(modelID)

	translated, err := fn(ctx, block, sourceProvider, targetProvider, modelID)
	if err != nil {
		return missResult{}, &TranslationError{Message: "external translation call failed", Cause: err}
	}
	if err := translated.CheckShape(); err != nil {
		return missResult{}, &TranslationError{Message: "model returned malformed document", Cause: err}
	}

	rec := &Record{
		Key:            key,
		Translated:     translated.Clone(),
		SourceProvider: sourceProvider,
		TargetProvider: targetProvider,
		ModelID:        modelID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := e.store.Put(ctx, key, rec); err != nil {
		e.logger.Error("storing translation failed", "key", key, "error", err)
		metrics.IncError("engine", "store_write")
		return missResult{block: translated, putErr: err}, nil
	}
	return missResult{block: translated}, nil
}
