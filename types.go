package cloudshift

import (
	"context"
	"fmt"
	"time"
)

// Block is a single resource description: a semi-structured document of
// nested mappings, sequences and scalars. Conventional top-level keys are
// "id", "service", "resource_type", "region", "quantity" and "configuration",
// but shapes diverge across providers and the engine never interprets their
// domain meaning, only structure and hash.
type Block map[string]any

// ID returns the block's "id" field, or "" when absent. Provider-native
// formats may omit it.
func (b Block) ID() string {
	if id, ok := b["id"].(string); ok {
		return id
	}
	return ""
}

// Clone returns a deep copy of the block. Edit history snapshots must not
// alias live documents.
func (b Block) Clone() Block {
	if b == nil {
		return nil
	}
	return cloneValue(map[string]any(b)).(map[string]any)
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case Block:
		return cloneValue(map[string]any(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

// shapeKeys are the top-level keys a translated document must carry to be
// considered structurally usable. "id" is excluded: provider-native formats
// may drop it.
var shapeKeys = []string{"service", "resource_type"}

// CheckShape performs the minimal shape check applied before a translation
// result is cached or a suggested correction is accepted: the document must
// be a non-empty mapping carrying the expected top-level keys.
func (b Block) CheckShape() error {
	if len(b) == 0 {
		return fmt.Errorf("document is empty")
	}
	for _, key := range shapeKeys {
		if _, ok := b[key]; !ok {
			return fmt.Errorf("missing top-level key %q", key)
		}
	}
	return nil
}

// EditReason classifies why an edit history entry was written.
type EditReason string

const (
	// EditReasonUser marks a manual correction applied by a user.
	EditReasonUser EditReason = "user_edit"
	// EditReasonValidation marks an accepted AI validation suggestion.
	EditReasonValidation EditReason = "validation_acceptance"
)

// EditEntry is one immutable snapshot in a record's edit history. Entries are
// append-only and chronologically ordered; replaying them backward recovers
// any previous version of the translation.
type EditEntry struct {
	ID        string     `json:"id" bson:"id"`
	Timestamp time.Time  `json:"timestamp" bson:"timestamp"`
	Previous  Block      `json:"previous" bson:"previous"`
	New       Block      `json:"new" bson:"new"`
	Reason    EditReason `json:"reason" bson:"reason"`
}

// Record is a stored translation result plus its metadata. Records are owned
// by the cache store: created on the first successful translation, hit count
// incremented on every subsequent lookup, edit history appended on every
// accepted edit, removed only by an explicit clear.
type Record struct {
	Key            string      `json:"key" bson:"_id"`
	Translated     Block       `json:"translated" bson:"translated"`
	SourceProvider string      `json:"source_provider" bson:"source_provider"`
	TargetProvider string      `json:"target_provider" bson:"target_provider"`
	ModelID        string      `json:"model_id" bson:"model_id"`
	CreatedAt      time.Time   `json:"created_at" bson:"created_at"`
	HitCount       int         `json:"hit_count" bson:"hit_count"`
	UserEdited     bool        `json:"user_edited" bson:"user_edited"`
	EditHistory    []EditEntry `json:"edit_history,omitempty" bson:"edit_history,omitempty"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Translated = r.Translated.Clone()
	if r.EditHistory != nil {
		out.EditHistory = make([]EditEntry, len(r.EditHistory))
		for i, e := range r.EditHistory {
			e.Previous = e.Previous.Clone()
			e.New = e.New.Clone()
			out.EditHistory[i] = e
		}
	}
	return &out
}

// CurrentBlock returns the latest accepted version of the translation: the
// newest edit history entry when present, the stored translation otherwise.
func (r *Record) CurrentBlock() Block {
	if n := len(r.EditHistory); n > 0 {
		return r.EditHistory[n-1].New
	}
	return r.Translated
}

// Stats summarizes a cache store for reporting frontends.
type Stats struct {
	TotalRecords   int   `json:"total_records"`
	EditedCount    int   `json:"edited_count"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}

// ClearScope selects what an irreversible cache clear removes.
type ClearScope string

const (
	// ClearAll removes every record.
	ClearAll ClearScope = "all"
	// ClearTranslations removes every record. Alias of ClearAll kept for
	// callers that distinguish the two scopes.
	ClearTranslations ClearScope = "translations"
	// ClearEdits resets edit history and the user-edited flag on every
	// record but keeps the base translations.
	ClearEdits ClearScope = "edits"
)

// Outcome reports how a translation request was satisfied.
type Outcome int

const (
	// OutcomeMiss means the external translation function was invoked (or
	// its in-flight result was shared) and the result stored.
	OutcomeMiss Outcome = iota
	// OutcomeHit means a stored translation was returned.
	OutcomeHit
)

func (o Outcome) String() string {
	if o == OutcomeHit {
		return "hit"
	}
	return "miss"
}

// Store is the durable key-to-record mapping the engine and the validation
// runner write through. Implementations live in the cache package.
//
// Implementations serialize writes per key; reads may proceed concurrently.
// A store whose backing data is unreadable degrades to an empty store rather
// than failing the translation pipeline.
type Store interface {
	// Lookup returns the record for key, or nil and false when absent. On a
	// hit the hit count is incremented and persisted best-effort: a failed
	// increment is logged, never surfaced.
	Lookup(ctx context.Context, key string) (*Record, bool)

	// Put creates or replaces the record under key. The replace is atomic
	// from the caller's perspective.
	Put(ctx context.Context, key string, rec *Record) error

	// AppendEdit appends an entry to the record's edit history and sets the
	// user-edited flag, durably. Returns a NotFoundError when key is absent.
	AppendEdit(ctx context.Context, key string, entry EditEntry) error

	// Stats reports record counts and backing size.
	Stats(ctx context.Context) (Stats, error)

	// Clear irreversibly removes records or edit history per scope.
	Clear(ctx context.Context, scope ClearScope) error

	// Close releases backing resources.
	Close() error
}

// TranslateFunc is the externally supplied translation call: an opaque
// remote function mapping a source document to a target-provider document.
type TranslateFunc func(ctx context.Context, block Block, sourceProvider, targetProvider, modelID string) (Block, error)
