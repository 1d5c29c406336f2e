// Package provider implements the external AI collaborators: the translation
// and scoring calls the engine treats as opaque injected functions.
package provider

import (
	"github.com/cloudshift-ai/cloudshift"
	"github.com/cloudshift-ai/cloudshift/validate"
)

// TranslateFunc is an alias to the engine's injected translation function
// type for convenience.
type TranslateFunc = cloudshift.TranslateFunc

// ScoreFunc is an alias to the semantic validator's injected scoring
// function type.
type ScoreFunc = validate.ScoreFunc
