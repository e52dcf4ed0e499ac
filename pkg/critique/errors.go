package critique

import (
	"errors"

	"github.com/rahul24/CritiqueForTeams/pkg/emotion"
	"github.com/rahul24/CritiqueForTeams/pkg/mlp"
)

// Errors returned by the pipeline. Every one is fatal to the call that
// produced it; nothing is retried.
var (
	// ErrDecode: the audio could not be read, was malformed, or held no
	// samples.
	ErrDecode = errors.New("critique: cannot decode audio")

	// ErrShape: the feature vector length differs from the classifier's
	// input dimension.
	ErrShape = emotion.ErrShape

	// ErrUnmappedLabel: the classifier produced, or can produce, a class
	// code the label table does not map.
	ErrUnmappedLabel = emotion.ErrUnmappedLabel

	// ErrModelLoad: the classifier artifact is missing or corrupt.
	ErrModelLoad = mlp.ErrModelLoad
)
