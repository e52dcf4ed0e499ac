package emotion

import (
	"errors"
	"fmt"
)

var (
	// ErrShape matches a [ShapeError].
	ErrShape = errors.New("emotion: feature shape mismatch")

	// ErrUnmappedLabel matches an [UnmappedLabelError].
	ErrUnmappedLabel = errors.New("emotion: unmapped class code")

	// ErrUnknownEmotion is returned for emotion codes outside the
	// compression table.
	ErrUnknownEmotion = errors.New("emotion: unknown emotion code")
)

// ShapeError reports a feature vector whose length differs from the
// classifier's input dimension.
type ShapeError struct {
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("emotion: classifier expects %d features, got %d", e.Want, e.Got)
}

func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// UnmappedLabelError reports a class code missing from the label table.
type UnmappedLabelError struct {
	Code int
}

func (e *UnmappedLabelError) Error() string {
	return fmt.Sprintf("emotion: class code %d has no label", e.Code)
}

func (e *UnmappedLabelError) Is(target error) bool {
	return target == ErrUnmappedLabel
}
