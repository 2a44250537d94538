package generator

import (
	"errors"
	"fmt"
)

// GenerationError means the model could not produce text: transport, quota or
// provider errors, or an empty completion.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func generationFailed(provider string, err error) error {
	return &GenerationError{Provider: provider, Err: err}
}

var (
	ErrEmptyCompletion = errors.New("model returned no text")
	ErrNoTagList       = errors.New("no bracketed list in model output")
)

// ParseError means model output did not have the expected structure.
type ParseError struct {
	Kind string // what was being parsed, e.g. "tags"
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsGenerationError reports whether err wraps a *GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
