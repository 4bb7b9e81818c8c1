// Package ai generates short narratives for photos.
package ai

import (
	"context"
	"errors"
)

// ErrUnavailable means no generator is configured.
var ErrUnavailable = errors.New("ai: story generation is not configured")

// Generator produces a short story from a prompt.
type Generator interface {
	GenerateStory(ctx context.Context, prompt string) (string, error)
}

type disabled struct{}

// NewDisabled returns a Generator that always refuses. Used when no API
// key is configured so the rest of the app can wire up normally.
func NewDisabled() Generator { return &disabled{} }

func (d *disabled) GenerateStory(context.Context, string) (string, error) {
	return "", ErrUnavailable
}
