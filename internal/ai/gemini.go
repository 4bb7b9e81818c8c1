package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// model kept in one place; flash is cheap and plenty for 3-4 sentences.
const geminiModel = "gemini-2.5-flash"

// Gemini implements Generator against the Gemini API.
type Gemini struct {
	client *genai.Client
}

// NewGemini constructs the client. The API key is required; there is no
// anonymous mode.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("ai: api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: create client: %w", err)
	}

	return &Gemini{client: client}, nil
}

func (g *Gemini) GenerateStory(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, geminiModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("ai: generate content: %w", err)
	}

	story := strings.TrimSpace(result.Text())
	if story == "" {
		return "", errors.New("ai: model returned empty response")
	}
	return story, nil
}
