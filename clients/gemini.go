package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

var errEmptyGeneration = errors.New("gemini: empty response")

// Gemini is a thin wrapper around the genai client for short text completions.
type Gemini struct {
	cli   *genai.Client
	model string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{cli: cli, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	temp := float32(0.2)
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{Temperature: &temp, MaxOutputTokens: 120},
	)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyGeneration
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errEmptyGeneration
	}
	return text, nil
}
