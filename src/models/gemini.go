package models

import (
	"context"
	"errors"
	"fmt"
	"os"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ---------------------------- Google Gemini ----------------------------------

// GeminiProvider drives decisions through the Gemini API.
type GeminiProvider struct {
	Client *genai.Client
	Model  string
}

// NewGeminiProvider reads GOOGLE_API_KEY (GEMINI_API_KEY as fallback).
func NewGeminiProvider(ctx context.Context, model string) (*GeminiProvider, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiProvider{Client: client, Model: model}, nil
}

func (g *GeminiProvider) Decide(ctx context.Context, req Request) (Decision, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = g.Model
	}
	model := g.Client.GenerativeModel(modelName)

	resp, err := model.GenerateContent(ctx, genai.Text(buildDecisionPrompt(req)))
	if err != nil {
		return Decision{}, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Decision{}, errors.New("gemini: empty response")
	}

	return parseDecision(fmt.Sprint(resp.Candidates[0].Content.Parts[0]))
}

var _ Provider = (*GeminiProvider)(nil)
