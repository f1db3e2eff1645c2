package models

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider drives decisions through the OpenAI chat API.
type OpenAIProvider struct {
	Client *openai.Client
	Model  string
}

// NewOpenAIProvider reads OPENAI_API_KEY (OPENAI_KEY as fallback).
func NewOpenAIProvider(model string) *OpenAIProvider {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_KEY") // fallback
	}
	return &OpenAIProvider{Client: openai.NewClient(apiKey), Model: model}
}

func (o *OpenAIProvider) Decide(ctx context.Context, req Request) (Decision, error) {
	model := req.Model
	if model == "" {
		model = o.Model
	}

	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: buildDecisionPrompt(req),
		}},
	})
	if err != nil {
		return Decision{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Decision{}, errors.New("no response from OpenAI")
	}

	return parseDecision(resp.Choices[0].Message.Content)
}

var _ Provider = (*OpenAIProvider)(nil)
