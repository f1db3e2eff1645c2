package models

import (
	"context"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider drives decisions through Anthropic's Messages API.
type AnthropicProvider struct {
	Client    *anthropic.Client
	Model     string
	MaxTokens int
}

// NewAnthropicProvider constructs a client. It reads ANTHROPIC_API_KEY
// from the env.
func NewAnthropicProvider(model string) *AnthropicProvider {
	key := os.Getenv("ANTHROPIC_API_KEY")
	cl := anthropic.NewClient(
		anthropicopt.WithAPIKey(key),
	)
	return &AnthropicProvider{
		Client:    &cl,
		Model:     model, // e.g. "claude-3-5-sonnet-latest"
		MaxTokens: 1024,
	}
}

func (a *AnthropicProvider) Decide(ctx context.Context, req Request) (Decision, error) {
	model := req.Model
	if model == "" {
		model = a.Model
	}

	msg, err := a.Client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(a.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildDecisionPrompt(req))),
		},
	})
	if err != nil {
		return Decision{}, fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return parseDecision(b.String())
}

var _ Provider = (*AnthropicProvider)(nil)
