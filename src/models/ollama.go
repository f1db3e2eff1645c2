package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// ---------------------------- Ollama -----------------------------------------

// OllamaProvider drives decisions through a local Ollama server.
type OllamaProvider struct {
	Client *ollama.Client
	Model  string
}

// NewOllamaProvider connects to OLLAMA_HOST (default localhost:11434).
// The model passed here is the fallback when the request names none.
func NewOllamaProvider(model string) (*OllamaProvider, error) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://localhost:11434"
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}

	return &OllamaProvider{
		Client: ollama.NewClient(u, httpClient),
		Model:  model,
	}, nil
}

func (o *OllamaProvider) Decide(ctx context.Context, req Request) (Decision, error) {
	model := req.Model
	if model == "" {
		model = o.Model
	}

	var text strings.Builder
	genReq := &ollama.GenerateRequest{
		Model:  model,
		Prompt: buildDecisionPrompt(req),
	}
	if err := o.Client.Generate(ctx, genReq, func(gr ollama.GenerateResponse) error {
		if gr.Response != "" {
			text.WriteString(gr.Response)
		}
		return nil
	}); err != nil {
		return Decision{}, fmt.Errorf("ollama generate: %w", err)
	}

	return parseDecision(text.String())
}

var _ Provider = (*OllamaProvider)(nil)
