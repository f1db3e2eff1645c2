package agentexec

import (
	"context"
	"errors"
	"testing"

	"github.com/universal-tool-calling-protocol/go-utcp/src/tools"

	"github.com/lattice-agents/agentexec/src/params"
)

type fakeUTCPClient struct {
	lastTool string
	lastArgs map[string]any
	out      any
	err      error
	known    []string
}

func (c *fakeUTCPClient) CallTool(_ context.Context, toolName string, args map[string]any) (any, error) {
	c.lastTool = toolName
	c.lastArgs = args
	if c.err != nil {
		return nil, c.err
	}
	return c.out, nil
}

func (c *fakeUTCPClient) SearchTools(_ string, _ int) ([]tools.Tool, error) {
	out := make([]tools.Tool, 0, len(c.known))
	for _, name := range c.known {
		out = append(out, tools.Tool{Name: name})
	}
	return out, nil
}

func TestUTCPToolDecodesArgumentsByName(t *testing.T) {
	client := &fakeUTCPClient{out: "sunny, 21C"}
	desc := params.InputDescription{
		{Type: params.TypeString, Name: "city"},
		{Type: params.TypeBool, Name: "detailed"},
	}
	tool, err := NewUTCPTool(client, "weather.current", "weather", "current conditions", desc, nil)
	if err != nil {
		t.Fatalf("NewUTCPTool: %v", err)
	}

	input, err := MarshalArguments(desc, map[string]string{"city": "Oslo", "detailed": "true"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	id, out, err := tool.Run(context.Background(), input, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if id != SentinelRunID {
		t.Fatalf("id = %d", id)
	}
	if out != "sunny, 21C" {
		t.Fatalf("out = %q", out)
	}
	if client.lastTool != "weather.current" {
		t.Fatalf("remote = %q", client.lastTool)
	}
	if client.lastArgs["city"] != "Oslo" || client.lastArgs["detailed"] != true {
		t.Fatalf("args = %v", client.lastArgs)
	}
}

func TestUTCPToolWrapsCallFailure(t *testing.T) {
	boom := errors.New("transport down")
	tool, err := NewUTCPTool(&fakeUTCPClient{err: boom}, "weather.current", "", "", params.InputDescription{}, nil)
	if err != nil {
		t.Fatalf("NewUTCPTool: %v", err)
	}
	if _, _, err := tool.Run(context.Background(), params.Input{}, nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestUTCPToolProbe(t *testing.T) {
	client := &fakeUTCPClient{known: []string{"weather.current"}}
	tool, err := NewUTCPTool(client, "weather.current", "", "", params.InputDescription{}, nil)
	if err != nil {
		t.Fatalf("NewUTCPTool: %v", err)
	}
	if err := tool.Probe(context.Background()); err != nil {
		t.Fatalf("Probe: %v", err)
	}

	gone, err := NewUTCPTool(client, "weather.forecast", "", "", params.InputDescription{}, nil)
	if err != nil {
		t.Fatalf("NewUTCPTool: %v", err)
	}
	if err := gone.Probe(context.Background()); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("err = %v, want ErrNotSupported", err)
	}
}
