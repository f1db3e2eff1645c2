package agentexec

import (
	"context"
	"fmt"

	"github.com/universal-tool-calling-protocol/go-utcp/src/tools"

	"github.com/lattice-agents/agentexec/src/params"
)

// UTCPCaller is the slice of the UTCP client a UTCPTool needs. The
// concrete *utcp.UtcpClient satisfies it.
type UTCPCaller interface {
	CallTool(ctx context.Context, toolName string, args map[string]any) (any, error)
	SearchTools(query string, limit int) ([]tools.Tool, error)
}

// UTCPTool bridges a remote UTCP tool into the catalog: the declared
// input is decoded back into a name→value argument map and forwarded
// over the client. UTCP calls are request/response, so the tool always
// completes synchronously.
type UTCPTool struct {
	client      UTCPCaller
	remote      string
	name        string
	description string
	inputs      params.InputDescription
	convert     ResultConverter
}

var _ Tool = (*UTCPTool)(nil)

// NewUTCPTool wires the remote UTCP tool named remote into the local
// catalog under name. convert may be nil, in which case results are
// rendered with fmt.Sprint.
func NewUTCPTool(client UTCPCaller, remote, name, description string, inputs params.InputDescription, convert ResultConverter) (*UTCPTool, error) {
	if client == nil {
		return nil, fmt.Errorf("utcp tool requires a client")
	}
	if remote == "" {
		return nil, fmt.Errorf("utcp tool requires a remote tool name")
	}
	if name == "" {
		name = remote
	}
	if err := inputs.Validate(); err != nil {
		return nil, err
	}
	if convert == nil {
		convert = sprintResult
	}
	return &UTCPTool{
		client:      client,
		remote:      remote,
		name:        name,
		description: description,
		inputs:      inputs,
		convert:     convert,
	}, nil
}

func (t *UTCPTool) Name() string                              { return t.name }
func (t *UTCPTool) Description() string                       { return t.description }
func (t *UTCPTool) InputDescription() params.InputDescription { return t.inputs }

func (t *UTCPTool) Run(ctx context.Context, input params.Input, _ ResultCallback) (RunID, string, error) {
	args, err := input.Arguments(t.inputs)
	if err != nil {
		return SentinelRunID, "", err
	}
	out, err := t.client.CallTool(ctx, t.remote, args)
	if err != nil {
		return SentinelRunID, "", fmt.Errorf("utcp call %q: %w", t.remote, err)
	}
	text, err := t.convert(out)
	if err != nil {
		return SentinelRunID, "", fmt.Errorf("convert utcp result of %q: %w", t.remote, err)
	}
	return SentinelRunID, text, nil
}

// Probe checks that the remote side still advertises the tool, so a
// catalog can reject a binding whose backing capability is gone.
func (t *UTCPTool) Probe(ctx context.Context) error {
	found, err := t.client.SearchTools(t.remote, 10)
	if err != nil {
		return fmt.Errorf("search utcp tools: %w", err)
	}
	for _, tool := range found {
		if tool.Name == t.remote {
			return nil
		}
	}
	return fmt.Errorf("%w: remote tool %q not advertised", ErrNotSupported, t.remote)
}
