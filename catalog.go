package agentexec

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lattice-agents/agentexec/src/models"
)

// ToolCatalog is the shared, read-only-at-run-time registry of tools an
// agent may invoke. Registration happens during wiring; concurrent runs
// of the same agent share one catalog and never mutate it.
type ToolCatalog interface {
	Register(tool Tool) error
	Lookup(name string) (Tool, bool)
	Tools() []Tool
	Descriptors() []models.ToolDescriptor
}

// StaticToolCatalog is the default in-memory ToolCatalog implementation.
type StaticToolCatalog struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewStaticToolCatalog constructs a catalog seeded with the provided tools.
func NewStaticToolCatalog(tools []Tool) (*StaticToolCatalog, error) {
	catalog := &StaticToolCatalog{tools: make(map[string]Tool)}
	for _, tool := range tools {
		if err := catalog.Register(tool); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

// Register adds a tool under a lower-cased key. Duplicate names and
// invalid input descriptions are rejected.
func (c *StaticToolCatalog) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	key := catalogKey(tool.Name())
	if key == "" {
		return fmt.Errorf("tool name is empty")
	}
	if err := tool.InputDescription().Validate(); err != nil {
		return fmt.Errorf("tool %q: %w", tool.Name(), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tools[key]; exists {
		return fmt.Errorf("tool %q already registered", tool.Name())
	}
	c.tools[key] = tool
	c.order = append(c.order, key)
	return nil
}

// Lookup resolves a tool by name, case-insensitively.
func (c *StaticToolCatalog) Lookup(name string) (Tool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tool, ok := c.tools[catalogKey(name)]
	return tool, ok
}

// Tools returns the registered tools in registration order.
func (c *StaticToolCatalog) Tools() []Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Tool, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.tools[key])
	}
	return out
}

// Descriptors renders the catalog for the reasoning provider, in
// registration order.
func (c *StaticToolCatalog) Descriptors() []models.ToolDescriptor {
	tools := c.Tools()
	out := make([]models.ToolDescriptor, 0, len(tools))
	for _, tool := range tools {
		out = append(out, describeTool(tool))
	}
	return out
}

func describeTool(tool Tool) models.ToolDescriptor {
	desc := tool.InputDescription()
	inputs := make([]models.ParamSpec, 0, len(desc))
	for _, pd := range desc {
		inputs = append(inputs, models.ParamSpec{
			Name:        pd.Name,
			Type:        pd.Type.String(),
			Description: pd.Description,
		})
	}
	return models.ToolDescriptor{
		Name:        tool.Name(),
		Description: tool.Description(),
		Inputs:      inputs,
	}
}

func catalogKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var _ ToolCatalog = (*StaticToolCatalog)(nil)
